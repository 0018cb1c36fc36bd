package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func nopLogger() *zap.Logger {
	return zap.NewNop()
}

// sessionOf returns the index of the ordinal-th session of course attended by group
func sessionOf(d *domain, course, group string, ordinal int) int {
	for s, current := range d.sessions {
		if current.course != d.courses[course] || current.groups[0] != d.groups[group] {
			continue
		}
		if ordinal == 0 {
			return s
		}
		ordinal--
	}
	panic("no such session: " + course + "/" + group)
}

func TestFeasibility(t *testing.T) {
	d := newDomain(smallConfiguration())
	a := newAssignment(d)

	x1 := sessionOf(d, "X", "G1", 0)
	x2 := sessionOf(d, "X", "G1", 1)
	x3 := sessionOf(d, "X", "G2", 0)
	y := sessionOf(d, "Y", "G1", 0)
	z := sessionOf(d, "Z", "G2", 0)
	teacherA, teacherB := d.teachers["A"], d.teachers["B"]
	r1, l1 := d.rooms["R1"], d.rooms["L1"]

	a.place(x1, placement{day: 0, start: 0, room: r1, teacher: teacherA})

	t.Run("Static constraints", func(t *testing.T) {
		assert.Equal(t, outOfCalendar, a.check(x2, placement{day: 3, start: 0, room: r1, teacher: teacherA}, false))
		assert.Equal(t, outOfCalendar, a.check(z, placement{day: 0, start: 3, room: l1, teacher: teacherB}, false))
		assert.Equal(t, coversLunch, a.check(x2, placement{day: 1, start: 2, room: r1, teacher: teacherA}, false))
		// A two-period session may not straddle lunch
		assert.Equal(t, coversLunch, a.check(z, placement{day: 1, start: 1, room: l1, teacher: teacherB}, false))
		assert.Equal(t, roomMismatch, a.check(x2, placement{day: 1, start: 0, room: l1, teacher: teacherA}, false))
		assert.Equal(t, teacherNotEligible, a.check(y, placement{day: 1, start: 0, room: r1, teacher: teacherB}, false))
	})

	t.Run("Occupancy", func(t *testing.T) {
		assert.Equal(t, groupClash, a.check(x2, placement{day: 0, start: 0, room: r1, teacher: teacherB}, false))
		assert.Equal(t, teacherClash, a.check(x3, placement{day: 0, start: 0, room: r1, teacher: teacherA}, false))
		assert.Equal(t, roomClash, a.check(x3, placement{day: 0, start: 0, room: r1, teacher: teacherB}, false))
		assert.Equal(t, satisfied, a.check(x3, placement{day: 0, start: 0, room: r1, teacher: teacherB}, true))
	})

	t.Run("A placed session does not clash with itself", func(t *testing.T) {
		assert.True(t, a.feasible(x1, placement{day: 0, start: 1, room: r1, teacher: teacherA}))
	})

	t.Run("Teacher loads", func(t *testing.T) {
		b := a.clone()
		b.place(z, placement{day: 1, start: 0, room: l1, teacher: teacherB})
		// B teaches at most one session a day
		assert.Equal(t, dailyLoadExceeded, b.check(x3, placement{day: 1, start: 3, room: r1, teacher: teacherB}, false))

		b.place(y, placement{day: 0, start: 1, room: r1, teacher: teacherA})
		b.place(x2, placement{day: 1, start: 0, room: r1, teacher: teacherA})
		b.place(sessionOf(d, "X", "G2", 1), placement{day: 2, start: 1, room: r1, teacher: teacherA})
		// A has reached maxPerWeek = 4
		assert.Equal(t, weeklyLoadExceeded, b.check(x3, placement{day: 2, start: 0, room: r1, teacher: teacherA}, false))
		// Moving one of A's sessions within the same day is fine
		assert.True(t, b.feasible(x2, placement{day: 1, start: 3, room: r1, teacher: teacherA}))
	})

	t.Run("Unplace frees the occupancy", func(t *testing.T) {
		b := a.clone()
		b.unplace(x1)
		assert.Equal(t, satisfied, b.check(x3, placement{day: 0, start: 0, room: r1, teacher: teacherA}, false))
		assert.Equal(t, 0, b.teacherWeek[teacherA])
		// The clone is independent
		assert.Equal(t, 1, a.teacherWeek[teacherA])
	})

	t.Run("Validity", func(t *testing.T) {
		assert.False(t, a.valid())
	})
}

func TestDomain(t *testing.T) {
	d := newDomain(sampleConfiguration())

	t.Run("Calendar", func(t *testing.T) {
		assert.Equal(t, []int{0, 1, 2, 4, 5, 6, 7}, d.usable)
		assert.Equal(t, 0, d.first)
		assert.Equal(t, 7, d.last)
		assert.Equal(t, 3, d.lunch)
	})

	t.Run("Sessions", func(t *testing.T) {
		// MATH 2×3, PHYS 2×2, CHEM 2×2, LAB 3×1, ENG 1×2, SEM once (joint)
		assert.Len(t, d.sessions, 20)

		seminar := d.sessions[len(d.sessions)-1]
		assert.Equal(t, []int{d.groups["G1"], d.groups["G2"]}, seminar.groups)
		assert.Equal(t, 55, seminar.size)
		// Only R1 holds both groups
		assert.Equal(t, []int{d.rooms["R1"]}, seminar.rooms)
	})

	t.Run("Candidates", func(t *testing.T) {
		lab := sessionOf(d, "LAB", "G3", 0)
		for _, candidate := range d.candidates[lab] {
			assert.True(t, d.evaluator.Allowed(candidate.start, 2))
			assert.Equal(t, d.rooms["L1"], candidate.room)
		}
		// 5 days × 5 lunch-free two-period runs × 1 room × 1 teacher
		assert.Len(t, d.candidates[lab], 25)
	})
}
