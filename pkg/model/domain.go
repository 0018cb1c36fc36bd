package model

import (
	"math"

	"github.com/samber/lo"
)

// session is one required meeting of a course, attended by one group (or by every group of a joint course)
type session struct {
	id       int
	course   int
	groups   []int
	duration int
	size     int   // Combined size of the attending groups
	teachers []int // Eligible teachers
	rooms    []int // Rooms whose type and capacity suit the session
}

// placement locates a session: it occupies periods [start, start+duration) of day in room, taught by teacher
type placement struct {
	day     int
	start   int
	room    int
	teacher int
}

var unplaced = placement{day: -1, start: -1, room: -1, teacher: -1}

func (p placement) placed() bool {
	return p.day >= 0
}

// domain holds the scheduling primitives derived from a configuration for the duration of one generation
type domain struct {
	configuration Configuration
	evaluator     predicateEvaluator

	days, periods int
	lunch         int // 0-based
	first, last   int // First and last usable (0-based) periods of a day, -1 when the day has none
	usable        []int

	courses  map[string]int
	teachers map[string]int
	groups   map[string]int
	rooms    map[string]int

	sessions   []session
	candidates [][]placement // Statically admissible placements per session
}

func newDomain(configuration Configuration) *domain {
	settings := configuration.TimetableSettings
	evaluator := newPredicateEvaluator(configuration)

	d := &domain{
		configuration: configuration,
		evaluator:     evaluator,
		days:          len(settings.Days),
		periods:       settings.PeriodsPerDay,
		lunch:         settings.LunchBreakSlot - 1,
		first:         -1,
		last:          -1,
	}

	//** Calendar
	for period := range d.periods {
		if period != d.lunch {
			d.usable = append(d.usable, period)
		}
	}
	if len(d.usable) > 0 {
		d.first, d.last = d.usable[0], d.usable[len(d.usable)-1]
	}

	//** Indices
	index := func(ids []string) map[string]int {
		return lo.SliceToMap(lo.Range(len(ids)), func(i int) (string, int) { return ids[i], i })
	}
	d.courses = index(lo.Map(configuration.Courses, func(course Course, _ int) string { return course.Id }))
	d.teachers = index(lo.Map(configuration.Teachers, func(teacher Teacher, _ int) string { return teacher.Id }))
	d.groups = index(lo.Map(configuration.Groups, func(group Group, _ int) string { return group.Id }))
	d.rooms = index(lo.Map(configuration.Rooms, func(room Room, _ int) string { return room.Id }))

	//** Sessions
	for courseIndex, course := range configuration.Courses {
		teachers := lo.Filter(lo.Range(len(configuration.Teachers)), func(teacher int, _ int) bool {
			return evaluator.Teaches(teacher, courseIndex)
		})
		groups := lo.Map(course.Groups, func(group string, _ int) int { return d.groups[group] })

		// Joint courses yield a single session set attended by every group, otherwise one set per group
		attendances := lo.Map(groups, func(group int, _ int) []int { return []int{group} })
		if course.Joint && len(groups) > 0 {
			attendances = [][]int{groups}
		}

		for _, attending := range attendances {
			rooms := lo.Filter(lo.Range(len(configuration.Rooms)), func(room int, _ int) bool {
				return evaluator.Matches(room, courseIndex) && evaluator.Fits(attending, room)
			})
			size := lo.SumBy(attending, func(group int) int { return configuration.Groups[group].Size })

			for range course.RequiredPerWeek {
				d.sessions = append(d.sessions, session{
					id:       len(d.sessions),
					course:   courseIndex,
					groups:   attending,
					duration: course.Duration,
					size:     size,
					teachers: teachers,
					rooms:    rooms,
				})
			}
		}
	}

	//** Candidates
	d.candidates = make([][]placement, len(d.sessions))
	for i, s := range d.sessions {
		d.candidates[i] = d.buildCandidates(s)
	}

	return d
}

func (d *domain) buildCandidates(s session) []placement {
	generator := newPermutationGenerator(uint64(d.days), uint64(d.periods), uint64(len(s.rooms)), uint64(len(s.teachers)))

	permutations := generator.ConstrainedPermutations([]func(permutation []uint64) bool{
		// Allowed(start, duration) = 1
		func(permutation []uint64) bool {
			start := permutation[1]
			return start == math.MaxUint64 || d.evaluator.Allowed(int(start), s.duration)
		},
		// Available(teacher) = 1
		func(permutation []uint64) bool {
			teacher := permutation[3]
			return teacher == math.MaxUint64 || d.evaluator.Available(s.teachers[teacher])
		},
	})

	return lo.Map(permutations, func(permutation []uint64, _ int) placement {
		return placement{
			day:     int(permutation[0]),
			start:   int(permutation[1]),
			room:    s.rooms[permutation[2]],
			teacher: s.teachers[permutation[3]],
		}
	})
}

// Returns the label printed in every grid cell the session occupies
func (d *domain) label(s session, p placement) string {
	return d.configuration.Courses[s.course].Id + " (" + d.configuration.Teachers[p.teacher].Id + ") [" + d.configuration.Rooms[p.room].Id + "]"
}

// Checks whether the placed session covers the given (0-based) period
func covers(p placement, duration, period int) bool {
	return p.start <= period && period < p.start+duration
}
