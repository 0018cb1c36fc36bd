package model

import "slices"

const free = -1

// assignment maps every session to its placement and keeps occupancy tables for teachers, rooms and groups
// so that the hard constraints can be checked in time proportional to a session's duration.
// An assignment is always feasible: placements are only stored after the feasibility predicate accepted them.
type assignment struct {
	domain     *domain
	placements []placement

	teacherAt   []int // (teacher, day, period) -> session or free
	roomAt      []int // (room, day, period) -> session or free
	groupAt     []int // (group, day, period) -> session or free
	teacherDay  []int // (teacher, day) -> sessions taught
	teacherWeek []int // teacher -> sessions taught

	placedCount int
}

func newAssignment(d *domain) *assignment {
	slots := d.days * d.periods
	filled := func(size int) []int {
		cells := make([]int, size)
		for i := range cells {
			cells[i] = free
		}
		return cells
	}

	a := &assignment{
		domain:      d,
		placements:  make([]placement, len(d.sessions)),
		teacherAt:   filled(len(d.configuration.Teachers) * slots),
		roomAt:      filled(len(d.configuration.Rooms) * slots),
		groupAt:     filled(len(d.configuration.Groups) * slots),
		teacherDay:  make([]int, len(d.configuration.Teachers)*d.days),
		teacherWeek: make([]int, len(d.configuration.Teachers)),
	}
	for i := range a.placements {
		a.placements[i] = unplaced
	}
	return a
}

func (a *assignment) clone() *assignment {
	return &assignment{
		domain:      a.domain,
		placements:  slices.Clone(a.placements),
		teacherAt:   slices.Clone(a.teacherAt),
		roomAt:      slices.Clone(a.roomAt),
		groupAt:     slices.Clone(a.groupAt),
		teacherDay:  slices.Clone(a.teacherDay),
		teacherWeek: slices.Clone(a.teacherWeek),
		placedCount: a.placedCount,
	}
}

func (a *assignment) cell(resource, day, period int) int {
	return (resource*a.domain.days+day)*a.domain.periods + period
}

// Complete reports whether every session is placed
func (a *assignment) complete() bool {
	return a.placedCount == len(a.placements)
}

func (a *assignment) place(s int, p placement) {
	if a.placements[s].placed() {
		a.unplace(s)
	}

	current := a.domain.sessions[s]
	for period := p.start; period < p.start+current.duration; period++ {
		a.teacherAt[a.cell(p.teacher, p.day, period)] = s
		a.roomAt[a.cell(p.room, p.day, period)] = s
		for _, group := range current.groups {
			a.groupAt[a.cell(group, p.day, period)] = s
		}
	}
	a.teacherDay[p.teacher*a.domain.days+p.day]++
	a.teacherWeek[p.teacher]++
	a.placements[s] = p
	a.placedCount++
}

func (a *assignment) unplace(s int) {
	p := a.placements[s]
	if !p.placed() {
		return
	}

	current := a.domain.sessions[s]
	for period := p.start; period < p.start+current.duration; period++ {
		a.teacherAt[a.cell(p.teacher, p.day, period)] = free
		a.roomAt[a.cell(p.room, p.day, period)] = free
		for _, group := range current.groups {
			a.groupAt[a.cell(group, p.day, period)] = free
		}
	}
	a.teacherDay[p.teacher*a.domain.days+p.day]--
	a.teacherWeek[p.teacher]--
	a.placements[s] = unplaced
	a.placedCount--
}
