package model

type violation int

const (
	satisfied violation = iota
	outOfCalendar
	coversLunch
	roomMismatch
	teacherNotEligible
	teacherClash
	groupClash
	dailyLoadExceeded
	weeklyLoadExceeded
	roomClash
)

// feasible is the hard-constraint predicate checked before any placement or move. The session's own
// current placement (if any) is ignored, so a placed session can be evaluated against a new placement in place.
func (a *assignment) feasible(s int, p placement) bool {
	return a.check(s, p, false) == satisfied
}

// Checks every hard constraint and returns the first violated one. Room occupancy is checked last so that
// callers can tell apart placements that are blocked by room occupancy only.
func (a *assignment) check(s int, p placement, ignoreRoomOccupancy bool) violation {
	d := a.domain
	current := d.sessions[s]

	//** Static constraints
	if p.day < 0 || p.day >= d.days || p.start < 0 || p.start+current.duration > d.periods {
		return outOfCalendar
	}
	if !d.evaluator.Allowed(p.start, current.duration) {
		return coversLunch
	}
	if p.room < 0 || p.room >= len(d.configuration.Rooms) || !d.evaluator.Matches(p.room, current.course) || !d.evaluator.Fits(current.groups, p.room) {
		return roomMismatch
	}
	if p.teacher < 0 || p.teacher >= len(d.configuration.Teachers) || !d.evaluator.Teaches(p.teacher, current.course) {
		return teacherNotEligible
	}

	//** Occupancy
	busy := func(cells []int, resource, period int) bool {
		occupant := cells[a.cell(resource, p.day, period)]
		return occupant != free && occupant != s
	}
	for period := p.start; period < p.start+current.duration; period++ {
		if busy(a.teacherAt, p.teacher, period) {
			return teacherClash
		}
		for _, group := range current.groups {
			if busy(a.groupAt, group, period) {
				return groupClash
			}
		}
	}

	//** Teacher load, discounting the session itself when it's already taught by the same teacher
	daily, weekly := a.teacherDay[p.teacher*d.days+p.day], a.teacherWeek[p.teacher]
	if previous := a.placements[s]; previous.placed() && previous.teacher == p.teacher {
		weekly--
		if previous.day == p.day {
			daily--
		}
	}
	teacher := d.configuration.Teachers[p.teacher]
	if daily >= teacher.MaxPerDay {
		return dailyLoadExceeded
	}
	if weekly >= teacher.MaxPerWeek {
		return weeklyLoadExceeded
	}

	if !ignoreRoomOccupancy {
		for period := p.start; period < p.start+current.duration; period++ {
			if busy(a.roomAt, p.room, period) {
				return roomClash
			}
		}
	}

	return satisfied
}

// valid holds iff every session is placed and every placement satisfies the hard constraints against all the others
func (a *assignment) valid() bool {
	if !a.complete() {
		return false
	}
	for s, p := range a.placements {
		if a.check(s, p, false) != satisfied {
			return false
		}
	}
	return true
}
