package model

import (
	"fmt"

	"github.com/samber/lo"
)

// diagnose looks for reasons that make a valid configuration infeasible before any search is attempted.
// An empty result does not imply feasibility.
func (d *domain) diagnose() []string {
	reasons := make([]string, 0)
	configuration := d.configuration
	usablePerWeek := len(d.usable) * d.days

	//** Per session-set checks
	reported := make(map[[2]int]bool)
	for i, s := range d.sessions {
		key := [2]int{s.course, s.groups[0]}
		if reported[key] {
			continue
		}
		course := configuration.Courses[s.course]
		groupIds := lo.Map(s.groups, func(group int, _ int) string { return configuration.Groups[group].Id })

		if len(s.rooms) == 0 {
			reported[key] = true
			reasons = append(reasons, fmt.Sprintf("course %v requires room type %v but no %v room has capacity ≥ %d (groups %v)",
				course.Id, course.RoomType, course.RoomType, s.size, groupIds))
			continue
		}
		if !lo.SomeBy(lo.Range(d.periods), func(start int) bool { return d.evaluator.Allowed(start, s.duration) }) {
			reported[key] = true
			reasons = append(reasons, fmt.Sprintf("course %v lasts %d periods but no lunch-free run of the day is that long", course.Id, s.duration))
			continue
		}
		if len(d.candidates[i]) == 0 {
			reported[key] = true
			reasons = append(reasons, fmt.Sprintf("course %v has no eligible teacher with a positive daily and weekly load", course.Id))
		}
	}

	//** Groups must have enough usable periods for all their sessions
	for group := range configuration.Groups {
		required := lo.SumBy(d.sessions, func(s session) int {
			if lo.Contains(s.groups, group) {
				return s.duration
			}
			return 0
		})
		if required > usablePerWeek {
			reasons = append(reasons, fmt.Sprintf("group %v needs %d periods per week but only %d are usable", configuration.Groups[group].Id, required, usablePerWeek))
		}
	}

	//** Teachers that are the only option for more sessions than they may teach
	for teacher, data := range configuration.Teachers {
		bound := lo.CountBy(d.sessions, func(s session) bool {
			return len(s.teachers) == 1 && s.teachers[0] == teacher
		})
		if bound > data.MaxPerWeek {
			reasons = append(reasons, fmt.Sprintf("teacher %v is the only eligible teacher for %d sessions but maxPerWeek is %d", data.Id, bound, data.MaxPerWeek))
		}
	}

	//** Sessions restricted to a set of teachers can't outnumber what those teachers may teach together.
	// The sets checked are the eligible sets of the sessions plus the set of every eligible teacher.
	capacity := func(teacher int) int {
		data := configuration.Teachers[teacher]
		return max(0, min(data.MaxPerWeek, data.MaxPerDay*d.days))
	}
	teacherSets := make([][]int, 0)
	seen := make(map[string]bool)
	addSet := func(teachers []int) {
		key := fmt.Sprint(teachers)
		if len(teachers) > 1 && !seen[key] {
			seen[key] = true
			teacherSets = append(teacherSets, teachers)
		}
	}
	for _, s := range d.sessions {
		addSet(s.teachers)
	}
	addSet(lo.Filter(lo.Range(len(configuration.Teachers)), func(teacher int, _ int) bool {
		return lo.SomeBy(d.sessions, func(s session) bool { return lo.Contains(s.teachers, teacher) })
	}))
	for _, teachers := range teacherSets {
		bound := lo.CountBy(d.sessions, func(s session) bool {
			return len(s.teachers) > 0 && lo.Every(teachers, s.teachers)
		})
		available := lo.SumBy(teachers, capacity)
		if bound > available {
			teacherIds := lo.Map(teachers, func(teacher int, _ int) string { return configuration.Teachers[teacher].Id })
			reasons = append(reasons, fmt.Sprintf("teachers %v can teach at most %d sessions per week together but %d sessions can only be taught by them", teacherIds, available, bound))
		}
	}

	//** Room types must offer enough room-periods
	for _, roomType := range RoomTypes {
		required := lo.SumBy(d.sessions, func(s session) int {
			if configuration.Courses[s.course].RoomType == roomType {
				return s.duration
			}
			return 0
		})
		rooms := lo.CountBy(configuration.Rooms, func(room Room) bool { return room.Type == roomType })
		if required > rooms*usablePerWeek {
			reasons = append(reasons, fmt.Sprintf("room type %v is needed for %d periods per week but its %d rooms offer only %d", roomType, required, rooms, rooms*usablePerWeek))
		}
	}

	return reasons
}
