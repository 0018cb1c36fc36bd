package model

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/samber/lo"
)

var labelPattern = regexp.MustCompile(`^(.+) \((.+)\) \[(.+)\]$`)

type cellLabel struct {
	course, teacher, room string
}

// VerifySchedule checks a schedule against every hard constraint of the configuration without relying on the
// engine's internal state and returns the problems found (none for a correct schedule)
func VerifySchedule(configuration Configuration, result ScheduleResult) []string {
	problems := make([]string, 0)
	report := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	settings := configuration.TimetableSettings
	courses := lo.KeyBy(configuration.Courses, func(course Course) string { return course.Id })
	teachers := lo.KeyBy(configuration.Teachers, func(teacher Teacher) string { return teacher.Id })
	rooms := lo.KeyBy(configuration.Rooms, func(room Room) string { return room.Id })
	groups := lo.KeyBy(configuration.Groups, func(group Group) string { return group.Id })

	sessions := make(map[[2]string]int)      // (course, group) -> sessions
	teacherDaily := make(map[[2]string]int)  // (teacher, day) -> sessions
	jointCounted := make(map[[3]string]bool) // (course, day, start) of joint sessions already counted for the teacher

	for _, day := range settings.Days {
		for period := 1; period <= settings.PeriodsPerDay; period++ {
			byTeacher := make(map[string]cellLabel)
			byRoom := make(map[string]cellLabel)
			attendees := make(map[cellLabel][]string)

			for _, group := range configuration.Groups {
				cell, ok := result.Groups[group.Id][day][period]
				if !ok {
					report("group %v: missing cell %v/%d", group.Id, day, period)
					continue
				}
				if period == settings.LunchBreakSlot {
					if cell != LunchCell {
						report("group %v: lunch cell %v/%d holds %q", group.Id, day, period, cell)
					}
					continue
				}
				if cell == EmptyCell {
					continue
				}

				matches := labelPattern.FindStringSubmatch(cell)
				if matches == nil {
					report("group %v: malformed cell %v/%d: %q", group.Id, day, period, cell)
					continue
				}
				label := cellLabel{course: matches[1], teacher: matches[2], room: matches[3]}
				course, courseOk := courses[label.course]
				_, teacherOk := teachers[label.teacher]
				room, roomOk := rooms[label.room]
				if !courseOk || !teacherOk || !roomOk {
					report("group %v: cell %v/%d references unknown ids: %q", group.Id, day, period, cell)
					continue
				}
				if !slices.Contains(course.EligibleTeachers, label.teacher) {
					report("course %v taught by ineligible teacher %v", course.Id, label.teacher)
				}
				if !slices.Contains(course.Groups, group.Id) {
					report("group %v attends course %v it's not enrolled in", group.Id, course.Id)
				}
				if room.Type != course.RoomType {
					report("course %v placed in room %v of type %v", course.Id, room.Id, room.Type)
				}

				if other, ok := byTeacher[label.teacher]; ok && other != label {
					report("teacher %v double-booked at %v/%d", label.teacher, day, period)
				}
				if other, ok := byRoom[label.room]; ok && other != label {
					report("room %v double-booked at %v/%d", label.room, day, period)
				}
				byTeacher[label.teacher] = label
				byRoom[label.room] = label
				attendees[label] = append(attendees[label], group.Id)
			}

			// A label shared by several groups is one joint session: the course must be joint and the room must hold them all
			for label, attending := range attendees {
				course, room := courses[label.course], rooms[label.room]
				if len(attending) > 1 && !course.Joint {
					report("course %v taught simultaneously to %v by teacher %v", course.Id, attending, label.teacher)
				}
				size := lo.SumBy(attending, func(group string) int { return groups[group].Size })
				if room.Capacity < size {
					report("room %v (capacity %d) too small for %v at %v/%d", room.Id, room.Capacity, attending, day, period)
				}
			}
		}

		//** Count sessions as runs of identical labels
		for _, group := range configuration.Groups {
			period := 1
			for period <= settings.PeriodsPerDay {
				cell := result.Groups[group.Id][day][period]
				matches := labelPattern.FindStringSubmatch(cell)
				if matches == nil {
					period++
					continue
				}
				start := period
				for period <= settings.PeriodsPerDay && result.Groups[group.Id][day][period] == cell {
					period++
				}
				course, ok := courses[matches[1]]
				if !ok || course.Duration < 1 {
					continue
				}
				length := period - start
				if length%course.Duration != 0 {
					report("group %v: course %v occupies %d periods on %v, not a multiple of its duration %d", group.Id, course.Id, length, day, course.Duration)
					continue
				}
				count := length / course.Duration
				sessions[[2]string{course.Id, group.Id}] += count

				if course.Joint {
					for k := range count {
						key := [3]string{course.Id, day, fmt.Sprint(start + k*course.Duration)}
						if !jointCounted[key] {
							jointCounted[key] = true
							teacherDaily[[2]string{matches[2], day}]++
						}
					}
				} else {
					teacherDaily[[2]string{matches[2], day}] += count
				}
			}
		}
	}

	//** Session counts
	for _, course := range configuration.Courses {
		for _, group := range course.Groups {
			if placed := sessions[[2]string{course.Id, group}]; placed != course.RequiredPerWeek {
				report("course %v: group %v has %d sessions, %d required", course.Id, group, placed, course.RequiredPerWeek)
			}
		}
	}

	//** Teacher loads
	for _, teacher := range configuration.Teachers {
		weekly := 0
		for _, day := range settings.Days {
			daily := teacherDaily[[2]string{teacher.Id, day}]
			weekly += daily
			if daily > teacher.MaxPerDay {
				report("teacher %v teaches %d sessions on %v, maxPerDay is %d", teacher.Id, daily, day, teacher.MaxPerDay)
			}
			if reported := result.TeacherLoad[teacher.Id][day]; reported != daily {
				report("teacher %v: load table says %d sessions on %v, schedule has %d", teacher.Id, reported, day, daily)
			}
		}
		if weekly > teacher.MaxPerWeek {
			report("teacher %v teaches %d sessions per week, maxPerWeek is %d", teacher.Id, weekly, teacher.MaxPerWeek)
		}
		if reported := result.TeacherLoad[teacher.Id][TotalLoad]; reported != weekly {
			report("teacher %v: load table total is %d, schedule has %d", teacher.Id, reported, weekly)
		}
	}

	return problems
}
