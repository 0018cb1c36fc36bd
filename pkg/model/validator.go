package model

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
)

const totalColumn = "Total"

// Validate checks referential integrity and value ranges of the configuration.
// Either the whole configuration is accepted (nil) or a *ValidationError listing every violation is returned.
func Validate(configuration Configuration) error {
	violations, _ := Inspect(configuration)
	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// Inspect returns the violations that make a configuration unusable together with warnings about
// inconsistencies that do not affect scheduling
func Inspect(configuration Configuration) (violations []string, warnings []string) {
	violate := func(format string, args ...any) {
		violations = append(violations, fmt.Sprintf(format, args...))
	}
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	//** Timetable settings
	settings := configuration.TimetableSettings
	if len(settings.Days) == 0 {
		violate("timetableSettings.days must contain at least one day")
	}
	for i, day := range settings.Days {
		if day == "" {
			violate("timetableSettings.days[%d] must not be empty", i)
		} else if day == totalColumn {
			violate("timetableSettings.days[%d] must not be named %q", i, totalColumn)
		} else if slices.Index(settings.Days, day) != i {
			violate("timetableSettings.days[%d] duplicates day %q", i, day)
		}
	}
	if settings.PeriodsPerDay < 1 {
		violate("timetableSettings.periodsPerDay must be positive: %d", settings.PeriodsPerDay)
	}
	if settings.LunchBreakSlot < 1 || settings.LunchBreakSlot > settings.PeriodsPerDay {
		violate("timetableSettings.lunchBreakSlot must be within [1, %d]: %d", settings.PeriodsPerDay, settings.LunchBreakSlot)
	}
	if settings.MinutesPerPeriod < 0 {
		violate("timetableSettings.minutesPerPeriod must not be negative: %d", settings.MinutesPerPeriod)
	}
	if settings.LunchDuration < 0 {
		violate("timetableSettings.lunchDuration must not be negative: %d", settings.LunchDuration)
	}

	//** Penalty weights
	weights := configuration.PenaltyWeights
	for _, pair := range lo.Zip2(
		[]string{"useLastPeriodPenalty", "teacherDislikePeriodPenalty", "groupFirstLastPeriodPenalty"},
		[]int{weights.UseLastPeriodPenalty, weights.TeacherDislikePeriodPenalty, weights.GroupFirstLastPeriodPenalty},
	) {
		if pair.B < 0 {
			violate("penaltyWeights.%v must not be negative: %d", pair.A, pair.B)
		}
	}

	//** Identifiers
	checkIds := func(collection string, ids []string) {
		for i, id := range ids {
			if id == "" {
				violate("%v[%d].id must not be empty", collection, i)
			} else if slices.Index(ids, id) != i {
				violate("%v[%d].id duplicates id %q", collection, i, id)
			}
		}
	}
	teacherIds := lo.Map(configuration.Teachers, func(teacher Teacher, _ int) string { return teacher.Id })
	groupIds := lo.Map(configuration.Groups, func(group Group, _ int) string { return group.Id })
	courseIds := lo.Map(configuration.Courses, func(course Course, _ int) string { return course.Id })
	roomIds := lo.Map(configuration.Rooms, func(room Room, _ int) string { return room.Id })
	checkIds("teachers", teacherIds)
	checkIds("groups", groupIds)
	checkIds("courses", courseIds)
	checkIds("rooms", roomIds)

	//** Teachers
	for _, teacher := range configuration.Teachers {
		if teacher.MaxPerDay < 0 {
			violate("teacher %q: maxPerDay must not be negative: %d", teacher.Id, teacher.MaxPerDay)
		}
		if teacher.MaxPerWeek < 0 {
			violate("teacher %q: maxPerWeek must not be negative: %d", teacher.Id, teacher.MaxPerWeek)
		}
		if teacher.MaxPerDay*len(settings.Days) < teacher.MaxPerWeek {
			violate("teacher %q: maxPerWeek (%d) exceeds maxPerDay × days (%d)", teacher.Id, teacher.MaxPerWeek, teacher.MaxPerDay*len(settings.Days))
		}
		for _, period := range teacher.DislikePeriods {
			if period < 1 || period > settings.PeriodsPerDay {
				violate("teacher %q: dislike period %d is outside [1, %d]", teacher.Id, period, settings.PeriodsPerDay)
			}
		}
	}

	//** Groups
	for _, group := range configuration.Groups {
		if group.Size < 1 {
			violate("group %q: size must be positive: %d", group.Id, group.Size)
		}
		for _, courseId := range group.Courses {
			course, ok := lo.Find(configuration.Courses, func(course Course) bool { return course.Id == courseId })
			if !ok {
				warn("group %q lists unknown course %q", group.Id, courseId)
			} else if !slices.Contains(course.Groups, group.Id) {
				warn("group %q lists course %q but the course does not enroll it", group.Id, courseId)
			}
		}
	}

	//** Rooms
	for _, room := range configuration.Rooms {
		if !slices.Contains(RoomTypes, room.Type) {
			violate("room %q: unknown type %q", room.Id, room.Type)
		}
		if room.Capacity < 1 {
			violate("room %q: capacity must be positive: %d", room.Id, room.Capacity)
		}
	}

	//** Courses
	for _, course := range configuration.Courses {
		if course.RequiredPerWeek < 0 {
			violate("course %q: requiredPerWeek must not be negative: %d", course.Id, course.RequiredPerWeek)
		}
		if course.Duration < 1 {
			violate("course %q: duration must be at least 1: %d", course.Id, course.Duration)
		}
		if !slices.Contains(RoomTypes, course.RoomType) {
			violate("course %q: unknown room type %q", course.Id, course.RoomType)
		} else if !lo.SomeBy(configuration.Rooms, func(room Room) bool { return room.Type == course.RoomType }) {
			violate("course %q: no room of type %q exists", course.Id, course.RoomType)
		}

		if course.RequiredPerWeek > 0 && len(course.EligibleTeachers) == 0 {
			violate("course %q: at least one eligible teacher is required", course.Id)
		}
		if course.RequiredPerWeek > 0 && len(course.Groups) == 0 {
			violate("course %q: at least one group is required", course.Id)
		}

		for i, teacherId := range course.EligibleTeachers {
			teacher, ok := lo.Find(configuration.Teachers, func(teacher Teacher) bool { return teacher.Id == teacherId })
			if !ok {
				violate("course %q: eligible teacher %q does not exist", course.Id, teacherId)
			} else if slices.Index(course.EligibleTeachers, teacherId) != i {
				violate("course %q: eligible teacher %q is listed more than once", course.Id, teacherId)
			} else if !slices.Contains(teacher.Subjects, course.Id) {
				warn("teacher %q is eligible for course %q but does not list it among their subjects", teacherId, course.Id)
			}
		}
		for i, groupId := range course.Groups {
			if !slices.Contains(groupIds, groupId) {
				violate("course %q: group %q does not exist", course.Id, groupId)
			} else if slices.Index(course.Groups, groupId) != i {
				violate("course %q: group %q is listed more than once", course.Id, groupId)
			}
		}
	}

	return violations, warnings
}
