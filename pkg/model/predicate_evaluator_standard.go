package model

import (
	"slices"

	"github.com/samber/lo"
)

type predicateEvaluatorStandard struct {
	configuration Configuration
	lunch         int      // 0-based lunch period
	dislikes      [][]bool // Dislike matrix per teacher
	eligibility   [][]bool // Eligibility matrix per course
}

func newPredicateEvaluator(configuration Configuration) predicateEvaluator {
	evaluator := predicateEvaluatorStandard{
		configuration: configuration,
		lunch:         configuration.TimetableSettings.LunchBreakSlot - 1,
	}

	periods := configuration.TimetableSettings.PeriodsPerDay
	evaluator.dislikes = make([][]bool, len(configuration.Teachers))
	for teacher := range configuration.Teachers {
		evaluator.dislikes[teacher] = make([]bool, periods)
		for _, period := range configuration.Teachers[teacher].DislikePeriods {
			if period >= 1 && period <= periods {
				evaluator.dislikes[teacher][period-1] = true
			}
		}
	}

	evaluator.eligibility = make([][]bool, len(configuration.Courses))
	for course := range configuration.Courses {
		evaluator.eligibility[course] = make([]bool, len(configuration.Teachers))
		for teacher := range configuration.Teachers {
			evaluator.eligibility[course][teacher] = slices.Contains(configuration.Courses[course].EligibleTeachers, configuration.Teachers[teacher].Id)
		}
	}

	return &evaluator
}

func (evaluator *predicateEvaluatorStandard) Teaches(teacher, course int) bool {
	return evaluator.eligibility[course][teacher]
}

func (evaluator *predicateEvaluatorStandard) Matches(room, course int) bool {
	return evaluator.configuration.Rooms[room].Type == evaluator.configuration.Courses[course].RoomType
}

func (evaluator *predicateEvaluatorStandard) Fits(groups []int, room int) bool {
	size := lo.SumBy(groups, func(group int) int {
		return evaluator.configuration.Groups[group].Size
	})
	return evaluator.configuration.Rooms[room].Capacity >= size
}

func (evaluator *predicateEvaluatorStandard) Allowed(start, duration int) bool {
	end := start + duration - 1
	return start >= 0 &&
		end < evaluator.configuration.TimetableSettings.PeriodsPerDay &&
		(evaluator.lunch < start || evaluator.lunch > end)
}

func (evaluator *predicateEvaluatorStandard) Dislikes(teacher, period int) bool {
	return evaluator.dislikes[teacher][period]
}

func (evaluator *predicateEvaluatorStandard) Available(teacher int) bool {
	return evaluator.configuration.Teachers[teacher].MaxPerDay > 0 && evaluator.configuration.Teachers[teacher].MaxPerWeek > 0
}
