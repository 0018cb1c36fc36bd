package model

import (
	"context"
	"testing"

	"github.com/limaJavier/timetabling-engine/pkg/sat"

	"github.com/stretchr/testify/assert"
)

// sampleConfiguration is a small school: three groups, three teachers, a two-period lab course and a joint seminar
func sampleConfiguration() Configuration {
	return Configuration{
		TimetableSettings: TimetableSettings{
			Days:             []string{"Mon", "Tue", "Wed", "Thu", "Fri"},
			PeriodsPerDay:    8,
			MinutesPerPeriod: 45,
			LunchBreakSlot:   4,
			LunchDuration:    45,
		},
		PenaltyWeights: PenaltyWeights{
			UseLastPeriodPenalty:        20,
			TeacherDislikePeriodPenalty: 10,
			GroupFirstLastPeriodPenalty: 1,
		},
		Teachers: []Teacher{
			{Id: "T1", Name: "Ada", Subjects: []string{"MATH", "PHYS"}, DislikePeriods: []int{1}, MaxPerDay: 4, MaxPerWeek: 16},
			{Id: "T2", Name: "Grace", Subjects: []string{"CHEM", "LAB"}, DislikePeriods: []int{8}, MaxPerDay: 4, MaxPerWeek: 16},
			{Id: "T3", Name: "Alan", Subjects: []string{"MATH", "ENG", "SEM"}, DislikePeriods: []int{}, MaxPerDay: 3, MaxPerWeek: 12},
		},
		Groups: []Group{
			{Id: "G1", Size: 30, Courses: []string{"MATH", "PHYS", "LAB", "SEM"}},
			{Id: "G2", Size: 25, Courses: []string{"MATH", "CHEM", "LAB", "SEM"}},
			{Id: "G3", Size: 40, Courses: []string{"PHYS", "CHEM", "LAB", "ENG"}},
		},
		Courses: []Course{
			{Id: "MATH", RequiredPerWeek: 3, RoomType: Lecture, EligibleTeachers: []string{"T1", "T3"}, Groups: []string{"G1", "G2"}, Duration: 1},
			{Id: "PHYS", RequiredPerWeek: 2, RoomType: Lecture, EligibleTeachers: []string{"T1"}, Groups: []string{"G1", "G3"}, Duration: 1},
			{Id: "CHEM", RequiredPerWeek: 2, RoomType: Lecture, EligibleTeachers: []string{"T2"}, Groups: []string{"G2", "G3"}, Duration: 1},
			{Id: "LAB", RequiredPerWeek: 1, RoomType: Lab, EligibleTeachers: []string{"T2"}, Groups: []string{"G1", "G2", "G3"}, Duration: 2},
			{Id: "ENG", RequiredPerWeek: 2, RoomType: Tutorial, EligibleTeachers: []string{"T3"}, Groups: []string{"G3"}, Duration: 1},
			{Id: "SEM", RequiredPerWeek: 1, RoomType: Lecture, EligibleTeachers: []string{"T3"}, Groups: []string{"G1", "G2"}, Duration: 1, Joint: true},
		},
		Rooms: []Room{
			{Id: "R1", Type: Lecture, Capacity: 60},
			{Id: "R2", Type: Lecture, Capacity: 40},
			{Id: "L1", Type: Lab, Capacity: 40},
			{Id: "TU1", Type: Tutorial, Capacity: 45},
		},
	}
}

// smallConfiguration keeps the SAT encoding small enough for the in-process solver
func smallConfiguration() Configuration {
	return Configuration{
		TimetableSettings: TimetableSettings{
			Days:             []string{"Mon", "Tue", "Wed"},
			PeriodsPerDay:    4,
			MinutesPerPeriod: 60,
			LunchBreakSlot:   3,
			LunchDuration:    60,
		},
		PenaltyWeights: PenaltyWeights{
			UseLastPeriodPenalty:        5,
			TeacherDislikePeriodPenalty: 3,
			GroupFirstLastPeriodPenalty: 1,
		},
		Teachers: []Teacher{
			{Id: "A", Subjects: []string{"X", "Y"}, DislikePeriods: []int{1}, MaxPerDay: 2, MaxPerWeek: 4},
			{Id: "B", Subjects: []string{"X", "Z"}, DislikePeriods: []int{}, MaxPerDay: 1, MaxPerWeek: 3},
		},
		Groups: []Group{
			{Id: "G1", Size: 20, Courses: []string{"X", "Y"}},
			{Id: "G2", Size: 20, Courses: []string{"X", "Z"}},
		},
		Courses: []Course{
			{Id: "X", RequiredPerWeek: 2, RoomType: Lecture, EligibleTeachers: []string{"A", "B"}, Groups: []string{"G1", "G2"}, Duration: 1},
			{Id: "Y", RequiredPerWeek: 1, RoomType: Lecture, EligibleTeachers: []string{"A"}, Groups: []string{"G1"}, Duration: 1},
			{Id: "Z", RequiredPerWeek: 1, RoomType: Lab, EligibleTeachers: []string{"B"}, Groups: []string{"G2"}, Duration: 2},
		},
		Rooms: []Room{
			{Id: "R1", Type: Lecture, Capacity: 30},
			{Id: "L1", Type: Lab, Capacity: 30},
		},
	}
}

// overloadedConfiguration keeps both groups busy during the only two usable periods. Teacher A is the only
// one for Y, so X needs teacher B twice while B may teach once. Every static count fits, so only an
// exhaustive search (or a SAT solver) can tell.
func overloadedConfiguration() Configuration {
	return Configuration{
		TimetableSettings: TimetableSettings{
			Days:           []string{"Mon"},
			PeriodsPerDay:  3,
			LunchBreakSlot: 3,
		},
		Teachers: []Teacher{
			{Id: "A", Subjects: []string{"X", "Y"}, MaxPerDay: 4, MaxPerWeek: 4},
			{Id: "B", Subjects: []string{"X"}, MaxPerDay: 1, MaxPerWeek: 1},
		},
		Groups: []Group{
			{Id: "G1", Size: 10, Courses: []string{"X"}},
			{Id: "G2", Size: 10, Courses: []string{"Y"}},
		},
		Courses: []Course{
			{Id: "X", RequiredPerWeek: 2, RoomType: Lecture, EligibleTeachers: []string{"A", "B"}, Groups: []string{"G1"}, Duration: 1},
			{Id: "Y", RequiredPerWeek: 2, RoomType: Lecture, EligibleTeachers: []string{"A"}, Groups: []string{"G2"}, Duration: 1},
		},
		Rooms: []Room{
			{Id: "R1", Type: Lecture, Capacity: 20},
			{Id: "R2", Type: Lecture, Capacity: 20},
		},
	}
}

// pooledOverloadConfiguration needs eleven sessions from three teachers who may teach seven in total,
// although no single teacher is the only option for more than they may teach
func pooledOverloadConfiguration() Configuration {
	return Configuration{
		TimetableSettings: TimetableSettings{
			Days:           []string{"Mon", "Tue", "Wed"},
			PeriodsPerDay:  5,
			LunchBreakSlot: 3,
		},
		Teachers: []Teacher{
			{Id: "A", Subjects: []string{"X", "Y"}, MaxPerDay: 2, MaxPerWeek: 3},
			{Id: "B", Subjects: []string{"X", "Y"}, MaxPerDay: 1, MaxPerWeek: 2},
			{Id: "C", Subjects: []string{"X", "Y"}, MaxPerDay: 1, MaxPerWeek: 2},
		},
		Groups: []Group{
			{Id: "G1", Size: 10, Courses: []string{"X"}},
			{Id: "G2", Size: 10, Courses: []string{"Y"}},
		},
		Courses: []Course{
			{Id: "X", RequiredPerWeek: 6, RoomType: Lecture, EligibleTeachers: []string{"A", "B", "C"}, Groups: []string{"G1"}, Duration: 1},
			{Id: "Y", RequiredPerWeek: 5, RoomType: Lecture, EligibleTeachers: []string{"A", "B", "C"}, Groups: []string{"G2"}, Duration: 1},
		},
		Rooms: []Room{
			{Id: "R1", Type: Lecture, Capacity: 20},
			{Id: "R2", Type: Lecture, Capacity: 20},
		},
	}
}

func seed(value int64) *int64 {
	return &value
}

func newTestTimetabler(t *testing.T, options Options) Timetabler {
	timetabler, err := NewTimetabler(options)
	assert.NoError(t, err)
	return timetabler
}

// dpllSolver is an in-process SAT solver (unit propagation plus chronological backtracking) for tests
type dpllSolver struct{}

func (dpllSolver) Name() string {
	return "dpll"
}

func (dpllSolver) Solve(ctx context.Context, instance sat.SAT) (sat.SATSolution, error) {
	values := make([]int8, instance.Variables+1)
	if !dpll(instance.Clauses, values) {
		return nil, nil
	}
	solution := make(sat.SATSolution, 0, instance.Variables)
	for variable := int64(1); variable <= int64(instance.Variables); variable++ {
		if values[variable] > 0 {
			solution = append(solution, variable)
		} else {
			solution = append(solution, -variable)
		}
	}
	return solution, nil
}

func valueOf(values []int8, literal int64) int8 {
	if literal < 0 {
		return -values[-literal]
	}
	return values[literal]
}

func assign(values []int8, literal int64) {
	if literal < 0 {
		values[-literal] = -1
	} else {
		values[literal] = 1
	}
}

func dpll(clauses [][]int64, values []int8) bool {
	trail := make([]int64, 0)
	undo := func() {
		for _, variable := range trail {
			values[variable] = 0
		}
	}

	//** Unit propagation
	for changed := true; changed; {
		changed = false
		for _, clause := range clauses {
			satisfied, unassigned, count := false, int64(0), 0
			for _, literal := range clause {
				value := valueOf(values, literal)
				if value > 0 {
					satisfied = true
					break
				} else if value == 0 {
					unassigned = literal
					count++
				}
			}
			if satisfied {
				continue
			}
			if count == 0 {
				undo()
				return false
			}
			if count == 1 {
				assign(values, unassigned)
				trail = append(trail, abs(unassigned))
				changed = true
			}
		}
	}

	//** Branch on an unassigned literal of the first unsatisfied clause
	for _, clause := range clauses {
		satisfied, branch := false, int64(0)
		for _, literal := range clause {
			value := valueOf(values, literal)
			if value > 0 {
				satisfied = true
				break
			} else if value == 0 && branch == 0 {
				branch = literal
			}
		}
		if satisfied {
			continue
		}
		for _, choice := range []int64{branch, -branch} {
			assign(values, choice)
			if dpll(clauses, values) {
				return true
			}
			values[abs(choice)] = 0
		}
		undo()
		return false
	}
	return true
}
