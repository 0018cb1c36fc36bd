package model

import (
	"github.com/limaJavier/timetabling-engine/pkg/sat"
)

// buildSat runs every constraint function on its own goroutine and concatenates their clauses in the order
// the functions are given, moving each function's auxiliary variables after those of the previous ones
func buildSat(variables uint64, constraints []func(state constraintState) clauseSet, state constraintState) sat.SAT {
	type collected struct {
		index int
		set   clauseSet
	}
	constraintsChannel := make(chan collected) // Channel to collect constraints

	// Execute constraints functions on different goroutines to improve performance
	for i, constraint := range constraints {
		go func() {
			constraintsChannel <- collected{index: i, set: constraint(state)}
		}()
	}

	// Collect generated constraints
	sets := make([]clauseSet, len(constraints))
	for range constraints {
		result := <-constraintsChannel
		sets[result.index] = result.set
	}

	satInstance := sat.SAT{
		Variables: variables,
		Clauses:   [][]int64{},
	}
	offset := uint64(0)
	for _, set := range sets {
		for _, clause := range set.clauses {
			for i, literal := range clause {
				if abs(literal) > int64(variables) {
					clause[i] = sign(literal) * (abs(literal) + int64(offset))
				}
			}
			satInstance.Clauses = append(satInstance.Clauses, clause)
		}
		offset += set.auxiliaries
	}
	satInstance.Variables += offset

	return satInstance
}

func abs(literal int64) int64 {
	if literal < 0 {
		return -literal
	}
	return literal
}

func sign(literal int64) int64 {
	if literal < 0 {
		return -1
	}
	return 1
}
