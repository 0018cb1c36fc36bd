package sat

import (
	"context"
	"fmt"
	"strings"
)

// SATSolution holds the literals of a model, positive for true variables and negative for false ones
type SATSolution []int64

// SAT is a CNF formula over the variables 1..Variables
type SAT struct {
	Variables uint64
	Clauses   [][]int64
}

// SATSolver decides a SAT instance. A nil solution with a nil error means the instance is unsatisfiable.
type SATSolver interface {
	Solve(ctx context.Context, sat SAT) (SATSolution, error)
	Name() string
}

func (s SAT) ToDIMACS() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "p cnf %d %d\n", s.Variables, len(s.Clauses))
	for _, clause := range s.Clauses {
		for _, literal := range clause {
			fmt.Fprintf(&builder, "%d ", literal)
		}
		builder.WriteString("0\n")
	}
	return builder.String()
}
