package model

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/limaJavier/timetabling-engine/pkg/sat"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// satConstructor encodes the choice of one candidate placement per session into CNF and hands it to an external solver.
// An unsatisfiable instance proves the configuration infeasible.
type satConstructor struct {
	solver sat.SATSolver
	logger *zap.Logger
}

func newSATConstructor(solver sat.SATSolver, logger *zap.Logger) constructor {
	return &satConstructor{solver: solver, logger: logger}
}

func (c *satConstructor) Construct(ctx context.Context, d *domain, _ *rand.Rand) (*assignment, error) {
	for s, candidates := range d.candidates {
		if len(candidates) == 0 {
			return nil, &InfeasibleError{
				Reasons: []string{fmt.Sprintf("course %v has no admissible placement", d.configuration.Courses[d.sessions[s].course].Id)},
				Proven:  true,
			}
		}
	}

	//** Build SAT instance
	indexer := newIndexer(lo.Map(d.candidates, func(candidates []placement, _ int) uint64 { return uint64(len(candidates)) }))
	state := constraintState{domain: d, indexer: indexer}

	// Constraints functions
	constraints := []func(state constraintState) clauseSet{
		completenessConstraints,
		uniquenessConstraints,
		teacherConstraints,
		roomConstraints,
		groupConstraints,
		dailyLoadConstraints,
		weeklyLoadConstraints,
	}

	satInstance := buildSat(indexer.Variables(), constraints, state)
	c.logger.Debug("SAT instance built",
		zap.String("solver", c.solver.Name()),
		zap.Uint64("variables", satInstance.Variables),
		zap.Int("clauses", len(satInstance.Clauses)),
	)

	//** Solve SAT instance
	solution, err := c.solver.Solve(ctx, satInstance)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &InfeasibleError{Reasons: []string{"time limit reached before the SAT solver answered"}, Proven: false}
		}
		return nil, fmt.Errorf("cannot solve SAT instance: %w", err)
	} else if solution == nil {
		return nil, &InfeasibleError{
			Reasons: []string{fmt.Sprintf("no assignment satisfies every hard constraint (proved unsatisfiable by %v)", c.solver.Name())},
			Proven:  true,
		}
	}

	return decode(d, indexer, solution)
}

// decode places the candidates selected by a model, checking each placement against the feasibility predicate
func decode(d *domain, indexer indexer, solution sat.SATSolution) (*assignment, error) {
	a := newAssignment(d)
	for _, literal := range solution {
		// Acknowledge only positive candidate variables, auxiliary ones are meaningless here
		if literal <= 0 || uint64(literal) > indexer.Variables() {
			continue
		}
		s, candidate := indexer.Attributes(uint64(literal))
		if a.placements[s].placed() {
			return nil, fmt.Errorf("SAT model selects two placements for session %d", s)
		}
		p := d.candidates[s][candidate]
		if violation := a.check(int(s), p, false); violation != satisfied {
			return nil, fmt.Errorf("SAT model places session %d infeasibly (violation %d)", s, violation)
		}
		a.place(int(s), p)
	}
	if !a.complete() {
		return nil, fmt.Errorf("SAT model places %d of %d sessions", a.placedCount, len(a.placements))
	}
	return a, nil
}
