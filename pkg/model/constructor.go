package model

import (
	"context"
	"math/rand"
	"slices"

	"go.uber.org/zap"
)

// constructor produces a complete feasible assignment, the starting point of the optimizer
type constructor interface {
	Construct(ctx context.Context, d *domain, rng *rand.Rand) (*assignment, error)
}

const defaultConstructionBudget = 200_000

type backtrackingConstructor struct {
	budget int // Maximum number of search nodes
	logger *zap.Logger
}

func newBacktrackingConstructor(budget int, logger *zap.Logger) constructor {
	if budget <= 0 {
		budget = defaultConstructionBudget
	}
	return &backtrackingConstructor{budget: budget, logger: logger}
}

type option struct {
	placement placement
	repack    bool // Placement is only reachable by repacking rooms
	penalty   int
}

type search struct {
	ctx     context.Context
	a       *assignment
	rng     *rand.Rand
	budget  int
	nodes   int
	aborted bool
}

func (c *backtrackingConstructor) Construct(ctx context.Context, d *domain, rng *rand.Rand) (*assignment, error) {
	state := &search{
		ctx:    ctx,
		a:      newAssignment(d),
		rng:    rng,
		budget: c.budget,
	}

	found := state.solve()
	c.logger.Debug("backtracking construction finished",
		zap.Bool("found", found),
		zap.Bool("aborted", state.aborted),
		zap.Int("nodes", state.nodes),
	)

	if found {
		return state.a, nil
	} else if state.aborted {
		reason := "search budget exhausted before a complete assignment was found"
		if ctx.Err() != nil {
			reason = "time limit reached before a complete assignment was found"
		}
		return nil, &InfeasibleError{Reasons: []string{reason}, Proven: false}
	}
	return nil, &InfeasibleError{
		Reasons: []string{"no assignment satisfies every hard constraint (exhaustive search)"},
		Proven:  true,
	}
}

func (state *search) solve() bool {
	if state.a.complete() {
		return true
	}
	if state.nodes++; state.nodes > state.budget || state.ctx.Err() != nil {
		state.aborted = true
		return false
	}

	//** Select the unplaced session with the fewest options (ties: longest first, then lowest id)
	selected, options := -1, []option(nil)
	for s := range state.a.placements {
		if state.a.placements[s].placed() {
			continue
		}
		sessionOptions := state.options(s, len(options))
		if selected == -1 ||
			len(sessionOptions) < len(options) ||
			(len(sessionOptions) == len(options) && state.a.domain.sessions[s].duration > state.a.domain.sessions[selected].duration) {
			selected, options = s, sessionOptions
		}
		if len(options) == 0 {
			return false
		}
	}

	//** Try the options, cheapest first; shuffling beforehand breaks ties according to the seed
	state.rng.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })
	slices.SortStableFunc(options, func(x, y option) int {
		if x.repack != y.repack {
			if x.repack {
				return 1
			}
			return -1
		}
		return x.penalty - y.penalty
	})

	for _, candidate := range options {
		var undo func()
		if candidate.repack {
			revert, ok := state.a.repackRooms(selected, candidate.placement)
			if !ok {
				continue
			}
			undo = revert
		} else {
			state.a.place(selected, candidate.placement)
			undo = func() { state.a.unplace(selected) }
		}

		if state.solve() {
			return true
		}
		undo()
		if state.aborted {
			return false
		}
	}
	return false
}

// Returns the options of session s. Counting stops early once it's clear that s won't be the most constrained session.
func (state *search) options(s int, limit int) []option {
	a := state.a
	options := make([]option, 0)
	for _, candidate := range a.domain.candidates[s] {
		switch a.check(s, candidate, false) {
		case satisfied:
			options = append(options, option{placement: candidate, penalty: a.domain.sessionPenalty(s, candidate)})
		case roomClash:
			options = append(options, option{placement: candidate, repack: true, penalty: a.domain.sessionPenalty(s, candidate)})
		}
		if limit > 0 && len(options) > limit {
			break
		}
	}
	return options
}
