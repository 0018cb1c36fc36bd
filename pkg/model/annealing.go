package model

import (
	"context"
	"math"
	"math/rand"

	"go.uber.org/zap"
)

const (
	defaultMaxIterations   = 100_000
	defaultStallIterations = 20_000
	defaultTempHigh        = 10.0
	defaultTempLow         = 0.05
)

type annealingParams struct {
	maxIterations   int
	stallIterations int
	tempHigh        float64
	tempLow         float64
}

// chainResult is the outcome of one annealing run
type chainResult struct {
	best       *assignment
	penalty    int
	iterations int
	accepted   int
	converged  bool
}

type annealer struct {
	params annealingParams
	logger *zap.Logger
	// Sessions of equal duration sharing a group with each session; swap partners are drawn from them half of the time
	neighbors [][]int
}

func newAnnealer(d *domain, params annealingParams, logger *zap.Logger) *annealer {
	if params.maxIterations <= 0 {
		params.maxIterations = defaultMaxIterations
	}
	if params.stallIterations <= 0 {
		params.stallIterations = defaultStallIterations
	}
	if params.tempHigh <= 0 {
		params.tempHigh = defaultTempHigh
	}
	if params.tempLow <= 0 || params.tempLow >= params.tempHigh {
		params.tempLow = min(defaultTempLow, params.tempHigh/2)
	}

	neighbors := make([][]int, len(d.sessions))
	for i, s1 := range d.sessions {
		for j, s2 := range d.sessions {
			if i != j && s1.duration == s2.duration && sharesGroup(s1, s2) {
				neighbors[i] = append(neighbors[i], j)
			}
		}
	}

	return &annealer{params: params, logger: logger, neighbors: neighbors}
}

func sharesGroup(s1, s2 session) bool {
	for _, g1 := range s1.groups {
		for _, g2 := range s2.groups {
			if g1 == g2 {
				return true
			}
		}
	}
	return false
}

// run anneals a private copy of start. The best assignment seen is returned; it is feasible at every step
// because moves are only applied after the feasibility predicate accepted them.
func (o *annealer) run(ctx context.Context, start *assignment, rng *rand.Rand) chainResult {
	current := start.clone()
	currentPenalty := current.penalty()
	result := chainResult{best: current.clone(), penalty: currentPenalty}

	if currentPenalty == 0 || len(current.placements) == 0 {
		result.converged = true
		return result
	}

	stall := 0
	steps := float64(max(1, o.params.maxIterations-1))
	for step := range o.params.maxIterations {
		// Moves are atomic, cancellation is only observed between them
		if step%64 == 0 && ctx.Err() != nil {
			return result
		}
		result.iterations++

		temperature := o.params.tempHigh * math.Pow(o.params.tempLow/o.params.tempHigh, float64(step)/steps)

		delta, undo, ok := o.tryMove(current, rng)
		if ok {
			if delta <= 0 || rng.Float64() < math.Exp(-float64(delta)/temperature) {
				currentPenalty += delta
				result.accepted++
			} else {
				undo()
			}
		}

		if currentPenalty < result.penalty {
			result.best, result.penalty = current.clone(), currentPenalty
			stall = 0
			if currentPenalty == 0 {
				result.converged = true
				return result
			}
		} else if stall++; stall >= o.params.stallIterations {
			result.converged = true
			return result
		}
	}
	return result
}

// tryMove applies a random feasible move and returns the penalty delta together with a function reverting it.
// Moves that would break a hard constraint are never applied (ok = false).
func (o *annealer) tryMove(a *assignment, rng *rand.Rand) (delta int, undo func(), ok bool) {
	s := rng.Intn(len(a.placements))
	if rng.Intn(3) == 0 {
		if partner, found := o.partner(a, s, rng); found {
			return o.swap(a, s, partner)
		}
	}
	return o.relocate(a, s, rng)
}

func (o *annealer) partner(a *assignment, s int, rng *rand.Rand) (int, bool) {
	if len(o.neighbors[s]) > 0 && rng.Intn(2) == 0 {
		return o.neighbors[s][rng.Intn(len(o.neighbors[s]))], true
	}
	if len(a.placements) < 2 {
		return 0, false
	}
	other := rng.Intn(len(a.placements) - 1)
	if other >= s {
		other++
	}
	if a.domain.sessions[other].duration != a.domain.sessions[s].duration {
		return 0, false
	}
	return other, true
}

// relocate moves session s to another of its candidate placements (possibly changing teacher and room)
func (o *annealer) relocate(a *assignment, s int, rng *rand.Rand) (int, func(), bool) {
	d := a.domain
	candidates := d.candidates[s]
	if len(candidates) < 2 {
		return 0, nil, false
	}

	previous := a.placements[s]
	target := candidates[rng.Intn(len(candidates))]
	if target == previous {
		return 0, nil, false
	}
	delta := d.sessionPenalty(s, target) - d.sessionPenalty(s, previous)

	switch a.check(s, target, false) {
	case satisfied:
		a.place(s, target)
		return delta, func() { a.place(s, previous) }, true
	case roomClash:
		if undo, ok := a.repackRooms(s, target); ok {
			return delta, undo, true
		}
	}
	return 0, nil, false
}

// swap exchanges the day and start period of two sessions of equal duration. Each keeps its teacher and, when
// possible, its room; otherwise the first compatible free room is taken.
func (o *annealer) swap(a *assignment, s1, s2 int) (int, func(), bool) {
	d := a.domain
	previous1, previous2 := a.placements[s1], a.placements[s2]
	if previous1.day == previous2.day && previous1.start == previous2.start {
		return 0, nil, false
	}

	restore := func() {
		a.unplace(s1)
		a.unplace(s2)
		a.place(s1, previous1)
		a.place(s2, previous2)
	}

	a.unplace(s1)
	a.unplace(s2)

	target1, ok1 := o.retime(a, s1, previous1, previous2.day, previous2.start)
	if !ok1 {
		restore()
		return 0, nil, false
	}
	a.place(s1, target1)

	target2, ok2 := o.retime(a, s2, previous2, previous1.day, previous1.start)
	if !ok2 {
		restore()
		return 0, nil, false
	}
	a.place(s2, target2)

	delta := d.sessionPenalty(s1, target1) + d.sessionPenalty(s2, target2) -
		d.sessionPenalty(s1, previous1) - d.sessionPenalty(s2, previous2)
	return delta, restore, true
}

func (o *annealer) retime(a *assignment, s int, previous placement, day, start int) (placement, bool) {
	target := placement{day: day, start: start, room: previous.room, teacher: previous.teacher}
	if a.feasible(s, target) {
		return target, true
	}
	for _, room := range a.domain.sessions[s].rooms {
		target.room = room
		if a.feasible(s, target) {
			return target, true
		}
	}
	return placement{}, false
}
