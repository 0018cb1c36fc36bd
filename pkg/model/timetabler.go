package model

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/limaJavier/timetabling-engine/pkg/sat"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Strategy string

const (
	StrategyBacktracking Strategy = "backtracking"
	StrategySAT          Strategy = "sat"
)

type Status string

const (
	StatusOk         Status = "ok"
	StatusInfeasible Status = "infeasible"
	StatusPartial    Status = "partial"
)

// GenerationRequest is what the configuration client submits. Zero MaxIterations/TimeoutMs fall back to the timetabler's options.
type GenerationRequest struct {
	Configuration Configuration `json:"configuration"`
	Seed          *int64        `json:"seed,omitempty"`
	MaxIterations int           `json:"maxIterations,omitempty"`
	TimeoutMs     int           `json:"timeoutMs,omitempty"`
}

type GenerationStats struct {
	Strategy   Strategy `json:"strategy"`
	Seed       int64    `json:"seed"`
	Chains     int      `json:"chains"`
	Iterations int      `json:"iterations"`
	Accepted   int      `json:"accepted"`
	ElapsedMs  int64    `json:"elapsedMs"`
}

type GenerationResponse struct {
	Status     Status           `json:"status"`
	Converged  bool             `json:"converged"`
	Result     *ScheduleResult  `json:"result,omitempty"`
	Violations []string         `json:"violations,omitempty"`
	Penalty    PenaltyBreakdown `json:"penalty"`
	Stats      GenerationStats  `json:"stats"`
}

type Options struct {
	Strategy Strategy
	Solver   sat.SATSolver // Required by StrategySAT

	MaxIterations      int
	StallIterations    int
	Timeout            time.Duration
	Chains             int // Independent annealing runs, the best one wins
	TempHigh, TempLow  float64
	ConstructionBudget int // Backtracking nodes before giving up

	Logger *zap.Logger
}

type Timetabler interface {
	// Build validates the configuration and searches a feasible timetable of minimum penalty. A malformed
	// configuration yields a *ValidationError; an infeasible one a response with status infeasible together
	// with the *InfeasibleError explaining it.
	Build(ctx context.Context, request GenerationRequest) (GenerationResponse, error)

	// Verify re-checks a schedule against every hard constraint of the configuration
	Verify(configuration Configuration, result ScheduleResult) bool
}

type timetabler struct {
	options     Options
	constructor constructor
	logger      *zap.Logger
}

func NewTimetabler(options Options) (Timetabler, error) {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if options.Chains <= 0 {
		options.Chains = 1
	}
	if options.Strategy == "" {
		options.Strategy = StrategyBacktracking
	}

	var construction constructor
	switch options.Strategy {
	case StrategyBacktracking:
		construction = newBacktrackingConstructor(options.ConstructionBudget, logger)
	case StrategySAT:
		if options.Solver == nil {
			return nil, errors.New("the sat strategy requires a SAT solver")
		}
		construction = newSATConstructor(options.Solver, logger)
	default:
		return nil, fmt.Errorf("unknown strategy \"%v\"", options.Strategy)
	}

	return &timetabler{options: options, constructor: construction, logger: logger}, nil
}

func (t *timetabler) Build(ctx context.Context, request GenerationRequest) (GenerationResponse, error) {
	started := time.Now()
	configuration := request.Configuration.normalized()

	//** Validate
	violations, warnings := Inspect(configuration)
	if len(violations) > 0 {
		return GenerationResponse{}, &ValidationError{Violations: violations}
	}
	for _, warning := range warnings {
		t.logger.Warn("configuration warning", zap.String("warning", warning))
	}

	seed := time.Now().UnixNano()
	if request.Seed != nil {
		seed = *request.Seed
	}
	response := GenerationResponse{
		Stats: GenerationStats{Strategy: t.options.Strategy, Seed: seed, Chains: t.options.Chains},
	}
	finish := func() {
		response.Stats.ElapsedMs = time.Since(started).Milliseconds()
	}

	timeout := t.options.Timeout
	if request.TimeoutMs > 0 {
		timeout = time.Duration(request.TimeoutMs) * time.Millisecond
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	//** Build domain and look for obvious infeasibility
	d := newDomain(configuration)
	t.logger.Debug("domain built",
		zap.Int("sessions", len(d.sessions)),
		zap.Int("candidates", sumCandidates(d)),
	)
	if reasons := d.diagnose(); len(reasons) > 0 {
		finish()
		return t.infeasible(response, &InfeasibleError{Reasons: reasons, Proven: true})
	}

	//** Construct a feasible starting point
	rng := rand.New(rand.NewSource(seed))
	start, err := t.constructor.Construct(ctx, d, rng)
	if err != nil {
		finish()
		var infeasibleErr *InfeasibleError
		if errors.As(err, &infeasibleErr) {
			return t.infeasible(response, infeasibleErr)
		}
		return GenerationResponse{}, err
	}

	//** Optimize
	maxIterations := t.options.MaxIterations
	if request.MaxIterations > 0 {
		maxIterations = request.MaxIterations
	}
	annealer := newAnnealer(d, annealingParams{
		maxIterations:   maxIterations,
		stallIterations: t.options.StallIterations,
		tempHigh:        t.options.TempHigh,
		tempLow:         t.options.TempLow,
	}, t.logger)

	results := make([]chainResult, t.options.Chains)
	group, groupCtx := errgroup.WithContext(ctx)
	for chain := range t.options.Chains {
		chainSeed := seed + int64(chain)
		group.Go(func() error {
			results[chain] = annealer.run(groupCtx, start, rand.New(rand.NewSource(chainSeed)))
			return nil
		})
	}
	_ = group.Wait()

	best := results[0]
	for _, result := range results {
		response.Stats.Iterations += result.iterations
		response.Stats.Accepted += result.accepted
		if result.penalty < best.penalty {
			best = result
		}
	}

	// Never hand out a timetable breaking a hard constraint
	if !best.best.valid() {
		finish()
		return GenerationResponse{}, errors.New("optimizer produced an invalid assignment")
	}

	result := assemble(best.best)
	response.Result = &result
	response.Penalty = best.best.breakdown()
	response.Converged = best.converged
	response.Status = StatusOk
	if !best.converged {
		response.Status = StatusPartial
	}
	finish()

	t.logger.Info("timetable generated",
		zap.String("status", string(response.Status)),
		zap.Int("penalty", response.Penalty.Total),
		zap.Int64("seed", seed),
		zap.Int("iterations", response.Stats.Iterations),
		zap.Int64("elapsedMs", response.Stats.ElapsedMs),
	)
	return response, nil
}

func (t *timetabler) infeasible(response GenerationResponse, err *InfeasibleError) (GenerationResponse, error) {
	response.Status = StatusInfeasible
	response.Violations = err.Reasons
	t.logger.Info("timetable infeasible",
		zap.Strings("reasons", err.Reasons),
		zap.Bool("proven", err.Proven),
	)
	return response, err
}

func (t *timetabler) Verify(configuration Configuration, result ScheduleResult) bool {
	return len(VerifySchedule(configuration, result)) == 0
}

func sumCandidates(d *domain) int {
	total := 0
	for _, candidates := range d.candidates {
		total += len(candidates)
	}
	return total
}
