package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/limaJavier/timetabling-engine/internal/apperrors"
	"github.com/limaJavier/timetabling-engine/internal/config"
	"github.com/limaJavier/timetabling-engine/internal/dto"
	"github.com/limaJavier/timetabling-engine/pkg/model"
	"github.com/limaJavier/timetabling-engine/pkg/sat"
)

// TimetableService runs timetable generations with the configured scheduler defaults.
type TimetableService struct {
	cfg       config.SchedulerConfig
	solver    sat.SATSolver
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimetableService constructs the service. solver may be nil, in which case the sat strategy is unavailable.
func NewTimetableService(cfg config.SchedulerConfig, solver sat.SATSolver, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{cfg: cfg, solver: solver, metrics: metrics, validator: validate, logger: logger}
}

// Generate validates the payload, resolves the effective options and runs one generation.
// Invalid configurations are reported as errors; infeasible and partial outcomes are successful responses.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid generate payload")
	}

	strategy := model.Strategy(s.cfg.Strategy)
	if req.Strategy != "" {
		strategy = model.Strategy(req.Strategy)
	}
	if strategy == model.StrategySAT && s.solver == nil {
		return nil, apperrors.ErrSolverUnavailable
	}
	chains := s.cfg.Chains
	if req.Chains > 0 {
		chains = req.Chains
	}

	timetabler, err := model.NewTimetabler(model.Options{
		Strategy:        strategy,
		Solver:          s.solver,
		MaxIterations:   s.cfg.MaxIterations,
		StallIterations: s.cfg.StallIterations,
		Chains:          chains,
		Logger:          s.logger,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid generation options")
	}

	generationID := uuid.NewString()
	started := time.Now()
	result, err := timetabler.Build(ctx, model.GenerationRequest{
		Configuration: *req.Configuration,
		Seed:          req.Seed,
		MaxIterations: req.MaxIterations,
		TimeoutMs:     int(s.timeout(req.TimeoutMs).Milliseconds()),
	})
	elapsed := time.Since(started)

	var validationErr *model.ValidationError
	var infeasibleErr *model.InfeasibleError
	switch {
	case errors.As(err, &validationErr):
		s.metrics.ObserveGeneration("invalid", 0, false, elapsed)
		return nil, apperrors.WithDetails(apperrors.ErrInvalidConfig, validationErr.Violations)
	case errors.As(err, &infeasibleErr):
		// Reported through the status field
	case err != nil:
		s.metrics.ObserveGeneration("error", 0, false, elapsed)
		s.logger.Error("timetable generation failed", zap.String("generation_id", generationID), zap.Error(err))
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "timetable generation failed")
	}

	s.metrics.ObserveGeneration(string(result.Status), result.Penalty.Total, result.Result != nil, elapsed)
	s.logger.Info("timetable generation finished",
		zap.String("generation_id", generationID),
		zap.String("status", string(result.Status)),
		zap.String("strategy", string(strategy)),
		zap.Int("penalty", result.Penalty.Total),
		zap.Duration("elapsed", elapsed),
	)

	return &dto.GenerateTimetableResponse{GenerationID: generationID, GenerationResponse: result}, nil
}

// Validate checks a configuration without generating.
func (s *TimetableService) Validate(req dto.ValidateConfigurationRequest) (*dto.ValidateConfigurationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid validate payload")
	}
	violations, warnings := model.Inspect(*req.Configuration)
	return &dto.ValidateConfigurationResponse{
		Valid:      len(violations) == 0,
		Violations: append([]string{}, violations...),
		Warnings:   append([]string{}, warnings...),
	}, nil
}

// DefaultConfiguration returns the sample configuration shipped with the engine.
func (s *TimetableService) DefaultConfiguration() model.Configuration {
	return model.DefaultConfiguration()
}

// timeout resolves the requested timeout (0 means the default) and caps it at the configured ceiling
func (s *TimetableService) timeout(requestedMs int) time.Duration {
	timeout := s.cfg.Timeout
	if requestedMs > 0 {
		timeout = time.Duration(requestedMs) * time.Millisecond
	}
	if s.cfg.MaxTimeout > 0 && timeout > s.cfg.MaxTimeout {
		timeout = s.cfg.MaxTimeout
	}
	return timeout
}
