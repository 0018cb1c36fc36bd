package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/limaJavier/timetabling-engine/internal/apperrors"
	"github.com/limaJavier/timetabling-engine/internal/config"
	"github.com/limaJavier/timetabling-engine/internal/dto"
	"github.com/limaJavier/timetabling-engine/pkg/model"
)

func newTimetableServiceFixture(t *testing.T) (*TimetableService, *MetricsService) {
	t.Helper()
	metrics := NewMetricsService()
	svc := NewTimetableService(config.SchedulerConfig{
		MaxIterations:   5000,
		StallIterations: 1000,
		Timeout:         10 * time.Second,
		MaxTimeout:      20 * time.Second,
		Chains:          2,
		Strategy:        string(model.StrategyBacktracking),
	}, nil, metrics, nil, zap.NewNop())
	return svc, metrics
}

func seed(value int64) *int64 {
	return &value
}

func TestTimetableServiceGenerateSuccess(t *testing.T) {
	svc, _ := newTimetableServiceFixture(t)
	configuration := model.DefaultConfiguration()

	resp, err := svc.Generate(context.Background(), dto.GenerateTimetableRequest{
		Configuration: &configuration,
		Seed:          seed(7),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.GenerationID)
	assert.Equal(t, model.StatusOk, resp.Status)
	require.NotNil(t, resp.Result)
	assert.Equal(t, 2, resp.Result.TeacherLoad["SJS"][model.TotalLoad])
	assert.Equal(t, 2, resp.Stats.Chains)
	assert.Equal(t, int64(7), resp.Stats.Seed)
}

func TestTimetableServiceGenerateInvalidConfiguration(t *testing.T) {
	svc, _ := newTimetableServiceFixture(t)
	configuration := model.DefaultConfiguration()
	configuration.Courses[0].EligibleTeachers = []string{"NOBODY"}

	_, err := svc.Generate(context.Background(), dto.GenerateTimetableRequest{Configuration: &configuration})
	require.Error(t, err)

	appErr := apperrors.FromError(err)
	assert.Equal(t, apperrors.ErrInvalidConfig.Code, appErr.Code)
	assert.NotEmpty(t, appErr.Details)
}

func TestTimetableServiceGenerateInfeasible(t *testing.T) {
	svc, _ := newTimetableServiceFixture(t)
	configuration := model.DefaultConfiguration()
	configuration.Rooms[0].Capacity = 30

	resp, err := svc.Generate(context.Background(), dto.GenerateTimetableRequest{Configuration: &configuration})
	require.NoError(t, err)
	assert.Equal(t, model.StatusInfeasible, resp.Status)
	assert.Nil(t, resp.Result)
	assert.NotEmpty(t, resp.Violations)
}

func TestTimetableServiceGeneratePayloadValidation(t *testing.T) {
	svc, _ := newTimetableServiceFixture(t)
	configuration := model.DefaultConfiguration()

	t.Run("MissingConfiguration", func(t *testing.T) {
		_, err := svc.Generate(context.Background(), dto.GenerateTimetableRequest{})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrValidation.Code, apperrors.FromError(err).Code)
	})

	t.Run("UnknownStrategy", func(t *testing.T) {
		_, err := svc.Generate(context.Background(), dto.GenerateTimetableRequest{Configuration: &configuration, Strategy: "genetic"})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrValidation.Code, apperrors.FromError(err).Code)
	})

	t.Run("TooManyChains", func(t *testing.T) {
		_, err := svc.Generate(context.Background(), dto.GenerateTimetableRequest{Configuration: &configuration, Chains: 64})
		require.Error(t, err)
	})

	t.Run("SATWithoutSolver", func(t *testing.T) {
		_, err := svc.Generate(context.Background(), dto.GenerateTimetableRequest{Configuration: &configuration, Strategy: "sat"})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrSolverUnavailable.Code, apperrors.FromError(err).Code)
	})
}

func TestTimetableServiceTimeout(t *testing.T) {
	svc, _ := newTimetableServiceFixture(t)

	assert.Equal(t, 10*time.Second, svc.timeout(0))
	assert.Equal(t, 500*time.Millisecond, svc.timeout(500))
	assert.Equal(t, 20*time.Second, svc.timeout(60_000))
}

func TestTimetableServiceValidate(t *testing.T) {
	svc, _ := newTimetableServiceFixture(t)

	configuration := model.DefaultConfiguration()
	resp, err := svc.Validate(dto.ValidateConfigurationRequest{Configuration: &configuration})
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.Empty(t, resp.Violations)
	assert.NotEmpty(t, resp.Warnings)

	configuration.TimetableSettings.PeriodsPerDay = 0
	resp, err = svc.Validate(dto.ValidateConfigurationRequest{Configuration: &configuration})
	require.NoError(t, err)
	assert.False(t, resp.Valid)
	assert.NotEmpty(t, resp.Violations)

	_, err = svc.Validate(dto.ValidateConfigurationRequest{})
	require.Error(t, err)
}

func TestTimetableServiceMetrics(t *testing.T) {
	svc, metrics := newTimetableServiceFixture(t)
	configuration := model.DefaultConfiguration()

	_, err := svc.Generate(context.Background(), dto.GenerateTimetableRequest{Configuration: &configuration, Seed: seed(1)})
	require.NoError(t, err)

	families, err := metrics.registry.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, family := range families {
		names = append(names, family.GetName())
	}
	joined := strings.Join(names, ",")
	assert.Contains(t, joined, "timetable_generations_total")
	assert.Contains(t, joined, "timetable_generation_duration_seconds")
	assert.Contains(t, joined, "timetable_generation_penalty")
}
