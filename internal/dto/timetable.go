package dto

import "github.com/limaJavier/timetabling-engine/pkg/model"

// GenerateTimetableRequest asks for a timetable of the given configuration. Zero values fall back to the
// service defaults.
type GenerateTimetableRequest struct {
	Configuration *model.Configuration `json:"configuration" validate:"required"`
	Seed          *int64               `json:"seed,omitempty"`
	MaxIterations int                  `json:"maxIterations,omitempty" validate:"min=0"`
	TimeoutMs     int                  `json:"timeoutMs,omitempty" validate:"min=0"`
	Strategy      string               `json:"strategy,omitempty" validate:"omitempty,oneof=backtracking sat"`
	Chains        int                  `json:"chains,omitempty" validate:"min=0,max=16"`
}

// GenerateTimetableResponse carries the generation outcome under a unique generation id.
type GenerateTimetableResponse struct {
	GenerationID string `json:"generationId"`
	model.GenerationResponse
}

// ValidateConfigurationRequest wraps a configuration to be checked without generating.
type ValidateConfigurationRequest struct {
	Configuration *model.Configuration `json:"configuration" validate:"required"`
}

// ValidateConfigurationResponse lists blocking violations and non-blocking warnings.
type ValidateConfigurationResponse struct {
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations"`
	Warnings   []string `json:"warnings"`
}
