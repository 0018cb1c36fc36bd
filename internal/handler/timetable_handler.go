package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/limaJavier/timetabling-engine/internal/apperrors"
	"github.com/limaJavier/timetabling-engine/internal/dto"
	"github.com/limaJavier/timetabling-engine/internal/response"
	"github.com/limaJavier/timetabling-engine/internal/service"
	"github.com/limaJavier/timetabling-engine/pkg/model"
)

type timetableGenerator interface {
	Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
	Validate(req dto.ValidateConfigurationRequest) (*dto.ValidateConfigurationResponse, error)
	DefaultConfiguration() model.Configuration
}

// TimetableHandler exposes timetable generation and configuration endpoints.
type TimetableHandler struct {
	service timetableGenerator
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Generate builds a timetable for the posted configuration.
// Invalid configurations answer 400; infeasible and partial outcomes answer 200 with their status.
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid generate payload"))
		return
	}
	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, map[string]interface{}{"status": result.Status})
}

// Validate checks a configuration without generating.
func (h *TimetableHandler) Validate(c *gin.Context) {
	var req dto.ValidateConfigurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid validate payload"))
		return
	}
	result, err := h.service.Validate(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Default returns the configuration the client starts from.
func (h *TimetableHandler) Default(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.DefaultConfiguration())
}

// Decoding errors name the offending field (unknown configuration keys included), so they travel as details
func invalidPayload(err error, message string) *apperrors.Error {
	return apperrors.WithDetails(apperrors.Wrap(err, apperrors.ErrValidation.Code, http.StatusBadRequest, message), []string{err.Error()})
}
