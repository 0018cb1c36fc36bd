package handler

import (
	"github.com/gin-gonic/gin"
)

// Register mounts every route on the router. API routes live under prefix.
func Register(r *gin.Engine, prefix string, timetables *TimetableHandler, metrics *MetricsHandler) {
	r.GET("/health", metrics.Health)
	r.GET("/metrics", metrics.Prometheus)

	api := r.Group(prefix)
	api.POST("/timetables/generate", timetables.Generate)
	api.POST("/configurations/validate", timetables.Validate)
	api.GET("/configurations/default", timetables.Default)
}
