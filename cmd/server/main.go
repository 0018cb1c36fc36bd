package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/limaJavier/timetabling-engine/internal/config"
	"github.com/limaJavier/timetabling-engine/internal/handler"
	"github.com/limaJavier/timetabling-engine/internal/logger"
	"github.com/limaJavier/timetabling-engine/internal/middleware"
	"github.com/limaJavier/timetabling-engine/internal/service"
	"github.com/limaJavier/timetabling-engine/pkg/sat"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	var solver sat.SATSolver
	if cfg.SAT.Solver != "" {
		solverConfig, err := sat.LoadConfig(cfg.SAT.ConfigPath)
		if err != nil {
			logr.Fatal("failed to load solver config", zap.Error(err))
		}
		solver, err = sat.NewSolver(cfg.SAT.Solver, solverConfig)
		if err != nil {
			logr.Fatal("failed to init solver", zap.Error(err))
		}
	}

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}
	timetableSvc := service.NewTimetableService(cfg.Scheduler, solver, metricsSvc, validator.New(), logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc))

	handler.Register(r, cfg.APIPrefix, handler.NewTimetableHandler(timetableSvc), handler.NewMetricsHandler(metricsSvc))

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "strategy", cfg.Scheduler.Strategy, "solver", cfg.SAT.Solver)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
