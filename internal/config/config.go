package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Log       LogConfig
	Scheduler SchedulerConfig
	SAT       SATConfig
	Metrics   MetricsConfig
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig holds the defaults of every generation; requests may lower the timeout but never raise it above MaxTimeout.
type SchedulerConfig struct {
	MaxIterations   int
	StallIterations int
	Timeout         time.Duration
	MaxTimeout      time.Duration
	Chains          int
	Strategy        string
}

// SATConfig selects the external solver used by the sat strategy.
type SATConfig struct {
	Solver     string
	ConfigPath string
}

type MetricsConfig struct {
	Enabled bool
}

// Load reads configuration from .env (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{
		Env:       v.GetString("ENV"),
		Port:      v.GetInt("PORT"),
		APIPrefix: v.GetString("API_PREFIX"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	timeout := parseDuration(v.GetString("SCHEDULER_TIMEOUT"), 30*time.Second)
	maxTimeout := parseDuration(v.GetString("SCHEDULER_MAX_TIMEOUT"), 2*time.Minute)
	if maxTimeout < timeout {
		maxTimeout = timeout
	}
	cfg.Scheduler = SchedulerConfig{
		MaxIterations:   v.GetInt("SCHEDULER_MAX_ITERATIONS"),
		StallIterations: v.GetInt("SCHEDULER_STALL_ITERATIONS"),
		Timeout:         timeout,
		MaxTimeout:      maxTimeout,
		Chains:          max(1, v.GetInt("SCHEDULER_CHAINS")),
		Strategy:        strings.ToLower(strings.TrimSpace(v.GetString("SCHEDULER_STRATEGY"))),
	}

	cfg.SAT = SATConfig{
		Solver:     strings.TrimSpace(v.GetString("SCHEDULER_SAT_SOLVER")),
		ConfigPath: strings.TrimSpace(v.GetString("SAT_CONFIG_PATH")),
	}

	cfg.Metrics = MetricsConfig{
		Enabled: v.GetBool("METRICS_ENABLED"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCHEDULER_MAX_ITERATIONS", 100000)
	v.SetDefault("SCHEDULER_STALL_ITERATIONS", 20000)
	v.SetDefault("SCHEDULER_TIMEOUT", "30s")
	v.SetDefault("SCHEDULER_MAX_TIMEOUT", "2m")
	v.SetDefault("SCHEDULER_CHAINS", 2)
	v.SetDefault("SCHEDULER_STRATEGY", "backtracking")
	v.SetDefault("SCHEDULER_SAT_SOLVER", "")
	v.SetDefault("SAT_CONFIG_PATH", "")

	v.SetDefault("METRICS_ENABLED", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}
