package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
)

const defaultMaxDailyHours = 4

// Config aggregates all runtime settings for the planner.
type Config struct {
	Storage  StorageConfig
	Planner  PlannerConfig
	Jobs     JobsConfig
	Focus    FocusConfig
	Telegram TelegramConfig
	Logger   LoggerConfig
}

type StorageConfig struct {
	Backend string
	Path    string
}

type PlannerConfig struct {
	StartTime     string
	MaxDailyHours float64
}

type JobsConfig struct {
	EvaluationTime string
	ReportTime     string
}

type FocusConfig struct {
	GraceWindow time.Duration
}

type TelegramConfig struct {
	Token  string
	ChatID int64
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

// Load reads configuration from environment variables (optionally .env) with
// sane defaults. Malformed values fall back to defaults rather than failing;
// only an unknown storage backend is an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Storage: StorageConfig{
			Backend: strings.ToLower(getEnv("STORAGE_BACKEND", BackendSQLite)),
			Path:    getEnv("STORAGE_PATH", "studysmart.db"),
		},
		Planner: PlannerConfig{
			StartTime:     parseClock(os.Getenv("START_TIME"), "09:00"),
			MaxDailyHours: parseHours(os.Getenv("MAX_DAILY_HOURS")),
		},
		Jobs: JobsConfig{
			EvaluationTime: parseClock(os.Getenv("EVALUATION_TIME"), "00:05"),
			ReportTime:     parseClock(os.Getenv("REPORT_TIME"), "08:00"),
		},
		Focus: FocusConfig{
			GraceWindow: parseDuration(os.Getenv("FOCUS_GRACE"), 5*time.Second),
		},
		Telegram: TelegramConfig{
			Token:  strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
			ChatID: parseInt64(os.Getenv("TELEGRAM_CHAT_ID")),
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "console"),
		},
	}

	switch cfg.Storage.Backend {
	case BackendSQLite, BackendBolt:
	default:
		return cfg, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.Storage.Backend)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// parseHours treats non-numeric or non-positive study hours as the default.
func parseHours(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultMaxDailyHours
	}
	hours, err := strconv.ParseFloat(raw, 64)
	if err != nil || hours <= 0 {
		return defaultMaxDailyHours
	}
	return hours
}

func parseClock(raw, fallback string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	parts := strings.Split(raw, ":")
	if len(parts) != 2 {
		return fallback
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return fallback
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return fallback
	}
	return raw
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseInt64(raw string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
