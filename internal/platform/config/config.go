package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	AdminResolutionRoundRobin = "round_robin"
	AdminResolutionFirst      = "first"
)

type Config struct {
	Addr                     string
	DatabaseURL              string
	JWTSecret                string
	TokenTTL                 time.Duration
	Environment              string
	RedisAddr                string
	LockTTL                  time.Duration
	AdminResolution          string
	ShiftTimezone            string
	ShiftStart               string
	ShiftEnd                 string
	LateGraceMinutes         int
	EarlyGraceMinutes        int
	HalfDayHours             float64
	CloseOpenBreakOnCheckout bool
	LeaveEntitlements        map[string]float64
	SeedAdminEmail           string
	SeedAdminPassword        string
	EmailFrom                string
	EmailEnabled             bool
	SMTPHost                 string
	SMTPPort                 int
	SMTPUser                 string
	SMTPPassword             string
	SMTPUseTLS               bool
	RunMigrations            bool
	RunSeed                  bool
	MaxBodyBytes             int64
	MetricsEnabled           bool
}

// fileOverlay is the optional YAML policy file referenced by CONFIG_FILE.
type fileOverlay struct {
	Shift struct {
		Timezone                 string   `yaml:"timezone"`
		Start                    string   `yaml:"start"`
		End                      string   `yaml:"end"`
		LateGraceMinutes         *int     `yaml:"late_grace_minutes"`
		EarlyGraceMinutes        *int     `yaml:"early_grace_minutes"`
		HalfDayHours             *float64 `yaml:"half_day_hours"`
		CloseOpenBreakOnCheckout *bool    `yaml:"close_open_break_on_checkout"`
	} `yaml:"shift"`
	Leave struct {
		AdminResolution string             `yaml:"admin_resolution"`
		Entitlements    map[string]float64 `yaml:"entitlements"`
	} `yaml:"leave"`
}

func Load() (Config, error) {
	cfg := Config{
		Addr:                     getEnv("APP_ADDR", ":8080"),
		DatabaseURL:              getEnv("DATABASE_URL", ""),
		JWTSecret:                getEnv("JWT_SECRET", ""),
		TokenTTL:                 getEnvDuration("TOKEN_TTL", 8*time.Hour),
		Environment:              getEnv("APP_ENV", "development"),
		RedisAddr:                getEnv("REDIS_ADDR", ""),
		LockTTL:                  getEnvDuration("LOCK_TTL", 5*time.Second),
		AdminResolution:          getEnv("ADMIN_RESOLUTION", AdminResolutionRoundRobin),
		ShiftTimezone:            getEnv("SHIFT_TIMEZONE", "UTC"),
		ShiftStart:               getEnv("SHIFT_START", "09:00"),
		ShiftEnd:                 getEnv("SHIFT_END", "18:00"),
		LateGraceMinutes:         getEnvInt("LATE_GRACE_MINUTES", 30),
		EarlyGraceMinutes:        getEnvInt("EARLY_GRACE_MINUTES", 30),
		HalfDayHours:             getEnvFloat("HALF_DAY_HOURS", 4),
		CloseOpenBreakOnCheckout: getEnvBool("CLOSE_OPEN_BREAK_ON_CHECKOUT", false),
		SeedAdminEmail:           getEnv("SEED_ADMIN_EMAIL", ""),
		SeedAdminPassword:        getEnv("SEED_ADMIN_PASSWORD", ""),
		EmailFrom:                getEnv("EMAIL_FROM", "no-reply@example.com"),
		EmailEnabled:             getEnvBool("EMAIL_ENABLED", false),
		SMTPHost:                 getEnv("SMTP_HOST", ""),
		SMTPPort:                 getEnvInt("SMTP_PORT", 587),
		SMTPUser:                 getEnv("SMTP_USER", ""),
		SMTPPassword:             getEnv("SMTP_PASSWORD", ""),
		SMTPUseTLS:               getEnvBool("SMTP_USE_TLS", true),
		RunMigrations:            getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:                  getEnvBool("RUN_SEED", true),
		MaxBodyBytes:             int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		MetricsEnabled:           getEnvBool("METRICS_ENABLED", true),
	}

	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read file %s: %w", path, err)
	}
	var overlay fileOverlay
	if err := yaml.Unmarshal(b, &overlay); err != nil {
		return fmt.Errorf("config: parse yaml: %w", err)
	}

	shift := overlay.Shift
	if shift.Timezone != "" {
		c.ShiftTimezone = shift.Timezone
	}
	if shift.Start != "" {
		c.ShiftStart = shift.Start
	}
	if shift.End != "" {
		c.ShiftEnd = shift.End
	}
	if shift.LateGraceMinutes != nil {
		c.LateGraceMinutes = *shift.LateGraceMinutes
	}
	if shift.EarlyGraceMinutes != nil {
		c.EarlyGraceMinutes = *shift.EarlyGraceMinutes
	}
	if shift.HalfDayHours != nil {
		c.HalfDayHours = *shift.HalfDayHours
	}
	if shift.CloseOpenBreakOnCheckout != nil {
		c.CloseOpenBreakOnCheckout = *shift.CloseOpenBreakOnCheckout
	}
	if overlay.Leave.AdminResolution != "" {
		c.AdminResolution = overlay.Leave.AdminResolution
	}
	if len(overlay.Leave.Entitlements) > 0 {
		c.LeaveEntitlements = overlay.Leave.Entitlements
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// Location resolves ShiftTimezone.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.ShiftTimezone)
}

// ParseClock parses an "HH:MM" wall-clock value into an offset from midnight.
func ParseClock(value string) (time.Duration, error) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q", value)
	}
	return time.Duration(parsed.Hour())*time.Hour + time.Duration(parsed.Minute())*time.Minute, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedAdminPassword) == "" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be changed or RUN_SEED disabled in production")
		}
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("SHIFT_TIMEZONE is invalid: %w", err)
	}
	start, err := ParseClock(c.ShiftStart)
	if err != nil {
		return fmt.Errorf("SHIFT_START: %w", err)
	}
	end, err := ParseClock(c.ShiftEnd)
	if err != nil {
		return fmt.Errorf("SHIFT_END: %w", err)
	}
	if end <= start {
		return fmt.Errorf("SHIFT_END must be after SHIFT_START")
	}
	if c.LateGraceMinutes < 0 || c.EarlyGraceMinutes < 0 {
		return fmt.Errorf("grace minutes must not be negative")
	}
	if c.HalfDayHours <= 0 {
		return fmt.Errorf("HALF_DAY_HOURS must be positive")
	}
	switch c.AdminResolution {
	case AdminResolutionRoundRobin, AdminResolutionFirst:
	default:
		return fmt.Errorf("ADMIN_RESOLUTION must be %q or %q", AdminResolutionRoundRobin, AdminResolutionFirst)
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.EmailEnabled && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	return nil
}
