package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/fieldforce")
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if cfg.ShiftStart != "09:00" || cfg.ShiftEnd != "18:00" {
		t.Fatalf("unexpected shift defaults: %s-%s", cfg.ShiftStart, cfg.ShiftEnd)
	}
	if cfg.LateGraceMinutes != 30 || cfg.HalfDayHours != 4 {
		t.Fatalf("unexpected thresholds: %+v", cfg)
	}
	if cfg.AdminResolution != AdminResolutionRoundRobin {
		t.Fatalf("expected round robin default, got %s", cfg.AdminResolution)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate: %v", err)
	}
}

func TestLoadAppliesYAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	content := []byte(`
shift:
  timezone: Asia/Kolkata
  start: "10:00"
  end: "19:00"
  late_grace_minutes: 15
  close_open_break_on_checkout: true
leave:
  admin_resolution: first
  entitlements:
    casual: 10
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	t.Setenv("DATABASE_URL", "postgres://localhost/fieldforce")
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if cfg.ShiftTimezone != "Asia/Kolkata" || cfg.ShiftStart != "10:00" || cfg.ShiftEnd != "19:00" {
		t.Fatalf("overlay not applied: %+v", cfg)
	}
	if cfg.LateGraceMinutes != 15 || !cfg.CloseOpenBreakOnCheckout {
		t.Fatalf("overlay thresholds not applied: %+v", cfg)
	}
	if cfg.AdminResolution != AdminResolutionFirst || cfg.LeaveEntitlements["casual"] != 10 {
		t.Fatalf("leave overlay not applied: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		DatabaseURL:     "postgres://localhost/fieldforce",
		ShiftTimezone:   "UTC",
		ShiftStart:      "09:00",
		ShiftEnd:        "18:00",
		HalfDayHours:    4,
		AdminResolution: AdminResolutionFirst,
		MaxBodyBytes:    4096,
	}
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing database", func(c *Config) { c.DatabaseURL = "" }},
		{"production without secret", func(c *Config) { c.Environment = "production" }},
		{"bad timezone", func(c *Config) { c.ShiftTimezone = "Mars/Base" }},
		{"end before start", func(c *Config) { c.ShiftEnd = "08:00" }},
		{"bad clock", func(c *Config) { c.ShiftStart = "9am" }},
		{"unknown resolution", func(c *Config) { c.AdminResolution = "random" }},
		{"email without host", func(c *Config) { c.EmailEnabled = true }},
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("base config should validate: %v", err)
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestParseClock(t *testing.T) {
	got, err := ParseClock("09:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 9*time.Hour+30*time.Minute {
		t.Fatalf("unexpected offset %v", got)
	}
}
