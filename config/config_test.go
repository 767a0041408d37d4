package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	os.Unsetenv("VIGIL_PORT")
	os.Unsetenv("VIGIL_DATABASE_URL")
	os.Unsetenv("VIGIL_SCAN_INTERVAL")
	os.Unsetenv("VIGIL_RETENTION_DAYS")

	cfg := Load()

	if cfg.Port != "8700" {
		t.Errorf("Port = %q, want 8700", cfg.Port)
	}
	if cfg.ScanInterval != time.Minute {
		t.Errorf("ScanInterval = %v, want 1m", cfg.ScanInterval)
	}
	if cfg.MaxConcurrency != 16 {
		t.Errorf("MaxConcurrency = %d, want 16", cfg.MaxConcurrency)
	}
	if cfg.AlertTimeout != 10*time.Second {
		t.Errorf("AlertTimeout = %v, want 10s", cfg.AlertTimeout)
	}
	if cfg.RetentionDays != MaxReportDays {
		t.Errorf("RetentionDays = %d, want %d", cfg.RetentionDays, MaxReportDays)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("VIGIL_PORT", "9999")
	t.Setenv("VIGIL_SCAN_INTERVAL", "30s")
	t.Setenv("VIGIL_MAX_CONCURRENCY", "4")
	t.Setenv("VIGIL_RETENTION_DAYS", "120")

	cfg := Load()

	if cfg.Port != "9999" {
		t.Errorf("Port = %q, want 9999", cfg.Port)
	}
	if cfg.ScanInterval != 30*time.Second {
		t.Errorf("ScanInterval = %v, want 30s", cfg.ScanInterval)
	}
	if cfg.MaxConcurrency != 4 {
		t.Errorf("MaxConcurrency = %d, want 4", cfg.MaxConcurrency)
	}
	if cfg.RetentionDays != 120 {
		t.Errorf("RetentionDays = %d, want 120", cfg.RetentionDays)
	}
}

// Retention shorter than the longest reporting window would let a report
// window outlive its rows; Load clamps it.
func TestRetentionClampedToReportWindow(t *testing.T) {
	t.Setenv("VIGIL_RETENTION_DAYS", "30")

	cfg := Load()
	if cfg.RetentionDays != MaxReportDays {
		t.Errorf("RetentionDays = %d, want clamped to %d", cfg.RetentionDays, MaxReportDays)
	}
	if cfg.Retention() != time.Duration(MaxReportDays)*24*time.Hour {
		t.Errorf("Retention() = %v", cfg.Retention())
	}
}
