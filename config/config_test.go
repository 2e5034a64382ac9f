package config

import (
	"testing"
	"time"
)

// setRequired sets the minimum environment Load needs to succeed.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("ADMIN_SECRET", "hunter2")
	t.Setenv("ADMIN_NAMES", "Owen")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.Server.Addr(); got != "0.0.0.0:8080" {
		t.Errorf("Addr() = %q, want 0.0.0.0:8080", got)
	}
	if cfg.History.Size != 200 {
		t.Errorf("History.Size = %d, want 200", cfg.History.Size)
	}
	if cfg.Reset.Timezone != "America/Los_Angeles" {
		t.Errorf("Reset.Timezone = %q", cfg.Reset.Timezone)
	}
	if cfg.RateLimit.MaxMessages != 5 || cfg.RateLimit.Window != 5*time.Second || cfg.RateLimit.Cooldown != 15*time.Second {
		t.Errorf("unexpected rate limit defaults: %+v", cfg.RateLimit)
	}
	if cfg.Admin.DeleteSecret != "" {
		t.Errorf("DeleteSecret should default empty, got %q", cfg.Admin.DeleteSecret)
	}
}

func TestLoadRequiresAdminSecret(t *testing.T) {
	t.Setenv("ADMIN_SECRET", "")
	t.Setenv("ADMIN_NAMES", "Owen")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing ADMIN_SECRET")
	}
}

func TestLoadRequiresAdminNames(t *testing.T) {
	t.Setenv("ADMIN_SECRET", "hunter2")
	t.Setenv("ADMIN_NAMES", " , ,")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for empty ADMIN_NAMES")
	}
}

func TestLoadSplitsAdminNames(t *testing.T) {
	t.Setenv("ADMIN_SECRET", "hunter2")
	t.Setenv("ADMIN_NAMES", "Jonny_Boi, AceLemming ,Owen")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"Jonny_Boi", "AceLemming", "Owen"}
	if len(cfg.Admin.Names) != len(want) {
		t.Fatalf("Names = %v, want %v", cfg.Admin.Names, want)
	}
	for i, name := range want {
		if cfg.Admin.Names[i] != name {
			t.Errorf("Names[%d] = %q, want %q", i, cfg.Admin.Names[i], name)
		}
	}
	if !cfg.Admin.IsAdminName("AceLemming") {
		t.Error("IsAdminName(AceLemming) = false")
	}
	if cfg.Admin.IsAdminName("acelemming") {
		t.Error("IsAdminName must be case sensitive")
	}
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	setRequired(t)
	t.Setenv("RESET_TIMEZONE", "Mars/Olympus_Mons")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestLoadRejectsBadHistorySize(t *testing.T) {
	setRequired(t)
	t.Setenv("HISTORY_SIZE", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for HISTORY_SIZE below 1")
	}
}
