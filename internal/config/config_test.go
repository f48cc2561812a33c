package config

import (
	"os"
	"testing"
	"time"
)

func TestPort_Default(t *testing.T) {
	os.Unsetenv(EnvPort)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != DefaultPort {
		t.Errorf("default Port = %d, want %d", cfg.Port(), DefaultPort)
	}
}

func TestPort_FromEnv(t *testing.T) {
	os.Setenv(EnvPort, "9100")
	defer os.Unsetenv(EnvPort)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != 9100 {
		t.Errorf("Port = %d, want 9100", cfg.Port())
	}
}

func TestPort_Invalid(t *testing.T) {
	os.Setenv(EnvPort, "not-a-port")
	defer os.Unsetenv(EnvPort)

	if _, err := New(); err == nil {
		t.Fatal("expected error for non-numeric port")
	}
}

func TestPort_OutOfRange(t *testing.T) {
	os.Setenv(EnvPort, "70000")
	defer os.Unsetenv(EnvPort)

	if _, err := New(); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
}

func TestSettleDelay_Default(t *testing.T) {
	os.Unsetenv(EnvSettleMs)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SettleDelay() != DefaultSettleMs*time.Millisecond {
		t.Errorf("default SettleDelay = %v, want %v", cfg.SettleDelay(), DefaultSettleMs*time.Millisecond)
	}
}

func TestSettleDelay_FromEnv(t *testing.T) {
	os.Setenv(EnvSettleMs, "5")
	defer os.Unsetenv(EnvSettleMs)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SettleDelay() != 5*time.Millisecond {
		t.Errorf("SettleDelay = %v, want 5ms", cfg.SettleDelay())
	}
}

func TestSettleDelay_Negative(t *testing.T) {
	os.Setenv(EnvSettleMs, "-1")
	defer os.Unsetenv(EnvSettleMs)

	if _, err := New(); err == nil {
		t.Fatal("expected error for negative settle delay")
	}
}

func TestHeadless_FromEnv(t *testing.T) {
	os.Setenv(EnvHeadless, "1")
	defer os.Unsetenv(EnvHeadless)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Headless() {
		t.Error("Headless = false, want true")
	}
}

func TestDBPath_UsesDataDir(t *testing.T) {
	os.Setenv(EnvDataDir, "/tmp/svga-test")
	defer os.Unsetenv(EnvDataDir)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DBPath() != "/tmp/svga-test/"+DBFilename {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath(), "/tmp/svga-test/"+DBFilename)
	}
}
