package config

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database != "~/.config/dailycal/dailycal.db" {
		t.Errorf("Database = %q", cfg.Database)
	}
	if cfg.TickInterval != time.Second {
		t.Errorf("TickInterval = %v, want 1s", cfg.TickInterval)
	}
	if cfg.Seed != 0 {
		t.Errorf("Seed = %d, want 0", cfg.Seed)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DAILYCAL_DATABASE", "/tmp/daily.db")
	t.Setenv("DAILYCAL_DEBUG", "true")
	t.Setenv("DAILYCAL_SEED", "42")
	t.Setenv("DAILYCAL_TICK", "250ms")
	t.Setenv("DAILYCAL_STARTER_URL", "http://127.0.0.1:9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database != "/tmp/daily.db" || !cfg.Debug || cfg.Seed != 42 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.TickInterval != 250*time.Millisecond {
		t.Errorf("TickInterval = %v", cfg.TickInterval)
	}
	if cfg.StarterURL != "http://127.0.0.1:9000" {
		t.Errorf("StarterURL = %q", cfg.StarterURL)
	}
}

func TestLoadError(t *testing.T) {
	t.Setenv("DAILYCAL_SEED", "not-an-int")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoadNonPositiveTick(t *testing.T) {
	t.Setenv("DAILYCAL_TICK", "0s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TickInterval != time.Second {
		t.Errorf("TickInterval = %v, want default", cfg.TickInterval)
	}
}

func TestIsPostgres(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"postgres://user@localhost/db", true},
		{"postgresql://user@localhost/db", true},
		{"~/.config/dailycal/dailycal.db", false},
		{"/var/lib/postgres.db", false},
	}
	for _, tt := range tests {
		if got := IsPostgres(tt.in); got != tt.want {
			t.Errorf("IsPostgres(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := ExpandPath("~/x/daily.db")
	if err != nil {
		t.Fatalf("ExpandPath() error = %v", err)
	}
	if got != filepath.Join(home, "x", "daily.db") {
		t.Errorf("ExpandPath() = %q", got)
	}
	if got, _ := ExpandPath("/abs/daily.db"); got != "/abs/daily.db" {
		t.Errorf("ExpandPath() changed an absolute path: %q", got)
	}
}

func TestDir(t *testing.T) {
	got, err := Dir("/srv/dailycal/dailycal.db")
	if err != nil {
		t.Fatalf("Dir() error = %v", err)
	}
	if got != "/srv/dailycal" {
		t.Errorf("Dir() = %q", got)
	}
}

// TestExitf_ExitsWithCode1 uses the subprocess pattern because os.Exit cannot
// be intercepted in-process.
func TestExitf_ExitsWithCode1(t *testing.T) {
	if os.Getenv("TEST_EXITF_SUBPROCESS") == "1" {
		Exitf("fatal: %s", "catalog missing")
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestExitf_ExitsWithCode1$")
	cmd.Env = append(os.Environ(), "TEST_EXITF_SUBPROCESS=1")

	out, err := cmd.CombinedOutput()

	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		t.Fatalf("expected *exec.ExitError, got %T: %v", err, err)
	}
	if exitErr.ExitCode() != 1 {
		t.Fatalf("expected exit code 1, got %d", exitErr.ExitCode())
	}
	if !strings.Contains(string(out), "fatal: catalog missing") {
		t.Fatalf("expected output to contain %q, got %q", "fatal: catalog missing", string(out))
	}
}
