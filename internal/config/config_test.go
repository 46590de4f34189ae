package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/AloySobek/ft-gomoku/engine"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return fs
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
engine:
  board_size: 15
  time_budget: 250ms
  human_color: white
  heuristics:
    open_3: 3000
redis:
  addr: "localhost:6379"
`)
	cfg, err := Load(newFlags(t, "--config", path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9090" || cfg.Engine.BoardSize != 15 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Engine.TimeBudget != 250*time.Millisecond {
		t.Fatalf("expected 250ms budget, got %v", cfg.Engine.TimeBudget)
	}
	if cfg.Engine.Heuristics.Open3 != 3000 || cfg.Engine.Heuristics.Open4 != engine.DefaultHeuristics().Open4 {
		t.Fatalf("heuristics should merge over defaults: %+v", cfg.Engine.Heuristics)
	}
	if cfg.Redis.TTL != 24*time.Hour || cfg.Engine.Depth != engine.DefaultSettings().Depth {
		t.Fatalf("untouched keys should keep defaults: %+v", cfg)
	}
	settings, err := cfg.Engine.Settings()
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if settings.HumanColor != engine.CellWhite || settings.BoardSize != 15 {
		t.Fatalf("unexpected settings %+v", settings)
	}
}

func TestZeroHeuristicWeightIsKept(t *testing.T) {
	path := writeConfig(t, "engine:\n  heuristics:\n    under_capture: 0\n")
	cfg, err := Load(newFlags(t, "--config", path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	settings, err := cfg.Engine.Settings()
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if settings.Heuristics.UnderCapture != 0 || settings.Heuristics.Open4 != engine.DefaultHeuristics().Open4 {
		t.Fatalf("expected under_capture switched off only: %+v", settings.Heuristics)
	}
}

func TestFlagsBeatFileAndEnv(t *testing.T) {
	path := writeConfig(t, "engine:\n  depth: 3\n")
	t.Setenv("GOMOKU_ENGINE_DEPTH", "5")
	cfg, err := Load(newFlags(t, "--config", path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Engine.Depth != 5 {
		t.Fatalf("environment should beat the file, got depth %d", cfg.Engine.Depth)
	}
	cfg, err = Load(newFlags(t, "--config", path, "--depth", "6"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Engine.Depth != 6 {
		t.Fatalf("flag should win, got depth %d", cfg.Engine.Depth)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []string{
		"engine:\n  board_size: 18\n",
		"engine:\n  human_color: green\n",
		"engine:\n  capture_win_stones: 7\n",
		"engine:\n  branching: 20\n  root_branching: 4\n",
		"log:\n  level: loud\n",
	}
	for _, body := range cases {
		_, err := Load(newFlags(t, "--config", writeConfig(t, body)))
		var invalid InvalidConfig
		if !errors.As(err, &invalid) {
			t.Fatalf("config %q: expected InvalidConfig, got %v", body, err)
		}
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(newFlags(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))); err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}

func TestSettingsStore(t *testing.T) {
	store := NewSettingsStore(engine.DefaultSettings())
	next := store.Get()
	next.Depth = 7
	store.Update(next)
	if store.Get().Depth != 7 {
		t.Fatalf("update was not kept")
	}
}
