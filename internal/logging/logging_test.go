package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/AloySobek/ft-gomoku/internal/config"
)

func TestNewHonoursLevel(t *testing.T) {
	log, err := New(config.LogConfig{Level: "warn"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if log.Core().Enabled(zapcore.InfoLevel) || !log.Core().Enabled(zapcore.WarnLevel) {
		t.Fatalf("expected a warn level logger")
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(config.LogConfig{Level: "chatty"}); err == nil {
		t.Fatalf("expected an error")
	}
}
