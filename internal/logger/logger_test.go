package logger

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWrapWithFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := Wrap(zap.New(core)).Named("reload").With(String("source", "site.yaml"))

	log.Debug("dropped")
	log.Info("model swapped", Uint64("generation", 3), Bool("from_snapshot", false))
	log.Error("reload failed", Error(errors.New("boom")))

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	first := entries[0]
	if first.LoggerName != "reload" {
		t.Errorf("expected logger name reload, got %q", first.LoggerName)
	}
	ctx := first.ContextMap()
	if ctx["source"] != "site.yaml" {
		t.Errorf("expected source field, got %v", ctx["source"])
	}
	if ctx["generation"] != uint64(3) {
		t.Errorf("expected generation 3, got %v", ctx["generation"])
	}
	if entries[1].ContextMap()["error"] != "boom" {
		t.Errorf("expected error field, got %v", entries[1].ContextMap()["error"])
	}
}

func TestParseLevel(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		if !ParseLevel(lvl) {
			t.Errorf("expected %q to be valid", lvl)
		}
	}
	if ParseLevel("verbose") {
		t.Error("expected unknown level to be rejected")
	}
}
