package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/textkit/pkg/textkit/config"
	"github.com/cognicore/textkit/pkg/textkit/intent"
)

func TestBuildServer(t *testing.T) {
	loader := &config.Loader{
		LexiconPath: "../../testdata/config/lexicon.yaml",
		IntentsPath: "../../testdata/config/intents.yaml",
	}

	srv, cleanup, err := buildServer(context.Background(), loader, filepath.Join(t.TempDir(), "rpc.db"))
	if err != nil {
		t.Fatalf("buildServer failed: %v", err)
	}
	defer cleanup()

	if got := srv.Default().Analyze("cheers").Intent; got != intent.Gratitude {
		t.Errorf("Expected configured intents, got %q", got)
	}
}

func TestBuildServerBadConfig(t *testing.T) {
	loader := &config.Loader{IntentsPath: "../../testdata/config/bad_intents.yaml"}

	if _, _, err := buildServer(context.Background(), loader, ""); err == nil {
		t.Error("buildServer should fail with an unknown intent label")
	}
}

func TestLoggerConfig(t *testing.T) {
	cfg, err := loggerConfig("debug", "json")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Level != slog.LevelDebug || cfg.Format != "json" {
		t.Errorf("Unexpected config %+v", cfg)
	}

	if _, err := loggerConfig("info", "yaml"); err == nil {
		t.Error("Unknown --log-format should be rejected")
	}
	if _, err := loggerConfig("loud", "text"); err == nil {
		t.Error("Unknown --log-level should be rejected")
	}
}

func TestStdioClose(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	s := stdio{in: r, out: w}

	if _, err := s.Write([]byte("ping")); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 4)
	if _, err := s.Read(buf); err != nil || string(buf) != "ping" {
		t.Fatalf("Read = %q, %v", buf, err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
