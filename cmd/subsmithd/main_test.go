package main

import (
	"context"
	"path/filepath"
	"testing"

	"subsmith/internal/config"
	"subsmith/internal/logging"
	"subsmith/internal/workflow"
)

type fakeConfigurer struct {
	set workflow.StageSet
}

func (f *fakeConfigurer) ConfigureStages(set workflow.StageSet) {
	f.set = set
}

type nopTransport struct{}

func (nopTransport) SendMessage(context.Context, int64, string) (int64, error) { return 0, nil }
func (nopTransport) EditMessage(context.Context, int64, int64, string) error   { return nil }
func (nopTransport) DeleteMessage(context.Context, int64, int64) error         { return nil }
func (nopTransport) SendDocument(context.Context, int64, string, string) error { return nil }

func TestConfigureStages(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StagingDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()

	configurer := &fakeConfigurer{}
	if err := configureStages(configurer, &cfg, nil, logging.NewNop(), nopTransport{}); err != nil {
		t.Fatalf("configureStages: %v", err)
	}

	if configurer.set.Extractor == nil {
		t.Fatal("expected extractor stage")
	}
	if configurer.set.Transcriber == nil {
		t.Fatal("expected transcriber stage")
	}
	if configurer.set.Deliverer == nil {
		t.Fatal("expected deliverer stage")
	}
}

func TestBuildSocketPath(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")

	expected := filepath.Join(cfg.Paths.LogDir, "subsmith.sock")
	if got := buildSocketPath(&cfg); got != expected {
		t.Fatalf("expected socket path %q, got %q", expected, got)
	}

	if got := buildSocketPath(nil); got != filepath.Join("", "subsmith.sock") {
		t.Fatalf("expected default socket path %q, got %q", filepath.Join("", "subsmith.sock"), got)
	}
}
