package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"subsmith/internal/config"
	"subsmith/internal/deliver"
	"subsmith/internal/extract"
	"subsmith/internal/queue"
	"subsmith/internal/transcriber"
	"subsmith/internal/workflow"
)

type stageConfigurer interface {
	ConfigureStages(workflow.StageSet)
}

func configureStages(reg stageConfigurer, cfg *config.Config, store *queue.Store, logger *slog.Logger, transport deliver.Transport) error {
	if reg == nil || cfg == nil {
		return nil
	}

	transcribeStage, err := transcriber.New(cfg, store, logger)
	if err != nil {
		return fmt.Errorf("build transcriber: %w", err)
	}

	reg.ConfigureStages(workflow.StageSet{
		Extractor:   extract.New(cfg, store, logger),
		Transcriber: transcribeStage,
		Deliverer:   deliver.New(cfg, store, logger, transport),
	})
	return nil
}

func buildSocketPath(cfg *config.Config) string {
	if cfg == nil {
		return filepath.Join("", "subsmith.sock")
	}
	return filepath.Join(cfg.Paths.LogDir, "subsmith.sock")
}
