// Command subsmithd runs the subtitle generation daemon: the Telegram bot,
// the transcription workflow, and the IPC control socket.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"subsmith/internal/bot"
	"subsmith/internal/config"
	"subsmith/internal/daemon"
	"subsmith/internal/ipc"
	"subsmith/internal/logging"
	"subsmith/internal/queue"
	"subsmith/internal/workflow"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := queue.Open(cfg)
	if err != nil {
		logger.Error("open queue store", logging.Error(err))
		return
	}

	if reset, err := store.ResetStuckProcessing(ctx); err != nil {
		logger.Warn("reset stuck jobs", logging.Error(err))
	} else if reset > 0 {
		logger.Info("reset jobs interrupted by previous shutdown", logging.Int64("count", reset))
	}

	tg, err := bot.New(cfg, store, logger)
	if err != nil {
		logger.Error("connect telegram", logging.Error(err))
		store.Close()
		return
	}

	workflowManager := workflow.NewManager(cfg, store, logger)
	if err := configureStages(workflowManager, cfg, store, logger, tg); err != nil {
		logger.Error("configure stages", logging.Error(err))
		store.Close()
		return
	}
	workflowManager.SetObserver(tg)

	d, err := daemon.New(cfg, store, logger, workflowManager, tg)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		store.Close()
		return
	}
	defer d.Close()

	ipcServer, err := ipc.NewServer(ctx, buildSocketPath(cfg), d, logger)
	if err != nil {
		logger.Error("start IPC server", logging.Error(err))
		return
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("subsmithd shutting down")
}
