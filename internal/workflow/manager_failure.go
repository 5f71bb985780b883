package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"subsmith/internal/fileutil"
	"subsmith/internal/logging"
	"subsmith/internal/queue"
)

func (m *Manager) handleStageFailure(ctx context.Context, stageName string, job *queue.Job, stageErr error) {
	base := m.logger
	if base == nil {
		base = logging.NewNop()
	}
	logger := logging.WithContext(ctx, base).With(logging.String(logging.FieldComponent, "workflow-manager"))

	message := m.classifyStageFailure(stageName, stageErr)
	job.SetFailed(message)

	logger.Error("stage failed",
		logging.Error(stageErr),
		logging.String("error_message", strings.TrimSpace(message)),
		logging.String(logging.FieldEventType, "stage_failure"),
	)

	if err := m.store.Update(ctx, job); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not update stage failure")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
	}

	m.cleanupJobArtifacts(logger, job)
	m.setLastJob(job)
	m.notifyStageError(ctx, stageName, job, stageErr)
	m.onJobFailed(ctx, job, message)
	m.checkQueueCompletion(ctx)
}

func (m *Manager) classifyStageFailure(stageName string, stageErr error) string {
	if stageErr == nil {
		return fmt.Sprintf("%s failed without error detail", stageName)
	}
	message := strings.TrimSpace(stageErr.Error())
	if message == "" {
		message = fmt.Sprintf("%s failed", stageName)
	}
	return message
}

// cleanupJobArtifacts removes staged files left behind by a failed job.
func (m *Manager) cleanupJobArtifacts(logger *slog.Logger, job *queue.Job) {
	for _, path := range job.TempArtifacts() {
		if err := fileutil.RemoveIfExists(path); err != nil {
			logger.Warn("failed to remove staged artifact", logging.String("path", path), logging.Error(err))
		}
	}
}

func (m *Manager) onJobCompleted(ctx context.Context, job *queue.Job) {
	m.mu.RLock()
	observer := m.observer
	m.mu.RUnlock()
	if observer == nil {
		return
	}
	copied := *job
	observer.JobCompleted(ctx, &copied)
}

func (m *Manager) onJobFailed(ctx context.Context, job *queue.Job, message string) {
	m.mu.RLock()
	observer := m.observer
	m.mu.RUnlock()
	if observer == nil {
		return
	}
	copied := *job
	observer.JobFailed(ctx, &copied, message)
}
