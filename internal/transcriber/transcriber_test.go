package transcriber_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"subsmith/internal/config"
	"subsmith/internal/logging"
	"subsmith/internal/queue"
	"subsmith/internal/services"
	"subsmith/internal/srt"
	"subsmith/internal/stage"
	"subsmith/internal/transcribe"
	"subsmith/internal/transcriber"
)

type fakeBackend struct {
	transcript  transcribe.Transcript
	err         error
	gotAudio    string
	gotLanguage string
}

func (f *fakeBackend) Transcribe(_ context.Context, audioPath, language string) (transcribe.Transcript, error) {
	f.gotAudio = audioPath
	f.gotLanguage = language
	return f.transcript, f.err
}

func (f *fakeBackend) Name() string { return "fake" }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	return &cfg
}

func extractedJob(t *testing.T, cfg *config.Config, store *queue.Store) *queue.Job {
	t.Helper()
	if err := os.MkdirAll(cfg.Paths.StagingDir, 0o755); err != nil {
		t.Fatalf("mkdir staging: %v", err)
	}
	audioPath := filepath.Join(cfg.Paths.StagingDir, "abc123_lecture.wav")
	if err := os.WriteFile(audioPath, []byte("audio"), 0o644); err != nil {
		t.Fatalf("write audio fixture: %v", err)
	}
	job, err := store.NewJob(context.Background(), &queue.Job{
		ChatID:     1,
		SourceName: "lecture.mp4",
		Language:   "km",
		VideoPath:  filepath.Join(cfg.Paths.StagingDir, "abc123_lecture.mp4"),
	})
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}
	job.Status = queue.StatusExtracted
	job.AudioPath = audioPath
	if err := store.Update(context.Background(), job); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	return job
}

func TestExecutePersistsSegments(t *testing.T) {
	cfg := testConfig(t)
	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	job := extractedJob(t, cfg, store)
	backend := &fakeBackend{
		transcript: transcribe.Transcript{
			Language: "km",
			Segments: []srt.Segment{
				{Start: 0, End: 2.5, Text: "Hello"},
				{Start: 2.5, End: 4, Text: "World"},
			},
		},
	}
	handler := transcriber.NewWithBackend(cfg, store, logging.NewNop(), backend)

	if err := handler.Prepare(context.Background(), job); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	audioPath := job.AudioPath
	if err := handler.Execute(context.Background(), job); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if backend.gotAudio != audioPath {
		t.Fatalf("expected transcription of %q, got %q", audioPath, backend.gotAudio)
	}
	if backend.gotLanguage != "km" {
		t.Fatalf("expected language km, got %q", backend.gotLanguage)
	}

	segments, err := stage.ParseSegments(job.SegmentsJSON)
	if err != nil {
		t.Fatalf("parse persisted segments: %v", err)
	}
	if len(segments) != 2 || segments[1].Text != "World" {
		t.Fatalf("unexpected persisted segments: %+v", segments)
	}

	if _, err := os.Stat(audioPath); !os.IsNotExist(err) {
		t.Fatal("expected extracted audio removed after transcription")
	}
	if job.AudioPath != "" {
		t.Fatalf("expected audio path cleared, got %q", job.AudioPath)
	}
}

func TestExecuteRejectsMissingAudio(t *testing.T) {
	cfg := testConfig(t)
	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	job := extractedJob(t, cfg, store)
	if err := os.Remove(job.AudioPath); err != nil {
		t.Fatalf("remove fixture: %v", err)
	}

	handler := transcriber.NewWithBackend(cfg, store, logging.NewNop(), &fakeBackend{})
	err = handler.Execute(context.Background(), job)
	if err == nil {
		t.Fatal("expected error for missing audio")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExecuteWrapsBackendFailure(t *testing.T) {
	cfg := testConfig(t)
	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	job := extractedJob(t, cfg, store)
	backend := &fakeBackend{err: errors.New("model not found")}
	handler := transcriber.NewWithBackend(cfg, store, logging.NewNop(), backend)

	err = handler.Execute(context.Background(), job)
	if err == nil {
		t.Fatal("expected error for backend failure")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}
