package extract_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"subsmith/internal/config"
	"subsmith/internal/extract"
	"subsmith/internal/logging"
	"subsmith/internal/queue"
	"subsmith/internal/services"
)

type fakeExtractor struct {
	duration    float64
	durationErr error
	audioPath   string
	extractErr  error
	gotVideo    string
	gotDir      string
}

func (f *fakeExtractor) ExtractAudio(_ context.Context, videoPath, outputDir string) (string, error) {
	f.gotVideo = videoPath
	f.gotDir = outputDir
	return f.audioPath, f.extractErr
}

func (f *fakeExtractor) ProbeDuration(_ context.Context, _ string) (float64, error) {
	return f.duration, f.durationErr
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	return &cfg
}

func stagedJob(t *testing.T, cfg *config.Config, store *queue.Store) *queue.Job {
	t.Helper()
	if err := os.MkdirAll(cfg.Paths.StagingDir, 0o755); err != nil {
		t.Fatalf("mkdir staging: %v", err)
	}
	videoPath := filepath.Join(cfg.Paths.StagingDir, "abc123_lecture.mp4")
	if err := os.WriteFile(videoPath, []byte("video"), 0o644); err != nil {
		t.Fatalf("write video fixture: %v", err)
	}
	job, err := store.NewJob(context.Background(), &queue.Job{
		ChatID:     1,
		SourceName: "lecture.mp4",
		Language:   "en",
		VideoPath:  videoPath,
	})
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}
	return job
}

func TestExecuteExtractsAudio(t *testing.T) {
	cfg := testConfig(t)
	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	job := stagedJob(t, cfg, store)
	fake := &fakeExtractor{duration: 90.5, audioPath: filepath.Join(cfg.Paths.StagingDir, "abc123_lecture.wav")}
	handler := extract.NewWithExtractor(cfg, store, logging.NewNop(), fake)

	if err := handler.Prepare(context.Background(), job); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if err := handler.Execute(context.Background(), job); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if job.AudioPath != fake.audioPath {
		t.Fatalf("expected audio path %q, got %q", fake.audioPath, job.AudioPath)
	}
	if job.DurationSeconds != 90.5 {
		t.Fatalf("expected duration 90.5, got %f", job.DurationSeconds)
	}
	if fake.gotVideo != job.VideoPath {
		t.Fatalf("expected extraction of %q, got %q", job.VideoPath, fake.gotVideo)
	}
	if fake.gotDir != cfg.Paths.StagingDir {
		t.Fatalf("expected staging output dir, got %q", fake.gotDir)
	}
}

func TestExecuteRejectsMissingVideo(t *testing.T) {
	cfg := testConfig(t)
	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	job := stagedJob(t, cfg, store)
	if err := os.Remove(job.VideoPath); err != nil {
		t.Fatalf("remove fixture: %v", err)
	}

	handler := extract.NewWithExtractor(cfg, store, logging.NewNop(), &fakeExtractor{})
	err = handler.Execute(context.Background(), job)
	if err == nil {
		t.Fatal("expected error for missing video")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExecuteWrapsToolFailure(t *testing.T) {
	cfg := testConfig(t)
	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	job := stagedJob(t, cfg, store)
	fake := &fakeExtractor{duration: 10, extractErr: errors.New("boom")}
	handler := extract.NewWithExtractor(cfg, store, logging.NewNop(), fake)

	err = handler.Execute(context.Background(), job)
	if err == nil {
		t.Fatal("expected error for extraction failure")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}
