package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestExtractAudioBuildsCommand(t *testing.T) {
	var capturedName string
	var capturedArgs []string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		capturedName = name
		capturedArgs = append([]string(nil), args...)
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "MEDIA_HELPER_MODE=success")
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})

	cli := NewCLI(WithFFmpegBinary("ffmpeg6"))
	tempDir := t.TempDir()
	outputPath, err := cli.ExtractAudio(context.Background(), filepath.Join(tempDir, "clip.mp4"), tempDir)
	if err != nil {
		t.Fatalf("ExtractAudio returned error: %v", err)
	}

	if capturedName != "ffmpeg6" {
		t.Fatalf("expected ffmpeg6 binary, got %q", capturedName)
	}
	expectedPath := filepath.Join(tempDir, "clip.wav")
	if outputPath != expectedPath {
		t.Fatalf("expected output path %q, got %q", expectedPath, outputPath)
	}
	for _, want := range []string{"-vn", "-ac", "-ar", "16000", "pcm_s16le"} {
		if findArg(capturedArgs, want) == -1 {
			t.Fatalf("expected ffmpeg command to include %q, got %v", want, capturedArgs)
		}
	}
	if capturedArgs[len(capturedArgs)-1] != expectedPath {
		t.Fatalf("expected final argument to be output path, got %v", capturedArgs)
	}
}

func TestExtractAudioFailure(t *testing.T) {
	setHelperCommand(t, "failure")

	cli := NewCLI()
	tempDir := t.TempDir()
	if _, err := cli.ExtractAudio(context.Background(), filepath.Join(tempDir, "clip.mp4"), tempDir); err == nil {
		t.Fatal("expected extraction failure error")
	}
}

func TestExtractAudioRequiresPaths(t *testing.T) {
	cli := NewCLI()
	if _, err := cli.ExtractAudio(context.Background(), "", t.TempDir()); err == nil {
		t.Fatal("expected error for missing video path")
	}
	if _, err := cli.ExtractAudio(context.Background(), "/tmp/clip.mp4", "  "); err == nil {
		t.Fatal("expected error for missing output directory")
	}
}

func TestProbeDurationParsesSeconds(t *testing.T) {
	setHelperCommand(t, "probe")

	cli := NewCLI()
	seconds, err := cli.ProbeDuration(context.Background(), "/tmp/clip.mp4")
	if err != nil {
		t.Fatalf("ProbeDuration returned error: %v", err)
	}
	if seconds != 125.37 {
		t.Fatalf("expected duration 125.37, got %f", seconds)
	}
}

func TestProbeDurationMissingDuration(t *testing.T) {
	setHelperCommand(t, "probe-empty")

	cli := NewCLI()
	if _, err := cli.ProbeDuration(context.Background(), "/tmp/clip.mp4"); err == nil {
		t.Fatal("expected error for missing duration")
	}
}

func findArg(args []string, target string) int {
	for i, arg := range args {
		if arg == target {
			return i
		}
	}
	return -1
}

func setHelperCommand(t *testing.T, mode string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", fmt.Sprintf("MEDIA_HELPER_MODE=%s", mode))
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("MEDIA_HELPER_MODE") {
	case "success":
		os.Exit(0)
	case "failure":
		fmt.Fprintln(os.Stderr, "clip.mp4: Invalid data found when processing input")
		os.Exit(1)
	case "probe":
		fmt.Println(`{"format":{"duration":"125.370000"}}`)
		os.Exit(0)
	case "probe-empty":
		fmt.Println(`{"format":{}}`)
		os.Exit(0)
	default:
		os.Exit(0)
	}
}
