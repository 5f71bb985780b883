package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"subsmith/internal/config"
)

func TestNewSelectsBackend(t *testing.T) {
	cfg := config.Default()

	cfg.Whisper.Backend = "whisper"
	backend, err := New(&cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if backend.Name() != "whisper" {
		t.Fatalf("expected whisper backend, got %q", backend.Name())
	}

	cfg.Whisper.Backend = "openai"
	cfg.Whisper.APIKey = "sk-test"
	backend, err = New(&cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if backend.Name() != "openai" {
		t.Fatalf("expected openai backend, got %q", backend.Name())
	}

	cfg.Whisper.Backend = "deepgram"
	if _, err := New(&cfg); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestWhisperCLITranscribe(t *testing.T) {
	tempDir := t.TempDir()
	audioPath := filepath.Join(tempDir, "lecture.wav")
	if err := os.WriteFile(audioPath, []byte("fake"), 0o644); err != nil {
		t.Fatalf("write audio fixture: %v", err)
	}

	var capturedArgs []string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		capturedArgs = append([]string(nil), args...)
		jsonPath := filepath.Join(tempDir, "lecture.json")
		payload := `{"language":"en","segments":[{"start":0.0,"end":2.5,"text":" Hello there."},{"start":2.5,"end":4.0,"text":" Welcome."}]}`
		if err := os.WriteFile(jsonPath, []byte(payload), 0o644); err != nil {
			t.Fatalf("write whisper fixture: %v", err)
		}
		return exec.CommandContext(ctx, os.Args[0], "-test.run=TestWhisperHelperProcess")
	}
	t.Cleanup(func() {
		commandContext = original
	})
	t.Setenv("GO_WANT_HELPER_PROCESS", "1")

	cli := NewWhisperCLI("whisper", "small")
	transcript, err := cli.Transcribe(context.Background(), audioPath, "en")
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}

	if transcript.Language != "en" {
		t.Fatalf("expected language en, got %q", transcript.Language)
	}
	if len(transcript.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(transcript.Segments))
	}
	if transcript.Segments[0].End != 2.5 {
		t.Fatalf("expected first segment end 2.5, got %f", transcript.Segments[0].End)
	}
	if _, err := os.Stat(filepath.Join(tempDir, "lecture.json")); !os.IsNotExist(err) {
		t.Fatal("expected whisper json output to be removed")
	}

	foundLanguage := false
	for i, arg := range capturedArgs {
		if arg == "--language" && i+1 < len(capturedArgs) && capturedArgs[i+1] == "en" {
			foundLanguage = true
		}
	}
	if !foundLanguage {
		t.Fatalf("expected --language en in command, got %v", capturedArgs)
	}
}

func TestWhisperHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	os.Exit(0)
}

func TestOpenAIBackendTranscribe(t *testing.T) {
	tempDir := t.TempDir()
	audioPath := filepath.Join(tempDir, "lecture.wav")
	if err := os.WriteFile(audioPath, []byte("fake"), 0o644); err != nil {
		t.Fatalf("write audio fixture: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected authorization header %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart form: %v", err)
		}
		if got := r.FormValue("response_format"); got != "verbose_json" {
			t.Errorf("expected verbose_json format, got %q", got)
		}
		if got := r.FormValue("language"); got != "km" {
			t.Errorf("expected language km, got %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"text":     "sample",
			"language": "khmer",
			"segments": []map[string]any{
				{"start": 0.0, "end": 1.5, "text": "sample"},
			},
		})
	}))
	defer server.Close()

	backend := NewOpenAIBackend("sk-test", "whisper-1", server.URL)
	transcript, err := backend.Transcribe(context.Background(), audioPath, "km")
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if len(transcript.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(transcript.Segments))
	}
	if transcript.Segments[0].Text != "sample" {
		t.Fatalf("unexpected segment text %q", transcript.Segments[0].Text)
	}
}

func TestOpenAIBackendErrorStatus(t *testing.T) {
	tempDir := t.TempDir()
	audioPath := filepath.Join(tempDir, "lecture.wav")
	if err := os.WriteFile(audioPath, []byte("fake"), 0o644); err != nil {
		t.Fatalf("write audio fixture: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"rate limited"}}`)
	}))
	defer server.Close()

	backend := NewOpenAIBackend("sk-test", "whisper-1", server.URL)
	if _, err := backend.Transcribe(context.Background(), audioPath, "en"); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestOpenAIBackendRequiresKey(t *testing.T) {
	backend := NewOpenAIBackend("", "whisper-1", "")
	if _, err := backend.Transcribe(context.Background(), "/tmp/a.wav", "en"); err == nil {
		t.Fatal("expected error for missing api key")
	}
}
