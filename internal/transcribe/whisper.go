package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"subsmith/internal/srt"
)

var commandContext = exec.CommandContext

// WhisperCLI runs the local whisper command-line tool.
type WhisperCLI struct {
	binary string
	model  string
}

// NewWhisperCLI constructs a local backend around the whisper binary.
func NewWhisperCLI(binary, model string) *WhisperCLI {
	if binary == "" {
		binary = "whisper"
	}
	if model == "" {
		model = "small"
	}
	return &WhisperCLI{binary: binary, model: model}
}

// Name implements Backend.
func (w *WhisperCLI) Name() string {
	return "whisper"
}

type whisperOutput struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// Transcribe runs whisper with JSON output and parses the segment timings.
func (w *WhisperCLI) Transcribe(ctx context.Context, audioPath, language string) (Transcript, error) {
	if audioPath == "" {
		return Transcript{}, errors.New("audio path required")
	}

	outputDir := filepath.Dir(audioPath)
	args := []string{
		audioPath,
		"--model", w.model,
		"--output_format", "json",
		"--output_dir", outputDir,
		"--verbose", "False",
	}
	if language != "" {
		args = append(args, "--language", language)
	}

	cmd := commandContext(ctx, w.binary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		detail := strings.TrimSpace(string(output))
		if detail != "" {
			return Transcript{}, fmt.Errorf("whisper failed: %s: %w", lastLine(detail), err)
		}
		return Transcript{}, fmt.Errorf("whisper failed: %w", err)
	}

	base := filepath.Base(audioPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	jsonPath := filepath.Join(outputDir, stem+".json")
	defer os.Remove(jsonPath)

	payload, err := os.ReadFile(jsonPath)
	if err != nil {
		return Transcript{}, fmt.Errorf("read whisper output: %w", err)
	}

	var parsed whisperOutput
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return Transcript{}, fmt.Errorf("parse whisper output: %w", err)
	}

	transcript := Transcript{Language: parsed.Language}
	if transcript.Language == "" {
		transcript.Language = language
	}
	for _, segment := range parsed.Segments {
		transcript.Segments = append(transcript.Segments, srt.Segment{
			Start: segment.Start,
			End:   segment.End,
			Text:  segment.Text,
		})
	}
	return transcript, nil
}

func lastLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line != "" {
			return line
		}
	}
	return ""
}

var _ Backend = (*WhisperCLI)(nil)
