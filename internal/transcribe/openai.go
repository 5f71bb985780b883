package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"subsmith/internal/srt"
)

// OpenAIBackend calls the hosted transcription API with segment-level timings.
type OpenAIBackend struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOpenAIBackend constructs a hosted backend. An empty baseURL falls back to
// the public API endpoint.
func NewOpenAIBackend(apiKey, model, baseURL string) *OpenAIBackend {
	if model == "" || model == "small" {
		model = "whisper-1"
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &OpenAIBackend{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

// Name implements Backend.
func (o *OpenAIBackend) Name() string {
	return "openai"
}

type openAIResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// Transcribe uploads the audio file and parses the verbose JSON response.
func (o *OpenAIBackend) Transcribe(ctx context.Context, audioPath, language string) (Transcript, error) {
	if audioPath == "" {
		return Transcript{}, errors.New("audio path required")
	}
	if o.apiKey == "" {
		return Transcript{}, errors.New("api key required")
	}

	file, err := os.Open(audioPath)
	if err != nil {
		return Transcript{}, fmt.Errorf("open audio file: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("model", o.model); err != nil {
		return Transcript{}, fmt.Errorf("write model field: %w", err)
	}
	if err := writer.WriteField("response_format", "verbose_json"); err != nil {
		return Transcript{}, fmt.Errorf("write format field: %w", err)
	}
	if language != "" {
		if err := writer.WriteField("language", language); err != nil {
			return Transcript{}, fmt.Errorf("write language field: %w", err)
		}
	}
	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return Transcript{}, fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return Transcript{}, fmt.Errorf("copy audio payload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return Transcript{}, fmt.Errorf("finalize payload: %w", err)
	}

	endpoint := o.baseURL + "/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return Transcript{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := o.client.Do(req)
	if err != nil {
		return Transcript{}, fmt.Errorf("call transcription api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Transcript{}, fmt.Errorf("transcription api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var parsed openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Transcript{}, fmt.Errorf("decode response: %w", err)
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
	if len(transcript.Segments) == 0 && strings.TrimSpace(parsed.Text) != "" {
		transcript.Segments = append(transcript.Segments, srt.Segment{Text: parsed.Text})
	}
	return transcript, nil
}

var _ Backend = (*OpenAIBackend)(nil)
