package handlers

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/unifi-labs/tvcare-go-sdk/models"
	"github.com/unifi-labs/tvcare-go-sdk/utils"
)

type stubDevices struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
}

func (d *stubDevices) Execute(_ context.Context, tool, _, _ string, _ models.Priority) models.ToolResult {
	d.mu.Lock()
	d.calls = append(d.calls, tool)
	d.mu.Unlock()

	if d.fail[tool] {
		return models.ToolResult{Success: false, Message: utils.ToolDisplayName(tool) + " failed: stub"}
	}
	return models.ToolResult{Success: true, Message: utils.ToolDisplayName(tool) + " completed successfully"}
}

func (d *stubDevices) executed() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

type stubSpeech struct {
	transcript string
	confidence float64

	synthErr      error
	synthAttempts int
	lastSynthText string
}

func (s *stubSpeech) Transcribe(context.Context, []byte) (string, float64, error) {
	if s.transcript == "" {
		return "", 0, errors.New("no transcript configured")
	}
	return s.transcript, s.confidence, nil
}

func (s *stubSpeech) Synthesize(_ context.Context, text string) ([]byte, error) {
	s.synthAttempts++
	s.lastSynthText = text
	if s.synthErr != nil {
		err := s.synthErr
		s.synthErr = nil
		return nil, err
	}
	return []byte("mp3-bytes"), nil
}

type stubModel struct {
	response string
	err      error
	prompt   string
}

func (m *stubModel) GenerateResponse(_ context.Context, prompt string, _ int) (string, error) {
	m.prompt = prompt
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

type stubVision struct {
	analysis *models.ImageAnalysis
	custom   []models.Label
	err      error
}

func (v *stubVision) AnalyzeImage(context.Context, []byte) (*models.ImageAnalysis, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.analysis, nil
}

func (v *stubVision) DetectCustomLabels(context.Context, []byte, string) ([]models.Label, error) {
	return v.custom, nil
}

type stubRetriever struct {
	passages []string
	err      error
	query    string
}

func (r *stubRetriever) Retrieve(_ context.Context, query string, _ int) ([]string, error) {
	r.query = query
	if r.err != nil {
		return nil, r.err
	}
	return r.passages, nil
}

func base64The(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func newTestApp(t *testing.T) (*App, *stubDevices, *stubSpeech, *stubModel) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	devices := &stubDevices{}
	speech := &stubSpeech{transcript: "my tv shows a no service error", confidence: 0.94}
	model := &stubModel{response: "Please restart your set-top box."}

	app := &App{
		Store:        utils.NewSessionStore(client, time.Hour),
		Speech:       speech,
		Vision:       &stubVision{analysis: &models.ImageAnalysis{}},
		Model:        model,
		Retriever:    &stubRetriever{},
		Devices:      devices,
		PollInterval: 10 * time.Millisecond,
	}
	return app, devices, speech, model
}
