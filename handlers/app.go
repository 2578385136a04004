package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"time"

	"github.com/unifi-labs/tvcare-go-sdk/models"
	"go.uber.org/zap"
)

// Store is the session artifact store, keyed by session id + artifact name.
// Implemented by utils.SessionStore.
type Store interface {
	PutBlob(ctx context.Context, sessionID, artifact string, data []byte) error
	GetBlob(ctx context.Context, sessionID, artifact string) ([]byte, error)
	PutJSON(ctx context.Context, sessionID, artifact string, v any) error
	GetJSON(ctx context.Context, sessionID, artifact string, v any) error
	Ping(ctx context.Context) error
}

// SpeechService covers transcription and speech synthesis. Implemented by
// utils.SpeechClient.
type SpeechService interface {
	Transcribe(ctx context.Context, audio []byte) (text string, confidence float64, err error)
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// VisionService runs label and text detection. Implemented by
// utils.OpenAIClient.
type VisionService interface {
	AnalyzeImage(ctx context.Context, imageData []byte) (*models.ImageAnalysis, error)
	DetectCustomLabels(ctx context.Context, imageData []byte, modelID string) ([]models.Label, error)
}

// ModelService is the language-model inference endpoint. Implemented by
// utils.OpenAIClient.
type ModelService interface {
	GenerateResponse(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Retriever is the knowledge-base semantic search. Implemented by
// utils.KnowledgeBase.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]string, error)
}

// DeviceService executes remediation tools against the device-management API.
// Implemented by utils.DeviceClient.
type DeviceService interface {
	Execute(ctx context.Context, tool, sessionID, contextText string, priority models.Priority) models.ToolResult
}

// App carries the process-wide client handles, constructed once in main and
// shared by every request.
type App struct {
	Store     Store
	Speech    SpeechService
	Vision    VisionService
	Model     ModelService
	Retriever Retriever
	Devices   DeviceService

	// CustomLabelsModel enables custom label detection when set.
	CustomLabelsModel string
	// PublicBaseURL is the externally reachable base for audio URLs.
	PublicBaseURL string
	// PollInterval between transcription job checks; tests shorten it.
	PollInterval time.Duration
}

func (a *App) pollInterval() time.Duration {
	if a.PollInterval > 0 {
		return a.PollInterval
	}
	return 2 * time.Second
}

// Routes registers every endpoint on the mux.
func (a *App) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /upload", a.UploadHandler)
	mux.HandleFunc("POST /transcribe", a.TranscribeHandler)
	mux.HandleFunc("POST /analyze-image", a.AnalyzeImageHandler)
	mux.HandleFunc("POST /troubleshoot", a.TroubleshootHandler)
	mux.HandleFunc("POST /execute-action", a.ExecuteActionHandler)
	mux.HandleFunc("GET /audio/{session_id}", a.AudioHandler)
	mux.HandleFunc("GET /healthz", a.HealthzHandler)
	mux.HandleFunc("OPTIONS /", a.preflightHandler)
}

func (a *App) HealthzHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.Store.Ping(r.Context()); err != nil {
		zap.L().Error("Health check failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) preflightHandler(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.WriteHeader(http.StatusNoContent)
}

var sessionIDPattern = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

// validSessionID rejects ids outside the restricted character set before any
// external call is made with them.
func validSessionID(id string) bool {
	return id != "" && sessionIDPattern.MatchString(id)
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("Failed to encode response", zap.Error(err))
	}
}

// writeError returns a generic message only; internal error detail stays in
// the logs.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
