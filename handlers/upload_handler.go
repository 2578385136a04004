package handlers

import (
	"encoding/base64"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/unifi-labs/tvcare-go-sdk/models"
	"go.uber.org/zap"
)

type uploadRequest struct {
	Image string `json:"image,omitempty"`
	Audio string `json:"audio,omitempty"`
	Text  string `json:"text,omitempty"`
}

// UploadHandler creates a new session from an optional base64 image and/or
// audio clip. Text-only requests get a sentinel transcript and empty image
// analysis so the rest of the pipeline is uniform.
func (a *App) UploadHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req uploadRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID := uuid.NewString()
	timestamp := time.Now().UTC().Format(time.RFC3339)
	logger := zap.L().With(zap.String("session_id", sessionID))

	var imageKey, audioKey string

	if req.Image != "" {
		imageData, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid image encoding")
			return
		}
		if err := a.Store.PutBlob(ctx, sessionID, models.ArtifactImage, imageData); err != nil {
			logger.Error("Failed to store image", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "upload failed")
			return
		}
		imageKey = models.ArtifactImage
	}

	if req.Audio != "" {
		audioData, err := base64.StdEncoding.DecodeString(req.Audio)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid audio encoding")
			return
		}
		if err := a.Store.PutBlob(ctx, sessionID, models.ArtifactAudio, audioData); err != nil {
			logger.Error("Failed to store audio", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "upload failed")
			return
		}
		audioKey = models.ArtifactAudio
	}

	// Text-only sessions still need transcript and analysis artifacts so the
	// troubleshoot step never depends on transcription or image analysis
	// having run. An explicit text field overrides the sentinel.
	if imageKey == "" && audioKey == "" {
		text := req.Text
		if text == "" {
			text = models.DefaultTranscriptText
		}
		transcript := models.Transcript{Text: text, Timestamp: timestamp}
		if err := a.Store.PutJSON(ctx, sessionID, models.ArtifactTranscript, transcript); err != nil {
			logger.Error("Failed to store default transcript", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "upload failed")
			return
		}

		analysis := models.ImageAnalysis{
			Labels:        []models.Label{},
			CustomLabels:  []models.Label{},
			ExtractedText: []string{},
			Timestamp:     timestamp,
		}
		if err := a.Store.PutJSON(ctx, sessionID, models.ArtifactImageAnalysis, analysis); err != nil {
			logger.Error("Failed to store default analysis", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "upload failed")
			return
		}
	}

	metadata := models.SessionMetadata{
		SessionID: sessionID,
		Timestamp: timestamp,
		ImageKey:  imageKey,
		AudioKey:  audioKey,
		Status:    "uploaded",
	}
	if err := a.Store.PutJSON(ctx, sessionID, models.ArtifactMetadata, metadata); err != nil {
		logger.Error("Failed to store metadata", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	logger.Info("Upload successful")
	writeJSON(w, http.StatusOK, map[string]string{
		"session_id": sessionID,
		"message":    "Files uploaded successfully",
	})
}
