package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/unifi-labs/tvcare-go-sdk/models"
	"github.com/unifi-labs/tvcare-go-sdk/utils"
	"go.uber.org/zap"
)

// AnalyzeImageHandler runs label and text detection over the session's
// uploaded image. Custom label detection only runs when a trained model is
// configured, and its failure degrades to an empty list.
func (a *App) AnalyzeImageHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req sessionRequest
	if err := decodeBody(r, &req); err != nil || !validSessionID(req.SessionID) {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	logger := zap.L().With(zap.String("session_id", req.SessionID))

	imageData, err := a.Store.GetBlob(ctx, req.SessionID, models.ArtifactImage)
	if errors.Is(err, utils.ErrNotFound) {
		writeError(w, http.StatusBadRequest, "no image uploaded for session")
		return
	}
	if err != nil {
		logger.Error("Failed to load image", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "image analysis failed")
		return
	}

	analysis, err := a.Vision.AnalyzeImage(ctx, imageData)
	if err != nil {
		logger.Error("Image analysis failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "image analysis failed")
		return
	}
	analysis.Timestamp = time.Now().UTC().Format(time.RFC3339)

	if a.CustomLabelsModel != "" {
		customLabels, err := a.Vision.DetectCustomLabels(ctx, imageData, a.CustomLabelsModel)
		if err != nil {
			logger.Warn("Custom label detection failed", zap.Error(err))
			customLabels = []models.Label{}
		}
		analysis.CustomLabels = customLabels
	}

	if err := a.Store.PutJSON(ctx, req.SessionID, models.ArtifactImageAnalysis, analysis); err != nil {
		logger.Error("Failed to store image analysis", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "image analysis failed")
		return
	}

	logger.Info("Image analysis completed",
		zap.Int("labels", len(analysis.Labels)),
		zap.Int("text_lines", len(analysis.ExtractedText)))
	writeJSON(w, http.StatusOK, map[string]any{
		"analysis":   analysis,
		"session_id": req.SessionID,
	})
}
