package handlers

import (
	"errors"
	"net/http"

	"github.com/unifi-labs/tvcare-go-sdk/models"
	"github.com/unifi-labs/tvcare-go-sdk/utils"
	"go.uber.org/zap"
)

// AudioHandler streams back the synthesized response audio for a session.
// Missing audio is a distinguishable not-found outcome, not a server error.
func (a *App) AudioHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")
	if !validSessionID(sessionID) {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	audio, err := a.Store.GetBlob(r.Context(), sessionID, models.ArtifactResponseAudio)
	if errors.Is(err, utils.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Audio file not found")
		return
	}
	if err != nil {
		zap.L().Error("Failed to load response audio",
			zap.String("session_id", sessionID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "audio fetch failed")
		return
	}

	setCORSHeaders(w)
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", "max-age=3600")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(audio); err != nil {
		zap.L().Warn("Failed to stream audio", zap.Error(err))
	}
}
