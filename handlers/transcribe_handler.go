package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/unifi-labs/tvcare-go-sdk/models"
	"github.com/unifi-labs/tvcare-go-sdk/utils"
	"go.uber.org/zap"
)

// Transcription runs as an asynchronous job; the handler polls its state
// through the session store up to maxPollAttempts times.
const maxPollAttempts = 30

type sessionRequest struct {
	SessionID string `json:"session_id"`
}

// TranscribeHandler transcribes the session's uploaded audio. The job runs in
// the background with its state persisted as a session artifact; the handler
// polls to completion or gives up after the bounded attempts.
func (a *App) TranscribeHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req sessionRequest
	if err := decodeBody(r, &req); err != nil || !validSessionID(req.SessionID) {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	logger := zap.L().With(zap.String("session_id", req.SessionID))

	audio, err := a.Store.GetBlob(ctx, req.SessionID, models.ArtifactAudio)
	if errors.Is(err, utils.ErrNotFound) {
		writeError(w, http.StatusBadRequest, "no audio uploaded for session")
		return
	}
	if err != nil {
		logger.Error("Failed to load audio", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "transcription failed")
		return
	}

	a.startTranscriptionJob(req.SessionID, audio)

	job, err := a.pollTranscriptionJob(ctx, req.SessionID)
	if err != nil {
		logger.Error("Transcription did not complete", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "transcription failed")
		return
	}

	transcript := models.Transcript{
		Text:       job.Text,
		Confidence: job.Confidence,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := a.Store.PutJSON(ctx, req.SessionID, models.ArtifactTranscript, transcript); err != nil {
		logger.Error("Failed to store transcript", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "transcription failed")
		return
	}

	logger.Info("Transcription completed", zap.Float64("confidence", job.Confidence))
	writeJSON(w, http.StatusOK, map[string]string{
		"transcript": job.Text,
		"session_id": req.SessionID,
	})
}

// startTranscriptionJob kicks off the speech-to-text call in the background.
// The job context is detached from the request so a client disconnect does
// not cancel a run that may already be billed.
func (a *App) startTranscriptionJob(sessionID string, audio []byte) {
	jobCtx, cancel := context.WithTimeout(context.Background(), 90*time.Second)

	job := models.TranscriptionJob{Status: models.JobRunning}
	if err := a.Store.PutJSON(jobCtx, sessionID, models.ArtifactTranscriptJob, job); err != nil {
		zap.L().Error("Failed to store transcription job state", zap.Error(err))
	}

	go func() {
		defer cancel()

		text, confidence, err := a.Speech.Transcribe(jobCtx, audio)
		result := models.TranscriptionJob{Status: models.JobCompleted, Text: text, Confidence: confidence}
		if err != nil {
			result = models.TranscriptionJob{Status: models.JobFailed, Error: err.Error()}
		}
		if err := a.Store.PutJSON(jobCtx, sessionID, models.ArtifactTranscriptJob, result); err != nil {
			zap.L().Error("Failed to store transcription job result", zap.Error(err))
		}
	}()
}

func (a *App) pollTranscriptionJob(ctx context.Context, sessionID string) (*models.TranscriptionJob, error) {
	for attempt := 0; attempt < maxPollAttempts; attempt++ {
		var job models.TranscriptionJob
		err := a.Store.GetJSON(ctx, sessionID, models.ArtifactTranscriptJob, &job)
		if err == nil {
			switch job.Status {
			case models.JobCompleted:
				return &job, nil
			case models.JobFailed:
				return nil, errors.New("transcription job failed: " + job.Error)
			}
		} else if !errors.Is(err, utils.ErrNotFound) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(a.pollInterval()):
		}
	}
	return nil, errors.New("transcription job timed out")
}
