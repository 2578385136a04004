package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/unifi-labs/tvcare-go-sdk/models"
	"go.uber.org/zap"
)

type actionRequest struct {
	SessionID string `json:"session_id"`
	Action    string `json:"action"`
}

// ExecuteActionHandler performs one named remediation action directly,
// independent of the tool-selection path used during troubleshooting, and
// logs the outcome as a session artifact. Unknown actions come back as a
// failed result, not an error.
func (a *App) ExecuteActionHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req actionRequest
	if err := decodeBody(r, &req); err != nil || !validSessionID(req.SessionID) || req.Action == "" {
		writeError(w, http.StatusBadRequest, "invalid session id or action")
		return
	}
	logger := zap.L().With(zap.String("session_id", req.SessionID), zap.String("action", req.Action))

	result := a.Devices.Execute(ctx, req.Action, req.SessionID, "manual action request", models.PriorityNormal)

	status := "completed"
	if !result.Success {
		status = "failed"
	}
	actionLog := models.ActionLog{
		SessionID: req.SessionID,
		Action:    req.Action,
		Result:    result,
		Timestamp: time.Now().Unix(),
		Status:    status,
	}
	artifact := fmt.Sprintf("actions/%s_%d.json", req.Action, actionLog.Timestamp)
	if err := a.Store.PutJSON(ctx, req.SessionID, artifact, actionLog); err != nil {
		logger.Error("Failed to store action log", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "action execution failed")
		return
	}

	logger.Info("Action executed", zap.Bool("success", result.Success))
	writeJSON(w, http.StatusOK, map[string]any{
		"action":     req.Action,
		"result":     result,
		"session_id": req.SessionID,
	})
}
