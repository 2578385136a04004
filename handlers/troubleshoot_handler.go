package handlers

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/unifi-labs/tvcare-go-sdk/models"
	"github.com/unifi-labs/tvcare-go-sdk/utils"
	"go.uber.org/zap"
)

const (
	kbTopK = 3

	simpleMaxTokens  = 512
	complexMaxTokens = 1024

	// Retry budget when speech synthesis rejects the text as too long.
	ttsTruncateLimit = 2500
)

var reasoningRe = regexp.MustCompile(`(?s)<reasoning>.*?</reasoning>`)

// TroubleshootHandler runs the full pipeline: classify the query, retrieve
// knowledge-base context, pick and execute remediation tools, generate the
// response (model or fallback), synthesize speech and persist the record.
func (a *App) TroubleshootHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req sessionRequest
	if err := decodeBody(r, &req); err != nil || !validSessionID(req.SessionID) {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	logger := zap.L().With(zap.String("session_id", req.SessionID))

	// Missing artifacts degrade to sentinel defaults; a session created by
	// upload alone must still troubleshoot.
	transcript := models.Transcript{Text: models.DefaultTranscriptText}
	if err := a.Store.GetJSON(ctx, req.SessionID, models.ArtifactTranscript, &transcript); err != nil && !errors.Is(err, utils.ErrNotFound) {
		logger.Error("Failed to load transcript", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "troubleshooting failed")
		return
	}

	var analysis models.ImageAnalysis
	if err := a.Store.GetJSON(ctx, req.SessionID, models.ArtifactImageAnalysis, &analysis); err != nil && !errors.Is(err, utils.ErrNotFound) {
		logger.Error("Failed to load image analysis", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "troubleshooting failed")
		return
	}

	complexity := ClassifyComplexity(transcript.Text)
	priority := ClassifyPriority(transcript.Text)
	logger.Info("Query classified",
		zap.String("complexity", string(complexity)),
		zap.String("priority", string(priority)))

	kbContext := a.retrieveKBContext(ctx, transcript.Text, analysis)

	tools := SelectTools(transcript.Text, analysis)
	var results models.ToolResults
	if len(tools) > 0 {
		logger.Info("Executing tools", zap.Strings("tools", tools))
		results = a.executeTools(ctx, req.SessionID, tools, transcript.Text, priority)
	}

	responseText := a.generateResponse(ctx, transcript, analysis, complexity, kbContext, tools, results)
	responseText = FormatResponse(responseText)
	actions := ExtractActions(responseText)

	audioKey, err := a.synthesizeResponseAudio(ctx, req.SessionID, responseText)
	if err != nil {
		logger.Error("Speech synthesis failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "troubleshooting failed")
		return
	}

	record := models.TroubleshootingRecord{
		ResponseText:       responseText,
		AudioKey:           audioKey,
		RecommendedActions: actions,
		ToolsExecuted:      tools,
		ToolResultsSummary: summarizeToolResults(tools, results),
	}
	if err := a.Store.PutJSON(ctx, req.SessionID, models.ArtifactTroubleshooting, record); err != nil {
		logger.Error("Failed to store troubleshooting record", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "troubleshooting failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"response":       responseText,
		"audio_url":      a.PublicBaseURL + "/audio/" + req.SessionID,
		"actions":        actions,
		"tools_executed": tools,
		"session_id":     req.SessionID,
	})
}

// retrieveKBContext queries the knowledge base with the transcript enriched
// by the detected label names. Any failure degrades to empty context.
func (a *App) retrieveKBContext(ctx context.Context, transcript string, analysis models.ImageAnalysis) string {
	if a.Retriever == nil {
		return ""
	}

	query := transcript
	if names := labelNames(analysis.Labels); len(names) > 0 {
		query += " " + strings.Join(names, " ")
	}

	passages, err := a.Retriever.Retrieve(ctx, query, kbTopK)
	if err != nil {
		zap.L().Warn("Knowledge base retrieval failed", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(strings.Join(passages, "\n"))
}

// generateResponse attempts the model call and falls back to the rule-based
// generator on any failure. It always returns a response, never an error.
func (a *App) generateResponse(ctx context.Context, transcript models.Transcript, analysis models.ImageAnalysis, complexity models.Complexity, kbContext string, tools []string, results models.ToolResults) string {
	var prompt string
	if len(tools) > 0 {
		prompt = BuildEnhancedPrompt(transcript.Text, analysis, complexity, kbContext, tools, results)
	} else {
		prompt = BuildAdaptivePrompt(transcript.Text, analysis, complexity, kbContext)
	}

	maxTokens := simpleMaxTokens
	if complexity == models.ComplexityComplex {
		maxTokens = complexMaxTokens
	}

	text, err := a.Model.GenerateResponse(ctx, prompt, maxTokens)
	if err != nil {
		zap.L().Warn("Model call failed, using fallback response", zap.Error(err))
		return fallbackResponse(transcript, analysis, tools, results)
	}

	text = strings.TrimSpace(reasoningRe.ReplaceAllString(text, ""))
	if text == "" {
		zap.L().Warn("Model returned empty text, using fallback response")
		return fallbackResponse(transcript, analysis, tools, results)
	}
	return text
}

// fallbackResponse picks the rule-based generator matching the degraded path:
// tool-aware when tools already ran, plain otherwise.
func fallbackResponse(transcript models.Transcript, analysis models.ImageAnalysis, tools []string, results models.ToolResults) string {
	if len(tools) > 0 {
		return GenerateToolAwareFallback(transcript.Text, analysis, tools, results)
	}
	return GenerateFallbackResponse(transcript.Text, analysis)
}

// synthesizeResponseAudio renders the response as speech and stores it. A
// length-exceeded rejection gets one retry with truncated text; any other
// synthesis error is a hard failure of the request.
func (a *App) synthesizeResponseAudio(ctx context.Context, sessionID, responseText string) (string, error) {
	ttsCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	audio, err := a.Speech.Synthesize(ttsCtx, responseText)
	if err != nil && utils.IsTextLengthExceeded(err) && len(responseText) > ttsTruncateLimit {
		zap.L().Warn("Response text exceeded synthesis limit, retrying truncated",
			zap.Int("length", len(responseText)))
		audio, err = a.Speech.Synthesize(ttsCtx, utils.TruncateText(responseText, ttsTruncateLimit))
	}
	if err != nil {
		return "", err
	}

	if err := a.Store.PutBlob(ctx, sessionID, models.ArtifactResponseAudio, audio); err != nil {
		return "", err
	}
	return models.ArtifactResponseAudio, nil
}
