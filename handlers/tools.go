package handlers

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/unifi-labs/tvcare-go-sdk/models"
	"github.com/unifi-labs/tvcare-go-sdk/utils"
	"go.uber.org/zap"
)

// Keyword categories for tool selection. Category order is deliberate:
// account and diagnostic checks come before the destructive restart.
var (
	billingKeywords     = []string{"bill", "payment", "subscription", "account", "package", "expired"}
	performanceKeywords = []string{"loading", "slow", "buffering", "stuck", "frozen", "lag"}
	technicalKeywords   = []string{"error", "no service", "no signal", "black screen", "not working", "failed"}
	restartKeywords     = []string{"restart", "reboot", "reset", "turn off"}
	genericHelpKeywords = []string{"help", "problem", "issue", "trouble", "fix"}
)

// SelectTools maps the combined transcript and detected image text onto the
// remediation tools worth running. Each category is evaluated independently;
// the result is de-duplicated preserving first occurrence.
func SelectTools(transcript string, analysis models.ImageAnalysis) []string {
	combined := strings.ToLower(transcript)
	if len(analysis.ExtractedText) > 0 {
		combined += " " + strings.ToLower(strings.Join(analysis.ExtractedText, " "))
	}

	var tools []string

	if containsAny(combined, billingKeywords) {
		tools = append(tools, models.ToolCheckAccount, models.ToolRefreshAccount)
	}
	if containsAny(combined, performanceKeywords) {
		tools = append(tools, models.ToolQuickTVCheck, models.ToolRestartSTB)
	}
	if containsAny(combined, technicalKeywords) {
		tools = append(tools, models.ToolDetectTVErrors, models.ToolQuickTVCheck)
	}
	if containsAny(combined, restartKeywords) {
		tools = append(tools, models.ToolRestartSTB)
	}
	if len(analysis.Labels) > 0 || len(analysis.ExtractedText) > 0 {
		tools = append(tools, models.ToolAnalyzeImage)
	}
	if len(tools) == 0 && containsAny(combined, genericHelpKeywords) {
		tools = append(tools, models.ToolQuickTVCheck, models.ToolCheckAccount)
	}

	return dedupe(tools)
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			result = append(result, v)
		}
	}
	return result
}

// executeTools runs every selected tool against the device-management API.
// Tools are independent, so they run in parallel, each under its own timeout;
// a failing tool only marks its own entry in the result map.
func (a *App) executeTools(ctx context.Context, sessionID string, tools []string, contextText string, priority models.Priority) models.ToolResults {
	results := make(models.ToolResults, len(tools))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, tool := range tools {
		wg.Add(1)
		go func(tool string) {
			defer wg.Done()
			result := a.Devices.Execute(ctx, tool, sessionID, contextText, priority)
			mu.Lock()
			results[tool] = result
			mu.Unlock()
			zap.L().Info("Tool executed",
				zap.String("session_id", sessionID),
				zap.String("tool", tool),
				zap.Bool("success", result.Success))
		}(tool)
	}
	wg.Wait()

	return results
}

// summarizeToolResults renders a one-line-per-tool summary for the
// troubleshooting record.
func summarizeToolResults(tools []string, results models.ToolResults) string {
	var lines []string
	for _, tool := range tools {
		result, ok := results[tool]
		if !ok {
			continue
		}
		status := "failed"
		if result.Success {
			status = "ok"
		} else if result.Timeout {
			status = "timed out"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", utils.ToolDisplayName(tool), status))
	}
	return strings.Join(lines, "; ")
}
