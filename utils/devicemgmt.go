package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/unifi-labs/tvcare-go-sdk/models"
	"go.uber.org/zap"
)

const toolContextLimit = 200

// toolEndpoints maps every remediation tool to its device-management API
// path.
var toolEndpoints = map[string]string{
	models.ToolRestartSTB:     "/devices/restart",
	models.ToolRefreshAccount: "/accounts/refresh",
	models.ToolCheckAccount:   "/accounts/status",
	models.ToolQuickTVCheck:   "/diagnostics/quick-check",
	models.ToolDetectTVErrors: "/diagnostics/tv-errors",
	models.ToolAnalyzeImage:   "/diagnostics/image-review",
}

// State-mutating tools get a longer deadline than read-only diagnostics.
var mutatingTools = map[string]bool{
	models.ToolRestartSTB:     true,
	models.ToolRefreshAccount: true,
}

var toolDisplayNames = map[string]string{
	models.ToolRestartSTB:     "Set-Top Box Restart",
	models.ToolRefreshAccount: "Account Refresh",
	models.ToolCheckAccount:   "Account Status Check",
	models.ToolQuickTVCheck:   "Quick TV Diagnostic",
	models.ToolDetectTVErrors: "TV Error Scan",
	models.ToolAnalyzeImage:   "Image Review",
}

// KnownTool reports whether name belongs to the closed remediation tool set.
func KnownTool(name string) bool {
	_, ok := toolEndpoints[name]
	return ok
}

// ToolDisplayName returns the human-readable name used in prompts and
// summaries.
func ToolDisplayName(name string) string {
	if display, ok := toolDisplayNames[name]; ok {
		return display
	}
	return name
}

// DeviceClient talks to the external device-management API that performs
// remediation actions (restart, reprovision, diagnostics).
type DeviceClient struct {
	client *resty.Client
}

func NewDeviceClient() *DeviceClient {
	baseURL := os.Getenv("DEVICE_API_BASE_URL")
	if baseURL == "" {
		zap.L().Warn("DEVICE_API_BASE_URL not set, tool execution will fail")
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json")

	if apiKey := os.Getenv("DEVICE_API_KEY"); apiKey != "" {
		client.SetAuthToken(apiKey)
	}

	return &DeviceClient{client: client}
}

// NewDeviceClientWithBaseURL is used by tests to point the client at a local
// server.
func NewDeviceClientWithBaseURL(baseURL string) *DeviceClient {
	return &DeviceClient{
		client: resty.New().SetBaseURL(baseURL).SetHeader("Content-Type", "application/json"),
	}
}

// Execute runs one remediation tool and always returns a result, never an
// error: timeouts, non-200 answers and transport failures are all captured in
// the ToolResult so one tool cannot abort a batch.
func (d *DeviceClient) Execute(ctx context.Context, tool, sessionID, contextText string, priority models.Priority) models.ToolResult {
	endpoint, ok := toolEndpoints[tool]
	if !ok {
		return models.ToolResult{
			Success: false,
			Message: fmt.Sprintf("Unknown action: %s", tool),
		}
	}

	contextText = TruncateText(contextText, toolContextLimit)

	timeout := 30 * time.Second
	if mutatingTools[tool] {
		timeout = 60 * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := d.client.R().
		SetContext(callCtx).
		SetBody(map[string]any{
			"session_id": sessionID,
			"priority":   priority,
			"context":    contextText,
		}).
		Post(endpoint)

	if err != nil {
		if isTimeoutError(err) {
			zap.L().Warn("Tool call timed out", zap.String("tool", tool))
			return models.ToolResult{
				Success: false,
				Message: fmt.Sprintf("%s timed out", ToolDisplayName(tool)),
				Timeout: true,
			}
		}
		zap.L().Warn("Tool call failed", zap.String("tool", tool), zap.Error(err))
		return models.ToolResult{
			Success: false,
			Message: fmt.Sprintf("%s failed: %v", ToolDisplayName(tool), err),
		}
	}

	if resp.StatusCode() != 200 {
		return models.ToolResult{
			Success:    false,
			Message:    fmt.Sprintf("%s returned status %d", ToolDisplayName(tool), resp.StatusCode()),
			StatusCode: resp.StatusCode(),
		}
	}

	var details map[string]any
	if err := json.Unmarshal(resp.Body(), &details); err != nil {
		details = nil
	}
	return models.ToolResult{
		Success: true,
		Message: fmt.Sprintf("%s completed successfully", ToolDisplayName(tool)),
		Details: details,
	}
}

func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Timeout()
	}
	return false
}
