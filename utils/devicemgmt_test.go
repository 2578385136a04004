package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unifi-labs/tvcare-go-sdk/models"
)

func TestDeviceClientExecute(t *testing.T) {
	t.Run("Should post session, priority and truncated context", func(t *testing.T) {
		var got map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/devices/restart", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"restart scheduled"}`))
		}))
		defer server.Close()

		client := NewDeviceClientWithBaseURL(server.URL)
		longContext := make([]byte, 300)
		for i := range longContext {
			longContext[i] = 'x'
		}

		result := client.Execute(context.Background(), models.ToolRestartSTB, "abc-123", string(longContext), models.PriorityHigh)

		require.True(t, result.Success)
		assert.Equal(t, "Set-Top Box Restart completed successfully", result.Message)
		assert.Equal(t, "restart scheduled", result.Details["status"])
		assert.Equal(t, "abc-123", got["session_id"])
		assert.Equal(t, "high", got["priority"])
		assert.Len(t, got["context"], 200)
	})

	t.Run("Should record non-200 answers as failures with the status code", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := NewDeviceClientWithBaseURL(server.URL)
		result := client.Execute(context.Background(), models.ToolQuickTVCheck, "abc-123", "", models.PriorityNormal)

		assert.False(t, result.Success)
		assert.Equal(t, http.StatusBadGateway, result.StatusCode)
		assert.Contains(t, result.Message, "returned status 502")
	})

	t.Run("Should capture transport errors instead of raising", func(t *testing.T) {
		client := NewDeviceClientWithBaseURL("http://127.0.0.1:1")
		result := client.Execute(context.Background(), models.ToolCheckAccount, "abc-123", "", models.PriorityNormal)

		assert.False(t, result.Success)
		assert.Contains(t, result.Message, "Account Status Check failed")
	})

	t.Run("Should reject tools outside the closed set", func(t *testing.T) {
		client := NewDeviceClientWithBaseURL("http://example.invalid")
		result := client.Execute(context.Background(), "open_pod_bay_doors", "abc-123", "", models.PriorityNormal)

		assert.False(t, result.Success)
		assert.Equal(t, "Unknown action: open_pod_bay_doors", result.Message)
	})
}

func TestToolHelpers(t *testing.T) {
	t.Run("Should know every tool in the closed set", func(t *testing.T) {
		for _, tool := range []string{
			models.ToolRestartSTB, models.ToolRefreshAccount, models.ToolCheckAccount,
			models.ToolQuickTVCheck, models.ToolDetectTVErrors, models.ToolAnalyzeImage,
		} {
			assert.True(t, KnownTool(tool), tool)
		}
		assert.False(t, KnownTool("unknown"))
	})

	t.Run("Should fall back to the raw name for display", func(t *testing.T) {
		assert.Equal(t, "Set-Top Box Restart", ToolDisplayName(models.ToolRestartSTB))
		assert.Equal(t, "mystery", ToolDisplayName("mystery"))
	})
}
