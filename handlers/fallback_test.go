package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/unifi-labs/tvcare-go-sdk/models"
)

func TestGenerateFallbackResponse(t *testing.T) {
	t.Run("Should give no-service steps from transcript", func(t *testing.T) {
		got := GenerateFallbackResponse("the screen says no service", models.ImageAnalysis{})
		assert.Contains(t, got, "'No Service' error")
		assert.Contains(t, got, "Restart your set-top box")
	})

	t.Run("Should give no-service steps from detected image text", func(t *testing.T) {
		analysis := models.ImageAnalysis{ExtractedText: []string{"NO SERVICE"}}
		got := GenerateFallbackResponse("something is wrong", analysis)
		assert.Contains(t, got, "'No Service' error")
	})

	t.Run("Should give hdmi guidance", func(t *testing.T) {
		got := GenerateFallbackResponse("is the HDMI cable the issue", models.ImageAnalysis{})
		assert.Contains(t, got, "HDMI cable is securely connected")
	})

	t.Run("Should suggest a restart for a black screen", func(t *testing.T) {
		got := GenerateFallbackResponse("my screen is black", models.ImageAnalysis{})
		assert.Contains(t, got, "restart your set-top box")
	})

	t.Run("Should fall through to generic diagnostics", func(t *testing.T) {
		got := GenerateFallbackResponse("the remote feels slow", models.ImageAnalysis{})
		assert.Contains(t, got, "run some diagnostics")
	})
}

func TestGenerateToolAwareFallback(t *testing.T) {
	t.Run("Should list only succeeded tools", func(t *testing.T) {
		tools := []string{models.ToolQuickTVCheck, models.ToolRestartSTB}
		results := models.ToolResults{
			models.ToolQuickTVCheck: {Success: true},
			models.ToolRestartSTB:   {Success: false, Timeout: true},
		}
		got := GenerateToolAwareFallback("no service on screen", models.ImageAnalysis{}, tools, results)
		assert.Contains(t, got, "I've already completed the following for you: Quick TV Diagnostic.")
		assert.NotContains(t, got, "Set-Top Box Restart")
	})

	t.Run("Should skip the summary when nothing succeeded", func(t *testing.T) {
		results := models.ToolResults{models.ToolRestartSTB: {Success: false}}
		got := GenerateToolAwareFallback("hdmi", models.ImageAnalysis{}, []string{models.ToolRestartSTB}, results)
		assert.NotContains(t, got, "already completed")
	})
}
