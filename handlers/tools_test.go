package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unifi-labs/tvcare-go-sdk/models"
)

func TestSelectTools(t *testing.T) {
	t.Run("Should map billing keywords to account tools", func(t *testing.T) {
		tools := SelectTools("my subscription payment failed", models.ImageAnalysis{})
		assert.Equal(t, []string{
			models.ToolCheckAccount,
			models.ToolRefreshAccount,
			models.ToolDetectTVErrors, // "failed" is also a technical keyword
			models.ToolQuickTVCheck,
		}, tools)
	})

	t.Run("Should front-load diagnostics before restart and never duplicate", func(t *testing.T) {
		tools := SelectTools("channels keep buffering, please restart the box", models.ImageAnalysis{})
		assert.Equal(t, []string{
			models.ToolQuickTVCheck,
			models.ToolRestartSTB,
		}, tools)
	})

	t.Run("Should consider extracted image text", func(t *testing.T) {
		analysis := models.ImageAnalysis{ExtractedText: []string{"NO SERVICE"}}
		tools := SelectTools("what is wrong with my tv", analysis)
		assert.Contains(t, tools, models.ToolDetectTVErrors)
		assert.Contains(t, tools, models.ToolAnalyzeImage)
	})

	t.Run("Should add image review when labels are present", func(t *testing.T) {
		analysis := models.ImageAnalysis{Labels: []models.Label{{Name: "Television", Confidence: 92}}}
		tools := SelectTools("", analysis)
		assert.Equal(t, []string{models.ToolAnalyzeImage}, tools)
	})

	t.Run("Should fall back to generic checks for vague help requests", func(t *testing.T) {
		tools := SelectTools("I have a problem, please help", models.ImageAnalysis{})
		assert.Equal(t, []string{models.ToolQuickTVCheck, models.ToolCheckAccount}, tools)
	})

	t.Run("Should select nothing for unrelated text", func(t *testing.T) {
		assert.Empty(t, SelectTools("good morning", models.ImageAnalysis{}))
	})

	t.Run("Should be deterministic", func(t *testing.T) {
		analysis := models.ImageAnalysis{ExtractedText: []string{"ERROR 1962"}}
		first := SelectTools("my bill is wrong and the box is frozen", analysis)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, SelectTools("my bill is wrong and the box is frozen", analysis))
		}
	})
}

func TestExecuteTools(t *testing.T) {
	t.Run("Should isolate failures per tool", func(t *testing.T) {
		app, devices, _, _ := newTestApp(t)
		devices.fail = map[string]bool{models.ToolRestartSTB: true}

		tools := []string{models.ToolQuickTVCheck, models.ToolRestartSTB, models.ToolCheckAccount}
		results := app.executeTools(context.Background(), "session-1", tools, "context", models.PriorityNormal)

		require.Len(t, results, 3)
		assert.ElementsMatch(t, tools, devices.executed())
		assert.True(t, results[models.ToolQuickTVCheck].Success)
		assert.False(t, results[models.ToolRestartSTB].Success)
		assert.True(t, results[models.ToolCheckAccount].Success)
	})
}

func TestSummarizeToolResults(t *testing.T) {
	t.Run("Should report one entry per executed tool in order", func(t *testing.T) {
		tools := []string{models.ToolQuickTVCheck, models.ToolRestartSTB}
		results := models.ToolResults{
			models.ToolQuickTVCheck: {Success: true},
			models.ToolRestartSTB:   {Success: false, Timeout: true},
		}
		summary := summarizeToolResults(tools, results)
		assert.Equal(t, "Quick TV Diagnostic: ok; Set-Top Box Restart: timed out", summary)
	})

	t.Run("Should be empty without results", func(t *testing.T) {
		assert.Empty(t, summarizeToolResults(nil, nil))
	})
}
