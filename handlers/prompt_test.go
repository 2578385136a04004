package handlers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/unifi-labs/tvcare-go-sdk/models"
)

func TestBuildAdaptivePrompt(t *testing.T) {
	analysis := models.ImageAnalysis{
		Labels:        []models.Label{{Name: "Television", Confidence: 95}},
		ExtractedText: []string{"NO SERVICE"},
	}

	t.Run("Should ask for key steps on simple queries", func(t *testing.T) {
		prompt := BuildAdaptivePrompt("no picture", analysis, models.ComplexitySimple, "")
		assert.Contains(t, prompt, "Customer Issue: no picture")
		assert.Contains(t, prompt, "Television")
		assert.Contains(t, prompt, "2-3 key steps")
		assert.NotContains(t, prompt, "Knowledge Base Context")
	})

	t.Run("Should ask for detailed guidance on complex queries", func(t *testing.T) {
		prompt := BuildAdaptivePrompt("no picture", analysis, models.ComplexityComplex, "")
		assert.Contains(t, prompt, "multiple options")
	})

	t.Run("Should include knowledge base context when present", func(t *testing.T) {
		prompt := BuildAdaptivePrompt("no picture", analysis, models.ComplexitySimple, "reboot fixes most issues")
		assert.Contains(t, prompt, "Knowledge Base Context:\nreboot fixes most issues")
	})
}

func TestBuildEnhancedPrompt(t *testing.T) {
	tools := []string{models.ToolQuickTVCheck, models.ToolRestartSTB}
	results := models.ToolResults{
		models.ToolQuickTVCheck: {Success: true, Message: "Quick TV Diagnostic completed successfully"},
		models.ToolRestartSTB:   {Success: false, Message: "Set-Top Box Restart timed out"},
	}

	t.Run("Should enumerate executed tools with their outcomes", func(t *testing.T) {
		prompt := BuildEnhancedPrompt("box is stuck", models.ImageAnalysis{}, models.ComplexitySimple, "", tools, results)
		assert.Contains(t, prompt, "Actions Taken:")
		assert.Contains(t, prompt, "- Quick TV Diagnostic: Quick TV Diagnostic completed successfully")
		assert.Contains(t, prompt, "- Set-Top Box Restart: Set-Top Box Restart timed out")
		assert.Contains(t, prompt, "as if you personally performed these actions")
	})

	t.Run("Should truncate long knowledge base context", func(t *testing.T) {
		kb := strings.Repeat("k", 800)
		prompt := BuildEnhancedPrompt("box is stuck", models.ImageAnalysis{}, models.ComplexitySimple, kb, tools, results)
		assert.Contains(t, prompt, strings.Repeat("k", 500))
		assert.NotContains(t, prompt, strings.Repeat("k", 501))
	})
}
