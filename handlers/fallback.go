package handlers

import (
	"strings"

	"github.com/unifi-labs/tvcare-go-sdk/models"
	"github.com/unifi-labs/tvcare-go-sdk/utils"
)

// GenerateFallbackResponse produces a deterministic rule-based answer when
// the model endpoint is unavailable. It keys on the strongest phrase it can
// find in the transcript and detected on-screen text.
func GenerateFallbackResponse(transcript string, analysis models.ImageAnalysis) string {
	lower := strings.ToLower(transcript)

	response := "I understand you're having issues with your Unifi TV service. "

	switch {
	case strings.Contains(lower, "no service") || extractedTextContains(analysis, "no service"):
		response += "I can see there's a 'No Service' error. Let me help you with these steps: "
		response += "1. Check if all cables are properly connected. "
		response += "2. Restart your set-top box by unplugging it for 30 seconds. "
		response += "3. I'll also check your subscription status and refresh your account if needed."
	case strings.Contains(lower, "hdmi"):
		response += "I notice you mentioned HDMI. Please ensure the HDMI cable is securely connected to both your set-top box and TV."
	case strings.Contains(lower, "black") || strings.Contains(lower, "no signal"):
		response += "A blank or no-signal screen usually clears after a restart. Please restart your set-top box by unplugging it for 30 seconds, and check that the TV is on the correct input."
	default:
		response += "Let me run some diagnostics and provide you with the appropriate troubleshooting steps."
	}

	return response
}

// GenerateToolAwareFallback is the fallback used when tools already ran: it
// adds a summary of what succeeded so the degraded answer still reflects the
// work done.
func GenerateToolAwareFallback(transcript string, analysis models.ImageAnalysis, tools []string, results models.ToolResults) string {
	response := GenerateFallbackResponse(transcript, analysis)

	var succeeded []string
	for _, tool := range tools {
		if result, ok := results[tool]; ok && result.Success {
			succeeded = append(succeeded, utils.ToolDisplayName(tool))
		}
	}
	if len(succeeded) > 0 {
		response += " I've already completed the following for you: " + strings.Join(succeeded, ", ") + "."
	}

	return response
}

func extractedTextContains(analysis models.ImageAnalysis, phrase string) bool {
	for _, text := range analysis.ExtractedText {
		if strings.Contains(strings.ToLower(text), phrase) {
			return true
		}
	}
	return false
}
