package handlers

import (
	"fmt"
	"strings"

	"github.com/unifi-labs/tvcare-go-sdk/models"
	"github.com/unifi-labs/tvcare-go-sdk/utils"
)

// Knowledge-base context is capped in the enhanced prompt so tool results
// keep room in the token budget.
const enhancedKBContextLimit = 500

func labelNames(labels []models.Label) []string {
	names := make([]string, 0, len(labels))
	for _, label := range labels {
		names = append(names, label.Name)
	}
	return names
}

func basePrompt(transcript string, analysis models.ImageAnalysis) string {
	return fmt.Sprintf(`You are a Unifi TV customer service agent.

Customer Issue: %s

Image Analysis:
- Labels: %v
- Text: %v
- Custom: %v`,
		transcript,
		labelNames(analysis.Labels),
		analysis.ExtractedText,
		labelNames(analysis.CustomLabels))
}

func instructionBlock(complexity models.Complexity) string {
	if complexity == models.ComplexitySimple {
		return "\n\nProvide a concise, direct solution with 2-3 key steps."
	}
	return "\n\nProvide detailed troubleshooting with explanations, multiple options, and preventive measures."
}

// BuildAdaptivePrompt assembles the model prompt when no tools were run.
func BuildAdaptivePrompt(transcript string, analysis models.ImageAnalysis, complexity models.Complexity, kbContext string) string {
	prompt := basePrompt(transcript, analysis)

	if kbContext != "" {
		prompt += fmt.Sprintf("\n\nKnowledge Base Context:\n%s", kbContext)
	}

	return prompt + instructionBlock(complexity)
}

// BuildEnhancedPrompt additionally describes the remediation tools that were
// already executed, so the model answers as the agent who ran them.
func BuildEnhancedPrompt(transcript string, analysis models.ImageAnalysis, complexity models.Complexity, kbContext string, tools []string, results models.ToolResults) string {
	prompt := basePrompt(transcript, analysis)

	if kbContext != "" {
		kbContext = utils.TruncateText(kbContext, enhancedKBContextLimit)
		prompt += fmt.Sprintf("\n\nKnowledge Base Context:\n%s", kbContext)
	}

	var actions strings.Builder
	actions.WriteString("\n\nActions Taken:")
	for _, tool := range tools {
		result, ok := results[tool]
		if !ok {
			continue
		}
		actions.WriteString(fmt.Sprintf("\n- %s: %s", utils.ToolDisplayName(tool), result.Message))
	}
	prompt += actions.String()

	prompt += "\n\nRespond conversationally as if you personally performed these actions for the customer, then explain what they mean and what to do next."

	return prompt + instructionBlock(complexity)
}
