package handlers

import (
	"strings"

	"github.com/unifi-labs/tvcare-go-sdk/models"
)

// Queries longer than this many words are treated as complex regardless of
// content.
const complexWordThreshold = 20

var complexIndicators = []string{
	"intermittent",
	"sometimes",
	"multiple",
	"various",
	"different channels",
	"specific times",
}

var urgencyIndicators = []string{
	"urgent",
	"immediately",
	"right now",
	"asap",
	"completely",
	"not working at all",
	"emergency",
}

// ClassifyComplexity decides how detailed the generated answer should be.
func ClassifyComplexity(text string) models.Complexity {
	lower := strings.ToLower(text)
	if len(strings.Fields(text)) > complexWordThreshold || containsAny(lower, complexIndicators) {
		return models.ComplexityComplex
	}
	return models.ComplexitySimple
}

// ClassifyPriority flags queries that should jump the queue on the
// device-management side.
func ClassifyPriority(text string) models.Priority {
	if containsAny(strings.ToLower(text), urgencyIndicators) {
		return models.PriorityHigh
	}
	return models.PriorityNormal
}

func containsAny(lower string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
