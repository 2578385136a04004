package handlers

import (
	"strings"

	"github.com/unifi-labs/tvcare-go-sdk/models"
)

// actionTriggers maps keyword groups to the follow-up action they recommend.
// Groups are evaluated independently in this order; one response can trigger
// several actions.
var actionTriggers = []struct {
	action   string
	keywords []string
}{
	{models.ToolRestartSTB, []string{"restart", "reboot", "reset"}},
	{models.ToolRefreshAccount, []string{"refresh", "provision", "subscription"}},
	{models.ToolCheckAccount, []string{"check", "verify", "account"}},
	{models.ToolQuickTVCheck, []string{"diagnose", "health", "status"}},
}

// ExtractActions scans the final response text for keyword triggers and
// returns the recommended follow-up actions, de-duplicated in group order.
func ExtractActions(responseText string) []string {
	lower := strings.ToLower(responseText)

	actions := []string{}
	for _, trigger := range actionTriggers {
		if containsAny(lower, trigger.keywords) {
			actions = append(actions, trigger.action)
		}
	}
	return actions
}
