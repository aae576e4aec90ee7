package nlu

import "github.com/hrideymarwah15/studyassistant/internal/bridge"

const maxSuggestions = 4

// SuggestedCommands returns up to four quick commands for the user's current
// page. Pure function of the context; it never touches external services.
func SuggestedCommands(cctx *bridge.CommandContext) []string {
	var suggestions []string
	page := ""
	if cctx != nil {
		page = cctx.CurrentPage
	}

	switch page {
	case "tasks":
		suggestions = []string{
			"show my tasks",
			"remind me to review lecture notes tomorrow",
			"start a study session for 25 minutes",
		}
	case "habits":
		suggestions = []string{
			"show my habits",
			"i did meditation",
		}
	case "calendar":
		suggestions = []string{
			"schedule a meeting study group tomorrow",
			"what's due today?",
		}
	case "materials":
		suggestions = []string{
			"search my notes for mitochondria",
			"create a study plan for exam finals in 7 days",
		}
	default:
		suggestions = []string{
			"how am i doing today?",
			"start focus mode",
			"create a study plan for exam finals in 7 days",
		}
	}

	if cctx != nil && cctx.AvailableData != nil {
		if len(cctx.AvailableData.Tasks) > 0 && page != "tasks" && page != "calendar" {
			suggestions = append(suggestions, "what's due today?")
		}
		if len(cctx.AvailableData.Habits) > 0 && page != "habits" {
			suggestions = append(suggestions, "show my habits")
		}
	}

	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}
