package safety

import "strings"

// Gate action identifiers.
const (
	ActionBulkEmailSend    = "bulk_email_send"
	ActionLivePublish      = "live_publish"
	ActionBudgetAllocation = "budget_allocation"
)

// ConfirmationRequest describes a risk-bearing intent detected in raw user
// input. When RequiresExplicitConsent is true the pipeline halts before
// generation and the entire request travels to the caller, who must resubmit
// the identical message with an explicit confirmed flag.
type ConfirmationRequest struct {
	Action                  string   `json:"action"`
	Description             string   `json:"description"`
	Risks                   []string `json:"risks"`
	RequiresExplicitConsent bool     `json:"requires_explicit_consent"`
}

// CheckConfirmation scans raw user input for risk-bearing intents. It is
// evaluated before generation, independently of task classification; first
// match wins. Returns nil when no gate applies.
func CheckConfirmation(message string) *ConfirmationRequest {
	lower := strings.ToLower(message)

	if strings.Contains(lower, "send email") &&
		(strings.Contains(lower, "all") || strings.Contains(lower, "entire") || strings.Contains(lower, "everyone")) {
		return &ConfirmationRequest{
			Action:      ActionBulkEmailSend,
			Description: "Send email to large recipient list",
			Risks: []string{
				"May trigger spam filters",
				"Could result in unsubscribes",
				"Potential compliance issues",
				"Hard to recall once sent",
			},
			RequiresExplicitConsent: true,
		}
	}

	if strings.Contains(lower, "publish") &&
		(strings.Contains(lower, "live") || strings.Contains(lower, "production")) {
		return &ConfirmationRequest{
			Action:      ActionLivePublish,
			Description: "Publish content to live/production environment",
			Risks: []string{
				"Content will be immediately visible to public",
				"Difficult to quickly modify or remove",
				"May impact brand reputation if incorrect",
				"SEO implications for website changes",
			},
			RequiresExplicitConsent: true,
		}
	}

	// Budget actions are flagged but never halt the pipeline.
	if strings.Contains(lower, "spend") || strings.Contains(lower, "allocate budget") {
		return &ConfirmationRequest{
			Action:      ActionBudgetAllocation,
			Description: "Allocate or spend marketing budget",
			Risks: []string{
				"Financial commitment",
				"May affect other campaign budgets",
				"ROI implications",
				"Approval may be required",
			},
			RequiresExplicitConsent: false,
		}
	}

	return nil
}
