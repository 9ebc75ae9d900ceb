package safety

import (
	"fmt"
	"regexp"
	"strings"
)

// Violation records a single failed rule.
type Violation struct {
	Rule    Rule
	Details string
}

// ValidationResult is the outcome of running the full rule catalog against a
// piece of generated text. IsValid is true iff no violation carries critical
// severity; non-critical violations and warnings are informational.
type ValidationResult struct {
	IsValid    bool
	Violations []Violation
	Warnings   []string
}

// RuleNames returns the names of all violated rules, in catalog order.
func (r ValidationResult) RuleNames() []string {
	names := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		names = append(names, v.Rule.Name)
	}
	return names
}

// Validate runs every rule in the catalog against text and partitions the
// failures by severity. It is read-only: neither the input nor the catalog is
// mutated, and a fresh result is built on every call.
func Validate(text string) ValidationResult {
	var violations []Violation
	var warnings []string

	for _, rule := range Rules {
		if !rule.Validator(text) {
			violations = append(violations, Violation{
				Rule:    rule,
				Details: fmt.Sprintf("Content violates rule: %s", rule.Name),
			})
		}
	}

	// Contextual warnings, independent of the rule catalog.
	if strings.Contains(strings.ToLower(text), "send email") && !strings.Contains(text, "confirm") {
		warnings = append(warnings, "Consider adding confirmation step before sending emails")
	}
	if strings.Contains(text, "$") && strings.Contains(text, "budget") && !strings.Contains(text, "approximate") {
		warnings = append(warnings, "Budget figures should be marked as approximate unless confirmed")
	}

	critical := 0
	for _, v := range violations {
		if v.Rule.Severity == SeverityCritical {
			critical++
		}
	}

	return ValidationResult{
		IsValid:    critical == 0,
		Violations: violations,
		Warnings:   warnings,
	}
}

// Redaction markers substituted for sensitive substrings.
const (
	redactedAPIKey = "[API_KEY_REDACTED]"
	redactedCard   = "[CARD_NUMBER_REDACTED]"
	redactedSSN    = "[SSN_REDACTED]"
)

var sanitizeCredentialRe = regexp.MustCompile(`(?i)(?:api[_-]?key|secret|token)["\s]*[:=]["\s]*[a-zA-Z0-9_-]{10,}`)

// Sanitize strips residual sensitive substrings from text that has already
// passed the critical-severity check. It is a defense-in-depth pass, not a
// substitute for blocking. Idempotent: no replacement reintroduces a match,
// so Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(text string) string {
	out := sanitizeCredentialRe.ReplaceAllString(text, redactedAPIKey)
	out = cardRe.ReplaceAllString(out, redactedCard)
	out = ssnRe.ReplaceAllString(out, redactedSSN)
	return out
}
