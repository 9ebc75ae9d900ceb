// Package safety implements the content safety rule set: the rule catalog,
// the output validator, the redaction sanitizer, and the pre-generation
// confirmation gate. Everything in this package is a pure function over
// strings; nothing here touches storage or the network.
package safety

import (
	"regexp"
	"strings"
)

// Severity is the ordinal safety-violation rank. Only SeverityCritical blocks
// a response; lower severities are recorded and surfaced as informational.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Rule is a single safety check. Validator returns true when the text is
// compliant (the violation is absent).
type Rule struct {
	ID          string
	Name        string
	Description string
	Severity    Severity
	Validator   func(text string) bool
}

var (
	credentialRe = regexp.MustCompile(`(?i)(?:api[_-]?key|secret|token|password)["\s]*[:=]["\s]*[a-zA-Z0-9_-]{10,}`)
	ssnRe        = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	cardRe       = regexp.MustCompile(`\b\d{4}[- ]?\d{4}[- ]?\d{4}[- ]?\d{4}\b`)

	harmfulRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)hack|exploit|malware|virus`),
		regexp.MustCompile(`(?i)fake|fraud|scam|phishing`),
		regexp.MustCompile(`(?i)manipulate|deceive|mislead`),
	}

	dataMentionRe = regexp.MustCompile(`(?i)data|metrics|analytics|report|study`)
	citationRe    = regexp.MustCompile(`(?i)source:|according to|data from`)
)

// bulkActionPhrases trigger the bulk-action-confirmation rule when present
// without prior confirmation context.
var bulkActionPhrases = []string{
	"send email to all",
	"publish to production",
	"send to entire list",
	"broadcast message",
	"mass email",
}

// Rules is the fixed rule catalog, evaluated in order. The catalog is defined
// once at process start and is never mutated; rules read the input text only.
var Rules = []Rule{
	{
		ID:          "api-key-exposure",
		Name:        "API Key Exposure Prevention",
		Description: "Prevents exposure of API keys and secret tokens",
		Severity:    SeverityCritical,
		Validator:   func(text string) bool { return !credentialRe.MatchString(text) },
	},
	{
		ID:          "pii-exposure",
		Name:        "PII Exposure Prevention",
		Description: "Prevents exposure of personally identifiable information",
		Severity:    SeverityCritical,
		Validator: func(text string) bool {
			return !ssnRe.MatchString(text) && !cardRe.MatchString(text)
		},
	},
	{
		ID:          "bulk-action-confirmation",
		Name:        "Bulk Action Confirmation Required",
		Description: "Requires confirmation before bulk email sends or live publishing",
		Severity:    SeverityHigh,
		Validator: func(text string) bool {
			lower := strings.ToLower(text)
			for _, phrase := range bulkActionPhrases {
				if strings.Contains(lower, phrase) {
					return false
				}
			}
			return true
		},
	},
	{
		ID:          "data-source-citation",
		Name:        "Data Source Citation",
		Description: "Ensures third-party data sources are properly cited",
		Severity:    SeverityMedium,
		Validator: func(text string) bool {
			// Mentioning data without a citation phrase is a violation;
			// text that never mentions data is compliant.
			return !dataMentionRe.MatchString(text) || citationRe.MatchString(text)
		},
	},
	{
		ID:          "harmful-content",
		Name:        "Harmful Content Prevention",
		Description: "Prevents generation of harmful or malicious content",
		Severity:    SeverityCritical,
		Validator: func(text string) bool {
			for _, re := range harmfulRes {
				if re.MatchString(text) {
					return false
				}
			}
			return true
		},
	},
}
