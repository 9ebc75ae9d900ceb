package safety

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCleanText(t *testing.T) {
	res := Validate("Here is a growth plan for your SaaS product.")
	assert.True(t, res.IsValid)
	assert.Empty(t, res.Violations)
	assert.Empty(t, res.Warnings)
}

func TestValidateCredentialExposure(t *testing.T) {
	res := Validate("Use api_key: abc123xyz789 to authenticate.")
	assert.False(t, res.IsValid)
	require.Len(t, res.Violations, 1)
	assert.Equal(t, "api-key-exposure", res.Violations[0].Rule.ID)
	assert.Equal(t, SeverityCritical, res.Violations[0].Rule.Severity)
}

func TestValidatePIIPatterns(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"ssn", "The customer SSN is 123-45-6789."},
		{"card spaced", "Card on file: 4111 1111 1111 1111."},
		{"card dashed", "Charge 4111-1111-1111-1111 for the invoice."},
		{"card contiguous", "Reference number 4111111111111111 found in export."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.text)
			assert.False(t, res.IsValid)
			var ids []string
			for _, v := range res.Violations {
				ids = append(ids, v.Rule.ID)
			}
			assert.Contains(t, ids, "pii-exposure")
		})
	}
}

func TestValidateBulkActionIsNonBlocking(t *testing.T) {
	// High severity is recorded but does not invalidate the result.
	res := Validate("I will send email to all subscribers tomorrow, confirm first.")
	assert.True(t, res.IsValid)
	require.Len(t, res.Violations, 1)
	assert.Equal(t, SeverityHigh, res.Violations[0].Rule.Severity)
}

func TestValidateCitationRule(t *testing.T) {
	res := Validate("The metrics improved 40% last quarter.")
	assert.True(t, res.IsValid, "medium severity must not block")
	require.Len(t, res.Violations, 1)
	assert.Equal(t, "data-source-citation", res.Violations[0].Rule.ID)

	cited := Validate("The metrics improved 40% last quarter, according to GA4.")
	assert.Empty(t, cited.Violations)
}

func TestValidateHarmfulContent(t *testing.T) {
	res := Validate("Here is how to phishing your competitors.")
	assert.False(t, res.IsValid)
}

func TestValidateWarnings(t *testing.T) {
	res := Validate("We should send email to the list next week.")
	assert.Contains(t, res.Warnings, "Consider adding confirmation step before sending emails")

	res = Validate("Set the budget at $5000 for the quarter.")
	assert.Contains(t, res.Warnings, "Budget figures should be marked as approximate unless confirmed")

	res = Validate("Set the budget at approximately $5000 — an approximate figure.")
	assert.Empty(t, res.Warnings)
}

func TestValidateIsValidTracksCriticalOnly(t *testing.T) {
	// One high + one medium violation, zero critical: still valid.
	res := Validate("We will mass email the metrics summary.")
	assert.True(t, res.IsValid)
	assert.Len(t, res.Violations, 2)
}

func TestSanitizeRedactions(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"credential pair",
			"login with api_key: abc123xyz789 now",
			"login with [API_KEY_REDACTED] now",
		},
		{
			"card number",
			"charge 4111 1111 1111 1111 today",
			"charge [CARD_NUMBER_REDACTED] today",
		},
		{
			"ssn",
			"ssn 123-45-6789 on record",
			"ssn [SSN_REDACTED] on record",
		},
		{
			"clean text untouched",
			"nothing sensitive here",
			"nothing sensitive here",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"api_key: abc123xyz789 and card 4111-1111-1111-1111 and ssn 123-45-6789",
		"token = supersecretvalue42",
		"plain text with no secrets",
		strings.Repeat("4111 1111 1111 1111 ", 3),
	}
	for _, in := range inputs {
		once := Sanitize(in)
		twice := Sanitize(once)
		assert.Equal(t, once, twice, "input %q", in)
	}
}

func TestRuleCatalogShape(t *testing.T) {
	require.Len(t, Rules, 5)
	for _, r := range Rules {
		assert.NotEmpty(t, r.ID)
		assert.NotEmpty(t, r.Name)
		assert.NotNil(t, r.Validator)
	}
}
