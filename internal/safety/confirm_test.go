package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckConfirmationBulkEmail(t *testing.T) {
	tests := []string{
		"send email to all subscribers",
		"Send Email to EVERYONE about the sale",
		"please send email to the entire list",
	}
	for _, msg := range tests {
		req := CheckConfirmation(msg)
		require.NotNil(t, req, "message %q", msg)
		assert.Equal(t, ActionBulkEmailSend, req.Action)
		assert.True(t, req.RequiresExplicitConsent)
		assert.Len(t, req.Risks, 4)
	}
}

func TestCheckConfirmationLivePublish(t *testing.T) {
	req := CheckConfirmation("publish the new landing page to production")
	require.NotNil(t, req)
	assert.Equal(t, ActionLivePublish, req.Action)
	assert.True(t, req.RequiresExplicitConsent)

	req = CheckConfirmation("publish this live right now")
	require.NotNil(t, req)
	assert.Equal(t, ActionLivePublish, req.Action)
}

func TestCheckConfirmationBudgetIsInformational(t *testing.T) {
	req := CheckConfirmation("how should we spend the Q3 budget")
	require.NotNil(t, req)
	assert.Equal(t, ActionBudgetAllocation, req.Action)
	assert.False(t, req.RequiresExplicitConsent, "budget gate is warn-only")

	req = CheckConfirmation("allocate budget across paid channels")
	require.NotNil(t, req)
	assert.Equal(t, ActionBudgetAllocation, req.Action)
}

func TestCheckConfirmationFirstMatchWins(t *testing.T) {
	// Matches both the bulk email and budget rules; rule order decides.
	req := CheckConfirmation("send email to all customers about how we spend")
	require.NotNil(t, req)
	assert.Equal(t, ActionBulkEmailSend, req.Action)
}

func TestCheckConfirmationNoTrigger(t *testing.T) {
	tests := []string{
		"hello",
		"write ad copy for LinkedIn",
		"publish a draft internally",
		"send email to John about the meeting",
		"what is our roadmap for Q1",
	}
	for _, msg := range tests {
		assert.Nil(t, CheckConfirmation(msg), "message %q", msg)
	}
}
