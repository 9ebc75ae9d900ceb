package llm

import "context"

// MockClient is a canned-response Client for tests.
type MockClient struct {
	Reply  string
	Tokens int
	Err    error

	// LastMessages records the most recent Generate input.
	LastMessages []Message
}

// Generate returns the canned reply, or Err when set.
func (m *MockClient) Generate(_ context.Context, messages []Message) (Response, error) {
	m.LastMessages = messages
	if m.Err != nil {
		return Response{}, m.Err
	}
	return Response{
		Content:     m.Reply,
		Model:       "mock-model",
		TotalTokens: m.Tokens,
	}, nil
}
