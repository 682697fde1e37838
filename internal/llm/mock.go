package llm

import (
	"context"
	"sync"
)

// MockClient is a scripted Client for tests. Responses are returned in order;
// once they run out the last one repeats.
type MockClient struct {
	CompleteFunc func(ctx context.Context, req Request) (string, error)
	Requests     []Request
	Responses    []string
	Err          error
	mu           sync.Mutex
}

// NewMockClient returns a client answering with the given responses.
func NewMockClient(responses ...string) *MockClient {
	return &MockClient{Responses: responses}
}

// Complete implements Client.
func (m *MockClient) Complete(ctx context.Context, req Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	call := len(m.Requests)
	m.Requests = append(m.Requests, req)

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", nil
	}
	if call >= len(m.Responses) {
		call = len(m.Responses) - 1
	}
	return m.Responses[call], nil
}

// Calls returns the number of requests received.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

// LastRequest returns the most recent request.
func (m *MockClient) LastRequest() Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Requests) == 0 {
		return Request{}
	}
	return m.Requests[len(m.Requests)-1]
}
