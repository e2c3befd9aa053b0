package llm

import (
	"context"
	"fmt"
	"sync"
)

// MockModel is a scripted Model for tests. Each Generate call consumes the
// next entry of Responses; when GenerateFunc is set it takes precedence.
// Calls records the message lists passed in, in order.
type MockModel struct {
	mu        sync.Mutex
	Responses []*Response
	Err       error

	// GenerateFunc, when non-nil, computes the response instead of Responses.
	GenerateFunc func(ctx context.Context, messages []Message, opts CallOptions) (*Response, error)

	Calls [][]Message
	next  int
}

// NewMockModel builds a mock that replies with the given texts in order.
func NewMockModel(replies ...string) *MockModel {
	m := &MockModel{}
	for _, r := range replies {
		m.Responses = append(m.Responses, &Response{Content: r})
	}
	return m
}

func (m *MockModel) Generate(ctx context.Context, messages []Message, opts ...CallOption) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, messages)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, messages, ApplyOptions(opts...))
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.next >= len(m.Responses) {
		return nil, fmt.Errorf("mock model: no response scripted for call %d", m.next+1)
	}
	resp := m.Responses[m.next]
	m.next++
	return resp, nil
}

func (m *MockModel) Stream(ctx context.Context, messages []Message, opts ...CallOption) (*StreamReader, error) {
	resp, err := m.Generate(ctx, messages, opts...)
	if err != nil {
		return nil, err
	}
	// Replay the scripted text a few runes at a time so consumers exercise
	// real multi-fragment assembly.
	ctx, cancel := context.WithCancel(ctx)
	chunks := make(chan string)
	errs := make(chan error, 1)
	go func() {
		defer close(chunks)
		runes := []rune(resp.Content)
		const step = 4
		for i := 0; i < len(runes); i += step {
			end := i + step
			if end > len(runes) {
				end = len(runes)
			}
			select {
			case chunks <- string(runes[i:end]):
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
	}()
	return NewStreamReader(chunks, errs, cancel), nil
}

// CallCount reports how many times Generate or Stream was invoked.
func (m *MockModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
