package model

import (
	"context"
	"sync"

	"github.com/flowbyte/agentrun/core"
)

// MockTurn is one scripted step of a MockBackend: either a message or an
// error, consumed in order.
type MockTurn struct {
	Message *core.Message
	Err     error
}

// MockBackend is a lightweight in-memory Backend useful for tests and
// examples. It replays a scripted sequence of turns and records every
// request it receives. Safe for concurrent use.
type MockBackend struct {
	mu       sync.Mutex
	info     Info
	script   []MockTurn
	requests []Request
}

// NewMockBackend constructs a MockBackend with basic tool support enabled.
func NewMockBackend(name string) *MockBackend {
	return &MockBackend{
		info: Info{Name: name, Provider: "mock", SupportsTools: true},
	}
}

// Enqueue appends scripted turns replayed by subsequent Invoke calls.
func (m *MockBackend) Enqueue(turns ...MockTurn) *MockBackend {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, turns...)
	return m
}

// EnqueueText appends a plain assistant text response.
func (m *MockBackend) EnqueueText(text string) *MockBackend {
	msg := core.NewAssistantMessage(text)
	return m.Enqueue(MockTurn{Message: &msg})
}

// EnqueueToolCalls appends an assistant response requesting the given tool calls.
func (m *MockBackend) EnqueueToolCalls(calls ...core.ToolCall) *MockBackend {
	msg := core.Message{Role: core.RoleAssistant, ToolCalls: calls}
	return m.Enqueue(MockTurn{Message: &msg})
}

// EnqueueError appends a scripted failure.
func (m *MockBackend) EnqueueError(err error) *MockBackend {
	return m.Enqueue(MockTurn{Err: err})
}

// Requests returns a copy of every request seen so far, in order.
func (m *MockBackend) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Calls returns the number of Invoke/InvokeStreaming calls received.
func (m *MockBackend) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *MockBackend) next(req Request) (*core.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if len(m.script) == 0 {
		msg := core.NewAssistantMessage("ok")
		return &msg, nil
	}
	turn := m.script[0]
	m.script = m.script[1:]
	if turn.Err != nil {
		return nil, turn.Err
	}
	msg := *turn.Message
	return &msg, nil
}

// Invoke implements Backend by replaying the next scripted turn.
func (m *MockBackend) Invoke(ctx context.Context, req Request) (*core.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.next(req)
}

// InvokeStreaming implements Backend; it delivers the scripted content as a
// single token before returning the full message.
func (m *MockBackend) InvokeStreaming(ctx context.Context, req Request, onToken func(string)) (*core.Message, error) {
	msg, err := m.Invoke(ctx, req)
	if err != nil {
		return nil, err
	}
	if onToken != nil && msg.Content != "" {
		onToken(msg.Content)
	}
	return msg, nil
}

// Info implements Backend.
func (m *MockBackend) Info() Info { return m.info }
