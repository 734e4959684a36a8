package notify

import (
	"context"
	"fmt"
	"sync"
)

// NoOp drops every payload. Used when notifications are disabled.
type NoOp struct{}

// Publish does nothing.
func (NoOp) Publish(context.Context, any) (string, error) { return "", nil }

// Close does nothing.
func (NoOp) Close() error { return nil }

// Memory records published payloads for inspection in tests.
type Memory struct {
	mu       sync.RWMutex
	payloads []any
}

// NewMemory returns an empty Memory publisher.
func NewMemory() *Memory {
	return &Memory{}
}

// Publish records the payload and returns a pseudo ID.
func (m *Memory) Publish(_ context.Context, payload any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads = append(m.payloads, payload)
	return fmt.Sprintf("memory-%d", len(m.payloads)), nil
}

// Close does nothing.
func (m *Memory) Close() error { return nil }

// Payloads returns the recorded publishes.
func (m *Memory) Payloads() []any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]any, len(m.payloads))
	copy(out, m.payloads)
	return out
}
