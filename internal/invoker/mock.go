package invoker

import (
	"context"
	"sync"
)

// MockInvoker permite tests sin llamar a la función real.
type MockInvoker struct {
	Response []byte
	Err      error

	mu       sync.Mutex
	payloads [][]byte
}

func (m *MockInvoker) Invoke(_ context.Context, payload []byte) ([]byte, error) {
	m.mu.Lock()
	m.payloads = append(m.payloads, append([]byte(nil), payload...))
	m.mu.Unlock()
	return m.Response, m.Err
}

// Payloads devuelve una copia de los payloads recibidos, en orden.
func (m *MockInvoker) Payloads() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.payloads))
	copy(out, m.payloads)
	return out
}
