package runner

import (
	"context"
	"sync"
)

// MockRunner is a Runner implementation for tests. Responses are served
// per subcommand name; unmatched operations get the zero values.
type MockRunner struct {
	mu sync.Mutex

	// Mock return values
	Output    string
	Err       error
	ByOp      map[string]string // subcommand name -> output
	ErrByOp   map[string]error  // subcommand name -> error
	ExecuteFn func(ctx context.Context, op Operation) (string, error)

	// Call recorders
	Calls      []Operation
	LastPrompt string
}

var _ Runner = (*MockRunner)(nil)

func (m *MockRunner) Execute(ctx context.Context, op Operation) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, op)
	if op.Prompt() != "" {
		m.LastPrompt = op.Prompt()
	}
	fn := m.ExecuteFn
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, op)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.ErrByOp[op.Name()]; ok {
		return "", err
	}
	if out, ok := m.ByOp[op.Name()]; ok {
		return out, nil
	}
	return m.Output, m.Err
}

// CallCount returns how many operations were executed.
func (m *MockRunner) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
