package runner

import (
	"context"
	"time"

	"github.com/tiago/llamactl/internal/config"
	apperrors "github.com/tiago/llamactl/internal/errors"
)

// Runner is the capability the rest of the program uses to talk to the
// external runner. Both the chat session and the one-shot commands go
// through it; nothing else in the program spawns processes.
type Runner interface {
	Execute(ctx context.Context, op Operation) (string, error)
}

// ConfigProvider resolves the active configuration for one call. The
// gateway invokes it on every Execute, so configuration edits apply to the
// next call without restart, and tests inject fixed values.
type ConfigProvider func() (config.Config, error)

// Gateway is the single chokepoint for runner invocations: it resolves
// configuration, builds the command, runs it, and normalizes every failure
// into a GatewayError.
type Gateway struct {
	provider ConfigProvider
	run      func(ctx context.Context, cmd Command) (string, error)
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithRunFunc overrides process execution. Test hook.
func WithRunFunc(run func(ctx context.Context, cmd Command) (string, error)) GatewayOption {
	return func(g *Gateway) {
		if run != nil {
			g.run = run
		}
	}
}

// NewGateway creates a Gateway resolving configuration through provider.
// A nil provider falls back to config.LoadConfig.
func NewGateway(provider ConfigProvider, opts ...GatewayOption) *Gateway {
	if provider == nil {
		provider = config.LoadConfig
	}
	g := &Gateway{
		provider: provider,
		run:      runCommand,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var _ Runner = (*Gateway)(nil)

// Execute resolves the current configuration, runs op against the runner,
// and returns its trimmed stdout. Any failure, spawn, non-zero exit, or
// deadline, comes back as a *errors.GatewayError.
func (g *Gateway) Execute(ctx context.Context, op Operation) (string, error) {
	cfg, err := g.provider()
	if err != nil {
		return "", apperrors.NewGatewayError(err)
	}

	if cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.RequestTimeout)*time.Second)
		defer cancel()
	}

	out, err := g.run(ctx, Build(op, cfg))
	if err != nil {
		return "", apperrors.NewGatewayError(err)
	}
	return out, nil
}
