package chromez

import (
	"context"
	"errors"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// FXModule starts a tracing session inside an Fx application and releases
// its guard when the application stops, so the trace file is complete once
// app.Stop returns.
//
// The module provides:
// 1. Context of the session
// 2. *Guard for callers that want to end tracing early
//
// Usage:
//
//	app := fx.New(
//	    chromez.FXModule,
//	    fx.Supply(chromez.DefaultConfig()),
//	    // other modules...
//	)
//
// Dependencies required by this module:
// - A chromez.Config instance
// - Optionally a *zap.Logger
var FXModule = fx.Module("chromez",
	fx.Provide(NewSession),
	fx.Invoke(RegisterLifecycle),
)

// SessionParams are the dependencies of NewSession.
type SessionParams struct {
	fx.In

	Config Config
	Logger *zap.Logger `optional:"true"`
}

// NewSession initializes the process-wide session from the injected config.
// An already active session is reported as an error instead of a panic so
// that Fx can fail the application start cleanly.
func NewSession(p SessionParams) (c Context, g *Guard, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok && errors.Is(e, ErrAlreadyInitialized) {
				err = e
				return
			}
			panic(r)
		}
	}()

	c, g = p.Config.Builder(p.Logger).Init()
	return c, g, nil
}

// RegisterLifecycle releases the guard on application stop, bounded by the
// stop context.
func RegisterLifecycle(lc fx.Lifecycle, g *Guard) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return g.Shutdown(ctx)
		},
	})
}
