// Package screens holds what the tutor screens share: the session, the
// model client and the way to obtain one from a typed key.
package screens

import (
	"context"
	"log/slog"
	"time"

	"github.com/abhisek/mathstep/internal/i18n"
	"github.com/abhisek/mathstep/internal/tutor"
)

// ConnectFunc builds a model client for an API key entered at runtime.
type ConnectFunc func(ctx context.Context, apiKey string) (tutor.ModelClient, error)

// Env is shared by every screen of one TUI run.
type Env struct {
	Session *tutor.Session

	// Client is nil until a key has been configured.
	Client  tutor.ModelClient
	Connect ConnectFunc

	// SolveTimeout bounds one submit. Zero means no extra bound.
	SolveTimeout time.Duration

	Logger *slog.Logger
}

// T looks key up in the session's current language.
func (e *Env) T(key string) string {
	return i18n.Lookup(e.Session.Language(), key)
}

func (e *Env) Lang() i18n.Language {
	return e.Session.Language()
}

func (e *Env) Log() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// Ready reports whether submits can be dispatched.
func (e *Env) Ready() bool {
	return e.Client != nil && e.Session.APIKeyConfigured()
}

// ClearKey forgets the runtime key and resets the session.
func (e *Env) ClearKey() {
	e.Client = nil
	e.Session.SetAPIKeyConfigured(false)
	e.Session.Reset()
}

// SolveContext returns the context for one submit.
func (e *Env) SolveContext() (context.Context, context.CancelFunc) {
	if e.SolveTimeout > 0 {
		return context.WithTimeout(context.Background(), e.SolveTimeout)
	}
	return context.WithCancel(context.Background())
}
