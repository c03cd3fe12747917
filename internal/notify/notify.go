// Package notify delivers user-visible notifications. The core only talks to
// the Notifier port; the host wires a concrete delivery channel at startup.
package notify

import (
	"context"
	"errors"
)

var (
	ErrUnavailable      = errors.New("notify: no notification channel available")
	ErrPermissionDenied = errors.New("notify: permission denied")
)

type Notifier interface {
	// Available reports whether this channel can deliver at all on the
	// current host.
	Available() bool
	// RequestPermission performs the one-time grant check. It returns
	// ErrPermissionDenied or ErrUnavailable when delivery cannot proceed.
	RequestPermission(ctx context.Context) error
	Send(ctx context.Context, title, body string) error
}

// Noop stands in when no delivery channel is configured. It reports itself
// unavailable so permission-gated features stay off.
type Noop struct{}

func (Noop) Available() bool { return false }

func (Noop) RequestPermission(ctx context.Context) error { return ErrUnavailable }

func (Noop) Send(ctx context.Context, title, body string) error { return nil }
