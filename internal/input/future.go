package input

import (
	"errors"
	"time"
)

// ErrNoReply is returned by GetValue when the reply is unavailable: the
// future is invalid, not yet ready, or the request was cancelled.
var ErrNoReply = errors.New("user input reply not available")

// Future is the handle returned when requesting user input asynchronously.
// Clients poll IsReady (or block with WaitFor) and then retrieve the reply
// once with GetValue. Cancel aborts the pending request; a cancelled
// future never becomes ready.
type Future interface {
	// ID returns the unique identifier of the underlying request
	ID() uint64

	// IsValid reports whether the future refers to a real input request
	IsValid() bool

	// IsReady reports whether GetValue would succeed
	IsReady() bool

	// WaitFor blocks until the future is ready or the timeout elapses
	WaitFor(timeout time.Duration) bool

	// GetValue returns the reply; it fails with ErrNoReply when the reply
	// is not available (including after Cancel)
	GetValue() (Reply, error)

	// Cancel aborts the request; in-flight backend calls are interrupted
	Cancel()
}

// UnsupportedFuture is the Future used when user input is not supported.
// It is never valid nor ready and GetValue always fails.
type UnsupportedFuture struct{}

func (UnsupportedFuture) ID() uint64 { return 0 }

func (UnsupportedFuture) IsValid() bool { return false }

func (UnsupportedFuture) IsReady() bool { return false }

func (UnsupportedFuture) WaitFor(timeout time.Duration) bool { return false }

func (UnsupportedFuture) GetValue() (Reply, error) { return Reply{}, ErrNoReply }

func (UnsupportedFuture) Cancel() {}
