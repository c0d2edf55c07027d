package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Notifier delivers the user-facing failure message of an export run.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) {
	f(message)
}

// Control holds the loading state of a single export trigger.
type Control struct {
	loading atomic.Bool
}

// Loading reports whether a run of this trigger is in flight.
func (c *Control) Loading() bool {
	return c.loading.Load()
}

// Run executes fn while the trigger is marked as loading. A trigger that is already
// loading rejects the call with ErrInProgress and fn is not invoked. Any error or panic
// from fn is logged and reported once through n; the loading state is always reset.
// A run cancelled by its caller is not reported.
func (c *Control) Run(ctx context.Context, n Notifier, fn func(context.Context) error) (err error) {
	if !c.loading.CompareAndSwap(false, true) {
		return ErrInProgress
	}
	defer c.loading.Store(false)

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("export run panicked: %v", rec)
		}
		if errors.Is(err, context.Canceled) {
			slog.Info("export run cancelled", "error", err)
			return
		}
		if err != nil {
			slog.Error("export run failed", "error", err)
			if n != nil {
				n.Notify(FailureMessage)
			}
		}
	}()

	return fn(ctx)
}

// ControlSet hands out one Control per trigger key. A control lives only while a run
// holds it, so keys of clients that went away do not accumulate.
type ControlSet struct {
	mu       sync.Mutex
	controls map[string]*heldControl
}

type heldControl struct {
	control *Control
	holders int
}

// NewControlSet creates an empty set.
func NewControlSet() *ControlSet {
	return &ControlSet{controls: make(map[string]*heldControl)}
}

// Run executes fn on the control of key, see Control.Run.
func (s *ControlSet) Run(ctx context.Context, key string, n Notifier, fn func(context.Context) error) error {
	c := s.acquire(key)
	defer s.release(key)
	return c.Run(ctx, n, fn)
}

// Len returns the number of controls currently held.
func (s *ControlSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.controls)
}

func (s *ControlSet) acquire(key string) *Control {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.controls[key]
	if !ok {
		h = &heldControl{control: &Control{}}
		s.controls[key] = h
	}
	h.holders++
	return h.control
}

func (s *ControlSet) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.controls[key]
	h.holders--
	if h.holders == 0 {
		delete(s.controls, key)
	}
}
