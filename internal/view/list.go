// Package view holds the UI-independent state machines behind every screen:
// a list with debounced search and a detail form. Renderers (CLI and TUI)
// only read their state.
package view

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Makepad-fr/nexo/internal/api"
	"github.com/Makepad-fr/nexo/internal/resource"
)

// DefaultDebounce is the search input delay.
const DefaultDebounce = 500 * time.Millisecond

// ErrDeclined is returned when the user says no to a destructive action.
var ErrDeclined = errors.New("cancelled")

// Confirmer asks the user before a destructive call.
type Confirmer interface {
	Confirm(prompt string) bool
}

type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// ListState is a snapshot for rendering.
type ListState[T any] struct {
	Records []T
	Filter  resource.Filter
	Loading bool
	Err     error
	// Message is the user-facing text for Err.
	Message string
	// Empty is set when the last completed load returned nothing.
	Empty bool
}

// FetchFunc loads one page of records.
type FetchFunc[T any] func(ctx context.Context, f resource.Filter) ([]T, error)

type RemoveFunc func(ctx context.Context, id int64) error

// List drives one list screen instance.
type List[T any] struct {
	ctx    context.Context
	cancel context.CancelFunc
	fetch  FetchFunc[T]
	remove RemoveFunc
	notify func()
	search *Debouncer

	mu     sync.Mutex
	seq    uint64
	state  ListState[T]
	closed bool
	wg     sync.WaitGroup
}

// NewList wires a list. notify is called from a background goroutine after
// every state change and never from within a List method.
func NewList[T any](ctx context.Context, fetch FetchFunc[T], remove RemoveFunc, notify func(), delay time.Duration) *List[T] {
	if notify == nil {
		notify = func() {}
	}
	if delay <= 0 {
		delay = DefaultDebounce
	}
	ctx, cancel := context.WithCancel(ctx)
	return &List[T]{
		ctx:    ctx,
		cancel: cancel,
		fetch:  fetch,
		remove: remove,
		notify: notify,
		search: NewDebouncer(delay),
	}
}

// Load starts a fetch and returns immediately. Only the latest load's result
// is ever applied.
func (l *List[T]) Load(f resource.Filter) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.seq++
	seq := l.seq
	l.state.Filter = f
	l.state.Loading = true
	l.wg.Add(1)
	l.mu.Unlock()

	go func() {
		defer l.wg.Done()
		recs, err := l.fetch(l.ctx, f)

		l.mu.Lock()
		if l.closed || seq != l.seq {
			l.mu.Unlock()
			return
		}
		l.state.Loading = false
		if err != nil {
			l.state.Err = err
			l.state.Message = api.MessageOr(err, "load failed")
		} else {
			l.state.Records = recs
			l.state.Err = nil
			l.state.Message = ""
			l.state.Empty = len(recs) == 0
		}
		l.mu.Unlock()
		l.notify()
	}()
}

// Reload repeats the last load.
func (l *List[T]) Reload() {
	l.Load(l.State().Filter)
}

// Search schedules a load for term after the debounce delay. Each call
// replaces the pending one.
func (l *List[T]) Search(term string) {
	l.search.Trigger(func() {
		f := l.State().Filter
		f.Search = term
		f.Skip = 0
		l.Load(f)
	})
}

// Delete confirms, deletes and reloads. If the user declines nothing is sent
// and ErrDeclined is returned. A failed delete keeps the current records.
func (l *List[T]) Delete(ctx context.Context, id int64, prompt string, c Confirmer) error {
	if l.remove == nil {
		return errors.New("delete not supported")
	}
	if c == nil || !c.Confirm(prompt) {
		return ErrDeclined
	}
	if err := l.remove(ctx, id); err != nil {
		l.mu.Lock()
		closed := l.closed
		if !closed {
			l.state.Err = err
			l.state.Message = api.MessageOr(err, "delete failed")
		}
		l.mu.Unlock()
		if !closed {
			go l.notify()
		}
		return err
	}
	l.Reload()
	return nil
}

func (l *List[T]) State() ListState[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	st := l.state
	st.Records = append([]T(nil), l.state.Records...)
	return st
}

// Wait blocks until in-flight loads have finished or been dropped.
func (l *List[T]) Wait() { l.wg.Wait() }

// Close tears the list down: the pending search is cancelled, in-flight
// requests are abandoned and no further notify calls happen.
func (l *List[T]) Close() {
	l.search.Stop()
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.cancel()
}
