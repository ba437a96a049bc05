package view

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/Makepad-fr/nexo/internal/api"
	"github.com/Makepad-fr/nexo/internal/validate"
)

// FormState is where a detail screen is in its lifecycle.
type FormState int

const (
	StateNew FormState = iota
	StateLoading
	StateReady
	StateSubmitting
	StateError
)

func (s FormState) String() string {
	return [...]string{"new", "loading", "ready", "submitting", "error"}[s]
}

var (
	// ErrFetchFailed means the record could not be loaded; the screen should
	// alert and go back.
	ErrFetchFailed = errors.New("could not load record")
	ErrBusy        = errors.New("a submit is already in progress")
	ErrNotReady    = errors.New("form is not ready")
	ErrNoRecord    = errors.New("record has not been created")
)

// NewID is the route parameter for "create".
const NewID = "new"

// ParseID maps a route parameter to a record id. "", "new", and anything that
// is not a positive integer all mean a new record (id 0).
func ParseID(param string) int64 {
	param = strings.TrimSpace(param)
	if param == "" || param == NewID {
		return 0
	}
	id, err := strconv.ParseInt(param, 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

// FormRepo is the slice of a resource.Repo a Form needs.
type FormRepo[T any] interface {
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, v *T) (T, error)
	Update(ctx context.Context, id int64, v *T) (T, error)
	Delete(ctx context.Context, id int64) error
}

// Form drives one detail/edit screen.
type Form[T any] struct {
	repo     FormRepo[T]
	defaults func() T
	check    func(*T) error

	mu      sync.Mutex
	id      int64
	state   FormState
	value   T
	message string
}

// NewForm builds a form. defaults may be nil; check runs after struct-tag
// validation for rules tags cannot express.
func NewForm[T any](repo FormRepo[T], defaults func() T, check func(*T) error) *Form[T] {
	return &Form[T]{repo: repo, defaults: defaults, check: check}
}

// Open loads the record named by param, or prepares a blank one.
func (f *Form[T]) Open(ctx context.Context, param string) (T, error) {
	id := ParseID(param)
	f.mu.Lock()
	f.id = id
	f.message = ""
	if id == 0 {
		var blank T
		if f.defaults != nil {
			blank = f.defaults()
		}
		f.state = StateReady
		f.value = blank
		f.mu.Unlock()
		return blank, nil
	}
	f.state = StateLoading
	f.mu.Unlock()

	v, err := f.repo.Get(ctx, id)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = StateError
		f.message = api.MessageOr(err, ErrFetchFailed.Error())
		var zero T
		return zero, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	f.state = StateReady
	f.value = v
	return v, nil
}

// Submit validates v, then creates or updates. On failure the form is Ready
// again with Message set and v kept for correction.
func (f *Form[T]) Submit(ctx context.Context, v T) (T, error) {
	var zero T
	f.mu.Lock()
	switch f.state {
	case StateSubmitting:
		f.mu.Unlock()
		return zero, ErrBusy
	case StateReady:
	default:
		f.mu.Unlock()
		return zero, ErrNotReady
	}
	f.value = v
	if err := f.validate(&v); err != nil {
		f.message = api.Message(err)
		f.mu.Unlock()
		return zero, err
	}
	id := f.id
	f.state = StateSubmitting
	f.message = ""
	f.mu.Unlock()

	var (
		out T
		err error
	)
	if id == 0 {
		out, err = f.repo.Create(ctx, &v)
	} else {
		out, err = f.repo.Update(ctx, id, &v)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = StateReady
	if err != nil {
		f.message = api.Message(err)
		return zero, err
	}
	f.value = out
	return out, nil
}

func (f *Form[T]) validate(v *T) error {
	if err := validate.Struct(v); err != nil {
		return err
	}
	if f.check != nil {
		return f.check(v)
	}
	return nil
}

// Delete removes the opened record after confirmation.
func (f *Form[T]) Delete(ctx context.Context, prompt string, c Confirmer) error {
	f.mu.Lock()
	id, st := f.id, f.state
	f.mu.Unlock()
	if id == 0 {
		return ErrNoRecord
	}
	if st != StateReady {
		return ErrNotReady
	}
	if c == nil || !c.Confirm(prompt) {
		return ErrDeclined
	}
	if err := f.repo.Delete(ctx, id); err != nil {
		f.mu.Lock()
		f.message = api.MessageOr(err, "delete failed")
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *Form[T]) ID() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.id
}

// IsNew reports whether submit will create.
func (f *Form[T]) IsNew() bool { return f.ID() == 0 }

func (f *Form[T]) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Form[T]) Value() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

// Message is the last error shown to the user, or "".
func (f *Form[T]) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}
