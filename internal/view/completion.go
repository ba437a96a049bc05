package view

import (
	"context"
	"sync"

	"github.com/Makepad-fr/nexo/internal/api"
	"github.com/Makepad-fr/nexo/internal/model"
	"github.com/Makepad-fr/nexo/internal/resource"
)

// Completer is satisfied by *resource.Installations.
type Completer interface {
	Complete(ctx context.Context, id int64, c resource.Completion) (model.Installation, error)
}

// CompletionForm is the technician's close-out screen for one job. The input
// survives a failed submit so it can be corrected and resent.
type CompletionForm struct {
	jobs Completer
	id   int64

	mu         sync.Mutex
	input      resource.Completion
	submitting bool
	message    string
}

func NewCompletionForm(jobs Completer, id int64) *CompletionForm {
	return &CompletionForm{jobs: jobs, id: id}
}

func (f *CompletionForm) Submit(ctx context.Context, c resource.Completion) (model.Installation, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return model.Installation{}, ErrBusy
	}
	f.input = c
	f.message = ""
	if err := c.Validate(); err != nil {
		f.message = api.Message(err)
		f.mu.Unlock()
		return model.Installation{}, err
	}
	f.submitting = true
	f.mu.Unlock()

	out, err := f.jobs.Complete(ctx, f.id, c)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if err != nil {
		f.message = api.MessageOr(err, "completion failed")
		return model.Installation{}, err
	}
	return out, nil
}

func (f *CompletionForm) Input() resource.Completion {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.input
}

func (f *CompletionForm) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}
