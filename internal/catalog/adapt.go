package catalog

import (
	"context"
	"time"

	"github.com/Makepad-fr/nexo/internal/guard"
	"github.com/Makepad-fr/nexo/internal/resource"
	"github.com/Makepad-fr/nexo/internal/ui"
	"github.com/Makepad-fr/nexo/internal/validate"
	"github.com/Makepad-fr/nexo/internal/view"
)

// def is the typed description a Resource is built from.
type def[T any] struct {
	name     string
	title    string
	level    guard.Level
	field    bool
	statuses []string
	// statusOf, when set, filters by status locally because the endpoint
	// has no status parameter.
	statusOf func(T) string

	repo     func(*resource.Set) *resource.Repo[T]
	key      func(T) int64
	cols     []ui.Column[T]
	specs    []spec[T]
	defaults func() T
	// prepare runs after the inputs are applied and before validation.
	prepare func(ctx context.Context, set *resource.Set, v *T) error
}

func (d def[T]) register() {
	register(Resource{
		Name:     d.name,
		Title:    d.title,
		Level:    d.level,
		Field:    d.field,
		Statuses: d.statuses,
		NewList: func(ctx context.Context, set *resource.Set, notify func(), delay time.Duration) Lister {
			repo := d.repo(set)
			return &lister[T]{
				l:    view.NewList[T](ctx, d.fetch(repo), repo.Delete, notify, delay),
				cols: d.cols,
				key:  d.key,
				name: d.name,
			}
		},
		NewEditor: func(set *resource.Set) Editor {
			return &editor[T]{
				form:    view.NewForm[T](d.repo(set), d.defaults, nil),
				specs:   d.specs,
				set:     set,
				prepare: d.prepare,
			}
		},
	})
}

func (d def[T]) fetch(repo *resource.Repo[T]) view.FetchFunc[T] {
	if d.statusOf == nil {
		return repo.List
	}
	return func(ctx context.Context, f resource.Filter) ([]T, error) {
		want := f.Status
		f.Status = ""
		rs, err := repo.List(ctx, f)
		if err != nil || want == "" {
			return rs, err
		}
		out := rs[:0]
		for _, r := range rs {
			if d.statusOf(r) == want {
				out = append(out, r)
			}
		}
		return out, nil
	}
}

type lister[T any] struct {
	l    *view.List[T]
	cols []ui.Column[T]
	key  func(T) int64
	name string
}

func (l *lister[T]) Load(f resource.Filter) { l.l.Load(f) }
func (l *lister[T]) Search(term string)     { l.l.Search(term) }
func (l *lister[T]) Reload()                { l.l.Reload() }
func (l *lister[T]) Wait()                  { l.l.Wait() }
func (l *lister[T]) Close()                 { l.l.Close() }

func (l *lister[T]) Delete(ctx context.Context, id int64, c view.Confirmer) error {
	return l.l.Delete(ctx, id, "Delete "+singular(l.name)+" #"+ui.ID(id)+"?", c)
}

func (l *lister[T]) Snapshot() Snapshot {
	st := l.l.State()
	s := Snapshot{
		Filter:  st.Filter,
		Loading: st.Loading,
		Message: st.Message,
		Empty:   st.Empty,
		Rows:    make([][]string, 0, len(st.Records)),
		IDs:     make([]int64, 0, len(st.Records)),
	}
	for _, c := range l.cols {
		s.Headers = append(s.Headers, c.Title)
		s.Widths = append(s.Widths, c.Width)
	}
	for _, r := range st.Records {
		s.Rows = append(s.Rows, ui.Cells(l.cols, r))
		s.IDs = append(s.IDs, l.key(r))
	}
	return s
}

type editor[T any] struct {
	form    *view.Form[T]
	specs   []spec[T]
	set     *resource.Set
	prepare func(ctx context.Context, set *resource.Set, v *T) error
}

func (e *editor[T]) Fields() []Field {
	out := make([]Field, len(e.specs))
	for i, s := range e.specs {
		out[i] = s.Field
	}
	return out
}

func (e *editor[T]) values(v T) []string {
	out := make([]string, len(e.specs))
	for i, s := range e.specs {
		out[i] = s.get(v)
	}
	return out
}

func (e *editor[T]) Open(ctx context.Context, param string) ([]string, error) {
	v, err := e.form.Open(ctx, param)
	if err != nil {
		return nil, err
	}
	return e.values(v), nil
}

// Submit applies values over the opened record, so fields without an input
// keep what the server sent.
func (e *editor[T]) Submit(ctx context.Context, values []string) error {
	v := e.form.Value()
	var bad []string
	for i, s := range e.specs {
		if i >= len(values) {
			break
		}
		if err := s.set(&v, values[i]); err != nil {
			bad = append(bad, err.Error())
		}
	}
	if len(bad) > 0 {
		return &validate.Error{Fields: bad}
	}
	if e.prepare != nil {
		if err := e.prepare(ctx, e.set, &v); err != nil {
			return err
		}
	}
	_, err := e.form.Submit(ctx, v)
	return err
}

func (e *editor[T]) Delete(ctx context.Context, c view.Confirmer) error {
	return e.form.Delete(ctx, "Delete this record?", c)
}

func (e *editor[T]) IsNew() bool           { return e.form.IsNew() }
func (e *editor[T]) State() view.FormState { return e.form.State() }
func (e *editor[T]) Message() string       { return e.form.Message() }

func singular(name string) string {
	switch name {
	case "inventory":
		return "inventory entry"
	case "admin/accounts":
		return "account"
	}
	if n := len(name); n > 1 && name[n-1] == 's' {
		return name[:n-1]
	}
	return name
}
