// Package resource maps the backend's uniform collections onto typed Go
// repositories.
package resource

import (
	"context"
	"io"
	"net/url"
	"strconv"

	"github.com/Makepad-fr/nexo/internal/api"
)

// API is the subset of *api.Client the repositories need.
type API interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
	PostForm(ctx context.Context, path string, form url.Values, out any) error
	PutMultipart(ctx context.Context, path string, fields map[string]string, files []api.File, out any) error
	Download(ctx context.Context, path string, w io.Writer) (int64, error)
}

var _ API = (*api.Client)(nil)

// Filter holds the optional list query parameters. Zero fields are not sent.
type Filter struct {
	Search   string
	Status   string
	ClientID int64
	Skip     int
	Limit    int
}

func (f Filter) Values() url.Values {
	v := url.Values{}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	if f.Status != "" {
		v.Set("status", f.Status)
	}
	if f.ClientID > 0 {
		v.Set("client_id", strconv.FormatInt(f.ClientID, 10))
	}
	if f.Skip > 0 {
		v.Set("skip", strconv.Itoa(f.Skip))
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	return v
}

// All is the filter the dashboard uses to pull whole collections.
var All = Filter{Skip: 0, Limit: 1000}

// Repo is one /<resource> collection.
type Repo[T any] struct {
	api        API
	path       string
	updateBody func(*T) any
}

func NewRepo[T any](c API, path string) *Repo[T] {
	return &Repo[T]{api: c, path: path}
}

// WithUpdateBody replaces the PUT payload, for resources whose update shape
// differs from the record.
func (r *Repo[T]) WithUpdateBody(fn func(*T) any) *Repo[T] {
	r.updateBody = fn
	return r
}

func (r *Repo[T]) Path() string { return r.path }

func (r *Repo[T]) item(id int64) string { return r.path + "/" + strconv.FormatInt(id, 10) }

func (r *Repo[T]) List(ctx context.Context, f Filter) ([]T, error) {
	var out []T
	if err := r.api.Get(ctx, r.path, f.Values(), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func (r *Repo[T]) Get(ctx context.Context, id int64) (T, error) {
	var out T
	err := r.api.Get(ctx, r.item(id), nil, &out)
	return out, err
}

// Create POSTs v; the id in the result is the server's.
func (r *Repo[T]) Create(ctx context.Context, v *T) (T, error) {
	var out T
	err := r.api.Post(ctx, r.path, v, &out)
	return out, err
}

func (r *Repo[T]) Update(ctx context.Context, id int64, v *T) (T, error) {
	var body any = v
	if r.updateBody != nil {
		body = r.updateBody(v)
	}
	var out T
	err := r.api.Put(ctx, r.item(id), body, &out)
	return out, err
}

func (r *Repo[T]) Delete(ctx context.Context, id int64) error {
	return r.api.Delete(ctx, r.item(id), nil)
}
