package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts Options) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts.BaseURL = srv.URL + "/api/"
	return New(opts)
}

func TestBearerAndRequestID(t *testing.T) {
	var gotAuth, gotID, gotPath, gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotID = r.Header.Get("X-Request-ID")
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = io.WriteString(w, `[{"id":1}]`)
	}, Options{Tokens: TokenFunc(func() string { return "tok" })})

	var out []map[string]any
	if err := c.Get(context.Background(), "/clients", url.Values{"search": {"Acme"}}, &out); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotID == "" {
		t.Fatalf("missing X-Request-ID")
	}
	if gotPath != "/api/clients" || gotQuery != "search=Acme" {
		t.Fatalf("path=%q query=%q", gotPath, gotQuery)
	}
	if len(out) != 1 {
		t.Fatalf("out = %v", out)
	}
}

func TestNoTokenSendsAnonymous(t *testing.T) {
	var had bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, had = r.Header["Authorization"]
		w.WriteHeader(http.StatusNoContent)
	}, Options{Tokens: TokenFunc(func() string { return "" })})
	if err := c.Delete(context.Background(), "/clients/1", nil); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if had {
		t.Fatalf("anonymous request carried Authorization")
	}
}

func TestUnauthorizedHookRunsBeforeError(t *testing.T) {
	var calls atomic.Int32
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail":"Could not validate credentials"}`)
	}, Options{OnUnauthorized: func() { calls.Add(1) }, Metrics: m})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := c.Get(context.Background(), "/clients", nil, nil)
			if !errors.Is(err, ErrUnauthorized) {
				t.Errorf("err = %v", err)
			}
		}()
	}
	wg.Wait()
	// The client reports every 401; collapsing them is the session store's job.
	if calls.Load() != 4 {
		t.Fatalf("hook calls = %d", calls.Load())
	}
	if got := testutil.ToFloat64(m.ForcedLogouts); got != 4 {
		t.Fatalf("forced logouts = %v", got)
	}
	if got := testutil.ToFloat64(m.Requests.WithLabelValues("GET", "401")); got != 4 {
		t.Fatalf("requests{GET,401} = %v", got)
	}
}

func TestPostFormSkipsHook(t *testing.T) {
	called := false
	var ct, body string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		ct = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusUnauthorized)
	}, Options{OnUnauthorized: func() { called = true }})

	err := c.PostForm(context.Background(), "/auth/login", url.Values{"username": {"a"}, "password": {"b"}}, nil)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v", err)
	}
	if called {
		t.Fatalf("login 401 triggered forced logout")
	}
	if ct != "application/x-www-form-urlencoded" || body != "password=b&username=a" {
		t.Fatalf("ct=%q body=%q", ct, body)
	}
}

func TestOtherErrorsPropagate(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"detail":[{"loc":["body","name"],"msg":"required"}]}`)
	}, Options{OnUnauthorized: func() { called = true }})

	err := c.Post(context.Background(), "/clients", map[string]string{}, nil)
	var serr *StatusError
	if !errors.As(err, &serr) || serr.Status != 422 {
		t.Fatalf("err = %v", err)
	}
	if called {
		t.Fatalf("422 triggered hook")
	}
	if Message(err) != "body.name: required" {
		t.Fatalf("Message = %q", Message(err))
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()
	c := New(Options{BaseURL: base})
	err := c.Get(context.Background(), "/clients", nil, nil)
	var nerr *NetworkError
	if !errors.As(err, &nerr) {
		t.Fatalf("err = %T %v", err, err)
	}
}

func TestPutMultipart(t *testing.T) {
	dir := t.TempDir()
	photo := filepath.Join(dir, "after.png")
	if err := os.WriteFile(photo, []byte("png-bytes"), 0o600); err != nil {
		t.Fatal(err)
	}

	var (
		method, result, partType, fileBody string
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse: %v", err)
			return
		}
		result = r.FormValue("result_text")
		f, fh, err := r.FormFile("photo1")
		if err != nil {
			t.Errorf("photo1: %v", err)
			return
		}
		defer f.Close()
		partType = fh.Header.Get("Content-Type")
		b, _ := io.ReadAll(f)
		fileBody = string(b)
		_, _ = io.WriteString(w, `{"id":42,"status":"completed"}`)
	}, Options{})

	var out map[string]any
	err := c.PutMultipart(context.Background(), "/installations/42/complete",
		map[string]string{"result_text": "Replaced filter"},
		[]File{{Field: "photo1", Path: photo}}, &out)
	if err != nil {
		t.Fatalf("PutMultipart: %v", err)
	}
	if method != http.MethodPut || result != "Replaced filter" || partType != "image/png" || fileBody != "png-bytes" {
		t.Fatalf("method=%s result=%q type=%q body=%q", method, result, partType, fileBody)
	}
	if out["status"] != "completed" {
		t.Fatalf("out = %v", out)
	}
}

func TestDownload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/backup/download/db.sql") {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, "dump")
	}, Options{})
	var sb strings.Builder
	n, err := c.Download(context.Background(), "/backup/download/db.sql", &sb)
	if err != nil || n != 4 || sb.String() != "dump" {
		t.Fatalf("n=%d err=%v body=%q", n, err, sb.String())
	}
	if _, err := c.Download(context.Background(), "/backup/download/missing", &sb); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing: %v", err)
	}
}
