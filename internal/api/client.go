// Package api is the HTTP adapter every screen talks through. It attaches the
// bearer token, tags each request with an X-Request-ID and turns a 401 from
// any endpoint into a forced logout before the error reaches the caller.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TokenSource yields the current bearer token, or "" for anonymous requests.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenSource
	// OnUnauthorized runs on every 401 before the error is returned.
	OnUnauthorized func()
	Logger         zerolog.Logger
	Metrics        *Metrics
}

type Client struct {
	base    string
	hc      *http.Client
	tokens  TokenSource
	on401   func()
	log     zerolog.Logger
	metrics *Metrics
}

func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		base:    strings.TrimRight(opts.BaseURL, "/"),
		hc:      hc,
		tokens:  opts.Tokens,
		on401:   opts.OnUnauthorized,
		log:     opts.Logger,
		metrics: opts.Metrics,
	}
}

func (c *Client) BaseURL() string { return c.base }

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, out)
}

// PostForm sends a form-encoded body without a token. A 401 here means bad
// credentials, not an expired session, so the unauthorized hook is skipped.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodPost, path, nil, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.send(req, false)
	if err != nil {
		return err
	}
	return decode(resp, out)
}

// Download streams a binary response body into w and returns the byte count.
func (c *Client) Download(ctx context.Context, path string, w io.Writer) (int64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return 0, err
	}
	c.authorize(req)
	resp, err := c.send(req, true)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, &NetworkError{Method: req.Method, Path: path, Err: err}
	}
	return n, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := c.newRequest(ctx, method, path, query, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	c.authorize(req)
	resp, err := c.send(req, true)
	if err != nil {
		return err
	}
	return decode(resp, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.base + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.tokens == nil {
		return
	}
	if tok := c.tokens.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
}

// send performs the round trip and converts non-2xx responses into
// *StatusError. On success the caller owns resp.Body.
func (c *Client) send(req *http.Request, hook401 bool) (*http.Response, error) {
	path := strings.TrimPrefix(req.URL.Path, pathPrefix(c.base))
	start := time.Now()
	resp, err := c.hc.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.observe(req.Method, "error", elapsed)
		c.log.Debug().Err(err).Str("method", req.Method).Str("path", path).
			Str("request_id", req.Header.Get("X-Request-ID")).Msg("request failed")
		return nil, &NetworkError{Method: req.Method, Path: path, Err: err}
	}
	c.metrics.observe(req.Method, strconv.Itoa(resp.StatusCode), elapsed)
	c.log.Debug().Str("method", req.Method).Str("path", path).Int("status", resp.StatusCode).
		Dur("duration", elapsed).Str("request_id", req.Header.Get("X-Request-ID")).Msg("request")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	serr := newStatusError(req.Method, path, resp.StatusCode, body)
	if resp.StatusCode == http.StatusUnauthorized && hook401 && c.on401 != nil {
		c.metrics.forcedLogout()
		c.on401()
	}
	return nil, serr
}

func decode(resp *http.Response, out any) error {
	defer resp.Body.Close()
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func pathPrefix(base string) string {
	u, err := url.Parse(base)
	if err != nil {
		return ""
	}
	return u.Path
}
