// Package apitest runs an in-memory stand-in for the CRM backend so client
// code can be exercised end to end without the real service.
package apitest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/Makepad-fr/nexo/internal/model"
)

// Resources are the uniform CRUD collections the backend exposes.
var Resources = []string{
	"clients", "items", "consultations", "quotations", "contracts",
	"installations", "inventory", "employees", "admin/accounts",
}

// Request is what the server saw for one call.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Fields   map[string]string
	Files    map[string]Upload
}

type Upload struct {
	Filename    string
	ContentType string
	Size        int64
}

type user struct {
	model.User
	hash []byte
}

type failure struct {
	method, path string
	status       int
	body         string
}

type Server struct {
	Echo *echo.Echo
	URL  string // base URL including /api

	http   *httptest.Server
	secret []byte

	mu       sync.Mutex
	users    map[string]*user
	data     map[string]map[int64]map[string]any
	nextID   map[string]int64
	backups  map[string][]byte
	requests []*Request
	fails    []failure
	revoked  map[string]bool
}

// New starts the fake backend with three users: admin/admin123 (super
// admin), tech/tech123 (technician) and sales/sales123.
func New() *Server {
	s := &Server{
		secret:  []byte("apitest-secret"),
		users:   make(map[string]*user),
		data:    make(map[string]map[int64]map[string]any),
		nextID:  make(map[string]int64),
		backups: make(map[string][]byte),
		revoked: make(map[string]bool),
	}
	for _, r := range Resources {
		s.data[r] = make(map[int64]map[string]any)
	}
	s.addUser(model.User{ID: 1, Username: "admin", FullName: "Admin", Role: model.RoleSuperAdmin, IsActive: true, IsAdmin: true, IsSuperAdmin: true}, "admin123")
	s.addUser(model.User{ID: 2, Username: "tech", FullName: "Field Tech", Role: model.RoleTechnician, IsActive: true}, "tech123")
	s.addUser(model.User{ID: 3, Username: "sales", FullName: "Sales Rep", Role: model.RoleSales, IsActive: true}, "sales123")

	s.Echo = s.router()
	s.http = httptest.NewServer(s.Echo)
	s.URL = s.http.URL + "/api"
	return s
}

func (s *Server) Close() { s.http.Close() }

func (s *Server) addUser(u model.User, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	s.users[u.Username] = &user{User: u, hash: hash}
}

func (s *Server) router() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler
	e.Use(echomiddleware.Recover())
	e.Use(s.record)
	e.Use(s.injectFailure)

	api := e.Group("/api")
	api.POST("/auth/login", s.login)

	authed := api.Group("", s.auth)
	authed.GET("/auth/me", s.me)

	for _, r := range Resources {
		g := authed.Group("/" + r)
		if r == "admin/accounts" {
			g.Use(requireFlag(func(u model.User) bool { return u.IsSuperAdmin }))
		}
		h := &collection{s: s, name: r}
		g.GET("", h.list)
		g.POST("", h.create)
		g.GET("/:id", h.get)
		g.PUT("/:id", h.update)
		g.DELETE("/:id", h.remove)
	}
	authed.PUT("/installations/:id/complete", s.complete)
	authed.GET("/installations/client/:id/history", s.history)

	bk := authed.Group("/backup", requireFlag(func(u model.User) bool { return u.IsAdmin }))
	bk.GET("/create", s.backupCreate)
	bk.GET("/list", s.backupList)
	bk.GET("/download/:filename", s.backupDownload)
	bk.DELETE("/:filename", s.backupDelete)
	return e
}

// errorHandler renders every error the way the real backend does: {"detail": ...}.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	var detail any = "internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		detail = he.Message
	}
	_ = c.JSON(code, map[string]any{"detail": detail})
}

func (s *Server) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		r := c.Request()
		req := &Request{Method: r.Method, Path: r.URL.Path, RawQuery: r.URL.RawQuery, Header: r.Header.Clone()}
		s.mu.Lock()
		s.requests = append(s.requests, req)
		s.mu.Unlock()
		c.Set("apitest.request", req)
		return next(c)
	}
}

func (s *Server) injectFailure(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		r := c.Request()
		s.mu.Lock()
		for i, f := range s.fails {
			if f.method == r.Method && f.path == r.URL.Path {
				s.fails = append(s.fails[:i], s.fails[i+1:]...)
				s.mu.Unlock()
				return c.Blob(f.status, echo.MIMEApplicationJSON, []byte(f.body))
			}
		}
		s.mu.Unlock()
		return next(c)
	}
}

func (s *Server) auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := c.Request().Header.Get("Authorization")
		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
		}
		s.mu.Lock()
		revoked := s.revoked[parts[1]]
		s.mu.Unlock()
		if revoked {
			return echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
		}
		claims := jwt.MapClaims{}
		tkn, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return s.secret, nil
		})
		if err != nil || !tkn.Valid {
			return echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
		}
		sub, _ := claims.GetSubject()
		s.mu.Lock()
		u, ok := s.users[sub]
		s.mu.Unlock()
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
		}
		c.Set("user", u.User)
		return next(c)
	}
}

func requireFlag(ok func(model.User) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, _ := c.Get("user").(model.User)
			if !ok(u) {
				return echo.NewHTTPError(http.StatusForbidden, "Not enough permissions")
			}
			return next(c)
		}
	}
}

func (s *Server) login(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")
	s.mu.Lock()
	u, ok := s.users[username]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(u.hash, []byte(password)) != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Incorrect username or password")
	}
	tok, err := s.Token(username, time.Hour)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"access_token": tok,
		"token_type":   "bearer",
		"user":         u.User,
	})
}

func (s *Server) me(c echo.Context) error {
	return c.JSON(http.StatusOK, c.Get("user"))
}

// Token mints a token for username valid for ttl.
func (s *Server) Token(username string, ttl time.Duration) (string, error) {
	now := time.Now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": username,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}).SignedString(s.secret)
}

// Revoke makes every later request carrying tok fail with 401.
func (s *Server) Revoke(tok string) {
	s.mu.Lock()
	s.revoked[tok] = true
	s.mu.Unlock()
}

// FailNext makes the next method+path request answer status with body.
func (s *Server) FailNext(method, path string, status int, body string) {
	s.mu.Lock()
	s.fails = append(s.fails, failure{method: method, path: path, status: status, body: body})
	s.mu.Unlock()
}

// Requests returns a copy of everything received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	for i, r := range s.requests {
		out[i] = *r
	}
	return out
}

// Count reports how many requests matched method and path.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Seed inserts records (any JSON-encodable value) and returns their ids.
func (s *Server) Seed(resource string, records ...any) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(records))
	for _, r := range records {
		b, err := json.Marshal(r)
		if err != nil {
			panic(err)
		}
		var m map[string]any
		if err := json.Unmarshal(b, &m); err != nil {
			panic(err)
		}
		ids = append(ids, s.insert(resource, m))
	}
	return ids
}

// Record returns a stored record, or nil.
func (s *Server) Record(resource string, id int64) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[resource][id]
}

// insert assigns an id unless the record already carries one. Callers hold mu.
func (s *Server) insert(resource string, m map[string]any) int64 {
	id := toInt64(m["id"])
	if id <= 0 {
		s.nextID[resource]++
		id = s.nextID[resource]
	} else if id > s.nextID[resource] {
		s.nextID[resource] = id
	}
	m["id"] = id
	if _, ok := m["created_at"]; !ok {
		m["created_at"] = time.Now().UTC().Format(time.RFC3339)
	}
	s.data[resource][id] = m
	return id
}

func (s *Server) sorted(resource string) []map[string]any {
	recs := make([]map[string]any, 0, len(s.data[resource]))
	for _, r := range s.data[resource] {
		recs = append(recs, r)
	}
	sort.Slice(recs, func(i, j int) bool { return toInt64(recs[i]["id"]) < toInt64(recs[j]["id"]) })
	return recs
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	}
	return 0
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusUnprocessableEntity, []map[string]any{
			{"loc": []any{"path", "id"}, "msg": "value is not a valid integer"},
		})
	}
	return id, nil
}

func notFound(resource string, id int64) error {
	return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("%s %d not found", resource, id))
}
