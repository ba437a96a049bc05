package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

type collection struct {
	s    *Server
	name string
}

func (h *collection) list(c echo.Context) error {
	q := c.QueryParams()
	search := strings.ToLower(q.Get("search"))
	status := q.Get("status")
	clientID, _ := strconv.ParseInt(q.Get("client_id"), 10, 64)
	skip, _ := strconv.Atoi(q.Get("skip"))
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	h.s.mu.Lock()
	all := h.s.sorted(h.name)
	h.s.mu.Unlock()

	out := make([]map[string]any, 0, len(all))
	for _, r := range all {
		if search != "" && !matches(r, search) {
			continue
		}
		if status != "" && r["status"] != status {
			continue
		}
		if clientID > 0 && toInt64(r["client_id"]) != clientID {
			continue
		}
		out = append(out, r)
	}
	if skip > len(out) {
		skip = len(out)
	}
	out = out[skip:]
	if limit < len(out) {
		out = out[:limit]
	}
	return c.JSON(http.StatusOK, out)
}

func matches(r map[string]any, term string) bool {
	for _, v := range r {
		if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}
	return false
}

func (h *collection) get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	h.s.mu.Lock()
	r, ok := h.s.data[h.name][id]
	h.s.mu.Unlock()
	if !ok {
		return notFound(h.name, id)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *collection) create(c echo.Context) error {
	body, err := decodeBody(c)
	if err != nil {
		return err
	}
	delete(body, "id")
	h.s.mu.Lock()
	h.s.insert(h.name, body)
	h.s.mu.Unlock()
	return c.JSON(http.StatusOK, body)
}

func (h *collection) update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	body, err := decodeBody(c)
	if err != nil {
		return err
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	cur, ok := h.s.data[h.name][id]
	if !ok {
		return notFound(h.name, id)
	}
	for k, v := range body {
		if k == "id" {
			continue
		}
		cur[k] = v
	}
	return c.JSON(http.StatusOK, cur)
}

func (h *collection) remove(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	if _, ok := h.s.data[h.name][id]; !ok {
		return notFound(h.name, id)
	}
	delete(h.s.data[h.name], id)
	return c.JSON(http.StatusOK, map[string]any{"message": fmt.Sprintf("%s %d deleted", h.name, id)})
}

func decodeBody(c echo.Context) (map[string]any, error) {
	var body map[string]any
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		return nil, echo.NewHTTPError(http.StatusUnprocessableEntity, []map[string]any{
			{"loc": []any{"body"}, "msg": "invalid JSON: " + err.Error()},
		})
	}
	if body == nil {
		body = map[string]any{}
	}
	return body, nil
}
