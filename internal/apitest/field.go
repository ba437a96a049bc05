package apitest

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Makepad-fr/nexo/internal/model"
)

func (s *Server) complete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "expected multipart/form-data")
	}
	req, _ := c.Get("apitest.request").(*Request)
	fields := map[string]string{}
	for k, v := range form.Value {
		if len(v) > 0 {
			fields[k] = v[0]
		}
	}
	files := map[string]Upload{}
	for k, fhs := range form.File {
		if len(fhs) == 0 {
			continue
		}
		fh := fhs[0]
		f, err := fh.Open()
		if err != nil {
			return err
		}
		n, _ := io.Copy(io.Discard, f)
		f.Close()
		files[k] = Upload{Filename: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Size: n}
	}
	if req != nil {
		s.mu.Lock()
		req.Fields = fields
		req.Files = files
		s.mu.Unlock()
	}

	result := strings.TrimSpace(fields["result_text"])
	if result == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, []map[string]any{
			{"loc": []any{"body", "result_text"}, "msg": "field required"},
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.data["installations"][id]
	if !ok {
		return notFound("installations", id)
	}
	rec["status"] = model.JobCompleted
	rec["result_text"] = result
	rec["completed_date"] = time.Now().UTC().Format(time.RFC3339)
	if up, ok := files["photo1"]; ok {
		rec["photo_url_1"] = fmt.Sprintf("/uploads/installations/%d/%s", id, up.Filename)
	}
	if up, ok := files["photo2"]; ok {
		rec["photo_url_2"] = fmt.Sprintf("/uploads/installations/%d/%s", id, up.Filename)
	}
	return c.JSON(http.StatusOK, rec)
}

func (s *Server) history(c echo.Context) error {
	clientID, err := pathID(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	all := s.sorted("installations")
	s.mu.Unlock()
	out := make([]map[string]any, 0)
	for _, r := range all {
		if toInt64(r["client_id"]) == clientID {
			out = append(out, r)
		}
	}
	return c.JSON(http.StatusOK, out)
}
