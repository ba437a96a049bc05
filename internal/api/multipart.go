package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
)

// File is one attachment of a multipart request.
type File struct {
	Field string
	Path  string
}

var imageTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"heic": "image/heic",
	"bmp":  "image/bmp",
}

// ImageContentType infers a part's type from the file extension, defaulting
// to image/jpeg.
func ImageContentType(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if t, ok := imageTypes[ext]; ok {
		return t
	}
	return "image/jpeg"
}

// PutMultipart sends fields and files as multipart/form-data.
func (c *Client) PutMultipart(ctx context.Context, path string, fields map[string]string, files []File, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("multipart field %s: %w", k, err)
		}
	}
	for _, f := range files {
		if err := writeFile(mw, f); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("multipart close: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPut, path, nil, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	c.authorize(req)
	resp, err := c.send(req, true)
	if err != nil {
		return err
	}
	return decode(resp, out)
}

func writeFile(mw *multipart.Writer, f File) error {
	src, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Path, err)
	}
	defer src.Close()

	name := filepath.Base(f.Path)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, name))
	h.Set("Content-Type", ImageContentType(name))
	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("multipart part %s: %w", f.Field, err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("copy %s: %w", f.Path, err)
	}
	return nil
}
