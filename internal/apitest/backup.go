package apitest

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Makepad-fr/nexo/internal/model"
)

func (s *Server) backupCreate(c echo.Context) error {
	now := time.Now().UTC()
	s.mu.Lock()
	name := fmt.Sprintf("crm_backup_%s_%d.sql", now.Format("20060102_150405"), len(s.backups)+1)
	s.backups[name] = []byte("-- dump " + now.Format(time.RFC3339) + "\n")
	s.mu.Unlock()
	return c.JSON(http.StatusOK, model.BackupResult{
		Success:    true,
		Message:    "backup created",
		BackupFile: name,
		Timestamp:  now.Format(time.RFC3339),
	})
}

func (s *Server) backupList(c echo.Context) error {
	s.mu.Lock()
	list := make([]model.Backup, 0, len(s.backups))
	for name, b := range s.backups {
		list = append(list, model.Backup{Filename: name, Size: int64(len(b))})
	}
	s.mu.Unlock()
	sort.Slice(list, func(i, j int) bool { return list[i].Filename > list[j].Filename })
	now := time.Now().UTC().Format(time.RFC3339)
	for i := range list {
		list[i].CreatedAt, list[i].ModifiedAt = now, now
	}
	return c.JSON(http.StatusOK, map[string]any{"backups": list})
}

func (s *Server) backupDownload(c echo.Context) error {
	name := c.Param("filename")
	s.mu.Lock()
	b, ok := s.backups[name]
	s.mu.Unlock()
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "backup not found")
	}
	return c.Blob(http.StatusOK, echo.MIMEOctetStream, b)
}

func (s *Server) backupDelete(c echo.Context) error {
	name := c.Param("filename")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.backups[name]; !ok {
		return echo.NewHTTPError(http.StatusNotFound, "backup not found")
	}
	delete(s.backups, name)
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": "backup deleted"})
}

// SeedBackup stores a backup file directly.
func (s *Server) SeedBackup(name string, data []byte) {
	s.mu.Lock()
	s.backups[name] = data
	s.mu.Unlock()
}
