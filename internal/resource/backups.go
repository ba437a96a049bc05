package resource

import (
	"context"
	"io"
	"net/url"

	"github.com/Makepad-fr/nexo/internal/model"
)

// Backups is the admin-only /backup endpoint family.
type Backups struct {
	api API
}

// Create triggers a server-side dump. The backend exposes it as a GET.
func (b *Backups) Create(ctx context.Context) (model.BackupResult, error) {
	var out model.BackupResult
	err := b.api.Get(ctx, "/backup/create", nil, &out)
	return out, err
}

func (b *Backups) List(ctx context.Context) ([]model.Backup, error) {
	var out struct {
		Backups []model.Backup `json:"backups"`
	}
	if err := b.api.Get(ctx, "/backup/list", nil, &out); err != nil {
		return nil, err
	}
	if out.Backups == nil {
		out.Backups = []model.Backup{}
	}
	return out.Backups, nil
}

func (b *Backups) Download(ctx context.Context, filename string, w io.Writer) (int64, error) {
	return b.api.Download(ctx, "/backup/download/"+url.PathEscape(filename), w)
}

func (b *Backups) Delete(ctx context.Context, filename string) error {
	return b.api.Delete(ctx, "/backup/"+url.PathEscape(filename), nil)
}
