package resource

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Makepad-fr/nexo/internal/api"
	"github.com/Makepad-fr/nexo/internal/model"
	"github.com/Makepad-fr/nexo/internal/validate"
)

// MaxPhotos is how many attachments a completion may carry.
const MaxPhotos = 2

// Completion is what a technician submits when closing a job.
type Completion struct {
	ResultText string
	Photos     []string // local file paths, sent as photo1, photo2
}

// Validate checks the completion before any request goes out.
func (c Completion) Validate() error {
	var fields []string
	if strings.TrimSpace(c.ResultText) == "" {
		fields = append(fields, "result_text is required")
	}
	if len(c.Photos) > MaxPhotos {
		fields = append(fields, fmt.Sprintf("at most %d photos can be attached", MaxPhotos))
	}
	if len(fields) > 0 {
		return &validate.Error{Fields: fields}
	}
	return nil
}

type Installations struct {
	*Repo[model.Installation]
}

// Complete PUTs the multipart completion to /installations/{id}/complete.
func (r *Installations) Complete(ctx context.Context, id int64, c Completion) (model.Installation, error) {
	if err := c.Validate(); err != nil {
		return model.Installation{}, err
	}
	files := make([]api.File, 0, len(c.Photos))
	for i, p := range c.Photos {
		files = append(files, api.File{Field: "photo" + strconv.Itoa(i+1), Path: p})
	}
	var out model.Installation
	err := r.api.PutMultipart(ctx, r.item(id)+"/complete",
		map[string]string{"result_text": strings.TrimSpace(c.ResultText)}, files, &out)
	return out, err
}

// ClientHistory lists every job ever done for a client.
func (r *Installations) ClientHistory(ctx context.Context, clientID int64) ([]model.Installation, error) {
	var out []model.Installation
	path := r.path + "/client/" + strconv.FormatInt(clientID, 10) + "/history"
	if err := r.api.Get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AssignedTo keeps the jobs a technician owns. Other roles see every job.
func AssignedTo(jobs []model.Installation, u model.User) []model.Installation {
	if u.Role != model.RoleTechnician {
		return jobs
	}
	out := make([]model.Installation, 0, len(jobs))
	for _, j := range jobs {
		if j.TechnicianID == u.ID {
			out = append(out, j)
		}
	}
	return out
}
