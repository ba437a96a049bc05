package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Makepad-fr/nexo/internal/validate"
)

// DefaultMessage is shown when an error carries nothing more useful.
const DefaultMessage = "save failed"

// Message turns any error from a submit into the text shown to the user.
func Message(err error) string { return MessageOr(err, DefaultMessage) }

// MessageOr is Message with a caller-chosen fallback.
//
// Order: a string detail verbatim; a list detail as "loc.path: msg" lines;
// any other detail as JSON text; no response at all as the error's own text;
// otherwise fallback.
func MessageOr(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var verr *validate.Error
	if errors.As(err, &verr) {
		return verr.Error()
	}
	var serr *StatusError
	if errors.As(err, &serr) {
		if len(serr.Detail) == 0 {
			if len(serr.Body) == 0 {
				return serr.Error()
			}
			return fallback
		}
		return detailMessage(serr.Detail, fallback)
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

type detailEntry struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

func detailMessage(raw json.RawMessage, fallback string) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		if s == "" {
			return fallback
		}
		return s
	}
	var entries []detailEntry
	if json.Unmarshal(raw, &entries) == nil {
		lines := make([]string, 0, len(entries))
		for _, e := range entries {
			if len(e.Loc) == 0 {
				lines = append(lines, e.Msg)
				continue
			}
			parts := make([]string, len(e.Loc))
			for i, p := range e.Loc {
				parts[i] = fmt.Sprint(p)
			}
			lines = append(lines, strings.Join(parts, ".")+": "+e.Msg)
		}
		if len(lines) == 0 {
			return fallback
		}
		return strings.Join(lines, "\n")
	}
	return string(raw)
}
