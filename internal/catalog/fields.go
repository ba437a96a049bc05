package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Makepad-fr/nexo/internal/model"
	"github.com/Makepad-fr/nexo/internal/ui"
)

type Kind int

const (
	Text Kind = iota
	Number
	Select
	Bool
	Lines
	Secret
)

// Field describes one input of an Editor.
type Field struct {
	Label   string
	Kind    Kind
	Options []string
	Help    string
}

// spec binds a Field to a record type.
type spec[T any] struct {
	Field
	get func(T) string
	set func(*T, string) error
}

func text[T any](label string, get func(T) string, set func(*T, string)) spec[T] {
	return spec[T]{
		Field: Field{Label: label, Kind: Text},
		get:   get,
		set:   func(v *T, s string) error { set(v, strings.TrimSpace(s)); return nil },
	}
}

func secret[T any](label string, set func(*T, string)) spec[T] {
	return spec[T]{
		Field: Field{Label: label, Kind: Secret, Help: "leave blank to keep"},
		get:   func(T) string { return "" },
		set:   func(v *T, s string) error { set(v, s); return nil },
	}
}

func choice[T any](label string, opts []string, get func(T) string, set func(*T, string)) spec[T] {
	return spec[T]{
		Field: Field{Label: label, Kind: Select, Options: opts},
		get:   get,
		set: func(v *T, s string) error {
			s = strings.TrimSpace(s)
			if s == "" {
				set(v, s)
				return nil
			}
			for _, o := range opts {
				if o == s {
					set(v, s)
					return nil
				}
			}
			return fmt.Errorf("%s must be one of: %s", label, strings.Join(opts, ", "))
		},
	}
}

func ref[T any](label string, get func(T) int64, set func(*T, int64)) spec[T] {
	return spec[T]{
		Field: Field{Label: label, Kind: Number},
		get: func(v T) string {
			if n := get(v); n != 0 {
				return strconv.FormatInt(n, 10)
			}
			return ""
		},
		set: func(v *T, s string) error {
			s = strings.TrimSpace(s)
			if s == "" {
				set(v, 0)
				return nil
			}
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return fmt.Errorf("%s must be a number", label)
			}
			set(v, n)
			return nil
		},
	}
}

func optID[T any](label string, get func(T) *int64, set func(*T, *int64)) spec[T] {
	return spec[T]{
		Field: Field{Label: label, Kind: Number, Help: "optional"},
		get: func(v T) string {
			if p := get(v); p != nil {
				return strconv.FormatInt(*p, 10)
			}
			return ""
		},
		set: func(v *T, s string) error {
			s = strings.TrimSpace(s)
			if s == "" {
				set(v, nil)
				return nil
			}
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return fmt.Errorf("%s must be a number", label)
			}
			set(v, &n)
			return nil
		},
	}
}

func integer[T any](label string, get func(T) int, set func(*T, int)) spec[T] {
	return spec[T]{
		Field: Field{Label: label, Kind: Number},
		get:   func(v T) string { return strconv.Itoa(get(v)) },
		set: func(v *T, s string) error {
			s = strings.TrimSpace(s)
			if s == "" {
				set(v, 0)
				return nil
			}
			n, err := strconv.Atoi(s)
			if err != nil {
				return fmt.Errorf("%s must be a number", label)
			}
			set(v, n)
			return nil
		},
	}
}

func price[T any](label string, get func(T) float64, set func(*T, float64)) spec[T] {
	return spec[T]{
		Field: Field{Label: label, Kind: Number},
		get:   func(v T) string { return strconv.FormatFloat(get(v), 'f', -1, 64) },
		set: func(v *T, s string) error {
			s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
			if s == "" {
				set(v, 0)
				return nil
			}
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return fmt.Errorf("%s must be a number", label)
			}
			set(v, f)
			return nil
		},
	}
}

func yesno[T any](label string, get func(T) bool, set func(*T, bool)) spec[T] {
	return spec[T]{
		Field: Field{Label: label, Kind: Bool, Options: []string{"yes", "no"}},
		get: func(v T) string {
			if get(v) {
				return "yes"
			}
			return "no"
		},
		set: func(v *T, s string) error {
			switch strings.ToLower(strings.TrimSpace(s)) {
			case "yes", "y", "true", "1":
				set(v, true)
			case "no", "n", "false", "0", "":
				set(v, false)
			default:
				return fmt.Errorf("%s must be yes or no", label)
			}
			return nil
		},
	}
}

func lines[T any](label string, get func(T) []model.LineItem, set func(*T, []model.LineItem)) spec[T] {
	return spec[T]{
		Field: Field{Label: label, Kind: Lines, Help: "item_id x qty [@ price] [# note]; ..."},
		get:   func(v T) string { return FormatLines(get(v)) },
		set: func(v *T, s string) error {
			ls, err := ParseLines(s)
			if err != nil {
				return fmt.Errorf("%s: %w", label, err)
			}
			set(v, ls)
			return nil
		},
	}
}

var noteEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`)

// FormatLines renders line items as "3 x 2 @ 15000 # 2F; 4 x 1 @ 9000".
// A ';' inside a note is written as "\;".
func FormatLines(ls []model.LineItem) string {
	parts := make([]string, 0, len(ls))
	for _, l := range ls {
		p := fmt.Sprintf("%d x %d @ %s", l.ItemID, l.Quantity, strconv.FormatFloat(l.UnitPrice, 'f', -1, 64))
		if n := strings.TrimSpace(l.Notes); n != "" {
			p += " # " + noteEscaper.Replace(n)
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, "; ")
}

// splitLines splits on unescaped ';' and unescapes each part.
func splitLines(s string) []string {
	var (
		out []string
		cur strings.Builder
	)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\' && i+1 < len(s):
			i++
			cur.WriteByte(s[i])
		case c == ';':
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	return append(out, cur.String())
}

// ParseLines reads the FormatLines syntax. A missing price stays 0 and is
// filled from the item catalogue before submit.
func ParseLines(s string) ([]model.LineItem, error) {
	out := []model.LineItem{}
	for _, part := range splitLines(s) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		var l model.LineItem
		body, note, _ := strings.Cut(part, "#")
		l.Notes = strings.TrimSpace(note)
		head, priceStr, hasPrice := strings.Cut(body, "@")
		idStr, qtyStr, hasQty := strings.Cut(head, "x")
		var err error
		if l.ItemID, err = strconv.ParseInt(strings.TrimSpace(idStr), 10, 64); err != nil {
			return nil, fmt.Errorf("bad item id in %q", part)
		}
		l.Quantity = 1
		if hasQty {
			if l.Quantity, err = strconv.Atoi(strings.TrimSpace(qtyStr)); err != nil {
				return nil, fmt.Errorf("bad quantity in %q", part)
			}
		}
		if hasPrice {
			p := strings.ReplaceAll(strings.TrimSpace(priceStr), ",", "")
			if l.UnitPrice, err = strconv.ParseFloat(p, 64); err != nil {
				return nil, fmt.Errorf("bad price in %q", part)
			}
		}
		out = append(out, l)
	}
	return out, nil
}

// LinesTotal is the advisory total shown under a line-item input. Lines
// without a price count as zero until the catalogue price is filled in.
func LinesTotal(input string) string {
	ls, err := ParseLines(input)
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("%d lines, total %s", len(ls), ui.Money(model.LineTotal(ls)))
}
