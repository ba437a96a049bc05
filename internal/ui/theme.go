package ui

import (
	"strings"

	"github.com/Makepad-fr/nexo/internal/model"
)

// Theme bundles palette + symbols + box borders.
// All UI helpers pull from `current`.
type Theme struct {
	Title, Muted, Accent, Success, Error, Pending string
	CornerTL, CornerTR, CornerBL, CornerBR        string
	H, V                                          string
	SymDone, SymPending, SymActive, SymCancelled  string
}

var current Theme

func init() { SetTheme("classic") }

func SetTheme(name string) {
	switch strings.ToLower(name) {
	case "neon":
		disableColor = false
		current = Theme{
			Title: "\033[95m", // bright magenta
			Muted: fgGray, Accent: "\033[96m",
			Success: fgGreen, Error: fgRed, Pending: "\033[93m",
			CornerTL: "╭", CornerTR: "╮", CornerBL: "╰", CornerBR: "╯",
			H: "─", V: "│",
			SymDone: "✔", SymPending: "•", SymActive: "▶", SymCancelled: "✖",
		}
	case "mono":
		disableColor = true
		current = Theme{
			CornerTL: "+", CornerTR: "+", CornerBL: "+", CornerBR: "+",
			H: "-", V: "|",
			SymDone: "x", SymPending: "-", SymActive: ">", SymCancelled: "/",
		}
	default: // classic
		disableColor = false
		current = Theme{
			Title: bold, Muted: fgGray, Accent: fgBlue,
			Success: fgGreen, Error: fgRed, Pending: fgYellow,
			CornerTL: "┌", CornerTR: "┐", CornerBL: "└", CornerBR: "┘",
			H: "─", V: "│",
			SymDone: "✔", SymPending: "•", SymActive: "▶", SymCancelled: "✖",
		}
	}
}

func Current() Theme { return current }

// Status renders a job or document status with its mark and colour.
func Status(s string) string {
	t := current
	switch s {
	case model.JobCompleted, model.ContractSigned, model.QuotationApproved:
		return C(t.Success, t.SymDone+" "+s)
	case model.JobInProgress:
		return C(t.Accent, t.SymActive+" "+s)
	case model.JobCancelled, model.QuotationRejected, model.QuotationExpired:
		return C(t.Error, t.SymCancelled+" "+s)
	case "":
		return ""
	}
	return C(t.Pending, t.SymPending+" "+s)
}
