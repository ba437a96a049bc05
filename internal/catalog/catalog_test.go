package catalog

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/Makepad-fr/nexo/internal/api"
	"github.com/Makepad-fr/nexo/internal/apitest"
	"github.com/Makepad-fr/nexo/internal/model"
	"github.com/Makepad-fr/nexo/internal/resource"
	"github.com/Makepad-fr/nexo/internal/session"
	"github.com/Makepad-fr/nexo/internal/validate"
	"github.com/Makepad-fr/nexo/internal/view"
)

func TestRegistryCoversResources(t *testing.T) {
	for _, name := range apitest.Resources {
		r, ok := Lookup(name)
		if !ok {
			t.Fatalf("%s not registered", name)
		}
		if r.NewList == nil || r.NewEditor == nil {
			t.Fatalf("%s incomplete", name)
		}
	}
}

func TestParseLines(t *testing.T) {
	ls, err := ParseLines("3 x 2 @ 15,000; 4; 5x1")
	if err != nil {
		t.Fatalf("ParseLines: %v", err)
	}
	want := []model.LineItem{{ItemID: 3, Quantity: 2, UnitPrice: 15000}, {ItemID: 4, Quantity: 1}, {ItemID: 5, Quantity: 1}}
	if len(ls) != len(want) {
		t.Fatalf("got %+v", ls)
	}
	for i := range want {
		if ls[i] != want[i] {
			t.Fatalf("line %d = %+v, want %+v", i, ls[i], want[i])
		}
	}
	if _, err := ParseLines("x x 2"); err == nil {
		t.Fatalf("expected error")
	}
	if got := FormatLines(want[:1]); got != "3 x 2 @ 15000" {
		t.Fatalf("FormatLines = %q", got)
	}
	if got := LinesTotal("3 x 2 @ 15000; 4 x 1 @ 500"); got != "2 lines, total 30,500" {
		t.Fatalf("LinesTotal = %q", got)
	}
}

func TestLineNotesRoundTrip(t *testing.T) {
	in := []model.LineItem{
		{ItemID: 3, Quantity: 2, UnitPrice: 15000, Notes: "install on 2F; call first"},
		{ItemID: 4, Quantity: 1, UnitPrice: 500},
	}
	text := FormatLines(in)
	if text != `3 x 2 @ 15000 # install on 2F\; call first; 4 x 1 @ 500` {
		t.Fatalf("FormatLines = %q", text)
	}
	out, err := ParseLines(text)
	if err != nil {
		t.Fatalf("ParseLines: %v", err)
	}
	if len(out) != 2 || out[0] != in[0] || out[1] != in[1] {
		t.Fatalf("round trip = %+v", out)
	}
}

func login(t *testing.T) (*apitest.Server, *resource.Set) {
	t.Helper()
	srv := apitest.New()
	t.Cleanup(srv.Close)
	var tok string
	set := resource.NewSet(api.New(api.Options{BaseURL: srv.URL, Tokens: api.TokenFunc(func() string { return tok })}))
	s, err := set.Auth.Login(context.Background(), session.Credentials{Username: "admin", Password: "admin123"})
	if err != nil {
		t.Fatal(err)
	}
	tok = s.Token
	return srv, set
}

func TestQuotationEditorFillsPrices(t *testing.T) {
	srv, set := login(t)
	items := srv.Seed("items", model.Item{Code: "F", Name: "Filter", UnitPrice: 15000})
	r, _ := Lookup("quotations")
	ed := r.NewEditor(set)
	vals, err := ed.Open(context.Background(), "new")
	if err != nil {
		t.Fatal(err)
	}
	if !ed.IsNew() {
		t.Fatalf("want new")
	}
	// Number, Client ID, Consultation ID, Status, Valid until, Items, Notes
	vals[0], vals[1] = "Q-1", "7"
	vals[5] = strconv.FormatInt(items[0], 10) + " x 2"
	if err := ed.Submit(context.Background(), vals); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	rec := srv.Record("quotations", 1)
	lines, _ := rec["items"].([]any)
	if len(lines) != 1 || lines[0].(map[string]any)["unit_price"].(float64) != 15000 {
		t.Fatalf("stored = %v", rec)
	}
	if rec["consultation_id"] != nil {
		t.Fatalf("consultation_id = %v", rec["consultation_id"])
	}
}

func TestQuotationEditKeepsLineNotes(t *testing.T) {
	srv, set := login(t)
	srv.Seed("quotations", model.Quotation{
		QuotationNumber: "Q-1", ClientID: 7, Status: model.QuotationDraft,
		Items: []model.LineItem{{ItemID: 3, Quantity: 2, UnitPrice: 15000, Notes: "install on 2F"}},
	})
	r, _ := Lookup("quotations")
	ed := r.NewEditor(set)
	vals, err := ed.Open(context.Background(), "1")
	if err != nil {
		t.Fatal(err)
	}
	vals[3] = model.QuotationSubmitted
	if err := ed.Submit(context.Background(), vals); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	rec := srv.Record("quotations", 1)
	lines, _ := rec["items"].([]any)
	if len(lines) != 1 {
		t.Fatalf("stored = %v", rec)
	}
	if got := lines[0].(map[string]any)["notes"]; got != "install on 2F" {
		t.Fatalf("notes = %v", got)
	}
	if rec["status"] != model.QuotationSubmitted {
		t.Fatalf("status = %v", rec["status"])
	}
}

func TestEditorParseErrors(t *testing.T) {
	srv, set := login(t)
	r, _ := Lookup("inventory")
	ed := r.NewEditor(set)
	vals, _ := ed.Open(context.Background(), "new")
	vals[0], vals[1] = "1", "many"
	before := len(srv.Requests())
	err := ed.Submit(context.Background(), vals)
	if !errors.Is(err, validate.ErrInvalid) || api.Message(err) != "Quantity must be a number" {
		t.Fatalf("err = %v", err)
	}
	if len(srv.Requests()) != before {
		t.Fatalf("parse failure reached server")
	}
}

func TestListerSnapshotAndDelete(t *testing.T) {
	srv, set := login(t)
	srv.Seed("clients",
		model.Client{ID: 4, Name: "Beta", ClientType: model.ClientIndividual, PersonalName: "B"},
		model.Client{ID: 5, Name: "Acme", ClientType: model.ClientCompany, CompanyName: "Acme"},
	)
	r, _ := Lookup("clients")
	l := r.NewList(context.Background(), set, nil, 0)
	defer l.Close()
	l.Load(resource.Filter{Search: "Acme"})
	l.Wait()
	snap := l.Snapshot()
	if len(snap.IDs) != 1 || snap.IDs[0] != 5 || snap.Rows[0][1] != "Acme" {
		t.Fatalf("snapshot = %+v", snap)
	}
	var asked string
	err := l.Delete(context.Background(), 5, view.ConfirmFunc(func(p string) bool { asked = p; return true }))
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	l.Wait()
	if asked != "Delete client #5?" {
		t.Fatalf("prompt = %q", asked)
	}
	if snap := l.Snapshot(); !snap.Empty || len(snap.IDs) != 0 {
		t.Fatalf("after delete = %+v", snap)
	}
}

func TestEmployeeRoleFilterIsLocal(t *testing.T) {
	srv, set := login(t)
	srv.Seed("employees",
		model.Account{ID: 11, Username: "kim", Role: model.RoleSales, IsActive: true},
		model.Account{ID: 12, Username: "lee", Role: model.RoleTechnician, IsActive: true},
	)
	r, _ := Lookup("employees")
	l := r.NewList(context.Background(), set, nil, 0)
	defer l.Close()
	l.Load(resource.Filter{Status: model.RoleTechnician})
	l.Wait()
	snap := l.Snapshot()
	if len(snap.IDs) != 1 || snap.IDs[0] != 12 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.Filter.Status != model.RoleTechnician {
		t.Fatalf("filter = %+v", snap.Filter)
	}
	reqs := srv.Requests()
	last := reqs[len(reqs)-1]
	if last.Path != "/api/employees" || strings.Contains(last.RawQuery, "status") {
		t.Fatalf("request = %s?%s", last.Path, last.RawQuery)
	}
}
