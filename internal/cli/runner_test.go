package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sethvargo/go-envconfig"

	"github.com/Makepad-fr/nexo/internal/apitest"
	"github.com/Makepad-fr/nexo/internal/model"
	"github.com/Makepad-fr/nexo/internal/ui"
)

type harness struct {
	t        *testing.T
	srv      *apitest.Server
	home     string
	out, err bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{t: t, srv: apitest.New(), home: t.TempDir()}
	oldOut, oldErr := ui.Out, ui.Err
	ui.Out, ui.Err = &h.out, &h.err
	t.Cleanup(func() {
		ui.Out, ui.Err = oldOut, oldErr
		h.srv.Close()
	})
	return h
}

func (h *harness) run(prog Program, in string, args ...string) int {
	h.t.Helper()
	h.out.Reset()
	h.err.Reset()
	env := envconfig.MapLookuper(map[string]string{
		"NEXO_HOME":    h.home,
		"NEXO_API_URL": h.srv.URL,
	})
	return Run(context.Background(), prog, args, Options{
		Env:       env,
		LogOutput: io.Discard,
		In:        strings.NewReader(in),
		NoColor:   true,
	})
}

func (h *harness) login(prog Program, user, pass string) {
	h.t.Helper()
	if code := h.run(prog, "", "auth", "login", "-u", user, "-p", pass); code != 0 {
		h.t.Fatalf("login %s: exit %d, stderr %q", user, code, h.err.String())
	}
}

func hasRow(out, id string) bool {
	for _, ln := range strings.Split(out, "\n") {
		f := strings.Fields(ln)
		if len(f) > 0 && f[0] == id {
			return true
		}
	}
	return false
}

func seedClients(srv *apitest.Server) {
	for _, n := range []string{"Acme Seoul", "Beta Corp", "Acme Busan", "Gamma", "Acme Jeju"} {
		srv.Seed("clients", model.Client{Name: n, ClientType: model.ClientCompany, CompanyName: n})
	}
}

func TestAdminSearchThenDelete(t *testing.T) {
	h := newHarness(t)
	seedClients(h.srv)
	h.login(Admin, "admin", "admin123")

	if code := h.run(Admin, "", "ls", "clients", "-search", "Acme"); code != 0 {
		t.Fatalf("ls exit %d: %s", code, h.err.String())
	}
	for _, id := range []string{"1", "3", "5"} {
		if !hasRow(h.out.String(), id) {
			t.Fatalf("search output missing id %s:\n%s", id, h.out.String())
		}
	}
	if hasRow(h.out.String(), "2") {
		t.Fatalf("search output has non-matching id 2:\n%s", h.out.String())
	}

	if code := h.run(Admin, "", "rm", "clients", "5", "-y"); code != 0 {
		t.Fatalf("rm exit %d: %s", code, h.err.String())
	}
	if hasRow(h.out.String(), "5") {
		t.Fatalf("list after delete still has id 5:\n%s", h.out.String())
	}
	if !hasRow(h.out.String(), "4") {
		t.Fatalf("list after delete not refreshed:\n%s", h.out.String())
	}
	if h.srv.Record("clients", 5) != nil {
		t.Fatalf("client 5 still stored")
	}
}

func TestRemoveDeclinedSendsNothing(t *testing.T) {
	h := newHarness(t)
	seedClients(h.srv)
	h.login(Admin, "admin", "admin123")

	if code := h.run(Admin, "n\n", "rm", "clients", "2"); code != 0 {
		t.Fatalf("rm exit %d", code)
	}
	if !strings.Contains(h.out.String(), "Delete client #2? [y/N]") {
		t.Fatalf("prompt missing: %q", h.out.String())
	}
	if n := h.srv.Count("DELETE", "/api/clients/2"); n != 0 {
		t.Fatalf("DELETE sent %d times", n)
	}
}

func TestCommandsNeedLogin(t *testing.T) {
	h := newHarness(t)
	if code := h.run(Admin, "", "ls", "clients"); code != 2 {
		t.Fatalf("exit = %d, want 2", code)
	}
	if !strings.Contains(h.err.String(), "not logged in") {
		t.Fatalf("stderr = %q", h.err.String())
	}
	if len(h.srv.Requests()) != 0 {
		t.Fatalf("guarded command reached the backend")
	}
}

func TestAdminOnlyCommands(t *testing.T) {
	h := newHarness(t)
	h.login(Admin, "tech", "tech123")

	if code := h.run(Admin, "", "dashboard"); code != 1 {
		t.Fatalf("dashboard exit = %d, want 1", code)
	}
	if !strings.Contains(h.err.String(), "permission denied") {
		t.Fatalf("stderr = %q", h.err.String())
	}
	if code := h.run(Admin, "", "ls", "items"); code != 1 {
		t.Fatalf("ls items exit = %d, want 1", code)
	}
}

func TestSaveCreatesAndUpdates(t *testing.T) {
	h := newHarness(t)
	h.login(Admin, "admin", "admin123")

	code := h.run(Admin, "", "save", "items", "new", "code=F-1", "name=Water filter", "unit_price=15,000")
	if code != 0 {
		t.Fatalf("save new exit %d: %s", code, h.err.String())
	}
	rec := h.srv.Record("items", 1)
	if rec == nil || rec["name"] != "Water filter" || rec["unit_price"] != float64(15000) {
		t.Fatalf("created record = %v", rec)
	}

	if code := h.run(Admin, "", "save", "items", "1", "unit_price=17000"); code != 0 {
		t.Fatalf("save 1 exit %d: %s", code, h.err.String())
	}
	rec = h.srv.Record("items", 1)
	if rec["unit_price"] != float64(17000) || rec["code"] != "F-1" {
		t.Fatalf("updated record = %v", rec)
	}

	if code := h.run(Admin, "", "save", "items", "new", "name=No code"); code != 1 {
		t.Fatalf("invalid save exit = %d, want 1", code)
	}
	if n := h.srv.Count("POST", "/api/items"); n != 1 {
		t.Fatalf("POST count = %d, invalid record reached the server", n)
	}
	if code := h.run(Admin, "", "save", "items", "1", "colour=red"); code != 2 {
		t.Fatalf("unknown field exit = %d, want 2", code)
	}
}

func TestShowRendersFields(t *testing.T) {
	h := newHarness(t)
	seedClients(h.srv)
	h.login(Admin, "admin", "admin123")

	if code := h.run(Admin, "", "show", "clients", "3"); code != 0 {
		t.Fatalf("show exit %d: %s", code, h.err.String())
	}
	if !strings.Contains(h.out.String(), "Acme Busan") {
		t.Fatalf("show output = %q", h.out.String())
	}
	if code := h.run(Admin, "", "show", "clients", "99"); code != 1 {
		t.Fatalf("show missing exit = %d, want 1", code)
	}
}

func TestBackupCommands(t *testing.T) {
	h := newHarness(t)
	h.srv.SeedBackup("backup_20260101_000000.sql", []byte("dump"))
	h.login(Admin, "admin", "admin123")

	if code := h.run(Admin, "", "backup", "ls"); code != 0 || !strings.Contains(h.out.String(), "backup_20260101_000000.sql") {
		t.Fatalf("backup ls exit %d: %q", code, h.out.String())
	}
	dst := filepath.Join(t.TempDir(), "dump.sql")
	if code := h.run(Admin, "", "backup", "get", "backup_20260101_000000.sql", "-o", dst); code != 0 {
		t.Fatalf("backup get exit %d: %s", code, h.err.String())
	}
	b, err := os.ReadFile(dst)
	if err != nil || string(b) != "dump" {
		t.Fatalf("downloaded %q, %v", b, err)
	}
	if code := h.run(Admin, "", "backup", "rm", "backup_20260101_000000.sql", "-y"); code != 0 {
		t.Fatalf("backup rm exit %d: %s", code, h.err.String())
	}
}

func TestAuthStatusAndLogout(t *testing.T) {
	h := newHarness(t)
	h.run(Admin, "", "auth", "status")
	if !strings.Contains(h.out.String(), "not logged in") {
		t.Fatalf("status before login = %q", h.out.String())
	}

	if code := h.run(Admin, "admin\nadmin123\n", "auth", "login"); code != 0 {
		t.Fatalf("prompted login exit %d: %s", code, h.err.String())
	}
	h.run(Admin, "", "auth", "status")
	if !strings.Contains(h.out.String(), "source: file") {
		t.Fatalf("status = %q", h.out.String())
	}
	if code := h.run(Admin, "", "auth", "logout"); code != 0 {
		t.Fatalf("logout exit %d", code)
	}
	if code := h.run(Admin, "", "auth", "whoami"); code != 2 {
		t.Fatalf("whoami after logout exit = %d, want 2", code)
	}
}

func TestBadLogin(t *testing.T) {
	h := newHarness(t)
	if code := h.run(Admin, "", "auth", "login", "-u", "admin", "-p", "nope"); code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !strings.Contains(h.err.String(), "invalid username or password") {
		t.Fatalf("stderr = %q", h.err.String())
	}
}

func TestFieldCompleteWithPhoto(t *testing.T) {
	h := newHarness(t)
	ids := h.srv.Seed("installations", model.Installation{
		ContractID: 1, ClientID: 7, TechnicianID: 2,
		InstallationType: model.JobInstallation, Status: model.JobPending,
	})
	h.srv.Seed("installations", model.Installation{
		ContractID: 2, ClientID: 8, TechnicianID: 9,
		InstallationType: model.JobAS, Status: model.JobPending,
	})
	h.login(Field, "tech", "tech123")

	if code := h.run(Field, "", "jobs"); code != 0 {
		t.Fatalf("jobs exit %d: %s", code, h.err.String())
	}
	if !hasRow(h.out.String(), "1") || hasRow(h.out.String(), "2") {
		t.Fatalf("jobs should list only the technician's job:\n%s", h.out.String())
	}

	photo := filepath.Join(t.TempDir(), "after.png")
	if err := os.WriteFile(photo, []byte("png"), 0o600); err != nil {
		t.Fatal(err)
	}
	if code := h.run(Field, "", "complete", "1", "-result", "filter replaced", "-photo", photo); code != 0 {
		t.Fatalf("complete exit %d: %s", code, h.err.String())
	}
	rec := h.srv.Record("installations", ids[0])
	if rec["status"] != model.JobCompleted || rec["result_text"] != "filter replaced" {
		t.Fatalf("job after completion = %v", rec)
	}

	if code := h.run(Field, "", "complete", "1", "-result", " "); code != 1 {
		t.Fatalf("blank result exit = %d, want 1", code)
	}
	if code := h.run(Field, "", "history", "7"); code != 0 || !hasRow(h.out.String(), "1") {
		t.Fatalf("history exit %d:\n%s", code, h.out.String())
	}
}

func TestFieldRejectsOfficeOnlyResources(t *testing.T) {
	h := newHarness(t)
	h.login(Field, "sales", "sales123")
	if code := h.run(Field, "", "ls", "items"); code != 2 {
		t.Fatalf("ls items exit = %d, want 2", code)
	}
	if code := h.run(Field, "", "me"); code != 0 || !strings.Contains(h.out.String(), "Sales Rep") {
		t.Fatalf("me exit %d: %q", code, h.out.String())
	}
}

func TestUnknownSubcommand(t *testing.T) {
	h := newHarness(t)
	if code := h.run(Admin, "", "frobnicate"); code != 2 {
		t.Fatalf("exit = %d, want 2", code)
	}
	if code := h.run(Field, "", "dashboard"); code != 2 {
		t.Fatalf("field dashboard exit = %d, want 2", code)
	}
}
