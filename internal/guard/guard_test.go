package guard

import (
	"context"
	"testing"

	"github.com/Makepad-fr/nexo/internal/model"
	"github.com/Makepad-fr/nexo/internal/session"
)

func TestEvaluate(t *testing.T) {
	admin := session.Session{Token: "t", User: model.User{Role: model.RoleAdmin, IsAdmin: true}}
	super := session.Session{Token: "t", User: model.User{Role: model.RoleSuperAdmin, IsAdmin: true, IsSuperAdmin: true}}
	tech := session.Session{Token: "t", User: model.User{Role: model.RoleTechnician}}
	sales := session.Session{Token: "t", User: model.User{Role: model.RoleSales}}
	odd := session.Session{Token: "t", User: model.User{Role: "auditor"}}

	cases := []struct {
		name  string
		level Level
		state session.State
		sess  session.Session
		want  Decision
	}{
		{"public while loading", Public, session.Loading, session.Session{}, allow},
		{"loading waits", Admin, session.Loading, session.Session{}, wait},
		{"absent to login", Authenticated, session.Absent, session.Session{}, toLogin},
		{"absent admin to login", Admin, session.Absent, session.Session{}, toLogin},
		{"absent super to login", SuperAdmin, session.Absent, session.Session{}, toLogin},
		{"tech authenticated", Authenticated, session.Present, tech, allow},
		{"tech admin home", Admin, session.Present, tech, toHome},
		{"admin ok", Admin, session.Present, admin, allow},
		{"admin not super", SuperAdmin, session.Present, admin, toHome},
		{"super ok", SuperAdmin, session.Present, super, allow},
		{"tech field", FieldWorker, session.Present, tech, allow},
		{"sales field", FieldWorker, session.Present, sales, allow},
		{"admin field", FieldWorker, session.Present, admin, allow},
		{"other role field", FieldWorker, session.Present, odd, toLogin},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Evaluate(tc.level, tc.state, tc.sess); got != tc.want {
				t.Fatalf("Evaluate = %+v, want %+v", got, tc.want)
			}
		})
	}
}

// After a session is known to be absent no guarded level may ever allow.
func TestAbsentNeverAllows(t *testing.T) {
	for _, l := range []Level{Authenticated, Admin, SuperAdmin, FieldWorker} {
		d := Evaluate(l, session.Absent, session.Session{User: model.User{IsAdmin: true, IsSuperAdmin: true}})
		if d.Allowed() || d.To != RouteLogin {
			t.Fatalf("%v: %+v", l, d)
		}
	}
}

func TestCheckFollowsStore(t *testing.T) {
	st := session.NewStore(session.Options{})
	if d := Check(Admin, st); d.Outcome != Wait {
		t.Fatalf("before restore: %+v", d)
	}
	_ = st.Restore(context.Background())
	if d := Check(Admin, st); d != toLogin {
		t.Fatalf("after restore: %+v", d)
	}
}

type fixed struct {
	state session.State
	sess  session.Session
}

func (f fixed) Snapshot() (session.State, session.Session) { return f.state, f.sess }

func TestCheckUsesOneSnapshot(t *testing.T) {
	admin := session.Session{User: model.User{Role: model.RoleAdmin, IsAdmin: true}}
	if d := Check(Admin, fixed{session.Present, admin}); !d.Allowed() {
		t.Fatalf("admin: %+v", d)
	}
	if d := Check(Admin, fixed{session.Absent, admin}); d != toLogin {
		t.Fatalf("absent with stale user: %+v", d)
	}
}
