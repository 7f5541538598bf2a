package leave

import (
	"context"
	"errors"
	"testing"
)

type staticAdmins []string

func (s staticAdmins) ActiveAdmins(context.Context) ([]string, error) { return s, nil }

type fakeCounter struct {
	n   int64
	err error
}

func (c *fakeCounter) Next(context.Context, string) (int64, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.n++
	return c.n, nil
}

func TestFirstActiveAdminSkipsApplicant(t *testing.T) {
	r := FirstActiveAdmin{Admins: staticAdmins{"a1", "a2"}}
	got, err := r.ResolveAdmin(context.Background(), "a1")
	if err != nil || got != "a2" {
		t.Fatalf("expected a2, got %q (%v)", got, err)
	}
	got, _ = r.ResolveAdmin(context.Background(), "emp")
	if got != "a1" {
		t.Fatalf("expected a1, got %q", got)
	}
}

func TestOnlyAdminApplyingGetsNoAdmin(t *testing.T) {
	for _, r := range []AdminResolver{
		FirstActiveAdmin{Admins: staticAdmins{"a1"}},
		&RoundRobinAdmin{Admins: staticAdmins{"a1"}},
		SharedRoundRobinAdmin{Admins: staticAdmins{"a1"}, Counter: &fakeCounter{}},
	} {
		got, err := r.ResolveAdmin(context.Background(), "a1")
		if err != nil || got != "" {
			t.Fatalf("%T: expected no admin, got %q (%v)", r, got, err)
		}
	}
}

func TestRoundRobinRotates(t *testing.T) {
	local := &RoundRobinAdmin{Admins: staticAdmins{"a1", "a2", "a3"}}
	shared := SharedRoundRobinAdmin{Admins: staticAdmins{"a1", "a2", "a3"}, Counter: &fakeCounter{}}
	want := []string{"a1", "a2", "a3", "a1"}
	for i, w := range want {
		if got, _ := local.ResolveAdmin(context.Background(), "emp"); got != w {
			t.Fatalf("local pick %d: expected %s, got %s", i, w, got)
		}
		if got, _ := shared.ResolveAdmin(context.Background(), "emp"); got != w {
			t.Fatalf("shared pick %d: expected %s, got %s", i, w, got)
		}
	}
}

func TestSharedRoundRobinFallsBack(t *testing.T) {
	r := SharedRoundRobinAdmin{Admins: staticAdmins{"a1", "a2"}, Counter: &fakeCounter{err: errors.New("redis down")}}
	got, err := r.ResolveAdmin(context.Background(), "emp")
	if err != nil || got != "a1" {
		t.Fatalf("expected fallback to a1, got %q (%v)", got, err)
	}
}

func TestNewAdminResolver(t *testing.T) {
	if _, ok := NewAdminResolver("first", staticAdmins{}, nil).(FirstActiveAdmin); !ok {
		t.Fatal("expected FirstActiveAdmin")
	}
	if _, ok := NewAdminResolver("round_robin", staticAdmins{}, nil).(*RoundRobinAdmin); !ok {
		t.Fatal("expected RoundRobinAdmin")
	}
	if _, ok := NewAdminResolver("round_robin", staticAdmins{}, &fakeCounter{}).(SharedRoundRobinAdmin); !ok {
		t.Fatal("expected SharedRoundRobinAdmin")
	}
}
