package auth_test

import (
	"context"
	"testing"

	"github.com/kaziflow/kazi-sync/internal/auth"
)

// TestListenerFiresImmediatelyWithCurrentState verifies the startup
// contract: a listener registered while signed in observes that session.
func TestListenerFiresImmediatelyWithCurrentState(t *testing.T) {
	n := auth.NewStateNotifier()
	n.Set(&auth.Principal{ID: "u1", Email: "a@example.com"})

	var got []*auth.Principal
	cancel := n.Listen(func(p *auth.Principal) { got = append(got, p) })
	defer cancel()

	if len(got) != 1 || got[0] == nil || got[0].ID != "u1" {
		t.Fatalf("Expected immediate delivery of current state, got %+v", got)
	}

	n.Set(nil)
	if len(got) != 2 || got[1] != nil {
		t.Errorf("Expected signed-out transition, got %+v", got)
	}
}

// TestCancelRemovesListener verifies a canceled listener sees no further
// transitions.
func TestCancelRemovesListener(t *testing.T) {
	n := auth.NewStateNotifier()

	calls := 0
	cancel := n.Listen(func(*auth.Principal) { calls++ })
	cancel()

	n.Set(&auth.Principal{ID: "u1"})
	if calls != 1 {
		t.Errorf("Expected only the immediate delivery, got %d calls", calls)
	}
}

// TestListenerMaySignOutSynchronously verifies a listener can call back
// into the service during its own notification without deadlocking.
func TestListenerMaySignOutSynchronously(t *testing.T) {
	svc := auth.NewFakeService()
	svc.Register("u1", "a@example.com", "pw")

	cancel := svc.OnAuthStateChange(func(p *auth.Principal) {
		if p != nil {
			_ = svc.SignOut(context.Background())
		}
	})
	defer cancel()

	if _, err := svc.SignIn(context.Background(), "a@example.com", "pw"); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if svc.Current() != nil {
		t.Error("Expected listener-driven sign-out to stick")
	}
}

// TestFakeServiceCredentialChecks verifies the fake rejects unknown
// users and wrong passwords.
func TestFakeServiceCredentialChecks(t *testing.T) {
	svc := auth.NewFakeService()
	svc.Register("u1", "a@example.com", "pw")

	if _, err := svc.SignIn(context.Background(), "a@example.com", "nope"); err == nil {
		t.Error("Expected wrong password to fail")
	}
	if _, err := svc.SignIn(context.Background(), "b@example.com", "pw"); err == nil {
		t.Error("Expected unknown user to fail")
	}

	p, err := svc.SignIn(context.Background(), "a@example.com", "pw")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if p.ID != "u1" {
		t.Errorf("Expected principal u1, got %s", p.ID)
	}
}
