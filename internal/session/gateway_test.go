package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kaziflow/kazi-sync/internal/auth"
	"github.com/kaziflow/kazi-sync/internal/models"
	"github.com/kaziflow/kazi-sync/internal/session"
)

// TestAuthenticateSuccess verifies the boolean contract and that
// observers see the signer's hydrated profile.
func TestAuthenticateSuccess(t *testing.T) {
	_, authSvc, sess, _ := setupController(t)
	gateway := session.NewGateway(authSvc, sess, 5*time.Second)

	var observed *models.User
	var observedPrincipal auth.Principal
	gateway.OnLogin(func(p auth.Principal, signer *models.User) {
		observedPrincipal = p
		observed = signer
	})

	if !gateway.Authenticate(context.Background(), "asha@example.com", "secret") {
		t.Fatal("Expected successful authentication")
	}
	if observedPrincipal.ID != "admin1" {
		t.Errorf("Expected principal admin1, got %s", observedPrincipal.ID)
	}
	if observed == nil || observed.Name != "Asha Okafor" {
		t.Errorf("Expected hydrated signer profile, got %+v", observed)
	}
}

// TestAuthenticateBadCredentials verifies that wrong credentials fail
// without firing observers.
func TestAuthenticateBadCredentials(t *testing.T) {
	_, authSvc, sess, _ := setupController(t)
	gateway := session.NewGateway(authSvc, sess, 5*time.Second)

	fired := false
	gateway.OnLogin(func(auth.Principal, *models.User) { fired = true })

	if gateway.Authenticate(context.Background(), "asha@example.com", "wrong") {
		t.Fatal("Expected failed authentication")
	}
	if fired {
		t.Error("Expected no observer call on failure")
	}
	if sess.Profile() != nil {
		t.Error("Expected no session after failed authentication")
	}
}

// TestAuthenticateProviderOutage verifies that a provider error is
// reported the same way as bad credentials.
func TestAuthenticateProviderOutage(t *testing.T) {
	_, authSvc, sess, _ := setupController(t)
	authSvc.SignInErr = errors.New("connection refused")
	gateway := session.NewGateway(authSvc, sess, 5*time.Second)

	if gateway.Authenticate(context.Background(), "asha@example.com", "secret") {
		t.Error("Expected failed authentication during provider outage")
	}
}
