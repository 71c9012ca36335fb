package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kaziflow/kazi-sync/internal/auth"
	"github.com/kaziflow/kazi-sync/internal/models"
	"github.com/kaziflow/kazi-sync/internal/session"
	"github.com/kaziflow/kazi-sync/internal/store/memstore"
	"github.com/kaziflow/kazi-sync/internal/textgen"
)

type failingGenerator struct{}

func (failingGenerator) GenerateLoginAlert(context.Context, string, string) (textgen.Email, error) {
	return textgen.Email{}, errors.New("generation unavailable")
}

// addAdmin seeds an additional admin profile with the given alert
// preference.
func addAdmin(ms *memstore.MemStore, id, name, email string, alerts bool) {
	ms.SetDocument("users", id, map[string]interface{}{
		"name":     name,
		"email":    email,
		"category": []interface{}{"Admin"},
		"notificationPreferences": map[string]interface{}{
			"loginAlerts":       alerts,
			"notificationEmail": "",
		},
		"productivityScore": 1,
	})
}

// TestLoginAlertRecipients verifies the recipient set: opted-in admins
// only, excluding the signer.
func TestLoginAlertRecipients(t *testing.T) {
	ms, authSvc, sess, _ := setupController(t)
	addAdmin(ms, "admin2", "Bea Flores", "bea@example.com", true)
	addAdmin(ms, "admin3", "Cal Reeves", "cal@example.com", false)

	gateway := session.NewGateway(authSvc, sess, 5*time.Second)
	notifier := session.NewNotifier(ms, textgen.StaticGenerator{}, 5*time.Second)
	gateway.OnLogin(notifier.HandleLogin)

	before := ms.Count("sentEmails")
	if !gateway.Authenticate(context.Background(), "mo@example.com", "secret") {
		t.Fatal("Expected successful authentication")
	}
	notifier.Wait()

	// admin1 opted in with a notification address, admin2 opted in,
	// admin3 opted out, and mo is the signer.
	got := ms.Count("sentEmails") - before
	if got != 2 {
		t.Fatalf("Expected 2 alerts, got %d", got)
	}

	recipients := make(map[string]bool)
	for _, snap := range ms.Documents("sentEmails") {
		if to, ok := snap.Fields["to"].(string); ok {
			recipients[to] = true
		}
	}
	if !recipients["alerts@example.com"] {
		t.Error("Expected alert to admin1's notification address")
	}
	if !recipients["bea@example.com"] {
		t.Error("Expected alert to admin2's account address")
	}
	if recipients["cal@example.com"] {
		t.Error("Expected no alert to opted-out admin3")
	}
}

// TestSignerExcludedFromOwnAlert verifies an admin signing in does not
// alert themselves.
func TestSignerExcludedFromOwnAlert(t *testing.T) {
	ms, authSvc, sess, _ := setupController(t)

	gateway := session.NewGateway(authSvc, sess, 5*time.Second)
	notifier := session.NewNotifier(ms, textgen.StaticGenerator{}, 5*time.Second)
	gateway.OnLogin(notifier.HandleLogin)

	before := ms.Count("sentEmails")
	if !gateway.Authenticate(context.Background(), "asha@example.com", "secret") {
		t.Fatal("Expected successful authentication")
	}
	notifier.Wait()

	if got := ms.Count("sentEmails") - before; got != 0 {
		t.Errorf("Expected no self-alert, got %d", got)
	}
}

// TestAlertRecordShape verifies the recorded document fields, including
// the unread flag and timestamp.
func TestAlertRecordShape(t *testing.T) {
	ms, authSvc, sess, _ := setupController(t)

	gateway := session.NewGateway(authSvc, sess, 5*time.Second)
	notifier := session.NewNotifier(ms, textgen.StaticGenerator{}, 5*time.Second)
	gateway.OnLogin(notifier.HandleLogin)

	before := make(map[string]bool)
	for _, snap := range ms.Documents("sentEmails") {
		before[snap.ID] = true
	}

	if !gateway.Authenticate(context.Background(), "mo@example.com", "secret") {
		t.Fatal("Expected successful authentication")
	}
	notifier.Wait()

	var created int
	for _, snap := range ms.Documents("sentEmails") {
		if before[snap.ID] {
			continue
		}
		created++
		rec, err := models.ParseSentEmail(snap)
		if err != nil {
			t.Fatalf("Failed to parse sent email: %v", err)
		}
		if rec.Read {
			t.Error("Expected alert to start unread")
		}
		if rec.Subject == "" || rec.Body == "" {
			t.Error("Expected generated subject and body")
		}
		if rec.Timestamp.IsZero() {
			t.Error("Expected a send timestamp")
		}
	}
	if created != 1 {
		t.Fatalf("Expected 1 alert, got %d", created)
	}
}

// TestNoAlertsBeforeSignerProfileResolves verifies the fan-out waits for
// the signer's own profile: a login that lands before the session mirror
// has hydrated produces no alerts, even with opted-in admins present.
func TestNoAlertsBeforeSignerProfileResolves(t *testing.T) {
	ms := memstore.New()
	addAdmin(ms, "admin1", "Asha Okafor", "asha@example.com", true)
	addAdmin(ms, "admin2", "Bea Flores", "bea@example.com", true)

	authSvc := auth.NewFakeService()
	authSvc.Register("member1", "mo@example.com", "secret")

	// No controller: the session never hydrates, so the signer's profile
	// stays unresolved.
	sess := session.NewSession()
	gateway := session.NewGateway(authSvc, sess, 5*time.Second)
	notifier := session.NewNotifier(ms, textgen.StaticGenerator{}, 5*time.Second)
	gateway.OnLogin(notifier.HandleLogin)

	if !gateway.Authenticate(context.Background(), "mo@example.com", "secret") {
		t.Fatal("Expected successful authentication")
	}
	notifier.Wait()

	if got := ms.Count("sentEmails"); got != 0 {
		t.Errorf("Expected no alerts without a resolved signer profile, got %d", got)
	}
}

// TestGenerationFailureDoesNotBlockLogin verifies that alert delivery is
// best effort.
func TestGenerationFailureDoesNotBlockLogin(t *testing.T) {
	ms, authSvc, sess, _ := setupController(t)

	gateway := session.NewGateway(authSvc, sess, 5*time.Second)
	notifier := session.NewNotifier(ms, failingGenerator{}, 5*time.Second)
	gateway.OnLogin(notifier.HandleLogin)

	before := ms.Count("sentEmails")
	if !gateway.Authenticate(context.Background(), "mo@example.com", "secret") {
		t.Fatal("Expected login to succeed despite generator failure")
	}
	notifier.Wait()

	if got := ms.Count("sentEmails") - before; got != 0 {
		t.Errorf("Expected no alerts from failing generator, got %d", got)
	}
}
