package models_test

import (
	"testing"
	"time"

	"github.com/kaziflow/kazi-sync/internal/models"
	"github.com/kaziflow/kazi-sync/internal/store"
)

func userSnapshot(fields map[string]interface{}) store.Snapshot {
	return store.Snapshot{ID: "u1", Exists: true, Fields: fields}
}

// TestParseUserTolerantShapes verifies decoding of the loosely shaped
// profile documents: category as single string or array, score as number
// or numeric string, and an absent preferences block.
func TestParseUserTolerantShapes(t *testing.T) {
	u, err := models.ParseUser(userSnapshot(map[string]interface{}{
		"name":              "Asha Okafor",
		"email":             "asha@example.com",
		"category":          []interface{}{"Admin", "Member"},
		"productivityScore": 42,
		"notificationPreferences": map[string]interface{}{
			"loginAlerts":       true,
			"notificationEmail": "alerts@example.com",
		},
	}))
	if err != nil {
		t.Fatalf("ParseUser failed: %v", err)
	}
	if u.ID != "u1" {
		t.Errorf("Expected snapshot id stamped, got %q", u.ID)
	}
	if !u.IsAdmin() {
		t.Error("Expected admin from category array")
	}
	if float64(u.ProductivityScore) != 42 {
		t.Errorf("Expected score 42, got %v", u.ProductivityScore)
	}
	if !u.NotificationPreferences.LoginAlerts {
		t.Error("Expected loginAlerts true")
	}

	u, err = models.ParseUser(userSnapshot(map[string]interface{}{
		"name":              "Mo Haddad",
		"category":          "Member",
		"productivityScore": "7.5",
	}))
	if err != nil {
		t.Fatalf("ParseUser failed on scalar shapes: %v", err)
	}
	if u.IsAdmin() {
		t.Error("Expected non-admin from scalar category")
	}
	if float64(u.ProductivityScore) != 7.5 {
		t.Errorf("Expected score 7.5 from string, got %v", u.ProductivityScore)
	}
	if u.NotificationPreferences.LoginAlerts {
		t.Error("Expected loginAlerts default false")
	}
	if got := u.FirstName(); got != "Mo" {
		t.Errorf("Expected first name Mo, got %q", got)
	}
}

// TestParseProjectTimestampForms verifies both temporal wire forms
// normalize to the same instant.
func TestParseProjectTimestampForms(t *testing.T) {
	instant := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	fromObject, err := models.ParseProject(store.Snapshot{
		ID: "p1", Exists: true,
		Fields: map[string]interface{}{
			"name":     "Atlas",
			"ownerId":  "u1",
			"deadline": store.NewTimestamp(instant),
		},
	})
	if err != nil {
		t.Fatalf("ParseProject failed: %v", err)
	}

	fromString, err := models.ParseProject(store.Snapshot{
		ID: "p2", Exists: true,
		Fields: map[string]interface{}{
			"name":     "Atlas",
			"ownerId":  "u1",
			"deadline": instant.Format(time.RFC3339Nano),
		},
	})
	if err != nil {
		t.Fatalf("ParseProject failed: %v", err)
	}

	if !fromObject.Deadline.Equal(instant) || !fromString.Deadline.Equal(instant) {
		t.Errorf("Expected both forms to decode to %v, got %v and %v",
			instant, fromObject.Deadline, fromString.Deadline)
	}
}

// TestParseRejectsMalformed verifies decode failures surface as errors
// instead of zero-valued rows.
func TestParseRejectsMalformed(t *testing.T) {
	_, err := models.ParseProject(store.Snapshot{
		ID: "bad", Exists: true,
		Fields: map[string]interface{}{
			"deadline": map[string]interface{}{"nanos": true},
		},
	})
	if err == nil {
		t.Error("Expected error for malformed deadline")
	}

	_, err = models.ParseUser(store.Snapshot{ID: "absent"})
	if err == nil {
		t.Error("Expected error for non-existent document")
	}

	_, err = models.ParseNotification(store.Snapshot{
		ID: "n1", Exists: true,
		Fields: map[string]interface{}{"read": "maybe"},
	})
	if err == nil {
		t.Error("Expected error for mistyped field")
	}
}

// TestParseSentEmail verifies the outbound log row shape.
func TestParseSentEmail(t *testing.T) {
	now := store.Now()
	rec, err := models.ParseSentEmail(store.Snapshot{
		ID: "se1", Exists: true,
		Fields: map[string]interface{}{
			"to":        "a@example.com",
			"subject":   "Login alert",
			"body":      "Someone signed in.",
			"timestamp": now,
			"read":      false,
		},
	})
	if err != nil {
		t.Fatalf("ParseSentEmail failed: %v", err)
	}
	if rec.To != "a@example.com" || rec.Read {
		t.Errorf("Unexpected record %+v", rec)
	}
	if !rec.Timestamp.Equal(now.Time()) {
		t.Errorf("Expected timestamp %v, got %v", now.Time(), rec.Timestamp)
	}
}
