// Package models holds the typed records mirrored from the remote
// document store, plus the locally persisted preference row. Remote
// documents are loosely shaped field maps; each record type is decoded at
// the subscription boundary and rejected with an error when malformed.
package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaziflow/kazi-sync/internal/store"
	"github.com/kaziflow/kazi-sync/internal/types"
)

// AdminCategory is the role-category marking a profile as administrator.
const AdminCategory = "Admin"

// NotificationPreferences is the opt-in block on a user profile.
type NotificationPreferences struct {
	LoginAlerts       bool   `json:"loginAlerts"`
	NotificationEmail string `json:"notificationEmail"`
}

// User is the application profile keyed by principal identifier.
type User struct {
	ID                      string                  `json:"id"`
	Name                    string                  `json:"name"`
	Email                   string                  `json:"email"`
	Category                types.FlexList[string]  `json:"category"`
	NotificationPreferences NotificationPreferences `json:"notificationPreferences"`
	ProductivityScore       types.FlexFloat64       `json:"productivityScore"`
}

// IsAdmin reports whether the profile carries the Admin role category.
func (u User) IsAdmin() bool {
	for _, c := range u.Category {
		if c == AdminCategory {
			return true
		}
	}
	return false
}

// FirstName returns the first whitespace-separated token of the display
// name.
func (u User) FirstName() string {
	fields := strings.Fields(u.Name)
	if len(fields) == 0 {
		return u.Name
	}
	return fields[0]
}

// Project is one tracked project row.
type Project struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	OwnerID  string `json:"ownerId"`
	ClientID string `json:"clientId"`
	Status   string `json:"status"`
	Deadline Date   `json:"deadline"`
}

// Client is one client-account row.
type Client struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	OwnerID   string `json:"ownerId"`
	CreatedAt Date   `json:"createdAt"`
}

// CalendarEvent is one scheduled event row.
type CalendarEvent struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	OwnerID string `json:"ownerId"`
	Start   Date   `json:"start"`
	End     Date   `json:"end"`
}

// ContentEntry is one content-calendar row.
type ContentEntry struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Channel     string `json:"channel"`
	OwnerID     string `json:"ownerId"`
	Status      string `json:"status"`
	PublishDate Date   `json:"publishDate"`
}

// Notification is one in-app notification row.
type Notification struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Read    bool   `json:"read"`
}

// SentEmail is one row of the outbound notification log.
type SentEmail struct {
	ID        string `json:"id"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Timestamp Date   `json:"timestamp"`
	Read      bool   `json:"read"`
}

// decodeSnapshot parses a loosely typed document snapshot into a record,
// then stamps the store-assigned identifier over any id field the
// document itself carried.
func decodeSnapshot[T any](s store.Snapshot, out *T) error {
	if !s.Exists {
		return fmt.Errorf("document %s does not exist", s.ID)
	}
	raw, err := json.Marshal(s.Fields)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", s.ID, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode document %s: %w", s.ID, err)
	}
	return nil
}

// ParseUser decodes a users-collection snapshot.
func ParseUser(s store.Snapshot) (User, error) {
	var u User
	if err := decodeSnapshot(s, &u); err != nil {
		return User{}, err
	}
	u.ID = s.ID
	return u, nil
}

// ParseProject decodes a projects-collection snapshot.
func ParseProject(s store.Snapshot) (Project, error) {
	var p Project
	if err := decodeSnapshot(s, &p); err != nil {
		return Project{}, err
	}
	p.ID = s.ID
	return p, nil
}

// ParseClient decodes a clients-collection snapshot.
func ParseClient(s store.Snapshot) (Client, error) {
	var c Client
	if err := decodeSnapshot(s, &c); err != nil {
		return Client{}, err
	}
	c.ID = s.ID
	return c, nil
}

// ParseCalendarEvent decodes an events-collection snapshot.
func ParseCalendarEvent(s store.Snapshot) (CalendarEvent, error) {
	var e CalendarEvent
	if err := decodeSnapshot(s, &e); err != nil {
		return CalendarEvent{}, err
	}
	e.ID = s.ID
	return e, nil
}

// ParseContentEntry decodes a contentEntries-collection snapshot.
func ParseContentEntry(s store.Snapshot) (ContentEntry, error) {
	var e ContentEntry
	if err := decodeSnapshot(s, &e); err != nil {
		return ContentEntry{}, err
	}
	e.ID = s.ID
	return e, nil
}

// ParseNotification decodes a notifications-collection snapshot.
func ParseNotification(s store.Snapshot) (Notification, error) {
	var n Notification
	if err := decodeSnapshot(s, &n); err != nil {
		return Notification{}, err
	}
	n.ID = s.ID
	return n, nil
}

// ParseSentEmail decodes a sentEmails-collection snapshot.
func ParseSentEmail(s store.Snapshot) (SentEmail, error) {
	var e SentEmail
	if err := decodeSnapshot(s, &e); err != nil {
		return SentEmail{}, err
	}
	e.ID = s.ID
	return e, nil
}
