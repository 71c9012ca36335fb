// Package session implements the client-side state synchronization layer:
// it authenticates a principal, derives role-scoped live queries against
// the remote document store, keeps in-memory collections consistent with
// remote changes, and tears everything down on sign-out.
package session

import (
	"sync"

	"github.com/kaziflow/kazi-sync/internal/models"
)

// Collection names in the remote store.
const (
	CollectionUsers          = "users"
	CollectionProjects       = "projects"
	CollectionClients        = "clients"
	CollectionEvents         = "events"
	CollectionContentEntries = "contentEntries"
	CollectionNotifications  = "notifications"
	CollectionSentEmails     = "sentEmails"
)

// CollectionNames lists every logical collection this layer mirrors.
var CollectionNames = []string{
	CollectionUsers,
	CollectionProjects,
	CollectionClients,
	CollectionEvents,
	CollectionContentEntries,
	CollectionNotifications,
	CollectionSentEmails,
}

// Collections is the full set of mirrored rows. Each slice is a pure
// projection of the remote query result set at the last snapshot; it is
// only ever replaced wholesale, never merged.
type Collections struct {
	Users          []models.User          `json:"users"`
	Projects       []models.Project       `json:"projects"`
	Clients        []models.Client        `json:"clients"`
	Events         []models.CalendarEvent `json:"events"`
	ContentEntries []models.ContentEntry  `json:"contentEntries"`
	Notifications  []models.Notification  `json:"notifications"`
	SentEmails     []models.SentEmail     `json:"sentEmails"`
}

// Session is the in-memory view state published to consumers. The
// controller is the single writer; readers receive copies.
type Session struct {
	mu          sync.Mutex
	profile     *models.User
	credits     int
	collections Collections
}

// NewSession returns an empty, signed-out session.
func NewSession() *Session {
	return &Session{}
}

// Profile returns a copy of the current profile, or nil when signed out.
func (s *Session) Profile() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

// Credits returns the current productivity credits.
func (s *Session) Credits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credits
}

// Collections returns a copy of every mirrored collection.
func (s *Session) Collections() Collections {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Collections{
		Users:          append([]models.User(nil), s.collections.Users...),
		Projects:       append([]models.Project(nil), s.collections.Projects...),
		Clients:        append([]models.Client(nil), s.collections.Clients...),
		Events:         append([]models.CalendarEvent(nil), s.collections.Events...),
		ContentEntries: append([]models.ContentEntry(nil), s.collections.ContentEntries...),
		Notifications:  append([]models.Notification(nil), s.collections.Notifications...),
		SentEmails:     append([]models.SentEmail(nil), s.collections.SentEmails...),
	}
}

// Users returns a copy of the mirrored users collection.
func (s *Session) Users() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.User(nil), s.collections.Users...)
}

// Rows returns one collection by name for the publish surface. ok is
// false for unknown names.
func (s *Session) Rows(name string) (interface{}, bool) {
	c := s.Collections()
	switch name {
	case CollectionUsers:
		return c.Users, true
	case CollectionProjects:
		return c.Projects, true
	case CollectionClients:
		return c.Clients, true
	case CollectionEvents:
		return c.Events, true
	case CollectionContentEntries:
		return c.ContentEntries, true
	case CollectionNotifications:
		return c.Notifications, true
	case CollectionSentEmails:
		return c.SentEmails, true
	}
	return nil, false
}

func (s *Session) setProfile(u models.User, credits int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = &u
	s.credits = credits
}

// reset clears the profile, credits, and every collection. Called on
// every transition to the signed-out state.
func (s *Session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = nil
	s.credits = 0
	s.collections = Collections{}
}

func (s *Session) replaceUsers(rows []models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections.Users = rows
}

func (s *Session) replaceProjects(rows []models.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections.Projects = rows
}

func (s *Session) replaceClients(rows []models.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections.Clients = rows
}

func (s *Session) replaceEvents(rows []models.CalendarEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections.Events = rows
}

func (s *Session) replaceContentEntries(rows []models.ContentEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections.ContentEntries = rows
}

func (s *Session) replaceNotifications(rows []models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections.Notifications = rows
}

func (s *Session) replaceSentEmails(rows []models.SentEmail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections.SentEmails = rows
}
