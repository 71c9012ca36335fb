package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/kaziflow/kazi-sync/internal/auth"
	"github.com/kaziflow/kazi-sync/internal/models"
	"github.com/kaziflow/kazi-sync/internal/store"
)

// syncKey identifies the derived query set. Collection subscriptions are
// released and re-opened only when this changes, not on every profile
// snapshot.
type syncKey struct {
	userID string
	admin  bool
}

// Controller reacts to auth-state transitions: it binds the profile
// resolver on sign-in, activates the role-scoped collection sync once a
// profile is hydrated, and releases every subscription and clears the
// session on sign-out. Generation counters fence off snapshots that
// arrive after a teardown, so rapid sign-in/sign-out toggling cannot
// repopulate cleared state or leak subscriptions.
type Controller struct {
	store       store.Store
	auth        auth.Service
	session     *Session
	authTimeout time.Duration

	mu         sync.Mutex
	gen        uint64
	colGen     uint64
	collKey    syncKey
	profileSub *store.Subscription
	collSubs   []*store.Subscription
	cancelAuth func()
}

// NewController wires the lifecycle controller. Call Start to begin
// listening for auth-state transitions.
func NewController(st store.Store, authSvc auth.Service, sess *Session, authTimeout time.Duration) *Controller {
	if authTimeout <= 0 {
		authTimeout = 10 * time.Second
	}
	return &Controller{
		store:       st,
		auth:        authSvc,
		session:     sess,
		authTimeout: authTimeout,
	}
}

// Start registers the persistent auth-state listener. The listener fires
// immediately with the current state, so a previously established session
// hydrates on startup.
func (c *Controller) Start() {
	c.cancelAuth = c.auth.OnAuthStateChange(c.handleAuthState)
}

// Stop removes the auth listener and tears the session down.
func (c *Controller) Stop() {
	if c.cancelAuth != nil {
		c.cancelAuth()
		c.cancelAuth = nil
	}
	c.teardown()
}

func (c *Controller) handleAuthState(p *auth.Principal) {
	if p == nil {
		c.teardown()
		return
	}
	c.bind(p.ID)
}

// teardown enters the signed-out state: every open subscription is
// released exactly once, then all local state is cleared.
func (c *Controller) teardown() {
	c.mu.Lock()
	c.gen++
	c.colGen++
	c.collKey = syncKey{}
	profileSub := c.profileSub
	c.profileSub = nil
	collSubs := c.collSubs
	c.collSubs = nil
	c.mu.Unlock()

	if profileSub != nil {
		profileSub.Release()
	}
	for _, sub := range collSubs {
		sub.Release()
	}

	c.session.reset()
}

// bind opens the live profile subscription for a signed-in principal.
// Any previous binding is torn down first.
func (c *Controller) bind(principalID string) {
	c.teardown()

	c.mu.Lock()
	g := c.gen
	c.mu.Unlock()

	sub, err := c.store.SubscribeToDocument(CollectionUsers, principalID, func(snap store.Snapshot) {
		c.handleProfileSnapshot(g, snap)
	})
	if err != nil {
		log.Printf("session: profile subscription failed for %s: %v", principalID, err)
		return
	}

	c.mu.Lock()
	if c.gen != g {
		// Signed out while the subscription was being opened.
		c.mu.Unlock()
		sub.Release()
		return
	}
	c.profileSub = sub
	c.mu.Unlock()
}

// handleProfileSnapshot is the profile resolver. An existing document
// hydrates the profile and credits; a missing document for an
// authenticated principal is session-fatal and forces sign-out.
func (c *Controller) handleProfileSnapshot(g uint64, snap store.Snapshot) {
	c.mu.Lock()
	if c.gen != g {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	if !snap.Exists {
		log.Printf("session: no profile document for authenticated principal %s, forcing sign-out", snap.ID)
		ctx, cancel := context.WithTimeout(context.Background(), c.authTimeout)
		defer cancel()
		if err := c.auth.SignOut(ctx); err != nil {
			log.Printf("session: forced sign-out failed: %v", err)
		}
		return
	}

	profile, err := models.ParseUser(snap)
	if err != nil {
		log.Printf("session: malformed profile document %s: %v", snap.ID, err)
		return
	}

	c.mu.Lock()
	if c.gen != g {
		c.mu.Unlock()
		return
	}
	c.session.setProfile(profile, int(profile.ProductivityScore))

	key := syncKey{userID: profile.ID, admin: profile.IsAdmin()}
	if c.collKey == key && len(c.collSubs) > 0 {
		c.mu.Unlock()
		return
	}
	c.collKey = key
	c.colGen++
	cg := c.colGen
	old := c.collSubs
	c.collSubs = nil
	c.mu.Unlock()

	// Release the previous query set before opening the new one, so a
	// role change never leaks subscriptions or doubles snapshots.
	for _, sub := range old {
		sub.Release()
	}

	subs := c.openCollectionSubs(g, cg, profile)

	c.mu.Lock()
	if c.gen != g || c.colGen != cg {
		c.mu.Unlock()
		for _, sub := range subs {
			sub.Release()
		}
		return
	}
	c.collSubs = subs
	c.mu.Unlock()
}

// openCollectionSubs derives the role-scoped query set and opens one live
// subscription per collection. Administrators query every collection
// unscoped; everyone else is restricted to rows they own. Notifications
// are unscoped for all roles, and sentEmails is subscribed only for
// administrators.
func (c *Controller) openCollectionSubs(g, cg uint64, u models.User) []*store.Subscription {
	admin := u.IsAdmin()

	scoped := func(collection, field string) store.Query {
		if admin {
			return store.Query{Collection: collection}
		}
		return store.Query{Collection: collection, Field: field, Equals: u.ID}
	}

	type binding struct {
		query store.Query
		apply func([]store.Snapshot)
	}

	bindings := []binding{
		{scoped(CollectionUsers, "id"), func(rows []store.Snapshot) {
			c.session.replaceUsers(parseRows(rows, models.ParseUser, CollectionUsers))
		}},
		{scoped(CollectionProjects, "ownerId"), func(rows []store.Snapshot) {
			c.session.replaceProjects(parseRows(rows, models.ParseProject, CollectionProjects))
		}},
		{scoped(CollectionClients, "ownerId"), func(rows []store.Snapshot) {
			c.session.replaceClients(parseRows(rows, models.ParseClient, CollectionClients))
		}},
		{scoped(CollectionEvents, "ownerId"), func(rows []store.Snapshot) {
			c.session.replaceEvents(parseRows(rows, models.ParseCalendarEvent, CollectionEvents))
		}},
		{scoped(CollectionContentEntries, "ownerId"), func(rows []store.Snapshot) {
			c.session.replaceContentEntries(parseRows(rows, models.ParseContentEntry, CollectionContentEntries))
		}},
		// Notifications are shared across the whole team regardless
		// of role.
		{store.Query{Collection: CollectionNotifications}, func(rows []store.Snapshot) {
			c.session.replaceNotifications(parseRows(rows, models.ParseNotification, CollectionNotifications))
		}},
	}
	if admin {
		bindings = append(bindings, binding{store.Query{Collection: CollectionSentEmails}, func(rows []store.Snapshot) {
			c.session.replaceSentEmails(parseRows(rows, models.ParseSentEmail, CollectionSentEmails))
		}})
	}

	var subs []*store.Subscription
	for _, b := range bindings {
		b := b
		sub, err := c.store.SubscribeToQuery(b.query, func(rows []store.Snapshot) {
			c.applyCollectionSnapshot(g, cg, b.apply, rows)
		})
		if err != nil {
			log.Printf("session: subscription failed for %s: %v", b.query.Collection, err)
			continue
		}
		subs = append(subs, sub)
	}
	return subs
}

// applyCollectionSnapshot replaces a collection with a snapshot's row set
// unless the query set it belongs to has been torn down.
func (c *Controller) applyCollectionSnapshot(g, cg uint64, apply func([]store.Snapshot), rows []store.Snapshot) {
	c.mu.Lock()
	if c.gen != g || c.colGen != cg {
		c.mu.Unlock()
		return
	}
	apply(rows)
	c.mu.Unlock()
}

// parseRows decodes a snapshot's rows, dropping and logging malformed
// documents rather than trusting shape.
func parseRows[T any](rows []store.Snapshot, parse func(store.Snapshot) (T, error), collection string) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		rec, err := parse(row)
		if err != nil {
			log.Printf("session: dropping malformed %s document %s: %v", collection, row.ID, err)
			continue
		}
		out = append(out, rec)
	}
	return out
}
