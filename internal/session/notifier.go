package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/kaziflow/kazi-sync/internal/auth"
	"github.com/kaziflow/kazi-sync/internal/models"
	"github.com/kaziflow/kazi-sync/internal/store"
	"github.com/kaziflow/kazi-sync/internal/textgen"
)

// Notifier records a sent-email document for every administrator who
// opted into login alerts whenever someone signs in. Recipients come
// from an unscoped read of the users collection, not the signer's
// role-scoped mirror, so a regular member's login still reaches the
// admins. Delivery is best effort: a failed generation or write is
// logged and never blocks or fails the login that triggered it.
type Notifier struct {
	store   store.Store
	gen     textgen.Generator
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewNotifier builds the side-channel. Wire its HandleLogin to a
// Gateway via OnLogin.
func NewNotifier(st store.Store, gen textgen.Generator, timeout time.Duration) *Notifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Notifier{store: st, gen: gen, timeout: timeout}
}

// HandleLogin fans out one alert per eligible recipient. Recipients are
// administrators with login alerts enabled, excluding the signer. The
// fan-out runs only once the signer's own profile has resolved; a login
// that races ahead of profile hydration produces no alerts.
func (n *Notifier) HandleLogin(principal auth.Principal, signer *models.User) {
	if signer == nil {
		log.Printf("notifier: signer profile for %s not resolved, skipping alerts", principal.ID)
		return
	}
	signerName := signer.Name
	if signerName == "" {
		signerName = principal.Email
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	for _, u := range n.fetchUsers(ctx) {
		if !u.IsAdmin() || !u.NotificationPreferences.LoginAlerts {
			continue
		}
		if u.ID == principal.ID {
			continue
		}
		recipient := u
		n.wg.Add(1)
		go func() {
			defer n.wg.Done()
			n.deliver(signerName, recipient)
		}()
	}
}

// fetchUsers takes a one-shot unscoped read of the users collection. A
// subscription's first snapshot is the current result set, so it is
// released as soon as that arrives.
func (n *Notifier) fetchUsers(ctx context.Context) []models.User {
	ch := make(chan []store.Snapshot, 1)
	sub, err := n.store.SubscribeToQuery(store.Query{Collection: CollectionUsers}, func(rows []store.Snapshot) {
		select {
		case ch <- rows:
		default:
		}
	})
	if err != nil {
		log.Printf("notifier: user lookup failed: %v", err)
		return nil
	}
	defer sub.Release()

	select {
	case rows := <-ch:
		return parseRows(rows, models.ParseUser, CollectionUsers)
	case <-ctx.Done():
		log.Printf("notifier: user lookup timed out: %v", ctx.Err())
		return nil
	}
}

func (n *Notifier) deliver(signerName string, recipient models.User) {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	email, err := n.gen.GenerateLoginAlert(ctx, signerName, recipient.FirstName())
	if err != nil {
		log.Printf("notifier: alert generation for %s failed: %v", recipient.ID, err)
		return
	}

	to := recipient.NotificationPreferences.NotificationEmail
	if to == "" {
		to = recipient.Email
	}

	_, err = n.store.AddDocument(ctx, CollectionSentEmails, map[string]interface{}{
		"to":        to,
		"subject":   email.Subject,
		"body":      email.Body,
		"timestamp": store.Now(),
		"read":      false,
	})
	if err != nil {
		log.Printf("notifier: recording alert for %s failed: %v", recipient.ID, err)
	}
}

// Wait blocks until all in-flight deliveries finish.
func (n *Notifier) Wait() {
	n.wg.Wait()
}
