package session

import (
	"context"
	"log"
	"time"

	"github.com/kaziflow/kazi-sync/internal/auth"
	"github.com/kaziflow/kazi-sync/internal/models"
)

// LoginObserver is notified after a successful credential exchange. The
// signer profile is nil when the mirrored users collection has not yet
// produced a row for the principal.
type LoginObserver func(principal auth.Principal, signer *models.User)

// Gateway performs the credential exchange against the auth provider and
// reports success as a plain boolean. Provider failures of any kind,
// including timeouts, collapse to a failed attempt; the caller never
// learns whether credentials were wrong or the provider was down.
type Gateway struct {
	auth      auth.Service
	session   *Session
	timeout   time.Duration
	observers []LoginObserver
}

// NewGateway builds a gateway bound to the shared session state.
func NewGateway(authSvc auth.Service, sess *Session, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Gateway{auth: authSvc, session: sess, timeout: timeout}
}

// OnLogin registers an observer for successful sign-ins. Not safe to call
// concurrently with Authenticate; register observers during wiring.
func (g *Gateway) OnLogin(fn LoginObserver) {
	g.observers = append(g.observers, fn)
}

// Authenticate exchanges credentials for a session. The exchange is
// bounded by the configured timeout so a stalled provider cannot hang a
// login attempt indefinitely.
func (g *Gateway) Authenticate(ctx context.Context, email, password string) bool {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	principal, err := g.auth.SignIn(ctx, email, password)
	if err != nil {
		log.Printf("gateway: sign-in failed for %s: %v", email, err)
		return false
	}

	// The signer's mirrored profile may not have arrived yet; observers
	// receive nil and decide whether to act. Authentication itself has
	// already succeeded.
	signer := g.findSigner(principal.ID)
	for _, fn := range g.observers {
		fn(principal, signer)
	}
	return true
}

func (g *Gateway) findSigner(id string) *models.User {
	for _, u := range g.session.Users() {
		if u.ID == id {
			u := u
			return &u
		}
	}
	if p := g.session.Profile(); p != nil && p.ID == id {
		return p
	}
	return nil
}
