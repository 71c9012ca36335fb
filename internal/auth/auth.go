// Package auth defines the contract this service needs from the remote
// authentication provider and the shared auth-state fan-out used by every
// implementation.
package auth

import (
	"context"
	"sync"
)

// Principal is the authenticated identity issued by the remote auth
// service. It is never persisted by this layer.
type Principal struct {
	ID    string
	Email string
}

// StateFunc receives auth-state transitions. A nil principal means signed
// out.
type StateFunc func(*Principal)

// Service is the remote auth provider as consumed by the session layer.
type Service interface {
	// SignIn verifies credentials against the remote service.
	SignIn(ctx context.Context, email, password string) (Principal, error)

	// SignOut ends the current session. Listeners observe the transition.
	SignOut(ctx context.Context) error

	// OnAuthStateChange registers a persistent listener. It fires
	// immediately with the current state (a previously established session
	// on startup reports as signed in) and again on every transition. The
	// returned cancel func removes the listener.
	OnAuthStateChange(fn StateFunc) (cancel func())
}

// StateNotifier implements the listener registry shared by Service
// implementations.
type StateNotifier struct {
	mu        sync.Mutex
	current   *Principal
	listeners map[int]StateFunc
	nextID    int
}

// NewStateNotifier returns an empty notifier in the signed-out state.
func NewStateNotifier() *StateNotifier {
	return &StateNotifier{listeners: make(map[int]StateFunc)}
}

// Current returns the current principal, or nil when signed out.
func (n *StateNotifier) Current() *Principal {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return nil
	}
	p := *n.current
	return &p
}

// Set records the new state and notifies every listener.
func (n *StateNotifier) Set(p *Principal) {
	n.mu.Lock()
	if p != nil {
		cp := *p
		n.current = &cp
	} else {
		n.current = nil
	}
	fns := make([]StateFunc, 0, len(n.listeners))
	for _, fn := range n.listeners {
		fns = append(fns, fn)
	}
	state := n.current
	n.mu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}

// Listen registers a listener, fires it with the current state, and
// returns its cancel func.
func (n *StateNotifier) Listen(fn StateFunc) (cancel func()) {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.listeners[id] = fn
	state := n.current
	n.mu.Unlock()

	fn(state)

	return func() {
		n.mu.Lock()
		delete(n.listeners, id)
		n.mu.Unlock()
	}
}
