package auth

import (
	"context"
	"fmt"
	"sync"
)

// FakeService is an in-memory Service for tests and local development.
type FakeService struct {
	notifier *StateNotifier

	mu    sync.Mutex
	users map[string]fakeUser // keyed by email
	// SignInErr, when set, makes every SignIn fail with it.
	SignInErr error
}

type fakeUser struct {
	id       string
	password string
}

// NewFakeService returns an empty fake in the signed-out state.
func NewFakeService() *FakeService {
	return &FakeService{
		notifier: NewStateNotifier(),
		users:    make(map[string]fakeUser),
	}
}

// Register adds a user the fake will accept credentials for.
func (s *FakeService) Register(id, email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = fakeUser{id: id, password: password}
}

// SignIn implements Service.
func (s *FakeService) SignIn(ctx context.Context, email, password string) (Principal, error) {
	if err := ctx.Err(); err != nil {
		return Principal{}, err
	}

	s.mu.Lock()
	injected := s.SignInErr
	u, ok := s.users[email]
	s.mu.Unlock()

	if injected != nil {
		return Principal{}, injected
	}
	if !ok || u.password != password {
		return Principal{}, fmt.Errorf("invalid credentials for %s", email)
	}

	p := Principal{ID: u.id, Email: email}
	s.notifier.Set(&p)
	return p, nil
}

// SignOut implements Service.
func (s *FakeService) SignOut(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.notifier.Set(nil)
	return nil
}

// OnAuthStateChange implements Service.
func (s *FakeService) OnAuthStateChange(fn StateFunc) (cancel func()) {
	return s.notifier.Listen(fn)
}

// Current exposes the current principal for assertions.
func (s *FakeService) Current() *Principal {
	return s.notifier.Current()
}
