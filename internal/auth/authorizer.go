package auth

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/authorizerdev/authorizer-go"
	"github.com/kaziflow/kazi-sync/internal/config"
	"github.com/kaziflow/kazi-sync/internal/utils"
)

// AuthorizerService implements Service against a hosted Authorizer
// instance via the authorizer-go SDK.
type AuthorizerService struct {
	client   *authorizer.AuthorizerClient
	notifier *StateNotifier

	mu          sync.Mutex
	accessToken string
}

// NewAuthorizerService pings the Authorizer service and creates the SDK
// client.
func NewAuthorizerService(cfg *config.Config) (*AuthorizerService, error) {
	if err := utils.PingAuthorizer(cfg.AuthzURL); err != nil {
		return nil, fmt.Errorf("authorizer ping failed: %w", err)
	}

	log.Printf("Initializing Authorizer: authorizerURL=%s, clientID=%s, redirectURL=%s",
		cfg.AuthzURL, cfg.AuthzClientID, cfg.AuthzRedirectURL)

	client, err := authorizer.NewAuthorizerClient(cfg.AuthzClientID, cfg.AuthzURL, cfg.AuthzRedirectURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create authorizer client: %w", err)
	}

	return &AuthorizerService{
		client:   client,
		notifier: NewStateNotifier(),
	}, nil
}

// SignIn implements Service.
func (s *AuthorizerService) SignIn(ctx context.Context, email, password string) (Principal, error) {
	if err := ctx.Err(); err != nil {
		return Principal{}, err
	}

	res, err := s.client.Login(&authorizer.LoginInput{
		Email:    &email,
		Password: password,
	})
	if err != nil {
		return Principal{}, fmt.Errorf("authorizer login failed: %w", err)
	}
	if res == nil || res.User == nil {
		return Principal{}, fmt.Errorf("authorizer login returned no user")
	}

	s.mu.Lock()
	if res.AccessToken != nil {
		s.accessToken = *res.AccessToken
	}
	s.mu.Unlock()

	p := Principal{ID: res.User.ID, Email: res.User.Email}
	s.notifier.Set(&p)
	return p, nil
}

// SignOut implements Service. The remote logout failure is logged but the
// local session still transitions to signed out.
func (s *AuthorizerService) SignOut(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	token := s.accessToken
	s.accessToken = ""
	s.mu.Unlock()

	if token != "" {
		headers := map[string]string{"Authorization": "Bearer " + token}
		if _, err := s.client.Logout(headers); err != nil {
			log.Printf("Authorizer logout failed: %v", err)
		}
	}

	s.notifier.Set(nil)
	return nil
}

// OnAuthStateChange implements Service.
func (s *AuthorizerService) OnAuthStateChange(fn StateFunc) (cancel func()) {
	return s.notifier.Listen(fn)
}

// ValidateSession validates a session cookie for the given roles and
// returns the user payload from the Authorizer response.
func (s *AuthorizerService) ValidateSession(cookie string, roles []string) (map[string]interface{}, error) {
	rolesPtrs := make([]*string, len(roles))
	for i := range roles {
		rolesPtrs[i] = &roles[i]
	}

	res, err := s.client.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: cookie,
		Roles:  rolesPtrs,
	})
	if err != nil {
		return nil, fmt.Errorf("session validation failed: %w", err)
	}
	if res == nil || !res.IsValid {
		return nil, fmt.Errorf("session is not valid")
	}

	return map[string]interface{}{
		"is_valid": res.IsValid,
		"user":     res.User,
	}, nil
}
