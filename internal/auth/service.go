package auth

import (
	"context"
	"errors"
)

type Service struct {
	store  *Store
	tokens *TokenService
}

func NewService(store *Store, tokens *TokenService) *Service {
	return &Service{store: store, tokens: tokens}
}

func (s *Service) Register(ctx context.Context, username, password string) error {
	return s.store.Register(ctx, username, password)
}

// Login verifies the credentials and mints an access token for the user.
func (s *Service) Login(ctx context.Context, username, password string) (AccessToken, error) {
	id, err := s.store.VerifyCredentials(ctx, username, password)
	if err != nil {
		return AccessToken{}, err
	}

	issued, err := s.tokens.Issue(id.Subject)
	if err != nil {
		return AccessToken{}, err
	}

	return AccessToken{
		AccessToken: issued.Value,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
	}, nil
}

// BootstrapFromEnv registers an initial user when both values are set.
func (s *Service) BootstrapFromEnv(ctx context.Context, username, password string) error {
	if username == "" && password == "" {
		return nil
	}
	if username == "" || password == "" {
		return errors.New("ADMIN_USERNAME and ADMIN_PASSWORD are required together")
	}
	if err := ValidateCredentials(username, password); err != nil {
		return err
	}

	return s.store.Register(ctx, username, password)
}
