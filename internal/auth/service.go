package auth

import (
	"context"
	"errors"

	"github.com/odyssey-erp/ledgerdesk/internal/apiclient"
	"github.com/odyssey-erp/ledgerdesk/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	api Authenticator
}

// NewService constructs a new Service.
func NewService(api Authenticator) *Service {
	return &Service{api: api}
}

// Authenticate validates email/password credentials against the API and
// returns the issued access token.
func (s *Service) Authenticate(ctx context.Context, email, password string) (apiclient.Token, error) {
	token, err := s.api.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			return apiclient.Token{}, shared.ErrInvalidCredentials
		}
		return apiclient.Token{}, err
	}
	return token, nil
}

// SignOut revokes the access token at the API.
func (s *Service) SignOut(ctx context.Context, token string) error {
	return s.api.Logout(ctx, token)
}
