package auth

import (
	"context"

	"github.com/odyssey-erp/ledgerdesk/internal/apiclient"
)

// Authenticator exchanges credentials with the accounting API.
// *apiclient.Client satisfies it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (apiclient.Token, error)
	Logout(ctx context.Context, token string) error
}

// StoreRegistry drops the cached session state of a browser session.
// *session.Registry satisfies it.
type StoreRegistry interface {
	Forget(id string)
}
