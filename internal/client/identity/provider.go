package identity

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/studysync/internal/client/models"
)

var (
	// ErrFlowCancelled is returned when the user abandons an interactive
	// sign-in flow.
	ErrFlowCancelled = errors.New("sign-in flow cancelled")
	// ErrNoSession is returned by IDToken when nobody is signed in.
	ErrNoSession = errors.New("no active session")
)

// Listener receives the new principal after every identity change; nil
// means signed out.
type Listener func(p *models.Principal)

// Provider is the identity provider consumed by the session layer.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*models.Principal, error)
	SignInInteractive(ctx context.Context) (*models.Principal, error)
	SignUp(ctx context.Context, email, password string) (*models.Principal, error)
	UpdateDisplayName(ctx context.Context, name string) error
	SendPasswordReset(ctx context.Context, email string) error
	SignOut()

	// IDToken returns a bearer token for the current principal, refreshing
	// it when it is about to expire.
	IDToken(ctx context.Context) (string, error)
	Current() *models.Principal

	// Subscribe registers fn for identity changes and returns the function
	// that removes it.
	Subscribe(fn Listener) (unsubscribe func())

	// Restore resolves the initial identity from persisted state and
	// notifies subscribers once with the outcome.
	Restore(ctx context.Context) error
}

// InteractiveFlow obtains a federated credential from the user, for example
// by opening a browser or asking for a pasted token. It returns the
// signInWithIdp post body and request URI, or ErrFlowCancelled.
type InteractiveFlow interface {
	Credential(ctx context.Context) (postBody, requestURI string, err error)
}

// SessionStore persists the provider refresh token between runs.
type SessionStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, refreshToken string) error
	Clear(ctx context.Context) error
}
