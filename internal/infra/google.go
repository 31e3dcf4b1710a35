// README: Google Sign-In ID-token verification.
package infra

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"
)

var (
	// ErrInvalidAssertion covers signature, audience, and expiry failures.
	ErrInvalidAssertion = errors.New("invalid identity assertion")
	// ErrUnverifiedEmail is returned when Google reports the email as unconfirmed.
	ErrUnverifiedEmail = errors.New("email not verified with google")
)

// Identity is the verified identity extracted from a Google ID token.
type Identity struct {
	SubjectID string
	Email     string
	Name      string
}

// TokenVerifier verifies a raw Google ID token string and returns the identity it asserts.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*Identity, error)
}

// googleVerifier is the production implementation backed by Google's tokeninfo keys.
type googleVerifier struct {
	audience string
}

// NewGoogleVerifier creates a TokenVerifier that validates tokens issued for the
// given OAuth client ID.
func NewGoogleVerifier(clientID string) TokenVerifier {
	return &googleVerifier{audience: clientID}
}

func (v *googleVerifier) VerifyIDToken(ctx context.Context, token string) (*Identity, error) {
	payload, err := idtoken.Validate(ctx, token, v.audience)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssertion, err)
	}
	if verified, _ := payload.Claims["email_verified"].(bool); !verified {
		return nil, ErrUnverifiedEmail
	}
	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	return &Identity{
		SubjectID: payload.Subject,
		Email:     email,
		Name:      name,
	}, nil
}
