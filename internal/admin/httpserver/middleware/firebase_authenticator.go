package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	firebaseauth "firebase.google.com/go/v4/auth"
)

// FirebaseTokenVerifier abstracts the Firebase Admin SDK client for testability.
type FirebaseTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
}

// FirebaseAuthenticator validates Firebase ID tokens and maps them onto a User.
// The verified token itself is kept as User.Token so downstream API calls can
// forward the caller's identity.
type FirebaseAuthenticator struct {
	verifier FirebaseTokenVerifier
}

// NewFirebaseAuthenticator constructs an Authenticator backed by the provided verifier.
func NewFirebaseAuthenticator(verifier FirebaseTokenVerifier) *FirebaseAuthenticator {
	if verifier == nil {
		panic("firebase token verifier is required")
	}
	return &FirebaseAuthenticator{verifier: verifier}
}

// Authenticate verifies the supplied ID token using Firebase and builds a User object.
func (f *FirebaseAuthenticator) Authenticate(r *http.Request, token string) (*User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrUnauthorized
	}

	verified, err := f.verifier.VerifyIDToken(r.Context(), token)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}

	return &User{
		UID:   verified.UID,
		Email: claimString(verified.Claims["email"]),
		Token: token,
	}, nil
}

func claimString(value any) string {
	s, _ := value.(string)
	return strings.TrimSpace(s)
}
