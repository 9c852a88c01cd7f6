package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// IdentityProvider describes how to verify one provider's ID tokens.
type IdentityProvider struct {
	JWKSURL  string
	Issuers  []string
	Audience string
}

func GoogleProvider(clientID string) IdentityProvider {
	return IdentityProvider{
		JWKSURL:  "https://www.googleapis.com/oauth2/v3/certs",
		Issuers:  []string{"accounts.google.com", "https://accounts.google.com"},
		Audience: clientID,
	}
}

func AppleProvider(clientID string) IdentityProvider {
	return IdentityProvider{
		JWKSURL:  "https://appleid.apple.com/auth/keys",
		Issuers:  []string{"https://appleid.apple.com"},
		Audience: clientID,
	}
}

// Identity is the verified subject of an ID token.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// IdentityVerifier checks RS256 ID tokens against the provider's JWKS.
// Key sets are fetched on first use and refreshed in the background until
// Close.
type IdentityVerifier struct {
	providers map[string]IdentityProvider

	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	keys map[string]keyfunc.Keyfunc
}

func NewIdentityVerifier(providers map[string]IdentityProvider) *IdentityVerifier {
	ctx, cancel := context.WithCancel(context.Background())
	return &IdentityVerifier{
		providers: providers,
		ctx:       ctx,
		cancel:    cancel,
		keys:      make(map[string]keyfunc.Keyfunc),
	}
}

// Close stops the background key refreshes.
func (v *IdentityVerifier) Close() { v.cancel() }

func (v *IdentityVerifier) keyfunc(url string) (keyfunc.Keyfunc, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if k, ok := v.keys[url]; ok {
		return k, nil
	}
	k, err := keyfunc.NewDefaultCtx(v.ctx, []string{url})
	if err != nil {
		return nil, fmt.Errorf("load jwks %s: %w", url, err)
	}
	v.keys[url] = k
	return k, nil
}

func (v *IdentityVerifier) Verify(ctx context.Context, provider, raw string) (*Identity, error) {
	p, ok := v.providers[provider]
	if !ok || p.Audience == "" {
		return nil, fmt.Errorf("%w: provider %q not enabled", ErrInvalidInput, provider)
	}
	kf, err := v.keyfunc(p.JWKSURL)
	if err != nil {
		return nil, err
	}

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(raw, claims, kf.Keyfunc,
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(p.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	iss, _ := claims.GetIssuer()
	trusted := false
	for _, i := range p.Issuers {
		if iss == i {
			trusted = true
			break
		}
	}
	if !trusted {
		return nil, fmt.Errorf("%w: untrusted issuer %q", ErrUnauthorized, iss)
	}

	sub, _ := claims.GetSubject()
	email, _ := claims["email"].(string)
	if email == "" {
		return nil, fmt.Errorf("%w: token carries no email", ErrInvalidInput)
	}
	if !emailVerified(claims["email_verified"]) {
		return nil, fmt.Errorf("%w: email %s is not verified by %s", ErrUnauthorized, email, provider)
	}
	name, _ := claims["name"].(string)
	return &Identity{Subject: sub, Email: strings.ToLower(email), Name: name}, nil
}

// emailVerified accepts Google's boolean and Apple's "true" string.
func emailVerified(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(b, "true")
	}
	return false
}
