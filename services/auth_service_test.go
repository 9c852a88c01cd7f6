package services

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"nutriportions/models"

	"github.com/golang-jwt/jwt/v5"
)

type fakeMailer struct {
	mu    sync.Mutex
	codes map[string]string
	temps map[string]string
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{codes: map[string]string{}, temps: map[string]string{}}
}

func (m *fakeMailer) SendResetEmail(_ context.Context, to, code string) error {
	m.mu.Lock()
	m.codes[to] = code
	m.mu.Unlock()
	return nil
}

func (m *fakeMailer) SendWelcomeEmail(_ context.Context, to, _, temp string) error {
	m.mu.Lock()
	m.temps[to] = temp
	m.mu.Unlock()
	return nil
}

func TestRegisterLoginAndReset(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	mailer := newFakeMailer()
	logs := newTestLogs(db, time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC))
	auth := NewAuthService(db, "secret", logs, mailer, nil)

	res, err := auth.Register(RegisterRequest{Email: " Noa@Example.com ", Password: "hunter22", Name: "Noa"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.Token == "" || res.Profile.Email != "noa@example.com" || res.Profile.KcalGoal != 1240 || res.Profile.Role != models.RoleUser {
		t.Fatalf("unexpected register result %+v", res.Profile)
	}
	var logCount int64
	db.Model(&models.DailyLog{}).Where("user_id = ? AND date = ?", res.Profile.ID, "2024-05-15").Count(&logCount)
	if logCount != 1 {
		t.Fatalf("expected today's log to be opened, got %d", logCount)
	}

	if _, err := auth.Register(RegisterRequest{Email: "noa@example.com", Password: "hunter22"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := auth.Register(RegisterRequest{Email: "x@example.com", Password: "123"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected short password to fail, got %v", err)
	}
	if _, err := auth.Login("noa@example.com", "wrong"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	if err := auth.ForgotPassword(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("unknown email should succeed silently, got %v", err)
	}
	if err := auth.ForgotPassword(context.Background(), "noa@example.com"); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	code := mailer.codes["noa@example.com"]
	if code == "" {
		t.Fatalf("expected a reset code to be mailed")
	}
	if err := auth.ResetPassword("noa@example.com", "nope", "newpass1"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected wrong code to fail, got %v", err)
	}
	if err := auth.ResetPassword("noa@example.com", code, "newpass1"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := auth.Login("noa@example.com", "newpass1"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if err := auth.ResetPassword("noa@example.com", code, "another1"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected reused code to fail, got %v", err)
	}
}

func TestForgotPasswordWithoutMailer(t *testing.T) {
	t.Parallel()
	auth := NewAuthService(newTestDB(t), "secret", nil, nil, nil)
	if err := auth.ForgotPassword(context.Background(), "a@example.com"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

type jwksFixture struct {
	key *rsa.PrivateKey
	srv *httptest.Server
}

func newJWKS(t *testing.T) *jwksFixture {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	n := base64.RawURLEncoding.EncodeToString(key.N.Bytes())
	e := base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes())
	body := `{"keys":[{"kid":"k1","kty":"RSA","alg":"RS256","n":"` + n + `","e":"` + e + `"}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return &jwksFixture{key: key, srv: srv}
}

func (f *jwksFixture) sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = "k1"
	s, err := tok.SignedString(f.key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestSocialLogin(t *testing.T) {
	t.Parallel()
	fx := newJWKS(t)
	verifier := NewIdentityVerifier(map[string]IdentityProvider{
		"google": {JWKSURL: fx.srv.URL, Issuers: []string{"https://accounts.google.com"}, Audience: "client-1"},
	})
	t.Cleanup(verifier.Close)
	db := newTestDB(t)
	auth := NewAuthService(db, "secret", nil, nil, verifier)

	claims := func(aud, iss, email string) jwt.MapClaims {
		return jwt.MapClaims{
			"sub": "g-123", "aud": aud, "iss": iss, "email": email, "email_verified": true, "name": "Lior",
			"exp": time.Now().Add(time.Hour).Unix(),
		}
	}

	res, err := auth.SocialLogin(context.Background(), "google", fx.sign(t, claims("client-1", "https://accounts.google.com", "Lior@Example.com")), "")
	if err != nil {
		t.Fatalf("social login: %v", err)
	}
	if res.Profile.Email != "lior@example.com" || res.Profile.AuthProvider != "google" || res.Profile.Name != "Lior" {
		t.Fatalf("unexpected profile %+v", res.Profile)
	}
	again, err := auth.SocialLogin(context.Background(), "google", fx.sign(t, claims("client-1", "https://accounts.google.com", "lior@example.com")), "")
	if err != nil {
		t.Fatalf("second social login: %v", err)
	}
	if again.Profile.ID != res.Profile.ID {
		t.Fatalf("expected the same profile on second sign-in")
	}

	if _, err := auth.SocialLogin(context.Background(), "google", fx.sign(t, claims("other", "https://accounts.google.com", "a@example.com")), ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected wrong audience to fail, got %v", err)
	}
	if _, err := auth.SocialLogin(context.Background(), "google", fx.sign(t, claims("client-1", "https://evil.example", "a@example.com")), ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected untrusted issuer to fail, got %v", err)
	}
	if _, err := auth.SocialLogin(context.Background(), "apple", "x.y.z", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected disabled provider to fail, got %v", err)
	}
}

func TestSocialLoginRequiresVerifiedEmail(t *testing.T) {
	t.Parallel()
	fx := newJWKS(t)
	verifier := NewIdentityVerifier(map[string]IdentityProvider{
		"google": {JWKSURL: fx.srv.URL, Issuers: []string{"https://accounts.google.com"}, Audience: "client-1"},
		"apple":  {JWKSURL: fx.srv.URL, Issuers: []string{"https://appleid.apple.com"}, Audience: "client-1"},
	})
	t.Cleanup(verifier.Close)
	db := newTestDB(t)
	auth := NewAuthService(db, "secret", nil, nil, verifier)

	owner, err := auth.Register(RegisterRequest{Email: "owner@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	token := func(iss string, verified any) string {
		c := jwt.MapClaims{
			"sub": "s-1", "aud": "client-1", "iss": iss, "email": "owner@example.com",
			"exp": time.Now().Add(time.Hour).Unix(),
		}
		if verified != nil {
			c["email_verified"] = verified
		}
		return fx.sign(t, c)
	}

	for _, v := range []any{false, "false", nil} {
		if _, err := auth.SocialLogin(context.Background(), "google", token("https://accounts.google.com", v), ""); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("email_verified=%v: expected unauthorized, got %v", v, err)
		}
	}

	res, err := auth.SocialLogin(context.Background(), "apple", token("https://appleid.apple.com", "true"), "")
	if err != nil {
		t.Fatalf("apple string claim: %v", err)
	}
	if res.Profile.ID != owner.Profile.ID {
		t.Fatalf("expected the verified owner to reach profile %d, got %d", owner.Profile.ID, res.Profile.ID)
	}
}
