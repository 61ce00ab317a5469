package utils

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/araofarias801-dev/araoalvesdefarias036500/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-key-for-testing-32by"

func newTestIssuer(t *testing.T, secret string) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(&config.JWTConfig{
		Secret:             secret,
		Issuer:             "music-api",
		AccessTokenMinutes: 5,
		RefreshTokenDays:   7,
	})
	if err != nil {
		t.Fatalf("NewTokenIssuer() error = %v", err)
	}
	return issuer
}

func TestNewTokenIssuer_RejectsWeakSecret(t *testing.T) {
	secrets := []string{"", "   ", strings.Repeat("x", 20), strings.Repeat("x", 31)}

	for _, secret := range secrets {
		_, err := NewTokenIssuer(&config.JWTConfig{Secret: secret, Issuer: "music-api", AccessTokenMinutes: 5})
		var cfgErr *config.ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Errorf("NewTokenIssuer(%d bytes) error = %v, expected ConfigurationError", len(secret), err)
		}
	}
}

func TestIssueAccessToken(t *testing.T) {
	issuer := newTestIssuer(t, testSecret)
	now := time.Now()

	token, expiresAt, err := issuer.IssueAccessToken("alice", []string{"ROLE_ADMIN", "ROLE_USER"}, now)
	if err != nil {
		t.Fatalf("IssueAccessToken() error = %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Errorf("token %q is not a compact JWS", token)
	}

	claims, err := issuer.VerifyAccessToken(token)
	if err != nil {
		t.Fatalf("VerifyAccessToken() error = %v", err)
	}

	if claims.Subject != "alice" {
		t.Errorf("Subject = %q, expected %q", claims.Subject, "alice")
	}
	if claims.Issuer != "music-api" {
		t.Errorf("Issuer = %q, expected %q", claims.Issuer, "music-api")
	}
	if claims.Roles != "ROLE_ADMIN,ROLE_USER" {
		t.Errorf("Roles = %q, expected comma-joined roles", claims.Roles)
	}
	if !claims.ExpiresAt.Time.Equal(expiresAt) {
		t.Errorf("exp claim %v does not match returned expiry %v", claims.ExpiresAt.Time, expiresAt)
	}
	if got := expiresAt.Sub(claims.IssuedAt.Time); got != 5*time.Minute {
		t.Errorf("lifetime = %v, expected 5m", got)
	}
}

func TestIssueAccessToken_DifferentSubjects(t *testing.T) {
	issuer := newTestIssuer(t, testSecret)
	now := time.Now()

	token1, _, _ := issuer.IssueAccessToken("user1", []string{"ROLE_USER"}, now)
	token2, _, _ := issuer.IssueAccessToken("user2", []string{"ROLE_USER"}, now)

	if token1 == token2 {
		t.Error("different subjects should produce different tokens")
	}
}

func TestVerifyAccessToken_InvalidToken(t *testing.T) {
	issuer := newTestIssuer(t, testSecret)
	invalidTokens := []string{
		"",
		"invalid",
		"not.a.token",
		"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.invalid.signature",
	}

	for _, token := range invalidTokens {
		_, err := issuer.VerifyAccessToken(token)
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("VerifyAccessToken(%q) error = %v, expected ErrInvalidToken", token, err)
		}
	}
}

func TestVerifyAccessToken_WrongSecret(t *testing.T) {
	original := newTestIssuer(t, testSecret)
	other := newTestIssuer(t, strings.Repeat("z", 32))

	token, _, _ := original.IssueAccessToken("user", nil, time.Now())

	if _, err := other.VerifyAccessToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("VerifyAccessToken should fail with wrong secret, got %v", err)
	}
}

func TestVerifyAccessToken_Expired(t *testing.T) {
	issuer := newTestIssuer(t, testSecret)
	issuedAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	token, _, _ := issuer.IssueAccessToken("user", nil, issuedAt)

	issuer.now = func() time.Time { return issuedAt.Add(4 * time.Minute) }
	if _, err := issuer.VerifyAccessToken(token); err != nil {
		t.Errorf("token should be valid before expiry, got %v", err)
	}

	issuer.now = func() time.Time { return issuedAt.Add(6 * time.Minute) }
	if _, err := issuer.VerifyAccessToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token should be rejected, got %v", err)
	}
}

func TestVerifyAccessToken_WrongIssuer(t *testing.T) {
	issuer := newTestIssuer(t, testSecret)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			Subject:   "user",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))

	if _, err := issuer.VerifyAccessToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign issuer should be rejected, got %v", err)
	}
}

func TestVerifyAccessToken_RejectsOtherAlgorithms(t *testing.T) {
	issuer := newTestIssuer(t, testSecret)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "music-api",
			Subject:   "user",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}

	hs512, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	if _, err := issuer.VerifyAccessToken(hs512); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("HS512 token should be rejected, got %v", err)
	}

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := issuer.VerifyAccessToken(none); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("unsigned token should be rejected, got %v", err)
	}
}

func TestVerifyAccessToken_RequiresSubject(t *testing.T) {
	issuer := newTestIssuer(t, testSecret)
	token, _, _ := issuer.IssueAccessToken("", nil, time.Now())

	if _, err := issuer.VerifyAccessToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("token without subject should be rejected, got %v", err)
	}
}

func TestIssueRefreshToken(t *testing.T) {
	issuer := newTestIssuer(t, testSecret)

	token1, err := issuer.IssueRefreshToken()
	if err != nil {
		t.Fatalf("IssueRefreshToken() error = %v", err)
	}
	token2, _ := issuer.IssueRefreshToken()

	if token1 == token2 {
		t.Error("refresh tokens should be unique")
	}
	if strings.ContainsAny(token1, "=+/") {
		t.Errorf("refresh token %q is not unpadded base64url", token1)
	}
	raw, err := base64.RawURLEncoding.DecodeString(token1)
	if err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if len(raw) != 32 {
		t.Errorf("decoded length = %d, expected 32", len(raw))
	}
}

func TestClaims_Roles(t *testing.T) {
	claims := Claims{Roles: "ROLE_ADMIN, ROLE_USER,"}

	roles := claims.RoleList()
	if len(roles) != 2 || roles[0] != "ROLE_ADMIN" || roles[1] != "ROLE_USER" {
		t.Errorf("RoleList() = %v", roles)
	}
	if !claims.HasRole("ROLE_USER") {
		t.Error("HasRole(ROLE_USER) should be true")
	}
	if claims.HasRole("ROLE_AUDITOR") {
		t.Error("HasRole(ROLE_AUDITOR) should be false")
	}
}
