package utils

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/araofarias801-dev/araoalvesdefarias036500/internal/config"
	"github.com/araofarias801-dev/araoalvesdefarias036500/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for every access token that fails
// verification, whatever the reason.
var ErrInvalidToken = errors.New("invalid or expired token")

const refreshTokenBytes = 32

// Claims is the access token payload. Roles travels comma-joined.
type Claims struct {
	Roles string `json:"roles"`
	jwt.RegisteredClaims
}

// RoleList returns the roles claim as a slice.
func (c *Claims) RoleList() []string {
	return models.SplitRoles(c.Roles)
}

// HasRole reports whether role is present in the roles claim.
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.RoleList() {
		if r == role {
			return true
		}
	}
	return false
}

// TokenIssuer mints HS256 access tokens and opaque refresh tokens.
type TokenIssuer struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration
	now       func() time.Time
}

// NewTokenIssuer validates the signing secret and returns an issuer.
// A missing or short secret is a *config.ConfigurationError.
func NewTokenIssuer(cfg *config.JWTConfig) (*TokenIssuer, error) {
	secret := []byte(cfg.Secret)
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, &config.ConfigurationError{Field: "jwt.secret", Reason: "is required"}
	}
	if len(secret) < config.MinSecretBytes {
		return nil, &config.ConfigurationError{Field: "jwt.secret", Reason: "must be at least 32 bytes"}
	}
	if cfg.AccessTokenMinutes <= 0 {
		return nil, &config.ConfigurationError{Field: "jwt.access_token_minutes", Reason: "must be positive"}
	}
	return &TokenIssuer{
		secret:    secret,
		issuer:    cfg.Issuer,
		accessTTL: cfg.AccessTokenTTL(),
		now:       time.Now,
	}, nil
}

// AccessTokenTTL returns the lifetime stamped into new access tokens.
func (i *TokenIssuer) AccessTokenTTL() time.Duration {
	return i.accessTTL
}

// IssueAccessToken signs a claim set for subject valid from now for the
// configured lifetime.
func (i *TokenIssuer) IssueAccessToken(subject string, roles []string, now time.Time) (string, time.Time, error) {
	// JWT NumericDate has second precision; truncate so the returned
	// expiry matches what a verifier will read back.
	issuedAt := now.Truncate(time.Second)
	expiresAt := issuedAt.Add(i.accessTTL)

	claims := Claims{
		Roles: strings.Join(roles, ","),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// IssueRefreshToken returns 32 random bytes, base64url without padding.
func (i *TokenIssuer) IssueRefreshToken() (string, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// VerifyAccessToken checks signature, algorithm, issuer and expiry.
func (i *TokenIssuer) VerifyAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
