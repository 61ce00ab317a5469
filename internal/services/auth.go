package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/araofarias801-dev/araoalvesdefarias036500/internal/config"
	"github.com/araofarias801-dev/araoalvesdefarias036500/internal/models"
	"github.com/araofarias801-dev/araoalvesdefarias036500/internal/store"
	"github.com/araofarias801-dev/araoalvesdefarias036500/pkg/logger"
	"github.com/araofarias801-dev/araoalvesdefarias036500/pkg/response"
)

// Messages returned to clients. Login and refresh failures are worded the
// same whatever the underlying cause, except an expired refresh token.
const (
	MsgUsernameRequired     = "username is required"
	MsgPasswordRequired     = "password is required"
	MsgUsernameTaken        = "username already exists"
	MsgInvalidCredentials   = "invalid credentials"
	MsgRefreshTokenRequired = "refresh token is required"
	MsgInvalidRefreshToken  = "invalid refresh token"
	MsgRefreshTokenExpired  = "refresh token expired"
)

const TokenTypeBearer = "Bearer"

type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type RefreshTokenLedger interface {
	Create(ctx context.Context, token *models.RefreshToken, value string) error
	FindByValue(ctx context.Context, value string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint, reason string, at time.Time) error
	Rotate(ctx context.Context, old, next *models.RefreshToken, nextValue string, at time.Time) error
	ActiveCount(ctx context.Context, userID uint, now time.Time) (int64, error)
}

type TokenIssuer interface {
	IssueAccessToken(subject string, roles []string, now time.Time) (string, time.Time, error)
	IssueRefreshToken() (string, error)
	AccessTokenTTL() time.Duration
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Matches(password, hash string) bool
}

type AuthService struct {
	users       UserRepository
	tokens      RefreshTokenLedger
	issuer      TokenIssuer
	hasher      PasswordHasher
	audit       *AuditLogger
	defaultRole string
	refreshTTL  time.Duration
	now         func() time.Time
}

func NewAuthService(users UserRepository, tokens RefreshTokenLedger, issuer TokenIssuer, hasher PasswordHasher, audit *AuditLogger, jwtCfg *config.JWTConfig, authCfg *config.AuthConfig) *AuthService {
	return &AuthService{
		users:       users,
		tokens:      tokens,
		issuer:      issuer,
		hasher:      hasher,
		audit:       audit,
		defaultRole: authCfg.DefaultRole,
		refreshTTL:  jwtCfg.RefreshTokenTTL(),
		now:         time.Now,
	}
}

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type TokenResponse struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	TokenType        string `json:"tokenType"`
	ExpiresInSeconds int64  `json:"expiresInSeconds"`
}

// ClientInfo describes the caller for audit and refresh token bookkeeping.
type ClientInfo struct {
	IP        string
	UserAgent string
}

// Register creates a user holding the default role.
func (s *AuthService) Register(ctx context.Context, req *CredentialsRequest, client ClientInfo) (*models.User, error) {
	username, password, err := normalizeCredentials(req)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, response.NewConflict(MsgUsernameTaken)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		Roles:        s.defaultRole,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration of the same name.
		if errors.Is(err, store.ErrDuplicate) {
			return nil, response.NewConflict(MsgUsernameTaken)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.audit.Info(ctx, "register", "user registered", username, client, nil)
	return user, nil
}

// Login checks credentials and starts a session with a fresh token pair.
func (s *AuthService) Login(ctx context.Context, req *CredentialsRequest, client ClientInfo) (*TokenResponse, error) {
	username, password, err := normalizeCredentials(req)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.audit.Warning(ctx, "login", "unknown username", username, client, nil)
			return nil, response.NewUnauthorized(MsgInvalidCredentials)
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !s.hasher.Matches(password, user.PasswordHash) {
		s.audit.Warning(ctx, "login", "wrong password", username, client, nil)
		return nil, response.NewUnauthorized(MsgInvalidCredentials)
	}

	now := s.now()
	tokens, next, nextValue, err := s.mint(user, client, now)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Create(ctx, next, nextValue); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	s.audit.Info(ctx, "login", "login succeeded", username, client, nil)
	return tokens, nil
}

// Refresh exchanges an active refresh token for a new pair, consuming it.
func (s *AuthService) Refresh(ctx context.Context, req *RefreshRequest, client ClientInfo) (*TokenResponse, error) {
	value := strings.TrimSpace(req.RefreshToken)
	if value == "" {
		return nil, response.NewValidation(MsgRefreshTokenRequired)
	}

	stored, err := s.tokens.FindByValue(ctx, value)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, response.NewUnauthorized(MsgInvalidRefreshToken)
		}
		return nil, fmt.Errorf("lookup refresh token: %w", err)
	}

	switch stored.State() {
	case models.RefreshTokenExpiredRevoked:
		return nil, response.NewUnauthorized(MsgRefreshTokenExpired)
	case models.RefreshTokenConsumed:
		s.audit.Warning(ctx, "refresh", "consumed refresh token presented", "", client, map[string]uint{"token_id": stored.ID})
		return nil, response.NewUnauthorized(MsgInvalidRefreshToken)
	}

	now := s.now()
	if stored.ExpiredAt(now) {
		err := s.tokens.Revoke(ctx, stored.ID, models.RevokedReasonExpired, now)
		if err != nil && !errors.Is(err, store.ErrAlreadyRevoked) {
			return nil, fmt.Errorf("revoke expired refresh token: %w", err)
		}
		s.audit.Info(ctx, "refresh", "expired refresh token revoked", "", client, map[string]uint{"token_id": stored.ID})
		return nil, response.NewUnauthorized(MsgRefreshTokenExpired)
	}

	user, err := s.users.FindByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, response.NewUnauthorized(MsgInvalidRefreshToken)
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	tokens, next, nextValue, err := s.mint(user, client, now)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Rotate(ctx, stored, next, nextValue, now); err != nil {
		if errors.Is(err, store.ErrAlreadyRevoked) {
			logger.Warn().Uint("token_id", stored.ID).Msg("refresh token rotated concurrently")
			return nil, response.NewUnauthorized(MsgInvalidRefreshToken)
		}
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}

	s.audit.Info(ctx, "refresh", "refresh token rotated", user.Username, client, map[string]uint{"token_id": stored.ID, "replaced_by": next.ID})
	return tokens, nil
}

// EnsureUser creates username with roles unless it already exists.
// It reports whether a user was created.
func (s *AuthService) EnsureUser(ctx context.Context, username, password string, roles []string) (bool, error) {
	username, password, err := normalizeCredentials(&CredentialsRequest{Username: username, Password: password})
	if err != nil {
		return false, err
	}
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return false, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return false, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{Username: username, PasswordHash: hash, Roles: strings.Join(roles, ",")}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return false, nil
		}
		return false, fmt.Errorf("create user: %w", err)
	}
	return true, nil
}

// ActiveSessions counts the refresh tokens username could still redeem.
func (s *AuthService) ActiveSessions(ctx context.Context, username string) (int64, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("lookup user: %w", err)
	}
	return s.tokens.ActiveCount(ctx, user.ID, s.now())
}

// mint issues an access token and an unsaved refresh token row for user.
func (s *AuthService) mint(user *models.User, client ClientInfo, now time.Time) (*TokenResponse, *models.RefreshToken, string, error) {
	access, _, err := s.issuer.IssueAccessToken(user.Username, user.RoleList(), now)
	if err != nil {
		return nil, nil, "", fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.issuer.IssueRefreshToken()
	if err != nil {
		return nil, nil, "", fmt.Errorf("issue refresh token: %w", err)
	}

	row := &models.RefreshToken{
		UserID:      user.ID,
		ExpiresAt:   now.Add(s.refreshTTL),
		CreatedByIP: client.IP,
		UserAgent:   truncate(client.UserAgent, 255),
	}
	return &TokenResponse{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        TokenTypeBearer,
		ExpiresInSeconds: int64(s.issuer.AccessTokenTTL() / time.Second),
	}, row, refresh, nil
}

func normalizeCredentials(req *CredentialsRequest) (string, string, error) {
	username := strings.TrimSpace(req.Username)
	password := strings.TrimSpace(req.Password)
	if username == "" {
		return "", "", response.NewValidation(MsgUsernameRequired)
	}
	if password == "" {
		return "", "", response.NewValidation(MsgPasswordRequired)
	}
	return username, password, nil
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
