package models

import "time"

// RefreshTokenState is derived from the persisted row, never stored.
type RefreshTokenState string

const (
	RefreshTokenActive         RefreshTokenState = "ACTIVE"
	RefreshTokenConsumed       RefreshTokenState = "CONSUMED"
	RefreshTokenExpiredRevoked RefreshTokenState = "EXPIRED_REVOKED"
)

// Reasons recorded when a refresh token is revoked.
const (
	RevokedReasonRotated = "rotated"
	RevokedReasonExpired = "expired"
)

// RefreshToken is one issued refresh token. Revoked only ever moves from
// false to true; rows are kept for audit.
type RefreshToken struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	UserID            uint       `gorm:"index;not null" json:"user_id"`
	User              User       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	TokenHash         string     `gorm:"uniqueIndex;size:64;not null" json:"-"`
	ExpiresAt         time.Time  `gorm:"index;not null" json:"expires_at"`
	Revoked           bool       `gorm:"not null;default:false;index" json:"revoked"`
	RevokedAt         *time.Time `gorm:"index" json:"revoked_at,omitempty"`
	RevokedReason     string     `gorm:"size:20" json:"revoked_reason,omitempty"`
	ReplacedByTokenID *uint      `gorm:"index" json:"replaced_by_token_id,omitempty"`
	CreatedByIP       string     `gorm:"size:64" json:"created_by_ip,omitempty"`
	UserAgent         string     `gorm:"size:255" json:"user_agent,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (RefreshToken) TableName() string { return "refresh_tokens" }

// State reports where the token sits in its lifecycle. An unrevoked row
// past its expiry is still ACTIVE until someone presents it and the
// expiry revoke is persisted.
func (t *RefreshToken) State() RefreshTokenState {
	if !t.Revoked {
		return RefreshTokenActive
	}
	if t.RevokedReason == RevokedReasonExpired {
		return RefreshTokenExpiredRevoked
	}
	return RefreshTokenConsumed
}

// ExpiredAt reports whether the token's expiry lies strictly before now.
func (t *RefreshToken) ExpiredAt(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
