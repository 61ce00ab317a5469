package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/araofarias801-dev/araoalvesdefarias036500/internal/models"
	"gorm.io/gorm"
)

// RefreshTokenStore is the only writer of refresh token rows. Token values
// are never stored, only their SHA-256 digest.
type RefreshTokenStore struct {
	db *gorm.DB
}

func NewRefreshTokenStore(db *gorm.DB) *RefreshTokenStore {
	return &RefreshTokenStore{db: db}
}

// HashToken returns the hex SHA-256 digest a token value is stored under.
func HashToken(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

// Create stores token under the digest of value.
func (s *RefreshTokenStore) Create(ctx context.Context, token *models.RefreshToken, value string) error {
	token.TokenHash = HashToken(value)
	if err := s.db.WithContext(ctx).Create(token).Error; err != nil {
		return translate(err)
	}
	return nil
}

// FindByValue returns the row issued for value.
func (s *RefreshTokenStore) FindByValue(ctx context.Context, value string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	if err := s.db.WithContext(ctx).Where("token_hash = ?", HashToken(value)).First(&token).Error; err != nil {
		return nil, translate(err)
	}
	return &token, nil
}

// Revoke marks the row revoked if it is not already. ErrAlreadyRevoked
// means another caller won.
func (s *RefreshTokenStore) Revoke(ctx context.Context, id uint, reason string, at time.Time) error {
	return revoke(s.db.WithContext(ctx), id, reason, at)
}

// Rotate revokes old and stores next in one transaction. Only one of any
// number of concurrent rotations of old can succeed; the rest get
// ErrAlreadyRevoked and persist nothing.
func (s *RefreshTokenStore) Rotate(ctx context.Context, old, next *models.RefreshToken, nextValue string, at time.Time) error {
	next.TokenHash = HashToken(nextValue)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := revoke(tx, old.ID, models.RevokedReasonRotated, at); err != nil {
			return err
		}
		if err := tx.Create(next).Error; err != nil {
			return translate(err)
		}
		return tx.Model(&models.RefreshToken{}).
			Where("id = ?", old.ID).
			Update("replaced_by_token_id", next.ID).Error
	})
}

// Prune deletes rows that were revoked or expired before cutoff.
func (s *RefreshTokenStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("(revoked = ? AND revoked_at < ?) OR expires_at < ?", true, cutoff, cutoff).
		Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}

// ActiveCount returns rows belonging to userID that are neither revoked
// nor expired at now.
func (s *RefreshTokenStore) ActiveCount(ctx context.Context, userID uint, now time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked = ? AND expires_at >= ?", userID, false, now).
		Count(&n).Error
	return n, err
}

func revoke(db *gorm.DB, id uint, reason string, at time.Time) error {
	result := db.Model(&models.RefreshToken{}).
		Where("id = ? AND revoked = ?", id, false).
		Updates(map[string]interface{}{
			"revoked":        true,
			"revoked_at":     at,
			"revoked_reason": reason,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAlreadyRevoked
	}
	return nil
}
