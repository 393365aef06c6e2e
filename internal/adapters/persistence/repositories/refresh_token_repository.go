package repositories

import (
	"context"
	"time"

	"libris-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// GormRefreshTokenRepository handles refresh token data access
type GormRefreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository creates a new refresh token repository
func NewRefreshTokenRepository(db *gorm.DB) *GormRefreshTokenRepository {
	return &GormRefreshTokenRepository{db: db}
}

// Create creates a new refresh token
func (r *GormRefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	return dbFrom(ctx, r.db).Create(token).Error
}

// GetByTokenHash gets a refresh token by its hash
func (r *GormRefreshTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	err := dbFrom(ctx, r.db).Where("token_hash = ?", tokenHash).First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// Revoke marks a refresh token as revoked
func (r *GormRefreshTokenRepository) Revoke(ctx context.Context, id uint) error {
	now := time.Now()
	return dbFrom(ctx, r.db).
		Model(&models.RefreshToken{}).
		Where("id = ?", id).
		Update("revoked_at", &now).Error
}

// RevokeByTokenHash revokes a refresh token by its hash
func (r *GormRefreshTokenRepository) RevokeByTokenHash(ctx context.Context, tokenHash string) error {
	now := time.Now()
	return dbFrom(ctx, r.db).
		Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", tokenHash).
		Update("revoked_at", &now).Error
}

// RevokeAllByUserID revokes every active token of a user
func (r *GormRefreshTokenRepository) RevokeAllByUserID(ctx context.Context, userID uint) error {
	now := time.Now()
	return dbFrom(ctx, r.db).
		Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", &now).Error
}

// DeleteExpired removes tokens past their expiry
func (r *GormRefreshTokenRepository) DeleteExpired(ctx context.Context) error {
	return dbFrom(ctx, r.db).
		Where("expires_at < ?", time.Now()).
		Delete(&models.RefreshToken{}).Error
}
