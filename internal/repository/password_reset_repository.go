package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"gopherchat/internal/model"
)

type PasswordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

// Replace deletes the user's outstanding tokens and stores the new one, so at
// most one reset token is live per user.
func (r *PasswordResetRepository) Replace(token *model.PasswordResetToken) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", token.UserID).Delete(&model.PasswordResetToken{}).Error; err != nil {
			return err
		}
		return tx.Create(token).Error
	})
	if err != nil {
		return fmt.Errorf("store reset token failed: %w", err)
	}
	return nil
}

func (r *PasswordResetRepository) GetValid(token string, now time.Time) (*model.PasswordResetToken, error) {
	var record model.PasswordResetToken
	err := r.db.Where("token = ? AND used = ? AND expires_at > ?", token, false, now).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query reset token failed: %w", err)
	}
	return &record, nil
}

// Consume updates the user's password hash and marks the token used in one
// transaction.
func (r *PasswordResetRepository) Consume(tokenID, userID uint, passwordHash string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.User{}).Where("id = ?", userID).Update("password_hash", passwordHash).Error; err != nil {
			return err
		}
		return tx.Model(&model.PasswordResetToken{}).Where("id = ?", tokenID).Update("used", true).Error
	})
	if err != nil {
		return fmt.Errorf("consume reset token failed: %w", err)
	}
	return nil
}
