package repository

import (
	"time"

	"github.com/ikkim/mventory-backend/internal/app/model"
	"github.com/ikkim/mventory-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PasswordResetRepository interface {
	DeleteByUserID(userID uint) error
	Save(reset *model.ResetToken) error
	FindValidByToken(tokenHash string, now time.Time) (*model.ResetToken, error)
	Consume(id uint) (bool, error)
	DeleteExpired(now time.Time) (int64, error)
}

type passwordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) DeleteByUserID(userID uint) error {
	result := r.db.Where("user_id = ?", userID).Delete(&model.ResetToken{})
	if result.Error != nil {
		logger.Error("Failed to delete reset token in database", result.Error, map[string]interface{}{
			"user_id": userID,
		})
		return result.Error
	}

	logger.Debug("Previous reset tokens deleted", map[string]interface{}{
		"user_id": userID,
		"count":   result.RowsAffected,
	})
	return nil
}

// Save inserts reset, replacing any row for the same user. The unique index on
// user_id keeps one row per user even when two requests race past DeleteByUserID.
func (r *passwordResetRepository) Save(reset *model.ResetToken) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "created_at", "expires_at"}),
	}).Create(reset).Error
	if err != nil {
		logger.Error("Failed to save reset token in database", err, map[string]interface{}{
			"user_id": reset.UserID,
		})
		return err
	}

	logger.Debug("Reset token saved in database", map[string]interface{}{
		"user_id":    reset.UserID,
		"expires_at": reset.ExpiresAt,
	})
	return nil
}

// FindValidByToken returns the row whose hash matches and whose expiry is after now.
func (r *passwordResetRepository) FindValidByToken(tokenHash string, now time.Time) (*model.ResetToken, error) {
	var reset model.ResetToken
	err := r.db.Where("token = ? AND expires_at > ?", tokenHash, now).First(&reset).Error
	if err != nil {
		logLookupError("Failed to find reset token in database", err, nil)
		return nil, err
	}
	return &reset, nil
}

// Consume deletes the row and reports whether this call removed it. Only one of
// several concurrent callers observes true.
func (r *passwordResetRepository) Consume(id uint) (bool, error) {
	result := r.db.Delete(&model.ResetToken{}, id)
	if result.Error != nil {
		logger.Error("Failed to consume reset token in database", result.Error, map[string]interface{}{
			"id": id,
		})
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *passwordResetRepository) DeleteExpired(now time.Time) (int64, error) {
	result := r.db.Where("expires_at <= ?", now).Delete(&model.ResetToken{})
	if result.Error != nil {
		logger.Error("Failed to delete expired reset tokens from database", result.Error)
		return 0, result.Error
	}

	logger.Debug("Expired reset tokens deleted from database", map[string]interface{}{
		"count": result.RowsAffected,
	})
	return result.RowsAffected, nil
}
