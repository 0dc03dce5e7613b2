package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ikkim/mventory-backend/internal/app/model"
	"github.com/ikkim/mventory-backend/internal/app/repository"
	"github.com/ikkim/mventory-backend/pkg/logger"
	"github.com/ikkim/mventory-backend/pkg/mail"
	"github.com/ikkim/mventory-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrMailDeliveryFailed = errors.New("email could not be sent")
)

// DefaultResetTokenExpiry is how long a reset token stays redeemable
const DefaultResetTokenExpiry = 30 * time.Minute

type PasswordResetService interface {
	RequestReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) (*model.User, error)
	PurgeExpired() (int64, error)
}

// PasswordResetOptions configures reset token lifetime and the emailed link
type PasswordResetOptions struct {
	TokenExpiry time.Duration
	FrontendURL string
	From        string
}

type passwordResetService struct {
	resetRepo repository.PasswordResetRepository
	userRepo  repository.UserRepository
	mailer    mail.Sender
	opts      PasswordResetOptions
	now       func() time.Time
}

func NewPasswordResetService(
	resetRepo repository.PasswordResetRepository,
	userRepo repository.UserRepository,
	mailer mail.Sender,
	opts PasswordResetOptions,
) PasswordResetService {
	if opts.TokenExpiry <= 0 {
		opts.TokenExpiry = DefaultResetTokenExpiry
	}
	opts.FrontendURL = strings.TrimRight(opts.FrontendURL, "/")

	return &passwordResetService{
		resetRepo: resetRepo,
		userRepo:  userRepo,
		mailer:    mailer,
		opts:      opts,
		now:       time.Now,
	}
}

// clock returns the current time in UTC so stored and compared expiries share a zone
func (s *passwordResetService) clock() time.Time {
	return s.now().UTC()
}

// RequestReset replaces the user's reset token with a fresh one and emails the link.
// The token row is kept even if the email cannot be sent.
func (s *passwordResetService) RequestReset(ctx context.Context, email string) error {
	email = NormalizeEmail(email)

	logger.Info("Processing password reset request", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Password reset requested for non-existent email", map[string]interface{}{
				"email": email,
			})
			return ErrUserNotFound
		}
		logger.Error("Failed to find user for password reset", err, map[string]interface{}{
			"email": email,
		})
		return err
	}

	// delete before create keeps at most one live token per user
	if err := s.resetRepo.DeleteByUserID(user.ID); err != nil {
		return err
	}

	token, err := util.GenerateResetToken(user.ID)
	if err != nil {
		logger.Error("Failed to generate reset token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	now := s.clock()
	reset := &model.ResetToken{
		UserID:    user.ID,
		Token:     util.HashResetToken(token),
		CreatedAt: now,
		ExpiresAt: now.Add(s.opts.TokenExpiry),
	}
	if err := s.resetRepo.Save(reset); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/resetpassword/%s", s.opts.FrontendURL, token)
	body, err := mail.PasswordResetBody(user.Name, resetURL, s.opts.TokenExpiry)
	if err != nil {
		logger.Error("Failed to render reset email", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	err = s.mailer.Send(ctx, mail.Message{
		From:     s.opts.From,
		To:       []string{user.Email},
		Subject:  mail.PasswordResetSubject,
		HTMLBody: body,
	})
	if err != nil {
		logger.Error("Failed to send reset email", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return fmt.Errorf("%w: %v", ErrMailDeliveryFailed, err)
	}

	logger.Info("Password reset email sent", map[string]interface{}{
		"user_id":    user.ID,
		"expires_at": reset.ExpiresAt,
	})
	return nil
}

// ResetPassword redeems token once. Unknown, expired and already used tokens all
// yield ErrInvalidResetToken.
func (s *passwordResetService) ResetPassword(ctx context.Context, token, newPassword string) (*model.User, error) {
	if token == "" {
		return nil, ErrInvalidResetToken
	}
	if newPassword == "" {
		return nil, ErrMissingFields
	}
	if len(newPassword) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	reset, err := s.resetRepo.FindValidByToken(util.HashResetToken(token), s.clock())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Invalid or expired reset token presented")
			return nil, ErrInvalidResetToken
		}
		return nil, err
	}

	// claim the row first; a concurrent redemption that loses gets false
	consumed, err := s.resetRepo.Consume(reset.ID)
	if err != nil {
		return nil, err
	}
	if !consumed {
		logger.Warn("Reset token already consumed", map[string]interface{}{
			"user_id": reset.UserID,
		})
		return nil, ErrInvalidResetToken
	}

	user, err := s.userRepo.FindByID(reset.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidResetToken
		}
		return nil, err
	}

	hashedPassword, err := util.HashPassword(newPassword)
	if err != nil {
		logger.Error("Failed to hash new password", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}

	user.PasswordHash = hashedPassword
	if err := s.userRepo.Update(user); err != nil {
		logger.Error("Failed to update user password", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}

	logger.Info("Password reset successful", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, nil
}

// PurgeExpired removes reset tokens that can no longer be redeemed
func (s *passwordResetService) PurgeExpired() (int64, error) {
	count, err := s.resetRepo.DeleteExpired(s.clock())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		logger.Info("Expired reset tokens purged", map[string]interface{}{
			"count": count,
		})
	}
	return count, nil
}
