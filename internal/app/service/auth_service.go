package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ikkim/mventory-backend/internal/app/model"
	"github.com/ikkim/mventory-backend/internal/app/repository"
	apperrors "github.com/ikkim/mventory-backend/internal/errors"
	"github.com/ikkim/mventory-backend/pkg/logger"
	"github.com/ikkim/mventory-backend/pkg/util"
	"gorm.io/gorm"
)

const (
	MinPasswordLength = 6
	MaxBioLength      = 250
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrMissingFields      = errors.New("required fields missing")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrBioTooLong         = errors.New("bio too long")
	ErrWrongPassword      = errors.New("old password is not correct")
	ErrInvalidSession     = errors.New("invalid session")
	ErrSessionExpired     = errors.New("session expired")
	ErrSessionRevoked     = errors.New("session revoked")
)

// SessionDenylist remembers logged-out session token ids until they expire.
type SessionDenylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// ProfileUpdate holds the editable profile fields. An empty field keeps the stored value.
type ProfileUpdate struct {
	Name  string
	Photo string
	Phone string
	Bio   string
}

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	Logout(ctx context.Context, token string) error
	ValidateSession(ctx context.Context, token string) (*model.User, error)
	IsLoggedIn(ctx context.Context, token string) bool
	GetUserByID(id uint) (*model.User, error)
	UpdateProfile(userID uint, update ProfileUpdate) (*model.User, error)
	ChangePassword(userID uint, oldPassword, newPassword string) error
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *util.SessionTokens
	denylist SessionDenylist
}

// NewAuthService wires the credential store and session tokens. denylist may be
// nil, in which case logout only clears the client cookie.
func NewAuthService(
	userRepo repository.UserRepository,
	tokens *util.SessionTokens,
	denylist SessionDenylist,
) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		denylist: denylist,
	}
}

// NormalizeEmail trims and lower-cases an address before storage or lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, name, email, password string) (*model.User, string, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)

	logger.Info("Attempting user registration", map[string]interface{}{
		"email": email,
	})

	if name == "" || email == "" || password == "" {
		return nil, "", ErrMissingFields
	}
	if len(password) < MinPasswordLength {
		return nil, "", ErrPasswordTooShort
	}

	existingUser, err := s.userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing user", err, map[string]interface{}{
			"email": email,
		})
		return nil, "", err
	}
	if existingUser != nil {
		logger.Warn("Registration failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, "", ErrEmailAlreadyExists
	}

	hashedPassword, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, "", err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashedPassword,
	}
	user.ApplyDefaults()

	if err := s.userRepo.Create(user); err != nil {
		// a concurrent registration can win the unique index after our lookup
		if apperrors.IsDuplicateKey(err) {
			return nil, "", ErrEmailAlreadyExists
		}
		return nil, "", err
	}

	token, _, err := s.tokens.Issue(user.ID)
	if err != nil {
		logger.Error("Failed to issue session token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, "", err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
	})

	return user, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = NormalizeEmail(email)

	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	if email == "" || password == "" {
		return nil, "", ErrMissingFields
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, "", ErrInvalidCredentials
		}
		logger.Error("Failed to find user", err, map[string]interface{}{
			"email": email,
		})
		return nil, "", err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, "", ErrInvalidCredentials
	}

	token, _, err := s.tokens.Issue(user.ID)
	if err != nil {
		logger.Error("Failed to issue session token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, "", err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
	})

	return user, token, nil
}

// Logout revokes token in the denylist when one is configured. Missing or
// invalid tokens are not an error; there is nothing to revoke.
func (s *authService) Logout(ctx context.Context, token string) error {
	if s.denylist == nil || token == "" {
		return nil
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil
	}

	if err := s.denylist.Revoke(ctx, claims.ID, s.tokens.RemainingLifetime(claims)); err != nil {
		logger.Error("Failed to revoke session token", err, map[string]interface{}{
			"user_id": claims.UserID,
		})
		return err
	}

	logger.Info("Session token revoked", map[string]interface{}{
		"user_id": claims.UserID,
	})
	return nil
}

// ValidateSession resolves token to its user. It never mutates state.
func (s *authService) ValidateSession(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, util.ErrExpiredToken) {
			return nil, ErrSessionExpired
		}
		return nil, ErrInvalidSession
	}

	if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			// fail closed: an unknown revocation state is not a valid session
			return nil, err
		}
		if revoked {
			return nil, ErrSessionRevoked
		}
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Session references a missing user", map[string]interface{}{
				"user_id": claims.UserID,
			})
			return nil, ErrInvalidSession
		}
		return nil, err
	}

	return user, nil
}

func (s *authService) IsLoggedIn(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return false
	}
	if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil || revoked {
			return false
		}
	}
	return true
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("User not found", map[string]interface{}{
				"user_id": id,
			})
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to fetch user", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}
	return user, nil
}

func (s *authService) UpdateProfile(userID uint, update ProfileUpdate) (*model.User, error) {
	logger.Info("Updating user profile", map[string]interface{}{
		"user_id": userID,
	})

	if len([]rune(update.Bio)) > MaxBioLength {
		return nil, ErrBioTooLong
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	updated := false
	apply := func(dst *string, v string) {
		v = strings.TrimSpace(v)
		if v != "" && v != *dst {
			*dst = v
			updated = true
		}
	}
	apply(&user.Name, update.Name)
	apply(&user.Photo, update.Photo)
	apply(&user.Phone, update.Phone)
	apply(&user.Bio, update.Bio)

	if !updated {
		logger.Debug("No changes detected for user profile", map[string]interface{}{
			"user_id": userID,
		})
		return user, nil
	}

	if err := s.userRepo.Update(user); err != nil {
		logger.Error("Failed to update user profile", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("User profile updated successfully", map[string]interface{}{
		"user_id": user.ID,
	})

	return user, nil
}

func (s *authService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	if oldPassword == "" || newPassword == "" {
		return ErrMissingFields
	}
	if len(newPassword) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	if !util.VerifyPassword(user.PasswordHash, oldPassword) {
		logger.Warn("Password change failed: old password mismatch", map[string]interface{}{
			"user_id": userID,
		})
		return ErrWrongPassword
	}

	hashedPassword, err := util.HashPassword(newPassword)
	if err != nil {
		logger.Error("Failed to hash new password", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}

	user.PasswordHash = hashedPassword
	if err := s.userRepo.Update(user); err != nil {
		logger.Error("Failed to update user password", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}

	logger.Info("Password changed successfully", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}
