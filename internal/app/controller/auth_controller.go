package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/mventory-backend/internal/app/model"
	"github.com/ikkim/mventory-backend/internal/app/service"
	apperrors "github.com/ikkim/mventory-backend/internal/errors"
	"github.com/ikkim/mventory-backend/internal/middleware"
	"github.com/ikkim/mventory-backend/pkg/util"
)

// CookieConfig controls the session cookie attributes
type CookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

type AuthController struct {
	authService          service.AuthService
	passwordResetService service.PasswordResetService
	cookie               CookieConfig
}

func NewAuthController(
	authService service.AuthService,
	passwordResetService service.PasswordResetService,
	cookie CookieConfig,
) *AuthController {
	if cookie.MaxAge <= 0 {
		cookie.MaxAge = util.DefaultSessionExpiry
	}
	return &AuthController{
		authService:          authService,
		passwordResetService: passwordResetService,
		cookie:               cookie,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Photo string `json:"photo"`
	Phone string `json:"phone"`
	Bio   string `json:"bio" binding:"max=250"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	Password    string `json:"password" binding:"required,min=6"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=6"`
}

// UserResponse is the public view of a user. Token is only set on register and login.
type UserResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo string `json:"photo"`
	Phone string `json:"phone"`
	Bio   string `json:"bio"`
	Token string `json:"token,omitempty"`
}

func newUserResponse(user *model.User, token string) UserResponse {
	return UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Photo: user.Photo,
		Phone: user.Phone,
		Bio:   user.Bio,
		Token: token,
	}
}

// setSessionCookie writes the session cookie; a zero expiry clears it.
func (ctrl *AuthController) setSessionCookie(c *gin.Context, token string, expires time.Time) {
	sameSite := http.SameSiteNoneMode
	if !ctrl.cookie.Secure {
		// browsers drop SameSite=None cookies that are not Secure
		sameSite = http.SameSiteLaxMode
	}

	cookie := &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   ctrl.cookie.Secure,
		SameSite: sameSite,
	}
	if token == "" {
		cookie.Expires = time.Unix(0, 0)
		cookie.MaxAge = -1
	} else {
		cookie.MaxAge = int(ctrl.cookie.MaxAge.Seconds())
	}
	http.SetCookie(c.Writer, cookie)
}

// bindingMessage picks a user-facing message for a rejected request body
func bindingMessage(err error, fallback string) string {
	switch {
	case apperrors.HasRule(err, "required"):
		return fallback
	case apperrors.HasRule(err, "email"):
		return "Please enter a valid email"
	case apperrors.HasRule(err, "min"):
		return "Password must be at least 6 characters"
	case apperrors.HasRule(err, "max"):
		return "Bio must not be more than 250 characters"
	}
	return fallback
}

// Register handles user registration
// POST /api/users/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid registration request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.RespondWithValidationError(c, bindingMessage(err, "Please fill in all required fields"), apperrors.FieldErrors(err))
		return
	}

	user, token, err := ctrl.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailAlreadyExists):
			apperrors.BadRequest(c, apperrors.AuthEmailAlreadyExists, "User email already in use")
		case errors.Is(err, service.ErrMissingFields):
			apperrors.BadRequest(c, apperrors.ValidationRequired, "Please fill in all required fields")
		case errors.Is(err, service.ErrPasswordTooShort):
			apperrors.BadRequest(c, apperrors.ValidationTooShort, "Password must be at least 6 characters")
		default:
			log.Error("Registration failed", err, nil)
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "register user")
		}
		return
	}

	ctrl.setSessionCookie(c, token, time.Now().Add(ctrl.cookie.MaxAge))

	log.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
	})

	c.JSON(http.StatusCreated, newUserResponse(user, token))
}

// Login handles user login
// POST /api/users/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid login request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.RespondWithValidationError(c, "Please add email and password", apperrors.FieldErrors(err))
		return
	}

	user, token, err := ctrl.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			apperrors.BadRequest(c, apperrors.AuthInvalidCredentials, "Invalid email or password")
		case errors.Is(err, service.ErrMissingFields):
			apperrors.BadRequest(c, apperrors.ValidationRequired, "Please add email and password")
		default:
			log.Error("Login failed", err, nil)
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "login")
		}
		return
	}

	ctrl.setSessionCookie(c, token, time.Now().Add(ctrl.cookie.MaxAge))

	log.Info("Login successful", map[string]interface{}{
		"user_id": user.ID,
	})

	c.JSON(http.StatusOK, newUserResponse(user, token))
}

// Logout clears the session cookie and, when a denylist is configured, revokes the token
// POST /api/users/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if err := ctrl.authService.Logout(c.Request.Context(), middleware.TokenFromRequest(c)); err != nil {
		// the cookie is still cleared; the token ages out on its own
		log.Error("Failed to revoke session on logout", err, nil)
	}

	ctrl.setSessionCookie(c, "", time.Time{})
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

// GetUser returns the current user's profile
// GET /api/users/getuser
func (ctrl *AuthController) GetUser(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	user, err := ctrl.authService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
			return
		}
		log.Error("Failed to get user", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get user")
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user, ""))
}

// LoggedIn reports whether the request carries a valid session. It never fails.
// GET /api/users/loggedin
func (ctrl *AuthController) LoggedIn(c *gin.Context) {
	c.JSON(http.StatusOK, ctrl.authService.IsLoggedIn(c.Request.Context(), middleware.TokenFromRequest(c)))
}

// UpdateUser applies a partial profile update; email cannot be changed here
// PATCH /api/users/updateuser
func (ctrl *AuthController) UpdateUser(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update profile request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.RespondWithValidationError(c, bindingMessage(err, "Invalid profile data"), apperrors.FieldErrors(err))
		return
	}

	user, err := ctrl.authService.UpdateProfile(userID, service.ProfileUpdate{
		Name:  req.Name,
		Photo: req.Photo,
		Phone: req.Phone,
		Bio:   req.Bio,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
		case errors.Is(err, service.ErrBioTooLong):
			apperrors.BadRequest(c, apperrors.ValidationTooLong, "Bio must not be more than 250 characters")
		default:
			log.Error("Failed to update profile", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update user")
		}
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user, ""))
}

// ChangePassword replaces the password after checking the old one
// PATCH /api/users/changepassword
func (ctrl *AuthController) ChangePassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.RespondWithValidationError(c, bindingMessage(err, "Please add old and new password"), apperrors.FieldErrors(err))
		return
	}

	err := ctrl.authService.ChangePassword(userID, req.OldPassword, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
		case errors.Is(err, service.ErrWrongPassword):
			apperrors.BadRequest(c, apperrors.AuthWrongPassword, "Old password is not correct")
		case errors.Is(err, service.ErrMissingFields):
			apperrors.BadRequest(c, apperrors.ValidationRequired, "Please add old and new password")
		case errors.Is(err, service.ErrPasswordTooShort):
			apperrors.BadRequest(c, apperrors.ValidationTooShort, "Password must be at least 6 characters")
		default:
			log.Error("Failed to change password", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update password")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// ForgotPassword emails a reset link
// POST /api/users/forgotpassword
func (ctrl *AuthController) ForgotPassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.RespondWithValidationError(c, "Please add your email", apperrors.FieldErrors(err))
		return
	}

	err := ctrl.passwordResetService.RequestReset(c.Request.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
		case errors.Is(err, service.ErrMailDeliveryFailed):
			apperrors.InternalError(c, apperrors.InternalMailError, "Email not sent, please try again")
		default:
			log.Error("Failed to process forgot password", err, nil)
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create reset token")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Reset email sent",
	})
}

// ResetPassword redeems a reset token
// PUT /api/users/resetpassword/:resetToken
func (ctrl *AuthController) ResetPassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.RespondWithValidationError(c, bindingMessage(err, "Please add a new password"), apperrors.FieldErrors(err))
		return
	}

	_, err := ctrl.passwordResetService.ResetPassword(c.Request.Context(), c.Param("resetToken"), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidResetToken):
			apperrors.BadRequest(c, apperrors.AuthTokenInvalid, "Invalid or expired reset token")
		case errors.Is(err, service.ErrPasswordTooShort):
			apperrors.BadRequest(c, apperrors.ValidationTooShort, "Password must be at least 6 characters")
		case errors.Is(err, service.ErrMissingFields):
			apperrors.BadRequest(c, apperrors.ValidationRequired, "Please add a new password")
		default:
			log.Error("Failed to reset password", err, nil)
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update password")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful, please login"})
}
