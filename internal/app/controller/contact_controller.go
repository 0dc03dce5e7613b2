package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/mventory-backend/internal/app/service"
	apperrors "github.com/ikkim/mventory-backend/internal/errors"
	"github.com/ikkim/mventory-backend/internal/middleware"
)

type ContactController struct {
	contactService service.ContactService
}

func NewContactController(contactService service.ContactService) *ContactController {
	return &ContactController{contactService: contactService}
}

type ContactRequest struct {
	Subject string `json:"subject" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// ContactUs relays a message from the logged-in user to the support inbox
// POST /api/contact
func (ctrl *ContactController) ContactUs(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	user, ok := middleware.GetUser(c)
	if !ok {
		apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found, please sign up")
		return
	}

	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.RespondWithValidationError(c, "Please fill subject and message field", apperrors.FieldErrors(err))
		return
	}

	err := ctrl.contactService.SendMessage(c.Request.Context(), user, req.Subject, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			apperrors.BadRequest(c, apperrors.ValidationRequired, "Please fill subject and message field")
		case errors.Is(err, service.ErrMailDeliveryFailed):
			apperrors.InternalError(c, apperrors.InternalMailError, "Email not sent, please try again")
		default:
			log.Error("Failed to send contact message", err, map[string]interface{}{
				"user_id": user.ID,
			})
			apperrors.InternalError(c, "", "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Mail sent successfully",
	})
}
