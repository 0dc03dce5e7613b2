package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/ikkim/mventory-backend/internal/app/model"
	"github.com/ikkim/mventory-backend/pkg/logger"
	"github.com/ikkim/mventory-backend/pkg/mail"
)

type ContactService interface {
	SendMessage(ctx context.Context, user *model.User, subject, message string) error
}

type contactService struct {
	mailer       mail.Sender
	supportEmail string
}

// NewContactService relays contact form messages to supportEmail
func NewContactService(mailer mail.Sender, supportEmail string) ContactService {
	return &contactService{
		mailer:       mailer,
		supportEmail: supportEmail,
	}
}

func (s *contactService) SendMessage(ctx context.Context, user *model.User, subject, message string) error {
	subject = strings.TrimSpace(subject)
	if subject == "" || strings.TrimSpace(message) == "" {
		return ErrMissingFields
	}
	if user == nil {
		return ErrUserNotFound
	}

	err := s.mailer.Send(ctx, mail.Message{
		To:       []string{s.supportEmail},
		ReplyTo:  user.Email,
		Subject:  subject,
		HTMLBody: fmt.Sprintf("<p>%s</p><p>From: %s &lt;%s&gt;</p>",
			html.EscapeString(message), html.EscapeString(user.Name), html.EscapeString(user.Email)),
	})
	if err != nil {
		logger.Error("Failed to relay contact message", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return fmt.Errorf("%w: %v", ErrMailDeliveryFailed, err)
	}

	logger.Info("Contact message relayed", map[string]interface{}{
		"user_id": user.ID,
		"subject": subject,
	})
	return nil
}
