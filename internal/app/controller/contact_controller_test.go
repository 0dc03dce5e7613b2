package controller

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactController_ContactUs(t *testing.T) {
	app := setupTestApp(t)
	token := app.register(t, "A", "a@x.com", "secret1")

	w := app.do(t, http.MethodPost, "/api/contact", map[string]string{
		"subject": "Question",
		"message": "Hello there",
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true,"message":"Mail sent successfully"}`, w.Body.String())

	require.Len(t, app.mailer.sent, 1)
	assert.Equal(t, []string{"support@example.com"}, app.mailer.sent[0].To)
	assert.Equal(t, "a@x.com", app.mailer.sent[0].ReplyTo)
}

func TestContactController_Validation(t *testing.T) {
	app := setupTestApp(t)
	token := app.register(t, "A", "a@x.com", "secret1")

	w := app.do(t, http.MethodPost, "/api/contact", map[string]string{"subject": "Question"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodPost, "/api/contact", map[string]string{"subject": "Q", "message": "M"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestContactController_MailFailure(t *testing.T) {
	app := setupTestApp(t)
	token := app.register(t, "A", "a@x.com", "secret1")
	app.mailer.err = assert.AnError

	w := app.do(t, http.MethodPost, "/api/contact", map[string]string{
		"subject": "Question",
		"message": "Hello there",
	}, token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
