package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestParseError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		context  string
		wantCode string
	}{
		{"Nil error", nil, "", InternalServerError},
		{"Record not found", gorm.ErrRecordNotFound, "get product", ResourceNotFound},
		{"Wrapped not found", fmt.Errorf("lookup: %w", gorm.ErrRecordNotFound), "get user", ResourceNotFound},
		{"Duplicate email", fmt.Errorf(`ERROR: duplicate key value violates unique constraint "idx_users_email"`), "register", AuthEmailAlreadyExists},
		{"Sqlite unique", fmt.Errorf("UNIQUE constraint failed: products.sku"), "create product", ResourceAlreadyExists},
		{"Connection refused", fmt.Errorf("dial tcp: connection refused"), "", InternalExternalAPI},
		{"Unknown", fmt.Errorf("boom"), "update product", InternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ParseError(tt.err, tt.context)
			assert.Equal(t, tt.wantCode, info.Code)
			assert.NotEmpty(t, info.Message)
		})
	}
}

func TestFieldErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	type registerBody struct {
		Name     string `json:"name" binding:"required"`
		Password string `json:"password" binding:"required,min=6"`
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"password":"abc"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var req registerBody
	err := c.ShouldBindJSON(&req)
	require.Error(t, err)

	fields := FieldErrors(err)
	assert.Equal(t, "required", fields["name"])
	assert.Equal(t, "min=6", fields["password"])
	assert.True(t, HasRule(err, "min"))
	assert.False(t, HasRule(err, "email"))

	assert.Nil(t, FieldErrors(fmt.Errorf("unexpected EOF")))

	RespondWithValidationError(c, "", fields)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ValidationError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, ValidationInvalidInput, resp.Error)
	assert.Equal(t, "min=6", resp.Fields["password"])
}

func TestIsDuplicateKey(t *testing.T) {
	assert.False(t, IsDuplicateKey(nil))
	assert.True(t, IsDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicateKey(fmt.Errorf("create user: %w", gorm.ErrDuplicatedKey)))
	assert.True(t, IsDuplicateKey(fmt.Errorf(`ERROR: duplicate key value violates unique constraint "idx_users_email"`)))
	assert.True(t, IsDuplicateKey(fmt.Errorf("UNIQUE constraint failed: users.email")))
	assert.False(t, IsDuplicateKey(fmt.Errorf("FOREIGN KEY constraint failed")))
}
