package controller

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/ikkim/mventory-backend/internal/app/model"
	apperrors "github.com/ikkim/mventory-backend/internal/errors"
	"github.com/ikkim/mventory-backend/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func widgetBody() map[string]interface{} {
	return map[string]interface{}{
		"name":        "Widget",
		"sku":         "SKU-1",
		"category":    "Tools",
		"quantity":    10,
		"price":       2.5,
		"description": "A widget",
	}
}

// multipartRequest builds a form request with an optional image part
func multipartRequest(t *testing.T, method, path string, fields map[string]string, fileName, contentType string, data []byte, token string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if fileName != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, fileName))
		h.Set("Content-Type", contentType)
		part, err := writer.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	return req
}

func createWidget(t *testing.T, app *testApp, token string) model.Product {
	t.Helper()
	w := app.do(t, http.MethodPost, "/api/products", widgetBody(), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var product model.Product
	decodeJSON(t, w, &product)
	return product
}

func TestProductController_RequiresAuth(t *testing.T) {
	app := setupTestApp(t)

	w := app.do(t, http.MethodGet, "/api/products", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(t, http.MethodPost, "/api/products", widgetBody(), "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProductController_CreateAndList(t *testing.T) {
	app := setupTestApp(t)
	token := app.register(t, "A", "a@x.com", "secret1")

	first := createWidget(t, app, token)
	second := createWidget(t, app, token)
	assert.Equal(t, "Widget", first.Name)
	assert.Equal(t, 10, first.Quantity)

	w := app.do(t, http.MethodGet, "/api/products", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var products []model.Product
	decodeJSON(t, w, &products)
	require.Len(t, products, 2)
	assert.Equal(t, second.ID, products[0].ID)

	// another user sees none of them
	other := app.register(t, "B", "b@x.com", "secret1")
	w = app.do(t, http.MethodGet, "/api/products", nil, other)
	decodeJSON(t, w, &products)
	assert.Empty(t, products)
}

func TestProductController_Create_MissingFields(t *testing.T) {
	app := setupTestApp(t)
	token := app.register(t, "A", "a@x.com", "secret1")

	body := widgetBody()
	delete(body, "description")
	w := app.do(t, http.MethodPost, "/api/products", body, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductController_Create_WithImage(t *testing.T) {
	app := setupTestApp(t)
	token := app.register(t, "A", "a@x.com", "secret1")

	fields := map[string]string{
		"name":        "Widget",
		"category":    "Tools",
		"quantity":    "3",
		"price":       "9.99",
		"description": "A widget",
	}

	w := app.send(multipartRequest(t, http.MethodPost, "/api/products", fields, "widget.png", "image/png", make([]byte, 2000), token))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var product model.Product
	decodeJSON(t, w, &product)
	assert.Equal(t, "widget.png", product.Image.FileName)
	assert.Equal(t, "https://cdn.example.com/products/widget.png", product.Image.FilePath)
	assert.Equal(t, "image/png", product.Image.FileType)
	assert.Equal(t, "2.00 KB", product.Image.FileSize)
	assert.Equal(t, 3, product.Quantity)

	t.Run("Rejected file type", func(t *testing.T) {
		w := app.send(multipartRequest(t, http.MethodPost, "/api/products", fields, "doc.pdf", "application/pdf", []byte("%PDF"), token))
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp apperrors.ErrorResponse
		decodeJSON(t, w, &resp)
		assert.Equal(t, apperrors.UploadInvalidFileType, resp.Error)
	})

	t.Run("Upload failure creates nothing", func(t *testing.T) {
		app.storage.err = assert.AnError
		defer func() { app.storage.err = nil }()

		w := app.send(multipartRequest(t, http.MethodPost, "/api/products", fields, "widget.png", "image/png", []byte("png"), token))
		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var count int64
		require.NoError(t, app.db.Model(&model.Product{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}

func TestProductController_Ownership(t *testing.T) {
	app := setupTestApp(t)
	owner := app.register(t, "A", "a@x.com", "secret1")
	other := app.register(t, "B", "b@x.com", "secret1")
	product := createWidget(t, app, owner)

	path := fmt.Sprintf("/api/products/%d", product.ID)

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		body       interface{}
		wantStatus int
	}{
		{"Owner can get", http.MethodGet, path, owner, nil, http.StatusOK},
		{"Other cannot get", http.MethodGet, path, other, nil, http.StatusForbidden},
		{"Other cannot update", http.MethodPatch, path, other, map[string]int{"quantity": 1}, http.StatusForbidden},
		{"Other cannot delete", http.MethodDelete, path, other, nil, http.StatusForbidden},
		{"Missing product is not found", http.MethodGet, "/api/products/99999", other, nil, http.StatusNotFound},
		{"Missing product delete is not found", http.MethodDelete, "/api/products/99999", owner, nil, http.StatusNotFound},
		{"Invalid id", http.MethodGet, "/api/products/abc", owner, nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.do(t, tt.method, tt.path, tt.body, tt.token)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			if tt.wantStatus == http.StatusForbidden {
				var resp apperrors.ErrorResponse
				decodeJSON(t, w, &resp)
				assert.Equal(t, apperrors.AuthzOwnerOnly, resp.Error)
			}
		})
	}

	w := app.do(t, http.MethodDelete, path, nil, owner)
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodGet, path, nil, owner)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductController_Update(t *testing.T) {
	app := setupTestApp(t)
	token := app.register(t, "A", "a@x.com", "secret1")
	product := createWidget(t, app, token)
	path := fmt.Sprintf("/api/products/%d", product.ID)

	t.Run("Without image always responds", func(t *testing.T) {
		w := app.do(t, http.MethodPatch, path, map[string]interface{}{"price": 3.75}, token)
		require.Equal(t, http.StatusOK, w.Code)

		var updated model.Product
		decodeJSON(t, w, &updated)
		assert.Equal(t, 3.75, updated.Price)
		assert.Equal(t, "Widget", updated.Name)
		assert.Equal(t, 10, updated.Quantity)
	})

	t.Run("With image", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPatch, path, map[string]string{"name": "Gadget"}, "gadget.jpg", "image/jpeg", []byte("jpg"), token)
		w := app.send(req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var updated model.Product
		decodeJSON(t, w, &updated)
		assert.Equal(t, "Gadget", updated.Name)
		assert.Equal(t, 3.75, updated.Price)
		assert.Equal(t, "gadget.jpg", updated.Image.FileName)
	})

	t.Run("Negative quantity", func(t *testing.T) {
		w := app.do(t, http.MethodPatch, path, map[string]interface{}{"quantity": -1}, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
