package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/mventory-backend/internal/app/repository"
	"github.com/ikkim/mventory-backend/internal/app/service"
	"github.com/ikkim/mventory-backend/internal/db"
	"github.com/ikkim/mventory-backend/internal/middleware"
	"github.com/ikkim/mventory-backend/internal/storage"
	"github.com/ikkim/mventory-backend/pkg/mail"
	"github.com/ikkim/mventory-backend/pkg/util"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakeStorage struct {
	err error
}

func (s *fakeStorage) Upload(_ context.Context, folder, filename, _ string, body io.Reader) (*storage.UploadedObject, error) {
	if s.err != nil {
		return nil, s.err
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return nil, err
	}
	key := folder + "/" + filename
	return &storage.UploadedObject{Key: key, URL: "https://cdn.example.com/" + key}, nil
}

type testApp struct {
	db      *gorm.DB
	router  *gin.Engine
	mailer  *fakeMailer
	storage *fakeStorage
}

// setupTestApp wires the real services over an in-memory database with the
// same routes the server exposes.
func setupTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	mailer := &fakeMailer{}
	images := &fakeStorage{}

	userRepo := repository.NewUserRepository(testDB)
	resetRepo := repository.NewPasswordResetRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)

	authService := service.NewAuthService(userRepo, util.NewSessionTokens("test-secret", 24*time.Hour), nil)
	resetService := service.NewPasswordResetService(resetRepo, userRepo, mailer, service.PasswordResetOptions{
		FrontendURL: "https://app.example.com",
	})
	productService := service.NewProductService(productRepo, images, "products")
	contactService := service.NewContactService(mailer, "support@example.com")

	authCtrl := NewAuthController(authService, resetService, CookieConfig{Secure: true})
	productCtrl := NewProductController(productService)
	contactCtrl := NewContactController(contactService)
	protect := middleware.NewAuthMiddleware(authService).Protect()

	router := gin.New()
	users := router.Group("/api/users")
	users.POST("/register", authCtrl.Register)
	users.POST("/login", authCtrl.Login)
	users.POST("/logout", authCtrl.Logout)
	users.GET("/loggedin", authCtrl.LoggedIn)
	users.POST("/forgotpassword", authCtrl.ForgotPassword)
	users.PUT("/resetpassword/:resetToken", authCtrl.ResetPassword)
	users.GET("/getuser", protect, authCtrl.GetUser)
	users.PATCH("/updateuser", protect, authCtrl.UpdateUser)
	users.PATCH("/changepassword", protect, authCtrl.ChangePassword)

	products := router.Group("/api/products", protect)
	products.GET("", productCtrl.ListProducts)
	products.POST("", productCtrl.CreateProduct)
	products.GET("/:id", productCtrl.GetProduct)
	products.PATCH("/:id", productCtrl.UpdateProduct)
	products.DELETE("/:id", productCtrl.DeleteProduct)

	router.POST("/api/contact", protect, contactCtrl.ContactUs)

	return &testApp{db: testDB, router: router, mailer: mailer, storage: images}
}

// do sends a JSON request, attaching the session cookie when token is set
func (a *testApp) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	}
	return a.send(req)
}

func (a *testApp) send(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// register creates a user and returns its session token
func (a *testApp) register(t *testing.T, name, email, password string) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/users/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
