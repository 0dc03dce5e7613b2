package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/mventory-backend/config"
	"github.com/ikkim/mventory-backend/internal/app/controller"
	"github.com/ikkim/mventory-backend/internal/middleware"
)

// maxMultipartMemory bounds the in-memory part of a multipart upload
const maxMultipartMemory = 8 << 20

type Router struct {
	authController    *controller.AuthController
	productController *controller.ProductController
	contactController *controller.ContactController
	authMiddleware    *middleware.AuthMiddleware
	config            *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	productController *controller.ProductController,
	contactController *controller.ContactController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:    authController,
		productController: productController,
		contactController: contactController,
		authMiddleware:    authMiddleware,
		config:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()
	router.MaxMultipartMemory = maxMultipartMemory

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "M-ventory API is running",
		})
	})

	protect := r.authMiddleware.Protect()

	api := router.Group("/api")
	{
		users := api.Group("/users")
		{
			users.POST("/register", r.authController.Register)
			users.POST("/login", r.authController.Login)
			users.POST("/logout", r.authController.Logout)
			users.GET("/loggedin", r.authController.LoggedIn)
			users.POST("/forgotpassword", r.authController.ForgotPassword)
			users.PUT("/resetpassword/:resetToken", r.authController.ResetPassword)

			users.GET("/getuser", protect, r.authController.GetUser)
			users.PATCH("/updateuser", protect, r.authController.UpdateUser)
			users.PATCH("/changepassword", protect, r.authController.ChangePassword)
		}

		products := api.Group("/products", protect)
		{
			products.GET("", r.productController.ListProducts)
			products.POST("", r.productController.CreateProduct)
			products.GET("/:id", r.productController.GetProduct)
			products.PATCH("/:id", r.productController.UpdateProduct)
			products.DELETE("/:id", r.productController.DeleteProduct)
		}

		api.POST("/contact", protect, r.contactController.ContactUs)
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		// "*" is never honoured since responses always allow credentials
		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if allowedOrigin != "*" && origin == allowedOrigin {
				allowed = true
				break
			}
		}

		// credentials require the concrete origin, never "*"
		if allowed && origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Add("Vary", "Origin")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Expose-Headers", middleware.RequestIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
