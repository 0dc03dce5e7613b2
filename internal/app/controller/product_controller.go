package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/mventory-backend/internal/app/service"
	apperrors "github.com/ikkim/mventory-backend/internal/errors"
	"github.com/ikkim/mventory-backend/internal/middleware"
	"github.com/ikkim/mventory-backend/internal/storage"
	"github.com/ikkim/mventory-backend/pkg/logger"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

// CreateProductRequest accepts JSON or multipart form fields; the optional
// image comes as the multipart file "image".
type CreateProductRequest struct {
	Name        string  `form:"name" json:"name" binding:"required"`
	SKU         string  `form:"sku" json:"sku"`
	Category    string  `form:"category" json:"category" binding:"required"`
	Quantity    int     `form:"quantity" json:"quantity" binding:"required,min=0"`
	Price       float64 `form:"price" json:"price" binding:"required,min=0"`
	Description string  `form:"description" json:"description" binding:"required"`
}

// UpdateProductRequest leaves absent fields nil so they keep their stored value
type UpdateProductRequest struct {
	Name        *string  `form:"name" json:"name"`
	SKU         *string  `form:"sku" json:"sku"`
	Category    *string  `form:"category" json:"category"`
	Quantity    *int     `form:"quantity" json:"quantity" binding:"omitempty,min=0"`
	Price       *float64 `form:"price" json:"price" binding:"omitempty,min=0"`
	Description *string  `form:"description" json:"description"`
}

func noopClose() {}

// readImage returns the uploaded image, or nil when the request has none, plus a
// func that releases the file. It writes the error response itself and reports
// false when the file is rejected.
func readImage(c *gin.Context, log *logger.Logger) (*service.ImageUpload, func(), bool) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, noopClose, true
		}
		log.Warn("Failed to read uploaded image", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid image upload")
		return nil, noopClose, false
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if err := storage.ValidateContentType(contentType, storage.AllowedImageTypes); err != nil {
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Only png, jpg and jpeg images are allowed")
		return nil, noopClose, false
	}
	if err := storage.ValidateFileSize(fileHeader.Size, storage.MaxImageSize); err != nil {
		apperrors.BadRequest(c, apperrors.UploadFileTooLarge, "Image is too large")
		return nil, noopClose, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error("Failed to open uploaded image", err, nil)
		apperrors.InternalError(c, apperrors.UploadFailed, "Image could not be uploaded")
		return nil, noopClose, false
	}

	return &service.ImageUpload{
		FileName:    fileHeader.Filename,
		ContentType: contentType,
		Size:        fileHeader.Size,
		Body:        file,
	}, func() { _ = file.Close() }, true
}

func parseProductID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid product ID")
		return 0, false
	}
	return uint(id), true
}

func respondProductError(c *gin.Context, log *logger.Logger, err error, context string) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ResourceNotFound, "Product not found")
	case errors.Is(err, service.ErrProductAccessDenied):
		apperrors.Forbidden(c, apperrors.AuthzOwnerOnly, "User not authorized")
	case errors.Is(err, service.ErrMissingFields):
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Please fill in all the fields")
	case errors.Is(err, service.ErrInvalidProduct):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Quantity and price must not be negative")
	case errors.Is(err, service.ErrImageUploadFailed):
		apperrors.InternalError(c, apperrors.UploadFailed, "Image could not be uploaded")
	default:
		log.Error("Product operation failed", err, map[string]interface{}{
			"operation": context,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, context)
	}
}

// ListProducts returns the requester's products, newest first
// GET /api/products
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	products, err := ctrl.productService.ListProducts(userID)
	if err != nil {
		respondProductError(c, log, err, "list products")
		return
	}

	c.JSON(http.StatusOK, products)
}

// CreateProduct creates a product, uploading its image first when present
// POST /api/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	var req CreateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		log.Warn("Invalid create product request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.RespondWithValidationError(c, "Please fill in all the fields", apperrors.FieldErrors(err))
		return
	}

	image, closeImage, ok := readImage(c, log)
	defer closeImage()
	if !ok {
		return
	}

	product, err := ctrl.productService.CreateProduct(c.Request.Context(), userID, service.ProductInput{
		Name:        req.Name,
		SKU:         req.SKU,
		Category:    req.Category,
		Quantity:    req.Quantity,
		Price:       req.Price,
		Description: req.Description,
	}, image)
	if err != nil {
		respondProductError(c, log, err, "create product")
		return
	}

	c.JSON(http.StatusCreated, product)
}

// GetProduct returns one product owned by the requester
// GET /api/products/:id
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	product, err := ctrl.productService.GetProduct(userID, productID)
	if err != nil {
		respondProductError(c, log, err, "get product")
		return
	}

	c.JSON(http.StatusOK, product)
}

// UpdateProduct applies a partial update and always answers with the product
// PATCH /api/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		log.Warn("Invalid update product request", map[string]interface{}{
			"product_id": productID,
			"error":      err.Error(),
		})
		apperrors.RespondWithValidationError(c, "Invalid product data", apperrors.FieldErrors(err))
		return
	}

	image, closeImage, ok := readImage(c, log)
	defer closeImage()
	if !ok {
		return
	}

	product, err := ctrl.productService.UpdateProduct(c.Request.Context(), userID, productID, service.ProductUpdate{
		Name:        req.Name,
		SKU:         req.SKU,
		Category:    req.Category,
		Quantity:    req.Quantity,
		Price:       req.Price,
		Description: req.Description,
	}, image)
	if err != nil {
		respondProductError(c, log, err, "update product")
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct removes one product owned by the requester
// DELETE /api/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	if err := ctrl.productService.DeleteProduct(userID, productID); err != nil {
		respondProductError(c, log, err, "delete product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}
