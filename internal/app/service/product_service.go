package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ikkim/mventory-backend/internal/app/model"
	"github.com/ikkim/mventory-backend/internal/app/repository"
	"github.com/ikkim/mventory-backend/internal/storage"
	"github.com/ikkim/mventory-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrProductAccessDenied = errors.New("product access denied")
	ErrImageUploadFailed   = errors.New("image could not be uploaded")
	ErrInvalidProduct      = errors.New("invalid product fields")
)

// ImageStorage stores product images and returns where they can be fetched.
type ImageStorage interface {
	Upload(ctx context.Context, folder, filename, contentType string, body io.Reader) (*storage.UploadedObject, error)
}

// ImageUpload is an image attached to a create or update request.
type ImageUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ProductInput holds the fields of a new product. SKU is optional.
type ProductInput struct {
	Name        string
	SKU         string
	Category    string
	Quantity    int
	Price       float64
	Description string
}

// ProductUpdate holds the fields to change. Nil keeps the stored value.
type ProductUpdate struct {
	Name        *string
	SKU         *string
	Category    *string
	Quantity    *int
	Price       *float64
	Description *string
}

type ProductService interface {
	ListProducts(userID uint) ([]model.Product, error)
	GetProduct(userID, productID uint) (*model.Product, error)
	CreateProduct(ctx context.Context, userID uint, input ProductInput, image *ImageUpload) (*model.Product, error)
	UpdateProduct(ctx context.Context, userID, productID uint, update ProductUpdate, image *ImageUpload) (*model.Product, error)
	DeleteProduct(userID, productID uint) error
}

type productService struct {
	productRepo repository.ProductRepository
	images      ImageStorage
	imageFolder string
}

func NewProductService(productRepo repository.ProductRepository, images ImageStorage, imageFolder string) ProductService {
	if imageFolder == "" {
		imageFolder = "products"
	}
	return &productService{
		productRepo: productRepo,
		images:      images,
		imageFolder: imageFolder,
	}
}

func (s *productService) ListProducts(userID uint) ([]model.Product, error) {
	products, err := s.productRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}
	return products, nil
}

// loadOwned checks existence before ownership so a missing product is never
// reported as forbidden.
func (s *productService) loadOwned(userID, productID uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if !product.OwnedBy(userID) {
		logger.Warn("Product access denied", map[string]interface{}{
			"product_id": productID,
			"user_id":    userID,
			"owner_id":   product.UserID,
		})
		return nil, ErrProductAccessDenied
	}
	return product, nil
}

func (s *productService) GetProduct(userID, productID uint) (*model.Product, error) {
	return s.loadOwned(userID, productID)
}

func (s *productService) CreateProduct(ctx context.Context, userID uint, input ProductInput, image *ImageUpload) (*model.Product, error) {
	if input.Quantity == 0 || input.Price == 0 {
		return nil, ErrMissingFields
	}
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product := &model.Product{
		UserID:      userID,
		Name:        strings.TrimSpace(input.Name),
		SKU:         strings.TrimSpace(input.SKU),
		Category:    strings.TrimSpace(input.Category),
		Quantity:    input.Quantity,
		Price:       input.Price,
		Description: input.Description,
	}

	// upload first; a failed upload must not leave a product behind
	if image != nil {
		img, err := s.uploadImage(ctx, userID, image)
		if err != nil {
			return nil, err
		}
		product.Image = *img
	}

	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"user_id":    userID,
		"has_image":  image != nil,
	})
	return product, nil
}

// UpdateProduct applies the non-nil fields of update and, when image is set,
// replaces the stored image.
func (s *productService) UpdateProduct(ctx context.Context, userID, productID uint, update ProductUpdate, image *ImageUpload) (*model.Product, error) {
	product, err := s.loadOwned(userID, productID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		product.Name = strings.TrimSpace(*update.Name)
	}
	if update.SKU != nil {
		product.SKU = strings.TrimSpace(*update.SKU)
	}
	if update.Category != nil {
		product.Category = strings.TrimSpace(*update.Category)
	}
	if update.Quantity != nil {
		product.Quantity = *update.Quantity
	}
	if update.Price != nil {
		product.Price = *update.Price
	}
	if update.Description != nil {
		product.Description = *update.Description
	}

	if err := validateProductInput(ProductInput{
		Name:        product.Name,
		Category:    product.Category,
		Quantity:    product.Quantity,
		Price:       product.Price,
		Description: product.Description,
	}); err != nil {
		return nil, err
	}

	if image != nil {
		img, err := s.uploadImage(ctx, userID, image)
		if err != nil {
			return nil, err
		}
		product.Image = *img
	}

	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}

	logger.Info("Product updated", map[string]interface{}{
		"product_id": product.ID,
		"user_id":    userID,
		"new_image":  image != nil,
	})
	return product, nil
}

func (s *productService) DeleteProduct(userID, productID uint) error {
	if _, err := s.loadOwned(userID, productID); err != nil {
		return err
	}

	if err := s.productRepo.Delete(productID); err != nil {
		return err
	}

	logger.Info("Product deleted", map[string]interface{}{
		"product_id": productID,
		"user_id":    userID,
	})
	return nil
}

func (s *productService) uploadImage(ctx context.Context, userID uint, image *ImageUpload) (*model.ProductImage, error) {
	if s.images == nil {
		logger.Error("Image upload attempted without storage configured", nil, map[string]interface{}{
			"user_id": userID,
		})
		return nil, ErrImageUploadFailed
	}

	obj, err := s.images.Upload(ctx, s.imageFolder, image.FileName, image.ContentType, image.Body)
	if err != nil {
		logger.Error("Failed to upload product image", err, map[string]interface{}{
			"user_id":   userID,
			"file_name": image.FileName,
		})
		return nil, fmt.Errorf("%w: %v", ErrImageUploadFailed, err)
	}

	return &model.ProductImage{
		FileName: image.FileName,
		FilePath: obj.URL,
		FileType: image.ContentType,
		FileSize: FormatFileSize(image.Size),
	}, nil
}

// FormatFileSize renders a byte count in kilobytes (1000 bytes), two decimals.
func FormatFileSize(size int64) string {
	return fmt.Sprintf("%.2f KB", float64(size)/1000)
}

// validateProductInput accepts zero stock so an update can mark a product sold out.
func validateProductInput(input ProductInput) error {
	if strings.TrimSpace(input.Name) == "" ||
		strings.TrimSpace(input.Category) == "" ||
		strings.TrimSpace(input.Description) == "" {
		return ErrMissingFields
	}
	if input.Quantity < 0 || input.Price < 0 {
		return ErrInvalidProduct
	}
	return nil
}
