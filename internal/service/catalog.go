package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/mpetrov/storefront/internal/domain"
	"github.com/mpetrov/storefront/internal/events"
	"github.com/mpetrov/storefront/internal/logging"
	"github.com/mpetrov/storefront/internal/models"
	"github.com/mpetrov/storefront/internal/repo"
	"github.com/mpetrov/storefront/internal/transport"
)

// ProductIndexer is the search side of the catalog; indexing failures are
// best-effort and never fail the mutation.
type ProductIndexer interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}

type CatalogService struct {
	Repo     *repo.CatalogRepo
	Indexer  ProductIndexer   // optional
	Producer events.Publisher // optional

	// CategoryImages is the injected name→hero-image fallback map.
	CategoryImages map[string]string
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	return s.Repo.GetProduct(ctx, id)
}

func (s *CatalogService) ListProducts(ctx context.Context, f repo.ProductFilter, offset, limit int) (int64, []models.Product, error) {
	return s.Repo.ListProducts(ctx, f, offset, limit)
}

// ReduceStock is the contract the order pipeline consumes: atomic decrement,
// rejected when it would go negative.
func (s *CatalogService) ReduceStock(ctx context.Context, id uint, quantity int) (*models.Product, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be > 0", domain.ErrValidation)
	}
	return s.Repo.ReduceStock(ctx, id, quantity)
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name required", domain.ErrValidation)
	}
	if req.Price < 0 {
		return nil, fmt.Errorf("%w: price must be >= 0", domain.ErrValidation)
	}
	if req.Stock < 0 {
		return nil, fmt.Errorf("%w: stock must be >= 0", domain.ErrValidation)
	}
	if req.Discount < 0 || req.Discount > 100 {
		return nil, fmt.Errorf("%w: discount must be between 0 and 100", domain.ErrValidation)
	}
	if strings.TrimSpace(req.Category) == "" {
		return nil, fmt.Errorf("%w: category required", domain.ErrValidation)
	}

	category, err := s.Repo.ActiveCategoryByName(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		Stock:          req.Stock,
		CategoryID:     &category.ID,
		CategoryName:   category.Name,
		Images:         req.Images,
		Discount:       req.Discount,
		SKU:            req.SKU,
		Specifications: req.Specifications,
	}
	if err := s.Repo.CreateProduct(ctx, product); err != nil {
		return nil, err
	}

	s.afterProductMutation(ctx, product, "product_created")
	return product, nil
}

func (s *CatalogService) PatchProduct(ctx context.Context, id uint, req transport.PatchProductRequest) (*models.Product, error) {
	product, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("%w: name required", domain.ErrValidation)
		}
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, fmt.Errorf("%w: price must be >= 0", domain.ErrValidation)
		}
		product.Price = *req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, fmt.Errorf("%w: stock must be >= 0", domain.ErrValidation)
		}
		product.Stock = *req.Stock
	}
	if req.Discount != nil {
		if *req.Discount < 0 || *req.Discount > 100 {
			return nil, fmt.Errorf("%w: discount must be between 0 and 100", domain.ErrValidation)
		}
		product.Discount = *req.Discount
	}
	if req.Category != nil {
		category, err := s.Repo.ActiveCategoryByName(ctx, *req.Category)
		if err != nil {
			return nil, err
		}
		product.CategoryID = &category.ID
		product.CategoryName = category.Name
	}
	if req.Images != nil {
		product.Images = *req.Images
	}
	if req.SKU != nil {
		product.SKU = *req.SKU
	}
	if req.Specifications != nil {
		product.Specifications = *req.Specifications
	}

	if err := s.Repo.SaveProduct(ctx, product); err != nil {
		return nil, err
	}

	s.afterProductMutation(ctx, product, "product_updated")
	return product, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return err
	}

	l := logging.FromContext(ctx).With("svc", "catalog.delete_product")
	if s.Indexer != nil {
		if err := s.Indexer.DeleteProduct(ctx, id); err != nil {
			l.Warn("search_delete_failed", "product", id, "error", err)
		}
	}
	if s.Producer != nil {
		event := map[string]any{"type": "product_deleted", "productID": id}
		if err := s.Producer.PublishEvent(ctx, events.TopicProductEvents, fmt.Sprint(id), event); err != nil {
			l.Warn("event_publish_failed", "error", err)
		}
	}
	return nil
}

func (s *CatalogService) SearchProducts(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	if s.Indexer == nil {
		return 0, nil, fmt.Errorf("%w: search is not configured", domain.ErrValidation)
	}
	return s.Indexer.Search(ctx, query, from, size)
}

func (s *CatalogService) afterProductMutation(ctx context.Context, product *models.Product, eventType string) {
	l := logging.FromContext(ctx).With("svc", "catalog")
	if s.Indexer != nil {
		if err := s.Indexer.IndexProduct(ctx, product); err != nil {
			l.Warn("search_index_failed", "product", product.ID, "error", err)
		}
	}
	if s.Producer != nil {
		event := map[string]any{"type": eventType, "productID": product.ID, "name": product.Name}
		if err := s.Producer.PublishEvent(ctx, events.TopicProductEvents, fmt.Sprint(product.ID), event); err != nil {
			l.Warn("event_publish_failed", "error", err)
		}
	}
}

func (s *CatalogService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	return s.Repo.GetCategory(ctx, id)
}

func (s *CatalogService) ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	return s.Repo.ListCategories(ctx, activeOnly)
}

func (s *CatalogService) CreateCategory(ctx context.Context, req transport.CategoryRequest) (*models.Category, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name required", domain.ErrValidation)
	}

	category := &models.Category{
		Name:         req.Name,
		HeroImage:    req.HeroImage,
		Description:  req.Description,
		IsActive:     true,
		DisplayOrder: req.DisplayOrder,
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if category.HeroImage == "" {
		category.HeroImage = s.fallbackImage(category.Name)
	}

	if err := s.Repo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CatalogService) PatchCategory(ctx context.Context, id uint, req transport.PatchCategoryRequest) (*models.Category, error) {
	category, err := s.Repo.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("%w: name required", domain.ErrValidation)
		}
		category.Name = *req.Name
	}
	if req.HeroImage != nil {
		category.HeroImage = *req.HeroImage
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if req.DisplayOrder != nil {
		category.DisplayOrder = *req.DisplayOrder
	}
	if category.HeroImage == "" {
		category.HeroImage = s.fallbackImage(category.Name)
	}

	if err := s.Repo.SaveCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	return s.Repo.DeleteCategory(ctx, id)
}

func (s *CatalogService) fallbackImage(name string) string {
	for key, img := range s.CategoryImages {
		if strings.EqualFold(key, name) {
			return img
		}
	}
	return ""
}
