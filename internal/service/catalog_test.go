package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mpetrov/storefront/internal/domain"
	"github.com/mpetrov/storefront/internal/models"
	"github.com/mpetrov/storefront/internal/repo"
	"github.com/mpetrov/storefront/internal/transport"
)

func newCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{
		Repo: &repo.CatalogRepo{DB: db},
		CategoryImages: map[string]string{
			"Ceramics": "/img/ceramics.jpg",
		},
	}
}

func seedCategory(t *testing.T, db *gorm.DB, name string, active bool) models.Category {
	t.Helper()
	category := models.Category{Name: name, IsActive: active}
	require.NoError(t, db.Create(&category).Error)
	// The model's `default:true` tag makes GORM drop a false IsActive on
	// insert, so force the column to the requested value.
	require.NoError(t, db.Model(&category).UpdateColumn("is_active", active).Error)
	category.IsActive = active
	return category
}

func TestCatalogService_CreateProduct(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	svc := newCatalogService(db)
	seedCategory(t, db, "Ceramics", true)

	product, err := svc.CreateProduct(ctx, transport.CreateProductRequest{
		Name:     "Vase",
		Price:    19.99,
		Stock:    5,
		Category: "ceramics", // case-insensitive category match
		Images:   []string{"vase.jpg"},
	})
	require.NoError(t, err)

	require.NotNil(t, product.CategoryID)
	assert.Equal(t, "Ceramics", product.CategoryName, "canonical name stored, not the request spelling")
	assert.Equal(t, "vase.jpg", product.Thumbnail())
}

func TestCatalogService_CreateProduct_InactiveCategory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	svc := newCatalogService(db)
	seedCategory(t, db, "Retired", false)

	_, err := svc.CreateProduct(ctx, transport.CreateProductRequest{
		Name:     "Vase",
		Price:    10,
		Category: "Retired",
	})
	require.ErrorIs(t, err, domain.ErrInvalidCategory)

	_, err = svc.CreateProduct(ctx, transport.CreateProductRequest{
		Name:     "Vase",
		Price:    10,
		Category: "Nope",
	})
	require.ErrorIs(t, err, domain.ErrInvalidCategory)
}

func TestCatalogService_CreateProduct_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	svc := newCatalogService(db)

	tests := []struct {
		name string
		req  transport.CreateProductRequest
	}{
		{"empty name", transport.CreateProductRequest{Price: 1, Category: "Ceramics"}},
		{"negative price", transport.CreateProductRequest{Name: "V", Price: -1, Category: "Ceramics"}},
		{"negative stock", transport.CreateProductRequest{Name: "V", Price: 1, Stock: -1, Category: "Ceramics"}},
		{"discount over 100", transport.CreateProductRequest{Name: "V", Price: 1, Discount: 101, Category: "Ceramics"}},
		{"negative discount", transport.CreateProductRequest{Name: "V", Price: 1, Discount: -1, Category: "Ceramics"}},
		{"missing category", transport.CreateProductRequest{Name: "V", Price: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateProduct(ctx, tt.req)
			require.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestCatalogService_PatchProduct(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	svc := newCatalogService(db)
	seedCategory(t, db, "Ceramics", true)
	glass := seedCategory(t, db, "Glassware", true)

	product, err := svc.CreateProduct(ctx, transport.CreateProductRequest{
		Name: "Vase", Price: 10, Stock: 5, Category: "Ceramics",
	})
	require.NoError(t, err)

	newPrice := 12.5
	newCategory := "glassware"
	updated, err := svc.PatchProduct(ctx, product.ID, transport.PatchProductRequest{
		Price:    &newPrice,
		Category: &newCategory,
	})
	require.NoError(t, err)

	assert.Equal(t, 12.5, updated.Price)
	assert.Equal(t, "Vase", updated.Name, "untouched fields survive")
	require.NotNil(t, updated.CategoryID)
	assert.Equal(t, glass.ID, *updated.CategoryID)
	assert.Equal(t, "Glassware", updated.CategoryName)

	badDiscount := 150
	_, err = svc.PatchProduct(ctx, product.ID, transport.PatchProductRequest{Discount: &badDiscount})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestCatalogService_PatchProduct_NotFound(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newCatalogService(db)

	name := "Vase"
	_, err := svc.PatchProduct(context.Background(), 404, transport.PatchProductRequest{Name: &name})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalogService_ReduceStock_RejectsNonPositive(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newCatalogService(db)

	_, err := svc.ReduceStock(context.Background(), 1, 0)
	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.ReduceStock(context.Background(), 1, -2)
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestCatalogService_CreateCategory_FallbackImage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	svc := newCatalogService(db)

	category, err := svc.CreateCategory(ctx, transport.CategoryRequest{Name: "ceramics"})
	require.NoError(t, err)
	assert.Equal(t, "/img/ceramics.jpg", category.HeroImage, "fallback map matched case-insensitively")
	assert.True(t, category.IsActive)

	explicit, err := svc.CreateCategory(ctx, transport.CategoryRequest{Name: "Glassware", HeroImage: "/img/custom.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "/img/custom.jpg", explicit.HeroImage)

	unknown, err := svc.CreateCategory(ctx, transport.CategoryRequest{Name: "Textiles"})
	require.NoError(t, err)
	assert.Empty(t, unknown.HeroImage)
}

func TestCatalogService_CreateCategory_Duplicate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	svc := newCatalogService(db)

	_, err := svc.CreateCategory(ctx, transport.CategoryRequest{Name: "Ceramics"})
	require.NoError(t, err)

	_, err = svc.CreateCategory(ctx, transport.CategoryRequest{Name: "Ceramics"})
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestCatalogService_SearchProducts_NotConfigured(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newCatalogService(db)

	_, _, err := svc.SearchProducts(context.Background(), "vase", 0, 10)
	require.ErrorIs(t, err, domain.ErrValidation)
}
