package migrate

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mpetrov/storefront/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func TestNormalizeLegacyCategories(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)

	ceramics := models.Category{Name: "Ceramics", IsActive: true}
	require.NoError(t, db.Create(&ceramics).Error)

	legacy := models.Product{Name: "Vase", Price: 10, CategoryName: "ceramics"}
	orphanA := models.Product{Name: "Rug", Price: 50, CategoryName: "Textiles"}
	orphanB := models.Product{Name: "Runner", Price: 30, CategoryName: "textiles"}
	normalized := models.Product{Name: "Bowl", Price: 20, CategoryID: &ceramics.ID, CategoryName: "Ceramics"}
	uncategorized := models.Product{Name: "Misc", Price: 5}
	for _, p := range []*models.Product{&legacy, &orphanA, &orphanB, &normalized, &uncategorized} {
		require.NoError(t, db.Create(p).Error)
	}

	result, err := NormalizeLegacyCategories(ctx, db)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Normalized)
	assert.Equal(t, []string{"Textiles"}, result.Unresolved, "deduped case-insensitively, first spelling wins")

	var vase models.Product
	require.NoError(t, db.First(&vase, legacy.ID).Error)
	require.NotNil(t, vase.CategoryID)
	assert.Equal(t, ceramics.ID, *vase.CategoryID)
	assert.Equal(t, "Ceramics", vase.CategoryName, "canonical spelling replaces the legacy one")

	// Unresolved rows keep their legacy name untouched.
	var rug models.Product
	require.NoError(t, db.First(&rug, orphanA.ID).Error)
	assert.Nil(t, rug.CategoryID)
	assert.Equal(t, "Textiles", rug.CategoryName)
}

func TestNormalizeLegacyCategories_Idempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)

	ceramics := models.Category{Name: "Ceramics", IsActive: true}
	require.NoError(t, db.Create(&ceramics).Error)
	require.NoError(t, db.Create(&models.Product{Name: "Vase", Price: 10, CategoryName: "Ceramics"}).Error)

	first, err := NormalizeLegacyCategories(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Normalized)

	second, err := NormalizeLegacyCategories(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Normalized)
	assert.Empty(t, second.Unresolved)
}

func TestNormalizeLegacyCategories_Empty(t *testing.T) {
	t.Parallel()

	result, err := NormalizeLegacyCategories(context.Background(), newTestDB(t))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Normalized)
	assert.Empty(t, result.Unresolved)
}
