package migrate

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/mpetrov/storefront/internal/logging"
	"github.com/mpetrov/storefront/internal/models"
)

type Result struct {
	Normalized int
	Unresolved []string
}

// NormalizeLegacyCategories resolves products that still carry only a bare
// legacy category name (no CategoryID) against the categories table,
// case-insensitively, and fills in the normalized reference plus the
// canonical display name. Names with no matching category are left as they
// are and reported. Running it twice is a no-op: normalized rows no longer
// match the selection.
func NormalizeLegacyCategories(ctx context.Context, db *gorm.DB) (*Result, error) {
	l := logging.FromContext(ctx).With("migration", "normalize_legacy_categories")

	var products []models.Product
	err := db.WithContext(ctx).
		Where("category_id IS NULL AND category_name <> ''").
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	result := &Result{}
	seenUnresolved := map[string]struct{}{}

	for i := range products {
		p := &products[i]

		var category models.Category
		err := db.WithContext(ctx).
			Where("LOWER(name) = LOWER(?)", p.CategoryName).
			First(&category).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				key := strings.ToLower(p.CategoryName)
				if _, seen := seenUnresolved[key]; !seen {
					seenUnresolved[key] = struct{}{}
					result.Unresolved = append(result.Unresolved, p.CategoryName)
				}
				l.Warn("category_unresolved", "product", p.ID, "category", p.CategoryName)
				continue
			}
			return nil, err
		}

		updates := map[string]any{
			"category_id":   category.ID,
			"category_name": category.Name,
		}
		if err := db.WithContext(ctx).Model(p).Updates(updates).Error; err != nil {
			return nil, err
		}
		result.Normalized++
	}

	l.Info("normalize_complete", "normalized", result.Normalized, "unresolved", len(result.Unresolved))
	return result, nil
}
