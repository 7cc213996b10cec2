package main

import (
	"context"
	"log"

	"github.com/mpetrov/storefront/internal/config"
	"github.com/mpetrov/storefront/internal/logging"
	"github.com/mpetrov/storefront/internal/migrate"
)

// Runs the legacy category normalization. Safe to re-run: already
// normalized products are skipped.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogLevel)
	ctx := logging.IntoContext(context.Background(), logger)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	result, err := migrate.NormalizeLegacyCategories(ctx, db)
	if err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	logger.Info("migration finished",
		"normalized", result.Normalized,
		"unresolved", result.Unresolved,
	)
}
