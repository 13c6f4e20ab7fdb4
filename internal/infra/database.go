package infra

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the GORM connection used by the read side and applies the
// idempotent catalog schema. The write path (staging + upsert) goes through
// the pgx pool from NewPool instead.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	// AutoMigrate stays off: products_staging has no model and the upsert
	// depends on the exact unique constraints below.
	if err := applySchemaPatches(db); err != nil {
		return nil, fmt.Errorf("schema patches: %w", err)
	}

	return db, nil
}

// SchemaPatches is the catalog DDL. Every statement is safe to re-run.
var SchemaPatches = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		sku         TEXT NOT NULL,
		name        TEXT NOT NULL,
		category    TEXT,
		brand       TEXT,
		price_usd   NUMERIC(14,2) NOT NULL,
		price_ars   BIGINT NOT NULL DEFAULT 0,
		stock       INT NOT NULL DEFAULT 0,
		image_url   TEXT,
		provider    TEXT NOT NULL,
		warranty    TEXT,
		dolar_rate  NUMERIC(14,2) NOT NULL DEFAULT 0,
		markup_pct  NUMERIC(6,2),
		active      BOOLEAN NOT NULL DEFAULT false,
		featured    BOOLEAN NOT NULL DEFAULT false,
		description TEXT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`DO $$ BEGIN
	  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'uni_products_sku') THEN
	    ALTER TABLE products ADD CONSTRAINT uni_products_sku UNIQUE (sku);
	  END IF;
	END $$`,
	`CREATE INDEX IF NOT EXISTS idx_products_category ON products (category)`,
	`CREATE TABLE IF NOT EXISTS products_staging (
		sku        TEXT,
		name       TEXT,
		category   TEXT,
		brand      TEXT,
		price_usd  NUMERIC(14,2),
		price_ars  BIGINT,
		stock      INT,
		image_url  TEXT,
		provider   TEXT,
		warranty   TEXT,
		dolar_rate NUMERIC(14,2)
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id         BIGSERIAL PRIMARY KEY,
		name       TEXT NOT NULL,
		markup_pct NUMERIC(6,2),
		parent_id  BIGINT REFERENCES categories(id) ON DELETE SET NULL
	)`,
	`DO $$ BEGIN
	  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'uni_categories_name') THEN
	    ALTER TABLE categories ADD CONSTRAINT uni_categories_name UNIQUE (name);
	  END IF;
	END $$`,
	`CREATE TABLE IF NOT EXISTS settings (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

func applySchemaPatches(db *gorm.DB) error {
	for _, sql := range SchemaPatches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}

// RunMigrations applies the schema through GORM; used by integration tests.
func RunMigrations(db *gorm.DB) error {
	return applySchemaPatches(db)
}
