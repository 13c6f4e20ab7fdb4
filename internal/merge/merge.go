// Package merge reconciles a normalized batch into the persistent catalog
// through a staging table and one set-based upsert.
package merge

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ValeenMar/tovaltech-sub001/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// ErrMerge wraps every failure inside a merge; the transaction is rolled back.
var ErrMerge = errors.New("merge failed")

// LockKey is the pg_advisory_xact_lock key shared by every process that
// writes products_staging.
const LockKey int64 = 0x7a11_7ec4

// Result counts come straight from the upsert's RETURNING clause.
type Result struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Total    int `json:"total"`
}

// Outcome is a Result plus the number of new category rows.
type Outcome struct {
	Result
	CategoriesAdded int `json:"categories_added"`
}

// TxBeginner is satisfied by *pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Engine serializes merges in-process with a mutex and across processes with
// an advisory lock held for the life of the transaction.
type Engine struct {
	db TxBeginner
	mu sync.Mutex
}

func NewEngine(db TxBeginner) *Engine {
	return &Engine{db: db}
}

var stagingColumns = []string{
	"sku", "name", "category", "brand", "price_usd", "price_ars",
	"stock", "image_url", "provider", "warranty", "dolar_rate",
}

const upsertSQL = `
INSERT INTO products (id, sku, name, category, brand, price_usd, price_ars, stock,
                      image_url, provider, warranty, dolar_rate, active, featured,
                      created_at, updated_at)
SELECT gen_random_uuid(), sku, name, category, brand, price_usd, price_ars, stock,
       image_url, provider, warranty, dolar_rate, image_url IS NOT NULL, false,
       now(), now()
FROM products_staging
ON CONFLICT (sku) DO UPDATE SET
    name       = EXCLUDED.name,
    category   = EXCLUDED.category,
    brand      = EXCLUDED.brand,
    price_usd  = EXCLUDED.price_usd,
    price_ars  = EXCLUDED.price_ars,
    stock      = EXCLUDED.stock,
    image_url  = COALESCE(products.image_url, EXCLUDED.image_url),
    provider   = EXCLUDED.provider,
    warranty   = EXCLUDED.warranty,
    dolar_rate = EXCLUDED.dolar_rate,
    updated_at = now()
RETURNING (xmax = 0) AS inserted`

const categoriesSQL = `
INSERT INTO categories (name)
SELECT unnest($1::text[])
ON CONFLICT (name) DO NOTHING`

// Merge stages products and upserts them by sku. Invalid products are
// skipped; a batch with nothing valid returns a zero Outcome without
// touching the database. Duplicate skus collapse to their last occurrence.
func (e *Engine) Merge(ctx context.Context, products []model.CanonicalProduct) (Outcome, error) {
	valid := ValidOnly(products)
	if skipped := len(products) - len(valid); skipped > 0 {
		log.Warn().Int("skipped", skipped).Msg("merge: invalid products not staged")
	}
	if len(valid) == 0 {
		return Outcome{}, nil
	}
	batch := LastBySKU(valid)

	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	tx, err := e.db.Begin(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: begin transaction: %w", ErrMerge, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, LockKey); err != nil {
		return Outcome{}, fmt.Errorf("%w: advisory lock: %w", ErrMerge, err)
	}
	if _, err := tx.Exec(ctx, `TRUNCATE products_staging`); err != nil {
		return Outcome{}, fmt.Errorf("%w: truncate staging: %w", ErrMerge, err)
	}

	copied, err := tx.CopyFrom(ctx, pgx.Identifier{"products_staging"}, stagingColumns, pgx.CopyFromSlice(len(batch), func(i int) ([]any, error) {
		p := batch[i]
		return []any{
			p.SKU, p.Name, p.Category, p.Brand, p.PriceUSD, p.PriceARS,
			p.Stock, p.ImageURL, p.Provider, p.Warranty, p.DolarRate,
		}, nil
	}))
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: copy into staging: %w", ErrMerge, err)
	}

	res, err := upsert(ctx, tx)
	if err != nil {
		return Outcome{}, err
	}

	added, err := reconcileCategories(ctx, tx, batch)
	if err != nil {
		return Outcome{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Outcome{}, fmt.Errorf("%w: commit: %w", ErrMerge, err)
	}

	log.Info().
		Int64("staged", copied).
		Int("inserted", res.Inserted).
		Int("updated", res.Updated).
		Int("categories_added", added).
		Dur("took", time.Since(start)).
		Msg("merge: catalog reconciled")

	return Outcome{Result: res, CategoriesAdded: added}, nil
}

func upsert(ctx context.Context, tx pgx.Tx) (Result, error) {
	rows, err := tx.Query(ctx, upsertSQL)
	if err != nil {
		return Result{}, fmt.Errorf("%w: upsert: %w", ErrMerge, err)
	}
	defer rows.Close()

	var res Result
	for rows.Next() {
		var inserted bool
		if err := rows.Scan(&inserted); err != nil {
			return Result{}, fmt.Errorf("%w: scan upsert row: %w", ErrMerge, err)
		}
		if inserted {
			res.Inserted++
		} else {
			res.Updated++
		}
	}
	if err := rows.Err(); err != nil {
		return Result{}, fmt.Errorf("%w: upsert: %w", ErrMerge, err)
	}
	res.Total = res.Inserted + res.Updated
	return res, nil
}

func reconcileCategories(ctx context.Context, tx pgx.Tx, batch []model.CanonicalProduct) (int, error) {
	labels := CategoryLabels(batch)
	if len(labels) == 0 {
		return 0, nil
	}
	tag, err := tx.Exec(ctx, categoriesSQL, labels)
	if err != nil {
		return 0, fmt.Errorf("%w: reconcile categories: %w", ErrMerge, err)
	}
	return int(tag.RowsAffected()), nil
}

// LastBySKU keeps the last product for each sku, in first-seen order.
func LastBySKU(products []model.CanonicalProduct) []model.CanonicalProduct {
	idx := make(map[string]int, len(products))
	out := make([]model.CanonicalProduct, 0, len(products))
	for _, p := range products {
		if i, ok := idx[p.SKU]; ok {
			out[i] = p
			continue
		}
		idx[p.SKU] = len(out)
		out = append(out, p)
	}
	return out
}

// ValidOnly keeps the products that satisfy CanonicalProduct.Valid, in order.
func ValidOnly(products []model.CanonicalProduct) []model.CanonicalProduct {
	out := make([]model.CanonicalProduct, 0, len(products))
	for _, p := range products {
		if p.Valid() {
			out = append(out, p)
		}
	}
	return out
}

// CategoryLabels returns the distinct non-empty trimmed category names, sorted.
func CategoryLabels(products []model.CanonicalProduct) []string {
	seen := make(map[string]struct{})
	for _, p := range products {
		if p.Category == nil {
			continue
		}
		name := strings.TrimSpace(*p.Category)
		if name == "" {
			continue
		}
		seen[name] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
