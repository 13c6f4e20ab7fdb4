//go:build integration

package repository_test

import (
	"context"
	"testing"

	"github.com/ValeenMar/tovaltech-sub001/internal/dto"
	"github.com/ValeenMar/tovaltech-sub001/internal/infra"
	"github.com/ValeenMar/tovaltech-sub001/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("catalog_test"),
		tcPostgres.WithUsername("catalog"),
		tcPostgres.WithPassword("catalog"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := infra.NewDatabase(dsn)
	require.NoError(t, err)
	return db
}

func TestProductoRepository_ListFilters(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Exec(`INSERT INTO products (sku, name, category, price_usd, provider, active, featured) VALUES
		('A', 'Monitor LG 24', 'Monitores', 100, 'elit', true, false),
		('B', 'Monitor Samsung 27', 'Monitores', 150, 'invid', true, true),
		('C', 'Teclado', 'Perifericos', 20, 'elit', false, false)`).Error)

	repo := repository.NewProductoRepository(db)
	ctx := context.Background()

	list, total, err := repo.List(ctx, dto.ProductoFilter{Categoria: "Monitores", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, list, 2)
	assert.Equal(t, "B", list[0].SKU, "featured first")

	_, total, err = repo.List(ctx, dto.ProductoFilter{Activo: "all", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	list, _, err = repo.List(ctx, dto.ProductoFilter{Activo: "false", Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "C", list[0].SKU)

	p, err := repo.FindBySKU(ctx, "A")
	require.NoError(t, err)
	assert.True(t, p.PrecioUSD.Equal(decimal.NewFromInt(100)))
}

func TestSettingsSource(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	require.NoError(t, db.Exec(`INSERT INTO categories (name) VALUES ('Hardware'), ('Discos')`).Error)

	cats := repository.NewCategoriaRepository(db)
	settings := repository.NewSettingRepository(db)
	src := repository.SettingsSource{Categorias: cats, Settings: settings}

	pct, err := src.GlobalMarkupPct(ctx)
	require.NoError(t, err)
	assert.Nil(t, pct)

	require.NoError(t, settings.SetGlobalMarkupPct(ctx, decimal.NewFromInt(30)))
	require.NoError(t, settings.SetGlobalMarkupPct(ctx, decimal.NewFromInt(35)))
	pct, err = src.GlobalMarkupPct(ctx)
	require.NoError(t, err)
	require.NotNil(t, pct)
	assert.True(t, pct.Equal(decimal.NewFromInt(35)))

	hw, err := cats.FindByNombre(ctx, "hardware")
	require.NoError(t, err)
	ten := decimal.NewFromInt(10)
	require.NoError(t, cats.SetMarkup(ctx, "Hardware", &ten))
	require.NoError(t, cats.SetParent(ctx, "Discos", &hw.ID))
	assert.Error(t, cats.SetMarkup(ctx, "Inexistente", &ten))

	list, err := src.ListCategorias(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Discos", list[0].Nombre)
	assert.Equal(t, hw.ID, *list[0].ParentID)
	assert.True(t, list[1].MarkupPct.Equal(ten))
}
