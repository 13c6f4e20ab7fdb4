package model_test

import (
	"sync"
	"testing"

	"github.com/ValeenMar/tovaltech-sub001/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestProducto_TagsMatchCatalogSchema(t *testing.T) {
	s, err := schema.Parse(&model.Producto{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)
	assert.Equal(t, "products", s.Table)

	active := s.LookUpField("active")
	require.NotNil(t, active)
	assert.Equal(t, "false", active.DefaultValue, "products without an image start inactive")

	featured := s.LookUpField("featured")
	require.NotNil(t, featured)
	assert.Equal(t, "false", featured.DefaultValue)

	for _, col := range []string{"price_usd", "dolar_rate"} {
		f := s.LookUpField(col)
		require.NotNil(t, f, col)
		assert.Equal(t, "decimal(14,2)", string(f.DataType), col)
	}
}
