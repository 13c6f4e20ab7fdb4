package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ValeenMar/tovaltech-sub001/internal/dto"
	"github.com/ValeenMar/tovaltech-sub001/internal/handler"
	"github.com/ValeenMar/tovaltech-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

type stubCatalogo struct {
	filter        dto.ProductoFilter
	invalidateErr error
	invalidated   int
}

func (s *stubCatalogo) Listar(_ context.Context, f dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	s.filter = f
	return &dto.ProductoListResponse{Data: []dto.ProductoResponse{{SKU: "A"}}, Total: 1, Page: f.Page, Limit: f.Limit, TotalPages: 1}, nil
}

func (s *stubCatalogo) ObtenerPorSKU(_ context.Context, sku string) (*dto.ProductoResponse, error) {
	if sku != "A" {
		return nil, service.ErrProductoNoEncontrado
	}
	return &dto.ProductoResponse{SKU: "A"}, nil
}

func (s *stubCatalogo) InvalidarMarkup(context.Context) error {
	s.invalidated++
	return s.invalidateErr
}

func serve(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func productosRouter(svc service.CatalogoService) *gin.Engine {
	h := handler.NewProductosHandler(svc)
	r := gin.New()
	r.GET("/v1/productos", h.Listar)
	r.GET("/v1/productos/:sku", h.ObtenerPorSKU)
	r.POST("/v1/admin/markup/invalidate", h.InvalidarMarkup)
	return r
}

func TestProductos_Listar(t *testing.T) {
	svc := &stubCatalogo{}
	w := serve(productosRouter(svc), http.MethodGet, "/v1/productos?categoria=Monitores&proveedor=elit")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Monitores", svc.filter.Categoria)
	assert.Equal(t, 1, svc.filter.Page)
	assert.Equal(t, 20, svc.filter.Limit)

	var body dto.ProductoListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "A", body.Data[0].SKU)
}

func TestProductos_ListarRejectsBadQuery(t *testing.T) {
	r := productosRouter(&stubCatalogo{})

	w := serve(r, http.MethodGet, "/v1/productos?limit=500")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"Limit":"max"`)

	w = serve(r, http.MethodGet, "/v1/productos?proveedor=otro")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = serve(r, http.MethodGet, "/v1/productos?page=abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductos_ObtenerPorSKU(t *testing.T) {
	r := productosRouter(&stubCatalogo{})
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/v1/productos/A").Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/v1/productos/Z").Code)
}

func TestProductos_InvalidarMarkup(t *testing.T) {
	svc := &stubCatalogo{}
	r := productosRouter(svc)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/v1/admin/markup/invalidate").Code)

	svc.invalidateErr = errors.New("redis down")
	assert.Equal(t, http.StatusAccepted, serve(r, http.MethodPost, "/v1/admin/markup/invalidate").Code)
	assert.Equal(t, 2, svc.invalidated)
}

type stubQueue struct {
	queued bool
	err    error
}

func (q stubQueue) EnqueueSync(context.Context, string) (string, bool, error) {
	return "job-1", q.queued, q.err
}

type stubSync struct {
	report *dto.SyncReport
}

func (s stubSync) Run(context.Context, string) (*dto.SyncReport, error) { return s.report, nil }
func (s stubSync) LastReport(context.Context) (*dto.SyncReport, error) {
	if s.report == nil {
		return nil, service.ErrReportNotFound
	}
	return s.report, nil
}

func syncRouter(q handler.SyncQueue, svc service.SyncService) *gin.Engine {
	h := handler.NewSyncHandler(q, svc)
	r := gin.New()
	r.POST("/sync", h.Encolar)
	r.GET("/sync/last", h.Ultimo)
	return r
}

func TestSync_Enqueue(t *testing.T) {
	w := serve(syncRouter(stubQueue{queued: true}, stubSync{}), http.MethodPost, "/sync")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"job_id":"job-1"`)

	w = serve(syncRouter(stubQueue{queued: false}, stubSync{}), http.MethodPost, "/sync")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(syncRouter(stubQueue{err: errors.New("redis down")}, stubSync{}), http.MethodPost, "/sync")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSync_LastReport(t *testing.T) {
	w := serve(syncRouter(stubQueue{}, stubSync{}), http.MethodGet, "/sync/last")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(syncRouter(stubQueue{}, stubSync{report: &dto.SyncReport{RunID: "r1"}}), http.MethodGet, "/sync/last")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"run_id":"r1"`)
}

type stubCategorias struct {
	global decimal.Decimal
}

func (s *stubCategorias) Listar(context.Context) ([]dto.CategoriaResponse, error) {
	return []dto.CategoriaResponse{{ID: 1, Nombre: "Monitores"}}, nil
}

func (s *stubCategorias) Actualizar(_ context.Context, nombre string, _ dto.ActualizarCategoriaRequest) (dto.CategoriaResponse, error) {
	if nombre != "Monitores" {
		return dto.CategoriaResponse{}, service.ErrCategoriaNoEncontrada
	}
	return dto.CategoriaResponse{ID: 1, Nombre: nombre}, nil
}

func (s *stubCategorias) MarkupGlobal(context.Context) (dto.MarkupGlobalResponse, error) {
	return dto.MarkupGlobalResponse{MarkupPct: s.global}, nil
}

func (s *stubCategorias) ActualizarMarkupGlobal(_ context.Context, pct decimal.Decimal) error {
	s.global = pct
	return nil
}

func sendJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCategorias(t *testing.T) {
	svc := &stubCategorias{}
	h := handler.NewCategoriasHandler(svc)
	r := gin.New()
	r.GET("/categorias", h.Listar)
	r.PUT("/categorias/:nombre", h.Actualizar)
	r.PUT("/markup/global", h.ActualizarMarkupGlobal)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/categorias").Code)

	assert.Equal(t, http.StatusOK, sendJSON(r, http.MethodPut, "/categorias/Monitores", `{"markup_pct":"15"}`).Code)
	assert.Equal(t, http.StatusNotFound, sendJSON(r, http.MethodPut, "/categorias/Otra", `{}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, sendJSON(r, http.MethodPut, "/categorias/Monitores", `{"markup_pct":"-1"}`).Code)
	assert.Equal(t, http.StatusBadRequest, sendJSON(r, http.MethodPut, "/categorias/Monitores", `{`).Code)

	w := sendJSON(r, http.MethodPut, "/markup/global", `{"markup_pct":35}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "35", svc.global.String())
}
