package router

import (
	"time"

	"github.com/ValeenMar/tovaltech-sub001/internal/config"
	"github.com/ValeenMar/tovaltech-sub001/internal/handler"
	"github.com/ValeenMar/tovaltech-sub001/internal/infra"
	"github.com/ValeenMar/tovaltech-sub001/internal/metrics"
	"github.com/ValeenMar/tovaltech-sub001/internal/middleware"
	"github.com/ValeenMar/tovaltech-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the long-lived collaborators built in main.
type Deps struct {
	Catalogo   service.CatalogoService
	Categorias service.CategoriaService
	Sync       service.SyncService
	Queue      handler.SyncQueue
	Breakers   *infra.BreakerSet
	Metrics    *metrics.Registry
}

// New returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, deps Deps) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(600, time.Minute))

	// ── Handlers ─────────────────────────────────────────────────────────────
	productosH := handler.NewProductosHandler(deps.Catalogo)
	categoriasH := handler.NewCategoriasHandler(deps.Categorias)
	syncH := handler.NewSyncHandler(deps.Queue, deps.Sync)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, deps.Breakers))
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	v1 := r.Group("/v1")
	{
		v1.GET("/productos", productosH.Listar)
		v1.GET("/productos/:sku", productosH.ObtenerPorSKU)
	}

	admin := v1.Group("/admin", middleware.JWTAuth(cfg.JWTSecret), middleware.RequireRole(middleware.RoleAdmin))
	{
		admin.POST("/sync", syncH.Encolar)
		admin.GET("/sync/last", syncH.Ultimo)
		admin.GET("/sync/dlq", handler.DeadLetters(rdb))
		admin.POST("/markup/invalidate", productosH.InvalidarMarkup)
		admin.GET("/markup/global", categoriasH.MarkupGlobal)
		admin.PUT("/markup/global", categoriasH.ActualizarMarkupGlobal)
		admin.GET("/categorias", categoriasH.Listar)
		admin.PUT("/categorias/:nombre", categoriasH.Actualizar)
	}

	return r
}
