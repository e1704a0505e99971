package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/ledger-api/internal/config"
	domainRepo "github.com/sangkips/ledger-api/internal/domain/repository"
	"github.com/sangkips/ledger-api/internal/presentation/http/handler"
	"github.com/sangkips/ledger-api/internal/presentation/http/middleware"
	"github.com/sangkips/ledger-api/pkg/utils"
	"go.uber.org/zap"
)

// Roles allowed to change ledger data.
var writerRoles = []string{"admin", "accountant"}

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Import   *handler.ImportHandler
	Customer *handler.CustomerHandler
	Ledger   *handler.LedgerHandler
	Tenant   *handler.TenantHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	Logger          *zap.Logger
	TenantRepo      domainRepo.TenantRepository
	IdempotencyRepo domainRepo.IdempotencyRepository
	// RateLimiter is optional
	RateLimiter *middleware.TenantRateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))
	router.MaxMultipartMemory = deps.Cfg.Import.MaxFileSize

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		if deps.RateLimiter != nil {
			protected.Use(deps.RateLimiter.Middleware())
		}
		protected.Use(middleware.TenantMiddleware(deps.TenantRepo))

		registerImportRoutes(protected, h, deps)
		registerCustomerRoutes(protected, h)
		registerLedgerRoutes(protected, h)
		registerTenantRoutes(protected, h)
	}

	return router
}

func registerImportRoutes(rg *gin.RouterGroup, h *Handlers, deps *Deps) {
	imports := rg.Group("/imports")
	imports.Use(middleware.RequireRole(writerRoles...))
	{
		imports.POST("/parse", h.Import.Parse)
		imports.POST("/errors.csv", h.Import.ErrorsCSV)

		idempotent := imports.Group("")
		idempotent.Use(middleware.Idempotency(middleware.IdempotencyConfig{Repo: deps.IdempotencyRepo}))
		idempotent.POST("/apply", h.Import.Apply)
		idempotent.POST("/apply-file", h.Import.ApplyFile)
	}
}

func registerCustomerRoutes(rg *gin.RouterGroup, h *Handlers) {
	customers := rg.Group("/customers")
	{
		customers.GET("", h.Customer.List)
		customers.GET("/:id", h.Customer.Get)
		customers.GET("/:id/ledger", h.Customer.Ledger)
		customers.POST("", middleware.RequireRole(writerRoles...), h.Customer.Create)
		customers.POST("/:id/payments", middleware.RequireRole(writerRoles...), h.Customer.RecordPayment)
	}
}

func registerLedgerRoutes(rg *gin.RouterGroup, h *Handlers) {
	rg.GET("/ledger/verify", middleware.RequireRole(writerRoles...), h.Ledger.Verify)
}

func registerTenantRoutes(rg *gin.RouterGroup, h *Handlers) {
	rg.GET("/tenant", h.Tenant.GetCurrentTenant)
	rg.PUT("/tenant/settings", middleware.RequireRole("admin"), h.Tenant.UpdateSettings)
}
