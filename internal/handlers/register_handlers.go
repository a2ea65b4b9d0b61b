package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/SscSPs/lecturer_claims_app/cmd/docs"
	"github.com/SscSPs/lecturer_claims_app/internal/core/domain"
	portssvc "github.com/SscSPs/lecturer_claims_app/internal/core/ports/services"
	"github.com/SscSPs/lecturer_claims_app/internal/metrics"
	"github.com/SscSPs/lecturer_claims_app/internal/middleware"
	"github.com/SscSPs/lecturer_claims_app/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) error {
	apiLimit, err := newRateLimit(cfg.RateLimit)
	if err != nil {
		return fmt.Errorf("invalid RATE_LIMIT: %w", err)
	}
	authLimit, err := newRateLimit(cfg.AuthRateLimit)
	if err != nil {
		return fmt.Errorf("invalid AUTH_RATE_LIMIT: %w", err)
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	public := r.Group("/api/v1")
	registerAuthRoutes(public, services, authLimit)

	setupAPIV1Routes(r, cfg, services, apiLimit)

	setupSwaggerRoutes(r, cfg)
	return nil
}

// newRateLimit builds a per-IP limiter from a "<limit>-<period>" string such as "100-M".
func newRateLimit(formatted string) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, err
	}
	return middleware.RateLimit(limiter.New(memory.NewStore(), rate)), nil
}

// setupAPIV1Routes configures the authenticated /api/v1 group and its role-guarded subgroups.
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	limit gin.HandlerFunc,
) {
	v1 := r.Group("/api/v1", limit, middleware.AuthMiddleware(cfg.JWTSecret))
	identity := services.Identity

	// Any existing user.
	anyone := v1.Group("", middleware.RequireRoles(identity))
	anyone.GET("/me", getMe(identity, services.User))
	registerClaimRoutes(anyone, services.Claim, middleware.RequireRoles(identity, domain.RoleLecturer))

	review := v1.Group("/review", middleware.RequireRoles(identity, domain.ReviewerRoles...))
	registerReviewRoutes(review, services.Claim)

	// Managers may read payment summaries; the services narrow the rest to HR and Admin.
	hr := v1.Group("/hr", middleware.RequireRoles(identity, domain.RoleHR, domain.RoleManager, domain.RoleAdmin))
	registerHRRoutes(hr, services)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
