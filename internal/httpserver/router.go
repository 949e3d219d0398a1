package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"quotation-crm/internal/domain"
	"quotation-crm/internal/logger"
	"quotation-crm/internal/metrics"
)

// Deps are the collaborators the router needs. Metrics and Gatherer are optional.
type Deps struct {
	Customers   CustomerService
	Analytics   AnalyticsService
	IDs         IDGenerator
	DB          Pinger
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	CORSOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(log *zap.Logger, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.RemoveExtraSlash = true
	router.Use(logger.Middleware(log, "/healthz", "/readyz", "/metrics"))
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
	}
	router.Use(gin.CustomRecovery(func(c *gin.Context, rec any) {
		logger.FromContext(c.Request.Context(), log).Error("panic recovered", zap.Any("panic", rec), zap.Stack("stack"))
		writeFailure(c, &domain.Error{Kind: domain.KindQuery, Message: "internal error"})
	}))
	router.Use(cors.New(corsConfig(deps.CORSOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.DB))
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(deps.Gatherer)))
	}

	customers := &customerHandler{svc: deps.Customers, ids: deps.IDs}

	// Routes used by the legacy front end.
	router.POST("/create", customers.legacyCreate)
	router.POST("/view", customers.legacyView)
	router.POST("/viewByID", customers.legacyViewByID)
	router.POST("/update", customers.legacyUpdate)
	router.POST("/delete", customers.legacyDelete)

	api := router.Group("/customers")
	api.GET("", customers.list)
	api.GET("/next-id", customers.nextID)
	api.GET("/:id", customers.getByPath)
	api.POST("", customers.create)
	api.PUT("/:id", customers.replace)
	api.DELETE("/:id", customers.deleteByPath)

	if deps.Analytics != nil {
		router.GET("/analytics/summary", summaryHandler(deps.Analytics))
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, envelope{
			Outcome: outcomeFailure,
			Success: successCode(domain.KindNotFound),
			Kind:    domain.KindNotFound,
			Message: "route not found",
		})
	})

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", logger.RequestIDHeader},
		ExposeHeaders: []string{logger.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
