package httpserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"quotation-crm/internal/domain"
)

// AnalyticsService computes the dashboard summary.
type AnalyticsService interface {
	Summary(ctx context.Context) (*domain.Summary, error)
}

func summaryHandler(svc AnalyticsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sum, err := svc.Summary(c.Request.Context())
		if err != nil {
			writeFailure(c, err)
			return
		}
		writeSuccess(c, http.StatusOK, msgReceived, sum)
	}
}
