package metricsapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/linearflow/linearflow/pkg/iam/auth"
	"github.com/linearflow/linearflow/tracker/metrics/metricssrv"
)

// Handlers provides HTTP handlers for dashboard metrics
type Handlers struct {
	service *metricssrv.DashboardService
}

// NewHandlers creates a new metrics handlers instance
func NewHandlers(service *metricssrv.DashboardService) *Handlers {
	return &Handlers{
		service: service,
	}
}

// GetDashboard returns the authenticated user's dashboard figures
// GET /api/metrics/dashboard
func (h *Handlers) GetDashboard(c *fiber.Ctx) error {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return auth.ErrMissingToken()
	}

	summary, err := h.service.GetDashboard(c.Context(), authContext.UserID)
	if err != nil {
		return err
	}

	return c.JSON(summary)
}

// RegisterRoutes registers metrics routes
func RegisterRoutes(app *fiber.App, handlers *Handlers, authMiddleware *auth.TokenMiddleware) {
	api := app.Group("/api/metrics")

	api.Get("/dashboard",
		authMiddleware.Authenticate(),
		handlers.GetDashboard,
	)
}
