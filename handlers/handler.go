package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"food-delivery-orders/catalog"
	"food-delivery-orders/middleware"
	"food-delivery-orders/models"
	"food-delivery-orders/services"
)

// Deps are the collaborators shared by every handler.
type Deps struct {
	Orders   *services.OrderManager
	Delivery *services.DeliveryManager
	Users    *services.UserManager
	Menu     *catalog.Menu
	Auth     *middleware.Auth
	Log      logrus.FieldLogger
	// Ping checks the backing store for /health. Optional.
	Ping func(ctx context.Context) error
}

type Handler struct {
	Deps
}

func New(deps Deps) *Handler {
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}
	return &Handler{Deps: deps}
}

// respondError maps service outcomes onto HTTP statuses. Anything that is not
// an expected outcome is logged and reported as a 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, catalog.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrItemNotFound),
		errors.Is(err, services.ErrInvalidOrder),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidUser),
		errors.Is(err, catalog.ErrInvalidItem):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNoAgentsAvailable),
		errors.Is(err, services.ErrAgentBusy),
		errors.Is(err, services.ErrUsernameTaken):
		status = http.StatusConflict
	case errors.Is(err, services.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	}

	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		h.Log.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// statusSummary counts orders per status for dashboards.
func statusSummary(orders []models.Order) map[string]int {
	summary := map[string]int{}
	for _, o := range orders {
		summary[string(o.Status)]++
	}
	return summary
}
