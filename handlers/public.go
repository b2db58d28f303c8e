package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"food-delivery-orders/models"
	"food-delivery-orders/statemachine"
)

// GetMenu returns the menu, optionally for one category (public)
func (h *Handler) GetMenu(c *gin.Context) {
	items, err := h.Menu.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(items), "menu": items})
}

func (h *Handler) GetMenuItem(c *gin.Context) {
	item, err := h.Menu.Get(c.Request.Context(), c.Param("itemId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

// GetStateMachineInfo returns the full state machine for informational purposes
func (h *Handler) GetStateMachineInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   statemachine.GetAllTransitions(),
		"terminal_states": []models.OrderStatus{models.StatusDelivered, models.StatusPickedUp, models.StatusCancelled},
		"description":     "Food Delivery Order Lifecycle State Machine",
	})
}

func (h *Handler) Health(c *gin.Context) {
	if h.Ping != nil {
		if err := h.Ping(c.Request.Context()); err != nil {
			h.Log.WithError(err).Warn("Health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "Food Delivery Order Management API",
	})
}
