package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"food-delivery-orders/middleware"
	"food-delivery-orders/models"
	"food-delivery-orders/services"
	"food-delivery-orders/statemachine"
)

// GetManagerOrders returns the restaurant's orders with a per-status summary
func (h *Handler) GetManagerOrders(c *gin.Context) {
	orders, err := h.Orders.AllOrders(c.Request.Context(), models.OrderStatus(c.Query("status")))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order_summary": statusSummary(orders),
		"count":         len(orders),
		"orders":        orders,
	})
}

type UpdateOrderStatusRequest struct {
	Status  models.OrderStatus `json:"status" binding:"required"`
	Note    string             `json:"note"`
	AgentID *string            `json:"agent_id"`
}

// UpdateOrderStatus handles the manager's state transitions
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.transition(c, models.RoleRestaurantManager, req, nil)
}

// transition applies the change if the lifecycle table allows it for actor.
// The table is checked against the order as loaded inside the update, so a
// concurrent change cannot slip past it. extra runs first when set.
func (h *Handler) transition(c *gin.Context, actor models.UserRole, req UpdateOrderStatusRequest, extra func(*models.Order) error) {
	orderID := c.Param("id")
	var prevStatus models.OrderStatus
	err := h.Orders.UpdateOrderStatusBy(c.Request.Context(), orderID, req.Status, req.AgentID, services.StatusChange{
		ChangedBy: middleware.GetUserID(c),
		Note:      req.Note,
		Check: func(order *models.Order) error {
			if extra != nil {
				if err := extra(order); err != nil {
					return err
				}
			}
			prevStatus = order.Status
			return statemachine.CanTransition(order.OrderType, order.Status, req.Status, actor)
		},
	})

	var terr *statemachine.TransitionError
	switch {
	case errors.As(err, &terr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":             "Invalid state transition",
			"current_status":    terr.From,
			"requested":         terr.To,
			"reason":            terr.Error(),
			"valid_next_states": terr.ValidNext(),
		})
		return
	case errors.Is(err, errNotAssignedAgent):
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not the assigned agent for this order"})
		return
	case err != nil:
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Order status updated",
		"order_id":        orderID,
		"previous_status": prevStatus,
		"current_status":  req.Status,
	})
}

// AssignAgent hands a delivery order to a random available agent
func (h *Handler) AssignAgent(c *gin.Context) {
	ctx := c.Request.Context()
	order, err := h.Orders.Get(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if order.OrderType != models.OrderTypeDelivery {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Only delivery orders get a delivery agent"})
		return
	}
	if order.Status.IsTerminal() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Order is already " + string(order.Status)})
		return
	}

	agentID, err := h.Delivery.AssignDeliveryAgent(ctx, order.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Delivery agent assigned",
		"order_id": order.ID,
		"agent_id": agentID,
	})
}
