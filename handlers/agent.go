package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"food-delivery-orders/middleware"
	"food-delivery-orders/models"
)

// GetMyDeliveries returns every order assigned to the logged-in agent
func (h *Handler) GetMyDeliveries(c *gin.Context) {
	agentID := middleware.GetUserID(c)
	ctx := c.Request.Context()

	agent, err := h.Delivery.Agent(ctx, agentID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	orders, err := h.Delivery.AgentOrders(ctx, agentID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"agent_status":     agent.Status,
		"current_order_id": agent.CurrentOrderID,
		"count":            len(orders),
		"orders":           orders,
	})
}

var errNotAssignedAgent = errors.New("not the assigned agent")

type DeliveryStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
	Note   string             `json:"note"`
}

// UpdateDeliveryStatus moves an order along the delivery run. The caller is
// stamped as the order's agent.
func (h *Handler) UpdateDeliveryStatus(c *gin.Context) {
	agentID := middleware.GetUserID(c)

	var req DeliveryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.transition(c, models.RoleDeliveryAgent, UpdateOrderStatusRequest{
		Status:  req.Status,
		Note:    req.Note,
		AgentID: &agentID,
	}, func(order *models.Order) error {
		if order.HasAgent() && *order.DeliveryAgentID != agentID {
			return errNotAssignedAgent
		}
		return nil
	})
}
