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

type PlaceOrderRequest struct {
	OrderType       models.OrderType    `json:"order_type" binding:"required"`
	DeliveryAddress *string             `json:"delivery_address"`
	Items           []services.CartLine `json:"items" binding:"required,min=1"`
}

// PlaceOrder creates a new order (customer only)
func (h *Handler) PlaceOrder(c *gin.Context) {
	customerID := middleware.GetUserID(c)

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	order, err := h.Orders.CreateOrder(ctx, customerID, req.Items, req.OrderType, req.DeliveryAddress)
	if err != nil {
		h.respondError(c, err)
		return
	}
	minutes, err := h.Orders.TimeRemaining(ctx, order.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":           "Order placed successfully",
		"order":             order,
		"minutes_remaining": minutes,
	})
}

// GetMyOrders returns all orders for the logged-in customer
func (h *Handler) GetMyOrders(c *gin.Context) {
	orders, err := h.Orders.CustomerOrders(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// ownOrder loads the order and checks it belongs to the caller.
func (h *Handler) ownOrder(c *gin.Context) (*models.Order, bool) {
	order, err := h.Orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return nil, false
	}
	if order.CustomerID != middleware.GetUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to you"})
		return nil, false
	}
	return order, true
}

// GetOrderDetail returns a single order with its remaining time and history
func (h *Handler) GetOrderDetail(c *gin.Context) {
	order, ok := h.ownOrder(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	minutes, err := h.Orders.TimeRemaining(ctx, order.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	history, err := h.Orders.History(ctx, order.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order":             order,
		"minutes_remaining": minutes,
		"history":           history,
	})
}

// CancelOrder cancels an order (customer can cancel PLACED or CONFIRMED)
func (h *Handler) CancelOrder(c *gin.Context) {
	order, ok := h.ownOrder(c)
	if !ok {
		return
	}

	err := h.Orders.UpdateOrderStatusBy(c.Request.Context(), order.ID, models.StatusCancelled, nil, services.StatusChange{
		ChangedBy: order.CustomerID,
		Note:      "Order cancelled by customer",
		Check: func(current *models.Order) error {
			return statemachine.CanTransition(current.OrderType, current.Status, models.StatusCancelled, models.RoleCustomer)
		},
	})
	var terr *statemachine.TransitionError
	if errors.As(err, &terr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":         "Cannot cancel order",
			"reason":        terr.Error(),
			"current_state": terr.From,
		})
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled successfully", "order_id": order.ID})
}
