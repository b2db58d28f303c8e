package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"food-delivery-orders/middleware"
	"food-delivery-orders/models"
	"food-delivery-orders/services"
)

// AdminGetAllOrders returns all orders with a dashboard summary
func (h *Handler) AdminGetAllOrders(c *gin.Context) {
	orders, err := h.Orders.AllOrders(c.Request.Context(), models.OrderStatus(c.Query("status")))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if customerID := c.Query("customer_id"); customerID != "" {
		filtered := orders[:0]
		for _, o := range orders {
			if o.CustomerID == customerID {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}

	revenue := decimal.Zero
	for _, o := range orders {
		if o.Status == models.StatusDelivered || o.Status == models.StatusPickedUp {
			revenue = revenue.Add(decimal.NewFromFloat(o.TotalAmount))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"order_summary": statusSummary(orders),
		"total_revenue": revenue.Round(2).InexactFloat64(),
		"count":         len(orders),
		"orders":        orders,
	})
}

type ForceStatusRequest struct {
	Status  models.OrderStatus `json:"status" binding:"required"`
	Reason  string             `json:"reason"`
	AgentID *string            `json:"agent_id"`
}

// AdminForceOrderStatus lets admin override any order state (emergency use)
func (h *Handler) AdminForceOrderStatus(c *gin.Context) {
	var req ForceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	order, err := h.Orders.Get(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	prevStatus := order.Status

	err = h.Orders.UpdateOrderStatusBy(ctx, order.ID, req.Status, req.AgentID, services.StatusChange{
		ChangedBy: middleware.GetUserID(c),
		Note:      "[ADMIN OVERRIDE] " + req.Reason,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Order status force-updated by admin",
		"order_id":        order.ID,
		"previous_status": prevStatus,
		"new_status":      req.Status,
	})
}

// AdminGetAgents lists the delivery pool; ?available=true keeps only free agents
func (h *Handler) AdminGetAgents(c *gin.Context) {
	var (
		agents []models.DeliveryAgent
		err    error
	)
	if c.Query("available") == "true" {
		agents, err = h.Delivery.AvailableAgents(c.Request.Context())
	} else {
		agents, err = h.Delivery.AllAgents(c.Request.Context())
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(agents), "agents": agents})
}

// AdminGetAllUsers returns all users, optionally by role
func (h *Handler) AdminGetAllUsers(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context(), models.UserRole(c.Query("role")))
	if err != nil {
		h.respondError(c, err)
		return
	}
	views := make([]gin.H, len(users))
	for i := range users {
		views[i] = userView(&users[i])
	}
	c.JSON(http.StatusOK, gin.H{"count": len(users), "users": views})
}

type CreateUserRequest struct {
	Username string          `json:"username" binding:"required"`
	Password string          `json:"password" binding:"required,min=6"`
	Role     models.UserRole `json:"role" binding:"required"`
	Name     string          `json:"name"`
}

// AdminCreateUser registers an account of any role. Delivery agents join the pool.
func (h *Handler) AdminCreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.Users.Register(c.Request.Context(), req.Username, req.Password, req.Role, req.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User created", "user": userView(user)})
}
