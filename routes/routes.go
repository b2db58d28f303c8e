package routes

import (
	"github.com/gin-gonic/gin"

	"food-delivery-orders/handlers"
	"food-delivery-orders/middleware"
	"food-delivery-orders/models"
)

func SetupRoutes(r *gin.Engine, h *handlers.Handler, auth *middleware.Auth) {
	r.GET("/health", h.Health)

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.POST("/auth/register", h.Register)
		public.POST("/auth/login", h.Login)

		public.GET("/menu", h.GetMenu)
		public.GET("/menu/:itemId", h.GetMenuItem)

		public.GET("/state-machine", h.GetStateMachineInfo)
	}

	// ── Authenticated routes ───────────────────────────────────────
	authed := r.Group("/api")
	authed.Use(auth.AuthRequired())
	{
		authed.GET("/profile", h.GetProfile)
	}

	// ── Customer routes ────────────────────────────────────────────
	customer := r.Group("/api/customer")
	customer.Use(auth.AuthRequired(), middleware.RoleRequired(models.RoleCustomer))
	{
		customer.POST("/orders", h.PlaceOrder)
		customer.GET("/orders", h.GetMyOrders)
		customer.GET("/orders/:id", h.GetOrderDetail)
		customer.PUT("/orders/:id/cancel", h.CancelOrder)
	}

	// ── Restaurant manager routes ──────────────────────────────────
	manager := r.Group("/api/manager")
	manager.Use(auth.AuthRequired(), middleware.RoleRequired(models.RoleRestaurantManager))
	{
		manager.POST("/menu", h.AddMenuItem)
		manager.PUT("/menu/:itemId", h.UpdateMenuItem)
		manager.DELETE("/menu/:itemId", h.DeleteMenuItem)

		manager.GET("/orders", h.GetManagerOrders)
		manager.PUT("/orders/:id/status", h.UpdateOrderStatus)
		manager.POST("/orders/:id/assign", h.AssignAgent)
	}

	// ── Delivery agent routes ──────────────────────────────────────
	agent := r.Group("/api/agent")
	agent.Use(auth.AuthRequired(), middleware.RoleRequired(models.RoleDeliveryAgent))
	{
		agent.GET("/orders", h.GetMyDeliveries)
		agent.PUT("/orders/:id/status", h.UpdateDeliveryStatus)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(auth.AuthRequired(), middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/orders", h.AdminGetAllOrders)
		admin.PUT("/orders/:id/status", h.AdminForceOrderStatus)
		admin.POST("/orders/:id/assign", h.AssignAgent)
		admin.GET("/agents", h.AdminGetAgents)
		admin.GET("/users", h.AdminGetAllUsers)
		admin.POST("/users", h.AdminCreateUser)
	}
}
