package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"food-delivery-orders/catalog"
)

type MenuItemRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Category    string  `json:"category"`
}

// AddMenuItem adds a dish to the menu
func (h *Handler) AddMenuItem(c *gin.Context) {
	var req MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := h.Menu.Add(c.Request.Context(), req.Name, req.Description, req.Price, req.Category)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Menu item added", "item": item})
}

// UpdateMenuItem changes the fields present in the body
func (h *Handler) UpdateMenuItem(c *gin.Context) {
	var req catalog.ItemUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := h.Menu.Update(c.Request.Context(), c.Param("itemId"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item updated", "item": item})
}

func (h *Handler) DeleteMenuItem(c *gin.Context) {
	if err := h.Menu.Remove(c.Request.Context(), c.Param("itemId")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted"})
}
