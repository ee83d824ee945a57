package handlers

import (
	"net/http"

	"lmsplatform/internal/application/usecase"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orders *usecase.OrderUseCase
}

func NewOrderHandler(orders *usecase.OrderUseCase) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// POST /api/v1/create-order
func (h *OrderHandler) Create(c *gin.Context) {
	var in usecase.CreateOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, err)
		return
	}

	order, err := h.orders.Create(c, currentUser(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "order": order})
}

// GET /api/v1/get-orders (админ)
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.orders.GetAll(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}
