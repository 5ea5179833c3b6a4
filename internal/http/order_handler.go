package http

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lms-api/internal/service"
)

// OrderHandler mantiene dependencias para endpoints de ordenes.
type OrderHandler struct {
	logger    *zap.Logger
	orderServ *service.OrderService
}

// NewOrderHandler crea una instancia de OrderHandler con dependencias necesarias.
func NewOrderHandler(logger *zap.Logger, orderServ *service.OrderService) *OrderHandler {
	return &OrderHandler{logger: logger, orderServ: orderServ}
}

// Create maneja POST /create-order.
func (h *OrderHandler) Create(c *gin.Context) {
	snap, ok := CurrentUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "please login to access this resource")
		return
	}

	var req struct {
		CourseID    string          `json:"course_id" binding:"required"`
		PaymentInfo json.RawMessage `json:"payment_info"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create order request", zap.Error(err))
		fail(c, http.StatusBadRequest, "invalid request")
		return
	}

	order, err := h.orderServ.Create(c.Request.Context(), snap, req.CourseID, req.PaymentInfo)
	if err != nil {
		failErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "order": order})
}

// List maneja GET /get-orders (solo admin).
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.orderServ.List(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}
