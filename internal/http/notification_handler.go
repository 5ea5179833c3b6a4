package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lms-api/internal/service"
)

// NotificationHandler mantiene dependencias para endpoints de avisos.
type NotificationHandler struct {
	logger    *zap.Logger
	notifServ *service.NotificationService
}

// NewNotificationHandler crea una instancia de NotificationHandler con dependencias necesarias.
func NewNotificationHandler(logger *zap.Logger, notifServ *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{logger: logger, notifServ: notifServ}
}

// List maneja GET /get-all-notifications (solo admin).
func (h *NotificationHandler) List(c *gin.Context) {
	notifications, err := h.notifServ.List(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "notifications": notifications})
}

// MarkRead maneja PUT /update-notification/:id (solo admin).
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	notification, err := h.notifServ.MarkRead(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "notification": notification})
}
