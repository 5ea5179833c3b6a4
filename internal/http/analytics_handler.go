package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lms-api/internal/repository"
)

const analyticsWindowMonths = 12

// AnalyticsHandler expone conteos de altas por mes para el panel admin.
type AnalyticsHandler struct {
	logger  *zap.Logger
	users   repository.UserRepository
	courses repository.CourseRepository
	orders  repository.OrderRepository
}

// NewAnalyticsHandler crea una instancia de AnalyticsHandler con dependencias necesarias.
func NewAnalyticsHandler(
	logger *zap.Logger,
	users repository.UserRepository,
	courses repository.CourseRepository,
	orders repository.OrderRepository,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		logger:  logger,
		users:   users,
		courses: courses,
		orders:  orders,
	}
}

func analyticsSince() time.Time {
	return time.Now().UTC().AddDate(0, -analyticsWindowMonths, 0)
}

// Users maneja GET /get-users-analytics (solo admin).
func (h *AnalyticsHandler) Users(c *gin.Context) {
	counts, err := h.users.CountByMonth(c.Request.Context(), analyticsSince())
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "analytics": counts})
}

// Courses maneja GET /get-courses-analytics (solo admin).
func (h *AnalyticsHandler) Courses(c *gin.Context) {
	counts, err := h.courses.CountByMonth(c.Request.Context(), analyticsSince())
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "analytics": counts})
}

// Orders maneja GET /get-orders-analytics (solo admin).
func (h *AnalyticsHandler) Orders(c *gin.Context) {
	counts, err := h.orders.CountByMonth(c.Request.Context(), analyticsSince())
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "analytics": counts})
}
