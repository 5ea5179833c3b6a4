package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lms-api/internal/domain"
	"lms-api/internal/service"
)

// LayoutHandler mantiene dependencias para endpoints de layout.
type LayoutHandler struct {
	logger     *zap.Logger
	layoutServ *service.LayoutService
}

// NewLayoutHandler crea una instancia de LayoutHandler con dependencias necesarias.
func NewLayoutHandler(logger *zap.Logger, layoutServ *service.LayoutService) *LayoutHandler {
	return &LayoutHandler{logger: logger, layoutServ: layoutServ}
}

type layoutRequest struct {
	Type       string           `json:"type" binding:"required"`
	Image      string           `json:"image"`
	Title      string           `json:"title"`
	SubTitle   string           `json:"sub_title"`
	FAQ        []domain.FAQItem `json:"faq"`
	Categories []domain.Titled  `json:"categories"`
}

// Upsert maneja POST /create-layout y PUT /edit-layout (solo admin).
// Un layout por tipo: crear sobre uno existente lo reemplaza.
func (h *LayoutHandler) Upsert(c *gin.Context) {
	var req layoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid layout request", zap.Error(err))
		fail(c, http.StatusBadRequest, "invalid request")
		return
	}

	layout, err := h.layoutServ.Upsert(c.Request.Context(), service.LayoutInput{
		Type:       req.Type,
		BannerData: req.Image,
		Title:      req.Title,
		SubTitle:   req.SubTitle,
		FAQ:        req.FAQ,
		Categories: req.Categories,
	})
	if err != nil {
		failErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "layout": layout})
}

// GetByType maneja GET /get-layout/:type (publico).
func (h *LayoutHandler) GetByType(c *gin.Context) {
	layout, err := h.layoutServ.GetByType(c.Request.Context(), c.Param("type"))
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "layout": layout})
}
