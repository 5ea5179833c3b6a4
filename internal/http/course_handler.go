package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lms-api/internal/domain"
	"lms-api/internal/service"
)

// CourseHandler mantiene dependencias para endpoints de cursos.
type CourseHandler struct {
	logger     *zap.Logger
	courseServ *service.CourseService
}

// NewCourseHandler crea una instancia de CourseHandler con dependencias necesarias.
func NewCourseHandler(logger *zap.Logger, courseServ *service.CourseService) *CourseHandler {
	return &CourseHandler{logger: logger, courseServ: courseServ}
}

type courseRequest struct {
	Name           string           `json:"name" binding:"required"`
	Description    string           `json:"description"`
	Categories     string           `json:"categories"`
	Price          float64          `json:"price"`
	EstimatedPrice float64          `json:"estimated_price"`
	Tags           string           `json:"tags"`
	Level          string           `json:"level"`
	DemoURL        string           `json:"demo_url"`
	Benefits       []domain.Titled  `json:"benefits"`
	Prerequisites  []domain.Titled  `json:"prerequisites"`
	Sections       []domain.Section `json:"course_data"`
	Thumbnail      string           `json:"thumbnail"`
}

func (r courseRequest) toInput() service.CourseInput {
	return service.CourseInput{
		Name:           r.Name,
		Description:    r.Description,
		Categories:     r.Categories,
		Price:          r.Price,
		EstimatedPrice: r.EstimatedPrice,
		Tags:           r.Tags,
		Level:          r.Level,
		DemoURL:        r.DemoURL,
		Benefits:       r.Benefits,
		Prerequisites:  r.Prerequisites,
		Sections:       r.Sections,
		Thumbnail:      r.Thumbnail,
	}
}

// Create maneja POST /create-course (solo admin).
func (h *CourseHandler) Create(c *gin.Context) {
	var req courseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create course request", zap.Error(err))
		fail(c, http.StatusBadRequest, "invalid request")
		return
	}

	course, err := h.courseServ.Create(c.Request.Context(), req.toInput())
	if err != nil {
		failErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "course": course})
}

// Edit maneja PUT /edit-course/:id (solo admin).
func (h *CourseHandler) Edit(c *gin.Context) {
	var req courseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid edit course request", zap.Error(err))
		fail(c, http.StatusBadRequest, "invalid request")
		return
	}

	course, err := h.courseServ.Edit(c.Request.Context(), c.Param("id"), req.toInput())
	if err != nil {
		failErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "course": course})
}

// GetSingle maneja GET /get-course/:id (publico, campos proyectados).
func (h *CourseHandler) GetSingle(c *gin.Context) {
	course, fromCache, err := h.courseServ.GetSingle(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "course": course, "from_cache": fromCache})
}

// GetAll maneja GET /get-courses (publico, campos proyectados).
func (h *CourseHandler) GetAll(c *gin.Context) {
	courses, fromCache, err := h.courseServ.GetAll(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "courses": courses, "from_cache": fromCache})
}

// GetContent maneja GET /get-course-content/:id (solo compradores).
func (h *CourseHandler) GetContent(c *gin.Context) {
	snap, ok := CurrentUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "please login to access this resource")
		return
	}

	sections, err := h.courseServ.GetContent(c.Request.Context(), snap, c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "content": sections})
}

// AddQuestion maneja PUT /add-question.
func (h *CourseHandler) AddQuestion(c *gin.Context) {
	snap, ok := CurrentUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "please login to access this resource")
		return
	}

	var req struct {
		CourseID  string `json:"course_id" binding:"required"`
		SectionID string `json:"content_id" binding:"required"`
		Question  string `json:"question" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request")
		return
	}

	course, err := h.courseServ.AddQuestion(c.Request.Context(), snap, req.CourseID, req.SectionID, req.Question)
	if err != nil {
		failErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "course": course})
}

// AddAnswer maneja PUT /add-answer.
func (h *CourseHandler) AddAnswer(c *gin.Context) {
	snap, ok := CurrentUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "please login to access this resource")
		return
	}

	var req struct {
		CourseID   string `json:"course_id" binding:"required"`
		SectionID  string `json:"content_id" binding:"required"`
		QuestionID string `json:"question_id" binding:"required"`
		Answer     string `json:"answer" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request")
		return
	}

	course, err := h.courseServ.AddAnswer(c.Request.Context(), snap, req.CourseID, req.SectionID, req.QuestionID, req.Answer)
	if err != nil {
		failErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "course": course})
}

// AddReview maneja PUT /add-review/:id (solo compradores).
func (h *CourseHandler) AddReview(c *gin.Context) {
	snap, ok := CurrentUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "please login to access this resource")
		return
	}

	var req struct {
		Rating  float64 `json:"rating" binding:"required"`
		Comment string  `json:"review" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request")
		return
	}

	course, err := h.courseServ.AddReview(c.Request.Context(), snap, c.Param("id"), req.Rating, req.Comment)
	if err != nil {
		failErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "course": course})
}

// AddReviewReply maneja PUT /add-reply (solo admin).
func (h *CourseHandler) AddReviewReply(c *gin.Context) {
	snap, ok := CurrentUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "please login to access this resource")
		return
	}

	var req struct {
		CourseID string `json:"course_id" binding:"required"`
		ReviewID string `json:"review_id" binding:"required"`
		Comment  string `json:"comment" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request")
		return
	}

	course, err := h.courseServ.AddReviewReply(c.Request.Context(), snap, req.CourseID, req.ReviewID, req.Comment)
	if err != nil {
		failErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "course": course})
}

// ListAdmin maneja GET /get-admin-courses (solo admin, sin proyeccion).
func (h *CourseHandler) ListAdmin(c *gin.Context) {
	courses, err := h.courseServ.ListAdmin(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "courses": courses})
}

// Delete maneja DELETE /delete-course/:id (solo admin).
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.courseServ.Delete(c.Request.Context(), c.Param("id")); err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "course deleted successfully"})
}
