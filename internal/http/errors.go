package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"lms-api/internal/service"
)

// fail responde con el sobre de error uniforme de la API.
func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// failErr traduce errores de servicio y de infraestructura a respuestas
// HTTP. Todo lo no reconocido cae en 500 con el texto del error.
func failErr(c *gin.Context, err error) {
	var pgErr *pgconn.PgError

	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, service.ErrSectionNotFound),
		errors.Is(err, service.ErrQuestionNotFound),
		errors.Is(err, service.ErrReviewNotFound),
		errors.Is(err, service.ErrNotificationNotFound),
		errors.Is(err, service.ErrLayoutNotFound),
		errors.Is(err, pgx.ErrNoRows):
		fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrAlreadyPurchased):
		fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrActivationCode),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidLayoutType),
		errors.Is(err, service.ErrPaymentUnverified):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrTokenExpired),
		errors.Is(err, service.ErrTokenInvalid):
		fail(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrNotEnrolled):
		fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrEmailSendFailure):
		fail(c, http.StatusServiceUnavailable, "email delivery unavailable")
	case errors.As(err, &pgErr) && pgErr.Code == "23505":
		fail(c, http.StatusConflict, "duplicate entry")
	default:
		fail(c, http.StatusInternalServerError, err.Error())
	}
}
