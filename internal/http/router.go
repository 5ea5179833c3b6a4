package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lms-api/internal/domain"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	origin string,
	guard *AuthGuard,
	userH *UserHandler,
	courseH *CourseHandler,
	orderH *OrderHandler,
	notifH *NotificationHandler,
	layoutH *LayoutHandler,
	analyticsH *AnalyticsHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y CORS con credenciales.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), corsMiddleware(origin))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok"})
	})

	api := r.Group("/api/v1")

	// Auth y cuenta.
	api.POST("/registration", userH.Register)
	api.POST("/activate-user", userH.Activate)
	api.POST("/login", userH.Login)
	api.POST("/social-auth", userH.SocialAuth)
	api.GET("/refresh", userH.Refresh)
	api.GET("/logout", guard.RequireAuth(), userH.Logout)
	api.GET("/me", guard.RequireAuth(), userH.GetMe)
	api.PUT("/update-user-info", guard.RequireAuth(), userH.UpdateInfo)
	api.PUT("/update-user-password", guard.RequireAuth(), userH.UpdatePassword)
	api.PUT("/update-user-avatar", guard.RequireAuth(), userH.UpdateAvatar)
	api.GET("/get-users", guard.RequireAuth(), guard.RequireRoles(domain.RoleAdmin), userH.ListUsers)
	api.PUT("/update-user-role", guard.RequireAuth(), guard.RequireRoles(domain.RoleAdmin), userH.UpdateRole)
	api.DELETE("/delete-user/:id", guard.RequireAuth(), guard.RequireRoles(domain.RoleAdmin), userH.DeleteUser)

	// Cursos.
	api.POST("/create-course", guard.RequireAuth(), guard.RequireRoles(domain.RoleAdmin), courseH.Create)
	api.PUT("/edit-course/:id", guard.RequireAuth(), guard.RequireRoles(domain.RoleAdmin), courseH.Edit)
	api.GET("/get-course/:id", courseH.GetSingle)
	api.GET("/get-courses", courseH.GetAll)
	api.GET("/get-course-content/:id", guard.RequireAuth(), courseH.GetContent)
	api.PUT("/add-question", guard.RequireAuth(), courseH.AddQuestion)
	api.PUT("/add-answer", guard.RequireAuth(), courseH.AddAnswer)
	api.PUT("/add-review/:id", guard.RequireAuth(), courseH.AddReview)
	api.PUT("/add-reply", guard.RequireAuth(), guard.RequireRoles(domain.RoleAdmin), courseH.AddReviewReply)
	api.GET("/get-admin-courses", guard.RequireAuth(), guard.RequireRoles(domain.RoleAdmin), courseH.ListAdmin)
	api.DELETE("/delete-course/:id", guard.RequireAuth(), guard.RequireRoles(domain.RoleAdmin), courseH.Delete)

	// Ordenes.
	api.POST("/create-order", guard.RequireAuth(), orderH.Create)
	api.GET("/get-orders", guard.RequireAuth(), guard.RequireRoles(domain.RoleAdmin), orderH.List)

	// Avisos.
	api.GET("/get-all-notifications", guard.RequireAuth(), guard.RequireRoles(domain.RoleAdmin), notifH.List)
	api.PUT("/update-notification/:id", guard.RequireAuth(), guard.RequireRoles(domain.RoleAdmin), notifH.MarkRead)

	// Layout.
	api.POST("/create-layout", guard.RequireAuth(), guard.RequireRoles(domain.RoleAdmin), layoutH.Upsert)
	api.PUT("/edit-layout", guard.RequireAuth(), guard.RequireRoles(domain.RoleAdmin), layoutH.Upsert)
	api.GET("/get-layout/:type", layoutH.GetByType)

	// Analiticas.
	api.GET("/get-users-analytics", guard.RequireAuth(), guard.RequireRoles(domain.RoleAdmin), analyticsH.Users)
	api.GET("/get-courses-analytics", guard.RequireAuth(), guard.RequireRoles(domain.RoleAdmin), analyticsH.Courses)
	api.GET("/get-orders-analytics", guard.RequireAuth(), guard.RequireRoles(domain.RoleAdmin), analyticsH.Orders)

	r.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "route "+c.Request.URL.Path+" not found")
	})

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// corsMiddleware habilita al frontend configurado a enviar cookies.
func corsMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
