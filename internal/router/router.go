package router

import (
	"github.com/gin-gonic/gin"

	"snapdoc/internal/handler"
	"snapdoc/internal/middleware"
	"snapdoc/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	authSvc service.AuthService,
	corsOrigins []string,
	authH *handler.AuthHandler,
	documentH *handler.DocumentHandler,
	fileH *handler.FileHandler,
	templateH *handler.TemplateHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(corsOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	// Document lifecycle
	documents := protected.Group("/documents")
	documents.POST("", documentH.Create)
	documents.GET("", documentH.List)
	documents.GET("/:id", documentH.GetByID)
	documents.DELETE("/:id", documentH.Delete)
	documents.POST("/:id/process", documentH.Process)
	documents.GET("/:id/status", documentH.Status)
	documents.GET("/:id/extractions", documentH.Extractions)
	documents.GET("/:id/guests", documentH.Guests)
	documents.GET("/:id/export", documentH.Export)

	// Manual corrections
	extractions := protected.Group("/extractions")
	extractions.PUT("/:id", documentH.UpdateExtraction)

	// Presigned direct uploads
	files := protected.Group("/files")
	files.POST("/presign", fileH.Presign)
	files.POST("/:id/complete", fileH.Complete)

	// Guest form templates
	templates := protected.Group("/templates")
	templates.GET("", templateH.List)
	templates.GET("/:id", templateH.GetByID)
	templates.POST("", templateH.Create)
	templates.PUT("/:id", templateH.Update)
	templates.DELETE("/:id", templateH.Delete)

	return r
}
