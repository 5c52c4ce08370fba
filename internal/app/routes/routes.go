package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/portalescolar/diplomas/internal/app/controllers"
	"github.com/portalescolar/diplomas/internal/app/models/dto"
	"github.com/portalescolar/diplomas/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	verificationController *controllers.VerificationController,
	adminController *controllers.AdminController,
	adminAuth *middleware.AdminAuthMiddleware,
	pdfDir string,
) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.APIResponse{
			Data:      dto.SuccessResponse{Message: "ok"},
			Timestamp: time.Now(),
		})
	})

	// --- Public verification routes ---
	router.GET("/verificar/:folio", verificationController.Verificar)
	router.GET("/api/estado/:folio", verificationController.Estado)
	router.GET("/ingresar", verificationController.Ingresar)

	// Locally published documents are served straight from the output
	// directory.
	if pdfDir != "" {
		router.Static("/pdfs", pdfDir)
	}

	// --- Administrative routes ---
	admin := router.Group("/admin")
	admin.Use(adminAuth.RequireAdmin())
	{
		admin.POST("/generar", adminController.Generar)
		admin.POST("/sync", adminController.Sync)
		admin.POST("/auditar", adminController.Auditar)
		admin.POST("/diplomas/:folio/void", adminController.Void)
		admin.POST("/diplomas/:folio/restore", adminController.Restore)
	}
}
