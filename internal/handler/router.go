package handler

import (
	"context"
	"net/http"
	"time"

	"hospital-equipment-tracker/internal/config"
	"hospital-equipment-tracker/internal/middleware"
	"hospital-equipment-tracker/pkg/utils"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers groups every HTTP handler the router serves
type Handlers struct {
	Auth      *AuthHandler
	Equipment *EquipmentHandler
	Training  *TrainingHandler
	Settings  *SettingsHandler
	Transfer  *TransferHandler
	Reminder  *ReminderHandler
	Backup    *BackupHandler
	Audit     *AuditHandler
	Dashboard *DashboardHandler
	Users     *UserHandler
}

// NewRouter builds the engine. ping reports database health for /health.
func NewRouter(cfg config.CORSConfig, log *zap.Logger, ping func(context.Context) error, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(cfg))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if ping != nil {
			if err := ping(ctx); err != nil {
				_ = c.Error(err)
				utils.ErrorResponse(c, http.StatusServiceUnavailable, "database unavailable")
				return
			}
		}
		utils.SuccessResponse(c, gin.H{
			"status":  "healthy",
			"service": "hospital-equipment-tracker",
		})
	})

	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", h.Auth.Logout)
	}

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware())
	admin := middleware.RequireAdmin()

	ppm := api.Group("/equipment/ppm")
	{
		ppm.GET("", h.Equipment.ListPPM)
		ppm.GET("/:serial", h.Equipment.GetPPM)
		ppm.POST("", admin, h.Equipment.CreatePPM)
		ppm.PUT("/:serial", admin, h.Equipment.UpdatePPM)
		ppm.DELETE("/:serial", admin, h.Equipment.DeletePPM)
		ppm.POST("/preview", h.Equipment.PreviewPPM)
		ppm.POST("/refresh-status", admin, h.Equipment.RefreshPPM)
		ppm.POST("/bulk-delete", admin, h.Equipment.BulkDeletePPM)
	}

	ocm := api.Group("/equipment/ocm")
	{
		ocm.GET("", h.Equipment.ListOCM)
		ocm.GET("/:serial", h.Equipment.GetOCM)
		ocm.POST("", admin, h.Equipment.CreateOCM)
		ocm.PUT("/:serial", admin, h.Equipment.UpdateOCM)
		ocm.DELETE("/:serial", admin, h.Equipment.DeleteOCM)
		ocm.POST("/refresh-status", admin, h.Equipment.RefreshOCM)
		ocm.POST("/bulk-delete", admin, h.Equipment.BulkDeleteOCM)
	}

	api.GET("/export/:type", h.Transfer.Export)
	api.POST("/import/:type", admin, h.Transfer.Import)
	api.GET("/reports/status.pdf", h.Transfer.StatusReport)
	api.GET("/dashboard", h.Dashboard.Summary)

	trainings := api.Group("/trainings")
	{
		trainings.GET("", h.Training.List)
		trainings.GET("/:id", h.Training.Get)
		trainings.POST("", admin, h.Training.Create)
		trainings.PUT("/:id", admin, h.Training.Update)
		trainings.DELETE("/:id", admin, h.Training.Delete)
	}

	api.GET("/settings", h.Settings.Get)
	api.PUT("/settings", admin, h.Settings.Update)

	api.GET("/reminders/upcoming", h.Reminder.Upcoming)
	api.POST("/reminders/run", admin, h.Reminder.Run)

	backups := api.Group("/backups", admin)
	{
		backups.GET("", h.Backup.List)
		backups.POST("", h.Backup.Create)
		backups.DELETE("/:name", h.Backup.Delete)
	}

	api.GET("/audit-logs", admin, h.Audit.List)

	users := api.Group("/users", admin)
	{
		users.GET("", h.Users.List)
		users.POST("", h.Users.Create)
		users.PUT("/:id", h.Users.Update)
		users.DELETE("/:id", h.Users.Delete)
	}

	return r
}
