package router

import (
	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/config"
	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/handler"
	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/ledger"
	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/middleware"
	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/ocr"
	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/report"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine and the full API surface.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	ledgerSvc := ledger.New(db)
	ocrClient := ocr.NewClient(cfg.OCR)
	composer := report.NewComposer(cfg.Report.Timezone, cfg.Report.Sender)

	api := r.Group("/api")

	// auth (no token required)
	authHandler := handler.NewAuthHandler(db, cfg.JWT.Secret, cfg.JWT.ExpireHours,
		cfg.Security.BcryptCost, cfg.Security.MasterPassword)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// authenticated surface
	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(cfg.JWT.Secret, db),
		middleware.AuditMiddleware(db),
	)

	protected.GET("/me", handler.GetMe)

	// admin-only surface
	admin := protected.Group("")
	admin.Use(middleware.RequireAdmin())

	leaderHandler := handler.NewLeaderHandler(db)
	protected.GET("/leaders", leaderHandler.List)
	admin.POST("/leaders", leaderHandler.Create)
	admin.PUT("/leaders/:id", leaderHandler.Update)
	admin.DELETE("/leaders/:id", leaderHandler.Delete(cfg.Security.MasterPassword))
	admin.POST("/leaders/import", leaderHandler.ImportCSV)

	participantHandler := handler.NewParticipantHandler(db, cfg.Security.MasterPassword,
		cfg.Security.DeletionLockDays)
	protected.GET("/participants", participantHandler.List)
	admin.POST("/participants", participantHandler.Create)
	admin.PUT("/participants/:id", participantHandler.Update)
	admin.DELETE("/participants/:id", participantHandler.Delete)
	admin.POST("/participants/import", participantHandler.ImportCSV)

	meetingHandler := handler.NewMeetingHandler(db, ledgerSvc, ocrClient)
	protected.GET("/meetings", meetingHandler.List)
	protected.GET("/meetings/:id/attendance", meetingHandler.Attendance)
	protected.GET("/meetings/:id/export/csv", meetingHandler.ExportCSV)
	protected.GET("/meetings/:id/export/xlsx", meetingHandler.ExportXLSX)
	admin.POST("/meetings/scan", meetingHandler.Scan)
	admin.POST("/meetings", meetingHandler.Confirm)
	admin.POST("/meetings/:id/reopen", meetingHandler.Reopen)
	admin.PUT("/meetings/:id/batches", meetingHandler.RewriteBatch)
	admin.PUT("/meetings/:id/attendance", meetingHandler.Override)
	admin.POST("/meetings/:id/fines/recompute", meetingHandler.RecomputeFines)

	fineHandler := handler.NewFineHandler(db)
	protected.GET("/fines", fineHandler.List)
	protected.PUT("/fines/:id/toggle", fineHandler.TogglePaid)

	reportHandler := handler.NewReportHandler(db, ledgerSvc, composer)
	admin.GET("/meetings/:id/reports", reportHandler.ForMeeting)

	logHandler := handler.NewLogHandler(db, cfg.App.PageSize)
	protected.GET("/logs", logHandler.List)

	backupHandler := handler.NewBackupHandler(db, cfg.Security.EncryptionKey,
		cfg.Backup.Dir, cfg.Security.MasterPassword)
	admin.POST("/backups", backupHandler.Create)
	admin.GET("/backups", backupHandler.List)
	admin.GET("/backups/:id/download", backupHandler.Download)
	admin.POST("/backups/:id/restore", backupHandler.Restore)
	admin.DELETE("/backups/:id", backupHandler.Delete)

	userHandler := handler.NewUserHandler(db, cfg.Security.MasterPassword)
	admin.GET("/users", userHandler.List)
	admin.DELETE("/users/:id", userHandler.Delete)

	return r
}
