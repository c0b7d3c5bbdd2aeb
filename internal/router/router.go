package router

import (
	"fmt"
	"net/http"
	"time"
	_ "time/tzdata"

	"campus-complaints/internal/config"
	"campus-complaints/internal/handler"
	"campus-complaints/internal/middleware"
	"campus-complaints/internal/service"
	"campus-complaints/internal/session"
	"campus-complaints/internal/storage"
	"campus-complaints/internal/util"
	"campus-complaints/web"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Deps are the long-lived collaborators the engine is built from.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Log      zerolog.Logger
	Sessions *session.Manager
	// Registry receives the HTTP metrics and backs /metrics.
	Registry *prometheus.Registry
}

// SetupRouter configures Gin engine, templates and static resources.
func SetupRouter(d Deps) (*gin.Engine, error) {
	cfg := d.Config
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	loc, err := time.LoadLocation(cfg.App.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", cfg.App.TimeZone, err)
	}
	attachments, err := storage.NewDiskStore(cfg.Upload.Dir, cfg.Upload.MaxSizeMB<<20, cfg.Upload.AllowedExts)
	if err != nil {
		return nil, err
	}
	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	reg := d.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	users := service.NewUserService(d.DB)
	complaints := service.NewComplaintService(d.DB, attachments, cfg.App.Categories, loc, d.Log)

	view := &handler.View{
		AppName:     cfg.App.Name,
		Sessions:    d.Sessions,
		Attachments: attachments,
		Log:         d.Log,
	}
	authHandler := handler.NewAuthHandler(view, users)
	// the photo cap plus room for the text fields
	maxBody := cfg.Upload.MaxSizeMB<<20 + 1<<20
	complaintHandler := handler.NewComplaintHandler(view, complaints, maxBody)
	exportHandler := handler.NewExportHandler(view, complaints)

	r := gin.New()
	r.MaxMultipartMemory = maxBody
	r.SetHTMLTemplate(tmpl)
	r.Use(
		gin.Recovery(),
		middleware.RequestLogger(d.Log),
		middleware.NewMetrics(reg).Handler(),
	)

	// static files and uploads
	r.StaticFS("/static", http.FS(web.Static()))
	r.Static("/uploads", cfg.Upload.Dir)
	r.GET("/healthz", handler.Healthz(d.DB))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	r.NoRoute(func(c *gin.Context) { util.NotFound(c, "") })

	// ====== pages ======
	pages := r.Group("")
	pages.Use(
		middleware.LoadIdentity(d.Sessions, users, d.Log),
		middleware.AuditMiddleware(d.DB, d.Log),
	)

	pages.GET("/", authHandler.Index)
	pages.GET("/register", authHandler.RegisterPage)
	pages.POST("/register", authHandler.Register)
	pages.GET("/login", authHandler.LoginPage)
	pages.POST("/login", authHandler.Login)
	pages.GET("/logout", authHandler.Logout)

	// pages that need a login
	protected := pages.Group("")
	protected.Use(middleware.RequireLogin())

	protected.GET("/submit", complaintHandler.SubmitPage)
	protected.POST("/submit", complaintHandler.Submit)
	protected.GET("/dashboard", complaintHandler.Dashboard)
	protected.POST("/delete/:id", complaintHandler.Delete)

	admin := pages.Group("/admin")
	admin.Use(middleware.RequireAdmin())

	admin.GET("", complaintHandler.Admin)
	admin.POST("/update/:id", complaintHandler.Update)
	admin.GET("/export.csv", exportHandler.ExportCSV)
	admin.GET("/export.xlsx", exportHandler.ExportXLSX)

	return r, nil
}
