package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"district-growth/cmd/web/clients/directoryclient"
	"district-growth/cmd/web/dashboard"
	_ "district-growth/cmd/web/docs"
	"district-growth/cmd/web/handlers"
	"district-growth/cmd/web/httpclient"
	"district-growth/cmd/web/middleware"
	"district-growth/cmd/web/registration"
	"district-growth/cmd/web/services"
	"district-growth/cmd/web/session"
	"district-growth/cmd/web/views"
	"district-growth/config"
)

func New(cfg config.AppConfig, store *session.Store) (*gin.Engine, error) {
	v, err := views.New()
	if err != nil {
		return nil, err
	}

	client := directoryclient.New(httpclient.NewBaseClientWithClient(
		httpclient.New(httpclient.Config{Timeout: cfg.Directory.Timeout}),
		cfg.Directory.BaseURL,
	))
	directorySvc := services.NewDirectoryService(client)
	adminSvc := services.NewAdminService(client)
	newMachine := func() *registration.Machine {
		return registration.New(directorySvc.RegistrationRemote(),
			registration.WithCountdown(cfg.Registration.CountdownSeconds))
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestTrace())
	if len(cfg.CORS.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	}

	r.GET("/health", handlers.HealthHandler(store))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.StaticFS("/static", http.FS(views.Static()))

	site := r.Group("/")
	site.Use(middleware.VisitorSession(store, middleware.CookieOptions{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Security.SecureCookies,
	}))
	if cfg.Security.CSRFKey != "" {
		site.Use(middleware.CSRF([]byte(cfg.Security.CSRFKey), cfg.Security.SecureCookies))
	}

	// public pages
	{
		site.GET("/", handlers.HomeHandler(v))
		site.GET("/login", handlers.LoginPageHandler(v))
		site.POST("/login", handlers.LoginHandler(v, directorySvc))
		site.GET("/logout", handlers.LogoutHandler(directorySvc))

		site.GET("/register", handlers.RegisterPageHandler(v, newMachine))
		site.POST("/register", handlers.RegisterHandler(v, newMachine))
		site.POST("/register/send-otp", handlers.SendOTPHandler(v, newMachine))
		site.POST("/register/verify-otp", handlers.VerifyOTPHandler(v, newMachine))
		site.GET("/register/status", handlers.RegisterStatusHandler())

		site.GET("/profile", handlers.ProfilePageHandler(v))
		site.POST("/profile", handlers.SaveProfileHandler(v, directorySvc))
		site.GET("/search", handlers.SearchHandler(v, directorySvc))
		site.GET("/search/results", handlers.SearchFragmentHandler(v, directorySvc))
		site.POST("/connect", handlers.ConnectHandler())
		site.GET("/analytics", handlers.AnalyticsHandler(v, directorySvc))
		site.GET("/feedback", handlers.FeedbackPageHandler(v))
		site.POST("/feedback", handlers.SubmitFeedbackHandler(v, directorySvc))
	}

	admin := site.Group("/admin")
	{
		admin.GET("/login", handlers.AdminLoginPageHandler(v))
		admin.POST("/login", handlers.AdminLoginHandler(v, adminSvc))
		admin.GET("/logout", handlers.AdminLogoutHandler(adminSvc))

		guarded := admin.Group("", middleware.AdminRequired(adminSvc))
		guarded.GET("/dashboard", handlers.AdminDashboardHandler(v, adminSvc))
		guarded.GET("/fragments/:tab", handlers.AdminFragmentHandler(v, adminSvc))
		guarded.GET("/users/:id", handlers.ViewRecordHandler(dashboard.TabUsers, "user"))
		guarded.POST("/users/:id/status", handlers.ToggleUserStatusHandler(adminSvc))
		guarded.GET("/profiles/:id", handlers.ViewRecordHandler(dashboard.TabProfiles, "profile"))
		guarded.GET("/feedback/:id", handlers.ViewRecordHandler(dashboard.TabFeedback, "feedback"))
		guarded.POST("/feedback/:id/respond", handlers.RespondFeedbackHandler())
		guarded.GET("/export/:type", handlers.ExportHandler(adminSvc))
	}

	return r, nil
}
