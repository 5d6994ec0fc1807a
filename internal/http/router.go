package http

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/geocoder89/notehub/internal/config"
	"github.com/geocoder89/notehub/internal/http/handlers"
	"github.com/geocoder89/notehub/internal/http/middlewares"
	"github.com/geocoder89/notehub/internal/http/web"
	"github.com/geocoder89/notehub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const serviceName = "notehub"

// TokenManager signs session cookies on login and checks them on every request.
type TokenManager interface {
	handlers.TokenIssuer
	middlewares.TokenVerifier
}

// Deps are the collaborators the router hands to its handlers.
type Deps struct {
	Auth     handlers.AuthService
	Sessions middlewares.SessionResolver
	Tokens   TokenManager
	Notes    handlers.NotesService

	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
	Checks   []handlers.Check
}

func NewRouter(log *slog.Logger, cfg config.Config, d Deps) (*gin.Engine, error) {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	sessions := middlewares.NewSessionMiddleware(d.Tokens, d.Sessions, cfg.SecureCookies())

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	r.Use(sessions.LoadSession())

	health := handlers.NewHealthHandler(d.Checks...)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	r.StaticFileFS("/static/index.js", "index.js", web.Static())

	authHandler := handlers.NewAuthHandler(d.Auth, d.Tokens, cfg.SecureCookies())
	notesHandler := handlers.NewNotesHandler(d.Notes)

	limiter := middlewares.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	limited := limiter.RateLimiterMiddleware(middlewares.KeyByIP)

	r.GET("/login", authHandler.LoginPage)
	r.POST("/login", limited, authHandler.Login)
	r.GET("/sign-up", authHandler.SignUpPage)
	r.POST("/sign-up", limited, authHandler.SignUp)
	r.GET("/logout", sessions.RequireSession("/login"), authHandler.Logout)

	r.GET("/", notesHandler.Home)
	r.GET("/home", notesHandler.Home)

	notes := r.Group("/notes", sessions.RequireSession("/login"))
	{
		notes.GET("", notesHandler.NotesPage)
		notes.POST("", notesHandler.CreateNote)
	}

	// answers 401 JSON itself; the caller is a script, not a browser page
	r.POST("/delete-note", notesHandler.DeleteNote)

	r.NoRoute(handlers.RespondNotFound)

	log.Debug("router ready", "secure_cookies", cfg.SecureCookies())

	return r, nil
}
