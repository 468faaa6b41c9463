package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/retrobus-essonne/mail-api/internal/config"
	"github.com/retrobus-essonne/mail-api/internal/identity"
	"github.com/retrobus-essonne/mail-api/internal/mailer"
	"github.com/retrobus-essonne/mail-api/pkg/middleware"
)

// IdentityClient is the slice of the identity API this server needs.
type IdentityClient interface {
	Login(ctx context.Context, email, password string) (*identity.User, error)
}

// Server is the HTTP server for the RétroBus mail API.
type Server struct {
	// router is the gin HTTP router.
	router *gin.Engine
	// cfg is the immutable process configuration.
	cfg config.Config
	// identity authenticates credential pairs against the RétroBus
	// identity API.
	identity IdentityClient
	// mailer delivers outgoing mail.
	mailer mailer.Sender
}

// NewServer wires a server from the process configuration.
func NewServer(cfg config.Config) *Server {
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS([]string{cfg.FrontendURL}))

	s := &Server{
		router:   router,
		cfg:      cfg,
		identity: identity.New(cfg.Auth.ProviderURL, cfg.Auth.ProviderKey, cfg.Auth.ProviderTimeout),
		mailer:   mailer.NewSMTP(cfg.SMTP),
	}
	s.setupRoutes()

	return s
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.cfg.Port))
}

// setupRoutes registers the API routes. Everything except login,
// verify and the health check sits behind the session guard.
func (s *Server) setupRoutes() {
	guard := middleware.RequireSession(s.cfg.Auth.JWTSecret)

	api := s.router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/login", s.handleLogin())
		auth.POST("/verify", s.handleVerify())
		auth.GET("/profile", guard, s.handleProfile())
	}

	mailGroup := api.Group("/mail")
	mailGroup.Use(guard)
	{
		mailGroup.GET("/inbox", s.handleInbox())
		mailGroup.GET("/email/:id", s.handleGetEmail())
		mailGroup.DELETE("/email/:id", s.handleDeleteEmail())
		mailGroup.POST("/send", s.handleSendMail())
		mailGroup.POST("/reply", s.handleReplyMail())
		mailGroup.POST("/sync", s.handleSyncMail())
	}

	templates := api.Group("/templates")
	templates.Use(guard)
	{
		templates.GET("", s.handleListTemplates())
		templates.GET("/:id", s.handleGetTemplate())
		templates.POST("", s.handleCreateTemplate())
		templates.PUT("/:id", s.handleUpdateTemplate())
		templates.DELETE("/:id", s.handleDeleteTemplate())
	}

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})
}
