package ui

import (
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"profitpulse/adapters/coercer"
	"profitpulse/app"
	"profitpulse/internal"
	"profitpulse/internal/api"
	"profitpulse/internal/config"
	"profitpulse/ports"
)

const shutdownTimeout = 10 * time.Second

//go:embed templates/*.html static/css/*.css
var embeddedFiles embed.FS

// Server is the dashboard web server
type Server struct {
	router    *gin.Engine
	templates *template.Template
	loader    ports.TableLoader
	analyzer  *app.NegativeMarginAnalyzer
	repo      ports.AnalysisRepository
	metrics   *app.Metrics
	api       http.Handler
	token     string
	logger    *internal.Logger
}

// Dependencies are the collaborators the server renders from. Repo may be nil.
type Dependencies struct {
	Loader   ports.TableLoader
	Analyzer *app.NegativeMarginAnalyzer
	Repo     ports.AnalysisRepository
	Logger   *internal.Logger
}

// NewServer parses the embedded templates and registers all routes
func NewServer(cfg config.ServerConfig, deps Dependencies) (*Server, error) {
	logger := deps.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}

	funcMap := template.FuncMap{
		"currency": coercer.FormatCurrency,
		"percent":  coercer.FormatPercentage,
		"add":      func(a, b int) int { return a + b },
		"timestamp": func(t time.Time) string {
			return t.Local().Format("Jan 2, 2006 15:04")
		},
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		router:    gin.Default(),
		templates: templates,
		loader:    deps.Loader,
		analyzer:  deps.Analyzer,
		repo:      deps.Repo,
		metrics:   app.NewMetrics(),
		api:       api.NewHandler(deps.Loader, deps.Repo, logger).Routes(),
		logger:    logger.With("Server"),
	}
	if cfg.Password != "" {
		s.token = sessionToken(cfg.Password)
	}

	if err := s.setupMiddleware(); err != nil {
		return nil, err
	}
	s.setupRoutes()
	return s, nil
}

// setupMiddleware serves the embedded static files
func (s *Server) setupMiddleware() error {
	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		return fmt.Errorf("failed to create static filesystem: %w", err)
	}
	s.router.StaticFS("/static", http.FS(staticFS))
	return nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/login", s.handleLoginPage)
	s.router.POST("/login", s.handleLogin)
	s.router.POST("/logout", s.handleLogout)

	authed := s.router.Group("/", s.requireAuth())
	authed.GET("/", s.handleIndex)
	authed.POST("/ai/analyze", s.handleAnalyze)
	authed.GET("/export", s.handleExport)
	authed.Any("/api/*path", gin.WrapH(http.StripPrefix("/api", s.api)))
}

// Handler exposes the router for tests and custom listeners
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting Project Profit Pulse on http://%s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return <-errCh
}

// sessionToken derives the cookie value for a password
func sessionToken(password string) string {
	sum := sha256.Sum256([]byte("profitpulse:" + password))
	return hex.EncodeToString(sum[:])
}
