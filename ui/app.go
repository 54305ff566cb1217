package ui

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"jprofile/adapters/excel"
	"jprofile/adapters/report"
	"jprofile/app"
	"jprofile/internal/errors"
)

//go:embed templates/*
var embeddedFiles embed.FS

// App represents the profiling web application
type App struct {
	router    *chi.Mux
	service   *app.ProfileService
	config    Config
	templates *template.Template
	logger    *slog.Logger
}

// Config holds web application configuration
type Config struct {
	Addr        string
	MaxUploadMB int
	Reader      excel.ReaderConfig
}

// NewApp creates the web application around a profile service
func NewApp(config Config, service *app.ProfileService, logger *slog.Logger) (*App, error) {
	if service == nil {
		return nil, errors.ConfigInvalid("profile service is required")
	}
	if config.MaxUploadMB < 1 {
		config.MaxUploadMB = 32
	}
	if logger == nil {
		logger = slog.Default()
	}

	templates, err := template.New("").ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse templates")
	}

	a := &App{
		router:    chi.NewRouter(),
		service:   service,
		config:    config,
		templates: templates,
		logger:    logger.With("component", "http"),
	}

	a.setupMiddleware()
	a.setupRoutes()

	return a, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(requestLogger(a.logger))
	a.router.Use(middleware.Recoverer)
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)
	a.router.Get("/healthz", a.handleHealth)
	a.router.Get("/api/formats", a.handleFormats)
	a.router.Post("/api/profile", a.handleProfile)
}

// Handler returns the application's HTTP handler
func (a *App) Handler() http.Handler {
	return a.router
}

// Start serves HTTP until ctx is cancelled, then shuts down gracefully
func (a *App) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              a.config.Addr,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting server", "addr", a.config.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		a.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

func (a *App) renderTemplate(w http.ResponseWriter, templateName string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.templates.ExecuteTemplate(w, templateName, data); err != nil {
		a.logger.Error("template error", "template", templateName, "error", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

// indexData feeds templates/index.html
type indexData struct {
	Formats     []string
	MaxUploadMB int
	Sheet       string
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	a.renderTemplate(w, "index.html", indexData{
		Formats:     report.Formats(),
		MaxUploadMB: a.config.MaxUploadMB,
		Sheet:       a.config.Reader.Sheet,
	})
}
