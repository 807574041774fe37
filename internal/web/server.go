package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/camuig/stockgrowth/internal/analysis"
	"github.com/camuig/stockgrowth/internal/config"
	"github.com/camuig/stockgrowth/internal/logger"
	"github.com/camuig/stockgrowth/internal/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

type Analyzer interface {
	Analyze(ctx context.Context, query string) (*analysis.Result, error)
	Threshold() float64
}

type Store interface {
	GetWatchlist() ([]storage.WatchlistItem, error)
	AddToWatchlist(item *storage.WatchlistItem) error
	RemoveFromWatchlist(symbol string) error
	GetRecentAnalyses(limit int) ([]storage.AnalysisLog, error)
}

type Server struct {
	httpServer *http.Server
	analyzer   Analyzer
	repo       Store
	templates  *template.Template
	config     *config.Config
	logger     *logger.Logger
}

func NewServer(a Analyzer, repo Store, cfg *config.Config, log *logger.Logger) *Server {
	s := &Server{
		analyzer: a,
		repo:     repo,
		config:   cfg,
		logger:   log,
		templates: template.Must(template.New("").Funcs(templateFuncs).
			ParseFS(templateFS, "templates/*.html")),
	}

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(fmt.Sprintf("web: static assets: %v", err))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /watchlist", s.handleWatchlistFragment)
	mux.HandleFunc("POST /watchlist", s.handleWatchlistAddForm)
	mux.HandleFunc("POST /watchlist/remove", s.handleWatchlistRemoveForm)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))

	mux.HandleFunc("GET /api/analyze", s.handleAPIAnalyze)
	mux.HandleFunc("POST /api/analyze", s.handleAPIAnalyze)
	mux.HandleFunc("GET /api/watchlist", s.handleAPIWatchlist)
	mux.HandleFunc("POST /api/watchlist", s.handleAPIWatchlistAdd)
	mux.HandleFunc("DELETE /api/watchlist/{symbol}", s.handleAPIWatchlistRemove)
	mux.HandleFunc("GET /api/history", s.handleAPIHistory)
	mux.HandleFunc("GET /health", s.handleHealth)

	// analysis requests wait on the model, so the write timeout follows its timeout
	writeTimeout := cfg.AnalysisTimeout() + 15*time.Second

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Web.Port),
		Handler:      s.logRequests(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: writeTimeout,
	}

	return s
}

// Handler exposes the routes without a listener.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	s.logger.Info("web server starting", "port", s.config.Web.Port)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("web server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String())
	})
}
