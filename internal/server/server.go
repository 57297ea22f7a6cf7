// Package server exposes the study-card web UI and API over HTTP.
package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/studycard/studycard/internal/llm"
	"github.com/studycard/studycard/internal/summarize"
)

const maxUploadBytes = 16 << 20

// Config holds server configuration.
type Config struct {
	Port      int
	UploadDir string // directory for uploaded note photos
	OutputDir string // directory for generated PDF cards
	AllowAll  bool   // allow all CORS origins (dev mode)
}

// Summarizer turns OCR text into a study-card result.
type Summarizer interface {
	Summarize(ctx context.Context, text string) summarize.Result
}

// TextExtractor runs OCR over an image file.
type TextExtractor interface {
	Text(ctx context.Context, path string) (string, error)
}

// CardRenderer writes the study card PDF.
type CardRenderer interface {
	Render(result summarize.Result, imagePath, outPath string) error
}

// ExampleStore reports aggregated payload-format successes.
type ExampleStore interface {
	Top(limit int) []llm.AggregatedExample
}

// Server is the study-card web server.
type Server struct {
	cfg        Config
	summarizer Summarizer
	extractor  TextExtractor
	renderer   CardRenderer
	examples   ExampleStore
	logger     *slog.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server with all dependencies.
func New(cfg Config, summarizer Summarizer, extractor TextExtractor, renderer CardRenderer, examples ExampleStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:        cfg,
		summarizer: summarizer,
		extractor:  extractor,
		renderer:   renderer,
		examples:   examples,
		logger:     logger,
	}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", s.handleIndex)
	r.Post("/upload", s.handleUpload)
	r.Get("/api/examples", s.handleExamples)

	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.cfg.UploadDir))))
	r.Handle("/outputs/*", http.StripPrefix("/outputs/", http.FileServer(http.Dir(s.cfg.OutputDir))))

	return r
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, nil); err != nil {
		s.logger.Error("rendering index page", "error", err)
	}
}

// resultView is the data passed to the result template.
type resultView struct {
	ImageURL string
	PDFURL   string
	OCRText  string
	Result   summarize.Result
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "没有选择图片", http.StatusBadRequest)
		return
	}
	defer file.Close()

	name := uuid.NewString() + "_" + sanitizeFilename(header.Filename)
	imagePath := filepath.Join(s.cfg.UploadDir, name)
	if err := saveUpload(file, imagePath); err != nil {
		s.logger.Error("saving upload", "path", imagePath, "error", err)
		http.Error(w, "保存图片失败", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()

	// OCR failures degrade to empty text: the summarizer still produces
	// a card with placeholder content.
	text, err := s.extractor.Text(ctx, imagePath)
	if err != nil {
		s.logger.Warn("ocr failed, proceeding with empty text", "image", name, "error", err)
		text = ""
	}

	result := s.summarizer.Summarize(ctx, text)

	view := resultView{
		ImageURL: "/uploads/" + name,
		OCRText:  text,
		Result:   result,
	}

	pdfName := uuid.NewString() + ".pdf"
	pdfPath := filepath.Join(s.cfg.OutputDir, pdfName)
	if err := s.renderer.Render(result, imagePath, pdfPath); err != nil {
		s.logger.Error("rendering card pdf", "pdf", pdfName, "error", err)
	} else {
		view.PDFURL = "/outputs/" + pdfName
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := resultTmpl.Execute(w, view); err != nil {
		s.logger.Error("rendering result page", "error", err)
	}
}

func (s *Server) handleExamples(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, `{"error":"invalid limit"}`, http.StatusBadRequest)
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, s.examples.Top(limit))
}

// sanitizeFilename keeps only the base name so uploads cannot escape the
// upload directory.
func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "upload"
	}
	return base
}

func saveUpload(src io.Reader, path string) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return err
	}
	return dst.Close()
}

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("studycard server listening", "addr", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
