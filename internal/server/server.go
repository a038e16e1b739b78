// Package server exposes the voice intake HTTP API: audio upload and
// extraction, plus JSON session CRUD backed by the file store.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"

	"github.com/bizvoice/intake/internal/config"
	"github.com/bizvoice/intake/internal/profile"
	"github.com/bizvoice/intake/internal/store"
)

// Transcriber converts uploaded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader) (string, error)
}

// Extractor turns transcripts into structured profile data.
type Extractor interface {
	BusinessInfo(ctx context.Context, transcript string) (*profile.Draft, error)
	Products(ctx context.Context, transcript string) ([]profile.Product, error)
}

// Server represents the HTTP server
type Server struct {
	config      *config.Config
	logger      *slog.Logger
	router      *gin.Engine
	store       *store.Store
	transcriber Transcriber
	extractor   Extractor

	// Tracks the session created by the most recent business upload so a
	// following product upload lands in the same file. Guarded by the
	// session helpers below.
	session sessionState

	now func() time.Time
}

// New creates a new Server instance
func New(
	cfg *config.Config,
	logger *slog.Logger,
	st *store.Store,
	transcriber Transcriber,
	extractor Extractor,
) *Server {
	// Set Gin mode based on environment
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	router := gin.Default()

	// Configure proxy trust for production (Fly.io)
	if cfg.Env == config.EnvProduction {
		router.TrustedPlatform = gin.PlatformFlyIO
		logger.Debug("Configured trusted platform", "platform", "fly.io")
	}
	// Development: no reverse proxy, uses direct client IP

	server := &Server{
		config:      cfg,
		logger:      logger,
		router:      router,
		store:       st,
		transcriber: transcriber,
		extractor:   extractor,
		now:         time.Now,
	}

	// Setup middleware and routes
	setupSecurityMiddleware(router, cfg, logger)
	server.setupRoutes()

	return server
}

// Router returns the underlying gin engine for testing.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the HTTP server
func Run(s *Server) error {
	s.logger.Info("Server listening", "port", s.config.Port)

	return s.router.Run(":" + s.config.Port)
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Serve the browser client. Serve falls through to the API routes
	// whenever no file matches the request path.
	s.router.Use(static.Serve("/", static.LocalFile(s.config.StaticDir, true)))

	s.router.GET("/health", s.handleHealth)
	s.router.GET("/api", s.handleAPIInfo)

	s.router.POST("/upload_business_audio", s.handleBusinessUpload)
	s.router.POST("/upload_product_audio", s.handleProductUpload)
	s.router.POST("/save", s.handleSave)
	s.router.GET("/get_sessions", s.handleListSessions)
	s.router.GET("/get_session/:filename", s.handleGetSession)
	s.router.DELETE("/delete_session/:filename", s.handleDeleteSession)
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "intake",
	})
}

// handleAPIInfo lists the available endpoints.
func (s *Server) handleAPIInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Intake API is running",
		"endpoints": []string{
			"/upload_business_audio",
			"/upload_product_audio",
			"/save",
			"/get_sessions",
			"/get_session/<filename>",
			"/delete_session/<filename>",
		},
	})
}

// uploadResponse is the body returned by both audio upload endpoints.
type uploadResponse struct {
	Data          *profile.Draft `json:"data"`
	Filename      string         `json:"filename"`
	Transcription string         `json:"transcription"`
}

// openUploadedAudio pulls the "audio" form file out of the request. On
// failure it writes the error response and returns false.
func (s *Server) openUploadedAudio(c *gin.Context) (io.ReadCloser, bool) {
	header, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No audio file provided"})

		return nil, false
	}
	if header.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No audio file selected"})

		return nil, false
	}

	file, err := header.Open()
	if err != nil {
		s.logger.Error("Failed to open uploaded audio", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error: " + err.Error()})

		return nil, false
	}

	return file, true
}

// handleBusinessUpload transcribes business audio, extracts profile fields,
// and starts a new session file.
func (s *Server) handleBusinessUpload(c *gin.Context) {
	audio, ok := s.openUploadedAudio(c)
	if !ok {
		return
	}
	defer audio.Close()

	ctx := c.Request.Context()

	transcript, err := s.transcriber.Transcribe(ctx, audio)
	if err != nil {
		s.logger.Error("Transcription failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error: " + err.Error()})

		return
	}
	s.logger.Debug("Transcription completed", "length", len(transcript))

	draft, err := s.extractor.BusinessInfo(ctx, transcript)
	if err != nil {
		s.logger.Error("Business extraction failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error: " + err.Error()})

		return
	}
	draft.Normalize()

	filename := profile.NewSessionFilename(s.now())
	if err := s.store.Save(filename, draft); err != nil {
		s.logger.Error("Failed to save session", "filename", filename, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error: " + err.Error()})

		return
	}
	s.session.set(filename)
	s.logger.Info("Business session created", "filename", filename)

	c.JSON(http.StatusOK, uploadResponse{
		Data:          draft,
		Filename:      filename,
		Transcription: transcript,
	})
}

// handleProductUpload transcribes product audio and replaces the current
// session's product list with the extracted one. When no session exists it
// creates a blank one first.
func (s *Server) handleProductUpload(c *gin.Context) {
	filename := s.session.current()
	if filename == "" {
		filename = profile.NewSessionFilename(s.now())
		if err := s.store.Save(filename, profile.NewDraft()); err != nil {
			s.logger.Error("Failed to create session", "filename", filename, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error: " + err.Error()})

			return
		}
		s.session.set(filename)
		s.logger.Info("Created new session for products", "filename", filename)
	}

	audio, ok := s.openUploadedAudio(c)
	if !ok {
		return
	}
	defer audio.Close()

	ctx := c.Request.Context()

	transcript, err := s.transcriber.Transcribe(ctx, audio)
	if err != nil {
		s.logger.Error("Transcription failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error: " + err.Error()})

		return
	}

	products, err := s.extractor.Products(ctx, transcript)
	if err != nil {
		s.logger.Error("Product extraction failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error: " + err.Error()})

		return
	}

	draft, err := s.store.Load(filename)
	if err != nil {
		s.logger.Error("Failed to load session", "filename", filename, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error: " + err.Error()})

		return
	}

	// Each product take describes the full catalog, so the extracted list
	// replaces whatever the draft held before.
	draft.Products = products
	draft.Normalize()

	if err := s.store.Save(filename, draft); err != nil {
		s.logger.Error("Failed to save session", "filename", filename, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error: " + err.Error()})

		return
	}
	s.logger.Info("Session updated with products", "filename", filename, "count", len(products))

	c.JSON(http.StatusOK, uploadResponse{
		Data:          draft,
		Filename:      filename,
		Transcription: transcript,
	})
}

// saveRequest is the body for explicit saves from the review screen.
type saveRequest struct {
	Filename string         `json:"filename"`
	Data     *profile.Draft `json:"data"`
}

// handleSave persists edited session data under the given filename.
func (s *Server) handleSave(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Filename == "" || req.Data == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing filename or data"})

		return
	}

	if err := s.store.Save(req.Filename, req.Data); err != nil {
		if errors.Is(err, store.ErrInvalidName) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session filename"})

			return
		}

		s.logger.Error("Failed to save session", "filename", req.Filename, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}
	s.logger.Info("Session saved", "filename", req.Filename)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Data saved successfully"})
}

// handleListSessions returns every stored session with its parsed data.
func (s *Server) handleListSessions(c *gin.Context) {
	summaries, err := s.store.List()
	if err != nil {
		s.logger.Error("Failed to list sessions", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, summaries)
}

// handleGetSession returns a single session's data.
func (s *Server) handleGetSession(c *gin.Context) {
	draft, err := s.store.Load(c.Param("filename"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidName) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session file not found"})

			return
		}

		s.logger.Error("Failed to load session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, draft)
}

// handleDeleteSession removes a stored session file.
func (s *Server) handleDeleteSession(c *gin.Context) {
	filename := c.Param("filename")

	if err := s.store.Delete(filename); err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidName) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session file not found"})

			return
		}

		s.logger.Error("Failed to delete session", "filename", filename, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	// Deleting the active session ends it; the next product upload
	// starts fresh instead of writing to a removed file.
	s.session.clearIf(filename)
	s.logger.Info("Session deleted", "filename", filename)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Session deleted successfully"})
}
