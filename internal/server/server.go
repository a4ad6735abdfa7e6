package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tvcatalog/internal/catalog"
	"tvcatalog/internal/config"
	"tvcatalog/internal/logging"
)

// Manifest describes the addon to clients.
type Manifest struct {
	ID          string            `json:"id"`
	Version     string            `json:"version"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Resources   []string          `json:"resources"`
	Types       []string          `json:"types"`
	IDPrefixes  []string          `json:"idPrefixes"`
	Catalogs    []ManifestCatalog `json:"catalogs"`
}

// ManifestCatalog names one catalog offered by the addon.
type ManifestCatalog struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Server serves published records.
type Server struct {
	bind       string
	catalogDir string
	metaDir    string
	manifest   Manifest
	logger     *slog.Logger
	engine     *gin.Engine

	listener net.Listener
	server   *http.Server
}

// New builds a server for the output directory of cfg. version is reported
// in the manifest.
func New(cfg *config.Config, version string, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("server: config required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if strings.TrimSpace(version) == "" {
		version = "0.0.0"
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		bind:       strings.TrimSpace(cfg.Server.Bind),
		catalogDir: cfg.CatalogDir(),
		metaDir:    cfg.MetaDir(),
		logger:     logging.NewComponentLogger(logger, "server"),
		manifest: Manifest{
			ID:          "community.tvcatalog." + cfg.Catalog.ID,
			Version:     version,
			Name:        cfg.Catalog.Name,
			Description: fmt.Sprintf("Episodes aired in the last %d days", cfg.Catalog.WindowDays),
			Resources:   []string{"catalog", "meta"},
			Types:       []string{catalog.ContentType},
			IDPrefixes:  []string{catalog.Namespace + ":"},
			Catalogs: []ManifestCatalog{{
				Type: catalog.ContentType,
				ID:   cfg.Catalog.ID,
				Name: cfg.Catalog.Name,
			}},
		},
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger(), allowAnyOrigin())
	engine.GET("/manifest.json", s.handleManifest)
	engine.GET("/healthz", s.handleHealth)
	engine.GET("/catalog/"+catalog.ContentType+"/:file", s.handleRecord(s.catalogDir))
	engine.GET("/meta/"+catalog.ContentType+"/:file", s.handleRecord(s.metaDir))
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	s.engine = engine

	s.server = &http.Server{
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Manifest returns the manifest the server advertises.
func (s *Server) Manifest() Manifest {
	return s.manifest
}

// Addr returns the bound address once Run is listening.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	if s.bind == "" {
		return errors.New("server: bind address not configured")
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("server listen: %w", err)
	}
	s.listener = listener
	s.logger.Info("addon server listening",
		logging.String("address", listener.Addr().String()),
		logging.String(logging.FieldEventType, "server_listening"),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info("addon server stopped", logging.String(logging.FieldEventType, "server_stopped"))
	return nil
}

func (s *Server) handleManifest(c *gin.Context) {
	c.JSON(http.StatusOK, s.manifest)
}

func (s *Server) handleHealth(c *gin.Context) {
	body := gin.H{"status": "ok"}
	if _, err := os.Stat(filepath.Join(s.catalogDir, s.manifest.Catalogs[0].ID+".json")); err != nil {
		body["catalog"] = "missing"
	} else {
		body["catalog"] = "present"
	}
	c.JSON(http.StatusOK, body)
}

// handleRecord serves <dir>/<file>. The file name must be a bare .json name.
func (s *Server) handleRecord(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("file")
		if !validRecordName(name) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			s.logger.Warn("record read failed",
				logging.String("file", name),
				logging.Error(err),
				logging.String(logging.FieldEventType, "server_read_failed"),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "read failed"})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
	}
}

func validRecordName(name string) bool {
	if !strings.HasSuffix(name, ".json") || len(name) <= len(".json") {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return false
	}
	return filepath.Base(name) == name
}

func allowAnyOrigin() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "*")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request served",
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("elapsed", time.Since(start)),
		)
	}
}
