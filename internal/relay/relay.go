// Package relay is the HTTP front of Past Forward.
//
// Endpoints:
//
//	POST /api/generate  {imageDataUrl, prompt} -> {imageDataUrl} or {error}
//	GET  /healthz       liveness probe
//	GET  /*             prebuilt frontend bundle with SPA fallback (when present)
package relay

import (
	"context"
	"net/http"
	"os"

	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/zerolog/log"
)

// DefaultBodyLimit caps the JSON request body. Photos arrive base64 encoded
// inside it, so it is sized for a phone camera image.
const DefaultBodyLimit = 15 << 20

// Generator produces a styled image data URL. *generate.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, imageDataURL, prompt string) (string, error)
}

// Options configures a Server.
type Options struct {
	// DistDir is the frontend bundle; empty or missing disables static serving.
	DistDir string
	// BodyLimit is the maximum request body in bytes (default DefaultBodyLimit).
	BodyLimit int64
	// LocalCORS allows browser calls from localhost dev servers.
	LocalCORS bool
}

// Server routes relay requests to a Generator.
type Server struct {
	gen       Generator
	bodyLimit int64
	distDir   string
	localCORS bool
	static    http.Handler
}

// New creates a Server. Static serving is enabled only when opts.DistDir
// exists and is a directory.
func New(gen Generator, opts Options) *Server {
	s := &Server{
		gen:       gen,
		bodyLimit: opts.BodyLimit,
		distDir:   opts.DistDir,
		localCORS: opts.LocalCORS,
	}
	if s.bodyLimit <= 0 {
		s.bodyLimit = DefaultBodyLimit
	}

	if s.distDir != "" {
		if fi, err := os.Stat(s.distDir); err == nil && fi.IsDir() {
			s.static = newStaticHandler(os.DirFS(s.distDir))
			log.Info().Str("dir", s.distDir).Msg("Serving frontend bundle")
		}
	}
	if s.static == nil {
		log.Warn().Str("dir", s.distDir).Msg("Frontend bundle not found; static content disabled")
	}
	return s
}

// StaticEnabled reports whether a frontend bundle is being served.
func (s *Server) StaticEnabled() bool {
	return s.static != nil
}

// Mux returns the bare routes without middleware.
func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/generate", s.handleGenerate)
	mux.HandleFunc("/healthz", handleHealth)
	if s.static != nil {
		mux.Handle("/", s.static)
	}
	return mux
}

// Handler returns the routes wrapped with request ID, logging, metrics,
// CORS (when enabled) and gzip compression.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.Mux()
	if s.localCORS {
		h = withCORS(h)
	}
	h = gzhttp.GzipHandler(h)
	h = withMetrics(h)
	h = withLogging(h)
	return withRequestID(h)
}
