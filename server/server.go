// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/poiesic/prodmatch/core"
	"github.com/poiesic/prodmatch/intake"
	"github.com/poiesic/prodmatch/match"
)

// UploadField is the multipart field holding the uploaded product list.
const UploadField = "external"

// WelcomeMessage is returned by GET /api.
const WelcomeMessage = "Welcome to the Product Matching API!"

// Matcher runs one matching request. *match.Matcher implements it.
type Matcher interface {
	Match(ctx context.Context, products []string, batchSize, maxCallsPerMinute int) (*core.MatchResult, error)
}

// Server is the HTTP handler of the matching service.
type Server struct {
	matcher        Matcher
	batchSize      int
	rate           int
	maxUploadBytes int64
	requestTimeout time.Duration
	staticDir      string
	mux            *http.ServeMux
	logger         *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithBatching sets the batch size and rate of match runs. They are also
// ceilings: the batch_size and max_calls_per_minute query parameters can
// only lower them.
func WithBatching(batchSize, maxCallsPerMinute int) Option {
	return func(s *Server) error {
		if batchSize <= 0 {
			return fmt.Errorf("%w: got %d", match.ErrInvalidBatchSize, batchSize)
		}
		if maxCallsPerMinute <= 0 {
			return fmt.Errorf("%w: got %d", match.ErrInvalidRate, maxCallsPerMinute)
		}
		s.batchSize = batchSize
		s.rate = maxCallsPerMinute
		return nil
	}
}

// WithMaxUploadBytes caps the request body size.
// Default is 10 MiB.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) error {
		if n <= 0 {
			return errors.New("server: max upload bytes must be positive")
		}
		s.maxUploadBytes = n
		return nil
	}
}

// WithRequestTimeout bounds a match run. Zero disables the bound.
// Default is 10 minutes.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) error {
		s.requestTimeout = d
		return nil
	}
}

// WithStaticDir serves a single-page frontend from dir.
func WithStaticDir(dir string) Option {
	return func(s *Server) error {
		if dir == "" {
			s.staticDir = ""
			return nil
		}
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("server: static dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("server: static dir %s is not a directory", dir)
		}
		s.staticDir = dir
		return nil
	}
}

// New creates the HTTP handler.
func New(matcher Matcher, opts ...Option) (*Server, error) {
	if matcher == nil {
		return nil, errors.New("server: matcher is required")
	}
	s := &Server{
		matcher:        matcher,
		batchSize:      50,
		rate:           60,
		maxUploadBytes: 10 << 20,
		requestTimeout: 10 * time.Minute,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "http")

	s.mux = http.NewServeMux()
	s.mux.HandleFunc("POST /api/match", s.handleMatch)
	s.mux.HandleFunc("GET /api", s.handleWelcome)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.staticDir != "" {
		s.mux.HandleFunc("GET /", s.handleFrontend)
	}
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.withRequestID(s.withRecovery(s.withLogging(s.mux))).ServeHTTP(w, r)
}

func (s *Server) handleWelcome(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, WelcomeMessage)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, "ok")
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	logger := loggerFrom(r.Context(), s.logger)

	batchSize, err := cappedParam(r, "batch_size", s.batchSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rate, err := cappedParam(r, "max_calls_per_minute", s.rate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if r.ContentLength > s.maxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "Uploaded file is too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Uploaded file is too large")
			return
		}
		logger.Debug("no multipart upload", "err", err)
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(UploadField)
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	products, err := intake.Parse(header.Filename, file)
	if err != nil {
		if errors.Is(err, intake.ErrInvalidUpload) {
			logger.Info("rejected upload", "filename", header.Filename, "err", err)
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Error("failed to read upload", "filename", header.Filename, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to read uploaded file")
		return
	}
	logger.Info("upload accepted", "filename", header.Filename, "products", len(products))

	ctx := r.Context()
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	result, err := s.matcher.Match(ctx, products, batchSize, rate)
	switch {
	case err == nil:
	case result != nil && ctx.Err() != nil:
		logger.Warn("match run stopped early, returning partial result", "err", err)
	case isValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	default:
		logger.Error("match run failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Matching failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleFrontend serves files from the static dir, falling back to
// index.html for client-side routes.
func (s *Server) handleFrontend(w http.ResponseWriter, r *http.Request) {
	rel := filepath.FromSlash(path.Clean("/" + r.URL.Path))
	full := filepath.Join(s.staticDir, rel)
	if info, err := os.Stat(full); err == nil && !info.IsDir() {
		http.ServeFile(w, r, full)
		return
	}
	http.ServeFile(w, r, filepath.Join(s.staticDir, "index.html"))
}

func isValidationError(err error) bool {
	return errors.Is(err, match.ErrInvalidBatchSize) ||
		errors.Is(err, match.ErrInvalidRate) ||
		errors.Is(err, core.ErrInvalidProduct)
}

// cappedParam reads a positive integer query parameter. Missing values
// default to limit and larger values are clamped to it.
func cappedParam(r *http.Request, name string, limit int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return limit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return min(n, limit), nil
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
