// Package server exposes the data directory and the classifier over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"

	"yashubustudio/entityclassifier/dataset"
	"yashubustudio/entityclassifier/entity"
	"yashubustudio/entityclassifier/stats"
)

const (
	filesKey       = "files"
	maxBodyBytes   = 1 << 20
	maxBatchLength = 10000
)

// Options configures a Server.
type Options struct {
	DataDir   string
	StaticDir string
	Mock      bool
	MockSeed  int64
	CacheTTL  time.Duration
}

// Server serves the file, country and classification endpoints.
type Server struct {
	opts       Options
	classifier *entity.Classifier
	cache      *cache.Cache
	logger     *log.Logger
}

// New builds a Server. classifier defaults to entity.Default and logger may be nil.
func New(opts Options, classifier *entity.Classifier, logger *log.Logger) *Server {
	if classifier == nil {
		classifier = entity.Default()
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Second
	}
	return &Server{
		opts:       opts,
		classifier: classifier,
		cache:      cache.New(opts.CacheTTL, 2*opts.CacheTTL),
		logger:     logger,
	}
}

func (s *Server) logf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}

// Routes returns the router with every endpoint mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if s.logger != nil {
		r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: s.logger, NoColor: true}))
	}
	r.Use(middleware.Recoverer)
	r.Use(allowCORS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/api", func(r chi.Router) {
		r.Get("/files", s.handleFiles)
		r.Get("/file-content", s.handleFileContent)
		r.Get("/countries", s.handleCountries)
		r.Get("/countries/{code}", s.handleCountry)
		r.Get("/classify", s.handleClassifyName)
		r.Post("/classify", s.handleClassifyBatch)
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusNotFound, "API endpoint not found")
		})
	})
	if s.opts.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.opts.StaticDir)))
	}
	return r
}

func allowCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// mocking reports whether the data directory is absent and mock data should be served.
func (s *Server) mocking() bool {
	if !s.opts.Mock {
		return false
	}
	_, err := os.Stat(s.opts.DataDir)
	return errors.Is(err, os.ErrNotExist)
}

func (s *Server) listFiles() ([]dataset.File, error) {
	if v, ok := s.cache.Get(filesKey); ok {
		return v.([]dataset.File), nil
	}
	var files []dataset.File
	if s.mocking() {
		files = dataset.MockFiles(filepath.Base(filepath.Clean(s.opts.DataDir)), s.opts.MockSeed)
	} else {
		var err error
		files, err = dataset.ScanDir(s.opts.DataDir)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	if files == nil {
		files = []dataset.File{}
	}
	s.cache.Set(filesKey, files, cache.DefaultExpiration)
	return files, nil
}

// fileContent returns the content and base name of a listed file.
func (s *Server) fileContent(path string) (string, string, error) {
	if s.mocking() {
		content, ok := dataset.MockContent(path)
		if !ok {
			return "", "", dataset.ErrNotFound
		}
		return content, filepath.Base(path), nil
	}
	full, err := dataset.Resolve(s.opts.DataDir, path)
	if err != nil {
		return "", "", err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", "", fmt.Errorf("read %s: %w", filepath.Base(full), err)
	}
	return string(data), filepath.Base(full), nil
}

func (s *Server) report(file *dataset.File) (*stats.Report, error) {
	if file == nil {
		return nil, nil
	}
	key := "stats:" + file.Path
	if v, ok := s.cache.Get(key); ok {
		report := v.(stats.Report)
		return &report, nil
	}
	content, _, err := s.fileContent(file.Path)
	if err != nil {
		return nil, err
	}
	report := stats.Parse(content)
	s.cache.Set(key, report, cache.DefaultExpiration)
	return &report, nil
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.listFiles()
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

type fileContentResponse struct {
	Content  string `json:"content"`
	Filename string `json:"filename"`
}

func (s *Server) handleFileContent(w http.ResponseWriter, r *http.Request) {
	content, name, err := s.fileContent(r.URL.Query().Get("path"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fileContentResponse{Content: content, Filename: name})
}

func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	files, err := s.listFiles()
	if err != nil {
		s.fail(w, err)
		return
	}
	countries := dataset.Filter(dataset.Organize(files), r.URL.Query().Get("q"))
	if countries == nil {
		countries = []dataset.Country{}
	}
	writeJSON(w, http.StatusOK, countries)
}

type countryResponse struct {
	dataset.Country
	Report *stats.Report `json:"report"`
}

func (s *Server) handleCountry(w http.ResponseWriter, r *http.Request) {
	files, err := s.listFiles()
	if err != nil {
		s.fail(w, err)
		return
	}
	code := chi.URLParam(r, "code")
	country, ok := dataset.Find(dataset.Organize(files), code)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown country %q", code))
		return
	}
	report, err := s.report(country.Stats)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, countryResponse{Country: country, Report: report})
}

func (s *Server) handleClassifyName(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("name") {
		writeError(w, http.StatusBadRequest, "missing name parameter")
		return
	}
	writeJSON(w, http.StatusOK, s.classifier.Analyze(q.Get("name")))
}

type classifyRequest struct {
	Names []string `json:"names"`
}

func (s *Server) handleClassifyBatch(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Names) > maxBatchLength {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("at most %d names per request", maxBatchLength))
		return
	}
	results := make([]entity.Result, len(req.Names))
	for i, name := range req.Names {
		results[i] = s.classifier.Classify(name)
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dataset.ErrNotFound):
		writeError(w, http.StatusNotFound, "File not found")
	case errors.Is(err, dataset.ErrOutsideRoot):
		writeError(w, http.StatusBadRequest, "invalid path")
	default:
		s.logf("server: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
