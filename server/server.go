package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"

	"deckforge/deck"
	"deckforge/generator"
)

//go:embed web/dist
var embeddedStatic embed.FS

// maxTemplateBytes bounds the uploaded template part.
const maxTemplateBytes = 20 << 20

// requestTimeout bounds one generate or outline call, model latency
// included.
const requestTimeout = 60 * time.Second

type Server struct {
	defaultLLM *LLMConfig
	assembler  *deck.Assembler
	verbose    bool
	logger     *log.Logger
	staticFS   http.Handler
}

// New creates the HTTP server. logger may be nil for the default.
func New(cfg Config, verbose bool, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}
	sub, err := fs.Sub(embeddedStatic, "web/dist")
	if err != nil {
		return nil, err
	}
	return &Server{
		defaultLLM: cfg.LLM,
		assembler:  deck.NewAssembler(verbose, logger),
		verbose:    verbose,
		logger:     logger,
		staticFS:   http.FileServer(http.FS(sub)),
	}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/generate", s.handleGenerate)
	mux.HandleFunc("/api/outline", s.handleOutline)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/", s.staticHandler())
	return s.logMiddleware(withCORS(mux))
}

func (s *Server) staticHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// fall back to index.html for SPA-ish behavior
		upath := r.URL.Path
		if upath == "/" || !strings.HasPrefix(upath, "/api/") {
			p := upath
			if p == "/" {
				p = "/index.html"
			}
			r.URL.Path = p
			s.staticFS.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// --- Handlers ---

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxTemplateBytes+(1<<20))
	if err := r.ParseMultipartForm(4 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	req, err := outlineRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tplBytes, err := templateUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	outline, err := s.agentFor(r).Normalize(ctx, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pkg, err := deck.OpenPackage(tplBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out, err := s.assembler.Build(outline, deck.Introspect(pkg))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", deck.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", deck.DefaultFileName))
	_, _ = w.Write(out)
}

type outlineResp struct {
	Slides generator.Outline `json:"slides"`
	HTML   string            `json:"html"`
}

// handleOutline is the dry run: same normalization as /api/generate but no
// template, returning the outline as JSON plus a rendered HTML preview.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 4<<20)
	if err := r.ParseMultipartForm(4 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	req, err := outlineRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	outline, err := s.agentFor(r).Normalize(ctx, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	html, err := outlineHTML(outline)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, outlineResp{Slides: outline, HTML: html})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]bool{"ok": true})
}

// --- Request plumbing ---

// outlineRequest extracts the normalization fields shared by both POST
// endpoints.
func outlineRequest(r *http.Request) (generator.Request, error) {
	text := r.FormValue("text")
	if strings.TrimSpace(text) == "" {
		return generator.Request{}, errors.New("text field is required")
	}
	return generator.Request{
		Text:      text,
		Guidance:  r.FormValue("guidance"),
		WithNotes: r.FormValue("with_notes") == "true" || r.FormValue("with_notes") == "1",
	}, nil
}

// templateUpload reads the template file part and checks its extension.
func templateUpload(r *http.Request) ([]byte, error) {
	file, header, err := r.FormFile("template")
	if err != nil {
		return nil, errors.New("template file is required")
	}
	defer file.Close()

	if !allowedTemplateName(header.Filename) {
		return nil, fmt.Errorf("template must be a .pptx or .potx file, got %q", header.Filename)
	}
	if header.Size > maxTemplateBytes {
		return nil, fmt.Errorf("template exceeds %d bytes", maxTemplateBytes)
	}
	data, err := io.ReadAll(io.LimitReader(file, maxTemplateBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}
	if len(data) > maxTemplateBytes {
		return nil, fmt.Errorf("template exceeds %d bytes", maxTemplateBytes)
	}
	return data, nil
}

func allowedTemplateName(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pptx", ".potx":
		return true
	}
	return false
}

// agentFor builds the normalization agent for one request: the provider and
// api_key form fields override the configured default, and with neither the
// agent runs heuristic-only. Keys from the form are used for this request
// and dropped.
func (s *Server) agentFor(r *http.Request) *generator.Agent {
	settings := s.defaultLLM.Settings()
	if p := strings.TrimSpace(r.FormValue("provider")); p != "" {
		settings.Provider = p
	}
	if m := strings.TrimSpace(r.FormValue("model")); m != "" {
		settings.Model = m
	}
	if k := strings.TrimSpace(r.FormValue("api_key")); k != "" {
		settings.APIKey = k
	}
	if u := strings.TrimSpace(r.FormValue("base_url")); u != "" {
		settings.BaseURL = u
	}
	if settings.Provider == "" || strings.EqualFold(settings.Provider, "none") {
		return generator.NewAgent(nil)
	}
	llm, err := generator.NewLLMClient(settings)
	if err != nil {
		s.infof("llm provider %q unavailable (%v), outlining heuristically", settings.Provider, err)
		return generator.NewAgent(nil)
	}
	return generator.NewAgent(llm)
}

// outlineHTML renders the outline as markdown and converts it for the
// preview pane.
func outlineHTML(outline generator.Outline) (string, error) {
	var md strings.Builder
	for _, s := range outline {
		fmt.Fprintf(&md, "## %s\n\n", s.Title)
		for _, b := range s.Bullets {
			fmt.Fprintf(&md, "- %s\n", b)
		}
		if s.Notes != "" {
			fmt.Fprintf(&md, "\n> %s\n", s.Notes)
		}
		md.WriteString("\n")
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md.String()), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// --- Helpers ---

func (s *Server) infof(format string, args ...interface{}) {
	if !s.verbose {
		return
	}
	s.logger.Printf("[INFO] "+format, args...)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type errorResp struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResp{Error: msg})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(status int) {
	sw.status = status
	sw.ResponseWriter.WriteHeader(status)
}

// logMiddleware tags every request with an id and logs method, path,
// status, and latency.
func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		w.Header().Set("X-Request-ID", reqID)
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)
		s.logger.Printf("[%s] %s %s %d %s", reqID, r.Method, r.URL.Path, sw.status, time.Since(start))
	})
}
