package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	appemail "mailreply/internal/application/email"
	"mailreply/internal/domain/email"
	"mailreply/internal/infrastructure/extract"
	"mailreply/internal/infrastructure/persistence/sqlite"
)

const (
	msgMissingContent = "Envie arquivo ou texto."
	msgClassifyFailed = "Não foi possível classificar o e-mail."
)

type Suggester interface {
	Execute(ctx context.Context, source email.Source, id, text string) (*email.Suggestion, error)
}

type TextExtractor interface {
	Extract(path string) (extract.Extraction, error)
}

type SuggestionReader interface {
	GetByID(ctx context.Context, id string) (*email.Suggestion, error)
	Stats(ctx context.Context) (*email.Stats, error)
}

type Handler struct {
	suggester      Suggester
	extractor      TextExtractor
	suggestions    SuggestionReader
	maxUploadBytes int64
	environment    string
	logger         *zap.Logger
}

type Options struct {
	MaxUploadBytes int64
	Environment    string
}

// NewHandler builds the HTTP handler. suggestions may be nil when no store is
// configured; the read endpoints then answer 503.
func NewHandler(suggester Suggester, extractor TextExtractor, suggestions SuggestionReader, opts Options, logger *zap.Logger) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	return &Handler{
		suggester:      suggester,
		extractor:      extractor,
		suggestions:    suggestions,
		maxUploadBytes: opts.MaxUploadBytes,
		environment:    opts.Environment,
		logger:         logger,
	}
}

func (h *Handler) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/classify", h.handleClassify)
		r.Get("/suggestions/{suggestionID}", h.handleGetSuggestion)
		r.Get("/stats", h.handleStats)
	})

	return r
}

type classifyResponse struct {
	Category       email.Category `json:"category"`
	SuggestedReply string         `json:"suggested_reply"`
}

type suggestionResponse struct {
	ID             string         `json:"id"`
	Source         email.Source   `json:"source"`
	Category       email.Category `json:"category"`
	SuggestedReply string         `json:"suggested_reply"`
	Fallback       bool           `json:"fallback"`
	CreatedAt      time.Time      `json:"created_at"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (h *Handler) handleClassify(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		if !errors.Is(err, http.ErrNotMultipart) {
			h.badForm(w, err)
			return
		}
		if err := r.ParseForm(); err != nil {
			h.badForm(w, err)
			return
		}
	}

	text := r.FormValue("text")

	var (
		file   multipart.File
		header *multipart.FileHeader
		err    error
	)
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()

		file, header, err = r.FormFile("file")
		if err != nil && !errors.Is(err, http.ErrMissingFile) {
			h.logger.Warn("Failed to read uploaded file", zap.Error(err))
			writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Arquivo inválido."})
			return
		}
	}

	if file == nil && text == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: msgMissingContent})
		return
	}

	source := email.SourceText
	if file != nil {
		defer file.Close()

		source = email.SourceFile
		text, err = h.extractUpload(file, header.Filename)
		if err != nil {
			h.logger.Error("Failed to extract uploaded file",
				zap.Error(err),
				zap.String("filename", header.Filename))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "Falha ao processar o arquivo."})
			return
		}
	}

	s, err := h.suggester.Execute(r.Context(), source, "", text)
	if err != nil {
		h.logger.Error("Failed to suggest reply",
			zap.Error(err),
			zap.String("request_id", middleware.GetReqID(r.Context())))
		status := http.StatusInternalServerError
		if errors.Is(err, appemail.ErrClassification) {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, errorResponse{Detail: msgClassifyFailed})
		return
	}

	w.Header().Set("X-Suggestion-ID", s.ID)
	writeJSON(w, http.StatusOK, classifyResponse{
		Category:       s.Category,
		SuggestedReply: s.Reply,
	})
}

func (h *Handler) badForm(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Detail: "Arquivo muito grande."})
		return
	}
	h.logger.Warn("Failed to parse form", zap.Error(err))
	writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Formulário inválido."})
}

// extractUpload writes the upload to a temporary file named after its
// extension only, extracts it and removes the file.
func (h *Handler) extractUpload(file io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))

	tmp, err := os.CreateTemp("", "upload-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	result, err := h.extractor.Extract(tmp.Name())
	if err != nil {
		return "", err
	}
	if result.Degraded {
		h.logger.Warn("Uploaded document yielded no text",
			zap.String("filename", filename),
			zap.NamedError("cause", result.Cause))
	}
	return result.Text, nil
}

func (h *Handler) handleGetSuggestion(w http.ResponseWriter, r *http.Request) {
	if h.suggestions == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Detail: "Histórico desativado."})
		return
	}

	id := chi.URLParam(r, "suggestionID")
	s, err := h.suggestions.GetByID(r.Context(), id)
	if errors.Is(err, sqlite.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Detail: "Sugestão não encontrada."})
		return
	}
	if err != nil {
		h.logger.Error("Failed to load suggestion", zap.Error(err), zap.String("suggestion_id", id))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "Erro interno."})
		return
	}

	writeJSON(w, http.StatusOK, suggestionResponse{
		ID:             s.ID,
		Source:         s.Source,
		Category:       s.Category,
		SuggestedReply: s.Reply,
		Fallback:       s.Fallback,
		CreatedAt:      s.CreatedAt,
	})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	if h.suggestions == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Detail: "Histórico desativado."})
		return
	}

	stats, err := h.suggestions.Stats(r.Context())
	if err != nil {
		h.logger.Error("Failed to load stats", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "Erro interno."})
		return
	}

	out := make(map[string]int, len(stats.ByCategory)+1)
	for c, n := range stats.ByCategory {
		out[string(c)] = n
	}
	out["fallbacks"] = stats.Fallbacks

	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"env":    h.environment,
	})
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		h.logger.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("remote", r.RemoteAddr))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
