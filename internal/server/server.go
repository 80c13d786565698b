package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ysh86/pngme"
	"github.com/ysh86/pngme/png"
)

// Server serves the chunk operations over HTTP. Every request carries the
// PNG in its body and gets its own decoded copy.
type Server struct {
	cfg Config
}

// New creates a new API server
func New(cfg Config) *Server {
	return &Server{cfg: cfg}
}

// ChunkInfo describes one chunk in a listing.
type ChunkInfo struct {
	Index      int           `json:"index"`
	Type       png.ChunkType `json:"type"`
	Length     uint32        `json:"length"`
	CRC        uint32        `json:"crc"`
	Critical   bool          `json:"critical"`
	Public     bool          `json:"public"`
	SafeToCopy bool          `json:"safe_to_copy"`
	Valid      bool          `json:"valid"`
	Summary    string        `json:"summary,omitempty"`
}

// MessageResponse is the response for decoding a chunk
type MessageResponse struct {
	Type    png.ChunkType `json:"type"`
	Message string        `json:"message"`
}

// Routes returns the router with middleware and all endpoints.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	r.Get("/health", s.HealthCheck)

	r.Route("/api/chunks", func(r chi.Router) {
		r.Post("/", s.ListChunks)
		r.Post("/{type}", s.EncodeChunk)
		r.Post("/{type}/decode", s.DecodeChunk)
		r.Delete("/{type}", s.RemoveChunk)
	})

	return r
}

// HealthCheck handles GET /health
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// ListChunks handles POST /api/chunks
func (s *Server) ListChunks(w http.ResponseWriter, r *http.Request) {
	f, err := s.readPNG(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	chunks := f.Chunks()
	infos := make([]ChunkInfo, 0, len(chunks))
	for i, c := range chunks {
		t := c.Type()
		infos = append(infos, ChunkInfo{
			Index:      i,
			Type:       t,
			Length:     c.Length(),
			CRC:        c.CRC(),
			Critical:   t.IsCritical(),
			Public:     t.IsPublic(),
			SafeToCopy: t.IsSafeToCopy(),
			Valid:      t.IsValid(),
			Summary:    pngme.Summary(c),
		})
	}
	writeJSON(w, infos)
}

// EncodeChunk handles POST /api/chunks/{type}?message=...
// Responds with the PNG carrying the new chunk after the last one.
func (s *Server) EncodeChunk(w http.ResponseWriter, r *http.Request) {
	t, err := pngme.ParseWritableType(chi.URLParam(r, "type"))
	if err != nil {
		writeError(w, err)
		return
	}
	query := r.URL.Query()
	if !query.Has("message") {
		http.Error(w, "message query parameter required", http.StatusBadRequest)
		return
	}

	f, err := s.readPNG(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	f.AppendChunk(png.NewChunk(t, []byte(query.Get("message"))))
	writePNG(w, f)
}

// DecodeChunk handles POST /api/chunks/{type}/decode
func (s *Server) DecodeChunk(w http.ResponseWriter, r *http.Request) {
	t, err := png.ParseChunkType(chi.URLParam(r, "type"))
	if err != nil {
		writeError(w, err)
		return
	}
	f, err := s.readPNG(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	c := f.ChunkByType(t.String())
	if c == nil {
		http.Error(w, png.ErrChunkNotFound.Error()+": "+t.String(), http.StatusNotFound)
		return
	}
	msg, err := c.DataString()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, MessageResponse{Type: t, Message: msg})
}

// RemoveChunk handles DELETE /api/chunks/{type}
// Responds with the PNG without the first chunk of that type.
func (s *Server) RemoveChunk(w http.ResponseWriter, r *http.Request) {
	t, err := png.ParseChunkType(chi.URLParam(r, "type"))
	if err != nil {
		writeError(w, err)
		return
	}
	f, err := s.readPNG(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	c, err := f.RemoveChunk(t.String())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("X-Removed-Length", strconv.FormatUint(uint64(c.Length()), 10))
	writePNG(w, f)
}

func (s *Server) readPNG(w http.ResponseWriter, r *http.Request) (*png.File, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBody))
	if err != nil {
		return nil, err
	}
	return png.Decode(body)
}

// statusFor maps codec errors to HTTP status codes.
func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, png.ErrChunkNotFound):
		return http.StatusNotFound
	case errors.Is(err, png.ErrInvalidUTF8):
		return http.StatusUnprocessableEntity
	case errors.Is(err, png.ErrInvalidSignature),
		errors.Is(err, png.ErrInvalidCharacter),
		errors.Is(err, png.ErrInvalidLength),
		errors.Is(err, png.ErrTruncated),
		errors.Is(err, png.ErrChecksumMismatch),
		errors.Is(err, png.ErrChunkTooLarge),
		errors.Is(err, pngme.ErrReservedBit):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encoding response: %v", err)
	}
}

func writePNG(w http.ResponseWriter, f *png.File) {
	b := f.Bytes()
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(b)))
	if _, err := w.Write(b); err != nil {
		log.Printf("writing png: %v", err)
	}
}
