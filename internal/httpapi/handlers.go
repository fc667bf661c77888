package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/typedkv/kvsvc/internal/kvstore"
)

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	typ, key, ok := s.validatedSegments(w, r)
	if !ok {
		return
	}

	value, found, err := s.store.Get(r.Context(), typ, key)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(value)
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	typ, key, ok := s.validatedSegments(w, r)
	if !ok {
		return
	}

	value, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("request body too large"))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read request body"))
		return
	}

	if err := s.store.Put(r.Context(), typ, key, value); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	typ, key, ok := s.validatedSegments(w, r)
	if !ok {
		return
	}

	if err := s.store.Delete(r.Context(), typ, key); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	typ := chi.URLParam(r, "type")
	if !validSegment(typ) {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid type"))
		return
	}

	limit, ok := s.parseLimit(w, r)
	if !ok {
		return
	}

	prefix := r.URL.Query().Get("prefix")
	keys, err := s.store.List(r.Context(), typ, prefix, limit)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"keys": keys})
}

func (s *Server) parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return s.cfg.DefaultListLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("limit must be an integer"))
		return 0, false
	}
	if limit < 0 {
		limit = 0
	}
	if limit > s.cfg.MaxListLimit {
		limit = s.cfg.MaxListLimit
	}
	return limit, true
}

func (s *Server) validatedSegments(w http.ResponseWriter, r *http.Request) (typ, key string, ok bool) {
	typ = chi.URLParam(r, "type")
	key = chi.URLParam(r, "key")
	if !validSegment(typ) || !validSegment(key) {
		writeJSON(w, http.StatusBadRequest, errorBody("type and key must not contain '/', newlines, or control characters"))
		return "", "", false
	}
	return typ, key, true
}

// validSegment rejects '/', newlines, and control bytes 0x00-0x1F and
// 0x7F in a type or key path segment.
func validSegment(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b == '/' || b < 0x20 || b == 0x7F {
			return false
		}
	}
	return true
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, kvstore.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, kvstore.ErrStorage):
		s.log.Error("storage error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("storage error"))
	default:
		s.log.Error("unhandled error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}
