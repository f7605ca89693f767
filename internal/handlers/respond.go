// Package handlers implements the JSON API of the bookmark dashboard.
// Handlers decode and validate requests, call the stores and services, and
// translate their errors into HTTP status codes.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starwishes/Nav/internal/bookmark"
	"github.com/starwishes/Nav/internal/middleware"
	"github.com/starwishes/Nav/internal/store"
)

// maxBodyBytes caps request bodies. A full tree save is the largest.
const maxBodyBytes = 4 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError sends {"error": msg} with the given status.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeOK answers {"success": true} plus any extra fields.
func writeOK(w http.ResponseWriter, extra map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}

// writeFieldError reports a rejected field.
func writeFieldError(w http.ResponseWriter, err *bookmark.ValidationError) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": err.Error(),
		"field": err.Field,
	})
}

// fail maps a store or service error to a response: validation and
// invalid references are 400, missing records 404, conflicts 409 and
// anything else a logged 500 with a generic message.
func fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	var ve *bookmark.ValidationError
	switch {
	case errors.As(err, &ve):
		writeFieldError(w, ve)
	case errors.Is(err, store.ErrInvalidReference):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "already exists")
	default:
		slog.Error(op+" failed", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decode reads a JSON body into v, then runs its validate tags.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if !readJSON(w, r, v) {
		return false
	}
	if err := bookmark.Validate(v); err != nil {
		var ve *bookmark.ValidationError
		if errors.As(err, &ve) {
			writeFieldError(w, ve)
			return false
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// readJSON reads a size-limited JSON body into v.
func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		case errors.Is(err, io.EOF):
			writeError(w, http.StatusBadRequest, "request body is empty")
		default:
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		}
		return false
	}
	return true
}

// idParam parses a positive integer URL parameter.
func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// queryInt reads an integer query parameter, falling back to def.
func queryInt(r *http.Request, name string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return n
}

// actor identifies the authenticated caller for auditing.
func actor(r *http.Request) bookmark.Actor {
	a := bookmark.Actor{IP: middleware.ClientIP(r)}
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil {
		a.Username = sess.Username
	}
	return a
}
