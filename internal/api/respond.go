package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/rshade/openfootprint/internal/catalog"
	"github.com/rshade/openfootprint/internal/export"
	"github.com/rshade/openfootprint/internal/model"
	"github.com/rshade/openfootprint/internal/store"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}

// writeError maps err onto a status code. kind names the record type in
// not-found replies.
func writeError(w http.ResponseWriter, r *http.Request, kind model.Kind, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Detail: verr.Error(), Fields: verr.Fields})
	case errors.Is(err, store.ErrNotFound):
		detail := "Not found"
		if kind != "" {
			detail = kind.Title() + " not found"
		}
		writeDetail(w, http.StatusNotFound, detail)
	case errors.Is(err, export.ErrUnknownDataset):
		writeDetail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrAlreadyExists):
		writeDetail(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrInvalidPage), errors.Is(err, catalog.ErrUnsupportedFormat):
		writeDetail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, r.Context().Err()) && r.Context().Err() != nil:
		// Client went away; nothing useful can be written.
		zerolog.Ctx(r.Context()).Debug().Err(err).Msg("request cancelled")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
	}
}

// fallbackRecorder captures the status and headers of the mux's own
// not-found and method-not-allowed replies, discarding their text body.
type fallbackRecorder struct {
	header http.Header
	status int
}

func (r *fallbackRecorder) Header() http.Header { return r.header }

func (r *fallbackRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return len(b), nil
}

func (r *fallbackRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
}

// withJSONFallback serves mux, replacing its plain-text 404 and 405 replies
// with {"detail": ...} bodies. The Allow header of a 405 is kept.
func withJSONFallback(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, pattern := mux.Handler(r)
		if pattern != "" {
			mux.ServeHTTP(w, r)
			return
		}
		rec := &fallbackRecorder{header: http.Header{}}
		h.ServeHTTP(rec, r)
		status := rec.status
		if status == 0 || status == http.StatusOK {
			status = http.StatusNotFound
		}
		if allow := rec.header.Get("Allow"); allow != "" {
			w.Header().Set("Allow", allow)
		}
		writeDetail(w, status, http.StatusText(status))
	})
}
