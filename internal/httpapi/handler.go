// Package httpapi serves the resolved site datasets and cache introspection.
//
// Routes:
//
//	GET  /api/site               every dataset view, keyed by cache key
//	GET  /api/site/{key}         one dataset view
//	POST /api/site/{key}/refresh pull one dataset from the remote now
//	POST /api/site/{key}/invalidate
//	GET  /cache/stats            entries held by the cache manager
//	POST /cache/clear            drop every entry and the persisted blob
//	GET  /healthz
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	pc "github.com/unkn0wn-root/prioritycache"
	"github.com/unkn0wn-root/prioritycache/sitedata"
)

type handler struct {
	reg *sitedata.Registry
	m   *pc.Manager
	log pc.Logger
}

// New returns the HTTP handler. A nil logger discards.
func New(reg *sitedata.Registry, m *pc.Manager, log pc.Logger) http.Handler {
	if log == nil {
		log = pc.NopLogger{}
	}
	h := &handler{reg: reg, m: m, log: log}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/site", h.views)
	mux.HandleFunc("GET /api/site/{key}", h.view)
	mux.HandleFunc("POST /api/site/{key}/refresh", h.refresh)
	mux.HandleFunc("POST /api/site/{key}/invalidate", h.invalidate)
	mux.HandleFunc("GET /cache/stats", h.stats)
	mux.HandleFunc("POST /cache/clear", h.clear)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func (h *handler) views(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.reg.Views(r.Context()))
}

func (h *handler) view(w http.ResponseWriter, r *http.Request) {
	v, err := h.reg.Update(r.Context(), r.PathValue("key"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, v)
}

// refresh answers 502 when the remote failed; the body still carries the
// data that stays on display.
func (h *handler) refresh(w http.ResponseWriter, r *http.Request) {
	v, err := h.reg.Refresh(r.Context(), r.PathValue("key"))
	if errors.Is(err, sitedata.ErrUnknownDataset) {
		h.writeError(w, err)
		return
	}
	status := http.StatusOK
	if err != nil {
		status = http.StatusBadGateway
	}
	h.writeJSON(w, status, v)
}

func (h *handler) invalidate(w http.ResponseWriter, r *http.Request) {
	if err := h.reg.Invalidate(r.Context(), r.PathValue("key")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) stats(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.m.Stats())
}

func (h *handler) clear(w http.ResponseWriter, r *http.Request) {
	h.m.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, sitedata.ErrUnknownDataset) {
		status = http.StatusNotFound
	}
	h.writeJSON(w, status, errorBody{Error: err.Error()})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Warn("write response failed", pc.Fields{"err": err})
	}
}
