package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/starford/chaser/internal/syncservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *syncservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *syncservice.Service) *Handler {
	return &Handler{svc: svc}
}

// Status handles GET /api/status.
//
//	@Summary		Engine state, watch roots, targets and tracked paths
//	@Tags			sync
//	@Produce		json
//	@Success		200	{object}	StatusResponse
//	@Security		BearerAuth
//	@Router			/status [get]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Status(r.Context()))
}

// Targets handles GET /api/targets.
//
//	@Summary		List loaded target files
//	@Tags			targets
//	@Produce		json
//	@Success		200	{object}	TargetListResponse
//	@Security		BearerAuth
//	@Router			/targets [get]
func (h *Handler) Targets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, TargetListResponse{Targets: h.svc.Targets(r.Context())})
}

// Entries handles GET /api/targets/entries?location=.
//
//	@Summary		List the path entries of one target file
//	@Tags			targets
//	@Produce		json
//	@Param			location	query		string	true	"Target file location as configured"
//	@Success		200			{object}	EntryListResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/targets/entries [get]
func (h *Handler) Entries(w http.ResponseWriter, r *http.Request) {
	loc := r.URL.Query().Get("location")
	if loc == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'location' is required"))
		return
	}
	entries, err := h.svc.Entries(r.Context(), loc)
	if err != nil {
		writeError(w, "list entries", err)
		return
	}
	writeJSON(w, http.StatusOK, EntryListResponse{Location: loc, Entries: entries})
}

// Sync handles POST /api/sync.
//
//	@Summary		Propagate a path rename to every target file
//	@Tags			sync
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SyncRequest	true	"Old and new path"
//	@Success		200		{object}	SyncResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sync [post]
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	res, err := h.svc.SyncPathChange(r.Context(), req)
	if err != nil {
		writeError(w, "sync path change", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Refresh handles POST /api/refresh.
//
//	@Summary		Reload every target file from disk
//	@Tags			sync
//	@Produce		json
//	@Success		200	{object}	StatusResponse
//	@Failure		422	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/refresh [post]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	ov, err := h.svc.Refresh(r.Context())
	if err != nil {
		writeError(w, "refresh", err)
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

// History handles GET /api/history.
//
//	@Summary		Recently propagated renames
//	@Tags			sync
//	@Produce		json
//	@Param			limit	query		int	false	"Max records"
//	@Success		200		{object}	HistoryResponse
//	@Security		BearerAuth
//	@Router			/history [get]
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	recs, err := h.svc.History(r.Context(), limit)
	if err != nil {
		writeError(w, "history", err)
		return
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Renames: recs})
}

// CheckIgnore handles GET /api/ignore?path=.
//
//	@Summary		Check a path against the ignore patterns
//	@Tags			sync
//	@Produce		json
//	@Param			path	query		string	true	"Path to check"
//	@Success		200		{object}	IgnoreResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/ignore [get]
func (h *Handler) CheckIgnore(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	ignored, err := h.svc.CheckIgnore(r.Context(), path)
	if err != nil {
		writeError(w, "check ignore", err)
		return
	}
	writeJSON(w, http.StatusOK, IgnoreResponse{Path: path, Ignored: ignored})
}
