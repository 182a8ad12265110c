package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/graph"
	"github.com/starford/ansuz/internal/objects"
)

// Handler holds API route handlers.
type Handler struct {
	svc *objects.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *objects.Service) *Handler {
	return &Handler{svc: svc}
}

func objectID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// traversalParams reads depth and direction query parameters, applying
// the defaults for omitted values. Range checks are left to the graph
// package so the API and MCP surfaces reject identically.
func traversalParams(r *http.Request) (int, graph.Direction) {
	q := r.URL.Query()
	depth := 2
	if raw := q.Get("depth"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			depth = n
		} else {
			depth = -1
		}
	}
	direction := graph.DirectionBoth
	if raw := q.Get("direction"); raw != "" {
		direction = graph.Direction(raw)
	}
	return depth, direction
}

// ListObjects handles GET /api/objects.
func (h *Handler) ListObjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.svc.List(r.Context(), limit, offset)
	if err != nil {
		slog.Error("list objects failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, ObjectListResponse{Objects: items, Total: total})
}

// GetObject handles GET /api/objects/{id}.
func (h *Handler) GetObject(w http.ResponseWriter, r *http.Request) {
	id := objectID(r)
	obj, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get object failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, obj)
}

// CreateObject handles POST /api/objects.
func (h *Handler) CreateObject(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req CreateObjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Markdown == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("markdown is required"))
		return
	}
	obj, err := h.svc.Create(r.Context(), req.ID, req.Markdown)
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			writeJSON(w, http.StatusConflict, errorBody("object already exists"))
		} else {
			slog.Error("create object failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, obj)
}

// UpdateObject handles PUT /api/objects/{id}.
func (h *Handler) UpdateObject(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	id := objectID(r)
	var req UpdateObjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Markdown == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("markdown is required"))
		return
	}

	ifMatch := r.Header.Get("If-Match")
	// Strip surrounding quotes if present (standard ETag format).
	ifMatch = strings.Trim(ifMatch, `"`)

	obj, err := h.svc.Update(r.Context(), id, req.Markdown, ifMatch)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrConflict):
			writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
		default:
			slog.Error("update object failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, obj)
}

// DeleteObject handles DELETE /api/objects/{id}.
func (h *Handler) DeleteObject(w http.ResponseWriter, r *http.Request) {
	id := objectID(r)
	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		slog.Error("delete object failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetLinks handles GET /api/objects/{id}/links.
func (h *Handler) GetLinks(w http.ResponseWriter, r *http.Request) {
	id := objectID(r)
	rels, err := h.svc.Links(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		slog.Error("get links failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, LinksResponse{Links: rels})
}

// AddLink handles POST /api/objects/{id}/links.
func (h *Handler) AddLink(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id := objectID(r)
	var req AddLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.TargetID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("target_id is required"))
		return
	}
	obj, err := h.svc.AddLink(r.Context(), id, req.TargetID, req.DisplayText, req.Embed)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		slog.Error("add link failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, obj)
}

// GetBacklinks handles GET /api/objects/{id}/backlinks.
func (h *Handler) GetBacklinks(w http.ResponseWriter, r *http.Request) {
	id := objectID(r)
	back, err := h.svc.Backlinks(r.Context(), id)
	if err != nil {
		slog.Error("get backlinks failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, BacklinksResponse{Backlinks: back})
}

// TraverseGraph handles GET /api/objects/{id}/graph.
func (h *Handler) TraverseGraph(w http.ResponseWriter, r *http.Request) {
	id := objectID(r)
	depth, direction := traversalParams(r)

	res, err := h.svc.Traverse(r.Context(), id, depth, direction)
	if err != nil {
		switch {
		case errors.Is(err, graph.ErrInvalidDepth), errors.Is(err, graph.ErrUnknownDirection):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		default:
			slog.Error("graph traversal failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GraphSummary handles GET /api/objects/{id}/graph/summary.
func (h *Handler) GraphSummary(w http.ResponseWriter, r *http.Request) {
	id := objectID(r)
	depth, direction := traversalParams(r)

	sum, err := h.svc.GraphSummary(r.Context(), id, depth, direction)
	if err != nil {
		switch {
		case errors.Is(err, graph.ErrInvalidDepth), errors.Is(err, graph.ErrUnknownDirection):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		default:
			slog.Error("graph summary failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	results := make([]SearchResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, SearchResult{ID: row.ID, Title: row.Title, Snippet: row.Snippet})
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
