package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/colorclaim/internal/api/response"
	"github.com/mcoot/colorclaim/internal/model"
	"github.com/mcoot/colorclaim/internal/storage"
)

const (
	defaultResultLimit = 20
	maxResultLimit     = 100
)

// ResultHandler handles result history endpoints
type ResultHandler struct {
	store storage.Storage
}

// NewResultHandler creates a new result handler
func NewResultHandler(store storage.Storage) *ResultHandler {
	return &ResultHandler{store: store}
}

// GetLatest handles GET /api/v1/rooms/{name}/result
func (h *ResultHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	name := model.RoomName(mux.Vars(r)["name"])

	result, err := h.store.GetLatestResult(r.Context(), name)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ResultFromModel(result))
}

// List handles GET /api/v1/results?limit=N
func (h *ResultHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultResultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxResultLimit {
			WriteError(w, NewInvalidRequestError("limit must be between 1 and 100"))
			return
		}
		limit = n
	}

	results, err := h.store.ListResults(r.Context(), limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	out := make([]response.Result, len(results))
	for i, res := range results {
		out[i] = response.ResultFromModel(res)
	}
	response.JSON(w, http.StatusOK, response.ResultList{Results: out})
}
