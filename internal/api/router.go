package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/colorclaim/internal/api/handler"
	"github.com/mcoot/colorclaim/internal/api/middleware"
	"github.com/mcoot/colorclaim/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger  *slog.Logger
	Rooms   handler.RoomQuerier
	Results storage.Storage
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	roomHandler := handler.NewRoomHandler(cfg.Rooms)
	resultHandler := handler.NewResultHandler(cfg.Results)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Logging(cfg.Logger))
	api.Use(middleware.Recovery(cfg.Logger))

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	api.HandleFunc("/rooms", roomHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{name}", roomHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{name}/result", resultHandler.GetLatest).Methods(http.MethodGet)

	api.HandleFunc("/results", resultHandler.List).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
