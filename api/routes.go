package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"mediavault/handlers"
)

// corsMiddleware handles CORS for API routes.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range, Accept-Ranges, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleOptions handles OPTIONS requests for CORS preflight.
func handleOptions(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Register mounts API endpoints onto the provided router.
func Register(
	r *mux.Router,
	streamHandler *handlers.StreamHandler,
	itemsHandler *handlers.ItemsHandler,
	progressHandler *handlers.ProgressHandler,
	thumbnailHandler *handlers.ThumbnailHandler,
) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(corsMiddleware)

	// Item registry
	api.HandleFunc("/items", itemsHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/items", itemsHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/items", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/items/{id}", itemsHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/items/{id}", itemsHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/items/{id}", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/items/{id}/view", itemsHandler.TrackView).Methods(http.MethodPatch)
	api.HandleFunc("/items/{id}/view", handleOptions).Methods(http.MethodOptions)

	// Streaming
	api.HandleFunc("/items/{id}/stream", streamHandler.Stream).Methods(http.MethodGet, http.MethodHead)
	api.HandleFunc("/items/{id}/stream", streamHandler.Options).Methods(http.MethodOptions)

	// Thumbnails
	api.HandleFunc("/items/{id}/thumbnail", thumbnailHandler.Serve).Methods(http.MethodGet)
	api.HandleFunc("/items/{id}/thumbnail", handleOptions).Methods(http.MethodOptions)

	// Playback progress / continue watching
	api.HandleFunc("/progress", progressHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/progress", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/progress/{id}", progressHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/progress/{id}", progressHandler.Update).Methods(http.MethodPut)
	api.HandleFunc("/progress/{id}", progressHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/progress/{id}", handleOptions).Methods(http.MethodOptions)
}
