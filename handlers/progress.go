package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"mediavault/models"
	historysvc "mediavault/services/history"
)

// progressService is the subset of the history service the progress routes
// use.
type progressService interface {
	Update(update models.ProgressUpdate) (models.PlaybackProgress, error)
	Get(itemID string) (*models.PlaybackProgress, error)
	List() ([]models.PlaybackProgress, error)
	Delete(itemID string) error
}

// ProgressHandler exposes server-side playback progress: the data behind
// the continue-watching shelf.
type ProgressHandler struct {
	service progressService
}

func NewProgressHandler(service progressService) *ProgressHandler {
	return &ProgressHandler{service: service}
}

// Update records a progress report from a player.
func (h *ProgressHandler) Update(w http.ResponseWriter, r *http.Request) {
	var update models.ProgressUpdate
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&update); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	update.ItemID = mux.Vars(r)["id"]

	entry, err := h.service.Update(update)
	if err != nil {
		switch {
		case errors.Is(err, historysvc.ErrItemIDRequired),
			errors.Is(err, historysvc.ErrInvalidProgress):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, entry)
}

// Get responds with the stored progress for one item, or 404 when none.
func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.service.Get(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if entry == nil {
		http.Error(w, "no progress recorded", http.StatusNotFound)
		return
	}
	writeJSON(w, entry)
}

// List responds with all in-progress items, most recent first.
func (h *ProgressHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, items)
}

// Delete forgets the stored progress for an item.
func (h *ProgressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(mux.Vars(r)["id"]); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
