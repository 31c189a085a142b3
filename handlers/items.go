package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"mediavault/models"
	librarysvc "mediavault/services/library"
)

// itemsLibrary is the subset of the library service the item routes use.
type itemsLibrary interface {
	List() ([]models.Item, error)
	Get(id string) (*models.Item, error)
	Add(payload models.NewItemPayload) (models.Item, error)
	Delete(id string) error
	IncrementViews(id string) (int64, error)
}

// ItemsHandler exposes the item registry over HTTP.
type ItemsHandler struct {
	library itemsLibrary
}

func NewItemsHandler(library itemsLibrary) *ItemsHandler {
	return &ItemsHandler{library: library}
}

// List responds with every item in the library.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.library.List()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, items)
}

// Get responds with a single item.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.library.Get(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, librarysvc.ErrItemNotFound) {
			http.Error(w, "item not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, item)
}

// Create registers a new item.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload models.NewItemPayload
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.library.Add(payload)
	if err != nil {
		switch {
		case errors.Is(err, librarysvc.ErrTitleRequired),
			errors.Is(err, librarysvc.ErrFilePathRequired):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(item)
}

// Delete removes an item from the registry. The backing file stays on disk.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.library.Delete(mux.Vars(r)["id"]); err != nil {
		if errors.Is(err, librarysvc.ErrItemNotFound) {
			http.Error(w, "item not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TrackView handles PATCH /items/{id}/view, the target of the player's
// one-shot 30-second view signal.
func (h *ItemsHandler) TrackView(w http.ResponseWriter, r *http.Request) {
	views, err := h.library.IncrementViews(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, librarysvc.ErrItemNotFound) {
			http.Error(w, "item not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]int64{"views": views})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
