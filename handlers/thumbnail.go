package handlers

import (
	"errors"
	"image"
	"image/jpeg"
	_ "image/png"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"
	"golang.org/x/image/draw"

	"mediavault/models"
	librarysvc "mediavault/services/library"
)

type thumbnailLibrary interface {
	Get(id string) (*models.Item, error)
}

// ThumbnailHandler serves item thumbnails with optional downscaling.
type ThumbnailHandler struct {
	library thumbnailLibrary
	fs      afero.Fs
}

func NewThumbnailHandler(library thumbnailLibrary, fs afero.Fs) *ThumbnailHandler {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &ThumbnailHandler{library: library, fs: fs}
}

// Serve handles GET /items/{id}/thumbnail?w={width}. Width 0 or absent
// serves the original size; anything else scales, preserving aspect ratio.
func (h *ThumbnailHandler) Serve(w http.ResponseWriter, r *http.Request) {
	item, err := h.library.Get(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, librarysvc.ErrItemNotFound) {
			http.Error(w, "item not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if item.ThumbnailPath == "" {
		http.Error(w, "no thumbnail", http.StatusNotFound)
		return
	}

	f, err := h.fs.Open(item.ThumbnailPath)
	if err != nil {
		http.Error(w, "thumbnail not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		log.Printf("[thumbnail] decode failed for item %s: %v", item.ID, err)
		http.Error(w, "unreadable thumbnail", http.StatusInternalServerError)
		return
	}

	targetWidth := 0
	if wStr := r.URL.Query().Get("w"); wStr != "" {
		if parsed, err := strconv.Atoi(wStr); err == nil && parsed > 0 && parsed <= 2000 {
			targetWidth = parsed
		}
	}

	out := src
	bounds := src.Bounds()
	if targetWidth > 0 && targetWidth < bounds.Dx() {
		height := bounds.Dy() * targetWidth / bounds.Dx()
		dst := image.NewRGBA(image.Rect(0, 0, targetWidth, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		out = dst
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if err := jpeg.Encode(w, out, &jpeg.Options{Quality: 80}); err != nil {
		log.Printf("[thumbnail] encode failed for item %s: %v", item.ID, err)
	}
}
