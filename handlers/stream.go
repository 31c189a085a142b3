package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"

	librarysvc "mediavault/services/library"
)

// streamLibrary is the subset of the library service the stream endpoint
// depends on.
type streamLibrary interface {
	ResolveSource(id, quality string) (string, error)
	IncrementViews(id string) (int64, error)
}

// StreamHandler serves byte-range slices of library video files.
type StreamHandler struct {
	library streamLibrary
	fs      afero.Fs
}

func NewStreamHandler(library streamLibrary, fs afero.Fs) *StreamHandler {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &StreamHandler{library: library, fs: fs}
}

// Stream serves GET /items/{id}/stream?quality={label}. With a Range header
// it responds 206 with exactly the requested byte span; otherwise 200 with
// the whole file. Every stream open counts one view, regardless of how many
// bytes the client reads.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	quality := r.URL.Query().Get("quality")

	path, err := h.library.ResolveSource(id, quality)
	if err != nil {
		if errors.Is(err, librarysvc.ErrItemNotFound) {
			http.Error(w, "item not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	f, err := h.fs.Open(path)
	if err != nil {
		// The registry references a file that is gone from disk. A data
		// integrity problem, reported like a missing item.
		log.Printf("[stream] backing file missing for item %s: %s", id, path)
		http.Error(w, "media file not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	size := st.Size()

	if _, err := h.library.IncrementViews(id); err != nil {
		log.Printf("[stream] view increment failed for item %s: %v", id, err)
	}

	// Container formats vary; the advertised type deliberately does not.
	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Accept-Ranges", "bytes")

	start, end, ok := parseRange(r.Header.Get("Range"), size)
	if !ok {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		if _, err := io.Copy(w, f); err != nil {
			log.Printf("[stream] full copy aborted for item %s: %v", id, err)
		}
		return
	}

	if start >= size {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		http.Error(w, "requested range not satisfiable", http.StatusRequestedRangeNotSatisfiable)
		return
	}
	if end >= size {
		end = size - 1
	}
	length := end - start + 1

	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, size))
	w.Header().Set("Content-Length", strconv.FormatInt(length, 10))
	w.WriteHeader(http.StatusPartialContent)
	if r.Method == http.MethodHead {
		return
	}

	if _, err := f.Seek(start, io.SeekStart); err != nil {
		log.Printf("[stream] seek failed for item %s: %v", id, err)
		return
	}
	if _, err := io.CopyN(w, f, length); err != nil {
		// Clients abort range reads constantly while scrubbing.
		log.Printf("[stream] range copy aborted for item %s: %v", id, err)
	}
}

// Options handles CORS preflight for the stream route.
func (h *StreamHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Range, Content-Type, Accept, Origin")
	w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range, Accept-Ranges, Content-Type")
	w.WriteHeader(http.StatusOK)
}

// parseRange parses a "bytes=<start>-<end>?" header. The end defaults to the
// last byte of the file. Anything unparsable reads as "no range requested".
func parseRange(header string, size int64) (start, end int64, ok bool) {
	header = strings.TrimSpace(header)
	if header == "" || !strings.HasPrefix(strings.ToLower(header), "bytes=") {
		return 0, 0, false
	}
	spec := strings.TrimPrefix(strings.ToLower(header), "bytes=")
	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}

	start, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil || start < 0 {
		return 0, 0, false
	}

	end = size - 1
	if tail := strings.TrimSpace(parts[1]); tail != "" {
		end, err = strconv.ParseInt(tail, 10, 64)
		if err != nil || end < start {
			return 0, 0, false
		}
	}
	return start, end, true
}
