package library

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"mediavault/models"
)

var videoExtensions = map[string]bool{
	".mp4": true,
	".m4v": true,
	".mkv": true,
	".mov": true,
	".avi": true,
	".webm": true,
}

// Scan walks the library directory and registers any video file not already
// known. Returns the number of newly registered items.
func (s *Service) Scan(dir string, workers int) (int, error) {
	if workers <= 0 {
		workers = 4
	}

	known, err := s.knownPaths()
	if err != nil {
		return 0, err
	}

	var candidates []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !videoExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if known[path] {
			return nil
		}
		candidates = append(candidates, path)
		return nil
	})
	if err != nil {
		return 0, err
	}

	added := 0
	p := pool.New().WithMaxGoroutines(workers).WithErrors()
	results := make(chan models.NewItemPayload, len(candidates))
	for _, path := range candidates {
		path := path
		p.Go(func() error {
			payload := payloadForFile(path)
			results <- payload
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return 0, err
	}
	close(results)

	// Inserts stay on one goroutine; only the per-file probing fans out.
	for payload := range results {
		if _, err := s.Add(payload); err != nil {
			log.Printf("[library] scan: skipping %s: %v", payload.FilePath, err)
			continue
		}
		added++
	}
	return added, nil
}

func (s *Service) knownPaths() (map[string]bool, error) {
	rows, err := s.db.Query(`SELECT file_path FROM items`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	known := make(map[string]bool)
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		known[path] = true
	}
	return known, rows.Err()
}

// payloadForFile derives item metadata from the file path. Episode naming
// follows the common Series/Season directory convention; anything else is
// registered as a standalone title.
func payloadForFile(path string) models.NewItemPayload {
	base := filepath.Base(path)
	title := strings.TrimSuffix(base, filepath.Ext(base))
	payload := models.NewItemPayload{Title: title, FilePath: path}

	// A sibling thumbnail produced by the upstream extraction tool, if any.
	thumb := strings.TrimSuffix(path, filepath.Ext(path)) + ".jpg"
	if fileExists(thumb) {
		payload.ThumbnailPath = thumb
	}
	return payload
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
