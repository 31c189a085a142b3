package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"mediavault/handlers"
	"mediavault/models"
	historysvc "mediavault/services/history"
)

type fakeProgressService struct {
	entries map[string]models.PlaybackProgress
}

func newFakeProgressService() *fakeProgressService {
	return &fakeProgressService{entries: make(map[string]models.PlaybackProgress)}
}

func (f *fakeProgressService) Update(update models.ProgressUpdate) (models.PlaybackProgress, error) {
	if update.ItemID == "" {
		return models.PlaybackProgress{}, historysvc.ErrItemIDRequired
	}
	if update.Position < 0 || update.Duration < 0 {
		return models.PlaybackProgress{}, historysvc.ErrInvalidProgress
	}
	entry := models.PlaybackProgress{ItemID: update.ItemID, Position: update.Position, Duration: update.Duration}
	f.entries[update.ItemID] = entry
	return entry, nil
}

func (f *fakeProgressService) Get(itemID string) (*models.PlaybackProgress, error) {
	if entry, ok := f.entries[itemID]; ok {
		return &entry, nil
	}
	return nil, nil
}

func (f *fakeProgressService) List() ([]models.PlaybackProgress, error) {
	out := make([]models.PlaybackProgress, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeProgressService) Delete(itemID string) error {
	delete(f.entries, itemID)
	return nil
}

func TestProgressUpdate(t *testing.T) {
	svc := newFakeProgressService()
	h := handlers.NewProgressHandler(svc)

	body := `{"position":300,"duration":1200}`
	req := httptest.NewRequest(http.MethodPut, "/api/progress/ep1", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Update(rr, mux.SetURLVars(req, map[string]string{"id": "ep1"}))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var entry models.PlaybackProgress
	if err := json.Unmarshal(rr.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry.ItemID != "ep1" || entry.Position != 300 {
		t.Fatalf("unexpected entry %+v", entry)
	}
}

func TestProgressUpdateRejectsBadBody(t *testing.T) {
	h := handlers.NewProgressHandler(newFakeProgressService())

	for _, body := range []string{`not json`, `{"position":-1,"duration":100}`} {
		req := httptest.NewRequest(http.MethodPut, "/api/progress/ep1", strings.NewReader(body))
		rr := httptest.NewRecorder()
		h.Update(rr, mux.SetURLVars(req, map[string]string{"id": "ep1"}))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, rr.Code)
		}
	}
}

func TestProgressGetMissing(t *testing.T) {
	h := handlers.NewProgressHandler(newFakeProgressService())

	req := httptest.NewRequest(http.MethodGet, "/api/progress/nope", nil)
	rr := httptest.NewRecorder()
	h.Get(rr, mux.SetURLVars(req, map[string]string{"id": "nope"}))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestProgressDelete(t *testing.T) {
	svc := newFakeProgressService()
	svc.entries["ep1"] = models.PlaybackProgress{ItemID: "ep1", Position: 100}
	h := handlers.NewProgressHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/progress/ep1", nil)
	rr := httptest.NewRecorder()
	h.Delete(rr, mux.SetURLVars(req, map[string]string{"id": "ep1"}))

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if _, ok := svc.entries["ep1"]; ok {
		t.Fatal("entry not deleted")
	}
}
