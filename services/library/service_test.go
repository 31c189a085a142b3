package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"mediavault/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(filepath.Join(t.TempDir(), "library.db"))
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestNewServiceRequiresPath(t *testing.T) {
	_, err := NewService("  ")
	require.ErrorIs(t, err, ErrDatabasePathRequired)
}

func TestAddAndGetRoundTrip(t *testing.T) {
	svc := newTestService(t)

	added, err := svc.Add(models.NewItemPayload{
		Title:         "Pilot",
		SeriesID:      "show-1",
		SeasonNumber:  1,
		EpisodeNumber: 1,
		FilePath:      "/media/show/s01e01.mp4",
		ThumbnailPath: "/media/show/s01e01.jpg",
		Duration:      1350,
		Variants: []models.QualityVariant{
			{Quality: "1080p", FilePath: "/media/show/s01e01.1080p.mp4"},
			{Quality: "480p", FilePath: "/media/show/s01e01.480p.mp4"},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, added.ID)

	got, err := svc.Get(added.ID)
	require.NoError(t, err)
	require.Equal(t, "Pilot", got.Title)
	require.Equal(t, "show-1", got.SeriesID)
	require.Equal(t, 1, got.SeasonNumber)
	require.Equal(t, "/media/show/s01e01.mp4", got.FilePath)
	require.Equal(t, float64(1350), got.Duration)
	require.Equal(t, int64(0), got.Views)
	require.Len(t, got.Variants, 2)
}

func TestAddValidation(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Add(models.NewItemPayload{FilePath: "/x.mp4"})
	require.ErrorIs(t, err, ErrTitleRequired)

	_, err = svc.Add(models.NewItemPayload{Title: "No File"})
	require.ErrorIs(t, err, ErrFilePathRequired)
}

func TestGetUnknownItem(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Get("missing")
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestListOrdersEpisodesWithinSeries(t *testing.T) {
	svc := newTestService(t)

	for _, ep := range []int{3, 1, 2} {
		_, err := svc.Add(models.NewItemPayload{
			Title:         "Episode",
			SeriesID:      "show-1",
			SeasonNumber:  1,
			EpisodeNumber: ep,
			FilePath:      filepath.Join("/media/show", "ep"+string(rune('0'+ep))+".mp4"),
		})
		require.NoError(t, err)
	}

	items, err := svc.List()
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, 1, items[0].EpisodeNumber)
	require.Equal(t, 2, items[1].EpisodeNumber)
	require.Equal(t, 3, items[2].EpisodeNumber)
}

func TestIncrementViews(t *testing.T) {
	svc := newTestService(t)

	added, err := svc.Add(models.NewItemPayload{Title: "Movie", FilePath: "/media/m.mp4"})
	require.NoError(t, err)

	views, err := svc.IncrementViews(added.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), views)

	views, err = svc.IncrementViews(added.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), views)

	_, err = svc.IncrementViews("missing")
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestResolveSource(t *testing.T) {
	svc := newTestService(t)

	added, err := svc.Add(models.NewItemPayload{
		Title:    "Movie",
		FilePath: "/media/m.mp4",
		Variants: []models.QualityVariant{{Quality: "480p", FilePath: "/media/m.480p.mp4"}},
	})
	require.NoError(t, err)

	path, err := svc.ResolveSource(added.ID, "")
	require.NoError(t, err)
	require.Equal(t, "/media/m.mp4", path)

	path, err = svc.ResolveSource(added.ID, "480p")
	require.NoError(t, err)
	require.Equal(t, "/media/m.480p.mp4", path)

	// Unknown labels fall back to the primary file.
	path, err = svc.ResolveSource(added.ID, "4k")
	require.NoError(t, err)
	require.Equal(t, "/media/m.mp4", path)

	_, err = svc.ResolveSource("missing", "480p")
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestDelete(t *testing.T) {
	svc := newTestService(t)

	added, err := svc.Add(models.NewItemPayload{
		Title:    "Movie",
		FilePath: "/media/m.mp4",
		Variants: []models.QualityVariant{{Quality: "480p", FilePath: "/media/m.480p.mp4"}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(added.ID))
	_, err = svc.Get(added.ID)
	require.ErrorIs(t, err, ErrItemNotFound)

	require.ErrorIs(t, svc.Delete(added.ID), ErrItemNotFound)
}

func TestScanRegistersNewVideos(t *testing.T) {
	svc := newTestService(t)
	dir := t.TempDir()

	write := func(name string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		return path
	}
	write("movie.mp4")
	write("show/episode.mkv")
	write("notes.txt")
	thumbed := write("clip.mp4")
	write("clip.jpg")

	added, err := svc.Scan(dir, 2)
	require.NoError(t, err)
	require.Equal(t, 3, added)

	items, err := svc.List()
	require.NoError(t, err)
	require.Len(t, items, 3)

	byPath := make(map[string]models.Item)
	for _, it := range items {
		byPath[it.FilePath] = it
	}
	clip, ok := byPath[thumbed]
	require.True(t, ok)
	require.Equal(t, "clip", clip.Title)
	require.Equal(t, filepath.Join(dir, "clip.jpg"), clip.ThumbnailPath)

	// A second scan finds nothing new.
	added, err = svc.Scan(dir, 2)
	require.NoError(t, err)
	require.Zero(t, added)
}
