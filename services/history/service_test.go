package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mediavault/models"
)

func TestNewServiceRequiresDir(t *testing.T) {
	_, err := NewService("")
	require.ErrorIs(t, err, ErrStorageDirRequired)
}

func TestUpdateInsideWindowStoresEntry(t *testing.T) {
	svc, err := NewService(t.TempDir())
	require.NoError(t, err)

	entry, err := svc.Update(models.ProgressUpdate{ItemID: "ep1", Position: 300, Duration: 1200})
	require.NoError(t, err)
	require.Equal(t, float64(300), entry.Position)
	require.Equal(t, float64(25), entry.PercentWatched)

	got, err := svc.Get("ep1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, float64(300), got.Position)
}

func TestUpdateBarelyStartedIsIgnored(t *testing.T) {
	svc, err := NewService(t.TempDir())
	require.NoError(t, err)

	_, err = svc.Update(models.ProgressUpdate{ItemID: "ep1", Position: 4, Duration: 1200})
	require.NoError(t, err)

	got, err := svc.Get("ep1")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestUpdateNearEndDeletesEntry(t *testing.T) {
	svc, err := NewService(t.TempDir())
	require.NoError(t, err)

	_, err = svc.Update(models.ProgressUpdate{ItemID: "ep1", Position: 300, Duration: 1200})
	require.NoError(t, err)

	// 80% of 1200 is 960; anything at or past it counts as finished.
	_, err = svc.Update(models.ProgressUpdate{ItemID: "ep1", Position: 960, Duration: 1200})
	require.NoError(t, err)

	got, err := svc.Get("ep1")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestUpdateValidation(t *testing.T) {
	svc, err := NewService(t.TempDir())
	require.NoError(t, err)

	_, err = svc.Update(models.ProgressUpdate{Position: 10, Duration: 100})
	require.ErrorIs(t, err, ErrItemIDRequired)

	_, err = svc.Update(models.ProgressUpdate{ItemID: "ep1", Position: -1, Duration: 100})
	require.ErrorIs(t, err, ErrInvalidProgress)
}

func TestListOrdersByRecency(t *testing.T) {
	svc, err := NewService(t.TempDir())
	require.NoError(t, err)

	_, err = svc.Update(models.ProgressUpdate{ItemID: "old", Position: 100, Duration: 1200})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = svc.Update(models.ProgressUpdate{ItemID: "new", Position: 200, Duration: 1200})
	require.NoError(t, err)

	items, err := svc.List()
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "new", items[0].ItemID)
	require.Equal(t, "old", items[1].ItemID)
}

func TestDeleteIsIdempotent(t *testing.T) {
	svc, err := NewService(t.TempDir())
	require.NoError(t, err)

	_, err = svc.Update(models.ProgressUpdate{ItemID: "ep1", Position: 100, Duration: 1200})
	require.NoError(t, err)

	require.NoError(t, svc.Delete("ep1"))
	require.NoError(t, svc.Delete("ep1"))

	got, err := svc.Get("ep1")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestProgressSurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	svc, err := NewService(dir)
	require.NoError(t, err)
	_, err = svc.Update(models.ProgressUpdate{ItemID: "ep1", Position: 300, Duration: 1200})
	require.NoError(t, err)

	reopened, err := NewService(dir)
	require.NoError(t, err)
	got, err := reopened.Get("ep1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, float64(300), got.Position)
}
