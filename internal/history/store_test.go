package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(context.Background(), dsn, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestInsertAndListRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	first, err := s.Insert(ctx, Record{
		Path:       "a.png",
		Engine:     "tesseract",
		Text:       "hello",
		Confidence: 0.93,
		Duration:   1200 * time.Millisecond,
		CreatedAt:  base,
	})
	require.NoError(t, err)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", first.ID.String())

	_, err = s.Insert(ctx, Record{
		Path:         "b.png",
		Engine:       "tesseract",
		ErrorMessage: "processing image: exit status 1",
		Duration:     80 * time.Millisecond,
		CreatedAt:    base.Add(time.Minute),
	})
	require.NoError(t, err)

	recs, err := s.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	// newest first
	assert.Equal(t, "b.png", recs[0].Path)
	assert.Equal(t, "processing image: exit status 1", recs[0].ErrorMessage)
	assert.Equal(t, 80*time.Millisecond, recs[0].Duration)

	assert.Equal(t, "a.png", recs[1].Path)
	assert.Equal(t, "hello", recs[1].Text)
	assert.InDelta(t, 0.93, recs[1].Confidence, 1e-9)
	assert.Equal(t, first.ID, recs[1].ID)
}

func TestListRecentLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := s.Insert(ctx, Record{
			Path:      "x.png",
			Engine:    "tesseract",
			Text:      "t",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	recs, err := s.ListRecent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestListRecentEmpty(t *testing.T) {
	s := openTestStore(t)

	recs, err := s.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestDriverForDSN(t *testing.T) {
	assert.Equal(t, "pgx", driverForDSN("postgres://u:p@localhost/ocr"))
	assert.Equal(t, "pgx", driverForDSN("postgresql://u:p@localhost/ocr"))
	assert.Equal(t, "sqlite", driverForDSN("history.db"))
	assert.Equal(t, "sqlite", driverForDSN("file:history.db?cache=shared"))
}
