package scheduler

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jholhewres/jarvis/pkg/jarvis/database"
)

func TestStorageBackends(t *testing.T) {
	t.Parallel()

	backends := map[string]func(t *testing.T) Storage{
		"file": func(t *testing.T) Storage {
			s, err := NewFileStorage(filepath.Join(t.TempDir(), "sub", "reminders.json"))
			require.NoError(t, err)
			return s
		},
		"sqlite": func(t *testing.T) Storage {
			db, err := database.Open(":memory:")
			require.NoError(t, err)
			t.Cleanup(func() { db.Close() })
			return NewSQLiteStorage(db)
		},
	}

	for name, newStorage := range backends {
		t.Run(name, func(t *testing.T) {
			s := newStorage(t)

			empty, err := s.LoadAll()
			require.NoError(t, err)
			assert.Empty(t, empty)

			ran := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
			a := &Reminder{
				ID:        "a",
				Time:      "09:00",
				Message:   "drink water",
				EmailTo:   "me@example.com",
				Enabled:   true,
				CreatedAt: time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC),
				LastRunAt: &ran,
				RunCount:  3,
			}
			b := &Reminder{ID: "b", Time: "18:30", Message: "walk", CreatedAt: time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)}
			require.NoError(t, s.Save(a))
			require.NoError(t, s.Save(b))

			b.LastError = "failed once"
			require.NoError(t, s.Save(b))

			all, err := s.LoadAll()
			require.NoError(t, err)
			require.Len(t, all, 2)
			sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

			assert.Equal(t, "drink water", all[0].Message)
			assert.Equal(t, "me@example.com", all[0].EmailTo)
			assert.True(t, all[0].Enabled)
			assert.Equal(t, 3, all[0].RunCount)
			require.NotNil(t, all[0].LastRunAt)
			assert.True(t, ran.Equal(*all[0].LastRunAt))
			assert.True(t, a.CreatedAt.Equal(all[0].CreatedAt))

			assert.Equal(t, "failed once", all[1].LastError)
			assert.False(t, all[1].Enabled)
			assert.Nil(t, all[1].LastRunAt)

			require.NoError(t, s.Delete("a"))
			require.NoError(t, s.Delete("unknown"))

			all, err = s.LoadAll()
			require.NoError(t, err)
			require.Len(t, all, 1)
			assert.Equal(t, "b", all[0].ID)
		})
	}
}

func TestFileStorageCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "reminders.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := NewFileStorage(path)
	require.NoError(t, err)

	_, err = s.LoadAll()
	assert.Error(t, err)
}
