package organizer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestCategory(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"photo.JPG":     "Images",
		"clip.mkv":      "Videos",
		"song.flac":     "Audio",
		"backup.tar":    "Archives",
		"notes.md":      "Documents",
		"paper.pdf":     "PDFs",
		"budget.xlsx":   "Spreadsheets",
		"deck.pptx":     "Presentations",
		"main.go":       "Code",
		"setup.exe":     "Executables",
		"mock.fig":      "Design",
		"README":        "Others",
		"archive.weird": "Others",
	}

	for name, want := range tests {
		assert.Equal(t, want, Category(name), name)
	}
}

func TestOrganizeMovesFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	touch(t, filepath.Join(root, "a.png"))
	touch(t, filepath.Join(root, "b.pdf"))
	touch(t, filepath.Join(root, "c.unknown"))
	touch(t, filepath.Join(root, "projects", "keep.go"))
	touch(t, filepath.Join(root, "Images", "a.png"))

	report, err := New(nil).Organize(root, false)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Moved)
	assert.Equal(t, 1, report.Skipped, "only the non-category subdirectory is skipped")
	assert.False(t, report.DryRun)

	assert.FileExists(t, filepath.Join(root, "Images", "a.png"))
	assert.FileExists(t, filepath.Join(root, "Images", "a (1).png"))
	assert.FileExists(t, filepath.Join(root, "PDFs", "b.pdf"))
	assert.FileExists(t, filepath.Join(root, "Others", "c.unknown"))
	assert.FileExists(t, filepath.Join(root, "projects", "keep.go"))
	assert.NoFileExists(t, filepath.Join(root, "a.png"))
}

func TestOrganizeDryRun(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	touch(t, filepath.Join(root, "song.mp3"))
	touch(t, filepath.Join(root, "notes.txt"))

	report, err := New(nil).Organize(root, true)
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.Equal(t, 2, report.Moved)
	require.Len(t, report.Moves, 2)
	assert.Equal(t, filepath.Join(root, "Documents", "notes.txt"), report.Moves[0].To)
	assert.Equal(t, filepath.Join(root, "Audio", "song.mp3"), report.Moves[1].To)

	assert.FileExists(t, filepath.Join(root, "song.mp3"))
	assert.NoDirExists(t, filepath.Join(root, "Audio"))
}

func TestOrganizeErrors(t *testing.T) {
	t.Parallel()

	o := New(nil)

	_, err := o.Organize("", false)
	assert.EqualError(t, err, "folder path missing")

	_, err = o.Organize(filepath.Join(t.TempDir(), "missing"), false)
	assert.ErrorContains(t, err, "folder not found")

	file := filepath.Join(t.TempDir(), "file.txt")
	touch(t, file)
	_, err = o.Organize(file, false)
	assert.ErrorContains(t, err, "not a folder")
}

func TestResolvePathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	got, err := ResolvePath("~/Downloads")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "Downloads"), got)
}
