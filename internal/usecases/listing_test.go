package usecases

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"file-explorer/internal/adapters/localstorage"
	"file-explorer/internal/domain"
)

func newListingService(t *testing.T) (*ListingService, string) {
	t.Helper()
	home := canonicalTempDir(t)
	service := NewListingService(
		localstorage.NewLocalStorageService(0o755, 0o644),
		domain.CanonicalPath(home),
		[]string{"py", "js", "json", "md", "txt", "sh", "go"},
		[]string{"zip", "rar", "7z", "tar", "gz"},
		30,
	)
	return service, home
}

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestListingService_List(t *testing.T) {
	t.Run("splits folders and files", func(t *testing.T) {
		service, home := newListingService(t)
		require.NoError(t, os.MkdirAll(filepath.Join(home, "docs"), 0o755))
		write(t, home, "notes.txt", "hello")

		listing, err := service.List(home, "", false)
		require.NoError(t, err)

		require.Len(t, listing.Folders, 1)
		assert.Equal(t, "docs", listing.Folders[0].Name)
		assert.True(t, listing.Folders[0].IsDir)

		require.Len(t, listing.Files, 1)
		assert.Equal(t, "notes.txt", listing.Files[0].Name)
		assert.False(t, listing.Files[0].IsDir)
		assert.Equal(t, "code", listing.Files[0].Type)
		assert.NotEmpty(t, listing.Files[0].Size)
		assert.NotEmpty(t, listing.Files[0].MTime)
	})

	t.Run("hidden entries filtered unless requested", func(t *testing.T) {
		service, home := newListingService(t)
		write(t, home, ".secret", "x")
		write(t, home, "visible.txt", "x")

		listing, err := service.List(home, "", false)
		require.NoError(t, err)
		require.Len(t, listing.Files, 1)
		assert.Equal(t, "visible.txt", listing.Files[0].Name)

		listing, err = service.List(home, "", true)
		require.NoError(t, err)
		assert.Len(t, listing.Files, 2)
	})

	t.Run("search filters case-insensitively", func(t *testing.T) {
		service, home := newListingService(t)
		write(t, home, "Report.txt", "x")
		write(t, home, "image.png", "x")

		listing, err := service.List(home, "report", false)
		require.NoError(t, err)
		require.Len(t, listing.Files, 1)
		assert.Equal(t, "Report.txt", listing.Files[0].Name)
	})

	t.Run("classification by mime and extension", func(t *testing.T) {
		service, home := newListingService(t)
		write(t, home, "photo.png", "x")
		write(t, home, "paper.pdf", "x")
		write(t, home, "bundle.zip", "x")
		write(t, home, "script.py", "x")
		write(t, home, "blob.bin", "x")

		listing, err := service.List(home, "", false)
		require.NoError(t, err)

		types := make(map[string]string)
		for _, f := range listing.Files {
			types[f.Name] = f.Type
		}
		assert.Equal(t, "image", types["photo.png"])
		assert.Equal(t, "pdf", types["paper.pdf"])
		assert.Equal(t, "archive", types["bundle.zip"])
		assert.Equal(t, "code", types["script.py"])
		assert.Equal(t, "file", types["blob.bin"])
	})

	t.Run("folder item count skips hidden", func(t *testing.T) {
		service, home := newListingService(t)
		sub := filepath.Join(home, "docs")
		require.NoError(t, os.MkdirAll(sub, 0o755))
		write(t, sub, "a.txt", "x")
		write(t, sub, "b.txt", "x")
		write(t, sub, ".hidden", "x")

		listing, err := service.List(home, "", false)
		require.NoError(t, err)
		require.Len(t, listing.Folders, 1)
		assert.Equal(t, 2, listing.Folders[0].ItemCount)
	})

	t.Run("breadcrumbs go from root to current", func(t *testing.T) {
		service, home := newListingService(t)
		sub := filepath.Join(home, "a", "b")
		require.NoError(t, os.MkdirAll(sub, 0o755))

		listing, err := service.List(sub, "", false)
		require.NoError(t, err)

		require.NotEmpty(t, listing.Breadcrumbs)
		assert.Equal(t, domain.RootDisplayName, listing.Breadcrumbs[0].Name)
		assert.Equal(t, "b", listing.Breadcrumbs[len(listing.Breadcrumbs)-1].Name)
	})

	t.Run("missing target falls back to home", func(t *testing.T) {
		service, home := newListingService(t)
		write(t, home, "anchor.txt", "x")

		listing, err := service.List(filepath.Join(home, "no-such-dir"), "", false)
		require.NoError(t, err)
		assert.Equal(t, home, listing.Path)
		require.Len(t, listing.Files, 1)
	})

	t.Run("file target falls back to home", func(t *testing.T) {
		service, home := newListingService(t)
		write(t, home, "anchor.txt", "x")

		listing, err := service.List(filepath.Join(home, "anchor.txt"), "", false)
		require.NoError(t, err)
		assert.Equal(t, home, listing.Path)
	})
}

func TestListingService_ListRecents(t *testing.T) {
	service, home := newListingService(t)
	downloads := filepath.Join(home, "Downloads")
	require.NoError(t, os.MkdirAll(downloads, 0o755))

	write(t, home, "older.txt", "x")
	write(t, downloads, "newer.txt", "x")
	write(t, home, ".hidden.txt", "x")

	older := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(home, "older.txt"), older, older))

	recents, err := service.ListRecents()
	require.NoError(t, err)

	// каталоги и скрытые файлы не попадают, новые сверху; Downloads
	// сканируется и как поддиректория, и его содержимое само по себе
	require.GreaterOrEqual(t, len(recents), 2)
	assert.Equal(t, "newer.txt", recents[0].Name)

	for _, r := range recents {
		assert.NotEqual(t, ".hidden.txt", r.Name)
		assert.Equal(t, "file", r.Type)
	}
}
