package usecases

import (
	"fmt"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"file-explorer/internal/domain"
)

const (
	mtimeLayout    = "Jan 02, 2006"
	bytesPerMB     = 1024 * 1024
	typeImage      = "image"
	typeVideo      = "video"
	typeAudio      = "audio"
	typePDF        = "pdf"
	typeArchive    = "archive"
	typeCode       = "code"
	typeFile       = "file"
	mimePrefixImg  = "image/"
	mimePrefixVid  = "video/"
	mimePrefixAud  = "audio/"
	extPDF         = "pdf"
	recentsSubdirs = 3
)

// ListingService собирает содержимое директории для отображения: папки и
// файлы раздельно, с классификацией по MIME и хлебными крошками.
type ListingService struct {
	resolver          Resolver
	storage           domain.FileStorage
	homeDir           domain.CanonicalPath
	codeExtensions    []string
	archiveExtensions []string
	recentsLimit      int
}

func NewListingService(
	storage domain.FileStorage,
	homeDir domain.CanonicalPath,
	codeExtensions []string,
	archiveExtensions []string,
	recentsLimit int,
) *ListingService {
	return &ListingService{
		storage:           storage,
		homeDir:           homeDir,
		codeExtensions:    codeExtensions,
		archiveExtensions: archiveExtensions,
		recentsLimit:      recentsLimit,
	}
}

// List несуществующая или нефайловая цель не ошибка: браузер просто
// возвращается в домашнюю директорию.
func (s *ListingService) List(rawPath, search string, showHidden bool) (*domain.Listing, error) {
	dir := s.homeDir
	if rawPath != domain.PathEmpty {
		if resolved, err := s.resolver.Resolve(rawPath); err == nil {
			dir = resolved
		}
	}

	if info, err := os.Stat(string(dir)); err != nil || !info.IsDir() {
		dir = s.homeDir
	}

	listing := &domain.Listing{
		Name:        displayName(dir),
		Path:        string(dir),
		SafePath:    safePath(string(dir)),
		Folders:     []domain.EntryData{},
		Files:       []domain.EntryData{},
		Breadcrumbs: breadcrumbs(dir),
	}

	entries, err := s.storage.ReadDirectory(string(dir))
	if err != nil {
		// сама директория могла исчезнуть между stat и чтением,
		// отдаём пустой листинг, как и оригинальный обозреватель.
		return listing, nil
	}

	sort.Slice(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Name()) < strings.ToLower(entries[j].Name())
	})

	for _, info := range entries {
		name := info.Name()

		if !showHidden && strings.HasPrefix(name, domain.HiddenFilePrefix) {
			continue
		}
		if search != domain.PathEmpty && !strings.Contains(strings.ToLower(name), strings.ToLower(search)) {
			continue
		}

		full := dir.Join(name)
		entry := domain.EntryData{
			Name:     name,
			Path:     full,
			SafePath: safePath(full),
			MTime:    info.ModTime().Format(mtimeLayout),
			IsDir:    info.IsDir(),
		}

		if info.IsDir() {
			entry.ItemCount = s.visibleItemCount(full)
			listing.Folders = append(listing.Folders, entry)
			continue
		}

		entry.Size = formatSize(info.Size())
		entry.Ext = strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), domain.PathCurrent)
		entry.MIME = mimeByName(name)
		entry.Type = s.classify(entry.Ext, entry.MIME)
		listing.Files = append(listing.Files, entry)
	}

	return listing, nil
}

// ListRecents свежие файлы из домашней директории и типовых подпапок,
// новые сверху, количество ограничено конфигом.
func (s *ListingService) ListRecents() ([]domain.EntryData, error) {
	scan := []string{
		string(s.homeDir),
		s.homeDir.Join("Downloads"),
		s.homeDir.Join("Documents"),
		s.homeDir.Join("Desktop"),
	}

	type recentEntry struct {
		entry domain.EntryData
		mtime int64
	}
	recents := make([]recentEntry, 0, s.recentsLimit*recentsSubdirs)

	for _, dir := range scan {
		entries, err := s.storage.ReadDirectory(dir)
		if err != nil {
			continue
		}
		for _, info := range entries {
			if info.IsDir() || strings.HasPrefix(info.Name(), domain.HiddenFilePrefix) {
				continue
			}
			full := filepath.Join(dir, info.Name())
			recents = append(recents, recentEntry{
				entry: domain.EntryData{
					Name:     info.Name(),
					Path:     full,
					SafePath: safePath(full),
					MTime:    info.ModTime().Format(mtimeLayout),
					Size:     formatSize(info.Size()),
					Type:     typeFile,
				},
				mtime: info.ModTime().UnixNano(),
			})
		}
	}

	sort.Slice(recents, func(i, j int) bool {
		return recents[i].mtime > recents[j].mtime
	})
	if len(recents) > s.recentsLimit {
		recents = recents[:s.recentsLimit]
	}

	result := make([]domain.EntryData, 0, len(recents))
	for _, r := range recents {
		result = append(result, r.entry)
	}
	return result, nil
}

// visibleItemCount сколько не скрытых элементов внутри папки, для бейджа в UI.
func (s *ListingService) visibleItemCount(dir string) int {
	entries, err := s.storage.ReadDirectory(dir)
	if err != nil {
		return 0
	}

	count := 0
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), domain.HiddenFilePrefix) {
			count++
		}
	}
	return count
}

// classify порядок проверок важен: сначала классы по MIME, потом по расширению.
func (s *ListingService) classify(ext, mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, mimePrefixImg):
		return typeImage
	case strings.HasPrefix(mimeType, mimePrefixVid):
		return typeVideo
	case strings.HasPrefix(mimeType, mimePrefixAud):
		return typeAudio
	}

	if ext == extPDF {
		return typePDF
	}
	for _, a := range s.archiveExtensions {
		if ext == a {
			return typeArchive
		}
	}
	for _, c := range s.codeExtensions {
		if ext == c {
			return typeCode
		}
	}
	return typeFile
}

func breadcrumbs(dir domain.CanonicalPath) []domain.Breadcrumb {
	parts := []domain.Breadcrumb{}
	curr := string(dir)

	for {
		parts = append([]domain.Breadcrumb{{
			Name:     displayName(domain.CanonicalPath(curr)),
			Path:     curr,
			SafePath: safePath(curr),
		}}, parts...)

		parent := filepath.Dir(curr)
		if parent == curr {
			break
		}
		curr = parent
	}

	return parts
}

func displayName(p domain.CanonicalPath) string {
	if base := p.Base(); base != domain.PathRoot && base != string(filepath.Separator) {
		return base
	}
	return domain.RootDisplayName
}

func mimeByName(name string) string {
	if mimeType := mime.TypeByExtension(filepath.Ext(name)); mimeType != domain.PathEmpty {
		return mimeType
	}
	return domain.MIMEOctetStream
}

// safePath экранирует путь для подстановки в URL, слэши остаются как есть.
func safePath(p string) string {
	return (&url.URL{Path: p}).EscapedPath()
}

func formatSize(size int64) string {
	return fmt.Sprintf("%.2f MB", float64(size)/float64(bytesPerMB))
}
