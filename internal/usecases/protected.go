package usecases

import (
	"path/filepath"
	"strings"

	"file-explorer/internal/domain"
)

// ProtectedRegistry неизменяемый набор путей, которые никакая операция не
// может удалить или перезаписать. Собирается один раз при старте и
// передаётся компонентам явно, чтобы тесты могли подставить временные пути.
type ProtectedRegistry struct {
	protected map[domain.CanonicalPath]struct{}
	trashDir  domain.CanonicalPath
}

// NewProtectedRegistry корзина сама всегда входит в защищённый набор:
// удалить её целиком по пути нельзя, чистится она только через EmptyTrash.
func NewProtectedRegistry(trashDir domain.CanonicalPath, protected ...domain.CanonicalPath) *ProtectedRegistry {
	set := make(map[domain.CanonicalPath]struct{}, len(protected)+1)
	for _, p := range protected {
		if p != domain.PathEmpty {
			set[p] = struct{}{}
		}
	}
	set[trashDir] = struct{}{}

	return &ProtectedRegistry{
		protected: set,
		trashDir:  trashDir,
	}
}

// IsProtected только точное совпадение канонических путей. Дети защищённой
// директории сами по себе не защищены.
func (r *ProtectedRegistry) IsProtected(path domain.CanonicalPath) bool {
	_, ok := r.protected[path]
	return ok
}

// IsInTrash единственная проверка в системе по вложенности, а не по
// точному совпадению: корзина и всё строго внутри неё.
func (r *ProtectedRegistry) IsInTrash(path domain.CanonicalPath) bool {
	if path == r.trashDir {
		return true
	}

	prefix := string(r.trashDir)
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(string(path), prefix)
}

func (r *ProtectedRegistry) TrashDir() domain.CanonicalPath {
	return r.trashDir
}
