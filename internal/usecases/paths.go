package usecases

import (
	"fmt"
	"os"
	"path/filepath"

	"file-explorer/internal/domain"
)

// Resolver приводит сырой путь из запроса к каноническому виду: абсолютный,
// симлинки раскрыты, "." и ".." убраны. Пробелы по краям не обрезаются,
// имя с хвостовым пробелом легально и обозначает другой файл.
// Побочных эффектов нет.
type Resolver struct{}

func (Resolver) Resolve(raw string) (domain.CanonicalPath, error) {
	if raw == domain.PathEmpty {
		return domain.PathEmpty, fmt.Errorf("empty path: %w", domain.ErrInvalidPath)
	}

	clean := filepath.Clean(raw)
	if clean == domain.PathCurrent {
		return domain.PathEmpty, fmt.Errorf("empty path: %w", domain.ErrInvalidPath)
	}

	abs, err := filepath.Abs(clean)
	if err != nil {
		return domain.PathEmpty, fmt.Errorf("could not resolve '%s': %w", raw, domain.ErrInvalidPath)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return domain.CanonicalPath(resolved), nil
	}
	if !os.IsNotExist(err) {
		return domain.PathEmpty, fmt.Errorf("could not resolve '%s': %w", raw, domain.ErrInvalidPath)
	}

	// сам элемент может ещё не существовать (создание, гонка с удалением),
	// тогда раскрываем родителя и присоединяем базовое имя обратно.
	parent, parentErr := filepath.EvalSymlinks(filepath.Dir(abs))
	if parentErr != nil {
		if !os.IsNotExist(parentErr) {
			return domain.PathEmpty, fmt.Errorf("could not resolve '%s': %w", raw, domain.ErrInvalidPath)
		}
		parent = filepath.Dir(abs)
	}

	return domain.CanonicalPath(filepath.Join(parent, filepath.Base(abs))), nil
}
