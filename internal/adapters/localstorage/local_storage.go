package localstorage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"
)

// LocalStorageService примитивы файловой системы поверх абсолютных путей.
// Канонизацию и проверки защиты делает слой выше, сюда приходят уже
// проверенные пути.
type LocalStorageService struct {
	dirPerm  os.FileMode
	filePerm os.FileMode
	rename   func(oldPath, newPath string) error
}

func NewLocalStorageService(dirPerm, filePerm os.FileMode) *LocalStorageService {
	return &LocalStorageService{
		dirPerm:  dirPerm,
		filePerm: filePerm,
		rename:   os.Rename,
	}
}

func (s *LocalStorageService) ReadDirectory(path string) ([]os.FileInfo, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	files := make([]os.FileInfo, 0, len(entries))
	for _, e := range entries {
		info, infoErr := e.Info()
		if infoErr != nil {
			// пропуск файла, например, с битыми симлинками.
			logrus.Warnf("Failed to get info for %s: %v", e.Name(), infoErr)
			continue
		}
		files = append(files, info)
	}

	return files, nil
}

// WriteFile пишет поток в файл, перезаписывая существующий.
// родительские директории создаются при необходимости.
func (s *LocalStorageService) WriteFile(path string, file io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), s.dirPerm); err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil {
			logrus.Warnf("Failed to close file %s: %v", path, closeErr)
		}
	}()

	_, err = io.Copy(out, file)
	return err
}

func (s *LocalStorageService) CreateDirectory(path string) error {
	return os.MkdirAll(path, s.dirPerm)
}

// CreateFile создаёт пустой файл, существующий не трогает.
func (s *LocalStorageService) CreateFile(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, s.filePerm)
	if err != nil {
		return err
	}
	return f.Close()
}

// Move переименовывает файл или директорию.
// пустой путь отклоняется, чтобы избежать случайной потери данных.
// если источник и приёмник на разных файловых системах, rename вернёт EXDEV,
// тогда падаем обратно на копирование с удалением источника. Этот запасной
// вариант не транзакционный: ошибка посреди копирования оставит частичный
// результат, и он отдаётся наверх как есть.
func (s *LocalStorageService) Move(oldPath, newPath string) error {
	if newPath == "" {
		return os.ErrInvalid
	}

	err := s.rename(oldPath, newPath)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}

	info, statErr := os.Stat(oldPath)
	if statErr != nil {
		return statErr
	}

	if info.IsDir() {
		if copyErr := s.CopyDirectory(oldPath, newPath); copyErr != nil {
			return copyErr
		}
	} else {
		if copyErr := s.CopyFile(oldPath, newPath); copyErr != nil {
			return copyErr
		}
	}

	return os.RemoveAll(oldPath)
}

// CopyFile копирует файл с сохранением прав и времени модификации.
func (s *LocalStorageService) CopyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := in.Close(); closeErr != nil {
			logrus.Warnf("Failed to close file %s: %v", src, closeErr)
		}
	}()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, copyErr := io.Copy(out, in); copyErr != nil {
		_ = out.Close()
		return copyErr
	}
	if closeErr := out.Close(); closeErr != nil {
		return closeErr
	}

	if chmodErr := os.Chmod(dst, info.Mode().Perm()); chmodErr != nil {
		return chmodErr
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

// CopyDirectory рекурсивно копирует директорию. Существующий приёмник не
// заменяется целиком, содержимое сливается поэлементно, одноимённые файлы
// перезаписываются.
func (s *LocalStorageService) CopyDirectory(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	if mkdirErr := os.MkdirAll(dst, info.Mode().Perm()); mkdirErr != nil {
		return mkdirErr
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, e := range entries {
		srcChild := filepath.Join(src, e.Name())
		dstChild := filepath.Join(dst, e.Name())

		if e.IsDir() {
			if copyErr := s.CopyDirectory(srcChild, dstChild); copyErr != nil {
				return copyErr
			}
			continue
		}

		if copyErr := s.CopyFile(srcChild, dstChild); copyErr != nil {
			return copyErr
		}
	}

	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

// Remove удаляет файл или директорию рекурсивно и безвозвратно.
func (s *LocalStorageService) Remove(path string) error {
	return os.RemoveAll(path)
}
