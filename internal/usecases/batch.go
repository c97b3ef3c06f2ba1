package usecases

import (
	"fmt"
	"os"

	"file-explorer/internal/domain"
)

// BatchExecutor применяет copy/move/delete к списку имён при фиксированной
// паре источник/приёмник. Политика: ошибка одного элемента не прерывает
// остальные, но каждый исход фиксируется в своём ItemResult, чтобы граница
// сама решала, как отчитаться.
type BatchExecutor struct {
	resolver Resolver
	storage  domain.FileStorage
	registry *ProtectedRegistry
	trash    *TrashManager
}

func NewBatchExecutor(storage domain.FileStorage, registry *ProtectedRegistry, trash *TrashManager) *BatchExecutor {
	return &BatchExecutor{
		storage:  storage,
		registry: registry,
		trash:    trash,
	}
}

// Copy директории копируются рекурсивно со слиянием в существующий
// одноимённый приёмник, файлы с сохранением метаданных.
func (b *BatchExecutor) Copy(srcDir, dstDir domain.CanonicalPath, names []string) []domain.ItemResult {
	results := make([]domain.ItemResult, 0, len(names))

	for _, name := range names {
		src := srcDir.Join(name)
		dst := dstDir.Join(name)

		info, err := os.Stat(src)
		if err != nil {
			if os.IsNotExist(err) {
				results = append(results, domain.ItemResult{Name: name, Status: domain.ItemSkippedMissing})
				continue
			}
			results = append(results, failedItem(name, err))
			continue
		}

		if info.IsDir() {
			err = b.storage.CopyDirectory(src, dst)
		} else {
			err = b.storage.CopyFile(src, dst)
		}
		if err != nil {
			results = append(results, failedItem(name, err))
			continue
		}

		results = append(results, domain.ItemResult{Name: name, Status: domain.ItemCopied})
	}

	return results
}

// Move перенос одним rename, на разных файловых системах адаптер сам
// падает обратно на копирование с удалением источника.
func (b *BatchExecutor) Move(srcDir, dstDir domain.CanonicalPath, names []string) []domain.ItemResult {
	results := make([]domain.ItemResult, 0, len(names))

	for _, name := range names {
		src := srcDir.Join(name)

		if _, err := os.Stat(src); err != nil {
			if os.IsNotExist(err) {
				results = append(results, domain.ItemResult{Name: name, Status: domain.ItemSkippedMissing})
				continue
			}
			results = append(results, failedItem(name, err))
			continue
		}

		if err := b.storage.Move(src, dstDir.Join(name)); err != nil {
			results = append(results, failedItem(name, err))
			continue
		}

		results = append(results, domain.ItemResult{Name: name, Status: domain.ItemMoved})
	}

	return results
}

// Delete для каждого имени: пропавшие и защищённые элементы пропускаются
// молча, то, что уже в корзине, стирается безвозвратно, остальное уезжает
// в корзину. Неудачный перенос в корзину фиксируется и не прерывает цикл.
func (b *BatchExecutor) Delete(srcDir domain.CanonicalPath, names []string) []domain.ItemResult {
	results := make([]domain.ItemResult, 0, len(names))

	for _, name := range names {
		target, err := b.resolver.Resolve(srcDir.Join(name))
		if err != nil {
			results = append(results, domain.ItemResult{Name: name, Status: domain.ItemSkippedMissing})
			continue
		}

		if _, statErr := os.Stat(string(target)); statErr != nil {
			results = append(results, domain.ItemResult{Name: name, Status: domain.ItemSkippedMissing})
			continue
		}

		if b.registry.IsProtected(target) {
			results = append(results, domain.ItemResult{Name: name, Status: domain.ItemSkippedProtected})
			continue
		}

		if b.registry.IsInTrash(target) {
			if eraseErr := b.trash.PermanentlyDelete(target); eraseErr != nil {
				results = append(results, failedItem(name, eraseErr))
				continue
			}
			results = append(results, domain.ItemResult{Name: name, Status: domain.ItemErased})
			continue
		}

		if trashErr := b.trash.MoveToTrash(target); trashErr != nil {
			results = append(results, failedItem(name, trashErr))
			continue
		}
		results = append(results, domain.ItemResult{Name: name, Status: domain.ItemMovedToTrash})
	}

	return results
}

func failedItem(name string, err error) domain.ItemResult {
	return domain.ItemResult{
		Name:   name,
		Status: domain.ItemFailed,
		Err:    fmt.Errorf("'%s': %w", name, err),
	}
}
