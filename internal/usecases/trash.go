package usecases

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"file-explorer/internal/domain"
)

// trashTimestampLayout суффикс имени при коллизии внутри корзины.
const trashTimestampLayout = "20060102150405"

// TrashManager владеет областью восстановимого удаления: перемещает элементы
// в корзину, разрешает коллизии имён и безвозвратно стирает то, что уже
// внутри неё.
type TrashManager struct {
	storage  domain.FileStorage
	registry *ProtectedRegistry
	now      func() time.Time
}

func NewTrashManager(storage domain.FileStorage, registry *ProtectedRegistry) *TrashManager {
	return &TrashManager{
		storage:  storage,
		registry: registry,
		now:      time.Now,
	}
}

// EnsureTrashDir ленивое идемпотентное создание корзины вместе с
// недостающими родителями. Вызывается перед каждой операцией с корзиной.
func (t *TrashManager) EnsureTrashDir() error {
	if err := t.storage.CreateDirectory(string(t.registry.TrashDir())); err != nil {
		return fmt.Errorf("could not create trash directory: %w", domain.ErrTrashUnavailable)
	}
	return nil
}

// trashName имя внутри корзины: базовое имя цели, при занятом имени к стему
// дописывается отметка времени с сохранением расширения. Коллизия проверяется
// один раз; повторная коллизия в ту же секунду перезапишет запись, это
// принятый краевой случай. Существующая запись корзины не переименовывается
// никогда, имя меняется только у входящего элемента.
func (t *TrashManager) trashName(target domain.CanonicalPath) string {
	name := target.Base()
	if _, err := os.Stat(t.registry.TrashDir().Join(name)); os.IsNotExist(err) {
		return name
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s_%s%s", stem, t.now().Format(trashTimestampLayout), ext)
}

// MoveToTrash перемещает элемент в корзину под вычисленным именем.
// Между листингом и удалением элемент мог исчезнуть, тогда NotFound.
func (t *TrashManager) MoveToTrash(target domain.CanonicalPath) error {
	if _, err := os.Stat(string(target)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("'%s': %w", target, domain.ErrNotFound)
		}
		return fmt.Errorf("could not stat '%s': %w", target, domain.ErrOperationFailed)
	}

	if err := t.EnsureTrashDir(); err != nil {
		return err
	}

	dst := t.registry.TrashDir().Join(t.trashName(target))
	if err := t.storage.Move(string(target), dst); err != nil {
		return fmt.Errorf("could not move '%s' to trash: %w", target, domain.ErrOperationFailed)
	}

	return nil
}

// PermanentlyDelete стирает файл или директорию рекурсивно. Вызывается
// только когда цель уже внутри корзины.
func (t *TrashManager) PermanentlyDelete(target domain.CanonicalPath) error {
	if err := t.storage.Remove(string(target)); err != nil {
		return fmt.Errorf("could not erase '%s': %w", target, domain.ErrOperationFailed)
	}
	return nil
}

// EmptyTrash обходит непосредственных детей корзины и стирает каждого не
// защищённого. Ошибка на отдельном элементе не прерывает обход, итог всегда
// успешный, та же политика, что и у пакетных операций.
func (t *TrashManager) EmptyTrash() error {
	if err := t.EnsureTrashDir(); err != nil {
		return err
	}

	entries, err := t.storage.ReadDirectory(string(t.registry.TrashDir()))
	if err != nil {
		return fmt.Errorf("could not read trash directory: %w", domain.ErrOperationFailed)
	}

	for _, e := range entries {
		child := domain.CanonicalPath(t.registry.TrashDir().Join(e.Name()))
		if t.registry.IsProtected(child) {
			continue
		}
		if deleteErr := t.PermanentlyDelete(child); deleteErr != nil {
			logrus.Warnf("Failed to erase trash entry %s: %v", e.Name(), deleteErr)
		}
	}

	return nil
}
