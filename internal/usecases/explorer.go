package usecases

import (
	"archive/zip"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/russross/blackfriday/v2"
	"github.com/sirupsen/logrus"

	"file-explorer/internal/domain"
)

// Explorer фасад над резолвером, реестром защиты, корзиной и пакетным
// исполнителем. HTTP-слой работает только с ним.
type Explorer struct {
	resolver          Resolver
	storage           domain.FileStorage
	registry          *ProtectedRegistry
	trash             *TrashManager
	batch             *BatchExecutor
	listing           *ListingService
	previewExtensions []string
	validName         *regexp.Regexp
	maxNameLength     int
}

func NewExplorer(
	storage domain.FileStorage,
	registry *ProtectedRegistry,
	trash *TrashManager,
	batch *BatchExecutor,
	listing *ListingService,
	previewExtensions []string,
	validNameRegex string,
	maxNameLength int,
) *Explorer {
	return &Explorer{
		storage:           storage,
		registry:          registry,
		trash:             trash,
		batch:             batch,
		listing:           listing,
		previewExtensions: previewExtensions,
		validName:         regexp.MustCompile(validNameRegex),
		maxNameLength:     maxNameLength,
	}
}

// validateName имена приходят из формы отдельным полем и подклеиваются к
// директории, поэтому разделители и ".." режутся до Join. Регулярка сама
// пропускает последовательности точек, dot-имена проверяются явно.
func (e *Explorer) validateName(name string) error {
	if name == domain.PathCurrent || name == ".." {
		return fmt.Errorf("name '%s' is invalid: %w", name, domain.ErrInvalidName)
	}
	if len(name) > e.maxNameLength {
		return fmt.Errorf("name '%s' too long (%d > %d): %w",
			name, len(name), e.maxNameLength, domain.ErrNameTooLong)
	}
	if !e.validName.MatchString(name) {
		return fmt.Errorf("name '%s' is invalid: %w", name, domain.ErrInvalidName)
	}
	return nil
}

func (e *Explorer) List(path, search string, showHidden bool) (*domain.Listing, error) {
	return e.listing.List(path, search, showHidden)
}

func (e *Explorer) ListRecents() ([]domain.EntryData, error) {
	return e.listing.ListRecents()
}

// resolveExistingDir общая проверка для операций, которым нужна
// существующая директория-цель.
func (e *Explorer) resolveExistingDir(raw string) (domain.CanonicalPath, error) {
	dir, err := e.resolver.Resolve(raw)
	if err != nil {
		return domain.PathEmpty, err
	}

	info, statErr := os.Stat(string(dir))
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return domain.PathEmpty, fmt.Errorf("directory '%s': %w", dir, domain.ErrNotFound)
		}
		return domain.PathEmpty, fmt.Errorf("could not stat '%s': %w", dir, domain.ErrOperationFailed)
	}
	if !info.IsDir() {
		return domain.PathEmpty, fmt.Errorf("'%s' is not a directory: %w", dir, domain.ErrInvalidPath)
	}

	return dir, nil
}

// CreateFolder существующая цель не перезаписывается, в отличие от
// копирования со слиянием.
func (e *Explorer) CreateFolder(dir, name string) error {
	if err := e.validateName(name); err != nil {
		return err
	}

	parent, err := e.resolveExistingDir(dir)
	if err != nil {
		return err
	}

	target := parent.Join(name)
	if _, statErr := os.Stat(target); statErr == nil {
		return fmt.Errorf("'%s': %w", target, domain.ErrAlreadyExists)
	}

	if createErr := e.storage.CreateDirectory(target); createErr != nil {
		return fmt.Errorf("could not create folder '%s': %w", target, domain.ErrOperationFailed)
	}
	return nil
}

func (e *Explorer) CreateFile(dir, name string) error {
	if err := e.validateName(name); err != nil {
		return err
	}

	parent, err := e.resolveExistingDir(dir)
	if err != nil {
		return err
	}

	target := parent.Join(name)
	if createErr := e.storage.CreateFile(target); createErr != nil {
		if os.IsExist(createErr) {
			return fmt.Errorf("'%s': %w", target, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("could not create file '%s': %w", target, domain.ErrOperationFailed)
	}
	return nil
}

func (e *Explorer) Rename(dir, oldName, newName string) error {
	if err := e.validateName(newName); err != nil {
		return err
	}

	parent, err := e.resolveExistingDir(dir)
	if err != nil {
		return err
	}

	oldPath, err := e.resolver.Resolve(parent.Join(oldName))
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(string(oldPath)); statErr != nil {
		return fmt.Errorf("'%s': %w", oldPath, domain.ErrNotFound)
	}
	if e.registry.IsProtected(oldPath) {
		return fmt.Errorf("'%s': %w", oldPath, domain.ErrForbidden)
	}

	newPath := parent.Join(newName)
	if _, statErr := os.Stat(newPath); statErr == nil {
		return fmt.Errorf("'%s': %w", newPath, domain.ErrAlreadyExists)
	}

	if moveErr := e.storage.Move(string(oldPath), newPath); moveErr != nil {
		return fmt.Errorf("could not rename '%s' to '%s': %w", oldPath, newPath, domain.ErrOperationFailed)
	}
	return nil
}

// Upload одноимённый существующий файл перезаписывается, так ведёт себя
// и загрузка в оригинальном обозревателе.
func (e *Explorer) Upload(dir, name string, file io.Reader) error {
	if err := e.validateName(name); err != nil {
		return err
	}

	parent, err := e.resolveExistingDir(dir)
	if err != nil {
		return err
	}

	if writeErr := e.storage.WriteFile(parent.Join(name), file); writeErr != nil {
		return fmt.Errorf("could not upload file to '%s': %w", parent, domain.ErrOperationFailed)
	}
	return nil
}

// Delete интерактивное одиночное удаление: защищённое запрещено, уже
// лежащее в корзине стирается навсегда, остальное уезжает в корзину.
// Это единственное место, где неудачный перенос в корзину отдаётся
// вызывающему как ошибка, а не проглатывается.
func (e *Explorer) Delete(path string) error {
	target, err := e.resolver.Resolve(path)
	if err != nil {
		return err
	}

	if _, statErr := os.Stat(string(target)); statErr != nil {
		return fmt.Errorf("'%s': %w", target, domain.ErrNotFound)
	}

	if e.registry.IsProtected(target) {
		return fmt.Errorf("'%s': %w", target, domain.ErrForbidden)
	}

	if e.registry.IsInTrash(target) {
		return e.trash.PermanentlyDelete(target)
	}

	return e.trash.MoveToTrash(target)
}

func (e *Explorer) EmptyTrash() error {
	return e.trash.EmptyTrash()
}

// Copy одиночный вариант пакетного копирования: первый же сбой
// отдаётся как ошибка клиенту.
func (e *Explorer) Copy(srcDir, dstDir, name string) error {
	src, dst, err := e.resolveBatchDirs(srcDir, dstDir)
	if err != nil {
		return err
	}
	return singleResult(e.batch.Copy(src, dst, []string{name}))
}

func (e *Explorer) Move(srcDir, dstDir, name string) error {
	src, dst, err := e.resolveBatchDirs(srcDir, dstDir)
	if err != nil {
		return err
	}
	return singleResult(e.batch.Move(src, dst, []string{name}))
}

func (e *Explorer) BatchCopy(srcDir, dstDir string, names []string) ([]domain.ItemResult, error) {
	src, dst, err := e.resolveBatchDirs(srcDir, dstDir)
	if err != nil {
		return nil, err
	}
	return e.batch.Copy(src, dst, names), nil
}

func (e *Explorer) BatchMove(srcDir, dstDir string, names []string) ([]domain.ItemResult, error) {
	src, dst, err := e.resolveBatchDirs(srcDir, dstDir)
	if err != nil {
		return nil, err
	}
	return e.batch.Move(src, dst, names), nil
}

func (e *Explorer) BatchDelete(srcDir string, names []string) ([]domain.ItemResult, error) {
	src, err := e.resolveExistingDir(srcDir)
	if err != nil {
		return nil, err
	}
	return e.batch.Delete(src, names), nil
}

func (e *Explorer) resolveBatchDirs(srcDir, dstDir string) (domain.CanonicalPath, domain.CanonicalPath, error) {
	src, err := e.resolveExistingDir(srcDir)
	if err != nil {
		return domain.PathEmpty, domain.PathEmpty, err
	}
	dst, err := e.resolveExistingDir(dstDir)
	if err != nil {
		return domain.PathEmpty, domain.PathEmpty, err
	}
	return src, dst, nil
}

func singleResult(results []domain.ItemResult) error {
	if len(results) == 0 {
		return nil
	}

	switch r := results[0]; r.Status {
	case domain.ItemSkippedMissing:
		return fmt.Errorf("'%s': %w", r.Name, domain.ErrNotFound)
	case domain.ItemSkippedProtected:
		return fmt.Errorf("'%s': %w", r.Name, domain.ErrForbidden)
	case domain.ItemFailed:
		return fmt.Errorf("%v: %w", r.Err, domain.ErrOperationFailed)
	default:
		return nil
	}
}

// resolveExistingFile общая проверка для отдачи содержимого.
func (e *Explorer) resolveExistingFile(raw string) (string, error) {
	target, err := e.resolver.Resolve(raw)
	if err != nil {
		return domain.PathEmpty, err
	}

	info, statErr := os.Stat(string(target))
	if statErr != nil {
		return domain.PathEmpty, fmt.Errorf("'%s': %w", target, domain.ErrNotFound)
	}
	if info.IsDir() {
		return domain.PathEmpty, fmt.Errorf("'%s' is a directory: %w", target, domain.ErrInvalidPath)
	}

	return string(target), nil
}

func (e *Explorer) ServeFile(w http.ResponseWriter, r *http.Request, path string) error {
	fullPath, err := e.resolveExistingFile(path)
	if err != nil {
		return err
	}

	// MIME, для корректного скачивания файлов.
	mimeType := mime.TypeByExtension(filepath.Ext(fullPath))
	if mimeType == domain.PathEmpty {
		mimeType = domain.MIMEOctetStream
	}
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filepath.Base(fullPath)))
	http.ServeFile(w, r, fullPath)
	return nil
}

// ServePreview предпросмотр только для картинок, текста, PDF и небольшого
// набора исходников. Markdown отдаётся отрендеренным в HTML.
func (e *Explorer) ServePreview(w http.ResponseWriter, r *http.Request, path string) error {
	fullPath, err := e.resolveExistingFile(path)
	if err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(fullPath))
	if ext == domain.ExtensionMD {
		return e.serveMarkdown(w, fullPath)
	}

	// список исходников проверяется до общих MIME-классов: таблица MIME
	// зависит от хоста, а набор расширений задан конфигом явно.
	for _, allowed := range e.previewExtensions {
		if ext == allowed {
			w.Header().Set("Content-Type", domain.MIMETextPlain)
			http.ServeFile(w, r, fullPath)
			return nil
		}
	}

	mimeType := mime.TypeByExtension(ext)
	if strings.HasPrefix(mimeType, "image/") || strings.HasPrefix(mimeType, "text/") || mimeType == domain.MIMEPDF {
		http.ServeFile(w, r, fullPath)
		return nil
	}

	return fmt.Errorf("'%s': %w", fullPath, domain.ErrPreviewUnsupported)
}

func (e *Explorer) serveMarkdown(w http.ResponseWriter, fullPath string) error {
	content, err := os.ReadFile(fullPath)
	if err != nil {
		return fmt.Errorf("could not read '%s': %w", fullPath, domain.ErrOperationFailed)
	}

	w.Header().Set("Content-Type", domain.MIMEHTML)
	if _, writeErr := w.Write(blackfriday.Run(content)); writeErr != nil {
		return fmt.Errorf("could not render '%s': %w", fullPath, domain.ErrOperationFailed)
	}
	return nil
}

// shouldSkipFile исключает скрытые файлы из zip архива.
func (e *Explorer) shouldSkipFile(info os.FileInfo) bool {
	return strings.HasPrefix(info.Name(), domain.HiddenFilePrefix)
}

// добавление файла в zip архив
func (e *Explorer) addFileToZip(zipWriter *zip.Writer, fullPath, filePath string) error {
	rel, err := filepath.Rel(fullPath, filePath)
	if err != nil {
		return fmt.Errorf("failed to get relative path: %w", err)
	}

	dstFile, err := zipWriter.Create(rel)
	if err != nil {
		return fmt.Errorf("failed to create zip entry: %w", err)
	}

	srcFile, openErr := os.Open(filePath)
	if openErr != nil {
		return fmt.Errorf("failed to open file: %w", openErr)
	}
	defer func() {
		if closeErr := srcFile.Close(); closeErr != nil {
			logrus.Warnf("Failed to close file %s: %v", filePath, closeErr)
		}
	}()

	if _, copyErr := io.Copy(dstFile, srcFile); copyErr != nil {
		return fmt.Errorf("failed to copy file to zip: %w", copyErr)
	}

	return nil
}

// createZipArchive рекурсивно обходит дерево и добавляет все не скрытые файлы
func (e *Explorer) createZipArchive(zipWriter *zip.Writer, fullPath string) error {
	return filepath.Walk(fullPath, func(file string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if e.shouldSkipFile(info) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			return nil
		}

		return e.addFileToZip(zipWriter, fullPath, file)
	})
}

func (e *Explorer) ServeFolderAsZip(w http.ResponseWriter, path string) error {
	dir, err := e.resolveExistingDir(path)
	if err != nil {
		return err
	}

	zipName := dir.Base() + domain.ExtensionZip
	w.Header().Set("Content-Type", domain.MIMEZip)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", zipName))

	zipWriter := zip.NewWriter(w)
	defer func() {
		if closeErr := zipWriter.Close(); closeErr != nil {
			logrus.Errorf("Failed to close zip writer: %v", closeErr)
		}
	}()

	if archiveErr := e.createZipArchive(zipWriter, string(dir)); archiveErr != nil {
		return fmt.Errorf("failed to create zip for folder '%s': %w", dir, archiveErr)
	}

	return nil
}

// Zip упаковывает элемент в архив рядом с ним, существующий архив не
// перезаписывается.
func (e *Explorer) Zip(path string) error {
	target, err := e.resolver.Resolve(path)
	if err != nil {
		return err
	}

	info, statErr := os.Stat(string(target))
	if statErr != nil {
		return fmt.Errorf("'%s': %w", target, domain.ErrNotFound)
	}

	archivePath := string(target) + domain.ExtensionZip
	if _, statErr := os.Stat(archivePath); statErr == nil {
		return fmt.Errorf("'%s': %w", archivePath, domain.ErrAlreadyExists)
	}

	out, createErr := os.Create(archivePath)
	if createErr != nil {
		return fmt.Errorf("could not create archive '%s': %w", archivePath, domain.ErrOperationFailed)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil {
			logrus.Warnf("Failed to close archive %s: %v", archivePath, closeErr)
		}
	}()

	zipWriter := zip.NewWriter(out)
	defer func() {
		if closeErr := zipWriter.Close(); closeErr != nil {
			logrus.Errorf("Failed to close zip writer: %v", closeErr)
		}
	}()

	if info.IsDir() {
		if archiveErr := e.createZipArchive(zipWriter, string(target)); archiveErr != nil {
			return fmt.Errorf("failed to archive '%s': %w", target, domain.ErrOperationFailed)
		}
		return nil
	}

	if addErr := e.addFileToZip(zipWriter, filepath.Dir(string(target)), string(target)); addErr != nil {
		return fmt.Errorf("failed to archive '%s': %w", target, domain.ErrOperationFailed)
	}
	return nil
}

// Unzip распаковывает архив в директорию рядом с ним. Записи, которые
// пытаются выбраться за пределы целевой директории, пропускаются.
func (e *Explorer) Unzip(path string) error {
	target, err := e.resolver.Resolve(path)
	if err != nil {
		return err
	}
	if !strings.EqualFold(filepath.Ext(string(target)), domain.ExtensionZip) {
		return fmt.Errorf("'%s' is not a zip archive: %w", target, domain.ErrInvalidPath)
	}

	reader, openErr := zip.OpenReader(string(target))
	if openErr != nil {
		if os.IsNotExist(openErr) {
			return fmt.Errorf("'%s': %w", target, domain.ErrNotFound)
		}
		return fmt.Errorf("could not open archive '%s': %w", target, domain.ErrOperationFailed)
	}
	defer func() {
		if closeErr := reader.Close(); closeErr != nil {
			logrus.Warnf("Failed to close archive %s: %v", target, closeErr)
		}
	}()

	destDir := strings.TrimSuffix(string(target), filepath.Ext(string(target)))
	if mkdirErr := e.storage.CreateDirectory(destDir); mkdirErr != nil {
		return fmt.Errorf("could not create '%s': %w", destDir, domain.ErrOperationFailed)
	}

	for _, f := range reader.File {
		if extractErr := e.extractZipEntry(f, destDir); extractErr != nil {
			return fmt.Errorf("failed to extract '%s': %w", f.Name, domain.ErrOperationFailed)
		}
	}

	return nil
}

func (e *Explorer) extractZipEntry(f *zip.File, destDir string) error {
	dest := filepath.Join(destDir, filepath.Clean(f.Name))

	// zip-slip: запись не должна выбраться за пределы целевой директории.
	rel, err := filepath.Rel(destDir, dest)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		logrus.Warnf("Skipping zip entry outside destination: %s", f.Name)
		return nil
	}

	if f.FileInfo().IsDir() {
		return e.storage.CreateDirectory(dest)
	}

	src, openErr := f.Open()
	if openErr != nil {
		return openErr
	}
	defer func() {
		if closeErr := src.Close(); closeErr != nil {
			logrus.Warnf("Failed to close zip entry %s: %v", f.Name, closeErr)
		}
	}()

	return e.storage.WriteFile(dest, src)
}
