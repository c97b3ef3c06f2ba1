package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"file-explorer/internal/config"
	"file-explorer/internal/domain"

	"github.com/sirupsen/logrus"
)

type Handler struct {
	uc            domain.FileExplorer
	staticPath    string
	templateFile  string
	maxUploadSize int64
	routes        config.RoutesConfig
	messages      config.Messages
}

type browseData struct {
	Listing *domain.Listing
	Search  string
	Mode    string
}

// itemOutcome как результат элемента пакетной операции выглядит в JSON.
type itemOutcome struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type batchResponse struct {
	OK      bool          `json:"ok"`
	Results []itemOutcome `json:"results"`
}

func NewHandler(
	uc domain.FileExplorer,
	staticPath string,
	templateFile string,
	maxUploadSize int64,
	routes config.RoutesConfig,
	messages config.Messages,
) *Handler {
	return &Handler{
		uc:            uc,
		staticPath:    staticPath,
		templateFile:  templateFile,
		maxUploadSize: maxUploadSize,
		routes:        routes,
		messages:      messages,
	}
}

func (h *Handler) Browse(w http.ResponseWriter, r *http.Request) {
	listing, err := h.listForRequest(r)
	if err != nil {
		h.handleError(w, err, h.messages.CannotListDirectory)
		return
	}

	h.renderTemplate(w, browseData{
		Listing: listing,
		Search:  r.URL.Query().Get(QueryParamSearch),
		Mode:    r.URL.Query().Get(QueryParamMode),
	})
}

func (h *Handler) APIList(w http.ResponseWriter, r *http.Request) {
	listing, err := h.listForRequest(r)
	if err != nil {
		h.handleError(w, err, h.messages.CannotListDirectory)
		return
	}

	h.writeJSON(w, listing)
}

// listForRequest общий сбор листинга для HTML и JSON вариантов.
// режим recents подменяет содержимое списком свежих файлов.
func (h *Handler) listForRequest(r *http.Request) (*domain.Listing, error) {
	query := r.URL.Query()

	if query.Get(QueryParamMode) == ModeRecents {
		recents, err := h.uc.ListRecents()
		if err != nil {
			return nil, err
		}
		return &domain.Listing{
			Name:        RecentsName,
			Path:        RecentsName,
			Folders:     []domain.EntryData{},
			Files:       recents,
			Breadcrumbs: []domain.Breadcrumb{},
		}, nil
	}

	showHidden := query.Get(QueryParamHidden) == "1" || query.Get(QueryParamHidden) == "true"
	return h.uc.List(query.Get(QueryParamPath), query.Get(QueryParamSearch), showHidden)
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	h.handlePost(w, r, func() error {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

		// проверяем ContentLength, чтобы отклонить слишком большие загрузки.
		// ContentLength может быть -1 при chunked-передаче, поэтому дополнительно проверяем header.Size.
		if r.ContentLength > h.maxUploadSize {
			return fmt.Errorf("file size %d exceeds maximum %d: %w",
				r.ContentLength, h.maxUploadSize, domain.ErrOperationFailed)
		}

		file, header, err := r.FormFile(FormParamFile)
		if err != nil {
			return fmt.Errorf("failed to get form file: %w", err)
		}
		defer file.Close()

		// дополнительная проверка размера, после разбора формы
		if header.Size > h.maxUploadSize {
			return fmt.Errorf("file size %d exceeds maximum %d: %w",
				header.Size, h.maxUploadSize, domain.ErrOperationFailed)
		}

		currentPath := r.FormValue(FormParamPath)
		if uploadErr := h.uc.Upload(currentPath, filepath.Base(header.Filename), file); uploadErr != nil {
			return uploadErr
		}

		logrus.WithFields(logrus.Fields{
			"operation": OperationUpload,
			"path":      currentPath,
			"name":      header.Filename,
			"size":      header.Size,
		}).Info(LogFileUploaded)

		h.redirectToPath(w, r, currentPath)
		return nil
	}, h.messages.InternalError)
}

func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	h.createItem(w, r, OperationCreateFolder, LogFolderCreated, h.uc.CreateFolder)
}

func (h *Handler) CreateFile(w http.ResponseWriter, r *http.Request) {
	h.createItem(w, r, OperationCreateFile, LogFileCreated, h.uc.CreateFile)
}

func (h *Handler) createItem(
	w http.ResponseWriter,
	r *http.Request,
	operation, logMessage string,
	create func(dir, name string) error,
) {
	h.handlePost(w, r, func() error {
		name := r.FormValue(FormParamName)
		currentPath := r.FormValue(FormParamPath)

		if err := create(currentPath, name); err != nil {
			return err
		}

		logrus.WithFields(logrus.Fields{
			"operation": operation,
			"path":      currentPath,
			"name":      name,
		}).Info(logMessage)

		h.redirectToPath(w, r, currentPath)
		return nil
	}, h.messages.CannotCreate)
}

func (h *Handler) Rename(w http.ResponseWriter, r *http.Request) {
	h.handlePost(w, r, func() error {
		currentPath := r.FormValue(FormParamPath)
		oldName := r.FormValue(FormParamOld)
		newName := r.FormValue(FormParamNew)

		if err := h.uc.Rename(currentPath, oldName, newName); err != nil {
			return err
		}

		logrus.WithFields(logrus.Fields{
			"operation": OperationRename,
			"path":      currentPath,
			"old_name":  oldName,
			"new_name":  newName,
		}).Info(LogFileOrFolderRenamed)

		h.redirectToPath(w, r, currentPath)
		return nil
	}, h.messages.InternalError)
}

// Delete одиночное удаление: /delete/{path}. Здесь, в отличие от пакетного
// варианта, любая неудача отдаётся клиенту как ошибка.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	path := h.pathFromRoute(r, h.routes.Delete)
	if err := h.uc.Delete(path); err != nil {
		h.handleError(w, err, h.messages.CannotDelete)
		return
	}

	logrus.WithFields(logrus.Fields{
		"operation": OperationDelete,
		"path":      path,
	}).Info(LogFileOrFolderDeleted)

	h.redirectToPath(w, r, filepath.Dir(path))
}

func (h *Handler) EmptyTrash(w http.ResponseWriter, r *http.Request) {
	h.handlePost(w, r, func() error {
		if err := h.uc.EmptyTrash(); err != nil {
			return err
		}

		logrus.WithFields(logrus.Fields{
			"operation": OperationEmptyTrash,
		}).Info(LogTrashEmptied)

		h.writeJSON(w, map[string]bool{"ok": true})
		return nil
	}, h.messages.InternalError)
}

func (h *Handler) Copy(w http.ResponseWriter, r *http.Request) {
	h.singleTransfer(w, r, OperationCopy, LogItemCopied, h.uc.Copy)
}

func (h *Handler) Move(w http.ResponseWriter, r *http.Request) {
	h.singleTransfer(w, r, OperationMove, LogItemMoved, h.uc.Move)
}

func (h *Handler) singleTransfer(
	w http.ResponseWriter,
	r *http.Request,
	operation, logMessage string,
	transfer func(srcDir, dstDir, name string) error,
) {
	h.handlePost(w, r, func() error {
		src := r.FormValue(FormParamSrc)
		dst := r.FormValue(FormParamDst)
		name := r.FormValue(FormParamName)

		if err := transfer(src, dst, name); err != nil {
			return err
		}

		logrus.WithFields(logrus.Fields{
			"operation": operation,
			"src":       src,
			"dst":       dst,
			"name":      name,
		}).Info(logMessage)

		h.redirectToPath(w, r, dst)
		return nil
	}, h.messages.InternalError)
}

func (h *Handler) BatchCopy(w http.ResponseWriter, r *http.Request) {
	h.batch(w, r, OperationBatchCopy, func(r *http.Request) ([]domain.ItemResult, error) {
		return h.uc.BatchCopy(r.FormValue(FormParamSrc), r.FormValue(FormParamDst), splitNames(r.FormValue(FormParamNames)))
	})
}

func (h *Handler) BatchMove(w http.ResponseWriter, r *http.Request) {
	h.batch(w, r, OperationBatchMove, func(r *http.Request) ([]domain.ItemResult, error) {
		return h.uc.BatchMove(r.FormValue(FormParamSrc), r.FormValue(FormParamDst), splitNames(r.FormValue(FormParamNames)))
	})
}

func (h *Handler) BatchDelete(w http.ResponseWriter, r *http.Request) {
	h.batch(w, r, OperationBatchDelete, func(r *http.Request) ([]domain.ItemResult, error) {
		return h.uc.BatchDelete(r.FormValue(FormParamSrc), splitNames(r.FormValue(FormParamNames)))
	})
}

// batch пакетные операции всегда отвечают совокупным успехом, даже если
// часть элементов не прошла: сбои видны только в поэлементных результатах.
// Ошибка возможна лишь на кривом самом запросе, до начала обработки.
func (h *Handler) batch(
	w http.ResponseWriter,
	r *http.Request,
	operation string,
	run func(r *http.Request) ([]domain.ItemResult, error),
) {
	h.handlePost(w, r, func() error {
		results, err := run(r)
		if err != nil {
			return err
		}

		outcomes := make([]itemOutcome, 0, len(results))
		failed := 0
		for _, res := range results {
			outcome := itemOutcome{Name: res.Name, Status: string(res.Status)}
			if res.Err != nil {
				outcome.Error = res.Err.Error()
				failed++
			}
			outcomes = append(outcomes, outcome)
		}

		logrus.WithFields(logrus.Fields{
			"operation": operation,
			"items":     len(results),
			"failed":    failed,
		}).Info(LogBatchProcessed)

		h.writeJSON(w, batchResponse{OK: true, Results: outcomes})
		return nil
	}, h.messages.InternalError)
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.ServeFile(w, r, h.pathFromRoute(r, h.routes.Download)); err != nil {
		h.handleError(w, err, h.messages.CannotServe)
	}
}

func (h *Handler) DownloadFolder(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.ServeFolderAsZip(w, r.URL.Query().Get(QueryParamPath)); err != nil {
		h.handleError(w, err, h.messages.CannotServe)
	}
}

func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.ServePreview(w, r, h.pathFromRoute(r, h.routes.Preview)); err != nil {
		h.handleError(w, err, h.messages.PreviewUnsupported)
	}
}

func (h *Handler) ZipItem(w http.ResponseWriter, r *http.Request) {
	h.archiveAction(w, r, OperationZip, LogItemZipped, h.uc.Zip)
}

func (h *Handler) UnzipItem(w http.ResponseWriter, r *http.Request) {
	h.archiveAction(w, r, OperationUnzip, LogItemUnzipped, h.uc.Unzip)
}

func (h *Handler) archiveAction(
	w http.ResponseWriter,
	r *http.Request,
	operation, logMessage string,
	action func(path string) error,
) {
	h.handlePost(w, r, func() error {
		path := r.FormValue(FormParamPath)
		if err := action(path); err != nil {
			return err
		}

		logrus.WithFields(logrus.Fields{
			"operation": operation,
			"path":      path,
		}).Info(logMessage)

		h.redirectToPath(w, r, filepath.Dir(path))
		return nil
	}, h.messages.InternalError)
}

// pathFromRoute хвост URL после префикса маршрута, уже процентно-декодирован.
func (h *Handler) pathFromRoute(r *http.Request, route string) string {
	tail := strings.TrimPrefix(r.URL.Path, route)
	return domain.PathRoot + strings.TrimPrefix(tail, domain.PathRoot)
}

func splitNames(raw string) []string {
	parts := strings.Split(raw, NamesSeparator)
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != domain.PathEmpty {
			names = append(names, trimmed)
		}
	}
	return names
}

func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request, handler func() error, message string) {
	if r.Method != http.MethodPost {
		h.redirectToPath(w, r, domain.PathEmpty)
		return
	}

	if err := handler(); err != nil {
		h.handleError(w, err, message)
		return
	}
}

type errorType int

const (
	errorTypeBadRequest errorType = iota
	errorTypeForbidden
	errorTypeNotFound
	errorTypeInternal
)

// getErrorType сопоставляет доменные ошибки с HTTP-кодами статуса.
func (h *Handler) getErrorType(err error) errorType {
	switch {
	case errors.Is(err, domain.ErrInvalidPath) || errors.Is(err, domain.ErrInvalidName) || errors.Is(err, domain.ErrNameTooLong) ||
		errors.Is(err, domain.ErrAlreadyExists) || errors.Is(err, domain.ErrPreviewUnsupported):
		return errorTypeBadRequest
	case errors.Is(err, domain.ErrForbidden):
		return errorTypeForbidden
	case errors.Is(err, domain.ErrNotFound):
		return errorTypeNotFound
	default:
		return errorTypeInternal
	}
}

func (h *Handler) handleError(w http.ResponseWriter, err error, message string) {
	var httpStatus int
	var clientMessage string

	switch h.getErrorType(err) {
	case errorTypeBadRequest:
		httpStatus = http.StatusBadRequest
		clientMessage = clientMessageFor(err, h.messages)
	case errorTypeForbidden:
		httpStatus = http.StatusForbidden
		clientMessage = h.messages.ProtectedPath
	case errorTypeNotFound:
		httpStatus = http.StatusNotFound
		clientMessage = h.messages.NotFound
	case errorTypeInternal:
		httpStatus = http.StatusInternalServerError
		clientMessage = message
	}

	logrus.Errorf("HTTP %d Error: %s. Details: %+v", httpStatus, clientMessage, err)
	http.Error(w, clientMessage, httpStatus)
}

func clientMessageFor(err error, messages config.Messages) string {
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		return messages.AlreadyExists
	case errors.Is(err, domain.ErrInvalidName) || errors.Is(err, domain.ErrNameTooLong):
		return messages.InvalidName
	case errors.Is(err, domain.ErrPreviewUnsupported):
		return messages.PreviewUnsupported
	default:
		return messages.InternalError
	}
}

func (h *Handler) redirectToPath(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, RedirectPathTemplate+url.QueryEscape(h.normalizePath(path)), http.StatusFound)
}

func (h *Handler) normalizePath(path string) string {
	switch path {
	case domain.PathCurrent, domain.PathRoot:
		return domain.PathEmpty
	default:
		return path
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) renderTemplate(w http.ResponseWriter, data browseData) {
	tmpl, parseErr := template.ParseFiles(filepath.Join(h.staticPath, h.templateFile))
	if parseErr != nil {
		logrus.Infoln(parseErr)
		http.Error(w, h.messages.TemplateError, http.StatusInternalServerError)
		return
	}

	if executeErr := tmpl.Execute(w, data); executeErr != nil {
		logrus.Infoln(executeErr)
		http.Error(w, h.messages.RenderError, http.StatusInternalServerError)
	}
}
