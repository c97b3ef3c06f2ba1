package domain

import (
	"io"
	"net/http"
	"os"
)

// EntryData информация об одном элементе листинга для шаблона и JSON API.
type EntryData struct {
	Name      string `json:"name"`
	Path      string `json:"rel_path"`
	SafePath  string `json:"safe_path"`
	MTime     string `json:"mtime"`
	Size      string `json:"size,omitempty"`
	Ext       string `json:"ext,omitempty"`
	MIME      string `json:"mime,omitempty"`
	Type      string `json:"type,omitempty"`
	IsDir     bool   `json:"is_dir"`
	ItemCount int    `json:"item_count,omitempty"`
}

// Breadcrumb один сегмент пути от корня до текущей директории.
type Breadcrumb struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	SafePath string `json:"safe_path"`
}

// Listing содержимое директории, папки и файлы раздельно.
type Listing struct {
	Name        string       `json:"name"`
	Path        string       `json:"path"`
	SafePath    string       `json:"safe_path"`
	Folders     []EntryData  `json:"folders"`
	Files       []EntryData  `json:"files"`
	Breadcrumbs []Breadcrumb `json:"breadcrumbs"`
}

// FileStorage примитивы работы с файловой системой по абсолютным путям.
type FileStorage interface {
	ReadDirectory(path string) ([]os.FileInfo, error)
	WriteFile(path string, file io.Reader) error
	CreateDirectory(path string) error
	CreateFile(path string) error
	Move(oldPath, newPath string) error
	CopyFile(src, dst string) error
	CopyDirectory(src, dst string) error
	Remove(path string) error
}

// FileExplorer сценарии, которые дергает HTTP-слой.
type FileExplorer interface {
	List(path, search string, showHidden bool) (*Listing, error)
	ListRecents() ([]EntryData, error)
	CreateFolder(dir, name string) error
	CreateFile(dir, name string) error
	Rename(dir, oldName, newName string) error
	Upload(dir, name string, file io.Reader) error
	Delete(path string) error
	EmptyTrash() error
	Copy(srcDir, dstDir, name string) error
	Move(srcDir, dstDir, name string) error
	BatchCopy(srcDir, dstDir string, names []string) ([]ItemResult, error)
	BatchMove(srcDir, dstDir string, names []string) ([]ItemResult, error)
	BatchDelete(srcDir string, names []string) ([]ItemResult, error)
	Zip(path string) error
	Unzip(path string) error
	ServeFile(w http.ResponseWriter, r *http.Request, path string) error
	ServeFolderAsZip(w http.ResponseWriter, path string) error
	ServePreview(w http.ResponseWriter, r *http.Request, path string) error
}
