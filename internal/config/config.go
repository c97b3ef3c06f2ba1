package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port          int   `yaml:"port"`
	MaxUploadSize int64 `yaml:"max_upload_size"`
	OpenBrowser   bool  `yaml:"open_browser"`
}

type TrashConfig struct {
	DirName string `yaml:"dir_name"`
}

type StaticConfig struct {
	Path         string `yaml:"path"`
	TemplateFile string `yaml:"template_file"`
}

type FileConfig struct {
	DirPermissions    os.FileMode `yaml:"dir_permissions"`
	FilePermissions   os.FileMode `yaml:"file_permissions"`
	CodeExtensions    []string    `yaml:"code_extensions"`
	ArchiveExtensions []string    `yaml:"archive_extensions"`
	PreviewExtensions []string    `yaml:"preview_extensions"`
	RecentsLimit      int         `yaml:"recents_limit"`
	MaxNameLength     int         `yaml:"max_name_length"`
	ValidNameRegex    string      `yaml:"valid_name_regex"`
}

type ProtectedConfig struct {
	ExtraPaths []string `yaml:"extra_paths"`
}

type RoutesConfig struct {
	Browse         string `yaml:"browse"`
	APIList        string `yaml:"api_list"`
	CreateFolder   string `yaml:"create_folder"`
	CreateFile     string `yaml:"create_file"`
	Rename         string `yaml:"rename"`
	Copy           string `yaml:"copy"`
	Move           string `yaml:"move"`
	BatchCopy      string `yaml:"batch_copy"`
	BatchMove      string `yaml:"batch_move"`
	BatchDelete    string `yaml:"batch_delete"`
	Delete         string `yaml:"delete"`
	EmptyTrash     string `yaml:"empty_trash"`
	Download       string `yaml:"download"`
	DownloadFolder string `yaml:"download_folder"`
	Preview        string `yaml:"preview"`
	Upload         string `yaml:"upload"`
	Zip            string `yaml:"zip"`
	Unzip          string `yaml:"unzip"`
}

type Messages struct {
	CannotListDirectory string `yaml:"cannot_list_directory"`
	TemplateError       string `yaml:"template_error"`
	RenderError         string `yaml:"render_error"`
	CannotServe         string `yaml:"cannot_serve"`
	CannotDelete        string `yaml:"cannot_delete"`
	CannotCreate        string `yaml:"cannot_create"`
	ProtectedPath       string `yaml:"protected_path"`
	NotFound            string `yaml:"not_found"`
	AlreadyExists       string `yaml:"already_exists"`
	InvalidName         string `yaml:"invalid_name"`
	PreviewUnsupported  string `yaml:"preview_unsupported"`
	InternalError       string `yaml:"internal_error"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Trash     TrashConfig     `yaml:"trash"`
	Static    StaticConfig    `yaml:"static"`
	File      FileConfig      `yaml:"file"`
	Protected ProtectedConfig `yaml:"protected"`
	Routes    RoutesConfig    `yaml:"routes"`
	Messages  Messages        `yaml:"messages"`
}

func LoadConfig(filename string) *Config {
	cfg, err := LoadConfigWithError(filename)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func LoadConfigWithError(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if unmarshalErr := yaml.Unmarshal(data, &cfg); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	// путь к статике делаю абсолютным сразу, чтобы не зависеть от рабочего каталога.
	// он же попадает в защищённый набор, а там сравниваются только канонические пути.
	absStatic, absErr := filepath.Abs(cfg.Static.Path)
	if absErr != nil {
		return nil, fmt.Errorf("failed to resolve static path: %w", absErr)
	}
	cfg.Static.Path = absStatic

	if validationErr := validateConfig(&cfg); validationErr != nil {
		return nil, validationErr
	}

	return &cfg, nil
}

type validationError struct {
	field string
	msg   string
}

func (e validationError) Error() string {
	return fmt.Sprintf("%s: %s", e.field, e.msg)
}

func validateConfig(cfg *Config) error {
	type validator func() error

	validators := []validator{
		func() error { return validateRequiredString("trash.dir_name", cfg.Trash.DirName) },
		func() error { return validateRequiredString("static.path", cfg.Static.Path) },
		func() error { return validateRequiredString("static.template_file", cfg.Static.TemplateFile) },
		func() error { return validatePort(cfg.Server.Port) },
		func() error { return validatePositiveInt64("server.max_upload_size", cfg.Server.MaxUploadSize) },
		func() error { return validatePositiveInt("file.recents_limit", cfg.File.RecentsLimit) },
		func() error { return validatePositiveInt("file.max_name_length", cfg.File.MaxNameLength) },
		func() error { return validateRequiredString("file.valid_name_regex", cfg.File.ValidNameRegex) },
		func() error { return validateNameRegex(cfg.File.ValidNameRegex) },
		func() error { return validateTrashDirName(cfg.Trash.DirName) },
	}

	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}

	return nil
}

func validateRequiredString(field, value string) error {
	if value == "" {
		return validationError{field: field, msg: "is required"}
	}
	return nil
}

func validatePositiveInt(field string, value int) error {
	if value <= 0 {
		return validationError{field: field, msg: "must be greater than 0"}
	}
	return nil
}

func validatePositiveInt64(field string, value int64) error {
	if value <= 0 {
		return validationError{field: field, msg: "must be greater than 0"}
	}
	return nil
}

func validatePort(port int) error {
	if port <= 0 || port > 65535 {
		return validationError{
			field: "server.port",
			msg:   fmt.Sprintf("must be between 1 and 65535, got %d", port),
		}
	}
	return nil
}

func validateNameRegex(pattern string) error {
	if _, err := regexp.Compile(pattern); err != nil {
		return validationError{
			field: "file.valid_name_regex",
			msg:   fmt.Sprintf("must be a valid regular expression: %v", err),
		}
	}
	return nil
}

// validateTrashDirName имя корзины должно быть именно именем, а не путём:
// корзина всегда создаётся внутри домашней директории пользователя.
func validateTrashDirName(name string) error {
	if name != filepath.Base(name) || name == "." || name == ".." {
		return validationError{
			field: "trash.dir_name",
			msg:   fmt.Sprintf("must be a plain directory name, got %q", name),
		}
	}
	return nil
}
