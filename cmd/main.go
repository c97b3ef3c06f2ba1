package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/oarkflow/browser"
	"github.com/sirupsen/logrus"

	"file-explorer/internal/adapters/localstorage"
	"file-explorer/internal/adapters/server"
	"file-explorer/internal/config"
	"file-explorer/internal/domain"
	"file-explorer/internal/usecases"
)

// shutdownTimeout макс время для корректного завершения работы,
// чтобы не зависнуть, если соединения не закрываются вовремя.
const shutdownTimeout = 5 * time.Second

func main() {
	cfg := config.LoadConfig("config.yaml")

	home, err := os.UserHomeDir()
	if err != nil {
		logrus.Fatalf("Failed to resolve home directory: %v", err)
	}

	var resolver usecases.Resolver

	trashDir, err := resolver.Resolve(filepath.Join(home, cfg.Trash.DirName))
	if err != nil {
		logrus.Fatalf("Failed to resolve trash directory: %v", err)
	}

	// защищённый набор собирается один раз при старте: корень файловой
	// системы, директория приложения, сам бинарник, шаблоны и корзина.
	registry := usecases.NewProtectedRegistry(trashDir, protectedPaths(resolver, cfg)...)

	homeDir, err := resolver.Resolve(home)
	if err != nil {
		logrus.Fatalf("Failed to resolve home directory: %v", err)
	}

	storage := localstorage.NewLocalStorageService(cfg.File.DirPermissions, cfg.File.FilePermissions)
	trash := usecases.NewTrashManager(storage, registry)
	batch := usecases.NewBatchExecutor(storage, registry, trash)
	listing := usecases.NewListingService(
		storage,
		homeDir,
		cfg.File.CodeExtensions,
		cfg.File.ArchiveExtensions,
		cfg.File.RecentsLimit,
	)
	explorer := usecases.NewExplorer(
		storage,
		registry,
		trash,
		batch,
		listing,
		cfg.File.PreviewExtensions,
		cfg.File.ValidNameRegex,
		cfg.File.MaxNameLength,
	)

	handler := server.NewHandler(
		explorer,
		cfg.Static.Path,
		cfg.Static.TemplateFile,
		cfg.Server.MaxUploadSize,
		cfg.Routes,
		cfg.Messages,
	)

	// все маршруты настраиваются через config.yaml, без изменения кода.
	http.HandleFunc(cfg.Routes.Browse, handler.Browse)
	http.HandleFunc(cfg.Routes.APIList, handler.APIList)
	http.HandleFunc(cfg.Routes.CreateFolder, handler.CreateFolder)
	http.HandleFunc(cfg.Routes.CreateFile, handler.CreateFile)
	http.HandleFunc(cfg.Routes.Rename, handler.Rename)
	http.HandleFunc(cfg.Routes.Copy, handler.Copy)
	http.HandleFunc(cfg.Routes.Move, handler.Move)
	http.HandleFunc(cfg.Routes.BatchCopy, handler.BatchCopy)
	http.HandleFunc(cfg.Routes.BatchMove, handler.BatchMove)
	http.HandleFunc(cfg.Routes.BatchDelete, handler.BatchDelete)
	http.HandleFunc(cfg.Routes.Delete, handler.Delete)
	http.HandleFunc(cfg.Routes.EmptyTrash, handler.EmptyTrash)
	http.HandleFunc(cfg.Routes.Download, handler.Download)
	http.HandleFunc(cfg.Routes.DownloadFolder, handler.DownloadFolder)
	http.HandleFunc(cfg.Routes.Preview, handler.Preview)
	http.HandleFunc(cfg.Routes.Upload, handler.Upload)
	http.HandleFunc(cfg.Routes.Zip, handler.ZipItem)
	http.HandleFunc(cfg.Routes.Unzip, handler.UnzipItem)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: nil, // http.DefaultServeMux
	}

	// graceful shutdown.
	go func() {
		logrus.Infof("Server running on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Server failed: %v", err)
		}
	}()

	if cfg.Server.OpenBrowser {
		if openErr := browser.OpenURL(fmt.Sprintf("http://localhost:%d", cfg.Server.Port)); openErr != nil {
			logrus.Warnf("Failed to open browser: %v", openErr)
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("Server shutdown error: %v", err)
	} else {
		logrus.Info("Server stopped gracefully")
	}
}

// protectedPaths пути, которые нельзя удалить или перезаписать ни одной
// операцией. Несуществующие дополнительные пути из конфига просто
// пропускаются.
func protectedPaths(resolver usecases.Resolver, cfg *config.Config) []domain.CanonicalPath {
	raw := []string{string(filepath.Separator), cfg.Static.Path}

	if exe, err := os.Executable(); err == nil {
		raw = append(raw, exe, filepath.Dir(exe))
	} else {
		logrus.Warnf("Failed to resolve executable path: %v", err)
	}
	raw = append(raw, cfg.Protected.ExtraPaths...)

	paths := make([]domain.CanonicalPath, 0, len(raw))
	for _, r := range raw {
		resolved, err := resolver.Resolve(r)
		if err != nil {
			logrus.Warnf("Skipping protected path %q: %v", r, err)
			continue
		}
		paths = append(paths, resolved)
	}
	return paths
}
