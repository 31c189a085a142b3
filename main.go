package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"

	"mediavault/api"
	"mediavault/config"
	"mediavault/handlers"
	"mediavault/services/history"
	"mediavault/services/library"
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	scanOnStart := flag.Bool("scan", false, "scan the library directory for new media on startup")
	flag.Parse()

	fmt.Println("mediavault starting...")

	configPath := os.Getenv("MEDIAVAULT_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("data", "settings.json")
	}

	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	// Set up file logging with rotation
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			log.SetOutput(io.MultiWriter(os.Stdout, fileWriter))
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			log.Printf("Logging to file: %s", settings.Log.File)
		}
	}

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	librarySvc, err := library.NewService(filepath.Join(settings.Library.DataDirectory, "library.db"))
	if err != nil {
		log.Fatalf("failed to open library: %v", err)
	}
	defer librarySvc.Close()

	if *scanOnStart {
		added, err := librarySvc.Scan(settings.Library.Directory, settings.Library.ScanWorkers)
		if err != nil {
			log.Printf("[main] library scan failed: %v", err)
		} else {
			log.Printf("[main] library scan registered %d new items", added)
		}
	}

	historySvc, err := history.NewService(settings.Library.DataDirectory)
	if err != nil {
		log.Fatalf("failed to open history: %v", err)
	}

	osFs := afero.NewOsFs()
	streamHandler := handlers.NewStreamHandler(librarySvc, osFs)
	itemsHandler := handlers.NewItemsHandler(librarySvc)
	progressHandler := handlers.NewProgressHandler(historySvc)
	thumbnailHandler := handlers.NewThumbnailHandler(librarySvc, osFs)

	r := mux.NewRouter()
	api.Register(r, streamHandler, itemsHandler, progressHandler, thumbnailHandler)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("Server starting on %s\n", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // no write timeout for streaming
		IdleTimeout:  120 * time.Second,
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("Shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Shutdown complete")
}
