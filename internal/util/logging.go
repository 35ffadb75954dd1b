package util

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"dataroom-server/config"

	"gopkg.in/natefinch/lumberjack.v2"
)

func LogError(message string, err error) error {
	log.Printf("%s: %v", message, err)
	return fmt.Errorf("%s: %w", message, err)
}

// SetupLogging : стандартный логгер пишет в stdout и, если задан log.file, в файл с ротацией
func SetupLogging(cfg config.LogConfig) io.Closer {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if cfg.File == "" {
		log.SetOutput(os.Stdout)
		return io.NopCloser(nil)
	}

	fileWriter := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.Rotation.MaxSize,
		MaxBackups: cfg.Rotation.MaxBackups,
		MaxAge:     cfg.Rotation.MaxAge,
		Compress:   cfg.Rotation.Compress,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, fileWriter))

	return fileWriter
}

func HandleError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Code    int    `json:"code"`
	}{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	json.NewEncoder(w).Encode(errorResponse)
}
