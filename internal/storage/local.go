package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// LocalStorage writes uploads below basePath and serves them under baseURL.
type LocalStorage struct {
	basePath string
	baseURL  string
	log      zerolog.Logger
}

func NewLocalStorage(basePath, baseURL string, log zerolog.Logger) (*LocalStorage, error) {
	logger := log.With().Str("component", "local-storage").Logger()

	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, fmt.Errorf("local storage path is empty")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create local storage directory failed: %w", err)
	}

	logger.Info().Str("path", basePath).Str("base_url", baseURL).Msg("local storage initialized")
	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		log:      logger,
	}, nil
}

func (l *LocalStorage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	fullPath := filepath.Join(l.basePath, clean)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("create directory failed: %w", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("create file failed: %w", err)
	}
	written, err := io.Copy(f, body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("write file failed: %w", err)
	}

	l.log.Debug().Str("key", key).Int64("bytes", written).Str("content_type", contentType).Msg("stored file")
	return l.baseURL + "/" + path.Clean(filepath.ToSlash(clean)), nil
}

func (l *LocalStorage) Health(context.Context) error {
	_, err := os.Stat(l.basePath)
	return err
}
