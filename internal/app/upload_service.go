package app

import (
	"bytes"
	"context"
	"crypto/rand"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"claira-social/internal/metrics"
)

const DefaultMaxUploadBytes = 10 << 20

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// optimizable lists the formats the image optimizer can decode.
var optimizable = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

type ImageOptimizer interface {
	Optimize(data []byte) ([]byte, error)
}

type ObjectStorage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
}

type UploadFile struct {
	Name string
	Data []byte
}

type UploadService struct {
	optimizer ImageOptimizer
	storage   ObjectStorage
	maxBytes  int64
	now       func() time.Time
	log       zerolog.Logger
}

func NewUploadService(optimizer ImageOptimizer, storage ObjectStorage, maxBytes int64, log zerolog.Logger) *UploadService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &UploadService{
		optimizer: optimizer,
		storage:   storage,
		maxBytes:  maxBytes,
		now:       time.Now,
		log:       log.With().Str("component", "upload").Logger(),
	}
}

func (s *UploadService) MaxBytes() int64 {
	return s.maxBytes
}

// Store saves every file and returns their public URLs in input order. It
// stops at the first file that is too large or fails to store.
func (s *UploadService) Store(ctx context.Context, userID uint, files []UploadFile) ([]string, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	for _, f := range files {
		if int64(len(f.Data)) > s.maxBytes {
			return nil, ErrFileTooLarge
		}
	}

	urls := make([]string, 0, len(files))
	for _, f := range files {
		url, err := s.storeOne(ctx, f)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (s *UploadService) storeOne(ctx context.Context, f UploadFile) (string, error) {
	contentType := mimetype.Detect(f.Data).String()
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}

	data := f.Data
	name := sanitizeFileName(f.Name)
	if optimizable[contentType] {
		optimized, err := s.optimizer.Optimize(f.Data)
		if err != nil {
			// keep the original bytes when the image cannot be decoded
			s.log.Warn().Err(err).Str("name", f.Name).Msg("image optimization skipped")
		} else {
			data = optimized
			contentType = "image/jpeg"
			name = strings.TrimSuffix(name, filepath.Ext(name)) + ".jpg"
		}
	}

	key := ulid.MustNew(ulid.Timestamp(s.now()), rand.Reader).String() + "-" + name
	url, err := s.storage.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues(contentType, "error").Inc()
		return "", err
	}
	metrics.UploadsTotal.WithLabelValues(contentType, "ok").Inc()
	metrics.UploadBytesTotal.Add(float64(len(data)))
	return url, nil
}

func sanitizeFileName(name string) string {
	name = unsafeNameChars.ReplaceAllString(filepath.Base(name), "")
	name = strings.TrimLeft(name, ".")
	if name == "" {
		return "file"
	}
	return name
}
