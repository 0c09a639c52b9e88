package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_PutWritesFileAndReturnsURL(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "/uploads/", zerolog.Nop())
	require.NoError(t, err)

	url, err := s.Put(context.Background(), "abc-photo.jpg", strings.NewReader("data"), 4, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/abc-photo.jpg", url)

	got, err := os.ReadFile(filepath.Join(dir, "abc-photo.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(got))
	assert.NoError(t, s.Health(context.Background()))
}

func TestLocalStorage_RejectsEscapingKeys(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "/uploads", zerolog.Nop())
	require.NoError(t, err)

	_, err = s.Put(context.Background(), "../evil.txt", strings.NewReader("x"), 1, "text/plain")
	assert.Error(t, err)
}
