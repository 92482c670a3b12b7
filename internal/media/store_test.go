package media

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/media-catalog/internal/apperror"
)

var (
	pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)
	mp3Bytes = append([]byte("ID3\x03\x00\x00\x00\x00\x00\x00"), make([]byte, 64)...)
)

func newTestStore(t *testing.T, maxBytes int64) (*Store, string) {
	t.Helper()
	root := t.TempDir()
	s, err := NewStore(root, "http://localhost:8080/media/", maxBytes, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return s, root
}

func TestSave_Image(t *testing.T) {
	s, root := newTestStore(t, 0)

	url, err := s.Save("user-1", "album-1", Image, Upload{Filename: "Cover.PNG", Body: bytes.NewReader(pngBytes)})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/media/user-1/album-1/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)

	name := url[strings.LastIndex(url, "/")+1:]
	stored, err := os.ReadFile(filepath.Join(root, "user-1", "album-1", name))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, stored)
}

func TestSave_AudioWithoutExtension(t *testing.T) {
	s, _ := newTestStore(t, 0)

	url, err := s.Save("user-1", "album-1", Audio, Upload{Filename: "track", Body: bytes.NewReader(mp3Bytes)})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(url, ".mp3"), url)
}

func TestSave_Rejections(t *testing.T) {
	s, root := newTestStore(t, 100)

	tests := []struct {
		name    string
		owner   string
		want    Category
		body    []byte
		message string
	}{
		{"wrong category", "user-1", Audio, pngBytes, "Unsupported file type image/png"},
		{"plain text", "user-1", Image, []byte("just some text"), "Unsupported file type text/plain"},
		{"empty", "user-1", Image, nil, "File is empty"},
		{"too large", "user-1", Image, append(append([]byte{}, pngBytes...), make([]byte, 200)...), "File is too large"},
		{"path traversal", "..", Image, pngBytes, "Invalid upload directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Save(tt.owner, "album-1", tt.want, Upload{Filename: "f.bin", Body: bytes.NewReader(tt.body)})
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperror.ErrValidation), "error %v is not a validation error", err)
			assert.Contains(t, apperror.Message(err), tt.message)
		})
	}

	// Rejected uploads leave no files behind.
	entries, _ := os.ReadDir(filepath.Join(root, "user-1", "album-1"))
	assert.Empty(t, entries)
}

func TestHandler_ServesStoredFile(t *testing.T) {
	s, _ := newTestStore(t, 0)
	url, err := s.Save("u", "a", Image, Upload{Filename: "c.png", Body: bytes.NewReader(pngBytes)})
	require.NoError(t, err)

	rel := strings.TrimPrefix(url, "http://localhost:8080/media")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, rel, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pngBytes, rec.Body.Bytes())
}

func TestHandler_HidesDirectories(t *testing.T) {
	s, _ := newTestStore(t, 0)
	_, err := s.Save("u", "a", Image, Upload{Filename: "c.png", Body: bytes.NewReader(pngBytes)})
	require.NoError(t, err)

	for _, dir := range []string{"/", "/u/", "/u/a/", "/u/a"} {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, dir, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, dir)
		assert.NotContains(t, rec.Body.String(), ".png", dir)
	}
}

func TestRemove(t *testing.T) {
	s, root := newTestStore(t, 0)
	url, err := s.Save("u", "a", Image, Upload{Filename: "c.png", Body: bytes.NewReader(pngBytes)})
	require.NoError(t, err)

	require.NoError(t, s.Remove(url))
	entries, err := os.ReadDir(filepath.Join(root, "u", "a"))
	require.NoError(t, err)
	assert.Empty(t, entries)

	// already gone, foreign and malformed URLs are no-ops
	assert.NoError(t, s.Remove(url))
	assert.NoError(t, s.Remove("https://elsewhere.example/u/a/c.png"))
	assert.NoError(t, s.Remove("http://localhost:8080/media/../a/c.png"))
}
