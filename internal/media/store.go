// Package media stores uploaded album covers and song files on local disk
// and serves them back under /media/.
//
// LAYOUT:
//
//	<root>/<ownerID>/<albumID>/<uuid><ext>
//	<baseURL>/<ownerID>/<albumID>/<uuid><ext>   (the URL saved on the row)
//
// Each upload gets a fresh random name, so a new cover never overwrites the
// bytes an old URL points at. The content type is sniffed from the first
// bytes of the file; the client's Content-Type header is not trusted.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/sakif/media-catalog/internal/apperror"
)

// Category is the MIME type prefix an upload must match.
type Category string

const (
	Image Category = "image/"
	Audio Category = "audio/"
)

// DefaultMaxBytes caps uploads when no limit is configured.
const DefaultMaxBytes int64 = 20 << 20

const sniffLen = 512

// Store writes uploads below root and renders their public URLs.
type Store struct {
	root     string
	baseURL  string
	maxBytes int64
	logger   *slog.Logger
}

// NewStore creates root if needed. maxBytes <= 0 means DefaultMaxBytes.
func NewStore(root, baseURL string, maxBytes int64, logger *slog.Logger) (*Store, error) {
	if root == "" {
		return nil, errors.New("media: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("media: creating root %s: %w", root, err)
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Store{
		root:     root,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
		logger:   logger,
	}, nil
}

// MaxBytes is the largest accepted upload.
func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

// Upload is one file taken from a multipart form.
type Upload struct {
	Filename string
	Body     io.Reader
}

// Save stores up under <root>/<ownerID>/<albumID>/ and returns its URL.
// It fails with a validation error when the file is empty, too large, or
// not of the wanted category.
func (s *Store) Save(ownerID, albumID string, want Category, up Upload) (string, error) {
	if !safeSegment(ownerID) || !safeSegment(albumID) {
		return "", apperror.ValidationFailed("file", "Invalid upload directory")
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(up.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("media: reading upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return "", apperror.ValidationFailed("file", "File is empty")
	}

	mtype := mimetype.Detect(head)
	if !strings.HasPrefix(mtype.String(), string(want)) {
		return "", apperror.ValidationFailed("file",
			fmt.Sprintf("Unsupported file type %s, expected %s*", normalize(mtype.String()), want))
	}

	dir := filepath.Join(s.root, ownerID, albumID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("media: creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".incoming-*")
	if err != nil {
		return "", fmt.Errorf("media: creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmpPath != "" {
			_ = os.Remove(tmpPath)
		}
	}()

	body := io.MultiReader(bytes.NewReader(head), up.Body)
	written, err := io.Copy(tmp, io.LimitReader(body, s.maxBytes+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("media: writing upload: %w", err)
	}
	if written > s.maxBytes {
		return "", apperror.ValidationFailed("file",
			fmt.Sprintf("File is too large, the limit is %d bytes", s.maxBytes))
	}

	name := uuid.NewString() + extension(up.Filename, mtype)
	if err := os.Rename(tmpPath, filepath.Join(dir, name)); err != nil {
		return "", fmt.Errorf("media: storing upload: %w", err)
	}
	tmpPath = ""

	url := s.baseURL + "/" + path.Join(ownerID, albumID, name)
	s.logger.Info("media stored",
		slog.String("url", url),
		slog.String("mime", mtype.String()),
		slog.Int64("bytes", written),
	)
	return url, nil
}

// Remove deletes the file a URL returned by Save points at. URLs outside
// the store are ignored.
func (s *Store) Remove(url string) error {
	rel, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok {
		return nil
	}
	segments := strings.Split(rel, "/")
	if len(segments) != 3 {
		return nil
	}
	for _, seg := range segments {
		if !safeSegment(seg) {
			return nil
		}
	}

	err := os.Remove(filepath.Join(s.root, filepath.Join(segments...)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("media: removing %s: %w", rel, err)
	}
	s.logger.Info("media removed", slog.String("url", url))
	return nil
}

// Handler serves stored files. Mount it with the URL prefix stripped.
// Directories answer 404 so one owner's uploads cannot be listed.
func (s *Store) Handler() http.Handler {
	return http.FileServer(filesOnly{http.Dir(s.root)})
}

// filesOnly hides directories from http.FileServer.
type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}

// extension prefers the client's extension and falls back to the one of
// the detected type.
func extension(filename string, mtype *mimetype.MIME) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != "" && len(ext) <= 10 && !strings.ContainsAny(ext, `/\`) {
		return ext
	}
	return mtype.Extension()
}

func normalize(raw string) string {
	if i := strings.Index(raw, ";"); i >= 0 {
		raw = raw[:i]
	}
	return strings.ToLower(strings.TrimSpace(raw))
}

func safeSegment(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}
