package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/media-catalog/internal/apperror"
	"github.com/sakif/media-catalog/internal/repository"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

// multipartMemory is how much of a multipart form is kept in memory
// before parts spill to temporary files.
const multipartMemory = 8 << 20

// payload is a decoded request body: loose fields plus an optional file.
type payload struct {
	fields repository.Fields
	file   *multipart.FileHeader
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperror.ValidationFailed("body", "Invalid JSON body")
	}
	return nil
}

// decodeFields reads a JSON object body as repository fields.
// Numbers stay json.Number so the repository can check integer columns.
func decodeFields(w http.ResponseWriter, r *http.Request) (repository.Fields, error) {
	var fields repository.Fields
	if err := decodeJSON(w, r, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = repository.Fields{}
	}
	return fields, nil
}

// readPayload accepts either a JSON object or a multipart form whose
// optional "file" part is an upload. Form values arrive as strings; the
// first value of each key wins.
func readPayload(w http.ResponseWriter, r *http.Request, maxUpload int64) (*payload, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		fields, err := decodeFields(w, r)
		if err != nil {
			return nil, err
		}
		return &payload{fields: fields}, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUpload+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperror.ValidationFailed("file", "File is too large")
		}
		return nil, apperror.ValidationFailed("body", "Invalid multipart form")
	}

	p := &payload{fields: repository.Fields{}}
	for key, values := range r.MultipartForm.Value {
		if len(values) > 0 {
			p.fields[key] = values[0]
		}
	}
	if files := r.MultipartForm.File["file"]; len(files) > 0 {
		p.file = files[0]
	}
	return p, nil
}

// pathParam returns a decoded URL parameter. chi matches on the raw path
// whenever the request carried escapes that differ from Go's default
// encoding ("%40", "%2F"), and then hands back the still-escaped segment.
func pathParam(r *http.Request, name string) (string, error) {
	v := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return v, nil
	}
	return url.PathUnescape(v)
}
