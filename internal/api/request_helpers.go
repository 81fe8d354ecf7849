package api

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nathfavour/plantainbanana/internal/gate"
	"github.com/nathfavour/plantainbanana/internal/imaging"
	"github.com/nathfavour/plantainbanana/internal/service"
)

// Form field and query parameter names.
const (
	imageField   = "image"
	promptField  = "prompt"
	modeParam    = "mode"
	timeoutParam = "timeout_ms"
	modeTry      = "try"
)

// maxTimeoutMs is the largest timeout_ms that fits in a time.Duration.
const maxTimeoutMs = math.MaxInt64 / int64(time.Millisecond)

var (
	errMissingImage   = errors.New("missing image file in form data")
	errMissingPrompt  = errors.New("missing prompt in form data")
	errBadTimeout     = errors.New("timeout_ms must be a positive integer within range")
	errUploadTooLarge = errors.New("upload exceeds size limit")
)

// readUpload parses the multipart form and reads the image field. The field
// is either a file part or a text part holding a data URL, which lets a
// client feed a previous result (a dataUrl) straight back in. The form is
// limited to maxBytes.
func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (service.Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return service.Upload{}, errUploadTooLarge
		}
		return service.Upload{}, errMissingImage
	}

	file, header, err := r.FormFile(imageField)
	if err != nil {
		return readDataURLField(r)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return service.Upload{}, fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return service.Upload{}, errMissingImage
	}

	return service.Upload{
		Name:     header.Filename,
		Data:     data,
		MIMEType: header.Header.Get("Content-Type"),
	}, nil
}

func readDataURLField(r *http.Request) (service.Upload, error) {
	raw := strings.TrimSpace(r.FormValue(imageField))
	if raw == "" {
		return service.Upload{}, errMissingImage
	}
	img, err := imaging.ParseDataURL(raw)
	if err != nil {
		return service.Upload{}, err
	}
	if len(img.Data) == 0 {
		return service.Upload{}, errMissingImage
	}
	return service.Upload{Data: img.Data, MIMEType: img.MIMEType}, nil
}

// readPrompt returns the trimmed prompt field of an already parsed form.
func readPrompt(r *http.Request) (string, error) {
	prompt := strings.TrimSpace(r.FormValue(promptField))
	if prompt == "" {
		return "", errMissingPrompt
	}
	return prompt, nil
}

// gateOptions builds per-run gate options from the query string.
func gateOptions(r *http.Request, label string) ([]gate.Option, error) {
	opts := []gate.Option{gate.WithLabel(label)}

	raw := r.URL.Query().Get(timeoutParam)
	if raw == "" {
		return opts, nil
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ms <= 0 || ms > maxTimeoutMs {
		return nil, errBadTimeout
	}
	return append(opts, gate.WithTimeout(time.Duration(ms)*time.Millisecond)), nil
}
