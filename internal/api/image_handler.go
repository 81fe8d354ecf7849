package api

import (
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nathfavour/plantainbanana/internal/api/shared"
	"github.com/nathfavour/plantainbanana/internal/generation"
	"github.com/nathfavour/plantainbanana/internal/imaging"
	"github.com/nathfavour/plantainbanana/internal/service"
)

// ImageHandler handles the image editing endpoints.
type ImageHandler struct {
	images         service.ImageService
	maxUploadBytes int64
}

// NewImageHandler creates a new ImageHandler. Uploads larger than
// maxUploadBytes are rejected with 413.
func NewImageHandler(images service.ImageService, maxUploadBytes int64) *ImageHandler {
	return &ImageHandler{
		images:         images,
		maxUploadBytes: maxUploadBytes,
	}
}

// Generate handles POST /api/generate requests.
//
// With ?mode=try the request fails with 409 instead of queueing when another
// generation is running. ?timeout_ms overrides the run deadline.
func (h *ImageHandler) Generate(w http.ResponseWriter, r *http.Request) {
	upload, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	prompt, err := readPrompt(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing prompt in form data")
		return
	}

	opts, err := gateOptions(r, "generate")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid timeout_ms: must be a positive integer")
		return
	}

	req := generation.EditRequest{
		Image:    upload.Data,
		MIMEType: imaging.DetectMIME(upload.Data, upload.MIMEType),
		Prompt:   prompt,
	}

	var img *generation.Image
	if r.URL.Query().Get(modeParam) == modeTry {
		img, err = h.images.TryGenerate(r.Context(), req, opts...)
	} else {
		img, err = h.images.Generate(r.Context(), req, opts...)
	}
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, GenerateResponse{
		Data:     base64.StdEncoding.EncodeToString(img.Data),
		MIMEType: img.MIMEType,
	})
}

// Smile handles POST /api/actions/smile requests.
func (h *ImageHandler) Smile(w http.ResponseWriter, r *http.Request) {
	upload, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	opts, err := gateOptions(r, "auto-smile")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid timeout_ms: must be a positive integer")
		return
	}

	result, err := h.images.AutoSmile(r.Context(), upload, opts...)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	slog.DebugContext(r.Context(), "auto-smile complete",
		"trace_id", shared.GetTraceID(r.Context()),
		"filename", result.Filename,
		"bytes", len(result.Image.Data))

	shared.RespondWithJSON(w, r, http.StatusOK, SmileResponse{
		DataURL:  result.DataURL,
		Filename: result.Filename,
	})
}

// readUpload reads the image field and writes the error response itself
// when it fails.
func (h *ImageHandler) readUpload(w http.ResponseWriter, r *http.Request) (service.Upload, bool) {
	upload, err := readUpload(w, r, h.maxUploadBytes)
	switch {
	case err == nil:
		return upload, true
	case errors.Is(err, errUploadTooLarge):
		shared.RespondWithError(w, r, http.StatusRequestEntityTooLarge, "Image exceeds the upload size limit")
	case errors.Is(err, imaging.ErrInvalidDataURL):
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid image data URL")
	case errors.Is(err, errMissingImage):
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing image file in form data")
	default:
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Failed to read image file", err)
	}
	return service.Upload{}, false
}
