package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/nathfavour/plantainbanana/internal/api/shared"
	"github.com/nathfavour/plantainbanana/internal/gate"
	"github.com/nathfavour/plantainbanana/internal/generation"
)

// MapErrorToStatusCode maps service errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Checked before the generation errors: a generator failing because its
	// run deadline fired is still a timeout.
	case errors.Is(err, gate.ErrTimeout):
		return http.StatusGatewayTimeout

	case errors.Is(err, gate.ErrGateBusy),
		errors.Is(err, gate.ErrCancelledWhileQueued):
		return http.StatusConflict

	case errors.Is(err, generation.ErrEmptyImage),
		errors.Is(err, generation.ErrEmptyPrompt):
		return http.StatusBadRequest

	case errors.Is(err, generation.ErrContentBlocked):
		return http.StatusUnprocessableEntity

	case errors.Is(err, generation.ErrNoImage),
		errors.Is(err, generation.ErrInvalidResponse),
		errors.Is(err, generation.ErrTransientFailure),
		errors.Is(err, generation.ErrGenerationFailed):
		return http.StatusBadGateway

	// The client went away, either while queued or mid-run.
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest

	default:
		return http.StatusInternalServerError
	}
}

// StatusClientClosedRequest is the nginx convention for a request the client
// abandoned before a response was ready.
const StatusClientClosedRequest = 499

// GetSafeErrorMessage returns a user-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, gate.ErrTimeout):
		return "Image generation timed out"
	case errors.Is(err, gate.ErrGateBusy):
		return "Another image is being generated"
	case errors.Is(err, gate.ErrCancelledWhileQueued):
		return "Request was cancelled while waiting in the queue"
	case errors.Is(err, generation.ErrEmptyImage):
		return "Missing image file in form data"
	case errors.Is(err, generation.ErrEmptyPrompt):
		return "Missing prompt in form data"
	case errors.Is(err, generation.ErrContentBlocked):
		return "The request was blocked by the image model's safety filters"
	case errors.Is(err, generation.ErrNoImage):
		return "The image model did not return an image"
	case errors.Is(err, generation.ErrInvalidResponse),
		errors.Is(err, generation.ErrTransientFailure),
		errors.Is(err, generation.ErrGenerationFailed):
		return "Image generation failed"
	case errors.Is(err, context.Canceled):
		return "Request cancelled"
	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the mapped status and safe message for err and logs
// the full error. Gate contention is logged at WARN.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)

	var opts []shared.ResponseOption
	if status == http.StatusConflict {
		opts = append(opts, shared.WithElevatedLogLevel())
	}

	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err, opts...)
}
