package generation

import (
	"context"
	"strings"
)

// EditRequest asks the model to transform an image according to a prompt.
type EditRequest struct {
	Image    []byte
	MIMEType string
	Prompt   string
}

// Validate checks that the request carries an image and a non-blank prompt.
func (r EditRequest) Validate() error {
	if len(r.Image) == 0 {
		return ErrEmptyImage
	}
	if strings.TrimSpace(r.Prompt) == "" {
		return ErrEmptyPrompt
	}
	return nil
}

// Image is binary image data with its media type.
type Image struct {
	Data     []byte
	MIMEType string
}

// Generator defines the interface for producing edited images.
type Generator interface {
	// EditImage sends the image and prompt to the model and returns the first
	// image it produces. Implementations must honor ctx cancellation, which
	// is how a timed-out gate run stops an in-flight request.
	EditImage(ctx context.Context, req EditRequest) (*Image, error)
}
