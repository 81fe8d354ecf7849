package generation

import "errors"

// Common errors returned by generators
var (
	// ErrGenerationFailed is returned when image generation fails for any general reason
	ErrGenerationFailed = errors.New("failed to generate image")

	// ErrInvalidResponse is returned when the model response cannot be interpreted
	ErrInvalidResponse = errors.New("invalid response from image model")

	// ErrNoImage is returned when the model answered without an image part
	ErrNoImage = errors.New("model did not return an image")

	// ErrContentBlocked is returned when the model blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by image model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error during image generation")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrEmptyImage is returned when a request carries no image data
	ErrEmptyImage = errors.New("image data cannot be empty")

	// ErrEmptyPrompt is returned when a request carries a blank prompt
	ErrEmptyPrompt = errors.New("prompt cannot be empty")
)
