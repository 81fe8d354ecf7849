package imaging

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/nathfavour/plantainbanana/internal/generation"
)

// DefaultMIMEType is used when neither the upload nor the content reveals a type.
const DefaultMIMEType = "application/octet-stream"

// ErrInvalidDataURL is returned for strings that are not base64 data URLs.
var ErrInvalidDataURL = errors.New("invalid data URL")

// EncodeDataURL renders img as "data:<mime>;base64,<data>".
func EncodeDataURL(img generation.Image) string {
	return "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// ParseDataURL decodes a base64 data URL produced by EncodeDataURL.
func ParseDataURL(s string) (generation.Image, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return generation.Image{}, fmt.Errorf("%w: missing data: scheme", ErrInvalidDataURL)
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return generation.Image{}, fmt.Errorf("%w: missing payload separator", ErrInvalidDataURL)
	}
	mimeType, ok := strings.CutSuffix(header, ";base64")
	if !ok || mimeType == "" {
		return generation.Image{}, fmt.Errorf("%w: expected <mime>;base64 header", ErrInvalidDataURL)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return generation.Image{}, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	return generation.Image{Data: data, MIMEType: mimeType}, nil
}

// DetectMIME returns the declared type when present, otherwise the type
// sniffed from data, otherwise DefaultMIMEType.
func DetectMIME(data []byte, declared string) string {
	if declared != "" && declared != DefaultMIMEType {
		return declared
	}
	if len(data) > 0 {
		if detected := mimetype.Detect(data); detected != nil && !detected.Is(DefaultMIMEType) {
			return detected.String()
		}
	}
	return DefaultMIMEType
}

// DerivedFilename names the result of applying action to the named upload,
// e.g. "smile-portrait.png".
func DerivedFilename(action, name string) string {
	if name == "" {
		name = "image"
	}
	return action + "-" + name
}
