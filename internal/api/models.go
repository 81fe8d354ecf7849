package api

import (
	"github.com/nathfavour/plantainbanana/internal/events"
	"github.com/nathfavour/plantainbanana/internal/gate"
)

// GenerateResponse is the body of a successful POST /api/generate.
type GenerateResponse struct {
	// Data is the base64-encoded image.
	Data     string `json:"data"`
	MIMEType string `json:"mimeType"`
}

// SmileResponse is the body of a successful POST /api/actions/smile.
type SmileResponse struct {
	DataURL  string `json:"dataUrl"`
	Filename string `json:"filename"`
}

// GateStatusResponse is the body of GET /api/gate.
type GateStatusResponse struct {
	gate.Status
	Stats *events.Stats `json:"stats,omitempty"`
}

// CancelRequest is the optional body of POST /api/gate/cancel.
type CancelRequest struct {
	Reason string `json:"reason" validate:"max=200"`
}

// CancelResponse is the body of POST /api/gate/cancel.
type CancelResponse struct {
	Cancelled int `json:"cancelled"`
}
