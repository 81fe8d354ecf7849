package api

import (
	"net/http"

	"github.com/nathfavour/plantainbanana/internal/api/shared"
	"github.com/nathfavour/plantainbanana/internal/events"
	"github.com/nathfavour/plantainbanana/internal/service"
)

// GateHandler exposes the generation gate's state and queue control.
type GateHandler struct {
	images service.ImageService
	stats  *events.StatsHandler
}

// NewGateHandler creates a new GateHandler. stats may be nil, in which case
// status responses carry no statistics.
func NewGateHandler(images service.ImageService, stats *events.StatsHandler) *GateHandler {
	return &GateHandler{
		images: images,
		stats:  stats,
	}
}

// Status handles GET /api/gate requests.
func (h *GateHandler) Status(w http.ResponseWriter, r *http.Request) {
	resp := GateStatusResponse{Status: h.images.Status()}
	if h.stats != nil {
		stats := h.stats.Stats()
		resp.Stats = &stats
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Cancel handles POST /api/gate/cancel requests. Queued generations fail
// with 409; the running one is left alone.
func (h *GateHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req CancelRequest
	if err := shared.DecodeOptionalJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid reason: too long")
		return
	}

	cancelled := h.images.CancelQueued(req.Reason)
	shared.RespondWithJSON(w, r, http.StatusOK, CancelResponse{Cancelled: cancelled})
}
