package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"feedbacker-service/internal/app"
	"feedbacker-service/internal/domain"
)

// HostHandler serves the host REST API.
type HostHandler struct {
	host  *app.HostService
	stats *app.StatsService
}

func NewHostHandler(host *app.HostService, stats *app.StatsService) *HostHandler {
	return &HostHandler{host: host, stats: stats}
}

// decode reads the JSON body into v and reports a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeBadRequest(w, "invalid request body")
		return false
	}
	return true
}

func (h *HostHandler) respond(w http.ResponseWriter, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Event handles GET /api/event
func (h *HostHandler) Event(w http.ResponseWriter, r *http.Request) {
	state, err := h.host.Event(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// UpdateBranding handles PUT /api/event/branding
func (h *HostHandler) UpdateBranding(w http.ResponseWriter, r *http.Request) {
	var req domain.Branding
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, h.host.UpdateBranding(r.Context(), req))
}

// UpdateIntro handles PUT /api/event/intro
func (h *HostHandler) UpdateIntro(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, h.host.UpdateIntroMessage(r.Context(), req.Message))
}

// UpdateCarousel handles PUT /api/event/carousel
func (h *HostHandler) UpdateCarousel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Seconds int `json:"seconds"`
	}
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, h.host.UpdateCarouselInterval(r.Context(), req.Seconds))
}

// SetPrizeEnabled handles PUT /api/event/prize
func (h *HostHandler) SetPrizeEnabled(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, h.host.SetPrizeEnabled(r.Context(), req.Enabled))
}

// UpdatePrizeEmailPage handles PUT /api/event/prize/email-page
func (h *HostHandler) UpdatePrizeEmailPage(w http.ResponseWriter, r *http.Request) {
	var req domain.PrizePage
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, h.host.UpdatePrizeEmailPage(r.Context(), req))
}

// UpdatePrizeClaimPage handles PUT /api/event/prize/claim-page
func (h *HostHandler) UpdatePrizeClaimPage(w http.ResponseWriter, r *http.Request) {
	var req domain.PrizePage
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, h.host.UpdatePrizeClaimPage(r.Context(), req))
}

// Validate handles GET /api/event/validation
func (h *HostHandler) Validate(w http.ResponseWriter, r *http.Request) {
	errs, err := h.host.ValidateEvent(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if errs == nil {
		errs = domain.ValidationErrors{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": len(errs) == 0, "errors": errs})
}

// Publish handles POST /api/event/publish
func (h *HostHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.host.Publish(r.Context()))
}

// Unpublish handles POST /api/event/unpublish
func (h *HostHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.host.Unpublish(r.Context()))
}

// AddObject handles POST /api/objects
func (h *HostHandler) AddObject(w http.ResponseWriter, r *http.Request) {
	var req app.ObjectInput
	if !decode(w, r, &req) {
		return
	}
	obj, err := h.host.AddObject(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, obj)
}

// UpdateObject handles PATCH /api/objects/{id}
func (h *HostHandler) UpdateObject(w http.ResponseWriter, r *http.Request) {
	var req app.ObjectPatch
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, h.host.UpdateObject(r.Context(), mux.Vars(r)["id"], req))
}

// DeleteObject handles DELETE /api/objects/{id}
func (h *HostHandler) DeleteObject(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.host.DeleteObject(r.Context(), mux.Vars(r)["id"]))
}

// AddQuestion handles POST /api/objects/{id}/questions
func (h *HostHandler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	var req app.QuestionInput
	if !decode(w, r, &req) {
		return
	}
	q, err := h.host.AddQuestion(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

// UpdateQuestion handles PATCH /api/questions/{id}
func (h *HostHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	var req app.QuestionPatch
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, h.host.UpdateQuestion(r.Context(), mux.Vars(r)["id"], req))
}

// DeleteQuestion handles DELETE /api/questions/{id}
func (h *HostHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.host.DeleteQuestion(r.Context(), mux.Vars(r)["id"]))
}

// Stats handles GET /api/stats?objectId=
func (h *HostHandler) Stats(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.stats.Dashboard(r.Context(), r.URL.Query().Get("objectId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

// ResetResponses handles POST /api/responses/reset
func (h *HostHandler) ResetResponses(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Confirm bool `json:"confirm"`
	}
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, h.host.ResetResponses(r.Context(), req.Confirm))
}

// PrizeSubmissions handles GET /api/prize/submissions
func (h *HostHandler) PrizeSubmissions(w http.ResponseWriter, r *http.Request) {
	submissions, err := h.host.PrizeSubmissions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submissions)
}

// ClearPrizeSubmissions handles POST /api/prize/submissions/reset
func (h *HostHandler) ClearPrizeSubmissions(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.host.ClearPrizeSubmissions(r.Context()))
}
