package handler

import (
	"encoding/json"
	"net/http"

	"github.com/skynolimit/topscores/internal/api/respond"
)

// predictorRequest is the payload the app sends for predictor operations.
type predictorRequest struct {
	MatchID string `json:"matchId"`
	Device  struct {
		ID string `json:"id"`
	} `json:"device"`
}

// PredictorInit starts a simulation of a fixture for a device.
// @Summary Start a predicted match
// @Tags predictor
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/predictor/init [post]
func (h *Handler) PredictorInit(w http.ResponseWriter, r *http.Request) {
	req, ok := decodePredictorRequest(w, r)
	if !ok {
		return
	}
	if err := h.engine.Init(r.Context(), req.Device.ID, req.MatchID); err != nil {
		h.logger.Error("Predictor init failed",
			"matchId", req.MatchID, "deviceId", req.Device.ID, "error", err)
		respond.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"success": true})
}

// PredictorPause pauses a running simulation.
// @Summary Pause a predicted match
// @Tags predictor
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/predictor/pause [post]
func (h *Handler) PredictorPause(w http.ResponseWriter, r *http.Request) {
	req, ok := decodePredictorRequest(w, r)
	if !ok {
		return
	}
	if err := h.engine.Pause(r.Context(), req.Device.ID, req.MatchID); err != nil {
		respond.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"success": true})
}

// PredictorResume resumes a paused simulation.
// @Summary Resume a predicted match
// @Tags predictor
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/predictor/resume [post]
func (h *Handler) PredictorResume(w http.ResponseWriter, r *http.Request) {
	req, ok := decodePredictorRequest(w, r)
	if !ok {
		return
	}
	if err := h.engine.Resume(r.Context(), req.Device.ID, req.MatchID); err != nil {
		respond.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"success": true})
}

func decodePredictorRequest(w http.ResponseWriter, r *http.Request) (predictorRequest, bool) {
	var req predictorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "invalid predictor payload")
		return req, false
	}
	if req.MatchID == "" || req.Device.ID == "" {
		respond.WriteError(w, http.StatusBadRequest, "matchId and device.id are required")
		return req, false
	}
	return req, true
}
