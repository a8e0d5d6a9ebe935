package handler

import (
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/skynolimit/topscores/internal/api/respond"
	"github.com/skynolimit/topscores/internal/match"
	"github.com/skynolimit/topscores/internal/profile"
)

// GetUserFixtures returns the upcoming and in-play matches of interest to a
// device, soonest first.
// @Summary Fixtures of interest for a device
// @Tags user
// @Produce json
// @Param deviceId path string true "Device ID"
// @Success 200 {array} match.Match
// @Router /api/v1/user/{deviceId}/matches/fixtures [get]
func (h *Handler) GetUserFixtures(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceId")
	matches := h.matchesForUser(deviceID, false)
	match.Sort(matches, true)
	respond.WriteJSON(w, http.StatusOK, matches)
}

// GetUserResults returns the finished matches of interest to a device, most
// recent first.
// @Summary Results of interest for a device
// @Tags user
// @Produce json
// @Param deviceId path string true "Device ID"
// @Success 200 {array} match.Match
// @Router /api/v1/user/{deviceId}/matches/results [get]
func (h *Handler) GetUserResults(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceId")
	matches := h.matchesForUser(deviceID, true)
	match.Sort(matches, false)
	respond.WriteJSON(w, http.StatusOK, matches)
}

func (h *Handler) matchesForUser(deviceID string, finished bool) []*match.Match {
	out := []*match.Match{}
	for _, m := range h.live.All() {
		if m.Finished != finished {
			continue
		}
		if slices.Contains(m.InterestedUsers, deviceID) {
			out = append(out, m)
		}
	}
	return out
}

// GetUserPreferences returns the stored preferences for a device.
// @Summary Preferences for a device
// @Tags user
// @Produce json
// @Param deviceId path string true "Device ID"
// @Success 200 {object} profile.Profile
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/user/{deviceId}/preferences [get]
func (h *Handler) GetUserPreferences(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceId")
	p := h.profiles.Get(deviceID)
	if p == nil {
		respond.WriteError(w, http.StatusNotFound, "no preferences for device "+deviceID)
		return
	}
	respond.WriteJSON(w, http.StatusOK, p)
}

// PutUserPreferences stores a device's preferences. Interest recomputation
// runs through the cache's change subscription, so the user's fixture and
// notification views update on the next read.
// @Summary Update preferences for a device
// @Tags user
// @Accept json
// @Produce json
// @Param deviceId path string true "Device ID"
// @Param preferences body profile.Profile true "Preferences"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/user/{deviceId}/preferences [put]
func (h *Handler) PutUserPreferences(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceId")

	var p profile.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "invalid preferences payload")
		return
	}
	p.DeviceID = deviceID
	p.LastUpdated = time.Now().UTC()

	if err := h.profiles.Put(r.Context(), &p); err != nil {
		h.logger.Error("Saving preferences failed", "deviceId", deviceID, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "could not save preferences")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"success": true})
}
