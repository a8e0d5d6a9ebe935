package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/skynolimit/topscores/internal/api/respond"
	"github.com/skynolimit/topscores/internal/match"
)

// DebugAllMatches dumps every tracked match, live and predicted.
// @Summary All tracked matches
// @Tags debug
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/debug/matches/all [get]
func (h *Handler) DebugAllMatches(w http.ResponseWriter, r *http.Request) {
	live := h.live.All()
	match.Sort(live, true)
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"matches":          live,
		"predictedMatches": h.engine.Store().All(),
	})
}

// DebugMatch returns one live match by ID.
// @Summary One tracked match
// @Tags debug
// @Produce json
// @Param id path string true "Match ID"
// @Success 200 {object} match.Match
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/debug/match/{id} [get]
func (h *Handler) DebugMatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m := h.live.Get(id)
	if m == nil {
		respond.WriteError(w, http.StatusNotFound, "match not found: "+id)
		return
	}
	respond.WriteJSON(w, http.StatusOK, m)
}

// DebugMatchInterested returns the devices interested in a match.
// @Summary Interested devices for a match
// @Tags debug
// @Produce json
// @Param id path string true "Match ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/debug/match/{id}/interested [get]
func (h *Handler) DebugMatchInterested(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"matchId":         id,
		"interestedUsers": h.live.InterestedUsers(id),
	})
}

// DebugNotifications lists recent notification envelopes.
// @Summary Recent notification envelopes
// @Tags debug
// @Produce json
// @Param limit query int false "Max envelopes to return (default 100)"
// @Success 200 {array} notify.Envelope
// @Router /api/v1/debug/notifications [get]
func (h *Handler) DebugNotifications(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 100
	}
	envelopes, err := h.envelopes.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("Listing envelopes failed", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "could not list notifications")
		return
	}
	respond.WriteJSON(w, http.StatusOK, envelopes)
}

// DebugTestNotification sends a test push to one device.
// @Summary Send a test notification
// @Tags debug
// @Produce json
// @Param deviceId path string true "Device ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/debug/notifications/test/user/{deviceId} [post]
func (h *Handler) DebugTestNotification(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceId")
	sent := h.dispatcher.SendTest(r.Context(), deviceID)
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"success": sent,
	})
}

// DebugTopTeams returns the current top-teams list.
// @Summary Top teams
// @Tags debug
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/debug/teams/top [get]
func (h *Handler) DebugTopTeams(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"topTeams":  h.registry.TopTeams(),
		"maxRating": h.registry.MaxRating(),
	})
}

// DebugTeams returns the known team lists by category.
// @Summary Known teams
// @Tags debug
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/debug/teams [get]
func (h *Handler) DebugTeams(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"club":          h.registry.Teams("club"),
		"international": h.registry.Teams("international"),
	})
}

// DebugParseInfo returns the per-date feed refresh bookkeeping.
// @Summary Feed parse bookkeeping
// @Tags debug
// @Produce json
// @Success 200 {object} map[string]feed.DateParseInfo
// @Router /api/v1/debug/parseInfo [get]
func (h *Handler) DebugParseInfo(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, h.refresher.ParseInfo())
}
