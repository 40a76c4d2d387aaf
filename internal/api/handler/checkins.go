package handler

import (
	"net/http"
	"time"

	"github.com/silema/silema/internal/api/respond"
	"github.com/silema/silema/internal/cache"
)

// CheckInResponse describes one check-in.
type CheckInResponse struct {
	ID          int64     `json:"id"`
	CheckinTime time.Time `json:"checkinTime"`
}

// LastCheckInResponse carries the latest check-in, null when there is none.
type LastCheckInResponse struct {
	LastCheckin *time.Time `json:"lastCheckin"`
}

// CreateCheckIn records a check-in for the user.
// @Summary Check in
// @Description Records a check-in at the current time and resets the user's alert countdown.
// @Tags checkins
// @Produce json
// @Param userID path int true "User ID"
// @Success 201 {object} CheckInResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /users/{userID}/checkins [post]
func (h *Handler) CreateCheckIn(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	c, err := h.checkins.CheckIn(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusCreated, CheckInResponse{ID: c.ID, CheckinTime: c.Time})
}

// GetLastCheckIn returns the user's latest check-in.
// @Summary Last check-in
// @Tags checkins
// @Produce json
// @Param userID path int true "User ID"
// @Success 200 {object} LastCheckInResponse
// @Router /users/{userID}/checkins/last [get]
func (h *Handler) GetLastCheckIn(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	last, err := h.checkins.Last(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, LastCheckInResponse{LastCheckin: last})
}

// GetRecentCheckIns returns the user's latest check-ins, newest first.
// @Summary Recent check-ins
// @Tags checkins
// @Produce json
// @Param userID path int true "User ID"
// @Success 200 {object} map[string][]CheckInResponse
// @Router /users/{userID}/checkins/recent [get]
func (h *Handler) GetRecentCheckIns(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	recent, err := h.checkins.Recent(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]CheckInResponse, len(recent))
	for i, c := range recent {
		out[i] = CheckInResponse{ID: c.ID, CheckinTime: c.Time}
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string][]CheckInResponse{"checkins": out})
}

// GetCheckInStats returns streak statistics for the user.
// @Summary Check-in statistics
// @Description Consecutive check-in days (UTC), today's check-in count and the latest check-in. Supports If-None-Match.
// @Tags checkins
// @Produce json
// @Param userID path int true "User ID"
// @Success 200 {object} checkin.Stats
// @Success 304
// @Router /users/{userID}/checkins/stats [get]
func (h *Handler) GetCheckInStats(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	e, hit, err := h.checkins.StatsJSON(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	maxAge := h.cache.MaxAge(e)
	if cache.Matches(r.Header.Get("If-None-Match"), e.ETag) {
		respond.WriteNotModified(w, e.ETag, maxAge)
		return
	}
	respond.WriteCached(w, e.Data, e.ETag, maxAge, hit)
}
