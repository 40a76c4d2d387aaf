package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/silema/silema/internal/api/respond"
)

const (
	defaultAlertLimit = 20
	maxAlertLimit     = 100
)

// AlertResponse is one delivered alert.
type AlertResponse struct {
	ID        int64     `json:"id"`
	ContactID int64     `json:"contactId"`
	SentTime  time.Time `json:"sentTime"`
	Status    string    `json:"status"`
}

// ListAlerts returns the user's alert history, newest first.
// @Summary Alert history
// @Description One record per contact that was successfully notified. contactId is 0 when the contact was deleted since.
// @Tags monitor
// @Produce json
// @Param userID path int true "User ID"
// @Param limit query int false "Max records (1-100, default 20)"
// @Success 200 {object} map[string][]AlertResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /users/{userID}/alerts [get]
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	limit := defaultAlertLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxAlertLimit {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be between 1 and 100")
			return
		}
		limit = n
	}
	if _, err := h.store.GetUser(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	alerts, err := h.store.ListAlerts(r.Context(), id, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]AlertResponse, len(alerts))
	for i, a := range alerts {
		out[i] = AlertResponse{ID: a.ID, ContactID: a.ContactID, SentTime: a.SentTime, Status: a.Status}
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string][]AlertResponse{"alerts": out})
}
