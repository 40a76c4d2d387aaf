package handler

import (
	"context"
	"net/http"

	"github.com/silema/silema/internal/api/respond"
)

// RunMonitor runs one monitor cycle synchronously.
// @Summary Run a monitor cycle now
// @Description Evaluates every monitored user once and alerts overdue users' contacts. Returns 409 if a cycle is already running.
// @Tags monitor
// @Produce json
// @Success 200 {object} monitor.CycleReport
// @Failure 409 {object} respond.ErrorResponse
// @Router /monitor/run [post]
func (h *Handler) RunMonitor(w http.ResponseWriter, r *http.Request) {
	// The cycle outlives a disconnecting client.
	report, err := h.monitor.RunCycle(context.WithoutCancel(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, report)
}

// SendTestAlert sends a test alert to every contact of a user.
// @Summary Send a test alert
// @Description Sends the alert the user's contacts would receive, ignoring threshold and cooldown. Writes no alert history. Returns 502 when no contact could be reached.
// @Tags monitor
// @Produce json
// @Param userID path int true "User ID"
// @Success 200 {object} monitor.TestAlertReport
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Router /users/{userID}/test-alert [post]
func (h *Handler) SendTestAlert(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	report, err := h.monitor.SendTestAlert(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if report.SuccessCount == 0 {
		var detail string
		for _, rc := range report.Recipients {
			if rc.Error != "" {
				detail = rc.Error
				break
			}
		}
		h.logger.Warn("Test alert failed for every contact", "user_id", id, "failed", report.FailCount)
		respond.WriteErrorDetail(w, http.StatusBadGateway, "SEND_FAILED", "Test alert could not be delivered to any contact", detail)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, report)
}
