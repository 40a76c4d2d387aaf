package handler

import (
	"encoding/json"
	"net/http"

	"github.com/silema/silema/internal/api/respond"
	"github.com/silema/silema/internal/domain"
)

// SettingsResponse is a user's monitoring preferences.
type SettingsResponse struct {
	AlertThresholdMinutes int  `json:"alertThresholdMinutes"`
	EnableEmailAlert      bool `json:"enableEmailAlert"`
	EnableSMSAlert        bool `json:"enableSmsAlert"`
}

// UpdateSettingsRequest is a partial update; omitted fields keep their value.
type UpdateSettingsRequest struct {
	AlertThresholdMinutes *int  `json:"alertThresholdMinutes"`
	EnableEmailAlert      *bool `json:"enableEmailAlert"`
	EnableSMSAlert        *bool `json:"enableSmsAlert"`
}

// UpdateSMTPRequest replaces the user's mail credentials.
type UpdateSMTPRequest struct {
	Host     string `json:"smtpHost"`
	Port     int    `json:"smtpPort"`
	Username string `json:"smtpUsername"`
	Password string `json:"smtpPassword"`
}

func settingsResponse(s domain.Settings) SettingsResponse {
	return SettingsResponse{
		AlertThresholdMinutes: s.Threshold(),
		EnableEmailAlert:      s.EnableEmailAlert,
		EnableSMSAlert:        s.EnableSMSAlert,
	}
}

// GetSettings returns the user's monitoring preferences.
// @Summary Get settings
// @Tags settings
// @Produce json
// @Param userID path int true "User ID"
// @Success 200 {object} SettingsResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /users/{userID}/settings [get]
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	u, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, settingsResponse(u.Settings))
}

// UpdateSettings applies a partial settings update.
// @Summary Update settings
// @Description Threshold must be between 1 minute and 30 days. SMS alerts are stored but not sent.
// @Tags settings
// @Accept json
// @Produce json
// @Param userID path int true "User ID"
// @Param body body UpdateSettingsRequest true "Fields to change"
// @Success 200 {object} SettingsResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /users/{userID}/settings [put]
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	var req UpdateSettingsRequest
	if !decode(w, r, &req) {
		return
	}

	u, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	s := u.Settings
	if req.AlertThresholdMinutes != nil {
		if err := domain.ValidateThreshold(*req.AlertThresholdMinutes); err != nil {
			h.writeError(w, r, err)
			return
		}
		s.AlertThresholdMinutes = *req.AlertThresholdMinutes
	}
	if req.EnableEmailAlert != nil {
		s.EnableEmailAlert = *req.EnableEmailAlert
	}
	if req.EnableSMSAlert != nil {
		s.EnableSMSAlert = *req.EnableSMSAlert
	}
	s.AlertThresholdMinutes = s.Threshold()

	if err := h.store.UpdateSettings(r.Context(), id, s); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.Info("Settings updated", "user_id", id, "threshold_minutes", s.AlertThresholdMinutes,
		"email_alert", s.EnableEmailAlert)
	respond.WriteJSONObject(w, http.StatusOK, settingsResponse(s))
}

// UpdateSMTP replaces the user's SMTP credentials.
// @Summary Update SMTP credentials
// @Description Credentials used to send this user's alerts. Port 465 uses implicit TLS, other ports STARTTLS.
// @Tags settings
// @Accept json
// @Produce json
// @Param userID path int true "User ID"
// @Param body body UpdateSMTPRequest true "SMTP credentials"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /users/{userID}/smtp [put]
func (h *Handler) UpdateSMTP(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	var req UpdateSMTPRequest
	if !decode(w, r, &req) {
		return
	}
	cfg := domain.SMTPConfig{Host: req.Host, Port: req.Port, Username: req.Username, Password: req.Password}
	if err := domain.ValidateSMTP(cfg); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.store.UpdateSMTP(r.Context(), id, cfg); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.Info("SMTP credentials updated", "user_id", id, "host", cfg.Host, "port", cfg.Port)
	respond.WriteJSONObject(w, http.StatusOK, MessageResponse{Message: "SMTP configuration updated"})
}

// decode reads a JSON body, writing a 400 on malformed input.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON", err.Error())
		return false
	}
	return true
}
