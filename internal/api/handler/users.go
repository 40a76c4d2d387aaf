package handler

import (
	"net/http"
	"time"

	"github.com/silema/silema/internal/api/respond"
	"github.com/silema/silema/internal/domain"
)

// UserResponse is a user's profile. The SMTP password is never returned.
type UserResponse struct {
	ID             int64            `json:"id"`
	Email          string           `json:"email"`
	Name           string           `json:"name"`
	CreatedAt      time.Time        `json:"createdAt"`
	Settings       SettingsResponse `json:"settings"`
	SMTPConfigured bool             `json:"smtpConfigured"`
	SMTPHost       string           `json:"smtpHost"`
	SMTPPort       int              `json:"smtpPort"`
	SMTPUsername   string           `json:"smtpUsername"`
	ContactCount   int              `json:"contactCount"`
}

func userResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		CreatedAt:      u.CreatedAt,
		Settings:       settingsResponse(u.Settings),
		SMTPConfigured: u.SMTP.Complete(),
		SMTPHost:       u.SMTP.Host,
		SMTPPort:       u.SMTP.Port,
		SMTPUsername:   u.SMTP.Username,
		ContactCount:   len(u.Contacts),
	}
}

// GetUser returns the user's profile.
// @Summary Get user profile
// @Tags users
// @Produce json
// @Param userID path int true "User ID"
// @Success 200 {object} UserResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /users/{userID} [get]
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	u, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, userResponse(u))
}

// DeleteUser deletes the account and stops monitoring it.
// @Summary Delete user
// @Description Removes the user with settings, contacts, check-ins and alert history. Monitoring stops immediately.
// @Tags users
// @Produce json
// @Param userID path int true "User ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /users/{userID} [delete]
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteUser(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.checkins.Invalidate(id)
	h.logger.Info("User deleted", "user_id", id)
	respond.WriteJSONObject(w, http.StatusOK, MessageResponse{Message: "Account deleted"})
}
