package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/silema/silema/internal/api/respond"
	"github.com/silema/silema/internal/domain"
)

// ContactRequest creates or updates a contact.
type ContactRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	IsPrimary bool   `json:"isPrimary"`
}

// ContactResponse is an emergency contact.
type ContactResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	IsPrimary bool      `json:"isPrimary"`
	CreatedAt time.Time `json:"createdAt"`
}

func contactResponse(c domain.Contact) ContactResponse {
	return ContactResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		IsPrimary: c.IsPrimary,
		CreatedAt: c.CreatedAt,
	}
}

func (req ContactRequest) contact(userID int64) domain.Contact {
	return domain.Contact{
		UserID:    userID,
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		IsPrimary: req.IsPrimary,
	}
}

// ListContacts returns the user's emergency contacts, primary first.
// @Summary List contacts
// @Tags contacts
// @Produce json
// @Param userID path int true "User ID"
// @Success 200 {object} map[string][]ContactResponse
// @Router /users/{userID}/contacts [get]
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	contacts, err := h.store.ListContacts(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]ContactResponse, len(contacts))
	for i, c := range contacts {
		out[i] = contactResponse(c)
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string][]ContactResponse{"contacts": out})
}

// AddContact adds an emergency contact.
// @Summary Add contact
// @Description A user can have at most 10 contacts. The first contact becomes primary.
// @Tags contacts
// @Accept json
// @Produce json
// @Param userID path int true "User ID"
// @Param body body ContactRequest true "Contact"
// @Success 201 {object} ContactResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /users/{userID}/contacts [post]
func (h *Handler) AddContact(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	var req ContactRequest
	if !decode(w, r, &req) {
		return
	}
	c := req.contact(id)
	if err := domain.ValidateContact(c); err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.store.AddContact(r.Context(), c)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.Info("Contact added", "user_id", id, "contact_id", created.ID, "primary", created.IsPrimary)
	respond.WriteJSONObject(w, http.StatusCreated, contactResponse(*created))
}

// UpdateContact edits an emergency contact.
// @Summary Update contact
// @Tags contacts
// @Accept json
// @Produce json
// @Param userID path int true "User ID"
// @Param contactID path int true "Contact ID"
// @Param body body ContactRequest true "Contact"
// @Success 200 {object} ContactResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /users/{userID}/contacts/{contactID} [put]
func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	contactID, ok := contactIDParam(w, r)
	if !ok {
		return
	}
	var req ContactRequest
	if !decode(w, r, &req) {
		return
	}
	c := req.contact(id)
	c.ID = contactID
	if err := domain.ValidateContact(c); err != nil {
		h.writeError(w, r, err)
		return
	}
	updated, err := h.store.UpdateContact(r.Context(), c)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, contactResponse(*updated))
}

// DeleteContact removes an emergency contact.
// @Summary Delete contact
// @Description Deleting the primary contact promotes the oldest remaining one.
// @Tags contacts
// @Produce json
// @Param userID path int true "User ID"
// @Param contactID path int true "Contact ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /users/{userID}/contacts/{contactID} [delete]
func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	contactID, ok := contactIDParam(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteContact(r.Context(), id, contactID); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.Info("Contact deleted", "user_id", id, "contact_id", contactID)
	respond.WriteJSONObject(w, http.StatusOK, MessageResponse{Message: "Contact deleted"})
}

// SetPrimaryContact makes a contact the user's primary contact.
// @Summary Set primary contact
// @Tags contacts
// @Produce json
// @Param userID path int true "User ID"
// @Param contactID path int true "Contact ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /users/{userID}/contacts/{contactID}/primary [put]
func (h *Handler) SetPrimaryContact(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	contactID, ok := contactIDParam(w, r)
	if !ok {
		return
	}
	if err := h.store.SetPrimaryContact(r.Context(), id, contactID); err != nil {
		h.writeError(w, r, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, MessageResponse{Message: "Primary contact updated"})
}

func contactIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := pathID(r, "contactID")
	if !ok {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "Contact ID must be a positive integer")
	}
	return id, ok
}
