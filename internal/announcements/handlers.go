// internal/announcements/handlers.go

package announcements

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/solacelink/solace-backend/internal/common/apperrors"
	"github.com/solacelink/solace-backend/internal/common/utils"
	"github.com/solacelink/solace-backend/internal/users"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type Handler struct {
	dispatcher *Dispatcher
	repo       Repository
}

func NewHandler(dispatcher *Dispatcher, repo Repository) *Handler {
	return &Handler{dispatcher: dispatcher, repo: repo}
}

// Publish accepts an announcement from an event source. Restricted to
// admins; service-to-service publishes go through the dispatcher directly.
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	role, ok := utils.RoleFromContext(r.Context())
	if !ok || role != users.RoleAdmin {
		utils.ErrorResponse(w, http.StatusForbidden, "Admin access required")
		return
	}

	var req PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorFromTaxonomy(w, err)
		return
	}

	a, err := announcementFromRequest(&req)
	if err != nil {
		utils.ErrorFromTaxonomy(w, err)
		return
	}

	created, err := h.dispatcher.Publish(r.Context(), a)
	if err != nil {
		utils.ErrorFromTaxonomy(w, err)
		return
	}
	utils.SuccessResponse(w, http.StatusCreated, "Announcement published", created)
}

// List returns announcements visible to the caller, newest first. This is
// the poll surface for clients without a live connection.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	role, _ := utils.RoleFromContext(r.Context())

	limit := queryInt(r, "limit", defaultPageSize)
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := queryInt(r, "offset", 0)

	items, err := h.repo.ListForRecipient(r.Context(), userID, role, limit, offset)
	if err != nil {
		utils.ErrorFromTaxonomy(w, err)
		return
	}
	utils.SuccessResponse(w, http.StatusOK, "Announcements retrieved", items)
}

func announcementFromRequest(req *PublishRequest) (*Announcement, error) {
	a := &Announcement{
		Kind:        Kind(req.Kind),
		TargetID:    req.TargetID,
		RecipientID: req.RecipientID,
		Payload:     req.Payload,
		Message:     req.Message,
	}
	if req.Target != nil {
		t := Target(*req.Target)
		a.Target = &t
	}
	if req.RecipientRole != nil {
		role, ok := users.ParseRole(*req.RecipientRole)
		if !ok {
			return nil, fmt.Errorf("%w: unknown role %q", apperrors.ErrValidation, *req.RecipientRole)
		}
		a.RecipientRole = &role
	}
	return a, nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
