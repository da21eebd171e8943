// internal/matching/handlers.go

package matching

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/solacelink/solace-backend/internal/common/utils"
	"github.com/solacelink/solace-backend/internal/users"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetRecommendations lists candidate sponsors for the caller, best first.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	ranked, err := h.service.RecommendSponsors(r.Context(), userID)
	if err != nil {
		utils.ErrorFromTaxonomy(w, err)
		return
	}
	utils.SuccessResponse(w, http.StatusOK, "Recommendations retrieved", ranked)
}

func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateRequestDTO
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	created, err := h.service.CreateRequest(r.Context(), userID, req.SponsorID)
	if err != nil {
		utils.ErrorFromTaxonomy(w, err)
		return
	}
	utils.SuccessResponse(w, http.StatusCreated, "Matching request submitted", created)
}

// Respond lets the addressed sponsor accept or decline a pending request.
func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	requestID, err := pathID(r)
	if err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid request id")
		return
	}

	var body RespondDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(body); err != nil {
		utils.ErrorFromTaxonomy(w, err)
		return
	}

	updated, err := h.service.Respond(r.Context(), requestID, userID, body.Action == "accept")
	if err != nil {
		utils.ErrorFromTaxonomy(w, err)
		return
	}
	utils.SuccessResponse(w, http.StatusOK, "Response recorded", updated)
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	requestID, err := pathID(r)
	if err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid request id")
		return
	}

	if err := h.service.Withdraw(r.Context(), requestID, userID); err != nil {
		utils.ErrorFromTaxonomy(w, err)
		return
	}
	utils.MessageResponse(w, http.StatusOK, "Matching request withdrawn")
}

func (h *Handler) GetRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	role, ok := utils.RoleFromContext(r.Context())
	if !ok {
		role = users.RoleMember
	}

	summaries, err := h.service.ListRequests(r.Context(), userID, role)
	if err != nil {
		utils.ErrorFromTaxonomy(w, err)
		return
	}
	utils.SuccessResponse(w, http.StatusOK, "Matching requests retrieved", summaries)
}

func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	requestID, err := pathID(r)
	if err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid request id")
		return
	}

	req, err := h.service.GetRequest(r.Context(), requestID, userID)
	if err != nil {
		utils.ErrorFromTaxonomy(w, err)
		return
	}
	utils.SuccessResponse(w, http.StatusOK, "Matching request retrieved", req)
}

func pathID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)["id"])
}
