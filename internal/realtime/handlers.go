// internal/realtime/handlers.go

package realtime

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/solacelink/solace-backend/internal/announcements"
	"github.com/solacelink/solace-backend/internal/common/utils"
	"github.com/solacelink/solace-backend/internal/users"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, implement proper CORS checking
		return true
	},
}

// Publisher is the durable publish surface the admin push endpoints go
// through. Every admin push is persisted before delivery like any other
// announcement.
type Publisher interface {
	Publish(ctx context.Context, a *announcements.Announcement) (*announcements.Announcement, error)
}

type Handler struct {
	registry     *Registry
	presence     *Presence
	publisher    Publisher
	writeTimeout time.Duration
}

func NewHandler(registry *Registry, presence *Presence, publisher Publisher, writeTimeout time.Duration) *Handler {
	return &Handler{
		registry:     registry,
		presence:     presence,
		publisher:    publisher,
		writeTimeout: writeTimeout,
	}
}

// HandleWebSocket upgrades the request and admits the connection. The
// auth middleware has already resolved the caller's identity; role here
// is a connect-time snapshot only.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	role, ok := utils.RoleFromContext(r.Context())
	if !ok {
		role = users.RoleMember
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	conn := h.registry.Register(userID, role)
	NewClient(h.registry, conn, ws, h.presence, h.writeTimeout).Start()
	log.Printf("User %s connected (%d active connections)", userID, h.registry.ActiveConnections())
}

type sendUserRequest struct {
	UserID  uuid.UUID       `json:"user_id" validate:"required"`
	Message string          `json:"message" validate:"required"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type sendUsersRequest struct {
	UserIDs []uuid.UUID     `json:"user_ids" validate:"required,min=1"`
	Message string          `json:"message" validate:"required"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type sendRoleRequest struct {
	Role    string          `json:"role" validate:"required"`
	Message string          `json:"message" validate:"required"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type sendAllRequest struct {
	Message string          `json:"message" validate:"required"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SendToUser publishes an admin announcement directed at one user.
func (h *Handler) SendToUser(w http.ResponseWriter, r *http.Request) {
	var req sendUserRequest
	if !h.decodeAdmin(w, r, &req) {
		return
	}
	a, err := h.publisher.Publish(r.Context(), adminAnnouncement(req.Message, req.Payload, &req.UserID, nil))
	if err != nil {
		utils.ErrorFromTaxonomy(w, err)
		return
	}
	utils.SuccessResponse(w, http.StatusCreated, "Announcement sent", a)
}

// SendToUsers publishes one directed announcement per listed user.
func (h *Handler) SendToUsers(w http.ResponseWriter, r *http.Request) {
	var req sendUsersRequest
	if !h.decodeAdmin(w, r, &req) {
		return
	}

	sent := make([]*announcements.Announcement, 0, len(req.UserIDs))
	for _, userID := range req.UserIDs {
		recipient := userID
		a, err := h.publisher.Publish(r.Context(), adminAnnouncement(req.Message, req.Payload, &recipient, nil))
		if err != nil {
			utils.ErrorFromTaxonomy(w, err)
			return
		}
		sent = append(sent, a)
	}
	utils.SuccessResponse(w, http.StatusCreated, "Announcements sent", sent)
}

// SendToRole publishes an announcement addressed to every holder of a role.
func (h *Handler) SendToRole(w http.ResponseWriter, r *http.Request) {
	var req sendRoleRequest
	if !h.decodeAdmin(w, r, &req) {
		return
	}
	role, ok := users.ParseRole(req.Role)
	if !ok {
		utils.ErrorResponse(w, http.StatusBadRequest, "Unknown role")
		return
	}

	a, err := h.publisher.Publish(r.Context(), adminAnnouncement(req.Message, req.Payload, nil, &role))
	if err != nil {
		utils.ErrorFromTaxonomy(w, err)
		return
	}
	utils.SuccessResponse(w, http.StatusCreated, "Announcement sent", a)
}

// SendToAll publishes a global announcement.
func (h *Handler) SendToAll(w http.ResponseWriter, r *http.Request) {
	var req sendAllRequest
	if !h.decodeAdmin(w, r, &req) {
		return
	}

	a, err := h.publisher.Publish(r.Context(), &announcements.Announcement{
		Kind:    announcements.KindGeneral,
		Payload: req.Payload,
		Message: req.Message,
	})
	if err != nil {
		utils.ErrorFromTaxonomy(w, err)
		return
	}
	utils.SuccessResponse(w, http.StatusCreated, "Announcement sent", a)
}

// Status reports live connection counts. Admin only.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	role, ok := utils.RoleFromContext(r.Context())
	if !ok || role != users.RoleAdmin {
		utils.ErrorResponse(w, http.StatusForbidden, "Admin access required")
		return
	}
	utils.SuccessResponse(w, http.StatusOK, "Connection status", map[string]any{
		"active_connections": h.registry.ActiveConnections(),
		"connected_users":    len(h.registry.ConnectedUsers()),
	})
}

func (h *Handler) decodeAdmin(w http.ResponseWriter, r *http.Request, dst any) bool {
	role, ok := utils.RoleFromContext(r.Context())
	if !ok || role != users.RoleAdmin {
		utils.ErrorResponse(w, http.StatusForbidden, "Admin access required")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := utils.ValidateStruct(dst); err != nil {
		utils.ErrorFromTaxonomy(w, err)
		return false
	}
	return true
}

func adminAnnouncement(message string, payload json.RawMessage, recipient *uuid.UUID, role *users.Role) *announcements.Announcement {
	return &announcements.Announcement{
		Kind:          announcements.KindAdminAction,
		RecipientID:   recipient,
		RecipientRole: role,
		Payload:       payload,
		Message:       message,
	}
}
