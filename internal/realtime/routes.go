// internal/realtime/routes.go

package realtime

import (
	"github.com/gorilla/mux"

	"github.com/solacelink/solace-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	ws := router.PathPrefix("/ws").Subrouter()
	ws.Use(authMiddleware.Authenticate)

	ws.HandleFunc("", handler.HandleWebSocket).Methods("GET")
	ws.HandleFunc("/status", handler.Status).Methods("GET")
	ws.HandleFunc("/send-user", handler.SendToUser).Methods("POST")
	ws.HandleFunc("/send-users", handler.SendToUsers).Methods("POST")
	ws.HandleFunc("/send-role", handler.SendToRole).Methods("POST")
	ws.HandleFunc("/send-all", handler.SendToAll).Methods("POST")
}
