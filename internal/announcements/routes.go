// internal/announcements/routes.go

package announcements

import (
	"github.com/gorilla/mux"

	"github.com/solacelink/solace-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/announcements").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("", handler.List).Methods("GET")
	api.HandleFunc("", handler.Publish).Methods("POST")
}
