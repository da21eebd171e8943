// internal/matching/routes.go

package matching

import (
	"github.com/gorilla/mux"

	"github.com/solacelink/solace-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/matching").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/recommendations", handler.GetRecommendations).Methods("GET")
	api.HandleFunc("/status", handler.GetRequests).Methods("GET")
	api.HandleFunc("/requests", handler.CreateRequest).Methods("POST")
	api.HandleFunc("/requests", handler.GetRequests).Methods("GET")
	api.HandleFunc("/requests/{id}", handler.GetRequest).Methods("GET")
	api.HandleFunc("/requests/{id}/respond", handler.Respond).Methods("PATCH")
	api.HandleFunc("/requests/{id}", handler.Withdraw).Methods("DELETE")
}
