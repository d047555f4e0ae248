package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Prosparity-git/collection/internal/security"
)

// NewRouter wires the API routes. All routes pass through the actor
// middleware; mutating routes require a verified actor.
func NewRouter(handler *PaymentsHandler, verifier security.TokenVerifier) *mux.Router {
	r := mux.NewRouter()
	r.Use(ActorMiddleware(verifier))

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/payments", handler.ListPayments).Methods(http.MethodGet)
	api.HandleFunc("/payments/summary", handler.Summary).Methods(http.MethodGet)
	api.HandleFunc("/payments/filter-options", handler.FilterOptions).Methods(http.MethodGet)
	api.HandleFunc("/payments/{id:[0-9]+}", handler.UpdatePayment).Methods(http.MethodPatch)
	api.HandleFunc("/payments/{id:[0-9]+}/approval", handler.ProcessApproval).Methods(http.MethodPost)

	api.HandleFunc("/loans/overdue", handler.CurrentOverdue).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id:[0-9]+}/delays", handler.DelayReport).Methods(http.MethodGet)

	api.HandleFunc("/activity", handler.RecentActivity).Methods(http.MethodGet)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	return r
}
