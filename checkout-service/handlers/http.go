package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"

	"github.com/commercium/checkout-system/checkout-service/application"
	"github.com/commercium/checkout-system/shared/auth"
	"github.com/commercium/checkout-system/shared/saga"
)

// CheckoutHandlers contains checkout HTTP handlers
type CheckoutHandlers struct {
	beginCheckout  *application.BeginCheckout
	getSaga        *application.GetSaga
	listSagas      *application.ListSagas
	listSagaEvents *application.ListSagaEvents
	resumeSaga     *application.ResumeSaga
	rotateToken    *application.RotateServiceToken
}

// NewCheckoutHandlers creates new checkout handlers
func NewCheckoutHandlers(
	beginCheckout *application.BeginCheckout,
	getSaga *application.GetSaga,
	listSagas *application.ListSagas,
	listSagaEvents *application.ListSagaEvents,
	resumeSaga *application.ResumeSaga,
	rotateToken *application.RotateServiceToken,
) *CheckoutHandlers {
	return &CheckoutHandlers{
		beginCheckout:  beginCheckout,
		getSaga:        getSaga,
		listSagas:      listSagas,
		listSagaEvents: listSagaEvents,
		resumeSaga:     resumeSaga,
		rotateToken:    rotateToken,
	}
}

// BeginCheckout handles checkout submission requests
func (h *CheckoutHandlers) BeginCheckout(w http.ResponseWriter, r *http.Request) {
	var cmd application.BeginCheckoutCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	response, err := h.beginCheckout.Execute(r.Context(), &cmd)
	if err != nil {
		if errors.Is(err, saga.ErrUnknownDefinition) {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		http.Error(w, err.Error(), badRequestOrInternal(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(response)
}

// GetSaga handles saga status requests
func (h *CheckoutHandlers) GetSaga(w http.ResponseWriter, r *http.Request) {
	query := &application.GetSagaQuery{SagaID: chi.URLParam(r, "id")}

	response, err := h.getSaga.Execute(r.Context(), query)
	if err != nil {
		if errors.Is(err, application.ErrSagaNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), badRequestOrInternal(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// ListSagas handles saga listing requests
func (h *CheckoutHandlers) ListSagas(w http.ResponseWriter, r *http.Request) {
	query := &application.ListSagasQuery{Status: r.URL.Query().Get("status")}

	response, err := h.listSagas.Execute(r.Context(), query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// GetSagaEvents handles audit trail requests
func (h *CheckoutHandlers) GetSagaEvents(w http.ResponseWriter, r *http.Request) {
	query := &application.ListSagaEventsQuery{SagaID: chi.URLParam(r, "id")}

	response, err := h.listSagaEvents.Execute(r.Context(), query)
	if err != nil {
		http.Error(w, err.Error(), badRequestOrInternal(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// ResumeSaga handles operator resume requests
func (h *CheckoutHandlers) ResumeSaga(w http.ResponseWriter, r *http.Request) {
	cmd := &application.ResumeSagaCommand{SagaID: chi.URLParam(r, "id")}

	if err := h.resumeSaga.Execute(r.Context(), cmd); err != nil {
		if errors.Is(err, application.ErrSagaNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), badRequestOrInternal(err))
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// RotateToken handles service token rotation requests
func (h *CheckoutHandlers) RotateToken(w http.ResponseWriter, r *http.Request) {
	var cmd application.RotateServiceTokenCommand
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	response, err := h.rotateToken.Execute(r.Context(), &cmd)
	if err != nil {
		if errors.Is(err, auth.ErrUnknownService) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// RegisterRoutes registers checkout routes
func (h *CheckoutHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/checkout", h.BeginCheckout)
		r.Route("/sagas", func(r chi.Router) {
			r.Get("/", h.ListSagas)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetSaga)
				r.Get("/events", h.GetSagaEvents)
				r.Post("/resume", h.ResumeSaga)
			})
		})
	})

	r.Route("/internal", func(r chi.Router) {
		r.With(auth.RequireScope(auth.Scope{Resource: "tokens", Action: "rotate"})).
			Post("/tokens/rotate", h.RotateToken)
	})
}

// badRequestOrInternal maps validation failures to 400 and everything else to
// 500. Validation errors are the ones the use cases produce before touching
// any collaborator.
func badRequestOrInternal(err error) int {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"is required", "invalid", "empty", "unknown saga status", "does not match",
	} {
		if strings.Contains(msg, marker) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}
