package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/internity/storefront/internal/checkout"
	"github.com/internity/storefront/internal/session"
)

type CheckoutHandler struct {
	sessions *session.Manager
	checkout *checkout.Service
}

func NewCheckoutHandler(sessions *session.Manager, service *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{
		sessions: sessions,
		checkout: service,
	}
}

type SubmitCheckoutRequestDTO struct {
	IdempotencyKey string `json:"idempotency_key"`
	ShippingMethod string `json:"shipping_method,omitempty"`
}

func (h *CheckoutHandler) resolveSession(w http.ResponseWriter, r *http.Request) *session.Session {
	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "no_session", "missing session cookie")
		return nil
	}

	s, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to resolve session")
		return nil
	}
	return s
}

func (h *CheckoutHandler) ListShippingMethods(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, checkout.ShippingMethods)
}

// Submit runs the simulated checkout. The request blocks for the processing
// delay; there is no way to cancel a submit once it has started.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	s := h.resolveSession(w, r)
	if s == nil {
		return
	}

	var req SubmitCheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.IdempotencyKey == "" {
		respondError(w, http.StatusBadRequest, "missing_idempotency_key",
			"idempotency_key is required")
		return
	}

	order, err := h.checkout.Submit(r.Context(), s, checkout.SubmitRequest{
		IdempotencyKey:   req.IdempotencyKey,
		ShippingMethodID: req.ShippingMethod,
	})
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			respondError(w, http.StatusBadRequest, "empty_cart", "cart is empty")
		case errors.Is(err, checkout.ErrUnknownShippingMethod):
			respondError(w, http.StatusBadRequest, "invalid_shipping_method", "unknown shipping method")
		default:
			log.Printf("checkout failed for session %s (request %s): %v",
				s.ID, getRequestID(r.Context()), err)
			respondError(w, http.StatusInternalServerError, "internal_error", "checkout failed")
		}
		return
	}

	respondJSON(w, http.StatusCreated, order)
}

func (h *CheckoutHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	s := h.resolveSession(w, r)
	if s == nil {
		return
	}

	respondJSON(w, http.StatusOK, h.checkout.Orders(s.ID))
}
