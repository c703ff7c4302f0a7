package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/internity/storefront/internal/catalog"
	"github.com/internity/storefront/internal/domain"
	"github.com/internity/storefront/internal/session"
)

type WishlistHandler struct {
	sessions *session.Manager
	catalog  catalog.Catalog
}

func NewWishlistHandler(sessions *session.Manager, catalog catalog.Catalog) *WishlistHandler {
	return &WishlistHandler{
		sessions: sessions,
		catalog:  catalog,
	}
}

type AddWishlistItemRequestDTO struct {
	ProductID string `json:"product_id"`
}

type WishlistResponseDTO struct {
	Items []domain.WishlistItem `json:"items"`
}

// MembershipResponseDTO backs the heart-icon state on product cards.
type MembershipResponseDTO struct {
	ProductID  string `json:"product_id"`
	InWishlist bool   `json:"in_wishlist"`
}

func (h *WishlistHandler) resolveSession(w http.ResponseWriter, r *http.Request) *session.Session {
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

func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	s := h.resolveSession(w, r)
	if s == nil {
		return
	}

	respondJSON(w, http.StatusOK, WishlistResponseDTO{Items: s.Wishlist.Items()})
}

// AddItem captures the product's display fields at its default catalog price.
// Adding a product that is already saved is a no-op, not a conflict.
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	s := h.resolveSession(w, r)
	if s == nil {
		return
	}

	var req AddWishlistItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to look up product")
		return
	}

	s.Wishlist.AddItem(domain.WishlistItem{
		ID:    product.ID,
		Name:  product.Name,
		Price: product.Price,
		Image: product.Image,
	})

	respondJSON(w, http.StatusCreated, WishlistResponseDTO{Items: s.Wishlist.Items()})
}

func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s := h.resolveSession(w, r)
	if s == nil {
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	s.Wishlist.RemoveItem(productID)
	respondJSON(w, http.StatusOK, WishlistResponseDTO{Items: s.Wishlist.Items()})
}

func (h *WishlistHandler) Contains(w http.ResponseWriter, r *http.Request) {
	s := h.resolveSession(w, r)
	if s == nil {
		return
	}

	productID := chi.URLParam(r, "product_id")
	respondJSON(w, http.StatusOK, MembershipResponseDTO{
		ProductID:  productID,
		InWishlist: s.Wishlist.IsInWishlist(productID),
	})
}

func (h *WishlistHandler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	s := h.resolveSession(w, r)
	if s == nil {
		return
	}

	s.Wishlist.Clear()
	respondJSON(w, http.StatusOK, WishlistResponseDTO{Items: s.Wishlist.Items()})
}
