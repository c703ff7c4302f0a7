package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/internity/storefront/internal/catalog"
	"github.com/internity/storefront/internal/domain"
	"github.com/internity/storefront/internal/session"
	"github.com/internity/storefront/internal/store"
)

type CartHandler struct {
	sessions *session.Manager
	catalog  catalog.Catalog
}

func NewCartHandler(sessions *session.Manager, catalog catalog.Catalog) *CartHandler {
	return &CartHandler{
		sessions: sessions,
		catalog:  catalog,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size,omitempty"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

// CartResponseDTO is the read model every cart surface shares: the header
// badge reads total_items, the drawer reads items and total_price.
type CartResponseDTO struct {
	Items      []domain.CartLineItem `json:"items"`
	TotalItems int                   `json:"total_items"`
	TotalPrice float64               `json:"total_price"`
	IsOpen     bool                  `json:"is_open"`
}

func cartResponse(s *session.Session) CartResponseDTO {
	snapshot := s.Cart.Snapshot()
	return CartResponseDTO{
		Items:      snapshot.Items,
		TotalItems: snapshot.TotalItems(),
		TotalPrice: snapshot.TotalPrice(),
		IsOpen:     snapshot.IsOpen,
	}
}

func (h *CartHandler) resolveSession(w http.ResponseWriter, r *http.Request) *session.Session {
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

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	s := h.resolveSession(w, r)
	if s == nil {
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(s))
}

// AddItem resolves name, image and the size-specific price from the catalog
// before the line item enters the store; the store never looks back at the
// catalog afterwards.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	s := h.resolveSession(w, r)
	if s == nil {
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
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

	size := req.Size
	if size == "" {
		size = product.Size
	}

	price, err := h.catalog.PriceFor(r.Context(), req.ProductID, size)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownSize) {
			respondError(w, http.StatusBadRequest, "invalid_size", "size not offered for product")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to resolve price")
		return
	}

	item := domain.CartLineItem{
		ID:       product.ID,
		Name:     product.Name,
		Price:    price,
		Image:    product.Image,
		Size:     size,
		Quantity: req.Quantity,
	}
	if err := s.Cart.AddItem(item); err != nil {
		if errors.Is(err, store.ErrInvalidQuantity) {
			respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at least 1")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to add item")
		return
	}

	respondJSON(w, http.StatusCreated, cartResponse(s))
}

// UpdateQuantity sets the absolute quantity for every line of the product.
// Zero and negative values remove the product entirely.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	s := h.resolveSession(w, r)
	if s == nil {
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 99")
		return
	}

	s.Cart.UpdateQuantity(productID, req.Quantity)
	respondJSON(w, http.StatusOK, cartResponse(s))
}

// RemoveItem drops every size variant of the product from the cart.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s := h.resolveSession(w, r)
	if s == nil {
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	s.Cart.RemoveItem(productID)
	respondJSON(w, http.StatusOK, cartResponse(s))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	s := h.resolveSession(w, r)
	if s == nil {
		return
	}

	s.Cart.Clear()
	respondJSON(w, http.StatusOK, cartResponse(s))
}

func (h *CartHandler) OpenCart(w http.ResponseWriter, r *http.Request) {
	s := h.resolveSession(w, r)
	if s == nil {
		return
	}

	s.Cart.Open()
	respondJSON(w, http.StatusOK, cartResponse(s))
}

func (h *CartHandler) CloseCart(w http.ResponseWriter, r *http.Request) {
	s := h.resolveSession(w, r)
	if s == nil {
		return
	}

	s.Cart.Close()
	respondJSON(w, http.StatusOK, cartResponse(s))
}

func (h *CartHandler) ToggleCart(w http.ResponseWriter, r *http.Request) {
	s := h.resolveSession(w, r)
	if s == nil {
		return
	}

	s.Cart.Toggle()
	respondJSON(w, http.StatusOK, cartResponse(s))
}
