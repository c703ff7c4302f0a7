package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/internity/storefront/internal/catalog"
	"github.com/internity/storefront/internal/checkout"
	"github.com/internity/storefront/internal/session"
)

// NewRouter assembles the storefront API. Kept out of main so handler tests
// can drive the full middleware stack.
func NewRouter(sessions *session.Manager, cat catalog.Catalog, checkoutService *checkout.Service, requestTimeout time.Duration) *chi.Mux {
	cartHandler := NewCartHandler(sessions, cat)
	wishlistHandler := NewWishlistHandler(sessions, cat)
	catalogHandler := NewCatalogHandler(cat)
	checkoutHandler := NewCheckoutHandler(sessions, checkoutService)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(SessionMiddleware)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", catalogHandler.ListProducts)
			r.Get("/{product_id}", catalogHandler.GetProduct)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
			r.Post("/open", cartHandler.OpenCart)
			r.Post("/close", cartHandler.CloseCart)
			r.Post("/toggle", cartHandler.ToggleCart)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", wishlistHandler.GetWishlist)
			r.Delete("/", wishlistHandler.ClearWishlist)
			r.Post("/items", wishlistHandler.AddItem)
			r.Get("/items/{product_id}", wishlistHandler.Contains)
			r.Delete("/items/{product_id}", wishlistHandler.RemoveItem)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", checkoutHandler.Submit)
			r.Get("/shipping-methods", checkoutHandler.ListShippingMethods)
		})

		r.Get("/orders", checkoutHandler.ListOrders)
	})

	return r
}
