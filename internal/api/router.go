package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	Users         *UsersHandler
	Catalog       *CatalogHandler
	Cart          *CartHandler
	Orders        *OrdersHandler
	Payments      *PaymentsHandler
	Announcements *AnnouncementsHandler
}

func NewRouter(h Handlers) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Use(WithActor)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Post("/users", h.Users.Create)
	r.Get("/users", h.Users.List)
	r.Get("/users/{id}", h.Users.Get)

	r.Post("/categories", h.Catalog.CreateCategory)
	r.Get("/categories", h.Catalog.ListCategories)
	r.Post("/sizes", h.Catalog.CreateSize)
	r.Get("/sizes", h.Catalog.ListSizes)

	r.Post("/products", h.Catalog.CreateProduct)
	r.Get("/products", h.Catalog.ListProducts)
	r.Get("/products/{id}", h.Catalog.GetProduct)
	r.Get("/products/{id}/sizes/{sizeID}/availability", h.Catalog.Availability)
	r.Post("/products/{id}/sizes/{sizeID}/restock", h.Catalog.Restock)

	r.Post("/cart/items", h.Cart.AddItem)
	r.Get("/cart", h.Cart.Get)
	r.Delete("/cart/items/{id}", h.Cart.RemoveItem)
	r.Delete("/cart", h.Cart.Clear)
	r.Post("/checkout", h.Orders.Checkout)

	r.Get("/orders", h.Orders.ListByUser)
	r.Get("/orders/shipping-labels", h.Orders.ShippingLabels)
	r.Get("/orders/{id}", h.Orders.Get)
	r.Get("/orders/{id}/status", h.Orders.Status)
	r.Put("/orders/{id}/shipping", h.Orders.UpsertShipping)
	r.Post("/orders/{id}/slip", h.Payments.SubmitSlip)

	r.Get("/payments/pending", h.Payments.ListPending)
	r.Post("/payments/verify/{id}", h.Payments.Verify)

	r.Post("/announcements", h.Announcements.Create)
	r.Get("/announcements", h.Announcements.List)
	r.Get("/announcements/{id}", h.Announcements.Get)
	r.Put("/announcements/{id}", h.Announcements.Update)
	r.Delete("/announcements/{id}", h.Announcements.Delete)

	return r
}
