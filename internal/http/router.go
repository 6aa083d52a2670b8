package http

import (
	"net/http"
	"time"

	"github.com/fjod/go_petshop/internal/logger"
	"github.com/fjod/go_petshop/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	Carts    *CartHandler
	Orders   *OrdersHandler
	Payments *PaymentHandler
	Catalog  *CatalogHandler
	Users    *UserHandler

	Log      *logger.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer

	RequestTimeout time.Duration
	MaxBodyBytes   int64
	AllowedOrigins []string
}

func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(cfg.Metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	if cfg.MaxBodyBytes > 0 {
		r.Use(middleware.RequestSize(cfg.MaxBodyBytes))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	if h := cfg.Carts; h != nil {
		r.Post("/cart", h.AddItem)
		r.Post("/carts", h.ReplaceCart)
		r.Get("/carts", h.GetCart)
		r.Delete("/carts/{owner}/{petId}", h.RemoveItem)
		r.Delete("/cart/clear/{owner}", h.ClearCart)
		r.Delete("/api/cart/clear/{owner}", h.ClearCart)
	}

	if h := cfg.Orders; h != nil {
		r.Post("/payments", h.RecordPayment)
		r.Get("/payments/orders", h.ListOrders)
		r.Get("/payments/specific/order", h.OrdersFor)
		r.Get("/users/orders/count", h.CountOrders)
		r.Patch("/orders/{id}/status", h.UpdateStatus)
		r.Delete("/orders/{id}", h.DeleteOrder)
	}

	if h := cfg.Payments; h != nil {
		r.Post("/create-payment-intent", h.CreateIntent)
	}

	if h := cfg.Users; h != nil {
		r.Post("/users", h.RegisterUser)
		r.Get("/users/role/{email}", h.RoleOf)
		r.Get("/admin/users", h.ListUsers)
		r.Patch("/admin/users/{userId}/make-admin", h.MakeAdmin)
		r.Patch("/admin/users/{userId}/remove-admin", h.RemoveAdmin)
		r.Delete("/admin/users/{userId}", h.DeleteUser)
	}

	if h := cfg.Catalog; h != nil {
		r.Post("/add-product", h.AddProduct)
		r.Get("/homepage/products", h.HomepageProducts)
		r.Get("/products", h.ListProducts)
		r.Delete("/admin/products/{id}", h.DeleteProduct)

		r.Post("/add-pet", h.AddPet)
		r.Get("/pets", h.ApprovedPets)
		r.Get("/pets/new-arrivals", h.NewArrivals)
		r.Get("/admin/pets", h.AllPets)
		r.Patch("/admin/pets/{id}/approve", h.ApprovePet)
		r.Patch("/admin/pets/{id}/reject", h.RejectPet)
		r.Delete("/admin/pets/{id}", h.DeletePet)

		r.Post("/add-breeds", h.AddBreed)
		r.Get("/breeds", h.ListBreeds)
	}

	return r
}
