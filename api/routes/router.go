package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/binarymart/storefront-backend/api/controllers"
	"github.com/binarymart/storefront-backend/api/middleware"
	cartsvc "github.com/binarymart/storefront-backend/internal/cart"
	checkoutsvc "github.com/binarymart/storefront-backend/internal/checkout"
	ordersvc "github.com/binarymart/storefront-backend/internal/orders"
	"github.com/binarymart/storefront-backend/pkg/config"
	"github.com/binarymart/storefront-backend/pkg/enums"
	"github.com/binarymart/storefront-backend/pkg/logger"
	pkgredis "github.com/binarymart/storefront-backend/pkg/redis"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Deps carries everything the router mounts.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       pinger
	Cache    pinger
	IdemKeys pkgredis.IdempotencyStore
	Metrics  http.Handler

	Cart     cartsvc.Service
	Checkout checkoutsvc.Service
	Orders   ordersvc.Service
}

// NewRouter assembles the HTTP surface.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(middleware.RequestID(logg))
	r.Use(middleware.Logging(logg))
	r.Use(middleware.Recoverer(logg))

	r.Get("/healthz", controllers.Healthz(deps.DB, deps.Cache, logg))
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Owner-scoped cart and order history.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Get("/cart", controllers.GetCart(deps.Cart, logg))
			r.Post("/cart/items", controllers.AddCartItem(deps.Cart, logg))
			r.Patch("/cart/items/{itemID}", controllers.UpdateCartItem(deps.Cart, logg))
			r.Delete("/cart/items/{itemID}", controllers.RemoveCartItem(deps.Cart, logg))
			r.Delete("/cart", controllers.ClearCart(deps.Cart, logg))
			r.Post("/cart/sync", controllers.SyncCart(deps.Cart, logg))

			r.Get("/orders", controllers.ListOrders(deps.Orders, logg))
			r.Get("/orders/{orderID}", controllers.GetOrder(deps.Orders, logg))
		})

		// Checkout accepts both authenticated and guest callers.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(deps.IdemKeys, "checkout", cfg.Checkout.IdempotencyTTL, logg))
			r.Post("/checkout", controllers.Checkout(deps.Checkout, logg))
			r.Post("/checkout/guest", controllers.GuestCheckout(deps.Checkout, logg))
		})

		r.Post("/orders/guest-lookup", controllers.GuestOrderLookup(deps.Orders, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.RequireRoles(logg, enums.UserRoleAdmin))

			r.Get("/admin/orders", controllers.AdminListOrders(deps.Orders, logg))
			r.Get("/admin/serials/{code}", controllers.AdminSerialLookup(deps.Orders, logg))
			r.Patch("/admin/orders/{orderID}/status", controllers.AdminUpdateOrderStatus(deps.Orders, logg))
		})
	})

	return r
}
