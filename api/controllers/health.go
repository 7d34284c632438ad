package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/binarymart/storefront-backend/api/responses"
	"github.com/binarymart/storefront-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Healthz reports liveness of the datastores. A failing dependency flips
// the response to 503 but still names each component.
func Healthz(db pinger, cache pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		components := map[string]string{}

		check := func(name string, p pinger) {
			if p == nil {
				components[name] = "disabled"
				return
			}
			if err := p.Ping(ctx); err != nil {
				components[name] = "down"
				status = http.StatusServiceUnavailable
				if logg != nil {
					logg.Error(r.Context(), "healthcheck failed: "+name, err)
				}
				return
			}
			components[name] = "ok"
		}
		check("database", db)
		check("redis", cache)

		responses.WriteSuccessStatus(w, status, map[string]any{
			"status":     http.StatusText(status),
			"components": components,
		})
	}
}
