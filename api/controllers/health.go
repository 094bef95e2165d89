package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/venuecast/venuecast-backend/api/responses"
	"github.com/venuecast/venuecast-backend/pkg/config"
	"github.com/venuecast/venuecast-backend/pkg/logger"
)

type Pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-VenueCast-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks every hard dependency. Degraded dependencies are
// reported per-component so an operator can see which one is down.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		w.Header().Set("X-VenueCast-Env", cfg.App.Env)

		components := map[string]string{}
		ready := true

		check := func(name string, p Pinger) {
			if p == nil {
				components[name] = "unconfigured"
				ready = false
				return
			}
			if err := p.Ping(ctx); err != nil {
				if logg != nil {
					logg.Error(ctx, name+" health check failed", err)
				}
				components[name] = "down"
				ready = false
				return
			}
			components[name] = "up"
		}

		check("database", dbP)
		check("redis", redisP)

		status := "ready"
		code := http.StatusOK
		if !ready {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		responses.WriteSuccessStatus(w, code, map[string]any{
			"status":     status,
			"components": components,
		})
	}
}
