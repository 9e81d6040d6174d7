package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/tripdesk/backoffice/api/responses"
	"github.com/tripdesk/backoffice/pkg/config"
	pkgerrors "github.com/tripdesk/backoffice/pkg/errors"
	"github.com/tripdesk/backoffice/pkg/logger"
)

const (
	envHeader        = "X-Tripdesk-Env"
	readinessTimeout = 2 * time.Second
)

// Pinger is any dependency that can report its own health.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every configured dependency. Nil pingers are skipped so
// redis stays optional when the lock guard is off.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}
		failed := map[string]string{}
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				failed[name] = err.Error()
				continue
			}
			checks[name] = "ok"
		}

		if len(failed) > 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependency check failed").WithDetails(failed))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
