package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"roomdesk/internal/metrics"
	"roomdesk/internal/models"

	"github.com/rs/zerolog"
)

const (
	headerSessionID  = "X-Session-Id"
	headerActorRole  = "X-Actor-Role"
	headerCustomerID = "X-Customer-Id"
)

// actorFrom builds the explicit actor for a request. Role defaults to
// Customer; unknown roles are treated as Customer too.
func actorFrom(r *http.Request) models.Actor {
	actor := models.Actor{Role: models.RoleCustomer}

	if role := strings.TrimSpace(r.Header.Get(headerActorRole)); strings.EqualFold(role, models.RoleAdmin) {
		actor.Role = models.RoleAdmin
	}
	if raw := strings.TrimSpace(r.Header.Get(headerCustomerID)); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			actor.CustomerID = id
		}
	}

	return actor
}

func sessionFrom(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(headerSessionID))
}

func loggingMiddleware(logger *zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		metrics.IncHTTP(r.URL.Path)
		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
