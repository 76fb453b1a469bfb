package api

import (
	"context"
	"net/http"
	"strconv"
)

type contextKey string

const actorKey contextKey = "actor"

// WithActor lifts the caller identity set by the gateway's auth layer out of
// the X-User-ID header into the request context. Handlers that mutate state
// on behalf of a user read it from there, never from request bodies or
// hardcoded constants.
func WithActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw := r.Header.Get("X-User-ID"); raw != "" {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
				r = r.WithContext(context.WithValue(r.Context(), actorKey, id))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func Actor(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(actorKey).(int64)
	return id, ok
}

// requireActor writes the error response itself when no identity is present.
func requireActor(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := Actor(r.Context())
	if !ok {
		respondError(w, http.StatusBadRequest, CodeValidation, "missing X-User-ID header")
	}
	return id, ok
}
