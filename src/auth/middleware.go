package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	logger "github.com/sirupsen/logrus"
)

// RequireToken wraps protected routes. Missing credential gives 401, unknown
// credential gives 403; both bodies match the legacy wire format.
func RequireToken(gate *Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := gate.Authorize(TokenFromRequest(r))
			switch {
			case errors.Is(err, ErrMissingToken):
				writeAuthError(w, http.StatusUnauthorized, "Missing or invalid token")
				return
			case errors.Is(err, ErrUnknownToken):
				writeAuthError(w, http.StatusForbidden, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": msg}); err != nil {
		logger.WithError(err).Error("failed to encode auth error response")
	}
}
