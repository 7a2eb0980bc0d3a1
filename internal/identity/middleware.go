package identity

import (
	"net/http"

	"go.uber.org/zap"
)

// Authenticate attaches a session to the request context when a valid bearer
// token is present. Requests without one pass through anonymously; handlers
// decide whether a session is required.
func Authenticate(tokens *TokenService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := BearerToken(r.Header.Get("Authorization"))
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			session, err := tokens.Parse(raw)
			if err != nil {
				logger.Debug("rejected bearer token", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}
