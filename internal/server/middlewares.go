package server

import (
	"net/http"

	"github.com/Heidric/guest-self-service/internal/lib/jwt"
)

func (s *Server) requireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := jwt.Claims(r.Context())
			if !ok {
				UnauthorizedError(w)
				return
			}
			if claims.Role != role {
				ForbiddenError(w, "FORBIDDEN")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
