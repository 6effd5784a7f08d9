package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

// AuthRequired rejects requests without a verified access token that names a
// user. It must run after jwtauth.Verifier.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			switch {
			case err != nil:
				response.Unauthorized(w, err.Error())
				return
			case token == nil:
				response.Unauthorized(w, "Invalid token")
				return
			}

			if tokenType, _ := claims["type"].(string); tokenType != "access" {
				response.Unauthorized(w, "Invalid token")
				return
			}
			if userID, _ := claims["user_id"].(string); userID == "" {
				response.Unauthorized(w, "Token has no user")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
