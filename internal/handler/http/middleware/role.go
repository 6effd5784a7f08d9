package middleware

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

const (
	RoleOwner    = "owner"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// PayrollOperators may change payroll and contribution state.
var PayrollOperators = []string{RoleOwner, RoleManager}

// RequireRole allows the request through only when the token's role claim is
// one of roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Forbidden(w, "Insufficient permissions")
				return
			}

			role, ok := claims["role"].(string)
			if !ok || !slices.Contains(roles, role) {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: role '%s' cannot perform this action", role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
