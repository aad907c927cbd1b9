package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
)

// RequireRoles only lets requests through whose authenticated role is one of
// allowedRoles. It must run after Auth.
//
//	drivers.GET("/me/rides", RequireRoles(domain.RoleDriver), h.MyRides)
func RequireRoles(allowedRoles ...domain.Role) gin.HandlerFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	names := make([]string, 0, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
		names = append(names, string(r))
	}
	msg := "requires role " + strings.Join(names, " or ")

	return func(c *gin.Context) {
		role := c.GetString(userRoleKey)
		if role == "" {
			abortJSON(c, http.StatusUnauthorized, domain.CodeUnauthenticated, "no authenticated role on request")
			return
		}
		if _, ok := allowed[domain.ParseRole(role)]; !ok {
			abortJSON(c, http.StatusForbidden, domain.CodeNotAuthorized, msg)
			return
		}
		c.Next()
	}
}
