package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carpool/internal/auth"
	"carpool/internal/domain"
)

const (
	principalKey = "principal"
	userRoleKey  = "userRole"
)

type PrincipalResolver interface {
	Resolve(token string) (domain.Principal, error)
}

// Auth resolves the caller once per request from the bearer token and stores
// the Principal on the context. Websocket upgrades may pass ?token= instead,
// since browsers cannot set headers on them.
func Auth(resolver PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := auth.BearerToken(c.GetHeader("Authorization"))
		if token == "" && c.IsWebsocket() {
			token = c.Query("token")
		}
		if token == "" {
			abortJSON(c, http.StatusUnauthorized, domain.CodeUnauthenticated, "missing bearer token")
			return
		}

		p, err := resolver.Resolve(token)
		if err != nil {
			abortJSON(c, http.StatusUnauthorized, domain.CodeUnauthenticated, "invalid or expired token")
			return
		}

		c.Set(principalKey, p)
		c.Set(userRoleKey, string(p.Role))
		c.Next()
	}
}

// GetPrincipal returns the caller resolved by Auth.
func GetPrincipal(c *gin.Context) (domain.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok
}

func abortJSON(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":      message,
		"code":       code,
		"request_id": GetRequestID(c),
		"message":    message,
	})
}
