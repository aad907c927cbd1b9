package handlers

import (
	"net/http"
	"sync"

	intconfig "carpool/internal/config"
	intdb "carpool/internal/db"

	"github.com/gin-gonic/gin"
)

var (
	routerMu sync.RWMutex
	router   *gin.Engine
)

// SetRouter stores the active gin engine for /api/routes.
func SetRouter(r *gin.Engine) {
	routerMu.Lock()
	defer routerMu.Unlock()
	router = r
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "carpool booking engine running"})
}

// DBCheck reports whether the schema the engine needs is present. The
// in-memory backend has no database and reports as such.
func DBCheck(c *gin.Context) {
	db := intconfig.DB
	if db == nil {
		c.JSON(http.StatusOK, gin.H{"message": "no database configured", "backend": intconfig.StoreMemory})
		return
	}
	if err := intconfig.EnsureDB(c.Request.Context()); err != nil {
		RespondError(c, http.StatusServiceUnavailable, "database unreachable", err)
		return
	}
	if missing := intdb.MissingTables(c.Request.Context(), db, "rides", "bookings"); len(missing) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "schema incomplete", "missing_tables": missing})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "database OK", "backend": intconfig.StoreMySQL})
}

func Routes(c *gin.Context) {
	routerMu.RLock()
	r := router
	routerMu.RUnlock()
	if r == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "router not ready"})
		return
	}

	routes := r.Routes()
	out := make([]gin.H, 0, len(routes))
	for _, rt := range routes {
		out = append(out, gin.H{
			"method":  rt.Method,
			"path":    rt.Path,
			"handler": rt.Handler,
		})
	}
	c.JSON(http.StatusOK, gin.H{"routes": out})
}
