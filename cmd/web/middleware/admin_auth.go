package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"district-growth/cmd/internal/logger"
	"district-growth/cmd/web/clients/directoryclient"
	"district-growth/cmd/web/session"
	"district-growth/cmd/web/trace"
)

const adminKey = "admin"

// AdminLookup resolves the admin logged in for the current visitor.
type AdminLookup interface {
	CurrentAdmin(ctx context.Context) (directoryclient.Admin, error)
}

// AdminRequired lets a request through only when the directory API confirms an
// admin session. Pages are redirected to the admin login, fragments get 401.
func AdminRequired(lookup AdminLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, err := lookup.CurrentAdmin(c.Request.Context())
		if err != nil {
			logger.DebugWithFields("admin session rejected", logger.Fields{
				"path":       c.Request.URL.Path,
				"error":      err.Error(),
				"request_id": trace.RequestIDFromContext(c.Request.Context()),
			})
			if strings.HasPrefix(c.Request.URL.Path, "/admin/fragments/") {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			if !directoryclient.IsUnauthorized(err) {
				session.Current(c).Alert.Error(directoryclient.Message(err, "Could not verify the admin session."))
			}
			c.Redirect(http.StatusSeeOther, "/admin/login")
			c.Abort()
			return
		}
		c.Set(adminKey, admin)
		c.Next()
	}
}

// CurrentAdmin returns the admin stored by AdminRequired.
func CurrentAdmin(c *gin.Context) (directoryclient.Admin, bool) {
	v, ok := c.Get(adminKey)
	if !ok {
		return directoryclient.Admin{}, false
	}
	admin, ok := v.(directoryclient.Admin)
	return admin, ok
}
