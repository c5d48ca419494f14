package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"

	"district-growth/cmd/internal/logger"
	"district-growth/cmd/web/trace"
)

// CSRF guards every unsafe request with a gorilla/csrf token. key must be 32
// bytes. Handlers embed the token with csrf.TemplateField.
func CSRF(key []byte, secure bool) gin.HandlerFunc {
	protect := csrf.Protect(key,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(csrfFailed)),
	)
	return func(c *gin.Context) {
		passed := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
			c.Next()
		})
		r := c.Request
		if !secure {
			r = csrf.PlaintextHTTPRequest(r)
		}
		protect(next).ServeHTTP(c.Writer, r)
		if !passed {
			c.Abort()
		}
	}
}

func csrfFailed(w http.ResponseWriter, r *http.Request) {
	fields := logger.Fields{
		"path":       r.URL.Path,
		"request_id": trace.RequestIDFromContext(r.Context()),
	}
	if reason := csrf.FailureReason(r); reason != nil {
		fields["reason"] = reason.Error()
	}
	logger.WarnWithFields("csrf check failed", fields)
	http.Error(w, "Your form has expired. Please reload the page and try again.", http.StatusForbidden)
}
