package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"district-growth/cmd/internal/logger"
	"district-growth/cmd/web/httpclient"
	"district-growth/cmd/web/session"
	"district-growth/cmd/web/trace"
)

// CookieOptions controls the visitor cookie.
type CookieOptions struct {
	Name   string
	Secure bool
}

// VisitorSession loads the visitor named by the cookie, or starts a new one, and
// binds its upstream cookie jar to the request context so every directory call
// made while handling the request carries the visitor's API session.
func VisitorSession(store *session.Store, opts CookieOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(opts.Name)
		sess, ok := store.Get(id)
		if !ok {
			var err error
			sess, err = store.Create()
			if err != nil {
				logger.ErrorWithFields("failed to start visitor session", logger.Fields{
					"error":      err.Error(),
					"request_id": trace.RequestIDFromContext(c.Request.Context()),
				})
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
		}
		if sess.ID != id {
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     opts.Name,
				Value:    sess.ID,
				Path:     "/",
				HttpOnly: true,
				Secure:   opts.Secure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		session.Set(c, sess)
		c.Request = c.Request.WithContext(httpclient.WithCookieJar(c.Request.Context(), sess.CookieJar()))
		c.Next()
	}
}
