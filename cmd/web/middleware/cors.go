package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

// CORS lets the listed origins call the fragment and status endpoints with the
// visitor cookie. Preflight requests end here.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	h := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Content-Type", "X-Requested-With", headerRequestID},
		ExposedHeaders:   []string{headerRequestID, HeaderListOutcome},
		AllowCredentials: true,
	})
	return func(c *gin.Context) {
		h.HandlerFunc(c.Writer, c.Request)
		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// HeaderListOutcome reports how a list fragment load ended.
const HeaderListOutcome = "X-List-Outcome"
