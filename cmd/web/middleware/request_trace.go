package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"district-growth/cmd/internal/logger"
	"district-growth/cmd/web/trace"
)

const headerRequestID = "X-Request-Id"

const maxBodyLog = 1024

// secretFields are form fields never written to the log.
var secretFields = []string{"password", "confirm_password", "otp", "gorilla.csrf.Token"}

// RequestTrace gives every inbound request a request id, echoes it as a
// response header, and logs the finished request with its form body masked and
// the number of directory calls it made.
func RequestTrace() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		req := c.Request

		ctx, tr := trace.Begin(req.Context(), req.Header.Get(headerRequestID))
		c.Request = req.WithContext(ctx)
		req = c.Request
		requestID := tr.ID

		c.Request.Header.Set(headerRequestID, requestID)
		c.Writer.Header().Set(headerRequestID, requestID)

		bodySnippet := readFormSnippet(c)

		c.Next()

		fields := logger.Fields{
			"method":         req.Method,
			"path":           req.URL.Path,
			"status":         c.Writer.Status(),
			"duration":       time.Since(start).String(),
			"request_id":     requestID,
			"upstream_calls": tr.UpstreamCalls(),
		}
		if q := req.URL.Query(); len(q) > 0 {
			fields["query_params"] = map[string][]string(q)
		}
		if bodySnippet != "" {
			fields["body"] = bodySnippet
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}
		logger.InfoWithFields("completed request", fields)
	}
}

// readFormSnippet reads a urlencoded body for logging and restores it for the handler.
func readFormSnippet(c *gin.Context) string {
	req := c.Request
	if req.Body == nil || req.ContentLength == 0 || req.Method != http.MethodPost {
		return ""
	}
	if !strings.HasPrefix(req.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		return ""
	}
	raw, err := io.ReadAll(req.Body)
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	return maskForm(raw)
}

func maskForm(raw []byte) string {
	values, err := url.ParseQuery(string(raw))
	if err != nil {
		return ""
	}
	for _, key := range secretFields {
		if values.Has(key) {
			values.Set(key, "***")
		}
	}
	out := values.Encode()
	if len(out) > maxBodyLog {
		out = out[:maxBodyLog]
	}
	return out
}
