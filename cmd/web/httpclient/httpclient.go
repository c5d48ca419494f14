package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"district-growth/cmd/internal/logger"
	"district-growth/cmd/web/trace"
)

// Config holds the settings shared by every upstream client.
type Config struct {
	Timeout time.Duration
}

type jarKey struct{}

// WithCookieJar scopes upstream cookies to one visitor. Requests made with the
// returned context send the jar's cookies and store any Set-Cookie replies in it.
func WithCookieJar(ctx context.Context, jar http.CookieJar) context.Context {
	if jar == nil {
		return ctx
	}
	return context.WithValue(ctx, jarKey{}, jar)
}

func jarFromContext(ctx context.Context) http.CookieJar {
	jar, _ := ctx.Value(jarKey{}).(http.CookieJar)
	return jar
}

var sensitiveKeys = map[string]struct{}{
	"password":         {},
	"confirm_password": {},
	"confirmPassword":  {},
	"otp":              {},
}

// redactBody masks credentials in JSON bodies before they reach the log.
func redactBody(body []byte) string {
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return ""
	}
	for k := range m {
		if _, ok := sensitiveKeys[k]; ok {
			m[k] = "***"
		}
	}
	out, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	const maxBodyLog = 1024
	if len(out) > maxBodyLog {
		out = out[:maxBodyLog]
	}
	return string(out)
}

// loggingRoundTripper logs every outbound call, propagates X-Request-Id/X-Span-Id
// and relays cookies through the visitor jar carried by the request context.
type loggingRoundTripper struct {
	inner http.RoundTripper
}

func (l *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	ctx := req.Context()
	requestID, spanID := trace.UpstreamCall(ctx)
	req.Header.Set("X-Request-Id", requestID)
	req.Header.Set("X-Span-Id", spanID)

	jar := jarFromContext(ctx)
	if jar != nil {
		for _, ck := range jar.Cookies(req.URL) {
			req.AddCookie(ck)
		}
	}

	var bodySnippet string
	if req.Body != nil {
		if bodyBytes, err := io.ReadAll(req.Body); err == nil {
			if len(bodyBytes) > 0 {
				bodySnippet = redactBody(bodyBytes)
			}
			req.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}
	}

	resp, err := l.inner.RoundTrip(req)
	duration := time.Since(start)
	fields := logger.Fields{
		"method":     req.Method,
		"url":        req.URL.Path,
		"query":      req.URL.RawQuery,
		"duration":   duration.String(),
		"request_id": requestID,
		"span_id":    spanID,
	}
	if bodySnippet != "" {
		fields["body"] = bodySnippet
	}
	if err != nil {
		fields["error"] = err.Error()
		logger.ErrorWithFields("httpclient request failed", fields)
		return nil, err
	}

	if jar != nil {
		if cookies := resp.Cookies(); len(cookies) > 0 {
			jar.SetCookies(req.URL, cookies)
		}
	}

	fields["status"] = resp.StatusCode
	logger.DebugWithFields("httpclient request success", fields)
	return resp, nil
}

// BaseClient ties an http.Client to a base URL and builds requests against it.
type BaseClient struct {
	HTTPClient *http.Client
	BaseURL    string
}

func NewBaseClient(baseURL string) *BaseClient {
	return &BaseClient{
		HTTPClient: NewDefault(),
		BaseURL:    baseURL,
	}
}

// NewBaseClientWithClient uses httpClient, or the default client when nil.
func NewBaseClientWithClient(httpClient *http.Client, baseURL string) *BaseClient {
	if httpClient == nil {
		httpClient = NewDefault()
	}
	return &BaseClient{
		HTTPClient: httpClient,
		BaseURL:    baseURL,
	}
}

// NewRequest joins relPath onto BaseURL. relPath must not carry a query string;
// pass query parameters through query instead.
func (c *BaseClient) NewRequest(ctx context.Context, method, relPath string, query url.Values, body io.Reader) (*http.Request, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.Contains(relPath, "?") {
		return nil, fmt.Errorf("httpclient: relPath must not contain query string (use query parameter instead): %s", relPath)
	}
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, err
	}
	if relPath != "" {
		base.Path = path.Join(base.Path, relPath)
	}
	if query != nil {
		base.RawQuery = query.Encode()
	}
	return http.NewRequestWithContext(ctx, method, base.String(), body)
}

func (c *BaseClient) Do(req *http.Request) (*http.Response, error) {
	return c.HTTPClient.Do(req)
}

// New builds an http.Client with the logging transport. A zero Timeout means 10s.
func New(cfg Config) *http.Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: &loggingRoundTripper{inner: http.DefaultTransport},
		// Redirects from the upstream API are surfaced to the caller as-is.
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func NewDefault() *http.Client {
	return New(Config{})
}
