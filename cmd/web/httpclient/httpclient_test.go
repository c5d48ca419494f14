package httpclient

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"district-growth/cmd/web/trace"
)

func TestNewRequestRejectsQueryInPath(t *testing.T) {
	c := NewBaseClient("http://upstream:5000")

	_, err := c.NewRequest(context.Background(), http.MethodGet, "/api/search?x=1", nil, nil)
	require.Error(t, err)
}

func TestNewRequestJoinsPathAndQuery(t *testing.T) {
	c := NewBaseClient("http://upstream:5000/base")

	req, err := c.NewRequest(context.Background(), http.MethodGet, "/api/admin-users", url.Values{"page": {"2"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://upstream:5000/base/api/admin-users?page=2", req.URL.String())
}

func TestRoundTripPropagatesTraceAndRelaysCookies(t *testing.T) {
	var gotRequestID, gotSpan, gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get("X-Request-Id")
		gotSpan = r.Header.Get("X-Span-Id")
		if ck, err := r.Cookie("session"); err == nil {
			gotCookie = ck.Value
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "issued-by-upstream", Path: "/"})
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	c := NewBaseClient(srv.URL)
	ctx, _ := trace.Begin(context.Background(), "req-42")
	ctx = WithCookieJar(ctx, jar)

	req, err := c.NewRequest(ctx, http.MethodPost, "/api/login", nil, strings.NewReader(`{"username":"a","password":"secret"}`))
	require.NoError(t, err)
	resp, err := c.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "req-42", gotRequestID)
	assert.Equal(t, "1", gotSpan)
	assert.Empty(t, gotCookie)

	req, err = c.NewRequest(ctx, http.MethodGet, "/api/profile", nil, nil)
	require.NoError(t, err)
	resp, err = c.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "2", gotSpan)
	assert.Equal(t, "issued-by-upstream", gotCookie)
}

func TestRedactBodyMasksCredentials(t *testing.T) {
	out := redactBody([]byte(`{"username":"asha","password":"hunter2","otp":"123456"}`))

	assert.Contains(t, out, `"username":"asha"`)
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "123456")
	assert.Equal(t, "", redactBody([]byte("not json")))
}
