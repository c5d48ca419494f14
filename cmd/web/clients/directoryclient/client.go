package directoryclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"district-growth/cmd/web/httpclient"
)

// Client is a thin client for the directory REST API.
//
// Every JSON endpoint answers with {success, message, data}. success:false is
// an application failure and is returned as *APIError carrying the message to
// show the visitor. Transport failures and unexpected statuses are plain errors.
//
// Visitor cookies travel in the request context (httpclient.WithCookieJar).
type Client struct {
	base *httpclient.BaseClient
}

var (
	ErrNotFound = fmt.Errorf("resource not found")
	// ErrInvalidExportType is returned before any call for unknown export types.
	ErrInvalidExportType = errors.New("Invalid data type")
)

// APIError is a success:false answer.
type APIError struct {
	Op      string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// HTTPError is a non-2xx answer that did not carry an envelope.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("status=%d body=%s", e.StatusCode, e.Body)
}

// Message returns the text to show for err: the API's own message for an
// *APIError, fallback otherwise.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func New(base *httpclient.BaseClient) *Client {
	return &Client{base: base}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Admin   json.RawMessage `json:"admin"`
}

const maxBody = 8 << 20

func (c *Client) call(ctx context.Context, op, method, relPath string, query url.Values, in any) (*envelope, error) {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(buf)
	}

	req, err := c.base.NewRequest(ctx, method, relPath, query, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory-service %s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("directory-service %s: read body: %w", op, err)
	}
	return decodeEnvelope(op, resp.StatusCode, raw)
}

func decodeEnvelope(op string, status int, raw []byte) (*envelope, error) {
	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	switch {
	case status == http.StatusNotFound:
		return nil, ErrNotFound
	case decodeErr == nil && !env.Success && env.Message != "":
		return nil, &APIError{Op: op, Status: status, Message: env.Message}
	case status < 200 || status > 299:
		return nil, fmt.Errorf("directory-service %s: %w", op, &HTTPError{StatusCode: status, Body: snippet(raw)})
	case decodeErr != nil:
		return nil, fmt.Errorf("directory-service %s: decode: %w", op, decodeErr)
	case !env.Success:
		return nil, &APIError{Op: op, Status: status, Message: "Request failed"}
	}
	return &env, nil
}

func snippet(raw []byte) string {
	if len(raw) > 2048 {
		raw = raw[:2048]
	}
	return string(raw)
}

func (c *Client) get(ctx context.Context, op, relPath string, query url.Values, out any) error {
	env, err := c.call(ctx, op, http.MethodGet, relPath, query, nil)
	if err != nil {
		return err
	}
	return decodeData(op, env.Data, out)
}

// post sends in and returns the API's success message.
func (c *Client) post(ctx context.Context, op, relPath string, in any) (string, error) {
	env, err := c.call(ctx, op, http.MethodPost, relPath, nil, in)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

func decodeData(op string, data json.RawMessage, out any) error {
	if out == nil || len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("directory-service %s: decode data: %w", op, err)
	}
	return nil
}

func listQuery(page int, pairs ...string) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(max(page, 1)))
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			q.Set(pairs[i], pairs[i+1])
		}
	}
	return q
}

// -------------------- Public --------------------

func (c *Client) Login(ctx context.Context, cred Credentials) (string, error) {
	return c.post(ctx, "Login", "/api/login", cred)
}

// Logout clears the visitor's login on the directory side.
func (c *Client) Logout(ctx context.Context) error {
	return c.visit(ctx, "Logout", "/logout")
}

func (c *Client) SendOTP(ctx context.Context, in OTPRequest) (string, error) {
	if in.Type == "" {
		in.Type = "both"
	}
	return c.post(ctx, "SendOTP", "/api/send-otp", in)
}

func (c *Client) VerifyOTP(ctx context.Context, in OTPRequest) (string, error) {
	return c.post(ctx, "VerifyOTP", "/api/verify-otp", in)
}

func (c *Client) Register(ctx context.Context, in RegisterRequest) (string, error) {
	return c.post(ctx, "Register", "/api/register", in)
}

func (c *Client) SaveProfile(ctx context.Context, in ProfileRequest) (string, error) {
	return c.post(ctx, "SaveProfile", "/api/profile", in)
}

func (c *Client) Search(ctx context.Context, in SearchQuery) ([]Profile, error) {
	q := url.Values{}
	for k, v := range map[string]string{
		"profession": in.Profession,
		"location":   in.Location,
		"education":  in.Education,
		"experience": in.Experience,
	} {
		if v != "" {
			q.Set(k, v)
		}
	}
	var out []Profile
	if err := c.get(ctx, "Search", "/api/search", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Analytics(ctx context.Context) (Analytics, error) {
	var out Analytics
	err := c.get(ctx, "Analytics", "/api/analytics", nil, &out)
	return out, err
}

func (c *Client) SubmitFeedback(ctx context.Context, in FeedbackRequest) (string, error) {
	return c.post(ctx, "SubmitFeedback", "/api/feedback", in)
}

// -------------------- Admin --------------------

func (c *Client) AdminLogin(ctx context.Context, cred Credentials) (string, error) {
	return c.post(ctx, "AdminLogin", "/api/admin-login", cred)
}

func (c *Client) AdminLogout(ctx context.Context) error {
	return c.visit(ctx, "AdminLogout", "/admin/logout")
}

// AdminSession returns the logged-in admin. A visitor without an admin login
// gets an *APIError.
func (c *Client) AdminSession(ctx context.Context) (Admin, error) {
	env, err := c.call(ctx, "AdminSession", http.MethodGet, "/api/admin-session", nil, nil)
	if err != nil {
		return Admin{}, err
	}
	var out Admin
	if err := decodeData("AdminSession", env.Admin, &out); err != nil {
		return Admin{}, err
	}
	return out, nil
}

func (c *Client) AdminStats(ctx context.Context) (Stats, error) {
	var out Stats
	err := c.get(ctx, "AdminStats", "/api/admin-stats", nil, &out)
	return out, err
}

func (c *Client) AdminAnalytics(ctx context.Context) (AdminAnalytics, error) {
	var out AdminAnalytics
	err := c.get(ctx, "AdminAnalytics", "/api/admin-analytics", nil, &out)
	return out, err
}

func (c *Client) AdminUsers(ctx context.Context, page int, search, status string) (UserPage, error) {
	var out UserPage
	err := c.get(ctx, "AdminUsers", "/api/admin-users", listQuery(page, "search", search, "filter", status), &out)
	return out, err
}

func (c *Client) AdminProfiles(ctx context.Context, page int, search, profession string) (ProfilePage, error) {
	var out ProfilePage
	err := c.get(ctx, "AdminProfiles", "/api/admin-profiles", listQuery(page, "search", search, "profession", profession), &out)
	return out, err
}

func (c *Client) AdminFeedback(ctx context.Context, page int) (FeedbackPage, error) {
	var out FeedbackPage
	err := c.get(ctx, "AdminFeedback", "/api/admin-feedback", listQuery(page), &out)
	return out, err
}

func (c *Client) UpdateUserStatus(ctx context.Context, in StatusUpdate) (string, error) {
	return c.post(ctx, "UpdateUserStatus", "/api/admin-update-user-status", in)
}

// ExportTypes are the data sets the API can export.
var ExportTypes = []string{"users", "profiles", "feedback"}

func ValidExportType(t string) bool {
	for _, v := range ExportTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Export is a CSV download relayed from the API. The caller must close Body.
type Export struct {
	Body        io.ReadCloser
	ContentType string
	Length      int64
}

// Export opens the CSV stream for dataType. The bytes are not inspected.
func (c *Client) Export(ctx context.Context, dataType string) (*Export, error) {
	if !ValidExportType(dataType) {
		return nil, ErrInvalidExportType
	}
	req, err := c.base.NewRequest(ctx, http.MethodGet, path.Join("/api/admin-export", dataType), nil, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.base.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory-service Export: %w", err)
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if resp.StatusCode == http.StatusOK && mediaType != "application/json" {
		contentType := resp.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "text/csv"
		}
		return &Export{Body: resp.Body, ContentType: contentType, Length: resp.ContentLength}, nil
	}

	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if _, err := decodeEnvelope("Export", resp.StatusCode, raw); err != nil {
		return nil, err
	}
	return nil, &APIError{Op: "Export", Status: resp.StatusCode, Message: "Export failed"}
}

// visit calls a page route that only mutates the upstream session and redirects.
func (c *Client) visit(ctx context.Context, op, relPath string) error {
	req, err := c.base.NewRequest(ctx, http.MethodGet, relPath, nil, nil)
	if err != nil {
		return err
	}
	resp, err := c.base.Do(req)
	if err != nil {
		return fmt.Errorf("directory-service %s: %w", op, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("directory-service %s: %w", op, &HTTPError{StatusCode: resp.StatusCode})
	}
	return nil
}

// IsUnauthorized reports whether err is the API refusing an admin call.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	msg := strings.ToLower(apiErr.Message)
	return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden ||
		strings.Contains(msg, "not authorized") || strings.Contains(msg, "not authenticated")
}
