package handlers_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"district-growth/cmd/web/clients/directoryclient"
	"district-growth/cmd/web/dto"
	"district-growth/cmd/web/handlers"
	"district-growth/cmd/web/registration"
	"district-growth/cmd/web/router"
	"district-growth/cmd/web/services"
	"district-growth/cmd/web/session"
	"district-growth/config"
)

// fakeDirectory is an in-memory directory API.
type fakeDirectory struct {
	mu           sync.Mutex
	calls        map[string]int
	usersPages   []int
	statusUpdate directoryclient.StatusUpdate
	profile      directoryclient.ProfileRequest

	slowStarted chan struct{}
	release     chan struct{}
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{calls: map[string]int{}, slowStarted: make(chan struct{}, 1), release: make(chan struct{})}
}

func (f *fakeDirectory) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

func (f *fakeDirectory) savedProfile() directoryclient.ProfileRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profile
}

func (f *fakeDirectory) lastStatusUpdate() directoryclient.StatusUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusUpdate
}

func (f *fakeDirectory) requestedUserPages() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.usersPages...)
}

func ok(w http.ResponseWriter, message string, data any) {
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "message": message, "data": data})
}

func refuse(w http.ResponseWriter, message string) {
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": message})
}

func upstreamSession(r *http.Request) string {
	ck, err := r.Cookie("session")
	if err != nil {
		return ""
	}
	return ck.Value
}

func (f *fakeDirectory) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.calls[r.URL.Path]++
	f.mu.Unlock()

	var body map[string]any
	if r.Method == http.MethodPost {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		switch r.URL.Path {
		case "/api/admin-update-user-status":
			f.mu.Lock()
			_ = json.Unmarshal(raw, &f.statusUpdate)
			f.mu.Unlock()
		case "/api/profile":
			f.mu.Lock()
			_ = json.Unmarshal(raw, &f.profile)
			f.mu.Unlock()
		}
	}

	switch r.URL.Path {
	case "/api/login":
		if body["password"] != "secret" {
			refuse(w, "Incorrect username/password!")
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "user", Path: "/"})
		ok(w, "Login successful!", nil)
	case "/api/profile":
		if upstreamSession(r) != "user" {
			refuse(w, "Please login first")
			return
		}
		ok(w, "Profile updated successfully!", nil)
	case "/api/send-otp":
		ok(w, "OTP sent successfully", nil)
	case "/api/verify-otp":
		if body["otp"] != "123456" {
			refuse(w, "Invalid or expired OTP")
			return
		}
		ok(w, "OTP verified successfully", nil)
	case "/api/register":
		ok(w, "Registration successful!", nil)
	case "/api/search":
		switch r.URL.Query().Get("profession") {
		case "Nobody":
			ok(w, "", []map[string]any{})
			return
		case "Broken":
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		results := make([]map[string]any, 25)
		for i := range results {
			results[i] = map[string]any{"id": i + 1, "full_name": fmt.Sprintf("P%d", i+1), "username": fmt.Sprintf("p%d", i+1), "availability": "Available"}
		}
		ok(w, "", results)
	case "/api/analytics":
		ok(w, "", map[string]any{"profession_stats": []map[string]any{{"profession": "Engineer", "count": 3}}})
	case "/api/feedback":
		ok(w, "Thank you for your feedback!", nil)
	case "/api/admin-login":
		if body["password"] != "secret" {
			refuse(w, "Invalid admin credentials!")
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "admin", Path: "/"})
		ok(w, "Admin login successful!", nil)
	case "/api/admin-session":
		if upstreamSession(r) != "admin" {
			refuse(w, "Not authenticated")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "admin": map[string]any{
			"id": 1, "username": "root", "full_name": "Site Admin", "role": "super_admin",
		}})
	case "/api/admin-stats":
		ok(w, "", map[string]any{"total_users": 1200, "total_profiles": 800, "today_registrations": 4, "total_feedback": 9})
	case "/api/admin-users":
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		f.mu.Lock()
		f.usersPages = append(f.usersPages, page)
		f.mu.Unlock()
		switch r.URL.Query().Get("search") {
		case "slow":
			f.slowStarted <- struct{}{}
			<-r.Context().Done()
			return
		case "hold":
			f.slowStarted <- struct{}{}
			<-f.release
		}
		ok(w, "", map[string]any{
			"users": []map[string]any{{"id": 4, "username": "asha", "email": "a@example.com", "status": "active", "email_verified": 1, "mobile_verified": 0}},
			"pagination": map[string]any{"current_page": page, "total_pages": 2, "total_items": 21, "start_item": 1, "end_item": 20},
		})
	case "/api/admin-profiles":
		if r.URL.Query().Get("profession") == "Broken" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		ok(w, "", map[string]any{
			"profiles":    []map[string]any{{"id": 7, "full_name": "Asha", "profession": "Engineer"}},
			"professions": []map[string]any{{"profession": "Engineer", "count": 4}},
			"pagination":  map[string]any{"current_page": 1, "total_pages": 1, "total_items": 1, "start_item": 1, "end_item": 1},
		})
	case "/api/admin-update-user-status":
		ok(w, "User status updated successfully!", nil)
	case "/api/admin-export/users":
		w.Header().Set("Content-Type", "text/csv")
		_, _ = io.WriteString(w, "id,username\n4,asha\n")
	case "/api/admin-export/profiles":
		w.WriteHeader(http.StatusInternalServerError)
		refuse(w, "database unavailable")
	case "/logout", "/admin/logout":
		http.Redirect(w, r, "/", http.StatusFound)
	default:
		http.NotFound(w, r)
	}
}

// -------------------- Harness --------------------

type visitor struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func newVisitor(t *testing.T, h http.Handler) *visitor {
	return &visitor{t: t, handler: h, cookies: map[string]*http.Cookie{}}
}

func (v *visitor) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	v.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, ck := range v.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	v.handler.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		v.cookies[ck.Name] = ck
	}
	return w
}

func (v *visitor) get(target string) *httptest.ResponseRecorder {
	return v.do(http.MethodGet, target, nil)
}

func (v *visitor) post(target string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	return v.do(http.MethodPost, target, form)
}

func doc(t *testing.T, w *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(w.Body.String()))
	require.NoError(t, err)
	return d
}

func alertText(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return strings.TrimSpace(doc(t, w).Find("#alerts .alert").Text())
}

func newServer(t *testing.T, tweak func(*config.AppConfig)) (*fakeDirectory, *visitor, *session.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	api := newFakeDirectory()
	upstream := httptest.NewServer(api)
	t.Cleanup(upstream.Close)

	cfg := config.Default()
	cfg.Directory.BaseURL = upstream.URL
	if tweak != nil {
		tweak(&cfg)
	}
	store := session.NewStore(16)
	t.Cleanup(store.Close)

	r, err := router.New(cfg, store)
	require.NoError(t, err)
	return api, newVisitor(t, r), store
}

func adminVisitor(t *testing.T) (*fakeDirectory, *visitor) {
	t.Helper()
	api, v, _ := newServer(t, nil)
	w := v.post("/admin/login", url.Values{"username": {"root"}, "password": {"secret"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/admin/dashboard", w.Header().Get("Location"))
	return api, v
}

// -------------------- Public --------------------

func TestHealth(t *testing.T) {
	_, v, store := newServer(t, nil)
	v.get("/")

	w := v.get("/health")

	require.Equal(t, http.StatusOK, w.Code)
	var got dto.HealthDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, dto.HealthDTO{Status: "ok", Visitors: store.Len()}, got)
	assert.Equal(t, 1, got.Visitors)
}

func TestVisitorCookieIsIssuedOnce(t *testing.T) {
	_, v, store := newServer(t, nil)

	first := v.get("/")
	require.Equal(t, http.StatusOK, first.Code)
	require.NotEmpty(t, first.Result().Cookies())
	assert.NotEmpty(t, first.Header().Get("X-Request-Id"))

	second := v.get("/search")
	assert.Empty(t, second.Result().Cookies())
	assert.Equal(t, 1, store.Len())
}

func TestLoginThenSaveProfile(t *testing.T) {
	api, v, _ := newServer(t, nil)

	w := v.get("/profile")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = v.post("/login", url.Values{"username": {"asha"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Incorrect username/password!", alertText(t, w))

	w = v.post("/login", url.Values{"username": {"asha"}, "password": {"secret"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/profile", w.Header().Get("Location"))

	w = v.get("/profile")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Login successful!", alertText(t, w))

	w = v.post("/profile", url.Values{"full_name": {"Asha"}, "experience": {"many"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, services.ErrInvalidExperience.Error(), alertText(t, w))
	assert.Zero(t, api.count("/api/profile"))

	w = v.post("/profile", url.Values{"full_name": {"Asha"}, "experience": {"5"}, "availability": {"Available"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, 5, api.savedProfile().Experience)
	assert.Equal(t, "Profile updated successfully!", alertText(t, v.get("/profile")))

	w = v.get("/logout")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, http.StatusSeeOther, v.get("/profile").Code)
}

func TestSearchPagesAndConnect(t *testing.T) {
	api, v, _ := newServer(t, nil)

	w := v.get("/search")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, api.count("/api/search"))
	assert.Equal(t, 0, doc(t, w).Find(".result-card").Length())

	w = v.get("/search?profession=Engineer&page=2")
	require.Equal(t, http.StatusOK, w.Code)
	d := doc(t, w)
	assert.Equal(t, 5, d.Find(".result-card").Length())
	assert.Equal(t, "P21", d.Find(".result-name").First().Text())
	prev, _ := d.Find(".pagination a").First().Attr("href")
	assert.Equal(t, "/search?page=1&profession=Engineer", prev)

	w = v.post("/connect", url.Values{"username": {"p21"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "Connection request sent to p21!", alertText(t, v.get("/search")))
}

// pageLinkTarget joins a list container's fragment path with the query of its
// last pagination link, the way the page script does.
func pageLinkTarget(t *testing.T, d *goquery.Document, container string) string {
	t.Helper()
	frag, ok := d.Find(container).Attr("data-fragment")
	require.True(t, ok)
	href, ok := d.Find(container + " .pagination a").Last().Attr("href")
	require.True(t, ok)
	u, err := url.Parse(href)
	require.NoError(t, err)
	return frag + "?" + u.RawQuery
}

func TestSearchPagingLinkLoadsItsPageInPlace(t *testing.T) {
	_, v, _ := newServer(t, nil)
	d := doc(t, v.get("/search?profession=Engineer"))
	assert.Equal(t, 20, d.Find("#searchResults .result-card").Length())

	target := pageLinkTarget(t, d, "#searchResults")
	assert.Equal(t, "/search/results?page=2&profession=Engineer", target)

	w := v.get(target)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "rendered", w.Header().Get("X-List-Outcome"))
	frag := doc(t, w)
	assert.Equal(t, 5, frag.Find(".result-card").Length())
	assert.Equal(t, "P21", frag.Find(".result-name").First().Text())

	assert.Equal(t, http.StatusNoContent, v.get("/search/results").Code)
}

func TestSearchEmptyAndFailedResults(t *testing.T) {
	_, v, _ := newServer(t, nil)

	w := v.get("/search?profession=Nobody")
	require.Equal(t, http.StatusOK, w.Code)
	d := doc(t, w)
	assert.Equal(t, 0, d.Find(".result-card").Length())
	assert.Equal(t, 0, d.Find("#searchResults .pagination").Length())
	assert.Equal(t, "No professionals found matching your criteria.", d.Find("#searchResults .loading-placeholder").Text())
	assert.Empty(t, alertText(t, w))

	w = v.get("/search?profession=Broken")
	require.Equal(t, http.StatusOK, w.Code)
	d = doc(t, w)
	assert.Equal(t, "Search failed. Please try again.", d.Find("#searchResults .loading-placeholder").Text())
	assert.Equal(t, "Search failed. Please try again.", alertText(t, w))
}

func TestAnalyticsPage(t *testing.T) {
	_, v, _ := newServer(t, nil)

	d := doc(t, v.get("/analytics"))

	assert.Equal(t, "3", d.Find(".stat-number").First().Text())
	assert.Equal(t, 4, d.Find(".chart-container").Length())
}

func TestFeedbackValidatesLocally(t *testing.T) {
	api, v, _ := newServer(t, nil)

	w := v.post("/feedback", url.Values{"name": {"Ravi"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Please fill in all required fields.", alertText(t, w))
	assert.Zero(t, api.count("/api/feedback"))

	w = v.post("/feedback", url.Values{
		"name": {"Ravi"}, "email": {"r@example.com"}, "subject": {"Roads"},
		"message": {"Fix them"}, "feedback_type": {"suggestion"}, "rating": {"4"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "Thank you for your feedback!", alertText(t, v.get("/feedback")))
}

// -------------------- Registration --------------------

func registrationForm(extra map[string]string) url.Values {
	form := url.Values{
		"username": {"asha"},
		"email":    {"a@example.com"},
		"mobile":   {"+919876543210"},
	}
	for k, val := range extra {
		form.Set(k, val)
	}
	return form
}

func registrationStatus(t *testing.T, v *visitor) (int, dto.RegistrationStatusDTO) {
	t.Helper()
	w := v.get("/register/status")
	var got dto.RegistrationStatusDTO
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	}
	return w.Code, got
}

func TestRegistrationFlow(t *testing.T) {
	api, v, _ := newServer(t, nil)

	d := doc(t, v.get("/register"))
	_, disabled := d.Find("#sendOtpBtn").Attr("disabled")
	assert.False(t, disabled)
	assert.Equal(t, "Send OTP", strings.TrimSpace(d.Find("#sendOtpBtn").Text()))

	w := v.post("/register/send-otp", registrationForm(map[string]string{"mobile": "+9198765432"}))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Please enter mobile in correct format: +91xxxxxxxxxx", alertText(t, w))
	assert.Zero(t, api.count("/api/send-otp"))

	w = v.post("/register/send-otp", registrationForm(nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OTP sent to your email and mobile!", alertText(t, w))
	d = doc(t, w)
	assert.Equal(t, 1, d.Find("#otpSection").Length())
	_, disabled = d.Find("#sendOtpBtn").Attr("disabled")
	assert.True(t, disabled)

	code, status := registrationStatus(t, v)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "otp_sent", status.State)
	assert.False(t, status.CanSend)
	assert.Positive(t, status.Remaining)
	assert.True(t, strings.HasPrefix(status.ResendLabel, "Resend in "))

	w = v.post("/register", registrationForm(map[string]string{"password": "a", "confirm_password": "b"}))
	assert.Equal(t, "Passwords do not match!", alertText(t, w))
	w = v.post("/register", registrationForm(map[string]string{"password": "pw", "confirm_password": "pw"}))
	assert.Equal(t, "Please verify your OTP first!", alertText(t, w))
	assert.Zero(t, api.count("/api/register"))

	w = v.post("/register/verify-otp", registrationForm(map[string]string{"otp": "12345"}))
	assert.Equal(t, "Please enter a valid 6-digit OTP.", alertText(t, w))
	assert.Zero(t, api.count("/api/verify-otp"))

	w = v.post("/register/verify-otp", registrationForm(map[string]string{"otp": "000000"}))
	assert.Equal(t, "Invalid or expired OTP", alertText(t, w))
	_, status = registrationStatus(t, v)
	assert.Equal(t, "otp_sent", status.State)
	assert.True(t, status.CanSend)
	assert.Equal(t, "Resend OTP", status.ResendLabel)

	w = v.post("/register/verify-otp", registrationForm(map[string]string{"otp": "123456"}))
	assert.Equal(t, "OTP verified successfully!", alertText(t, w))
	_, readonly := doc(t, w).Find("#otp").Attr("readonly")
	assert.True(t, readonly)

	w = v.post("/register", registrationForm(map[string]string{"otp": "123456", "password": "pw", "confirm_password": "pw"}))
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Equal(t, 1, api.count("/api/register"))
	assert.Equal(t, "Registration successful! Please login.", alertText(t, v.get("/login")))

	code, _ = registrationStatus(t, v)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRegistrationStatusLabels(t *testing.T) {
	assert.Equal(t, "Send OTP", handlers.RegistrationStatus(registration.Snapshot{State: registration.StateIdle, CanSend: true}).ResendLabel)
	assert.Equal(t, "Resend in 7s", handlers.RegistrationStatus(registration.Snapshot{State: registration.StateOtpSent, Remaining: 7}).ResendLabel)
	assert.Equal(t, "Resend OTP", handlers.RegistrationStatus(registration.Snapshot{State: registration.StateOtpSent, CanSend: true}).ResendLabel)
	assert.True(t, handlers.RegistrationStatus(registration.Snapshot{State: registration.StateVerified}).Verified)
}

// -------------------- Admin --------------------

func TestAdminGuard(t *testing.T) {
	api, v, _ := newServer(t, nil)

	w := v.get("/admin/dashboard")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/login", w.Header().Get("Location"))

	assert.Equal(t, http.StatusUnauthorized, v.get("/admin/fragments/users").Code)
	assert.Zero(t, api.count("/api/admin-users"))

	w = v.post("/admin/login", url.Values{"username": {"root"}, "password": {"nope"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Invalid admin credentials!", alertText(t, w))
}

func TestAdminDashboardRendersUsers(t *testing.T) {
	_, v := adminVisitor(t)

	w := v.get("/admin/dashboard")
	require.Equal(t, http.StatusOK, w.Code)
	d := doc(t, w)
	assert.Equal(t, "Welcome, Site Admin (super_admin)", d.Find("#adminWelcome").Text())
	assert.Equal(t, "1,200", d.Find(".stat-number").First().Text())
	assert.Equal(t, 1, d.Find(".list-container tbody tr").Length())
	frag, _ := d.Find(".list-container").Attr("data-fragment")
	assert.Equal(t, "/admin/fragments/users", frag)
	next, _ := d.Find(".list-container .pagination a").Last().Attr("href")
	assert.Equal(t, "/admin/dashboard?page=2&tab=users", next)

	export := doc(t, v.get("/admin/dashboard?tab=export"))
	assert.Equal(t, 3, export.Find(".export-card").Length())
	assert.Equal(t, 0, export.Find(".list-container").Length())
}

func TestAdminFragment(t *testing.T) {
	api, v := adminVisitor(t)

	w := v.get("/admin/fragments/users?page=2")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "rendered", w.Header().Get("X-List-Outcome"))
	assert.Contains(t, api.requestedUserPages(), 2)
	assert.Equal(t, 1, doc(t, w).Find("tbody tr").Length())

	assert.Equal(t, http.StatusNotFound, v.get("/admin/fragments/nope").Code)
}

func TestStaleFragmentIsSuperseded(t *testing.T) {
	api, v := adminVisitor(t)

	slow := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		slow <- v.get("/admin/fragments/users?search=slow")
	}()
	<-api.slowStarted

	fresh := v.get("/admin/fragments/users?page=1")
	require.Equal(t, http.StatusOK, fresh.Code)
	assert.Equal(t, "rendered", fresh.Header().Get("X-List-Outcome"))

	stale := <-slow
	assert.Equal(t, http.StatusNoContent, stale.Code)
	assert.Equal(t, "superseded", stale.Header().Get("X-List-Outcome"))
	assert.Empty(t, stale.Body.String())
}

func TestPagingLinkLoadsItsPageInPlace(t *testing.T) {
	api, v := adminVisitor(t)
	d := doc(t, v.get("/admin/dashboard"))

	target := pageLinkTarget(t, d, ".list-container")
	assert.Equal(t, "/admin/fragments/users?page=2&tab=users", target)

	w := v.get(target)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "rendered", w.Header().Get("X-List-Outcome"))
	assert.Equal(t, []int{1, 2}, api.requestedUserPages())
}

func TestDashboardSettlesWhenFragmentOvertakesIt(t *testing.T) {
	api, v := adminVisitor(t)

	page := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		page <- v.get("/admin/dashboard?search=hold")
	}()
	<-api.slowStarted

	fresh := v.get("/admin/fragments/users?page=1")
	require.Equal(t, http.StatusOK, fresh.Code)
	assert.Equal(t, "rendered", fresh.Header().Get("X-List-Outcome"))
	close(api.release)

	w := <-page
	require.Equal(t, http.StatusOK, w.Code)
	d := doc(t, w)
	assert.Equal(t, 1, d.Find(".list-container tbody tr").Length())
	assert.NotContains(t, d.Find(".list-container").Text(), "Loading users...")
}

func filterLabels(d *goquery.Document) []string {
	return d.Find(`select[name="filter"] option`).Map(func(_ int, s *goquery.Selection) string {
		return s.Text()
	})
}

func TestProfessionFilterComesFromOwnLoad(t *testing.T) {
	_, v := adminVisitor(t)
	d := doc(t, v.get("/admin/dashboard?tab=profiles"))
	assert.Equal(t, []string{"All Professions", "Engineer (4)"}, filterLabels(d))

	other := newVisitor(t, v.handler)
	require.Equal(t, http.StatusSeeOther, other.post("/admin/login", url.Values{"username": {"root"}, "password": {"secret"}}).Code)

	d = doc(t, other.get("/admin/dashboard?tab=profiles&filter=Broken"))
	assert.Contains(t, d.Find(".list-container").Text(), "Failed to load profiles.")
	assert.Equal(t, []string{"All Professions", "Broken"}, filterLabels(d))
}

func TestToggleUserStatus(t *testing.T) {
	api, v := adminVisitor(t)

	w := v.post("/admin/users/4/status", url.Values{"current_status": {"active"}})

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/dashboard?page=1&tab=users", w.Header().Get("Location"))
	assert.Equal(t, directoryclient.StatusUpdate{UserID: 4, Status: "suspended"}, api.lastStatusUpdate())
	assert.Equal(t, "User status updated successfully!", alertText(t, v.get("/admin/dashboard")))
}

func TestRowActions(t *testing.T) {
	_, v := adminVisitor(t)

	w := v.get("/admin/profiles/7")
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/dashboard?page=1&tab=profiles", w.Header().Get("Location"))
	assert.Equal(t, "View profile details for ID: 7", alertText(t, v.get("/admin/dashboard?tab=export")))

	w = v.post("/admin/feedback/3/respond", url.Values{"response": {"Thanks"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "Response sent for feedback ID: 3", alertText(t, v.get("/admin/dashboard?tab=export")))

	assert.Equal(t, http.StatusBadRequest, v.get("/admin/users/abc").Code)
}

func TestExport(t *testing.T) {
	api, v := adminVisitor(t)

	w := v.get("/admin/export/users")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), `attachment; filename="district_growth_users_`)
	assert.Equal(t, "id,username\n4,asha\n", w.Body.String())
	assert.Empty(t, alertText(t, v.get("/admin/dashboard?tab=export")))

	w = v.get("/admin/export/profiles")
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/dashboard?page=1&tab=export", w.Header().Get("Location"))
	assert.Equal(t, "Export failed. Please try again.", alertText(t, v.get("/admin/dashboard?tab=export")))

	w = v.get("/admin/export/passwords")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Zero(t, api.count("/api/admin-export/passwords"))
}

// -------------------- CSRF --------------------

func TestCSRFRejectsFormsWithoutToken(t *testing.T) {
	api, v, _ := newServer(t, func(cfg *config.AppConfig) {
		cfg.Security.CSRFKey = strings.Repeat("k", 32)
	})

	d := doc(t, v.get("/login"))
	assert.Equal(t, 1, d.Find(`form input[name="gorilla.csrf.Token"]`).Length())

	w := v.post("/login", url.Values{"username": {"asha"}, "password": {"secret"}})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, api.count("/api/login"))
}
