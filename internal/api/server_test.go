package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silema/silema/internal/cache"
	"github.com/silema/silema/internal/checkin"
	"github.com/silema/silema/internal/clock"
	"github.com/silema/silema/internal/config"
	"github.com/silema/silema/internal/domain"
	"github.com/silema/silema/internal/monitor"
	"github.com/silema/silema/internal/notifier"
	"github.com/silema/silema/internal/store/sqlite"
)

type fakeMonitor struct {
	runErr     error
	report     monitor.CycleReport
	testErr    error
	testReport monitor.TestAlertReport
}

func (f *fakeMonitor) RunCycle(context.Context) (monitor.CycleReport, error) {
	return f.report, f.runErr
}

func (f *fakeMonitor) SendTestAlert(_ context.Context, userID int64) (monitor.TestAlertReport, error) {
	r := f.testReport
	r.UserID = userID
	return r, f.testErr
}

type testServer struct {
	srv   *httptest.Server
	store *sqlite.Store
	mon   *fakeMonitor
	token string
}

var now = time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	st, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCache := cache.New(true, clock.Fixed(now))
	mon := &fakeMonitor{}
	cfg := &config.Config{
		APIToken:         "s3cret",
		CORSAllowOrigins: []string{"http://localhost:3000"},
	}

	router := NewRouter(Deps{
		Store:    st,
		CheckIns: checkin.NewService(st, appCache, clock.Fixed(now), logger),
		Monitor:  mon,
		Cache:    appCache,
		Logger:   logger,
	}, cfg)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{srv: srv, store: st, mon: mon, token: cfg.APIToken}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}, header ...string) (*http.Response, map[string]interface{}) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, r)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+ts.token)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func (ts *testServer) user(t *testing.T) *domain.User {
	t.Helper()
	u, err := ts.store.CreateUser(context.Background(), domain.User{Email: "alice@example.com", Name: "Alice"})
	require.NoError(t, err)
	return u
}

func errorCode(body map[string]interface{}) string {
	e, _ := body["error"].(map[string]interface{})
	code, _ := e["code"].(string)
	return code
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, resp.Header.Get("X-Process-Time"))

	resp, body = ts.do(t, http.MethodGet, "/health/db", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "connected", body["database"])

	resp, body = ts.do(t, http.MethodGet, "/health/cache", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]interface{}{"enabled": true, "entries": float64(0), "expired": float64(0)}, body["cache"])
}

func TestTokenAuth(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, ts.srv.URL+"/api/v1/monitor/run", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	ts.token = "wrong"
	resp, _ = ts.do(t, http.MethodPost, "/api/v1/monitor/run", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRunMonitor(t *testing.T) {
	ts := newTestServer(t)
	ts.mon.report = monitor.CycleReport{CycleID: "c1", UsersChecked: 2, AlertsSent: 1}

	resp, body := ts.do(t, http.MethodPost, "/api/v1/monitor/run", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "c1", body["cycleId"])
	assert.EqualValues(t, 2, body["usersChecked"])

	ts.mon.runErr = monitor.ErrCycleInProgress
	resp, body = ts.do(t, http.MethodPost, "/api/v1/monitor/run", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CYCLE_IN_PROGRESS", errorCode(body))
}

func TestSendTestAlert(t *testing.T) {
	ts := newTestServer(t)
	ts.mon.testReport = monitor.TestAlertReport{SuccessCount: 1}

	resp, body := ts.do(t, http.MethodPost, "/api/v1/users/7/test-alert", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 7, body["userId"])
	assert.EqualValues(t, 1, body["successCount"])

	ts.mon.testErr = notifier.ErrNotConfigured
	resp, body = ts.do(t, http.MethodPost, "/api/v1/users/7/test-alert", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "SMTP_NOT_CONFIGURED", errorCode(body))

	ts.mon.testErr = monitor.ErrNoContacts
	resp, body = ts.do(t, http.MethodPost, "/api/v1/users/7/test-alert", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "NO_CONTACTS", errorCode(body))

	resp, body = ts.do(t, http.MethodPost, "/api/v1/users/abc/test-alert", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_ID", errorCode(body))
}

func TestCheckIns(t *testing.T) {
	ts := newTestServer(t)
	u := ts.user(t)
	base := "/api/v1/users/" + itoa(u.ID)

	resp, body := ts.do(t, http.MethodGet, base+"/checkins/last", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, body["lastCheckin"])

	resp, body = ts.do(t, http.MethodPost, base+"/checkins", nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, now.Format(time.RFC3339), body["checkinTime"])

	resp, body = ts.do(t, http.MethodGet, base+"/checkins/last", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, now.Format(time.RFC3339), body["lastCheckin"])

	resp, body = ts.do(t, http.MethodGet, base+"/checkins/recent", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["checkins"], 1)

	resp, body = ts.do(t, http.MethodGet, base+"/checkins/stats", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["consecutiveDays"])
	assert.EqualValues(t, 1, body["todayCheckins"])
	assert.Equal(t, "MISS", resp.Header.Get("X-Cache"))
	assert.Equal(t, "private, max-age=300", resp.Header.Get("Cache-Control"))
	etag := resp.Header.Get("ETag")
	require.NotEmpty(t, etag)

	resp, _ = ts.do(t, http.MethodGet, base+"/checkins/stats", nil, "If-None-Match", `W/"stale", `+etag)
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodGet, base+"/checkins/stats", nil)
	assert.Equal(t, "HIT", resp.Header.Get("X-Cache"))

	resp, body = ts.do(t, http.MethodPost, "/api/v1/users/9999/checkins", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestSettings(t *testing.T) {
	ts := newTestServer(t)
	u := ts.user(t)
	base := "/api/v1/users/" + itoa(u.ID)

	resp, body := ts.do(t, http.MethodGet, base+"/settings", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2880, body["alertThresholdMinutes"])
	assert.Equal(t, true, body["enableEmailAlert"])

	resp, body = ts.do(t, http.MethodPut, base+"/settings", map[string]interface{}{"alertThresholdMinutes": 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(body))

	resp, _ = ts.do(t, http.MethodPut, base+"/settings", map[string]interface{}{"alertThresholdMinutes": 43201})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = ts.do(t, http.MethodPut, base+"/settings", map[string]interface{}{"alertThresholdMinutes": 90, "enableSmsAlert": true})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 90, body["alertThresholdMinutes"])
	assert.Equal(t, true, body["enableEmailAlert"], "omitted fields are kept")
	assert.Equal(t, true, body["enableSmsAlert"])

	resp, _ = ts.do(t, http.MethodPut, base+"/settings", map[string]interface{}{"unknown": 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodGet, "/api/v1/users/9999/settings", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateSMTP(t *testing.T) {
	ts := newTestServer(t)
	u := ts.user(t)
	base := "/api/v1/users/" + itoa(u.ID)

	resp, body := ts.do(t, http.MethodPut, base+"/smtp", map[string]interface{}{"smtpHost": "smtp.qq.com", "smtpPort": 465})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(body))

	resp, _ = ts.do(t, http.MethodPut, base+"/smtp", map[string]interface{}{
		"smtpHost": "smtp.qq.com", "smtpPort": 465, "smtpUsername": "a@qq.com", "smtpPassword": "code",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	got, err := ts.store.GetUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, got.SMTP.Complete())
}

func TestContacts(t *testing.T) {
	ts := newTestServer(t)
	u := ts.user(t)
	base := "/api/v1/users/" + itoa(u.ID) + "/contacts"

	resp, body := ts.do(t, http.MethodPost, base, map[string]interface{}{"name": "Bob", "email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(body))

	resp, body = ts.do(t, http.MethodPost, base, map[string]interface{}{"name": "Bob", "email": "bob@example.com"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, body["isPrimary"])
	bobID := int64(body["id"].(float64))

	resp, body = ts.do(t, http.MethodPost, base, map[string]interface{}{"name": "Carol", "email": "carol@example.com", "phone": "123"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, false, body["isPrimary"])
	carolID := int64(body["id"].(float64))

	resp, _ = ts.do(t, http.MethodPut, base+"/"+itoa(carolID)+"/primary", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = ts.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	contacts := body["contacts"].([]interface{})
	require.Len(t, contacts, 2)
	assert.Equal(t, "Carol", contacts[0].(map[string]interface{})["name"])

	resp, body = ts.do(t, http.MethodPut, base+"/"+itoa(bobID), map[string]interface{}{"name": "Robert", "email": "bob@example.com"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Robert", body["name"])

	resp, _ = ts.do(t, http.MethodDelete, base+"/"+itoa(carolID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = ts.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	contacts = body["contacts"].([]interface{})
	require.Len(t, contacts, 1)
	assert.Equal(t, true, contacts[0].(map[string]interface{})["isPrimary"], "remaining contact promoted")

	resp, _ = ts.do(t, http.MethodDelete, base+"/"+itoa(carolID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodDelete, base+"/zero", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestContactLimit(t *testing.T) {
	ts := newTestServer(t)
	u := ts.user(t)
	base := "/api/v1/users/" + itoa(u.ID) + "/contacts"

	for i := 0; i < domain.MaxContacts; i++ {
		resp, _ := ts.do(t, http.MethodPost, base, map[string]interface{}{"name": "c", "email": "c@example.com"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
	resp, body := ts.do(t, http.MethodPost, base, map[string]interface{}{"name": "c", "email": "c@example.com"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.True(t, strings.Contains(body["error"].(map[string]interface{})["message"].(string), "10"))
}

func itoa(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestListAlerts(t *testing.T) {
	ts := newTestServer(t)
	u := ts.user(t)
	ctx := context.Background()
	c, err := ts.store.AddContact(ctx, domain.Contact{UserID: u.ID, Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)
	require.NoError(t, ts.store.AppendAlert(ctx, u.ID, c.ID, now.Add(-2*time.Hour)))
	require.NoError(t, ts.store.AppendAlert(ctx, u.ID, c.ID, now))
	base := "/api/v1/users/" + itoa(u.ID) + "/alerts"

	resp, body := ts.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	alerts := body["alerts"].([]interface{})
	require.Len(t, alerts, 2)
	first := alerts[0].(map[string]interface{})
	assert.Equal(t, now.Format(time.RFC3339), first["sentTime"])
	assert.Equal(t, "sent", first["status"])
	assert.EqualValues(t, c.ID, first["contactId"])

	resp, body = ts.do(t, http.MethodGet, base+"?limit=1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["alerts"], 1)

	resp, body = ts.do(t, http.MethodGet, base+"?limit=500", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_LIMIT", errorCode(body))

	resp, _ = ts.do(t, http.MethodGet, "/api/v1/users/9999/alerts", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSendTestAlertAllFailed(t *testing.T) {
	ts := newTestServer(t)
	ts.mon.testReport = monitor.TestAlertReport{
		FailCount: 2,
		Recipients: []monitor.ContactResult{
			{ContactID: 1, Email: "bob@example.com", Error: "535 authentication failed"},
			{ContactID: 2, Email: "carol@example.com", Error: "timeout"},
		},
	}

	resp, body := ts.do(t, http.MethodPost, "/api/v1/users/7/test-alert", nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "SEND_FAILED", errorCode(body))
	assert.Equal(t, "535 authentication failed", body["error"].(map[string]interface{})["detail"])
}

func TestUserProfileAndDelete(t *testing.T) {
	ts := newTestServer(t)
	u := ts.user(t)
	ctx := context.Background()
	require.NoError(t, ts.store.UpdateSMTP(ctx, u.ID, domain.SMTPConfig{Host: "smtp.qq.com", Port: 465, Username: "a@qq.com", Password: "code"}))
	_, err := ts.store.AddContact(ctx, domain.Contact{UserID: u.ID, Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)
	base := "/api/v1/users/" + itoa(u.ID)

	resp, body := ts.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice@example.com", body["email"])
	assert.Equal(t, true, body["smtpConfigured"])
	assert.Equal(t, "a@qq.com", body["smtpUsername"])
	assert.NotContains(t, body, "smtpPassword")
	assert.EqualValues(t, 1, body["contactCount"])
	assert.EqualValues(t, 2880, body["settings"].(map[string]interface{})["alertThresholdMinutes"])

	resp, _ = ts.do(t, http.MethodPost, base+"/checkins", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = ts.do(t, http.MethodGet, base+"/checkins/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, body = ts.do(t, http.MethodGet, base+"/checkins/stats", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, body["todayCheckins"], "cached stats dropped with the account")
	resp, _ = ts.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
