package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type httpTest struct {
	name     string
	method   string
	path     string
	body     string
	wantCode int
	wantBody map[string]any
}

func newTestServer(t *testing.T) (Server, *Shell) {
	t.Helper()
	sh := newTestShell(t)
	return NewServer(&Options{DisableReqLogs: true, Shell: sh}), sh
}

func doJSON(t *testing.T, app http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}

func TestServer_Routes(t *testing.T) {
	app, _ := newTestServer(t)

	tests := []httpTest{
		{name: "health", method: http.MethodGet, path: "/healthz", wantCode: http.StatusOK, wantBody: map[string]any{"status": "ok"}},
		{name: "unknown action", method: http.MethodPost, path: "/actions/launch-rockets", wantCode: http.StatusNotFound},
		{
			name: "blank sql", method: http.MethodPost, path: "/actions/execute-sql", body: `{"sql-query-input":"  "}`,
			wantCode: http.StatusBadRequest,
			wantBody: map[string]any{"error": "invalid input", "field": "sql-query-input", "message": "Please enter a SQL query"},
		},
		{
			name: "needs confirmation", method: http.MethodPost, path: "/actions/fix-critical-issues",
			wantCode: http.StatusConflict,
			wantBody: map[string]any{"error": "confirmation required", "prompt": "Review and correct critical data issues? This will open the issue review panel."},
		},
		{name: "confirmed", method: http.MethodPost, path: "/actions/fix-critical-issues", body: `{"confirm":"true"}`, wantCode: http.StatusOK},
		{name: "malformed json", method: http.MethodPost, path: "/actions/filter-issues", body: `{"severity":`, wantCode: http.StatusBadRequest},
		{name: "unknown page", method: http.MethodPost, path: "/nav/page/nowhere", wantCode: http.StatusNotFound},
		{name: "page", method: http.MethodPost, path: "/nav/page/compliance", wantCode: http.StatusOK, wantBody: map[string]any{"page": "compliance"}},
		{name: "tab", method: http.MethodPost, path: "/nav/tab/sis-tabs/scheduler", wantCode: http.StatusOK},
		{name: "tab key", method: http.MethodPost, path: "/nav/tab/sis-tabs/key/ArrowRight", wantCode: http.StatusOK, wantBody: map[string]any{"tab": "course-catalog"}},
		{name: "unknown tab", method: http.MethodPost, path: "/nav/tab/sis-tabs/nope", wantCode: http.StatusNotFound},
		{name: "unknown task", method: http.MethodGet, path: "/tasks/nope", wantCode: http.StatusNotFound},
		{name: "unknown modal", method: http.MethodPost, path: "/modals/overview/open", wantCode: http.StatusNotFound},
		{name: "close unopened modal", method: http.MethodPost, path: "/modals/sql-modal/close", wantCode: http.StatusNotFound},
		{name: "focus without modal", method: http.MethodPost, path: "/modals/focus?current=x", wantCode: http.StatusConflict},
		{name: "escape without modal", method: http.MethodPost, path: "/keys/escape", wantCode: http.StatusNoContent},
		{name: "trailing slash", method: http.MethodGet, path: "/healthz/", wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, app, tt.method, tt.path, tt.body)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantBody != nil {
				got := decode(t, rec)
				for k, v := range tt.wantBody {
					assert.Equal(t, v, got[k], k)
				}
			}
		})
	}
}

func TestServer_Page(t *testing.T) {
	app, _ := newTestServer(t)

	rec := doJSON(t, app, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/html")
	assert.Contains(t, rec.Body.String(), `data-chart-for="dataQualityChart"`)

	rec = doJSON(t, app, http.MethodGet, "/static/app.js", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_DelayedActionLifecycle(t *testing.T) {
	app, sh := newTestServer(t)

	rec := doJSON(t, app, http.MethodPost, "/actions/run-data-validation", "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "blocking", body["style"])
	id, _ := body["task_id"].(string)
	require.NotEmpty(t, id)

	require.Eventually(t, func() bool {
		rec := doJSON(t, app, http.MethodGet, "/tasks/"+id, "")
		return rec.Code == http.StatusOK && decode(t, rec)["state"] == "succeeded"
	}, 2*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		return hasToast(sh, "Validation complete: 97.3% accuracy. 34 issues found.")
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServer_FormInput(t *testing.T) {
	app, sh := newTestServer(t)

	form := url.Values{"severity": {"critical"}}
	req := httptest.NewRequest(http.MethodPost, "/actions/filter-issues", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, hasToast(sh, "Filtering issues by: critical"))
}

func TestServer_ModalFlow(t *testing.T) {
	app, _ := newTestServer(t)

	rec := doJSON(t, app, http.MethodPost, "/modals/add-compliance-modal/open", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "compliance-task-name", decode(t, rec)["focus"])

	rec = doJSON(t, app, http.MethodPost, "/actions/add-compliance-item", `{"compliance-task-name":"Board report"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, app, http.MethodPost, "/keys/escape", "")
	assert.Equal(t, http.StatusNoContent, rec.Code, "item closed the modal")
}
