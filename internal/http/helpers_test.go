package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"plastscan/internal/config"
	"plastscan/internal/domain"
	"plastscan/internal/http/handlers"
	"plastscan/internal/repos"
)

// newTestApp builds the real app on an in-memory database. The decoder has
// no delay and the global rate limit is generous unless cfg says otherwise.
func newTestApp(t *testing.T, cfg config.Config) (*fiber.App, *handlers.Deps) {
	t.Helper()
	if cfg.DBDSN == "" {
		cfg.DBDSN = ":memory:"
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 1000
	}
	db, err := repos.OpenDB(cfg.DBDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	deps, err := handlers.NewDeps(context.Background(), db, cfg)
	require.NoError(t, err)
	return handlers.NewApp(deps, cfg), deps
}

// startSession logs a user in on sid directly through the service.
func startSession(t *testing.T, deps *handlers.Deps, sid string) *domain.User {
	t.Helper()
	u, _, err := deps.Sessions.Start(context.Background(), sid, "Kari", "kari@example.no")
	require.NoError(t, err)
	return u
}

func doReq(t *testing.T, app *fiber.App, req *http.Request) *http.Response {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err, "%s %s", req.Method, req.URL.Path)
	return resp
}

func jsonReq(method, path, sid string, body any) *http.Request {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if sid != "" {
		req.Header.Set("Cookie", "sid="+sid)
	}
	return req
}

// formReq posts form values with the csrf token both as cookie and field.
func formReq(path, sid, csrfTok string, vals url.Values) *http.Request {
	if vals == nil {
		vals = url.Values{}
	}
	vals.Set("csrf", csrfTok)
	req := httptest.NewRequest("POST", path, strings.NewReader(vals.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	cookie := "csrf_=" + csrfTok
	if sid != "" {
		cookie += "; sid=" + sid
	}
	req.Header.Set("Cookie", cookie)
	return req
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// csrfToken fetches the login page and returns the issued token.
func csrfToken(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp := doReq(t, app, httptest.NewRequest("GET", "/login", nil))
	tok := extractCookie(resp, "csrf_")
	require.NotEmpty(t, tok, "csrf token missing")
	return tok
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func decodeOutcome(t *testing.T, resp *http.Response) domain.ScanOutcome {
	t.Helper()
	var out domain.ScanOutcome
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	UserID string         `json:"user_id"`
	Fields map[string]any `json:"fields"`
}

// captureLogs swaps the standard logger output while fn runs.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedWriter{w: &buf, mu: &mu})
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func findLog(entries []logEntry, level, action string) *logEntry {
	for i := range entries {
		if entries[i].Level == level && entries[i].Action == action {
			return &entries[i]
		}
	}
	return nil
}
