package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"stockroom/internal/config"
	"stockroom/internal/http/handlers"
	applog "stockroom/internal/log"
	"stockroom/internal/repos"
	"stockroom/internal/services"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type testApp struct {
	*fiber.App
	DB *sqlx.DB
}

func testConfig() config.Config {
	return config.Config{
		SalesBatchMode:  "best_effort",
		BodyLimit:       1 << 20,
		LoginRateLimit:  100,
		LoginRateWindow: time.Minute,
	}
}

// newTestApp serves the real API over a seeded in-memory database.
func newTestApp(t *testing.T, clock services.Clock) *testApp {
	return newTestAppWith(t, testConfig(), clock)
}

func newTestAppWith(t *testing.T, cfg config.Config, clock services.Clock) *testApp {
	t.Helper()
	db, err := repos.OpenDB(":memory:", true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Use(requestid.New())
	handlers.NewDeps(db, cfg, clock, nil).Mount(app.Group("/api"))
	return &testApp{App: app, DB: db}
}

// call sends body as JSON (when non-nil) with an optional token and returns
// the status and raw response body.
func (a *testApp) call(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	resp, err := a.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

// login signs in a seeded user and returns the session token.
func (a *testApp) login(t *testing.T, username string) string {
	t.Helper()
	code, body := a.call(t, http.MethodPost, "/api/login/", "", map[string]string{
		"username": username,
		"password": repos.DemoPassword,
	})
	require.Equal(t, http.StatusOK, code, string(body))
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func (a *testApp) quantity(t *testing.T, shopID, productID int64) int {
	t.Helper()
	var qty int
	require.NoError(t, a.DB.Get(&qty, `SELECT quantity FROM products WHERE id = ? AND shop_id = ?`, productID, shopID))
	return qty
}

func (a *testApp) salesCount(t *testing.T, shopID int64) int {
	t.Helper()
	var n int
	require.NoError(t, a.DB.Get(&n, `SELECT COUNT(*) FROM sales WHERE shop_id = ?`, shopID))
	return n
}

func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(b, &v), string(b))
	return v
}

// observeLogs routes the app logger into memory for the rest of the test.
func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	applog.Set(zap.New(core))
	t.Cleanup(func() { applog.Set(nil) })
	return logs
}
