package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"tariffapi/internal/auth"
)

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString(RequestIDFromCtx(c))
	})

	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "generated when absent", incoming: "", keep: false},
		{name: "propagated when valid", incoming: "upload-42.a_b", keep: true},
		{name: "replaced when it carries spaces", incoming: "bad id", keep: false},
		{name: "replaced when too long", incoming: strings.Repeat("x", 65), keep: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			resp, _ := app.Test(req)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)

			got := resp.Header.Get(RequestIDHeader)
			body := new(bytes.Buffer)
			body.ReadFrom(resp.Body)
			assert.Equal(t, got, body.String(), "locals and header must agree")

			if tt.keep {
				assert.Equal(t, tt.incoming, got)
			} else {
				assert.NotEqual(t, tt.incoming, got)
				_, err := uuid.Parse(got)
				assert.NoError(t, err)
			}
		})
	}
}

func TestRequestIDFromCtx_Outside(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(RequestIDFromCtx(c)) })

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	body := new(bytes.Buffer)
	body.ReadFrom(resp.Body)
	assert.Empty(t, body.String())
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	app := fiber.New()

	app.Use(RequestID())
	app.Use(Logger(zap.New(core)))

	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusAccepted)
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusServiceUnavailable, "down")
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set(RequestIDHeader, "rid-1")
	resp, _ := app.Test(req)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	entries := logs.FilterMessage("http_request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "rid-1", fields["request_id"])
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/test", fields["path"])
	assert.Equal(t, int64(fiber.StatusAccepted), fields["status"])
	assert.Contains(t, fields, "latency")
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)

	_, _ = app.Test(httptest.NewRequest("GET", "/boom", nil))
	entries = logs.FilterMessage("http_request").All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, int64(fiber.StatusServiceUnavailable), entries[1].ContextMap()["status"])
}

func TestLogger_TraceID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	traceID := trace.TraceID{0x0a, 0xf7, 0x65, 0x19, 0x16, 0xcd, 0x43, 0xdd, 0x84, 0x48, 0xeb, 0x21, 0x1c, 0x80, 0x31, 0x9c}
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     trace.SpanID{0xb7, 0xad, 0x6b, 0x71, 0x69, 0x20, 0x33, 0x31},
		TraceFlags: trace.FlagsSampled,
	})

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.SetUserContext(trace.ContextWithSpanContext(c.UserContext(), sc))
		return c.Next()
	})
	app.Use(Logger(zap.New(core)))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	_, _ = app.Test(httptest.NewRequest(http.MethodGet, "/", nil))

	entries := logs.FilterMessage("http_request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, traceID.String(), entries[0].ContextMap()["trace_id"])
}

func callerApp(key string) *fiber.App {
	app := fiber.New()
	app.Use(Identify(auth.NewAdminKey(key)))
	handler := func(c *fiber.Ctx) error {
		caller := CallerFromCtx(c)
		return c.JSON(fiber.Map{"identity": caller.Identity, "admin": caller.Admin})
	}
	app.Get("/who", handler)
	app.Post("/who", handler)
	return app
}

func formRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest("POST", target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func withHeader(req *http.Request, key, value string) *http.Request {
	req.Header.Set(key, value)
	return req
}

type callerBody struct {
	Identity string `json:"identity"`
	Admin    bool   `json:"admin"`
}

func TestIdentify(t *testing.T) {
	app := callerApp("s3cret")

	tests := []struct {
		name         string
		req          *http.Request
		wantIdentity string
		wantAdmin    bool
	}{
		{
			name: "anonymous",
			req:  httptest.NewRequest("GET", "/who", nil),
		},
		{
			name:         "x-user header wins over query",
			req:          withHeader(httptest.NewRequest("GET", "/who?user=bob", nil), UserHeader, " alice "),
			wantIdentity: "alice",
		},
		{
			name:         "query user",
			req:          httptest.NewRequest("GET", "/who?user=bob", nil),
			wantIdentity: "bob",
		},
		{
			name:         "form username",
			req:          formRequest("/who", url.Values{"username": {"carol"}}),
			wantIdentity: "carol",
		},
		{
			name:      "admin header",
			req:       withHeader(httptest.NewRequest("GET", "/who", nil), AdminKeyHeader, "s3cret"),
			wantAdmin: true,
		},
		{
			name:      "bearer token",
			req:       withHeader(httptest.NewRequest("GET", "/who", nil), "Authorization", "Bearer s3cret"),
			wantAdmin: true,
		},
		{
			name:         "form admin key",
			req:          formRequest("/who", url.Values{"adminKey": {"s3cret"}, "username": {"ops"}}),
			wantIdentity: "ops",
			wantAdmin:    true,
		},
		{
			name: "wrong key",
			req:  withHeader(httptest.NewRequest("GET", "/who", nil), AdminKeyHeader, "guess"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(tt.req)
			require.NoError(t, err)

			var body callerBody
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantIdentity, body.Identity)
			assert.Equal(t, tt.wantAdmin, body.Admin)
		})
	}
}

func TestIdentify_DisabledKey(t *testing.T) {
	app := callerApp("")

	req := withHeader(httptest.NewRequest("GET", "/who", nil), "Authorization", "Bearer ")
	resp, err := app.Test(req)
	require.NoError(t, err)

	var body callerBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Admin)
}

func TestCallerFromCtx_Default(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		assert.Equal(t, auth.Caller{}, CallerFromCtx(c))
		return c.SendStatus(fiber.StatusNoContent)
	})
	resp, _ := app.Test(httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestRateLimit(t *testing.T) {
	app := fiber.New()
	app.Use(RateLimit(0.001, 2))
	app.Get("/ocr", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/ocr", nil))
		require.NoError(t, err)
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{200, 200, fiber.StatusTooManyRequests}, codes)
}

func TestRateLimit_Disabled(t *testing.T) {
	app := fiber.New()
	app.Use(RateLimit(0, 0))
	app.Get("/ocr", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for i := 0; i < 5; i++ {
		resp, _ := app.Test(httptest.NewRequest("GET", "/ocr", nil))
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}
