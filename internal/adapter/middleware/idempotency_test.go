package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"pension-ledger/internal/domain/actor"
)

const (
	testWallet = "0xabc"
	testReqID  = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	testPath   = "/v1/me/pension/monthly"
)

// asCaller stands in for Auth.
func asCaller(caller actor.Caller) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(callerKey, caller)
			return next(c)
		}
	}
}

func setupEcho(rdb *redis.Client, ttl time.Duration, handler echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(asCaller(actor.User(testWallet)), IdempotencyMiddleware(rdb, ttl, nil))
	e.POST(testPath, handler)
	e.GET(testPath, handler)
	return e
}

func doReq(t *testing.T, e *echo.Echo, method, body string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, testPath, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func validHeaders() map[string]string {
	return map[string]string{
		HeaderRequestID: testReqID,
		HeaderRequestAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// countingHandler pays once per call, like a withdrawal would.
func countingHandler(n *atomic.Int32) echo.HandlerFunc {
	return func(c echo.Context) error {
		n.Add(1)
		return c.JSON(http.StatusOK, map[string]any{"payment_id": "p-1"})
	}
}

func Test_BypassOnGET(t *testing.T) {
	_, rdb := newMiniRedis(t)
	var n atomic.Int32
	e := setupEcho(rdb, time.Minute, countingHandler(&n))
	if rec := doReq(t, e, http.MethodGet, "", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func Test_ValidationFailures(t *testing.T) {
	_, rdb := newMiniRedis(t)
	var n atomic.Int32
	e := setupEcho(rdb, time.Minute, countingHandler(&n))

	tests := []struct {
		name string
		hdr  map[string]string
	}{
		{"missing id", map[string]string{HeaderRequestAt: time.Now().UTC().Format(time.RFC3339)}},
		{"bad id", map[string]string{HeaderRequestID: "NOT-VALID", HeaderRequestAt: time.Now().UTC().Format(time.RFC3339)}},
		{"bad time", map[string]string{HeaderRequestID: testReqID, HeaderRequestAt: "not-a-time"}},
		{"skewed", map[string]string{HeaderRequestID: testReqID,
			HeaderRequestAt: time.Now().UTC().Add(-maxClockSkew - time.Minute).Format(time.RFC3339)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := doReq(t, e, http.MethodPost, `{}`, tt.hdr); rec.Code != http.StatusBadRequest {
				t.Fatalf("want 400, got %d", rec.Code)
			}
		})
	}
	if n.Load() != 0 {
		t.Fatalf("handler ran %d times on invalid requests", n.Load())
	}
}

func Test_MissingCaller_Unauthorized(t *testing.T) {
	_, rdb := newMiniRedis(t)
	e := echo.New()
	e.Use(IdempotencyMiddleware(rdb, time.Minute, nil))
	e.POST(testPath, func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	if rec := doReq(t, e, http.MethodPost, `{}`, validHeaders()); rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rec.Code)
	}
}

func Test_Replay_DoesNotPayTwice(t *testing.T) {
	_, rdb := newMiniRedis(t)
	var n atomic.Int32
	e := setupEcho(rdb, 2*time.Minute, countingHandler(&n))

	h := validHeaders()
	rec1 := doReq(t, e, http.MethodPost, `{}`, h)
	rec2 := doReq(t, e, http.MethodPost, `{}`, h)

	if rec1.Code != http.StatusOK || rec2.Code != http.StatusOK {
		t.Fatalf("codes = %d, %d", rec1.Code, rec2.Code)
	}
	if rec1.Body.String() != rec2.Body.String() {
		t.Fatalf("replay body mismatch: %q vs %q", rec1.Body.String(), rec2.Body.String())
	}
	if rec2.Header().Get(HeaderReplayed) != "true" {
		t.Fatal("replayed response should be marked")
	}
	if n.Load() != 1 {
		t.Fatalf("handler ran %d times, want 1", n.Load())
	}
}

func Test_Conflict_When_InProgress(t *testing.T) {
	_, rdb := newMiniRedis(t)
	var n atomic.Int32
	e := setupEcho(rdb, 2*time.Minute, countingHandler(&n))

	body := []byte(`{}`)
	key := replayKey(http.MethodPost, testPath, testWallet, testReqID)
	entry := replayEntry{InProgress: true, BodySHA256: bodyHash(body), RequestID: testReqID}
	if ok, err := (replayStore{rdb: rdb}).claim(context.Background(), key, entry); err != nil || !ok {
		t.Fatalf("seed provisional failed, ok=%v err=%v", ok, err)
	}

	if rec := doReq(t, e, http.MethodPost, string(body), validHeaders()); rec.Code != http.StatusConflict {
		t.Fatalf("in-progress => want 409, got %d", rec.Code)
	}
}

func Test_Conflict_When_SameReqID_DifferentBody(t *testing.T) {
	_, rdb := newMiniRedis(t)
	var n atomic.Int32
	e := setupEcho(rdb, 2*time.Minute, countingHandler(&n))

	key := replayKey(http.MethodPost, testPath, testWallet, testReqID)
	final := replayEntry{Code: http.StatusOK, Body: []byte(`{"ok":true}`), BodySHA256: bodyHash([]byte(`{"a":1}`))}
	if err := (replayStore{rdb: rdb, ttl: time.Minute}).finish(context.Background(), key, final); err != nil {
		t.Fatalf("seed final failed: %v", err)
	}

	if rec := doReq(t, e, http.MethodPost, `{"a":2}`, validHeaders()); rec.Code != http.StatusConflict {
		t.Fatalf("different body same id => want 409, got %d", rec.Code)
	}
}

func Test_ServerError_IsNotStored(t *testing.T) {
	_, rdb := newMiniRedis(t)
	var calls atomic.Int32
	e := setupEcho(rdb, time.Minute, func(c echo.Context) error {
		if calls.Add(1) == 1 {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal"})
		}
		return c.JSON(http.StatusOK, map[string]string{"ok": "yes"})
	})

	h := validHeaders()
	if rec := doReq(t, e, http.MethodPost, `{}`, h); rec.Code != http.StatusInternalServerError {
		t.Fatalf("first => %d", rec.Code)
	}
	if rec := doReq(t, e, http.MethodPost, `{}`, h); rec.Code != http.StatusOK {
		t.Fatalf("retry => %d", rec.Code)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d", calls.Load())
	}
}

func Test_StoreUnavailable_Returns503(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	var n atomic.Int32
	e := setupEcho(rdb, time.Minute, countingHandler(&n))

	rec := doReq(t, e, http.MethodPost, `{}`, validHeaders())
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("store unavailable => want 503, got %d", rec.Code)
	}
}
