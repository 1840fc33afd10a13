package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	HeaderRequestID = "Ax-Request-Id"
	HeaderRequestAt = "Ax-Request-At"
	HeaderReplayed  = "Ax-Idempotent-Replay"
)

const (
	// an unfinished request holds its id for this long
	claimTTL     = 60 * time.Second
	maxClockSkew = 10 * time.Minute
	storeTimeout = 2 * time.Second
)

// teeWriter copies the response body so it can be stored for replay.
type teeWriter struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (w *teeWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *teeWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func errBody(msg string) map[string]string { return map[string]string{"error": msg} }

// IdempotencyMiddleware answers a mutating request sent again by the same
// caller with the same Ax-Request-Id from the stored first response, so a
// retried payout is never paid twice. It must run after Auth. Server errors
// are not stored and the id stays usable for a retry.
func IdempotencyMiddleware(rdb *redis.Client, ttl time.Duration, log *zap.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = zap.NewNop()
	}
	store := replayStore{rdb: rdb, ttl: ttl}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			caller, ok := CallerFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errBody(errMissingToken.Error()))
			}
			stamp, err := readStamp(req.Header, nowUTC())
			if err != nil {
				return c.JSON(http.StatusBadRequest, errBody(err.Error()))
			}

			var body []byte
			if req.Body != nil {
				if body, err = io.ReadAll(req.Body); err != nil {
					return c.JSON(http.StatusBadRequest, errBody("unreadable request body"))
				}
			}
			req.Body = io.NopCloser(bytes.NewReader(body))

			key := replayKey(req.Method, c.Path(), caller.Wallet, stamp.id)
			claim := replayEntry{
				InProgress:  true,
				BodySHA256:  bodyHash(body),
				RequestID:   stamp.id,
				RequestAtMS: stamp.at.UnixMilli(),
				CreatedAt:   nowUTC(),
			}

			ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
			won, err := store.claim(ctx, key, claim)
			if err != nil {
				cancel()
				log.Warn("idempotency store unavailable", zap.Error(err))
				return c.JSON(http.StatusServiceUnavailable, errBody("idempotency store unavailable"))
			}
			if !won {
				prior, err := store.load(ctx, key)
				cancel()
				if err != nil {
					log.Warn("idempotency entry unreadable", zap.String("key", key), zap.Error(err))
				}
				return answerRepeat(c, prior, claim.BodySHA256)
			}
			cancel()

			tee := &teeWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = tee
			if err := next(c); err != nil {
				c.Error(err)
			}
			store.settle(key, claim, tee, log)
			return nil
		}
	}
}

// answerRepeat handles a request whose id is already taken: a finished first
// attempt with the same body is replayed, anything else conflicts.
func answerRepeat(c echo.Context, prior replayEntry, bodySum string) error {
	if prior.BodySHA256 != "" && prior.BodySHA256 != bodySum {
		return c.JSON(http.StatusConflict, errBody(HeaderRequestID+" reused with different body"))
	}
	if prior.InProgress || prior.Code == 0 || len(prior.Body) == 0 {
		return c.JSON(http.StatusConflict, errBody("request is already in progress"))
	}
	c.Response().Header().Set(HeaderReplayed, "true")
	return c.Blob(prior.Code, echo.MIMEApplicationJSON, prior.Body)
}
