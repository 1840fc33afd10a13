package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// replayEntry is what Redis holds per request id: a claim while the handler
// runs, then the response it produced.
type replayEntry struct {
	InProgress  bool      `json:"in_progress"`
	Code        int       `json:"code"`
	Body        []byte    `json:"body"`
	BodySHA256  string    `json:"body_sha256"`
	RequestID   string    `json:"request_id"`
	RequestAtMS int64     `json:"request_at_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

type replayStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// claim reserves key for the caller. It reports false when the id is taken.
func (s replayStore) claim(ctx context.Context, key string, e replayEntry) (bool, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key, payload, claimTTL).Result()
}

func (s replayStore) load(ctx context.Context, key string) (replayEntry, error) {
	var e replayEntry
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return e, err
	}
	return e, json.Unmarshal(raw, &e)
}

// finish replaces the claim with the final response for the store's ttl.
func (s replayStore) finish(ctx context.Context, key string, e replayEntry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, payload, s.ttl).Err()
}

func (s replayStore) release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

// settle stores what the handler wrote, or frees the id after a server error.
func (s replayStore) settle(key string, claim replayEntry, tee *teeWriter, log *zap.Logger) {
	ctx := context.Background()
	if tee.status >= http.StatusInternalServerError {
		if err := s.release(ctx, key); err != nil {
			log.Warn("idempotency release failed", zap.String("key", key), zap.Error(err))
		}
		return
	}
	claim.InProgress = false
	claim.Code = tee.status
	claim.Body = tee.body.Bytes()
	claim.CreatedAt = nowUTC()
	if err := s.finish(ctx, key, claim); err != nil {
		log.Warn("idempotency save failed", zap.String("key", key), zap.Error(err))
	}
}

func bodyHash(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func nowUTC() time.Time { return time.Now().UTC() }

// replayKey scopes a request id to one caller and one route, so two wallets
// never see each other's responses.
func replayKey(method, route, wallet, requestID string) string {
	return strings.Join([]string{"idemp", "pension", strings.ToLower(method), route, wallet, requestID}, ":")
}

var (
	uuidPattern  = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[1-5][a-f0-9]{3}-[89ab][a-f0-9]{3}-[a-f0-9]{12}$`)
	hex32Pattern = regexp.MustCompile(`^[a-f0-9]{32}$`)
)

func validRequestID(id string) bool {
	id = strings.ToLower(strings.TrimSpace(id))
	return uuidPattern.MatchString(id) || hex32Pattern.MatchString(id)
}

type requestStamp struct {
	id string
	at time.Time
}

// readStamp checks the request id and timestamp headers against now.
func readStamp(h http.Header, now time.Time) (requestStamp, error) {
	id := strings.TrimSpace(h.Get(HeaderRequestID))
	switch {
	case id == "":
		return requestStamp{}, errors.New("missing " + HeaderRequestID)
	case !validRequestID(id):
		return requestStamp{}, errors.New("invalid " + HeaderRequestID + " format")
	}
	at, err := parseRequestAt(h.Get(HeaderRequestAt))
	if err != nil {
		return requestStamp{}, err
	}
	if at.Before(now.Add(-maxClockSkew)) || at.After(now.Add(maxClockSkew)) {
		return requestStamp{}, errors.New(HeaderRequestAt + " too skewed")
	}
	return requestStamp{id: id, at: at}, nil
}

// parseRequestAt takes epoch seconds, epoch milliseconds or an RFC 3339 time
// that carries a zone. Zoneless local times are refused.
func parseRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing " + HeaderRequestAt)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errors.New(HeaderRequestAt + " must be epoch (s/ms) or RFC3339 with timezone")
}
