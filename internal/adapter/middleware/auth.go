package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"pension-ledger/internal/domain/actor"
)

const callerKey = "pension.caller"

// Claims is the token body issued by the identity provider. Subject carries the
// wallet identity.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

var (
	errMissingToken = errors.New("missing bearer token")
	errBadSubject   = errors.New("token has no subject")
	errBadRole      = errors.New("token role must be user or admin")
)

// ParseToken verifies an HS256 token and resolves it to a caller.
func ParseToken(secret []byte, raw string) (actor.Caller, error) {
	var cl Claims
	_, err := jwt.ParseWithClaims(raw, &cl, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return actor.Caller{}, err
	}
	wallet := actor.NormalizeWallet(cl.Subject)
	if wallet == "" {
		return actor.Caller{}, errBadSubject
	}
	switch actor.Role(cl.Role) {
	case actor.RoleAdmin:
		return actor.Admin(wallet), nil
	case actor.RoleUser, "":
		return actor.User(wallet), nil
	}
	return actor.Caller{}, errBadRole
}

// IssueToken signs a token for wallet. Used by tests and local tooling.
func IssueToken(secret []byte, wallet string, role actor.Role, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	cl := Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   wallet,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(secret)
}

// Auth resolves the bearer token once per request and stores the caller on the
// echo context.
func Auth(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": errMissingToken.Error()})
			}
			caller, err := ParseToken(secret, strings.TrimSpace(raw))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			}
			c.Set(callerKey, caller)
			return next(c)
		}
	}
}

// CallerFrom returns the caller resolved by Auth.
func CallerFrom(c echo.Context) (actor.Caller, bool) {
	caller, ok := c.Get(callerKey).(actor.Caller)
	return caller, ok
}
