package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"pension-ledger/internal/adapter/middleware"
)

type Deps struct {
	Health       *Handler
	Participants *ParticipantHandler
	Documents    *DocumentHandler
	Succession   *SuccessionHandler
	Pension      *PensionHandler

	JWTSecret []byte
	// Redis backs idempotent replays; nil disables them (tests, memory mode).
	Redis    *redis.Client
	IdempTTL time.Duration

	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// Register mounts every route on e.
func Register(e *echo.Echo, d Deps) {
	e.Validator = NewValidator()

	e.GET("/health", d.Health.Health)
	if d.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
	e.GET("/v1/plans", d.Participants.Plans)

	v1 := e.Group("/v1", middleware.Auth(d.JWTSecret))
	if d.Redis != nil {
		v1.Use(middleware.IdempotencyMiddleware(d.Redis, d.IdempTTL, d.Logger))
	}

	p := d.Participants
	v1.POST("/participants", authed(p.Register))
	v1.GET("/participants", authed(p.List))
	v1.GET("/participants/:wallet", authed(p.Get))
	v1.POST("/participants/:wallet/approve", authed(p.Approve))
	v1.POST("/participants/:wallet/reject", authed(p.Reject))
	v1.POST("/participants/:wallet/gps/verify", authed(p.VerifyGPS))
	v1.POST("/participants/:wallet/close", authed(p.Close))
	v1.POST("/me/closure", authed(p.RequestClosure))
	v1.GET("/audit", authed(p.Audit))

	docs := d.Documents
	v1.GET("/participants/:wallet/documents/:group", authed(docs.List))
	v1.POST("/participants/:wallet/documents/:group", authed(docs.SubmitBatch))
	v1.PUT("/participants/:wallet/documents/:group/:type", authed(docs.Submit))
	v1.POST("/participants/:wallet/documents/:group/review", authed(docs.ReviewBatch))
	v1.POST("/participants/:wallet/documents/:group/approve-all", authed(docs.ApproveAll))
	v1.POST("/participants/:wallet/documents/:group/:type/review", authed(docs.Review))

	s := d.Succession
	v1.POST("/participants/:wallet/death", authed(s.ReportDeath))
	v1.POST("/participants/:wallet/death/verify", authed(s.VerifyDeath))
	v1.POST("/participants/:wallet/death/reject", authed(s.RejectDeath))
	v1.POST("/participants/:wallet/claim", authed(s.ApplyClaim))
	v1.POST("/participants/:wallet/claim/approve", authed(s.ApproveClaim))
	v1.POST("/participants/:wallet/claim/reject", authed(s.RejectClaim))

	pn := d.Pension
	v1.POST("/participants/:wallet/fund/allocate", authed(pn.Allocate))
	v1.GET("/participants/:wallet/fund/sufficiency", authed(pn.Sufficiency))
	v1.POST("/me/contributions", authed(pn.Contribute))
	v1.POST("/me/pension/start", authed(pn.Start))
	v1.POST("/me/pension/monthly-mode", authed(pn.ChooseMonthly))
	v1.POST("/me/pension/lump-sum", authed(pn.WithdrawFull))
	v1.POST("/me/pension/monthly", authed(pn.WithdrawMonthly))
	v1.POST("/me/pension/gratuity", authed(pn.ClaimGratuity))
	v1.POST("/participants/:wallet/nominee/monthly-mode", authed(pn.NomineeChooseMonthly))
	v1.POST("/participants/:wallet/nominee/monthly", authed(pn.NomineeWithdrawMonthly))
	v1.POST("/participants/:wallet/nominee/lump-sum", authed(pn.NomineeWithdrawFull))
	v1.POST("/participants/:wallet/nominee/gratuity", authed(pn.NomineeClaimGratuity))

	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		msg := "Internal"
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			msg = http.StatusText(code)
		}
		_ = c.JSON(code, ErrorResponse{Error: msg})
	}
}
