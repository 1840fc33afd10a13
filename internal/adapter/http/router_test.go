package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pension-ledger/internal/adapter/middleware"
	"pension-ledger/internal/domain/actor"
	"pension-ledger/internal/domain/document"
	"pension-ledger/internal/testutil/ledgertest"
	"pension-ledger/pkg/money"
	"pension-ledger/pkg/pensionerr"
)

var testSecret = []byte("router-test-secret-0123456789")

type apiClient struct {
	t *testing.T
	e *echo.Echo
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	h := ledgertest.New()
	e := echo.New()
	Register(e, Deps{
		Health:       NewHandler(nil),
		Participants: NewParticipantHandler(h.Enrollment, h.Admin),
		Documents:    NewDocumentHandler(h.Documents),
		Succession:   NewSuccessionHandler(h.Succession),
		Pension:      NewPensionHandler(h.Fund, h.Disbursement),
		JWTSecret:    testSecret,
		Gatherer:     prometheus.NewRegistry(),
		Logger:       zap.NewNop(),
	})
	return &apiClient{t: t, e: e}
}

func (a *apiClient) token(wallet string, role actor.Role) string {
	a.t.Helper()
	tok, err := middleware.IssueToken(testSecret, wallet, role, time.Hour)
	require.NoError(a.t, err)
	return tok
}

func (a *apiClient) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func prssBody() map[string]any {
	return map[string]any{
		"program":          "prss",
		"date_of_birth":    ledgertest.YoungDOB,
		"scheme":           "dps",
		"plan_id":          "dps_500",
		"nominee_wallet":   "0xb0b",
		"nominee_name":     "Bob",
		"nominee_relation": "spouse",
	}
}

func TestRouter_OnboardingAndContribution(t *testing.T) {
	api := newAPI(t)
	user := api.token("0xA11CE", actor.RoleUser)
	admin := api.token(ledgertest.AdminWallet, actor.RoleAdmin)

	rec := api.do(http.MethodPost, "/v1/participants", user, prssBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	assert.Equal(t, "0xa11ce", created["wallet"])
	assert.Equal(t, "pending", created["application_status"])
	assert.EqualValues(t, money.Major(500), created["monthly_contribution"])

	rec = api.do(http.MethodPost, "/v1/participants/0xa11ce/approve", admin, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, string(pensionerr.DocumentsIncomplete), decode[ErrorResponse](t, rec).Error)

	var docs []map[string]string
	for _, typ := range document.RequiredTypes(document.GroupPRSSPensioner) {
		docs = append(docs, map[string]string{"type": string(typ), "content_ref": "ipfs://" + string(typ)})
	}
	rec = api.do(http.MethodPost, "/v1/participants/0xa11ce/documents/prss_pensioner", user, map[string]any{"documents": docs})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodPost, "/v1/participants/0xa11ce/documents/prss_pensioner/approve-all", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(http.MethodPost, "/v1/participants/0xa11ce/approve", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "approved", decode[map[string]any](t, rec)["application_status"])

	rec = api.do(http.MethodPost, "/v1/me/contributions", user, map[string]any{"amount": money.Major(500)})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	fund := decode[map[string]any](t, rec)["fund"].(map[string]any)
	assert.EqualValues(t, 1, fund["monthly_payments_count"])

	rec = api.do(http.MethodPost, "/v1/me/contributions", user, map[string]any{"amount": money.Major(500)})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, string(pensionerr.AlreadyPaidThisMonth), decode[ErrorResponse](t, rec).Error)

	rec = api.do(http.MethodPost, "/v1/me/pension/start", user, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, string(pensionerr.NotRetirementAge), decode[ErrorResponse](t, rec).Error)

	rec = api.do(http.MethodGet, "/v1/audit?wallet=0xa11ce", user, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	entries := decode[map[string][]map[string]any](t, rec)["entries"]
	require.NotEmpty(t, entries)
	assert.Equal(t, "registered", entries[0]["action"])
}

func TestRouter_ErrorMapping(t *testing.T) {
	api := newAPI(t)
	user := api.token("0xa", actor.RoleUser)
	admin := api.token(ledgertest.AdminWallet, actor.RoleAdmin)

	rec := api.do(http.MethodGet, "/v1/participants", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodGet, "/v1/participants", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodGet, "/v1/participants", user, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, string(pensionerr.NotAdmin), decode[ErrorResponse](t, rec).Error)

	rec = api.do(http.MethodGet, "/v1/participants/0xdead", admin, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, string(pensionerr.ParticipantNotFound), decode[ErrorResponse](t, rec).Error)

	body := prssBody()
	delete(body, "nominee_wallet")
	rec = api.do(http.MethodPost, "/v1/participants", user, body)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	er := decode[ErrorResponse](t, rec)
	assert.Equal(t, string(pensionerr.MissingRequiredField), er.Error)
	assert.True(t, containsFieldMsg(er.Details, "NomineeWallet", "is required"), "%+v", er.Details)

	body = prssBody()
	body["date_of_birth"] = 20301399
	rec = api.do(http.MethodPost, "/v1/participants", user, body)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, string(pensionerr.InvalidDateOfBirth), decode[ErrorResponse](t, rec).Error)

	req := httptest.NewRequest(http.MethodPost, "/v1/participants", strings.NewReader("{"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+user)
	raw := httptest.NewRecorder()
	api.e.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)

	rec = api.do(http.MethodGet, "/v1/nowhere", user, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", decode[ErrorResponse](t, rec).Error)
}

func TestRouter_PublicEndpoints(t *testing.T) {
	api := newAPI(t)

	rec := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodGet, "/v1/plans?scheme=retirement_fund", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	plans := decode[struct {
		MinMonths int              `json:"min_months"`
		Plans     []map[string]any `json:"plans"`
	}](t, rec)
	assert.Equal(t, 36, plans.MinMonths)
	assert.Len(t, plans.Plans, 3)

	rec = api.do(http.MethodGet, "/v1/plans?scheme=ira", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestStatusFor(t *testing.T) {
	cases := map[pensionerr.Kind]int{
		pensionerr.NotNominee:          http.StatusForbidden,
		pensionerr.TooEarly:            http.StatusConflict,
		pensionerr.LumpSumWithdrawn:    http.StatusConflict,
		pensionerr.InvalidAmount:       http.StatusUnprocessableEntity,
		pensionerr.DocumentNotFound:    http.StatusNotFound,
		pensionerr.ParticipantNotFound: http.StatusNotFound,
		pensionerr.Internal:            http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, StatusFor(kind), string(kind))
	}
}
