// Package ledgertest wires every lifecycle usecase onto the in-memory store and
// a manual clock, with helpers that walk a participant through onboarding.
package ledgertest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pension-ledger/internal/adapter/repository/memory"
	"pension-ledger/internal/domain/actor"
	"pension-ledger/internal/domain/document"
	"pension-ledger/internal/domain/participant"
	"pension-ledger/internal/usecase/admin"
	"pension-ledger/internal/usecase/disbursement"
	docuc "pension-ledger/internal/usecase/document"
	"pension-ledger/internal/usecase/enrollment"
	"pension-ledger/internal/usecase/fund"
	"pension-ledger/internal/usecase/ledger"
	"pension-ledger/internal/usecase/succession"
	"pension-ledger/pkg/clock"
	"pension-ledger/pkg/money"
)

const (
	AdminWallet = "0xad"

	// RetireeDOB is past retirement age at Start; YoungDOB is not.
	RetireeDOB = 19650101
	YoungDOB   = 19950101
)

var Start = time.Date(2030, 1, 15, 9, 0, 0, 0, time.UTC)

type options struct {
	conv         money.Converter
	familyMonths int
	payouts      disbursement.PayoutObserver
	operations   ledger.Observer
}

type Option func(*options)

func WithConverter(c money.Converter) Option { return func(o *options) { o.conv = c } }

func WithFamilyPensionMonths(n int) Option { return func(o *options) { o.familyMonths = n } }

func WithPayoutObserver(p disbursement.PayoutObserver) Option {
	return func(o *options) { o.payouts = p }
}

func WithOperationObserver(obs ledger.Observer) Option {
	return func(o *options) { o.operations = obs }
}

type Harness struct {
	Ctx   context.Context
	Clock *clock.Manual
	Store *memory.Store
	Run   *ledger.Runner

	Enrollment   *enrollment.Usecase
	Documents    *docuc.Usecase
	Succession   *succession.Usecase
	Fund         *fund.Usecase
	Disbursement *disbursement.Usecase
	Admin        *admin.Usecase
}

func New(opts ...Option) *Harness {
	o := options{conv: money.Identity()}
	for _, fn := range opts {
		fn(&o)
	}
	clk := clock.NewManual(Start)
	store := memory.NewStore()
	run := ledger.NewRunner(store, clk, zap.NewNop(), o.operations)
	return &Harness{
		Ctx:          context.Background(),
		Clock:        clk,
		Store:        store,
		Run:          run,
		Enrollment:   enrollment.NewUsecase(run, o.conv),
		Documents:    docuc.NewUsecase(run),
		Succession:   succession.NewUsecase(run, succession.Policy{FamilyPensionMonths: o.familyMonths}),
		Fund:         fund.NewUsecase(run, o.conv),
		Disbursement: disbursement.NewUsecase(run, o.conv, o.payouts),
		Admin:        admin.NewUsecase(run),
	}
}

func (h *Harness) AdminCaller() actor.Caller { return actor.Admin(AdminWallet) }

func PRSSInput(dob int, scheme participant.Scheme, planID, nominee, relation string) enrollment.RegisterInput {
	return enrollment.RegisterInput{
		Program:         participant.ProgramPRSS,
		DateOfBirth:     dob,
		Scheme:          scheme,
		PlanID:          planID,
		NomineeWallet:   nominee,
		NomineeName:     "Nominee " + nominee,
		NomineeRelation: relation,
	}
}

// GPSInput declares salary in whole local-currency units.
func GPSInput(dob int, salary int64, years int, employeeID, nominee, relation string) enrollment.RegisterInput {
	return enrollment.RegisterInput{
		Program:              participant.ProgramGPS,
		DateOfBirth:          dob,
		DeclaredSalary:       money.Major(salary),
		DeclaredServiceYears: years,
		EmployeeID:           employeeID,
		Designation:          "Section Officer",
		NomineeWallet:        nominee,
		NomineeName:          "Nominee " + nominee,
		NomineeRelation:      relation,
	}
}

func (h *Harness) Register(t testing.TB, wallet string, in enrollment.RegisterInput) *participant.Participant {
	t.Helper()
	p, err := h.Enrollment.Register(h.Ctx, actor.User(wallet), in)
	require.NoError(t, err)
	return p
}

// SubmitAll uploads every required document of g as caller.
func (h *Harness) SubmitAll(t testing.TB, caller actor.Caller, wallet string, g document.Group) {
	t.Helper()
	var items []docuc.Submission
	for _, typ := range document.RequiredTypes(g) {
		items = append(items, docuc.Submission{Type: typ, ContentRef: "ipfs://" + wallet + "/" + string(typ)})
	}
	_, err := h.Documents.SubmitBatch(h.Ctx, caller, wallet, g, items)
	require.NoError(t, err)
}

// ApprovePensionerDocuments submits and approves the whole pensioner group.
func (h *Harness) ApprovePensionerDocuments(t testing.TB, wallet string) {
	t.Helper()
	p, err := h.Run.Load(h.Ctx, wallet)
	require.NoError(t, err)
	g := document.PensionerGroup(p.Program)
	h.SubmitAll(t, actor.User(wallet), wallet, g)
	_, err = h.Documents.ApproveAllSubmitted(h.Ctx, h.AdminCaller(), wallet, g)
	require.NoError(t, err)
}

// Enroll registers wallet and takes the application to approved. GPS service
// data is verified with the declared figures.
func (h *Harness) Enroll(t testing.TB, wallet string, in enrollment.RegisterInput) *participant.Participant {
	t.Helper()
	h.Register(t, wallet, in)
	h.ApprovePensionerDocuments(t, wallet)
	if in.Program == participant.ProgramGPS {
		_, err := h.Enrollment.VerifyGPS(h.Ctx, h.AdminCaller(), wallet, enrollment.VerifyGPSInput{
			Salary:     in.DeclaredSalary,
			Years:      in.DeclaredServiceYears,
			EmployeeID: in.EmployeeID,
		})
		require.NoError(t, err)
	}
	p, err := h.Enrollment.Approve(h.Ctx, h.AdminCaller(), wallet)
	require.NoError(t, err)
	return p
}

// Contribute pays n consecutive monthly contributions, moving the clock one
// calendar month after each.
func (h *Harness) Contribute(t testing.TB, wallet string, n int) *participant.Participant {
	t.Helper()
	p, err := h.Run.Load(h.Ctx, wallet)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		p, err = h.Fund.ContributeMonthly(h.Ctx, actor.User(wallet), p.MonthlyContribution)
		require.NoError(t, err, "contribution %d", i+1)
		h.Clock.AddMonths(1)
	}
	return p
}

// Succeed reports and verifies the death of wallet, uploads the nominee's bank
// proof, then files and approves the nominee claim.
func (h *Harness) Succeed(t testing.TB, wallet, nominee string) *participant.Participant {
	t.Helper()
	nom := actor.User(nominee)
	_, err := h.Succession.ReportDeath(h.Ctx, nom, wallet, "ipfs://death/"+wallet)
	require.NoError(t, err)
	_, err = h.Succession.VerifyDeath(h.Ctx, h.AdminCaller(), wallet, "")
	require.NoError(t, err)
	_, err = h.Documents.Submit(h.Ctx, nom, wallet, document.GroupNomineeClaim, document.NomineeBankProof, "ipfs://bank/"+nominee)
	require.NoError(t, err)
	_, err = h.Succession.ApplyNomineeClaim(h.Ctx, nom, wallet, "ipfs://nid/"+nominee, "ipfs://relation/"+nominee)
	require.NoError(t, err)
	p, err := h.Succession.ApproveNomineeClaim(h.Ctx, h.AdminCaller(), wallet)
	require.NoError(t, err)
	return p
}

// NextMonth moves the clock past the monthly payout interval.
func (h *Harness) NextMonth() { h.Clock.Advance(disbursement.MonthlyInterval) }
