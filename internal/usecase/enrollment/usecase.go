package enrollment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pension-ledger/internal/domain/actor"
	"pension-ledger/internal/domain/audit"
	"pension-ledger/internal/domain/benefit"
	"pension-ledger/internal/domain/document"
	"pension-ledger/internal/domain/participant"
	"pension-ledger/internal/usecase/ledger"
	"pension-ledger/pkg/money"
	"pension-ledger/pkg/pensionerr"
)

type Usecase struct {
	run  *ledger.Runner
	conv money.Converter
}

// NewUsecase: conv turns plan amounts quoted in local currency into ledger units.
func NewUsecase(run *ledger.Runner, conv money.Converter) *Usecase {
	if conv == nil {
		conv = money.Identity()
	}
	return &Usecase{run: run, conv: conv}
}

// Register enrolls the caller. A rejected participant may register again under
// the same program; the aggregate is reused.
func (u *Usecase) Register(ctx context.Context, caller actor.Caller, in RegisterInput) (*participant.Participant, error) {
	if caller.Wallet == "" {
		return nil, u.run.Finish("register", caller, "", pensionerr.New(pensionerr.NotParticipant, "missing caller identity"))
	}

	existing, err := u.run.Load(ctx, caller.Wallet)
	switch {
	case err == nil:
		if err := registrationOpen(existing); err != nil {
			return nil, u.run.Finish("register", caller, caller.Wallet, err)
		}
	case !pensionerr.Is(err, pensionerr.ParticipantNotFound):
		return nil, u.run.Finish("register", caller, caller.Wallet, err)
	}

	now := u.run.Now()
	if err := u.validate(caller, in, now); err != nil {
		return nil, u.run.Finish("register", caller, caller.Wallet, err)
	}

	if existing == nil {
		p := &participant.Participant{
			Wallet:        caller.Wallet,
			Program:       in.Program,
			AccountStatus: participant.AccountActive,
			Death:         participant.DeathReport{Status: participant.DeathNone},
			Claim:         participant.NomineeClaim{Status: participant.ClaimNone},
			Disbursement:  participant.Disbursement{Mode: participant.ModeNotChosen},
		}
		u.apply(p, in)
		return u.run.Insert(ctx, "register", caller, p, func(op ledger.Op, p *participant.Participant) error {
			return op.Record(audit.ActionRegistered, string(p.Program), 0)
		})
	}

	return u.run.Mutate(ctx, "register", caller, caller.Wallet, func(op ledger.Op, p *participant.Participant) error {
		// re-check under the lock
		if err := registrationOpen(p); err != nil {
			return err
		}
		if p.Program != in.Program {
			return pensionerr.Newf(pensionerr.ProgramMismatch, "registered under %s", p.Program)
		}
		u.apply(p, in)
		return op.Record(audit.ActionRegistered, "re-registration", 0)
	})
}

func registrationOpen(p *participant.Participant) error {
	if p.IsClosed() {
		return pensionerr.New(pensionerr.AccountClosed, "account closed")
	}
	switch p.ApplicationStatus {
	case participant.ApplicationPending, participant.ApplicationApproved:
		return pensionerr.New(pensionerr.AlreadyRegistered, "application already "+string(p.ApplicationStatus))
	}
	if p.AccountStatus != participant.AccountActive {
		return pensionerr.New(pensionerr.AccountNotActive, "account not active")
	}
	return nil
}

func (u *Usecase) validate(caller actor.Caller, in RegisterInput, now time.Time) error {
	if !in.Program.Valid() {
		return pensionerr.New(pensionerr.MissingRequiredField, "program")
	}
	if _, err := benefit.ParseDOB(in.DateOfBirth); err != nil {
		return pensionerr.Wrap(err, pensionerr.InvalidDateOfBirth, "")
	}
	if age := benefit.YearAge(in.DateOfBirth, now); age < benefit.MinRegistrationAge {
		return pensionerr.Newf(pensionerr.BelowMinimumAge, "age %d is below %d", age, benefit.MinRegistrationAge)
	}

	nominee := actor.NormalizeWallet(in.NomineeWallet)
	if nominee == "" || nominee == caller.Wallet {
		return pensionerr.New(pensionerr.InvalidNominee, "nominee must be a different wallet")
	}
	if strings.TrimSpace(in.NomineeName) == "" {
		return pensionerr.New(pensionerr.MissingRequiredField, "nominee name")
	}
	if strings.TrimSpace(in.NomineeRelation) == "" {
		return pensionerr.New(pensionerr.MissingRequiredField, "nominee relation")
	}

	switch in.Program {
	case participant.ProgramPRSS:
		if !in.Scheme.Valid() {
			return pensionerr.New(pensionerr.MissingRequiredField, "scheme")
		}
		if _, ok := benefit.LookupPlan(in.Scheme, in.PlanID); !ok {
			return pensionerr.Newf(pensionerr.MissingRequiredField, "plan %q is not offered under %s", in.PlanID, in.Scheme)
		}
	case participant.ProgramGPS:
		if in.DeclaredSalary <= 0 {
			return pensionerr.New(pensionerr.MissingRequiredField, "basic salary")
		}
		if in.DeclaredServiceYears < 0 {
			return pensionerr.New(pensionerr.MissingRequiredField, "service years")
		}
		if strings.TrimSpace(in.EmployeeID) == "" {
			return pensionerr.New(pensionerr.MissingRequiredField, "employee id")
		}
		if strings.TrimSpace(in.Designation) == "" {
			return pensionerr.New(pensionerr.MissingRequiredField, "designation")
		}
	}
	return nil
}

func (u *Usecase) apply(p *participant.Participant, in RegisterInput) {
	p.ApplicationStatus = participant.ApplicationPending
	p.ApplicationRejectReason = ""
	p.DateOfBirth = in.DateOfBirth
	p.Nominee = participant.Nominee{
		Wallet:   actor.NormalizeWallet(in.NomineeWallet),
		Name:     strings.TrimSpace(in.NomineeName),
		Relation: participant.ParseRelation(in.NomineeRelation),
	}
	switch p.Program {
	case participant.ProgramPRSS:
		plan, _ := benefit.LookupPlan(in.Scheme, in.PlanID)
		p.Scheme = in.Scheme
		p.PlanID = plan.ID
		p.MonthlyContribution = u.conv.ToLedger(plan.Contribution)
	case participant.ProgramGPS:
		p.GPS.DeclaredSalary = in.DeclaredSalary
		p.GPS.DeclaredServiceYears = in.DeclaredServiceYears
		p.GPS.EmployeeID = strings.TrimSpace(in.EmployeeID)
		p.GPS.Designation = strings.TrimSpace(in.Designation)
	}
}

// Approve moves a pending application to approved once every required
// pensioner document is approved (and, for GPS, service data is verified).
func (u *Usecase) Approve(ctx context.Context, caller actor.Caller, wallet string) (*participant.Participant, error) {
	return u.run.Mutate(ctx, "approve_application", caller, wallet, func(op ledger.Op, p *participant.Participant) error {
		if err := ledger.First(ledger.RequireAdmin(caller), ledger.RequireOpen(p)); err != nil {
			return err
		}
		if p.ApplicationStatus != participant.ApplicationPending {
			return pensionerr.New(pensionerr.ApplicationNotPending, "application is "+string(p.ApplicationStatus))
		}
		if err := requireDocumentsApproved(op, p); err != nil {
			return err
		}
		if p.IsGPS() && !p.GPS.Verified {
			return pensionerr.New(pensionerr.GpsNotVerified, "service data not verified")
		}
		p.ApplicationStatus = participant.ApplicationApproved
		p.ApplicationRejectReason = ""
		return op.Record(audit.ActionApplicationApprove, "", 0)
	})
}

func requireDocumentsApproved(op ledger.Op, p *participant.Participant) error {
	g := document.PensionerGroup(p.Program)
	docs, err := op.Repos.Documents.ListByParticipant(op.Ctx, p.ID, g)
	if err != nil {
		return pensionerr.Wrap(err, pensionerr.Internal, "list documents")
	}
	approved := make(map[document.Type]bool, len(docs))
	for _, d := range docs {
		if d.Status == document.StatusApproved {
			approved[d.Type] = true
		}
	}
	var pending []string
	for _, t := range document.RequiredTypes(g) {
		if !approved[t] {
			pending = append(pending, string(t))
		}
	}
	if len(pending) > 0 {
		return pensionerr.New(pensionerr.DocumentsIncomplete, "not approved: "+strings.Join(pending, ", "))
	}
	return nil
}

func (u *Usecase) Reject(ctx context.Context, caller actor.Caller, wallet, reason string) (*participant.Participant, error) {
	return u.run.Mutate(ctx, "reject_application", caller, wallet, func(op ledger.Op, p *participant.Participant) error {
		if err := ledger.First(ledger.RequireAdmin(caller), ledger.RequireOpen(p)); err != nil {
			return err
		}
		if p.ApplicationStatus != participant.ApplicationPending {
			return pensionerr.New(pensionerr.ApplicationNotPending, "application is "+string(p.ApplicationStatus))
		}
		reason = strings.TrimSpace(reason)
		if reason == "" {
			return pensionerr.New(pensionerr.MissingRequiredField, "reason")
		}
		p.ApplicationStatus = participant.ApplicationRejected
		p.ApplicationRejectReason = reason
		return op.Record(audit.ActionApplicationReject, reason, 0)
	})
}

// VerifyGPS attests the service data that payout math uses. Figures are frozen
// into the disbursement record at pension start, so edits stop there.
func (u *Usecase) VerifyGPS(ctx context.Context, caller actor.Caller, wallet string, in VerifyGPSInput) (*participant.Participant, error) {
	return u.run.Mutate(ctx, "verify_gps", caller, wallet, func(op ledger.Op, p *participant.Participant) error {
		if err := ledger.First(ledger.RequireAdmin(caller), ledger.RequireOpen(p), ledger.RequireGPS(p)); err != nil {
			return err
		}
		if p.Disbursement.Started {
			return pensionerr.New(pensionerr.PensionAlreadyStarted, "pension already started")
		}
		if in.Salary <= 0 {
			return pensionerr.New(pensionerr.InvalidAmount, "salary must be positive")
		}
		if in.Years < 0 {
			return pensionerr.New(pensionerr.MissingRequiredField, "service years")
		}
		if strings.TrimSpace(in.EmployeeID) == "" {
			return pensionerr.New(pensionerr.MissingRequiredField, "employee id")
		}
		p.GPS.VerifiedSalary = in.Salary
		p.GPS.VerifiedServiceYears = in.Years
		p.GPS.VerifiedEmployeeID = strings.TrimSpace(in.EmployeeID)
		p.GPS.Verified = true
		return op.Record(audit.ActionGPSVerified,
			fmt.Sprintf("salary=%s years=%d employee=%s", in.Salary, in.Years, p.GPS.VerifiedEmployeeID), 0)
	})
}

func (u *Usecase) RequestClosure(ctx context.Context, caller actor.Caller, reason string) (*participant.Participant, error) {
	return u.run.Mutate(ctx, "request_closure", caller, caller.Wallet, func(op ledger.Op, p *participant.Participant) error {
		if err := ledger.First(ledger.RequireSelf(caller, p), ledger.RequireActive(p)); err != nil {
			return err
		}
		reason = strings.TrimSpace(reason)
		if reason == "" {
			return pensionerr.New(pensionerr.MissingRequiredField, "reason")
		}
		now := op.Now
		p.AccountStatus = participant.AccountClosureRequested
		p.ClosureReason = reason
		p.ClosureRequestedAt = &now
		return op.Record(audit.ActionClosureRequested, reason, 0)
	})
}

func (u *Usecase) CloseAccount(ctx context.Context, caller actor.Caller, wallet string) (*participant.Participant, error) {
	return u.run.Mutate(ctx, "close_account", caller, wallet, func(op ledger.Op, p *participant.Participant) error {
		if err := ledger.First(ledger.RequireAdmin(caller), ledger.RequireOpen(p)); err != nil {
			return err
		}
		if p.AccountStatus != participant.AccountClosureRequested {
			return pensionerr.New(pensionerr.ClosureNotRequested, "closure not requested")
		}
		now := op.Now
		p.AccountStatus = participant.AccountClosed
		p.ClosedAt = &now
		return op.Record(audit.ActionAccountClosed, p.ClosureReason, 0)
	})
}

// Get returns the aggregate to the participant, their nominee or an admin.
func (u *Usecase) Get(ctx context.Context, caller actor.Caller, wallet string) (*participant.Participant, error) {
	p, err := u.run.Load(ctx, wallet)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && !caller.Is(p.Wallet) && !caller.Is(p.Nominee.Wallet) {
		return nil, pensionerr.New(pensionerr.NotParticipant, "not allowed to view this participant")
	}
	return p, nil
}
