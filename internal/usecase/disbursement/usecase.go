package disbursement

import (
	"context"
	"fmt"

	"pension-ledger/internal/domain/actor"
	"pension-ledger/internal/domain/audit"
	"pension-ledger/internal/domain/benefit"
	"pension-ledger/internal/domain/participant"
	"pension-ledger/internal/usecase/ledger"
	"pension-ledger/pkg/id"
	"pension-ledger/pkg/money"
	"pension-ledger/pkg/pensionerr"
)

type Usecase struct {
	run     *ledger.Runner
	conv    money.Converter
	payouts PayoutObserver
}

func NewUsecase(run *ledger.Runner, conv money.Converter, payouts PayoutObserver) *Usecase {
	if conv == nil {
		conv = money.Identity()
	}
	if payouts == nil {
		payouts = nopPayouts{}
	}
	return &Usecase{run: run, conv: conv, payouts: payouts}
}

// pay wraps a payout mutation: fn returns the payment it wants committed, and
// the payment is only reported once the transaction is durable.
func (u *Usecase) pay(ctx context.Context, name string, caller actor.Caller, wallet string,
	fn func(op ledger.Op, p *participant.Participant) (*Payment, error)) (*Result, error) {

	var pm *Payment
	p, err := u.run.Mutate(ctx, name, caller, wallet, func(op ledger.Op, p *participant.Participant) error {
		var err error
		pm, err = fn(op, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	u.payouts.ObservePayout(string(pm.Kind), pm.Amount)
	return &Result{Participant: p, Payment: pm}, nil
}

func payment(op ledger.Op, p *participant.Participant, kind Kind, amount money.Amount) *Payment {
	return &Payment{
		ID:          id.Payment(),
		Participant: p.Wallet,
		Beneficiary: op.Caller.Wallet,
		Kind:        kind,
		Amount:      amount,
		PaidAt:      op.Now,
	}
}

func (u *Usecase) record(op ledger.Op, action audit.Action, pm *Payment) error {
	return op.Record(action, fmt.Sprintf("payment=%s beneficiary=%s", pm.ID, pm.Beneficiary), pm.Amount)
}

func requireRetirementAge(op ledger.Op, p *participant.Participant) error {
	dob, err := benefit.ParseDOB(p.DateOfBirth)
	if err != nil {
		return pensionerr.Wrap(err, pensionerr.InvalidDateOfBirth, "")
	}
	if age := benefit.AgeAt(dob, op.Now); age < benefit.RetirementAge {
		return pensionerr.Newf(pensionerr.NotRetirementAge, "age %d is below %d", age, benefit.RetirementAge)
	}
	return nil
}

func requireVerified(p *participant.Participant) error {
	if !p.GPS.Verified {
		return pensionerr.New(pensionerr.GpsNotVerified, "service data not verified")
	}
	return nil
}

func requireStarted(p *participant.Participant) error {
	if !p.Disbursement.Started {
		return pensionerr.New(pensionerr.PensionNotStarted, "pension not started")
	}
	return nil
}

func requireNoLumpSum(p *participant.Participant) error {
	if p.Disbursement.LumpSumWithdrawn {
		return pensionerr.New(pensionerr.LumpSumWithdrawn, "lump sum already withdrawn")
	}
	return nil
}

func requireCadence(op ledger.Op, p *participant.Participant) error {
	last := p.Disbursement.LastWithdrawalAt
	if last == nil {
		return nil
	}
	if next := last.Add(MonthlyInterval); op.Now.Before(next) {
		return pensionerr.Newf(pensionerr.TooEarly, "next payout after %s", next.Format("2006-01-02T15:04:05Z"))
	}
	return nil
}

// fixMonthlyAmount freezes the monthly payout from the current records. A
// PRSS pension needs the scheme's minimum number of monthly contributions.
func (u *Usecase) fixMonthlyAmount(op ledger.Op, p *participant.Participant) error {
	var monthly money.Amount
	switch p.Program {
	case participant.ProgramPRSS:
		need := benefit.SchemeMinMonths(p.Scheme)
		if p.Fund.TotalContributions <= 0 || p.Fund.MonthlyPaymentsCount < need {
			return pensionerr.Newf(pensionerr.InsufficientContributions,
				"%d of %d monthly contributions made", p.Fund.MonthlyPaymentsCount, need)
		}
		monthly = benefit.PRSSMonthlyAmount(p.Fund.TotalContributions, p.Scheme)
	case participant.ProgramGPS:
		if err := requireVerified(p); err != nil {
			return err
		}
		years := p.GPS.VerifiedServiceYears
		if benefit.PercentByYears(years) == 0 {
			return pensionerr.Newf(pensionerr.BelowMinimumServiceYears,
				"%d service years, at least %d needed", years, benefit.MinServiceYears)
		}
		monthly = u.conv.ToLedger(benefit.GPSMonthlyPension(p.GPS.VerifiedSalary, years))
	}
	now := op.Now
	p.Disbursement.Started = true
	p.Disbursement.StartedAt = &now
	p.Disbursement.MonthlyAmount = monthly
	return nil
}

// StartPension opens the disbursement phase and fixes the monthly amount.
func (u *Usecase) StartPension(ctx context.Context, caller actor.Caller) (*participant.Participant, error) {
	return u.run.Mutate(ctx, "start_pension", caller, caller.Wallet, func(op ledger.Op, p *participant.Participant) error {
		if err := ledger.First(
			ledger.RequireSelf(caller, p),
			ledger.RequireActive(p),
			ledger.RequireAlive(p),
			ledger.RequireApproved(p),
		); err != nil {
			return err
		}
		if p.Disbursement.Started {
			return pensionerr.New(pensionerr.PensionAlreadyStarted, "pension already started")
		}
		if err := requireRetirementAge(op, p); err != nil {
			return err
		}
		if err := u.fixMonthlyAmount(op, p); err != nil {
			return err
		}
		return op.Record(audit.ActionPensionStarted, "", p.Disbursement.MonthlyAmount)
	})
}

func chooseMonthly(op ledger.Op, p *participant.Participant) error {
	if err := ledger.First(requireStarted(p), requireNoLumpSum(p)); err != nil {
		return err
	}
	if p.Disbursement.Mode != participant.ModeNotChosen {
		return pensionerr.New(pensionerr.ModeAlreadyChosen, "pension mode already "+string(p.Disbursement.Mode))
	}
	p.Disbursement.Mode = participant.ModeMonthly
	return op.Record(audit.ActionMonthlyChosen, "", p.Disbursement.MonthlyAmount)
}

func (u *Usecase) ChooseMonthlyPension(ctx context.Context, caller actor.Caller) (*participant.Participant, error) {
	return u.run.Mutate(ctx, "choose_monthly_pension", caller, caller.Wallet, func(op ledger.Op, p *participant.Participant) error {
		if err := ledger.First(ledger.RequireSelf(caller, p), ledger.RequireOpen(p), ledger.RequireAlive(p)); err != nil {
			return err
		}
		return chooseMonthly(op, p)
	})
}

// WithdrawFullPension pays out the whole PRSS balance. The choice is permanent.
func (u *Usecase) WithdrawFullPension(ctx context.Context, caller actor.Caller) (*Result, error) {
	return u.pay(ctx, "withdraw_full_pension", caller, caller.Wallet, func(op ledger.Op, p *participant.Participant) (*Payment, error) {
		if err := ledger.First(
			ledger.RequireSelf(caller, p),
			ledger.RequireOpen(p),
			ledger.RequireAlive(p),
			ledger.RequirePRSS(p),
			requireLumpSumOpen(p),
		); err != nil {
			return nil, err
		}
		return u.lumpSum(op, p, KindLumpSum)
	})
}

func requireLumpSumOpen(p *participant.Participant) error {
	if err := ledger.First(requireStarted(p), requireNoLumpSum(p)); err != nil {
		return err
	}
	if p.Disbursement.Mode != participant.ModeNotChosen {
		return pensionerr.New(pensionerr.ModeAlreadyChosen, "pension mode already "+string(p.Disbursement.Mode))
	}
	return nil
}

func (u *Usecase) lumpSum(op ledger.Op, p *participant.Participant, kind Kind) (*Payment, error) {
	amount := p.PRSSBalance()
	if amount <= 0 {
		return nil, pensionerr.New(pensionerr.InsufficientFund, "no balance left")
	}
	now := op.Now
	p.Disbursement.Mode = participant.ModeLumpSum
	p.Disbursement.LumpSumWithdrawn = true
	p.Disbursement.TotalPaidOut += amount
	p.Disbursement.LastWithdrawalAt = &now
	pm := payment(op, p, kind, amount)
	return pm, u.record(op, audit.ActionLumpSumPaid, pm)
}

// monthly debits one monthly amount from the program balance. PRSS pays the
// remainder when less than a full month is left; GPS needs a full month
// allocated.
func (u *Usecase) monthly(op ledger.Op, p *participant.Participant, kind Kind) (*Payment, error) {
	if err := requireCadence(op, p); err != nil {
		return nil, err
	}
	amount := p.Disbursement.MonthlyAmount
	if amount <= 0 {
		return nil, pensionerr.New(pensionerr.InsufficientFund, "no monthly entitlement")
	}
	switch p.Program {
	case participant.ProgramPRSS:
		left := p.PRSSBalance()
		if left <= 0 {
			return nil, pensionerr.New(pensionerr.InsufficientFund, "no balance left")
		}
		amount = money.Min(amount, left)
	case participant.ProgramGPS:
		if p.Fund.AllocatedRemaining < amount {
			return nil, pensionerr.Newf(pensionerr.InsufficientFund,
				"allocated %s, monthly %s", p.Fund.AllocatedRemaining, amount)
		}
		p.Fund.AllocatedRemaining -= amount
	}
	now := op.Now
	p.Disbursement.TotalPaidOut += amount
	p.Disbursement.LastWithdrawalAt = &now
	return payment(op, p, kind, amount), nil
}

func requireMonthlyMode(p *participant.Participant) error {
	if err := ledger.First(requireStarted(p), requireNoLumpSum(p)); err != nil {
		return err
	}
	if p.Disbursement.Mode != participant.ModeMonthly {
		return pensionerr.New(pensionerr.MonthlyModeNotChosen, "monthly mode not chosen")
	}
	return nil
}

func (u *Usecase) WithdrawMonthlyPension(ctx context.Context, caller actor.Caller) (*Result, error) {
	return u.pay(ctx, "withdraw_monthly_pension", caller, caller.Wallet, func(op ledger.Op, p *participant.Participant) (*Payment, error) {
		if err := ledger.First(
			ledger.RequireSelf(caller, p),
			ledger.RequireOpen(p),
			ledger.RequireAlive(p),
			requireMonthlyMode(p),
		); err != nil {
			return nil, err
		}
		pm, err := u.monthly(op, p, KindMonthly)
		if err != nil {
			return nil, err
		}
		return pm, u.record(op, audit.ActionMonthlyPaid, pm)
	})
}

func (u *Usecase) gratuity(op ledger.Op, p *participant.Participant, kind Kind) (*Payment, error) {
	if err := ledger.First(ledger.RequireGPS(p), requireVerified(p)); err != nil {
		return nil, err
	}
	if p.Disbursement.GratuityClaimed {
		return nil, pensionerr.New(pensionerr.GratuityAlreadyClaimed, "gratuity already claimed")
	}
	amount := u.conv.ToLedger(benefit.GPSGratuity(p.GPS.VerifiedSalary, p.GPS.VerifiedServiceYears))
	if amount <= 0 {
		return nil, pensionerr.New(pensionerr.BelowMinimumServiceYears, "no verified service")
	}
	if p.Fund.AllocatedRemaining < amount {
		return nil, pensionerr.Newf(pensionerr.InsufficientFund,
			"allocated %s, gratuity %s", p.Fund.AllocatedRemaining, amount)
	}
	p.Fund.AllocatedRemaining -= amount
	p.Disbursement.GratuityClaimed = true
	p.Disbursement.TotalPaidOut += amount
	pm := payment(op, p, kind, amount)
	return pm, u.record(op, audit.ActionGratuityPaid, pm)
}

// ClaimGPSGratuity pays salary times service years once. It does not depend on
// the pension mode.
func (u *Usecase) ClaimGPSGratuity(ctx context.Context, caller actor.Caller) (*Result, error) {
	return u.pay(ctx, "claim_gps_gratuity", caller, caller.Wallet, func(op ledger.Op, p *participant.Participant) (*Payment, error) {
		if err := ledger.First(
			ledger.RequireSelf(caller, p),
			ledger.RequireOpen(p),
			ledger.RequireAlive(p),
			ledger.RequireApproved(p),
			ledger.RequireGPS(p),
		); err != nil {
			return nil, err
		}
		if err := requireRetirementAge(op, p); err != nil {
			return nil, err
		}
		return u.gratuity(op, p, KindGratuity)
	})
}

func succession(caller actor.Caller, p *participant.Participant) error {
	return ledger.First(ledger.RequireSuccession(caller, p), ledger.RequireOpen(p))
}

func requireNomineeMonthly(p *participant.Participant) error {
	if !p.Disbursement.NomineeMonthlyAllowed {
		return pensionerr.Newf(pensionerr.NomineeMonthlyNotAllowed,
			"no family pension for relation %s", p.Nominee.Relation)
	}
	return nil
}

// ChooseMonthlyPensionAsNominee opts the nominee into the family pension. Only
// a pension the participant started can be continued; its monthly amount is
// kept as fixed at start.
func (u *Usecase) ChooseMonthlyPensionAsNominee(ctx context.Context, caller actor.Caller, wallet string) (*participant.Participant, error) {
	return u.run.Mutate(ctx, "choose_monthly_pension_as_nominee", caller, wallet, func(op ledger.Op, p *participant.Participant) error {
		if err := ledger.First(succession(caller, p), requireNomineeMonthly(p)); err != nil {
			return err
		}
		return chooseMonthly(op, p)
	})
}

func (u *Usecase) WithdrawMonthlyPensionAsNominee(ctx context.Context, caller actor.Caller, wallet string) (*Result, error) {
	return u.pay(ctx, "withdraw_monthly_pension_as_nominee", caller, wallet, func(op ledger.Op, p *participant.Participant) (*Payment, error) {
		if err := ledger.First(succession(caller, p), requireNomineeMonthly(p), requireMonthlyMode(p)); err != nil {
			return nil, err
		}
		d := &p.Disbursement
		if d.NomineeMaxMonthsAllowed > 0 && d.NomineeMonthlyWithdrawCount >= d.NomineeMaxMonthsAllowed {
			return nil, pensionerr.Newf(pensionerr.FamilyPensionPeriodEnded,
				"all %d family pension months paid", d.NomineeMaxMonthsAllowed)
		}
		pm, err := u.monthly(op, p, KindNomineeMonthly)
		if err != nil {
			return nil, err
		}
		d.NomineeMonthlyWithdrawCount++
		return pm, u.record(op, audit.ActionNomineeMonthlyPay, pm)
	})
}

// NomineeWithdrawFullPension pays the PRSS balance to the nominee. Like the
// participant's lump sum it needs a started pension with no mode chosen.
func (u *Usecase) NomineeWithdrawFullPension(ctx context.Context, caller actor.Caller, wallet string) (*Result, error) {
	return u.pay(ctx, "nominee_withdraw_full_pension", caller, wallet, func(op ledger.Op, p *participant.Participant) (*Payment, error) {
		if err := ledger.First(succession(caller, p), ledger.RequirePRSS(p), requireLumpSumOpen(p)); err != nil {
			return nil, err
		}
		return u.lumpSum(op, p, KindNomineeLumpSum)
	})
}

// NomineeClaimGPSGratuity pays the gratuity to the nominee. There is no age
// gate; the once-per-aggregate rule still holds.
func (u *Usecase) NomineeClaimGPSGratuity(ctx context.Context, caller actor.Caller, wallet string) (*Result, error) {
	return u.pay(ctx, "nominee_claim_gps_gratuity", caller, wallet, func(op ledger.Op, p *participant.Participant) (*Payment, error) {
		if err := succession(caller, p); err != nil {
			return nil, err
		}
		return u.gratuity(op, p, KindNomineeGratuity)
	})
}
