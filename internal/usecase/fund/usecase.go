package fund

import (
	"context"

	"pension-ledger/internal/domain/actor"
	"pension-ledger/internal/domain/audit"
	"pension-ledger/internal/domain/benefit"
	"pension-ledger/internal/domain/participant"
	"pension-ledger/internal/usecase/ledger"
	"pension-ledger/pkg/money"
	"pension-ledger/pkg/pensionerr"
)

type Usecase struct {
	run  *ledger.Runner
	conv money.Converter
}

func NewUsecase(run *ledger.Runner, conv money.Converter) *Usecase {
	if conv == nil {
		conv = money.Identity()
	}
	return &Usecase{run: run, conv: conv}
}

// AllocateGPSFund credits amount (ledger units) to a GPS participant's payout
// balance.
func (u *Usecase) AllocateGPSFund(ctx context.Context, caller actor.Caller, wallet string, amount money.Amount) (*participant.Participant, error) {
	return u.run.Mutate(ctx, "allocate_gps_fund", caller, wallet, func(op ledger.Op, p *participant.Participant) error {
		if err := ledger.First(
			ledger.RequireAdmin(caller),
			ledger.RequireOpen(p),
			ledger.RequireGPS(p),
			ledger.RequireApproved(p),
		); err != nil {
			return err
		}
		if amount <= 0 {
			return pensionerr.New(pensionerr.InvalidAmount, "allocation must be positive")
		}
		p.Fund.AllocatedRemaining += amount
		p.Fund.AllocatedTotal += amount
		return op.Record(audit.ActionGPSFundAllocated, "", amount)
	})
}

// ContributeMonthly accepts the caller's plan contribution for the current
// calendar month (UTC).
func (u *Usecase) ContributeMonthly(ctx context.Context, caller actor.Caller, amount money.Amount) (*participant.Participant, error) {
	return u.run.Mutate(ctx, "contribute_monthly", caller, caller.Wallet, func(op ledger.Op, p *participant.Participant) error {
		if err := ledger.First(
			ledger.RequireSelf(caller, p),
			ledger.RequireActive(p),
			ledger.RequireAlive(p),
			ledger.RequirePRSS(p),
			ledger.RequireApproved(p),
		); err != nil {
			return err
		}
		if p.Disbursement.Started {
			return pensionerr.New(pensionerr.PensionAlreadyStarted, "contributions end once the pension starts")
		}
		if amount != p.MonthlyContribution {
			return pensionerr.Newf(pensionerr.InvalidAmount, "contribution must be %s", p.MonthlyContribution)
		}
		period := benefit.Period(op.Now)
		if p.Fund.LastContributionPeriod == period {
			return pensionerr.Newf(pensionerr.AlreadyPaidThisMonth, "already contributed for %d", period)
		}
		p.Fund.TotalContributions += amount
		p.Fund.MonthlyPaymentsCount++
		p.Fund.LastContributionPeriod = period
		return op.Record(audit.ActionContributionMade, "", amount)
	})
}

// Sufficiency reports how far a GPS participant's allocation is from one year
// of pension plus gratuity. Figures are in ledger units.
func (u *Usecase) Sufficiency(ctx context.Context, caller actor.Caller, wallet string) (benefit.Sufficiency, error) {
	if err := ledger.RequireAdmin(caller); err != nil {
		return benefit.Sufficiency{}, err
	}
	p, err := u.run.Load(ctx, wallet)
	if err != nil {
		return benefit.Sufficiency{}, err
	}
	if err := ledger.RequireGPS(p); err != nil {
		return benefit.Sufficiency{}, err
	}
	if !p.GPS.Verified {
		return benefit.Sufficiency{}, pensionerr.New(pensionerr.GpsNotVerified, "service data not verified")
	}
	salary := u.conv.ToLedger(p.GPS.VerifiedSalary)
	return benefit.GPSFundSufficiency(salary, p.GPS.VerifiedServiceYears, p.Fund.AllocatedTotal), nil
}
