package ledger

import (
	"pension-ledger/internal/domain/actor"
	"pension-ledger/internal/domain/participant"
	"pension-ledger/pkg/pensionerr"
)

func RequireAdmin(c actor.Caller) error {
	if !c.IsAdmin() {
		return pensionerr.New(pensionerr.NotAdmin, "admin only")
	}
	return nil
}

func RequireSelf(c actor.Caller, p *participant.Participant) error {
	if !c.Is(p.Wallet) {
		return pensionerr.New(pensionerr.NotParticipant, "caller is not the participant")
	}
	return nil
}

func RequireNominee(c actor.Caller, p *participant.Participant) error {
	if p.Nominee.Wallet == "" || !c.Is(p.Nominee.Wallet) {
		return pensionerr.New(pensionerr.NotNominee, "caller is not the registered nominee")
	}
	return nil
}

func RequireOpen(p *participant.Participant) error {
	if p.IsClosed() {
		return pensionerr.New(pensionerr.AccountClosed, "account closed")
	}
	return nil
}

func RequireActive(p *participant.Participant) error {
	if err := RequireOpen(p); err != nil {
		return err
	}
	if p.AccountStatus != participant.AccountActive {
		return pensionerr.New(pensionerr.AccountNotActive, "account not active")
	}
	return nil
}

func RequireApproved(p *participant.Participant) error {
	if p.ApplicationStatus != participant.ApplicationApproved {
		return pensionerr.New(pensionerr.ApplicationNotApproved, "application not approved")
	}
	return nil
}

func RequireAlive(p *participant.Participant) error {
	if p.Death.IsDeceased {
		return pensionerr.New(pensionerr.AlreadyDeceased, "participant is deceased")
	}
	return nil
}

func RequireGPS(p *participant.Participant) error {
	if !p.IsGPS() {
		return pensionerr.New(pensionerr.NotGpsPensioner, "GPS pensioners only")
	}
	return nil
}

func RequirePRSS(p *participant.Participant) error {
	if !p.IsPRSS() {
		return pensionerr.New(pensionerr.NotPrssPensioner, "PRSS pensioners only")
	}
	return nil
}

// RequireSuccession checks that the nominee may act on the aggregate: caller
// is the nominee, death is verified and the claim approved.
func RequireSuccession(c actor.Caller, p *participant.Participant) error {
	if err := RequireNominee(c, p); err != nil {
		return err
	}
	if !p.Death.IsDeceased {
		return pensionerr.New(pensionerr.PensionerNotDeceased, "death not verified")
	}
	if p.Claim.Status != participant.ClaimApproved {
		return pensionerr.New(pensionerr.ClaimNotApproved, "nominee claim not approved")
	}
	return nil
}

// First returns the first non-nil error.
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
