// Package ledger holds what every lifecycle usecase shares: running a mutation
// against one locked participant aggregate, appending the audit entry in the
// same transaction, and the common guards.
package ledger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"pension-ledger/internal/domain/actor"
	"pension-ledger/internal/domain/audit"
	"pension-ledger/internal/domain/participant"
	"pension-ledger/internal/domain/uow"
	"pension-ledger/pkg/clock"
	"pension-ledger/pkg/id"
	"pension-ledger/pkg/money"
	"pension-ledger/pkg/pensionerr"
)

// Observer receives one call per finished operation. outcome is "ok" or the
// failure kind.
type Observer interface {
	ObserveOperation(op string, outcome string)
}

type nopObserver struct{}

func (nopObserver) ObserveOperation(string, string) {}

type Runner struct {
	uow   uow.UnitOfWork
	clock clock.Clock
	log   *zap.Logger
	obs   Observer
}

func NewRunner(tx uow.UnitOfWork, clk clock.Clock, log *zap.Logger, obs Observer) *Runner {
	if clk == nil {
		clk = clock.System()
	}
	if log == nil {
		log = zap.NewNop()
	}
	if obs == nil {
		obs = nopObserver{}
	}
	return &Runner{uow: tx, clock: clk, log: log, obs: obs}
}

func (r *Runner) Now() time.Time      { return r.clock.Now().UTC() }
func (r *Runner) UoW() uow.UnitOfWork { return r.uow }
func (r *Runner) Logger() *zap.Logger { return r.log }

// Op carries the trusted commit time and the tx-bound repositories into a
// mutation.
type Op struct {
	Ctx    context.Context
	Repos  uow.Repos
	Now    time.Time
	Caller actor.Caller
	Wallet string
}

// Record appends an audit entry for the aggregate being mutated.
func (o Op) Record(action audit.Action, detail string, amount money.Amount) error {
	return o.Repos.Audit.Append(o.Ctx, &audit.Entry{
		EntryID:    id.Entry(),
		Wallet:     o.Wallet,
		Actor:      o.Caller.Wallet,
		Action:     action,
		Detail:     detail,
		Amount:     amount,
		OccurredAt: o.Now,
	})
}

// Mutate locks the aggregate for wallet, runs fn and persists the participant
// when fn succeeds. Any error rolls the whole transaction back. The returned
// snapshot reflects the committed state.
func (r *Runner) Mutate(ctx context.Context, name string, caller actor.Caller, wallet string,
	fn func(op Op, p *participant.Participant) error) (*participant.Participant, error) {

	if r.uow == nil {
		return nil, pensionerr.New(pensionerr.Internal, "ledger unavailable")
	}
	wallet = actor.NormalizeWallet(wallet)
	now := r.Now()

	var out *participant.Participant
	err := r.uow.WithinParticipantTx(ctx, wallet, func(repos uow.Repos, p *participant.Participant) error {
		op := Op{Ctx: ctx, Repos: repos, Now: now, Caller: caller, Wallet: wallet}
		if err := fn(op, p); err != nil {
			return err
		}
		p.Version++
		if err := repos.Participants.Save(ctx, p); err != nil {
			return pensionerr.Wrap(err, pensionerr.Internal, "save participant")
		}
		out = p.Clone()
		return nil
	})
	err = Classify(err)
	r.finish(name, caller, wallet, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Insert creates a new aggregate and lets after record its audit trail inside
// the same transaction. A concurrent insert for the same wallet surfaces as
// AlreadyRegistered.
func (r *Runner) Insert(ctx context.Context, name string, caller actor.Caller, p *participant.Participant,
	after func(op Op, p *participant.Participant) error) (*participant.Participant, error) {

	if r.uow == nil {
		return nil, pensionerr.New(pensionerr.Internal, "ledger unavailable")
	}
	now := r.Now()
	var out *participant.Participant
	err := r.uow.WithinTx(ctx, func(repos uow.Repos) error {
		p.Version = 1
		if err := repos.Participants.Create(ctx, p); err != nil {
			return err
		}
		op := Op{Ctx: ctx, Repos: repos, Now: now, Caller: caller, Wallet: p.Wallet}
		if after != nil {
			if err := after(op, p); err != nil {
				return err
			}
		}
		out = p.Clone()
		return nil
	})
	err = Classify(err)
	r.finish(name, caller, p.Wallet, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Load reads the aggregate without locking it.
func (r *Runner) Load(ctx context.Context, wallet string) (*participant.Participant, error) {
	if r.uow == nil {
		return nil, pensionerr.New(pensionerr.Internal, "ledger unavailable")
	}
	var out *participant.Participant
	err := r.uow.WithinTx(ctx, func(repos uow.Repos) error {
		p, err := repos.Participants.GetByWallet(ctx, actor.NormalizeWallet(wallet))
		out = p
		return err
	})
	if err != nil {
		return nil, Classify(err)
	}
	return out, nil
}

// Finish reports an operation that did not go through Mutate.
func (r *Runner) Finish(name string, caller actor.Caller, wallet string, err error) error {
	err = Classify(err)
	r.finish(name, caller, wallet, err)
	return err
}

func (r *Runner) finish(name string, caller actor.Caller, wallet string, err error) {
	if err != nil {
		kind := pensionerr.KindOf(err)
		r.obs.ObserveOperation(name, string(kind))
		fields := []zap.Field{
			zap.String("op", name),
			zap.String("participant", wallet),
			zap.String("caller", caller.Wallet),
			zap.String("kind", string(kind)),
		}
		if kind == pensionerr.Internal {
			r.log.Error("operation failed", append(fields, zap.Error(err))...)
		} else {
			r.log.Info("operation rejected", fields...)
		}
		return
	}
	r.obs.ObserveOperation(name, "ok")
	r.log.Info("operation committed",
		zap.String("op", name),
		zap.String("participant", wallet),
		zap.String("caller", caller.Wallet))
}

// Classify maps repository sentinels to failure kinds; already classified and
// nil errors pass through.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var pe *pensionerr.Error
	if errors.As(err, &pe) {
		return err
	}
	switch {
	case errors.Is(err, participant.ErrNotFound):
		return pensionerr.Wrap(err, pensionerr.ParticipantNotFound, "")
	case errors.Is(err, participant.ErrDuplicate):
		return pensionerr.Wrap(err, pensionerr.AlreadyRegistered, "")
	}
	return pensionerr.Wrap(err, pensionerr.Internal, "ledger")
}
