package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pension-ledger/internal/domain/actor"
	"pension-ledger/internal/domain/audit"
	"pension-ledger/internal/domain/participant"
	"pension-ledger/internal/domain/uow"
	"pension-ledger/internal/testutil/auditmock"
	"pension-ledger/internal/testutil/documentmock"
	"pension-ledger/internal/testutil/participantmock"
	"pension-ledger/internal/testutil/uowmock"
	"pension-ledger/pkg/clock"
	"pension-ledger/pkg/money"
	"pension-ledger/pkg/pensionerr"
)

type recordingObserver struct{ calls [][2]string }

func (o *recordingObserver) ObserveOperation(op, outcome string) {
	o.calls = append(o.calls, [2]string{op, outcome})
}

var t0 = time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)

func fixture(p *participant.Participant) (*participantmock.Repo, *auditmock.Repo, uow.Repos) {
	parts := &participantmock.Repo{
		GetByWalletForUpdateFn: func(_ context.Context, wallet string) (*participant.Participant, error) {
			if p == nil || wallet != p.Wallet {
				return nil, participant.ErrNotFound
			}
			return p.Clone(), nil
		},
	}
	trail := &auditmock.Repo{}
	return parts, trail, uow.Repos{Participants: parts, Documents: &documentmock.Repo{}, Audit: trail}
}

func TestMutate_SavesAndRecords(t *testing.T) {
	parts, trail, repos := fixture(&participant.Participant{ID: 1, Wallet: "0xaa", Version: 3})
	var saved *participant.Participant
	parts.SaveFn = func(_ context.Context, p *participant.Participant) error {
		saved = p.Clone()
		return nil
	}
	obs := &recordingObserver{}
	r := NewRunner(uowmock.Passthrough(repos), clock.NewManual(t0), nil, obs)

	out, err := r.Mutate(context.Background(), "touch", actor.Admin("0xAD"), "0xAA",
		func(op Op, p *participant.Participant) error {
			assert.Equal(t, t0, op.Now)
			assert.Equal(t, "0xaa", op.Wallet)
			p.ClosureReason = "touched"
			return op.Record(audit.ActionClosureRequested, "touched", money.Major(1))
		})
	require.NoError(t, err)

	assert.Equal(t, uint64(4), out.Version)
	require.NotNil(t, saved)
	assert.Equal(t, "touched", saved.ClosureReason)

	require.Len(t, trail.Entries, 1)
	e := trail.Entries[0]
	assert.Equal(t, "0xaa", e.Wallet)
	assert.Equal(t, "0xad", e.Actor)
	assert.Equal(t, money.Major(1), e.Amount)
	assert.Equal(t, t0, e.OccurredAt)
	assert.Len(t, e.EntryID, 32)

	assert.Equal(t, [][2]string{{"touch", "ok"}}, obs.calls)
}

func TestMutate_GuardFailureSkipsSave(t *testing.T) {
	parts, trail, repos := fixture(&participant.Participant{ID: 1, Wallet: "0xaa"})
	parts.SaveFn = func(context.Context, *participant.Participant) error {
		t.Fatalf("Save must not be called")
		return nil
	}
	obs := &recordingObserver{}
	r := NewRunner(uowmock.Passthrough(repos), nil, nil, obs)

	_, err := r.Mutate(context.Background(), "guarded", actor.User("0xbb"), "0xaa",
		func(op Op, p *participant.Participant) error { return RequireAdmin(op.Caller) })

	assert.True(t, pensionerr.Is(err, pensionerr.NotAdmin))
	assert.Empty(t, trail.Entries)
	assert.Equal(t, [][2]string{{"guarded", "NotAdmin"}}, obs.calls)
}

func TestMutate_UnknownWallet(t *testing.T) {
	_, _, repos := fixture(nil)
	r := NewRunner(uowmock.Passthrough(repos), nil, nil, nil)

	_, err := r.Mutate(context.Background(), "x", actor.Admin("0xad"), "0xaa",
		func(Op, *participant.Participant) error { return nil })
	assert.True(t, pensionerr.Is(err, pensionerr.ParticipantNotFound))
}

func TestMutate_SaveFailureIsInternal(t *testing.T) {
	parts, _, repos := fixture(&participant.Participant{ID: 1, Wallet: "0xaa"})
	parts.SaveFn = func(context.Context, *participant.Participant) error { return errors.New("disk full") }
	r := NewRunner(uowmock.Passthrough(repos), nil, nil, nil)

	_, err := r.Mutate(context.Background(), "x", actor.Admin("0xad"), "0xaa",
		func(Op, *participant.Participant) error { return nil })
	assert.True(t, pensionerr.Is(err, pensionerr.Internal))
}

func TestMutate_NoUnitOfWork(t *testing.T) {
	r := NewRunner(nil, nil, nil, nil)
	_, err := r.Mutate(context.Background(), "x", actor.Admin("0xad"), "0xaa",
		func(Op, *participant.Participant) error { return nil })
	assert.True(t, pensionerr.Is(err, pensionerr.Internal))
}

func TestInsert_DuplicateIsAlreadyRegistered(t *testing.T) {
	parts, _, repos := fixture(nil)
	parts.CreateFn = func(context.Context, *participant.Participant) error { return participant.ErrDuplicate }
	r := NewRunner(uowmock.Passthrough(repos), nil, nil, nil)

	_, err := r.Insert(context.Background(), "register", actor.User("0xaa"),
		&participant.Participant{Wallet: "0xaa"}, nil)
	assert.True(t, pensionerr.Is(err, pensionerr.AlreadyRegistered))
}

func TestInsert_SetsFirstVersion(t *testing.T) {
	_, trail, repos := fixture(nil)
	r := NewRunner(uowmock.Passthrough(repos), clock.NewManual(t0), nil, nil)

	out, err := r.Insert(context.Background(), "register", actor.User("0xaa"),
		&participant.Participant{Wallet: "0xaa"},
		func(op Op, p *participant.Participant) error {
			return op.Record(audit.ActionRegistered, "prss", 0)
		})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), out.Version)
	require.Len(t, trail.Entries, 1)
	assert.Equal(t, audit.ActionRegistered, trail.Entries[0].Action)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want pensionerr.Kind
	}{
		{"nil", nil, ""},
		{"not found", participant.ErrNotFound, pensionerr.ParticipantNotFound},
		{"duplicate", participant.ErrDuplicate, pensionerr.AlreadyRegistered},
		{"classified", pensionerr.New(pensionerr.TooEarly, "wait"), pensionerr.TooEarly},
		{"other", errors.New("connection reset"), pensionerr.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pensionerr.KindOf(Classify(tt.in)))
		})
	}
}

func TestRequireSuccession(t *testing.T) {
	p := &participant.Participant{Wallet: "0xaa", Nominee: participant.Nominee{Wallet: "0xbb"}}
	nominee := actor.User("0xbb")

	assert.True(t, pensionerr.Is(RequireSuccession(actor.User("0xcc"), p), pensionerr.NotNominee))
	assert.True(t, pensionerr.Is(RequireSuccession(nominee, p), pensionerr.PensionerNotDeceased))

	p.Death.IsDeceased = true
	assert.True(t, pensionerr.Is(RequireSuccession(nominee, p), pensionerr.ClaimNotApproved))

	p.Claim.Status = participant.ClaimApproved
	assert.NoError(t, RequireSuccession(nominee, p))
}
