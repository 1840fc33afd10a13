package gormdb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pension-ledger/internal/domain/audit"
	"pension-ledger/internal/domain/document"
	"pension-ledger/internal/domain/participant"
	"pension-ledger/internal/domain/uow"
	"pension-ledger/internal/infrastructure/db"
	"pension-ledger/pkg/money"
)

// openTestDB opens a file-backed sqlite ledger; the pool spans several
// connections, so a private :memory: database would not be shared.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.OpenGormWithDialector(sqlite.Open(filepath.Join(t.TempDir(), "ledger.db")))
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func newParticipant(wallet string, program participant.Program) *participant.Participant {
	return &participant.Participant{
		Wallet:            wallet,
		Program:           program,
		ApplicationStatus: participant.ApplicationPending,
		AccountStatus:     participant.AccountActive,
		Nominee:           participant.Nominee{Wallet: "0xb0b", Name: "Bob", Relation: participant.RelationSpouse},
	}
}

func TestParticipantRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewParticipantRepository(openTestDB(t))

	p := newParticipant("0xa", participant.ProgramPRSS)
	p.MonthlyContribution = money.Major(500)
	require.NoError(t, repo.Create(ctx, p))
	assert.NotZero(t, p.ID)

	err := repo.Create(ctx, newParticipant("0xa", participant.ProgramGPS))
	assert.ErrorIs(t, err, participant.ErrDuplicate)

	got, err := repo.GetByWallet(ctx, "0xa")
	require.NoError(t, err)
	assert.Equal(t, money.Major(500), got.MonthlyContribution)
	assert.Equal(t, "Bob", got.Nominee.Name)

	_, err = repo.GetByWallet(ctx, "0xnone")
	assert.ErrorIs(t, err, participant.ErrNotFound)
	_, err = repo.GetByWalletForUpdate(ctx, "0xnone")
	assert.ErrorIs(t, err, participant.ErrNotFound)
}

func TestParticipantRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewParticipantRepository(openTestDB(t))
	for _, w := range []string{"0x1", "0x2", "0x3"} {
		require.NoError(t, repo.Create(ctx, newParticipant(w, participant.ProgramPRSS)))
	}
	g := newParticipant("0x4", participant.ProgramGPS)
	g.ApplicationStatus = participant.ApplicationApproved
	require.NoError(t, repo.Create(ctx, g))

	page, err := repo.List(ctx, participant.ListFilter{Program: participant.ProgramPRSS, Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "0x2", page[0].Wallet)
	assert.Equal(t, "0x3", page[1].Wallet)

	approved, err := repo.List(ctx, participant.ListFilter{ApplicationStatus: participant.ApplicationApproved})
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, "0x4", approved[0].Wallet)
}

func TestDocumentRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	gdb := openTestDB(t)
	parts := NewParticipantRepository(gdb)
	docs := NewDocumentRepository(gdb)

	p := newParticipant("0xa", participant.ProgramPRSS)
	require.NoError(t, parts.Create(ctx, p))

	_, err := docs.Get(ctx, p.ID, document.GroupPRSSPensioner, document.Photo)
	assert.ErrorIs(t, err, document.ErrNotFound)

	d := &document.Document{ParticipantID: p.ID, Group: document.GroupPRSSPensioner, Type: document.Photo,
		Status: document.StatusSubmitted, ContentRef: "ipfs://photo"}
	require.NoError(t, docs.Upsert(ctx, d))
	require.NotZero(t, d.ID)

	d.Status = document.StatusApproved
	require.NoError(t, docs.Upsert(ctx, d))

	got, err := docs.Get(ctx, p.ID, document.GroupPRSSPensioner, document.Photo)
	require.NoError(t, err)
	assert.Equal(t, document.StatusApproved, got.Status)
	assert.Equal(t, d.ID, got.ID)

	list, err := docs.ListByParticipant(ctx, p.ID, document.GroupPRSSPensioner)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	other, err := docs.ListByParticipant(ctx, p.ID, document.GroupNomineeClaim)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestGormUoW_CommitAndRollback(t *testing.T) {
	ctx := context.Background()
	gdb := openTestDB(t)
	u := NewGormUoW(gdb)

	require.NoError(t, u.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Participants.Create(ctx, newParticipant("0xa", participant.ProgramPRSS)); err != nil {
			return err
		}
		return r.Audit.Append(ctx, &audit.Entry{EntryID: "e1", Wallet: "0xa", Actor: "0xa", Action: audit.ActionRegistered})
	}))

	boom := errors.New("boom")
	err := u.WithinParticipantTx(ctx, "0xa", func(r uow.Repos, p *participant.Participant) error {
		p.Fund.TotalContributions = money.Major(999)
		if err := r.Participants.Save(ctx, p); err != nil {
			return err
		}
		if err := r.Audit.Append(ctx, &audit.Entry{EntryID: "e2", Wallet: "0xa", Action: audit.ActionContributionMade}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, err := NewParticipantRepository(gdb).GetByWallet(ctx, "0xa")
	require.NoError(t, err)
	assert.Zero(t, p.Fund.TotalContributions)
	entries, err := NewAuditRepository(gdb).List(ctx, audit.Filter{Wallet: "0xa"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionRegistered, entries[0].Action)

	require.NoError(t, u.WithinParticipantTx(ctx, "0xa", func(r uow.Repos, p *participant.Participant) error {
		p.Fund.TotalContributions = money.Major(500)
		p.Fund.MonthlyPaymentsCount = 1
		if err := r.Participants.Save(ctx, p); err != nil {
			return err
		}
		return r.Audit.Append(ctx, &audit.Entry{EntryID: "e3", Wallet: "0xa", Action: audit.ActionContributionMade, Amount: money.Major(500)})
	}))

	p, err = NewParticipantRepository(gdb).GetByWallet(ctx, "0xa")
	require.NoError(t, err)
	assert.Equal(t, money.Major(500), p.Fund.TotalContributions)
	assert.Equal(t, 1, p.Fund.MonthlyPaymentsCount)

	made, err := NewAuditRepository(gdb).List(ctx, audit.Filter{Action: audit.ActionContributionMade})
	require.NoError(t, err)
	require.Len(t, made, 1)
	assert.Equal(t, money.Major(500), made[0].Amount)

	err = u.WithinParticipantTx(ctx, "0xnone", func(uow.Repos, *participant.Participant) error { return nil })
	assert.ErrorIs(t, err, participant.ErrNotFound)
}

func TestAutoMigrate_CreatesTables(t *testing.T) {
	gdb := openTestDB(t)
	for _, m := range Models() {
		assert.True(t, gdb.Migrator().HasTable(m), "%T", m)
	}
}
