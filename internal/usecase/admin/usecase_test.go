package admin_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pension-ledger/internal/domain/actor"
	"pension-ledger/internal/domain/audit"
	"pension-ledger/internal/domain/participant"
	lt "pension-ledger/internal/testutil/ledgertest"
	"pension-ledger/pkg/pensionerr"
)

func TestListParticipants(t *testing.T) {
	h := lt.New()
	for i := 1; i <= 3; i++ {
		h.Register(t, fmt.Sprintf("0x%d", i), lt.PRSSInput(lt.YoungDOB, participant.SchemeDPS, "dps_500", "0xff", "spouse"))
	}
	h.Register(t, "0x4", lt.GPSInput(lt.YoungDOB, 15000, 12, "E4", "0xff", "spouse"))

	_, err := h.Admin.ListParticipants(h.Ctx, actor.User("0x1"), participant.ListFilter{})
	require.True(t, pensionerr.Is(err, pensionerr.NotAdmin))

	all, err := h.Admin.ListParticipants(h.Ctx, h.AdminCaller(), participant.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "0x1", all[0].Wallet)

	gps, err := h.Admin.ListParticipants(h.Ctx, h.AdminCaller(), participant.ListFilter{Program: participant.ProgramGPS})
	require.NoError(t, err)
	require.Len(t, gps, 1)
	assert.Equal(t, "0x4", gps[0].Wallet)

	page, err := h.Admin.ListParticipants(h.Ctx, h.AdminCaller(), participant.ListFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "0x2", page[0].Wallet)

	_, err = h.Enrollment.Reject(h.Ctx, h.AdminCaller(), "0x2", "incomplete")
	require.NoError(t, err)
	rejected, err := h.Admin.ListParticipants(h.Ctx, h.AdminCaller(),
		participant.ListFilter{ApplicationStatus: participant.ApplicationRejected, Offset: -5})
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.Equal(t, "0x2", rejected[0].Wallet)
}

func TestAuditHistory_Access(t *testing.T) {
	h := lt.New()
	h.Register(t, "0xa", lt.PRSSInput(lt.YoungDOB, participant.SchemeDPS, "dps_500", "0xb", "spouse"))
	h.Register(t, "0xc", lt.PRSSInput(lt.YoungDOB, participant.SchemeDPS, "dps_500", "0xb", "spouse"))

	_, err := h.Admin.AuditHistory(h.Ctx, actor.User("0xa"), audit.Filter{Wallet: "0xc"})
	assert.True(t, pensionerr.Is(err, pensionerr.NotAdmin))
	_, err = h.Admin.AuditHistory(h.Ctx, actor.User("0xa"), audit.Filter{})
	assert.True(t, pensionerr.Is(err, pensionerr.NotAdmin))

	own, err := h.Admin.AuditHistory(h.Ctx, actor.User("0xA"), audit.Filter{Wallet: "0xA"})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "0xa", own[0].Actor)

	all, err := h.Admin.AuditHistory(h.Ctx, h.AdminCaller(), audit.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = h.Enrollment.Reject(h.Ctx, h.AdminCaller(), "0xc", "duplicate person")
	require.NoError(t, err)
	rejections, err := h.Admin.AuditHistory(h.Ctx, h.AdminCaller(), audit.Filter{Action: audit.ActionApplicationReject})
	require.NoError(t, err)
	require.Len(t, rejections, 1)
	assert.Equal(t, lt.AdminWallet, rejections[0].Actor)
	assert.Equal(t, "duplicate person", rejections[0].Detail)
}

func TestOperationsAreObserved(t *testing.T) {
	obs := &observer{}
	h := lt.New(lt.WithOperationObserver(obs))
	h.Register(t, "0xa", lt.PRSSInput(lt.YoungDOB, participant.SchemeDPS, "dps_500", "0xb", "spouse"))
	_, _ = h.Enrollment.Approve(h.Ctx, h.AdminCaller(), "0xa")

	assert.Equal(t, []string{"register:ok", "approve_application:DocumentsIncomplete"}, obs.seen)
}

type observer struct{ seen []string }

func (o *observer) ObserveOperation(op, outcome string) { o.seen = append(o.seen, op+":"+outcome) }
