// Package memory is an in-process ledger. Each participant aggregate is guarded
// by its own mutex and writes are staged per transaction, then applied on
// commit, so a failed operation leaves no trace.
package memory

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"pension-ledger/internal/domain/audit"
	"pension-ledger/internal/domain/document"
	"pension-ledger/internal/domain/participant"
	"pension-ledger/internal/domain/uow"
)

type docKey struct {
	participantID uint64
	group         document.Group
	typ           document.Type
}

type Store struct {
	mu           sync.RWMutex
	participants map[string]*participant.Participant
	documents    map[docKey]*document.Document
	entries      []audit.Entry

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	nextID atomic.Uint64
}

func NewStore() *Store {
	return &Store{
		participants: map[string]*participant.Participant{},
		documents:    map[docKey]*document.Document{},
		locks:        map[string]*sync.Mutex{},
	}
}

func (s *Store) lockFor(wallet string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	m, ok := s.locks[wallet]
	if !ok {
		m = &sync.Mutex{}
		s.locks[wallet] = m
	}
	return m
}

func (s *Store) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	tx := newTx(s)
	if err := fn(tx.repos()); err != nil {
		return err
	}
	return tx.commit()
}

func (s *Store) WithinParticipantTx(ctx context.Context, wallet string, fn func(r uow.Repos, p *participant.Participant) error) error {
	m := s.lockFor(wallet)
	m.Lock()
	defer m.Unlock()

	tx := newTx(s)
	r := tx.repos()
	p, err := r.Participants.GetByWalletForUpdate(ctx, wallet)
	if err != nil {
		return err
	}
	if err := fn(r, p); err != nil {
		return err
	}
	return tx.commit()
}

// Repos exposes non-transactional repositories for read paths.
func (s *Store) Repos() uow.Repos { return newTx(s).repos() }

type tx struct {
	s            *Store
	participants map[string]*participant.Participant
	created      map[string]bool
	documents    map[docKey]*document.Document
	entries      []audit.Entry
}

func newTx(s *Store) *tx {
	return &tx{
		s:            s,
		participants: map[string]*participant.Participant{},
		created:      map[string]bool{},
		documents:    map[docKey]*document.Document{},
	}
}

func (t *tx) repos() uow.Repos {
	return uow.Repos{
		Participants: &participantRepo{t: t},
		Documents:    &documentRepo{t: t},
		Audit:        &auditRepo{t: t},
	}
}

func (t *tx) commit() error {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for w := range t.created {
		if _, exists := s.participants[w]; exists {
			return participant.ErrDuplicate
		}
	}
	for w, p := range t.participants {
		s.participants[w] = p.Clone()
	}
	for k, d := range t.documents {
		c := *d
		s.documents[k] = &c
	}
	s.entries = append(s.entries, t.entries...)
	return nil
}

type participantRepo struct{ t *tx }

func (r *participantRepo) Create(ctx context.Context, p *participant.Participant) error {
	r.t.s.mu.RLock()
	_, exists := r.t.s.participants[p.Wallet]
	r.t.s.mu.RUnlock()
	if exists || r.t.created[p.Wallet] {
		return participant.ErrDuplicate
	}
	p.ID = r.t.s.nextID.Add(1)
	r.t.created[p.Wallet] = true
	r.t.participants[p.Wallet] = p.Clone()
	return nil
}

func (r *participantRepo) Save(ctx context.Context, p *participant.Participant) error {
	r.t.participants[p.Wallet] = p.Clone()
	return nil
}

func (r *participantRepo) GetByWallet(ctx context.Context, wallet string) (*participant.Participant, error) {
	if p, ok := r.t.participants[wallet]; ok {
		return p.Clone(), nil
	}
	r.t.s.mu.RLock()
	defer r.t.s.mu.RUnlock()
	p, ok := r.t.s.participants[wallet]
	if !ok {
		return nil, participant.ErrNotFound
	}
	return p.Clone(), nil
}

// GetByWalletForUpdate relies on the aggregate mutex taken by WithinParticipantTx.
func (r *participantRepo) GetByWalletForUpdate(ctx context.Context, wallet string) (*participant.Participant, error) {
	return r.GetByWallet(ctx, wallet)
}

func (r *participantRepo) List(ctx context.Context, f participant.ListFilter) ([]participant.Participant, error) {
	r.t.s.mu.RLock()
	out := make([]participant.Participant, 0, len(r.t.s.participants))
	for _, p := range r.t.s.participants {
		if f.Program != "" && p.Program != f.Program {
			continue
		}
		if f.ApplicationStatus != "" && p.ApplicationStatus != f.ApplicationStatus {
			continue
		}
		if f.AccountStatus != "" && p.AccountStatus != f.AccountStatus {
			continue
		}
		out = append(out, *p.Clone())
	}
	r.t.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

type documentRepo struct{ t *tx }

func (r *documentRepo) Upsert(ctx context.Context, d *document.Document) error {
	if d.ID == 0 {
		d.ID = r.t.s.nextID.Add(1)
	}
	c := *d
	r.t.documents[docKey{d.ParticipantID, d.Group, d.Type}] = &c
	return nil
}

func (r *documentRepo) Get(ctx context.Context, participantID uint64, g document.Group, typ document.Type) (*document.Document, error) {
	k := docKey{participantID, g, typ}
	if d, ok := r.t.documents[k]; ok {
		c := *d
		return &c, nil
	}
	r.t.s.mu.RLock()
	defer r.t.s.mu.RUnlock()
	d, ok := r.t.s.documents[k]
	if !ok {
		return nil, document.ErrNotFound
	}
	c := *d
	return &c, nil
}

func (r *documentRepo) ListByParticipant(ctx context.Context, participantID uint64, g document.Group) ([]document.Document, error) {
	merged := map[docKey]document.Document{}
	r.t.s.mu.RLock()
	for k, d := range r.t.s.documents {
		if k.participantID == participantID && k.group == g {
			merged[k] = *d
		}
	}
	r.t.s.mu.RUnlock()
	for k, d := range r.t.documents {
		if k.participantID == participantID && k.group == g {
			merged[k] = *d
		}
	}
	out := make([]document.Document, 0, len(merged))
	for _, d := range merged {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type auditRepo struct{ t *tx }

func (r *auditRepo) Append(ctx context.Context, e *audit.Entry) error {
	e.ID = r.t.s.nextID.Add(1)
	r.t.entries = append(r.t.entries, *e)
	return nil
}

func (r *auditRepo) List(ctx context.Context, f audit.Filter) ([]audit.Entry, error) {
	r.t.s.mu.RLock()
	defer r.t.s.mu.RUnlock()
	var out []audit.Entry
	for _, e := range r.t.s.entries {
		if f.Wallet != "" && e.Wallet != f.Wallet {
			continue
		}
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		out = append(out, e)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}
