// Package repotest provides an in-memory repository.Store for tests.
package repotest

import (
	"context"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/staff-service/internal/domain"
	"github.com/spec-kit/staff-service/internal/repository"
)

// Store keeps staff members and login tokens in maps guarded by a single
// mutex. WithinTx runs transactions one at a time, snapshots both maps and
// restores them when fn fails.
type Store struct {
	txMu   sync.Mutex
	mu     sync.Mutex
	staff  map[string]domain.StaffMember
	tokens map[string]domain.LoginToken

	// FailTokenCreate, when set, is returned by Tokens.Create.
	FailTokenCreate error
	// TxCalls counts WithinTx invocations.
	TxCalls int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		staff:  map[string]domain.StaffMember{},
		tokens: map[string]domain.LoginToken{},
	}
}

func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Staff:  &staffRepo{s: s},
		Tokens: &tokenRepo{s: s},
	}
}

func (s *Store) WithinTx(_ context.Context, fn func(repository.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	s.TxCalls++
	staff := maps.Clone(s.staff)
	tokens := maps.Clone(s.tokens)
	s.mu.Unlock()

	if err := fn(s.Repositories()); err != nil {
		s.mu.Lock()
		s.staff, s.tokens = staff, tokens
		s.mu.Unlock()
		return err
	}
	return nil
}

// Seed inserts a staff member, assigning an id when missing.
func (s *Store) Seed(staff domain.StaffMember) domain.StaffMember {
	s.mu.Lock()
	defer s.mu.Unlock()
	if staff.ID == "" {
		staff.ID = uuid.NewString()
	}
	if staff.CreatedAt.IsZero() {
		staff.CreatedAt = time.Now()
		staff.UpdatedAt = staff.CreatedAt
	}
	if staff.ProfileImages == nil {
		staff.ProfileImages = []string{}
	}
	s.staff[staff.ID] = staff
	return staff
}

// Staff returns a copy of the stored staff member.
func (s *Store) Staff(id string) (domain.StaffMember, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	staff, ok := s.staff[id]
	return staff, ok
}

// Tokens returns copies of every stored token.
func (s *Store) Tokens() []domain.LoginToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.LoginToken, 0, len(s.tokens))
	for _, t := range s.tokens {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// PutToken stores a token record as-is.
func (s *Store) PutToken(token domain.LoginToken) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token.ID] = token
}

type staffRepo struct{ s *Store }

func (r *staffRepo) Create(_ context.Context, staff *domain.StaffMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.staff {
		if existing.Email == staff.Email {
			return domain.ErrEmailTaken
		}
	}
	now := time.Now()
	staff.ID = uuid.NewString()
	staff.CreatedAt = now
	staff.UpdatedAt = now
	if staff.ProfileImages == nil {
		staff.ProfileImages = []string{}
	}
	r.s.staff[staff.ID] = *staff
	return nil
}

func (r *staffRepo) Update(_ context.Context, staff *domain.StaffMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.staff[staff.ID]; !ok {
		return domain.ErrStaffNotFound
	}
	for id, existing := range r.s.staff {
		if id != staff.ID && existing.Email == staff.Email {
			return domain.ErrEmailTaken
		}
	}
	staff.UpdatedAt = time.Now()
	r.s.staff[staff.ID] = *staff
	return nil
}

func (r *staffRepo) GetByID(_ context.Context, id string) (*domain.StaffMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	staff, ok := r.s.staff[id]
	if !ok {
		return nil, domain.ErrStaffNotFound
	}
	return &staff, nil
}

func (r *staffRepo) GetByEmail(_ context.Context, email string) (*domain.StaffMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, staff := range r.s.staff {
		if staff.Email == email {
			found := staff
			return &found, nil
		}
	}
	return nil, domain.ErrStaffNotFound
}

func (r *staffRepo) List(_ context.Context, filter repository.StaffFilter) ([]domain.StaffMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.StaffMember{}
	for _, staff := range r.s.staff {
		if matches(staff, filter) {
			out = append(out, staff)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 {
		start := min(max(filter.Offset, 0), len(out))
		end := min(start+filter.Limit, len(out))
		out = out[start:end]
	}
	return out, nil
}

func matches(staff domain.StaffMember, f repository.StaffFilter) bool {
	switch {
	case f.Role != nil && staff.Role != *f.Role:
		return false
	case f.Team != nil && staff.Team != *f.Team:
		return false
	case f.Email != nil && !strings.EqualFold(staff.Email, *f.Email):
		return false
	case f.FirstName != nil && staff.FirstName != *f.FirstName:
		return false
	case f.LastName != nil && staff.LastName != *f.LastName:
		return false
	case f.Active != nil && staff.Active != *f.Active:
		return false
	}
	return true
}

func (r *staffRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.staff[id]; !ok {
		return domain.ErrStaffNotFound
	}
	delete(r.s.staff, id)
	for tokenID, token := range r.s.tokens {
		if token.StaffID == id {
			delete(r.s.tokens, tokenID)
		}
	}
	return nil
}

func (r *staffRepo) TouchLastLogin(_ context.Context, id string, at time.Time) (*domain.StaffMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	staff, ok := r.s.staff[id]
	if !ok {
		return nil, domain.ErrStaffNotFound
	}
	staff.LastLogin = &at
	r.s.staff[id] = staff
	return &staff, nil
}

func (r *staffRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	staff, ok := r.s.staff[id]
	if !ok {
		return domain.ErrStaffNotFound
	}
	staff.PasswordHash = passwordHash
	staff.UpdatedAt = time.Now()
	r.s.staff[id] = staff
	return nil
}

type tokenRepo struct{ s *Store }

func (r *tokenRepo) Create(_ context.Context, token *domain.LoginToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailTokenCreate != nil {
		return r.s.FailTokenCreate
	}
	r.s.tokens[token.ID] = *token
	return nil
}

func (r *tokenRepo) FindActive(_ context.Context, tokenHash string, purpose domain.TokenPurpose, now time.Time) (*domain.LoginToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, token := range r.s.tokens {
		if token.TokenHash == tokenHash && token.Purpose == purpose && token.Redeemable(now) {
			found := token
			return &found, nil
		}
	}
	return nil, domain.ErrInvalidOrExpiredToken
}

func (r *tokenRepo) MarkUsed(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	token, ok := r.s.tokens[id]
	if !ok || token.Used {
		return domain.ErrInvalidOrExpiredToken
	}
	token.Used = true
	r.s.tokens[id] = token
	return nil
}

func (r *tokenRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var removed int64
	for id, token := range r.s.tokens {
		if !token.ExpiresAt.After(now) {
			delete(r.s.tokens, id)
			removed++
		}
	}
	return removed, nil
}
