package service

import (
	"sync"
	"time"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/scheduler"
)

// timetableProposal is a previewed run waiting to be committed.
type timetableProposal struct {
	ID          string
	RunID       string
	Request     dto.GenerateTimetableRequest
	Phases      []scheduler.Phase
	Result      *scheduler.Result
	Violations  []scheduler.Violation
	RequestedBy string
	RequestedAt time.Time
}

type proposalStore struct {
	ttl   time.Duration
	now   func() time.Time
	mu    sync.RWMutex
	items map[string]timetableProposal
}

func newProposalStore(ttl time.Duration) *proposalStore {
	return &proposalStore{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]timetableProposal),
	}
}

// Save stores the proposal and drops expired ones.
func (s *proposalStore) Save(proposal timetableProposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, item := range s.items {
		if s.expired(item) {
			delete(s.items, id)
		}
	}
	s.items[proposal.ID] = proposal
}

func (s *proposalStore) Get(id string) (timetableProposal, bool) {
	s.mu.RLock()
	proposal, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return timetableProposal{}, false
	}
	if s.expired(proposal) {
		s.Delete(id)
		return timetableProposal{}, false
	}
	return proposal, true
}

func (s *proposalStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}

func (s *proposalStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *proposalStore) expiresAt(proposal timetableProposal) time.Time {
	return proposal.RequestedAt.Add(s.ttl)
}

func (s *proposalStore) expired(proposal timetableProposal) bool {
	return s.now().After(s.expiresAt(proposal))
}
