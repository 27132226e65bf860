package sessions

import (
	"sync"

	"github.com/creatorlens/creatorlens/internal/models"
)

// Store is the process-wide progress map shared by all runs. The fetch
// loop writes, a polling caller reads; last write wins. Entries live
// until the caller deletes them.
type Store struct {
	mu       sync.Mutex
	sessions map[string]models.FetchSession
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]models.FetchSession)}
}

func (s *Store) Set(id string, state models.FetchSession) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state.ID = id
	s.sessions[id] = state
}

// Get returns the last written snapshot, or an Idle default when the id
// is unknown.
func (s *Store) Get(id string) models.FetchSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.sessions[id]; ok {
		return state
	}
	return models.FetchSession{ID: id, Phase: models.PhaseIdle}
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
}
