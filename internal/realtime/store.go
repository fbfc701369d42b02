package realtime

import (
	"sync"

	"creator-crm/internal/domain"
)

// PageStore holds the page a caller is currently displaying. Page fetches
// and change events race: the store resolves both. Replace applies a
// fetched page only when it belongs to the most recently issued request,
// and Patch merges change events idempotently per record id.
type PageStore struct {
	mu sync.Mutex

	issued  uint64
	applied uint64

	creators []domain.Creator
	total    int

	// ids deleted since the last Replace; a late insert or update for a
	// tombstoned id must not resurrect the record.
	deleted map[string]struct{}
}

func NewPageStore() *PageStore {
	return &PageStore{deleted: make(map[string]struct{})}
}

// Issue hands out the sequence token for a new page request. The caller
// attaches it to the fetch and passes it back to Replace; responses whose
// token is no longer the latest are discarded.
func (s *PageStore) Issue() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Replace installs a freshly fetched page. It reports false, leaving the
// currently displayed page and total untouched, when a newer request has
// been issued since token was handed out.
func (s *PageStore) Replace(token uint64, page domain.PageResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token < s.issued || token < s.applied {
		return false
	}
	s.applied = token
	s.creators = append([]domain.Creator(nil), page.Data...)
	s.total = page.Total
	s.deleted = make(map[string]struct{})
	return true
}

// Snapshot returns a copy of the held page and the matching total.
func (s *PageStore) Snapshot() ([]domain.Creator, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Creator(nil), s.creators...), s.total
}

// insert merges a new record by id. Inserting an id that is already present
// behaves as an update, so replaying the same event is a no-op.
func (s *PageStore) insert(creator domain.Creator) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, gone := s.deleted[creator.ID]; gone {
		return
	}
	for i := range s.creators {
		if s.creators[i].ID == creator.ID {
			s.creators[i] = creator
			return
		}
	}
	s.creators = append(s.creators, creator)
	s.total++
}

// update patches a record already on the held page. Updates for off-page
// records are dropped: their membership in the page's filter set is
// unknown, and merging them would grow the page past its size and inflate
// the total.
func (s *PageStore) update(creator domain.Creator) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, gone := s.deleted[creator.ID]; gone {
		return
	}
	for i := range s.creators {
		if s.creators[i].ID == creator.ID {
			s.creators[i] = creator
			return
		}
	}
}

func (s *PageStore) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleted[id] = struct{}{}
	for i := range s.creators {
		if s.creators[i].ID == id {
			s.creators = append(s.creators[:i], s.creators[i+1:]...)
			if s.total > 0 {
				s.total--
			}
			return
		}
	}
}
