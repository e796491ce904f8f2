package importmap

import "sync"

// Store holds the gateway's current import map. One store exists per
// dev-server process; Replace swaps the whole value so readers always see
// either the previous or the new complete map.
type Store struct {
	mu      sync.RWMutex
	current *ImportMap
}

func NewStore() *Store {
	return &Store{current: Empty()}
}

func (s *Store) Replace(m *ImportMap) {
	s.mu.Lock()
	s.current = m
	s.mu.Unlock()
}

func (s *Store) Current() *ImportMap {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Resolve resolves against the live map at call time. Nothing is cached
// across Replace.
func (s *Store) Resolve(specifier string) (string, bool) {
	return s.Current().Resolve(specifier)
}
