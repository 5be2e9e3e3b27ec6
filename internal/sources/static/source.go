package static

import (
	"sync"

	"github.com/MrSnakeDoc/edgegate/internal/domain"
)

// Source holds bootstrap mappings that exist outside the durable store:
// an env-supplied JSON map fixed at startup, plus an optional YAML file
// whose contents can be replaced by the reloader at runtime. Env
// entries win over file entries for the same host.
type Source struct {
	mu   sync.RWMutex
	env  map[string]*domain.HostMapping
	file map[string]*domain.HostMapping
}

// NewSource creates an empty static source.
func NewSource() *Source {
	return &Source{
		env:  make(map[string]*domain.HostMapping),
		file: make(map[string]*domain.HostMapping),
	}
}

// SetEnv installs the env-supplied mappings. Called once at startup.
func (s *Source) SetEnv(mappings map[string]*domain.HostMapping) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.env = mappings
}

// ReplaceFile swaps the full set of file-sourced mappings.
func (s *Source) ReplaceFile(mappings []domain.HostMapping) {
	byHost := make(map[string]*domain.HostMapping, len(mappings))
	for i := range mappings {
		m := mappings[i]
		byHost[m.Host] = &m
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.file = byHost
}

// Lookup returns the static mapping for host, or nil.
func (s *Source) Lookup(host string) *domain.HostMapping {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if m, ok := s.env[host]; ok {
		return m
	}
	if m, ok := s.file[host]; ok {
		return m
	}
	return nil
}

// Count returns the number of distinct hosts configured statically.
func (s *Source) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.env)
	for host := range s.file {
		if _, dup := s.env[host]; !dup {
			n++
		}
	}
	return n
}
