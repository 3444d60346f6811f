package importer

import (
	"fmt"
	"sync"

	"github.com/teranos/lexcell/cellparser"
)

// IDSet hands out identifiers that are unique within one import run. It is
// owned by the run, never shared between runs.
type IDSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewIDSet returns a set that already contains existing.
func NewIDSet(existing ...string) *IDSet {
	s := &IDSet{seen: make(map[string]struct{}, len(existing))}
	for _, id := range existing {
		s.seen[id] = struct{}{}
	}
	return s
}

// Register turns text into an id and reserves it, appending _1, _2, … when
// the plain id is taken.
func (s *IDSet) Register(text string) string {
	base := cellparser.StringToID(text)
	if base == "" {
		base = "x"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	candidate := base
	for i := 1; ; i++ {
		if _, taken := s.seen[candidate]; !taken {
			break
		}
		candidate = fmt.Sprintf("%s_%d", base, i)
	}
	s.seen[candidate] = struct{}{}
	return candidate
}

// Has reports whether id is reserved.
func (s *IDSet) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[id]
	return ok
}

// Len is the number of reserved ids.
func (s *IDSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}
