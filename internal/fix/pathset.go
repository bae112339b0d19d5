package fix

// PathSet is an insertion-ordered set of artifact paths.
type PathSet struct {
	order []string
	seen  map[string]struct{}
}

// NewPathSet creates a set holding paths in the given order.
func NewPathSet(paths ...string) *PathSet {
	s := &PathSet{seen: make(map[string]struct{})}
	s.Add(paths...)
	return s
}

// Add appends the paths not yet present and returns how many were new.
func (s *PathSet) Add(paths ...string) int {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	added := 0
	for _, p := range paths {
		if _, ok := s.seen[p]; ok {
			continue
		}
		s.seen[p] = struct{}{}
		s.order = append(s.order, p)
		added++
	}
	return added
}

func (s *PathSet) Contains(p string) bool {
	if s == nil {
		return false
	}
	_, ok := s.seen[p]
	return ok
}

func (s *PathSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Paths returns the paths in first-seen order.
func (s *PathSet) Paths() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.order...)
}
