package turn

// ToolSet is an insertion-ordered set of tool names.
type ToolSet struct {
	index map[string]int
	names []string
}

// NewToolSet returns an empty ToolSet.
func NewToolSet() *ToolSet {
	return &ToolSet{index: make(map[string]int), names: make([]string, 0)}
}

// Add inserts name unless it is empty or already present.
// It reports whether name was added.
func (s *ToolSet) Add(name string) bool {
	if name == "" {
		return false
	}
	if _, ok := s.index[name]; ok {
		return false
	}
	s.index[name] = len(s.names)
	s.names = append(s.names, name)
	return true
}

// Has reports whether name has been added.
func (s *ToolSet) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Len returns the number of distinct names.
func (s *ToolSet) Len() int { return len(s.names) }

// Names returns the names in first-seen order. The slice is a copy.
func (s *ToolSet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}
