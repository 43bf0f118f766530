package models

type setEntry struct {
	id    string
	value string
	live  bool
}

// AccountSet maps account identifiers to rendered descriptors and keeps
// first-insertion order for stable reports. It is not safe for concurrent use.
type AccountSet struct {
	entries []setEntry
	index   map[string]int
	dead    int
}

func NewAccountSet() *AccountSet {
	return &AccountSet{index: make(map[string]int)}
}

// Put inserts or replaces the value for id. Replacing keeps the original position.
func (s *AccountSet) Put(id, value string) {
	if i, exists := s.index[id]; exists {
		s.entries[i].value = value
		return
	}
	s.index[id] = len(s.entries)
	s.entries = append(s.entries, setEntry{id: id, value: value, live: true})
}

// Remove deletes id and reports whether it was present. Removed slots are
// compacted once they outnumber the live ones.
func (s *AccountSet) Remove(id string) bool {
	i, exists := s.index[id]
	if !exists {
		return false
	}
	delete(s.index, id)
	s.entries[i] = setEntry{}
	s.dead++
	if s.dead > len(s.index) {
		s.compact()
	}
	return true
}

func (s *AccountSet) compact() {
	live := s.entries[:0]
	for _, e := range s.entries {
		if e.live {
			s.index[e.id] = len(live)
			live = append(live, e)
		}
	}
	for i := len(live); i < len(s.entries); i++ {
		s.entries[i] = setEntry{}
	}
	s.entries = live
	s.dead = 0
}

func (s *AccountSet) Has(id string) bool {
	_, exists := s.index[id]
	return exists
}

func (s *AccountSet) Len() int {
	return len(s.index)
}

// IDs returns the identifiers in insertion order.
func (s *AccountSet) IDs() []string {
	ids := make([]string, 0, len(s.index))
	for _, e := range s.entries {
		if e.live {
			ids = append(ids, e.id)
		}
	}
	return ids
}

// Values returns the rendered descriptors in insertion order.
func (s *AccountSet) Values() []string {
	values := make([]string, 0, len(s.index))
	for _, e := range s.entries {
		if e.live {
			values = append(values, e.value)
		}
	}
	return values
}
