package chain

// Record is the outcome of one step invocation as seen by later steps.
type Record struct {
	Step    string
	Attempt int
	Data    any
	Err     error
}

// State is the execution-scoped context of one chain run. It only grows:
// the engine appends a record after each step, and steps get a read-only
// view of everything recorded before they started.
type State struct {
	meta    map[string]any
	records []Record
}

func newState(meta map[string]any) *State {
	m := make(map[string]any, len(meta))
	for k, v := range meta {
		m[k] = v
	}
	return &State{meta: m}
}

// Meta returns a caller-supplied value, such as the result data type.
func (s *State) Meta(key string) (any, bool) {
	v, ok := s.meta[key]
	return v, ok
}

// Records returns every record in execution order.
func (s *State) Records() []Record {
	return append([]Record(nil), s.records...)
}

// Last returns the most recent record.
func (s *State) Last() (Record, bool) {
	if len(s.records) == 0 {
		return Record{}, false
	}
	return s.records[len(s.records)-1], true
}

// Lookup returns the most recent record written by step.
func (s *State) Lookup(step string) (Record, bool) {
	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].Step == step {
			return s.records[i], true
		}
	}
	return Record{}, false
}

func (s *State) append(r Record) {
	s.records = append(s.records, r)
}

// view returns a snapshot sharing storage with s. Its capacity is clipped
// so later appends on s never become visible through the snapshot.
func (s *State) view() *State {
	n := len(s.records)
	return &State{meta: s.meta, records: s.records[:n:n]}
}
