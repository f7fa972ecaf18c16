package analysis

type entryState int

const (
	stateAbsent entryState = iota
	statePending
	stateReady
)

type entry struct {
	state    entryState
	analysis *Analysis
}

// Table is the sparse per-ply analysis table. Each ply is absent, pending
// (one fetch in flight) or ready; ready entries are never overwritten. The
// table lives and dies with one loaded game and is not safe for concurrent
// use: all mutation happens on the controller's event loop.
type Table struct {
	entries map[int]entry
}

func NewTable() *Table {
	return &Table{entries: make(map[int]entry)}
}

// Get returns the ready analysis for a ply, if any.
func (t *Table) Get(ply int) (*Analysis, bool) {
	e, ok := t.entries[ply]
	if !ok || e.state != stateReady {
		return nil, false
	}
	return e.analysis, true
}

// Pending reports whether a fetch for the ply is in flight.
func (t *Table) Pending(ply int) bool {
	return t.entries[ply].state == statePending
}

// MarkPending claims the ply for one fetch. It returns false when the ply is
// already pending or ready, which is what keeps requests single-flight.
func (t *Table) MarkPending(ply int) bool {
	if t.entries[ply].state != stateAbsent {
		return false
	}
	t.entries[ply] = entry{state: statePending}
	return true
}

// ClearPending reverts a failed fetch to absent so a later navigation can
// retry. Ready entries are untouched.
func (t *Table) ClearPending(ply int) {
	if t.entries[ply].state == statePending {
		delete(t.entries, ply)
	}
}

// Put inserts a ready analysis exactly once. A second insert for the same ply
// is ignored, making fetch merges idempotent.
func (t *Table) Put(ply int, a *Analysis) bool {
	if a == nil {
		return false
	}
	if t.entries[ply].state == stateReady {
		return false
	}
	t.entries[ply] = entry{state: stateReady, analysis: a}
	return true
}

// Len counts ready entries.
func (t *Table) Len() int {
	n := 0
	for _, e := range t.entries {
		if e.state == stateReady {
			n++
		}
	}
	return n
}

// Reset drops everything; called when a new game is loaded.
func (t *Table) Reset() {
	t.entries = make(map[int]entry)
}
