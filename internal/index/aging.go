// aging.go holds the replacement policy: a counter-bounded approximation of
// LRU kept entirely in the per-slot 8-bit age tags.  No auxiliary queue or
// ring exists; a rolling cursor amortises decay across the directory.
//
// The policy runs inside the single-owner cache, i.e. *external*
// serialisation is guaranteed — no locking here.
//
// © 2025 iht-cache authors. MIT License.

package index

const (
	slotEmpty   uint8 = 0
	slotRemoved uint8 = 1

	// MinAge..MaxAge are the occupied states.  A slot is occupied iff its
	// state is at least MinAge.
	MinAge uint8 = 2
	MaxAge uint8 = 7

	// maxEvictionSearch bounds one victim scan to this many occupied slots.
	maxEvictionSearch = 16
)

func occupied(state uint8) bool { return state >= MinAge }

// touch bumps the slot's age after a hit, saturating at MaxAge.
func (ix *Index) touch(slot uint32) {
	if ix.states[slot] < MaxAge {
		ix.states[slot]++
	}
}

// findVictim scans up to maxEvictionSearch occupied slots from the rolling
// cursor and returns the coldest one, decaying every occupied slot it
// examines by one, the returned victim included.  A MinAge slot ends the
// scan immediately and is not decayed: no better candidate is possible.  Empty slots cost no budget but do count into the
// returned scan total.
//
// The cursor parks where the scan stopped; on the early break that is the
// victim slot itself, which the caller is about to empty, so the next scan
// skips over it for free.
func (ix *Index) findVictim() (victim uint32, scans int) {
	victimState := MaxAge + 1
	idx := ix.victimCursor
	for budget := maxEvictionSearch; budget > 0; scans, idx = scans+1, ix.next(idx) {
		state := ix.states[idx]
		if !occupied(state) {
			continue
		}
		if state == MinAge {
			victim = idx
			break
		}
		if state < victimState {
			victim = idx
			victimState = state
		}
		ix.states[idx] = state - 1
		budget--
	}
	ix.victimCursor = idx
	return victim, scans
}
