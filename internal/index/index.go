// Package index implements the open-addressed directory and the densely
// packed item pool behind the cache: a metadata array of 8-bit age tags, an
// entry array of (hash32, item_index) pairs, and one flat byte pool holding
// the authoritative key and value bytes at fixed offsets.
//
// Keeping state/entry metadata apart from the bulky payloads means one cache
// line of metadata covers several probe steps; the payload is touched at most
// twice per hit (key compare, value copy).  The pool lives in a single slice
// so the garbage collector never scans per-item allocations.
//
// The index is single-owner: no locking, no atomics.  Statistics are the
// caller's concern — probe and scan counts are returned, never recorded here.
//
// © 2025 iht-cache authors. MIT License.

package index

import (
	"bytes"

	"github.com/Voskan/iht-cache/internal/hashkit"
)

// Entry is directory slot metadata, valid only while the slot is occupied.
type Entry struct {
	Hash uint32
	Item int32
}

// Index is one generation of the directory plus its item pool.  It is
// rebuilt from scratch by Reconfigure; there is no dynamic resizing.
type Index struct {
	Layout

	initialAge   uint8
	itemCount    int
	victimCursor uint32

	states  []uint8 // [MaxEntries]
	entries []Entry // [MaxEntries]
	items   []byte  // [MaxItems * ItemSize]
}

// AllocResult reports what AllocEntry did and the probe work it cost.
type AllocResult struct {
	Item       int32
	Scans      int  // insertion-probe scans
	EvictScans int  // victim-search scans, valid when Evicted
	Evicted    bool // a victim search ran (even if later resurrected)
	Updated    bool // key was already present; existing item is the target
}

// New builds an empty index for the given layout.  initialAge is the state
// written to freshly inserted slots, already clamped to [MinAge, MaxAge].
func New(l Layout, initialAge uint8) *Index {
	return &Index{
		Layout:     l,
		initialAge: initialAge,
		states:     make([]uint8, l.MaxEntries),
		entries:    make([]Entry, l.MaxEntries),
		items:      make([]byte, l.MaxItems*l.ItemSize),
	}
}

func (ix *Index) next(i uint32) uint32 { return (i + 1) & ix.EntriesMask }

// ItemCount returns the number of live items.
func (ix *Index) ItemCount() int { return ix.itemCount }

// KeyAt returns the authoritative key bytes of item i.
func (ix *Index) KeyAt(i int32) []byte {
	off := int(i)*ix.ItemSize + ix.KeyOffset
	return ix.items[off : off+ix.KeySize]
}

// ValueAt returns the value bytes of item i.  The slice aliases the item
// pool and is invalidated by the next mutation.
func (ix *Index) ValueAt(i int32) []byte {
	off := int(i)*ix.ItemSize + ix.ValueOffset
	return ix.items[off : off+ix.ValueSize]
}

// FastKeyAt loads item i's key as a FastKey.  Only meaningful in fast mode,
// where the key field is a full zero-padded 16-byte record.
func (ix *Index) FastKeyAt(i int32) hashkit.FastKey {
	off := int(i)*ix.ItemSize + ix.KeyOffset
	return hashkit.FastKeyFrom(ix.items[off : off+hashkit.FastSize])
}

// FastValueAt loads item i's value as a FastValue.  Only meaningful in fast
// mode.  Bytes past value_size are zero: the pool starts zeroed and every
// occupant of the slot writes the same value_size prefix.
func (ix *Index) FastValueAt(i int32) hashkit.FastValue {
	off := int(i)*ix.ItemSize + ix.ValueOffset
	return hashkit.FastValueFrom(ix.items[off : off+hashkit.FastSize])
}

// hashKey dispatches to the fast path for register-sized keys.  Short keys
// are zero-extended first so padding never leaks into the hash.
func (ix *Index) hashKey(key []byte) uint32 {
	if ix.FastKey {
		return hashkit.FastKeyHash(hashkit.FastKeyFrom(key))
	}
	return hashkit.Hash32(key)
}

// Lookup probes for key.  It walks from hash&mask to the first empty slot;
// removed slots are traversed, not stopped at.  On a hit the slot's age is
// bumped.  scans counts the non-matching slots walked either way.
func (ix *Index) Lookup(key []byte) (item int32, scans int, ok bool) {
	hash := ix.hashKey(key)
	idx := hash & ix.EntriesMask
	for ix.states[idx] != slotEmpty {
		if occupied(ix.states[idx]) && ix.entries[idx].Hash == hash {
			if candidate := ix.entries[idx].Item; bytes.Equal(ix.KeyAt(candidate), key) {
				ix.touch(idx)
				return candidate, scans, true
			}
		}
		idx = ix.next(idx)
		scans++
	}
	return 0, scans, false
}

// FastLookup is Lookup specialised for 16-byte keys: the first-slot empty
// check is peeled off (the common branch for warm hits at short chains) and
// key equality is the two-lane XOR-OR.
func (ix *Index) FastLookup(key hashkit.FastKey) (item int32, scans int, ok bool) {
	hash := hashkit.FastKeyHash(key)
	idx := hash & ix.EntriesMask
	state := ix.states[idx]
	if state == slotEmpty {
		return 0, 0, false
	}
	for {
		if occupied(state) && ix.entries[idx].Hash == hash {
			if candidate := ix.entries[idx].Item; ix.FastKeyAt(candidate).Equal(key) {
				ix.touch(idx)
				return candidate, scans, true
			}
		}
		idx = ix.next(idx)
		scans++
		state = ix.states[idx]
		if state == slotEmpty {
			return 0, scans, false
		}
	}
}

// AllocEntry finds the directory slot and item-pool index for inserting key,
// evicting a victim first when the pool is full.
//
// The victim is tentatively freed *before* the insertion probe so the probe
// terminates quickly in the normal case.  If the probe then runs into an
// occupied slot that already holds key — possible when the filler re-entered
// the cache for the same key, or on a Put of an existing key — the victim is
// resurrected wholesale and the existing item becomes the target (Updated).
func (ix *Index) AllocEntry(key []byte) AllocResult {
	var res AllocResult

	var victimSlot uint32
	var victimEntry Entry
	var victimState uint8
	newItem := int32(ix.itemCount)
	if ix.itemCount >= ix.MaxItems {
		victimSlot, res.EvictScans = ix.findVictim()
		victimEntry = ix.entries[victimSlot]
		victimState = ix.states[victimSlot]
		ix.states[victimSlot] = slotEmpty
		ix.entries[victimSlot] = Entry{}
		ix.itemCount--
		newItem = victimEntry.Item
		res.Evicted = true
	}

	hash := ix.hashKey(key)
	idx := hash & ix.EntriesMask
	for ix.states[idx] != slotEmpty {
		if occupied(ix.states[idx]) && ix.entries[idx].Hash == hash {
			if candidate := ix.entries[idx].Item; bytes.Equal(ix.KeyAt(candidate), key) {
				if res.Evicted {
					ix.states[victimSlot] = victimState
					ix.entries[victimSlot] = victimEntry
					ix.itemCount++
				}
				res.Item = candidate
				res.Updated = true
				return res
			}
		}
		idx = ix.next(idx)
		res.Scans++
	}

	ix.entries[idx] = Entry{Hash: hash, Item: newItem}
	ix.states[idx] = ix.initialAge
	ix.itemCount++
	res.Item = newItem
	return res
}

// StoreItem writes the key and value bytes of item i.
func (ix *Index) StoreItem(i int32, key, value []byte) {
	base := int(i) * ix.ItemSize
	copy(ix.items[base+ix.KeyOffset:], key[:ix.KeySize])
	copy(ix.items[base+ix.ValueOffset:], value[:ix.ValueSize])
}

// RemoveAll empties the index: destroy (when non-nil) runs over every
// occupied slot's value bytes first, then directory and pool are zeroed.
func (ix *Index) RemoveAll(destroy func(value []byte)) {
	if destroy != nil {
		for slot, state := range ix.states {
			if occupied(state) {
				destroy(ix.ValueAt(ix.entries[slot].Item))
			}
		}
	}
	ix.itemCount = 0
	clear(ix.states)
	clear(ix.entries)
	clear(ix.items)
}
