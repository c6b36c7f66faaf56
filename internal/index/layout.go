// layout.go computes the directory and item-pool geometry from the
// configured capacity, key/value widths and load factor.  The computation is
// pure so Reconfigure can rerun it against mutated configuration.
//
// © 2025 iht-cache authors. MIT License.

package index

import (
	"math"

	"github.com/Voskan/iht-cache/internal/hashkit"
	"github.com/Voskan/iht-cache/internal/unsafehelpers"
)

const (
	// MinCapacity is the floor applied to the requested capacity.
	MinCapacity = 16

	// DefaultLoadFactor bounds item_count/max_entries unless overridden.
	DefaultLoadFactor = 0.40

	// maxAlign is the strictest alignment any stored field may require,
	// the Go analogue of C's max_align_t.
	maxAlign = 16
)

// Layout is the fixed geometry of one cache generation.  All fields are
// derived; none change until a Reconfigure rebuilds the structure.
type Layout struct {
	KeySize   int
	ValueSize int

	MaxEntries  int // power of two
	EntriesMask uint32
	MaxItems    int

	ItemSize    int
	KeyOffset   int
	ValueOffset int

	FastKey   bool // key fits in a FastKey
	FastValue bool // value fits in a FastValue
	ShortKey  bool // key strictly shorter than a FastKey
	FastMode  bool // both fast: fixed 32-byte (FastKey, FastValue) items
}

// Compute derives the layout for the given configuration.  keySize and
// valueSize must be positive and maxLoad in (0, 1); the caller validates.
func Compute(minCapacity, keySize, valueSize int, maxLoad float64) Layout {
	capacity := minCapacity
	if capacity < MinCapacity {
		capacity = MinCapacity
	}
	minEntries := int(math.Ceil(float64(capacity) / maxLoad))

	maxEntries := 1
	for maxEntries < minEntries {
		maxEntries *= 2
	}

	l := Layout{
		KeySize:     keySize,
		ValueSize:   valueSize,
		MaxEntries:  maxEntries,
		EntriesMask: uint32(maxEntries - 1),
		MaxItems:    int(float64(maxEntries) * maxLoad),

		FastKey:   keySize <= hashkit.FastSize,
		FastValue: valueSize <= hashkit.FastSize,
		ShortKey:  keySize < hashkit.FastSize,
	}
	if l.MaxItems < 1 {
		l.MaxItems = 1
	}
	l.FastMode = l.FastKey && l.FastValue

	if l.FastMode {
		l.KeyOffset = 0
		l.ValueOffset = hashkit.FastSize
		l.ItemSize = 2 * hashkit.FastSize
		return l
	}

	// General mode: key first, then value; whichever field exceeds a
	// register pair starts on a maxAlign boundary (the key is at 0 and
	// item strides are padded to maxAlign, so it always does).
	l.KeyOffset = 0
	l.ValueOffset = keySize
	if valueSize > hashkit.FastSize {
		l.ValueOffset = unsafehelpers.AlignUp(keySize, maxAlign)
	}
	l.ItemSize = unsafehelpers.AlignUp(l.ValueOffset+valueSize, maxAlign)
	return l
}
