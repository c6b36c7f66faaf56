// Package hashkit implements the 32-bit key hashing used by the cache
// directory: a hardware CRC32C fold for register-sized keys and a
// multiplicative mix over a 64-bit golden constant for everything else.
//
// The two paths produce different values; only process-lifetime determinism
// is promised.  Which path runs is decided once, at first cache construction,
// from CPU capability flags — never per call.
//
// © 2025 iht-cache authors. MIT License.

package hashkit

import (
	"encoding/binary"
	"hash/crc32"
	"sync"

	"golang.org/x/sys/cpu"

	"github.com/Voskan/iht-cache/internal/unsafehelpers"
)

const (
	// gold32 seeds the CRC register (Knuth 32-bit golden ratio).
	gold32 uint32 = 0x9E377989
	// gold64 drives the multiplicative software mix.
	gold64 uint64 = 0x9E3779B97F4A7C15

	// FastSize is the register-passable key/value width in bytes.
	FastSize = 16
)

// FastKey is a 16-byte key that fits in two integer registers on x86-64 and
// arm64.  Keys shorter than 16 bytes are zero-extended into one before
// hashing so padding is deterministic.
type FastKey struct{ V0, V1 uint64 }

// FastValue is the 16-byte value counterpart of FastKey.
type FastValue struct{ V0, V1 uint64 }

var (
	detectOnce sync.Once
	useCRC     bool

	castagnoli = crc32.MakeTable(crc32.Castagnoli)
)

// Detect probes CPU capability flags and selects the hash path.  Called on
// first cache construction; subsequent calls are no-ops, so the chosen path
// is stable for the life of the process.
func Detect() {
	detectOnce.Do(func() {
		useCRC = cpu.X86.HasSSE42 || cpu.ARM64.HasCRC32
	})
}

// UseCRC reports whether the hardware CRC32C path is active.
func UseCRC() bool { return useCRC }

// Equal compares two fast keys with a branch-free XOR-OR.
func (k FastKey) Equal(o FastKey) bool {
	return (k.V0^o.V0)|(k.V1^o.V1) == 0
}

// Bytes returns the little-endian byte image of the key.  The first
// key_size bytes of it are what the directory stores for short keys.
func (k FastKey) Bytes() [FastSize]byte {
	var b [FastSize]byte
	binary.LittleEndian.PutUint64(b[0:8], k.V0)
	binary.LittleEndian.PutUint64(b[8:16], k.V1)
	return b
}

// FastKeyFrom zero-extends up to 16 bytes of b into a FastKey.
func FastKeyFrom(b []byte) FastKey {
	if len(b) >= FastSize {
		return FastKey{
			V0: unsafehelpers.Load64(b, 0),
			V1: unsafehelpers.Load64(b, 8),
		}
	}
	var pad [FastSize]byte
	copy(pad[:], b)
	return FastKey{
		V0: binary.LittleEndian.Uint64(pad[0:8]),
		V1: binary.LittleEndian.Uint64(pad[8:16]),
	}
}

// FastValueFrom zero-extends up to 16 bytes of b into a FastValue.
func FastValueFrom(b []byte) FastValue {
	k := FastKeyFrom(b)
	return FastValue{V0: k.V0, V1: k.V1}
}

// Bytes returns the little-endian byte image of the value.
func (v FastValue) Bytes() [FastSize]byte {
	return FastKey{V0: v.V0, V1: v.V1}.Bytes()
}

// crcFold64 folds one 64-bit lane into the CRC register with raw
// (un-inverted) CRC32C semantics.  hash/crc32 applies the customary pre/post
// inversion, so undoing it on both sides leaves exactly the bare instruction:
// ^Update(^crc, tab, lane) == _mm_crc32_u64(crc, lane).
func crcFold64(crc uint32, v uint64) uint32 {
	var lane [8]byte
	binary.LittleEndian.PutUint64(lane[:], v)
	return ^crc32.Update(^crc, castagnoli, lane[:])
}

// FastKeyHash hashes a 16-byte key.  Hardware path: seed the CRC register
// with the golden constant and fold both lanes.  Software fallback: one
// multiplicative mix with a 32-bit finish.
func FastKeyHash(k FastKey) uint32 {
	if useCRC {
		crc := gold32
		crc = crcFold64(crc, k.V0)
		return crcFold64(crc, k.V1)
	}
	h := k.V0 ^ (k.V1 + gold64)
	h *= gold64
	h ^= h >> 32
	return uint32(h)
}

// Hash32 hashes an arbitrary-length key with the multiplicative mix: seed
// with the golden constant plus the length, fold each aligned 8-byte lane,
// then a zero-padded partial tail, and avalanche down to 32 bits.
func Hash32(key []byte) uint32 {
	h := gold64 + uint64(len(key))
	n := len(key) &^ 7
	for off := 0; off < n; off += 8 {
		h ^= unsafehelpers.Load64(key, off)
		h *= gold64
	}
	if n < len(key) {
		var lane [8]byte
		copy(lane[:], key[n:])
		h ^= binary.LittleEndian.Uint64(lane[:])
		h *= gold64
	}
	h ^= h >> 32
	h ^= h >> 16
	return uint32(h)
}
