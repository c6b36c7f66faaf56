// Package unsafehelpers centralises **all** unavoidable usage of the
// `unsafe` standard-library package so that the rest of iht-cache stays clean
// and easier to audit.  Every helper is documented with clear pre-/post-
// conditions.
//
// ⚠️  **DISCLAIMER**   These helpers deliberately break the Go memory-safety
// model for the sake of unchecked lane loads on the hashing hot path.  Use
// ONLY inside this repository; they are not part of the public API and may
// change without notice.
//
// All functions are `go:linkname`-free, cgo-free and pure Go.
//
// © 2025 iht-cache authors. MIT License.

package unsafehelpers

import "unsafe"

/* -------------------------------------------------------------------------
   1. Raw lane loads
   ------------------------------------------------------------------------- */

// Load64 reads eight bytes of b starting at off as a native-endian uint64.
// The caller must guarantee off+8 <= len(b).  Used on the hashing hot path
// where a bounds-checked encoding/binary read per lane is measurable.
func Load64(b []byte, off int) uint64 {
    return *(*uint64)(unsafe.Pointer(&b[off]))
}

/* -------------------------------------------------------------------------
   2. Alignment helpers
   ------------------------------------------------------------------------- */

// AlignUp rounds x up to the nearest multiple of align (which must be a power
// of two).  Fast bit-twiddling alternative to math.Ceil for sizes.
func AlignUp(x, align int) int {
    return (x + align - 1) &^ (align - 1)
}

// IsPowerOfTwo returns true if x is a power of two (exactly one bit set).
func IsPowerOfTwo(x int) bool {
    return x > 0 && (x&(x-1)) == 0
}
