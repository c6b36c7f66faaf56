package cache

// filler.go defines FillerFunc – the user-supplied producer that computes a
// value when a fetch-style operation misses.  We place it in its own file so
// the contract is documented in one place (config.go, loader.go and
// cmd/iht-bench all refer to it).
//
// • The filler runs synchronously on the caller's goroutine during Fetch,
//   Get, GetFast and GetFloat64.  There is no blocking, suspension or
//   cancellation inside the cache.
// • It receives the key bytes and a scratch buffer of exactly value_size
//   bytes; on success it fills the buffer and returns nil.  A non-nil error
//   means no value exists: nothing is inserted and the miss is surfaced.
// • It MAY re-enter the same cache, even for the key it was invoked on; the
//   insertion protocol resolves that to an update of the existing item.
//   This is a robustness property, not a supported idiom.
// • Captured state replaces the C-style context pointer; pair it with
//   WithCloseHook when that state needs teardown.
//
// © 2025 iht-cache authors. MIT License.

// FillerFunc computes the value for key into valueOut (value_size bytes).
// Returning a non-nil error reports that no value could be produced.
type FillerFunc func(key []byte, valueOut []byte) error
