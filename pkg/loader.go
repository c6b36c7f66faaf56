package cache

// loader.go implements the *singleflight*-based de-duplication layer for
// fillers.  A cache instance is single-owner, so the usual pattern for
// concurrent workloads is one instance per goroutine in front of a shared
// expensive producer; SharedFiller prevents a thundering-herd when several
// of those instances miss on the same key simultaneously: only one producer
// call executes, the rest wait for its result.
//
// We wrap x/sync/singleflight so that:
//   • keys stay raw bytes – singleflight needs a string key, and the string
//     conversion of the key bytes is exact (no hashing, no collisions);
//   • the FillerFunc signature is preserved on both sides, so the wrapper
//     drops into WithFiller unchanged;
//   • the shared result is copied into each waiter's own scratch buffer –
//     waiters never alias one another's memory.
//
// © 2025 iht-cache authors. MIT License.

import (
	"golang.org/x/sync/singleflight"
)

// SharedFiller wraps fn so that concurrent invocations for the same key
// collapse into a single producer call whose result every waiter receives.
// The returned filler is safe for use from multiple cache instances; the
// per-instance single-owner rule still applies to each cache.
func SharedFiller(fn FillerFunc) FillerFunc {
	var g singleflight.Group
	return func(key, valueOut []byte) error {
		v, err, _ := g.Do(string(key), func() (any, error) {
			buf := make([]byte, len(valueOut))
			if err := fn(key, buf); err != nil {
				return nil, err
			}
			return buf, nil
		})
		if err != nil {
			return err
		}
		copy(valueOut, v.([]byte))
		return nil
	}
}
