// Package cache implements a bounded, fixed-schema, in-memory indexed hash
// cache: fixed-size keys map to fixed-size values through an open-addressed
// directory with aging-based eviction, and misses can transparently
// compute-and-insert through a caller-supplied filler.
//
// It is a memoization layer for expensive pure functions – transcendentals
// on floating-point inputs, derived records over composite keys – where a
// miss is tolerable but hit throughput must stay within a handful of
// arithmetic operations.
//
// A Cache is single-owner: no internal synchronisation is provided and
// concurrent calls on one instance are undefined.  Instances in different
// goroutines are independent; see SharedFiller for de-duplicating their
// producers.
//
// © 2025 iht-cache authors. MIT License.
package cache

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/Voskan/iht-cache/internal/hashkit"
	"github.com/Voskan/iht-cache/internal/index"
)

// FastKey is a 16-byte key passed in registers; the natural shape for
// memoized scalar functions.  Shorter keys are zero-extended into one.
type FastKey = hashkit.FastKey

// FastValue is the 16-byte value counterpart of FastKey.
type FastValue = hashkit.FastValue

// Float64Key reinterprets a float64 as a FastKey (bit pattern, not value:
// -0.0 and +0.0 are distinct keys, and every NaN payload is its own key).
func Float64Key(x float64) FastKey {
	return FastKey{V0: math.Float64bits(x)}
}

// Float64Value reinterprets the first lane of a FastValue as a float64.
func Float64Value(v FastValue) float64 {
	return math.Float64frombits(v.V0)
}

// Cache is the indexed hash cache.  Create with New, free with Close.
type Cache struct {
	cfg *config
	log *zap.Logger
	met metricsSink

	ix *index.Index
	na []byte // NA bytes; 16 in fast-value mode, value_size otherwise

	stats  Stats
	closed bool
}

// New constructs a cache for keySize-byte keys and valueSize-byte values,
// sized to hold at least minCapacity items (floored at 16).  The directory
// capacity is fixed until Reconfigure rebuilds it.
func New(minCapacity, keySize, valueSize int, opts ...Option) (*Cache, error) {
	hashkit.Detect()

	cfg := defaultConfig(minCapacity, keySize, valueSize)
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	c := &Cache{
		cfg: cfg,
		log: cfg.logger,
		met: newMetricsSink(cfg.registry),
	}
	c.rebuild()

	c.log.Debug("cache created",
		zap.Int("key_size", keySize),
		zap.Int("value_size", valueSize),
		zap.Int("max_entries", c.ix.MaxEntries),
		zap.Int("max_items", c.ix.MaxItems),
		zap.Bool("fast_mode", c.ix.FastMode),
		zap.Bool("crc32", hashkit.UseCRC()),
	)
	return c, nil
}

// rebuild recomputes the layout from current configuration and allocates an
// empty directory, item pool and NA buffer.
func (c *Cache) rebuild() {
	l := index.Compute(c.cfg.minCapacity, c.cfg.keySize, c.cfg.valueSize, c.cfg.maxLoadFactor)
	c.ix = index.New(l, c.cfg.initialAge)

	naSize := c.cfg.valueSize
	if l.FastValue {
		naSize = hashkit.FastSize
	}
	c.na = make([]byte, naSize)
	copy(c.na, c.cfg.naValue)
}

/*
   ---------------- Operations ----------------
*/

// Put inserts or updates key with value.  value must be exactly value_size
// bytes; the cache copies it verbatim.
func (c *Cache) Put(key, value []byte) error {
	if len(key) != c.cfg.keySize {
		return ErrKeySize
	}
	if len(value) != c.cfg.valueSize {
		return ErrValueSize
	}
	c.insert(key, value)
	return nil
}

// Fetch copies key's value into valueOut.  On miss the filler runs; on
// filler success the value is inserted and copied out.  valueOut is never
// written on failure.
func (c *Cache) Fetch(key, valueOut []byte) error {
	if len(key) != c.cfg.keySize {
		return ErrKeySize
	}
	if len(valueOut) < c.cfg.valueSize {
		return ErrValueSize
	}
	if item, ok := c.lookup(key); ok {
		copy(valueOut, c.ix.ValueAt(item))
		return nil
	}
	item, err := c.fillMissed(key)
	if err != nil {
		return err
	}
	copy(valueOut, c.ix.ValueAt(item))
	return nil
}

// Lookup probes for key without ever invoking the filler.  valueOut is
// written only on a hit.
func (c *Cache) Lookup(key, valueOut []byte) bool {
	if len(key) != c.cfg.keySize || len(valueOut) < c.cfg.valueSize {
		return false
	}
	item, ok := c.lookup(key)
	if !ok {
		return false
	}
	copy(valueOut, c.ix.ValueAt(item))
	return true
}

// Get returns a borrow of key's value bytes inside the item pool, filling on
// miss like Fetch.  The borrow is valid until the next mutation (Put, a
// Fetch/Get that inserts, RemoveAll, Reconfigure, Close) and must not be
// held across one.  Returns nil on failure.
func (c *Cache) Get(key []byte) []byte {
	if len(key) != c.cfg.keySize {
		return nil
	}
	if item, ok := c.lookup(key); ok {
		return c.ix.ValueAt(item)
	}
	item, err := c.fillMissed(key)
	if err != nil {
		return nil
	}
	return c.ix.ValueAt(item)
}

// GetFast is Fetch specialised for register-passable keys and values: no
// byte slices cross the call boundary on a hit.  When no value can be
// produced – no filler, or the filler failed – it returns the NA value.
func (c *Cache) GetFast(key FastKey) FastValue {
	if !c.ix.FastMode {
		return c.getFastFallback(key)
	}

	c.stats.Lookups++
	c.met.incLookup()
	item, scans, ok := c.ix.FastLookup(key)
	if ok {
		c.stats.Hits.bump(scans)
		c.met.incHit(scans)
		return c.ix.FastValueAt(item)
	}
	c.stats.Misses.bump(scans)
	c.met.incMiss(scans)

	kb := key.Bytes()
	item, err := c.fillMissed(kb[:c.cfg.keySize])
	if err != nil {
		return hashkit.FastValueFrom(c.na)
	}
	return c.ix.FastValueAt(item)
}

// getFastFallback serves GetFast on a cache whose layout is not fast-mode
// (large keys or values) through the general path.
func (c *Cache) getFastFallback(key FastKey) FastValue {
	kb := key.Bytes()
	k := kb[:min(len(kb), c.cfg.keySize)]
	if len(k) != c.cfg.keySize {
		return hashkit.FastValueFrom(c.na)
	}
	buf := make([]byte, c.cfg.valueSize)
	if err := c.Fetch(k, buf); err != nil {
		return hashkit.FastValueFrom(c.na)
	}
	return hashkit.FastValueFrom(buf)
}

// GetFloat64 memoizes a float64 → float64 function: the key is the bit
// pattern of x and the result the first value lane.
func (c *Cache) GetFloat64(x float64) float64 {
	return Float64Value(c.GetFast(Float64Key(x)))
}

// RemoveAll flushes the cache: the value destroyer (if set) runs over every
// live value, then directory, states and item pool are zeroed.
func (c *Cache) RemoveAll() {
	c.ix.RemoveAll(c.cfg.valueDestroyer)
	c.met.setItems(0)
	c.log.Debug("cache flushed")
}

// Reconfigure flushes and rebuilds the cache with the current configuration,
// picking up SetMaxLoadFactor/SetMinCapacity changes.  Equivalent to
// Close-then-New preserving destroyers, capacity, load factor and NA value,
// except that the handle persists.
func (c *Cache) Reconfigure() {
	c.ix.RemoveAll(c.cfg.valueDestroyer)
	c.rebuild()
	c.met.setItems(0)
	c.log.Info("cache reconfigured",
		zap.Int("max_entries", c.ix.MaxEntries),
		zap.Int("max_items", c.ix.MaxItems),
		zap.Float64("max_load_factor", c.cfg.maxLoadFactor),
	)
}

// Close flushes the cache, releases storage and invokes the close hook.
// Further use of the handle is undefined.  Close is idempotent.
func (c *Cache) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.ix.RemoveAll(c.cfg.valueDestroyer)
	c.ix = nil
	c.na = nil
	if c.cfg.closeHook != nil {
		c.cfg.closeHook()
	}
}

/*
   ---------------- Getters & setters ----------------
*/

// HasFiller reports whether a filler is registered.
func (c *Cache) HasFiller() bool { return c.cfg.filler != nil }

// ItemCount returns the number of live items.
func (c *Cache) ItemCount() int { return c.ix.ItemCount() }

// MaxItems returns the item-pool capacity for the current layout.
func (c *Cache) MaxItems() int { return c.ix.MaxItems }

// KeySize returns the fixed key width in bytes.
func (c *Cache) KeySize() int { return c.cfg.keySize }

// ValueSize returns the fixed value width in bytes.
func (c *Cache) ValueSize() int { return c.cfg.valueSize }

// MaxLoadFactor returns the configured load-factor ceiling.
func (c *Cache) MaxLoadFactor() float64 { return c.cfg.maxLoadFactor }

// SetMaxLoadFactor stages a new load-factor ceiling; it takes effect at the
// next Reconfigure.  Values outside (0, 1) are ignored.
func (c *Cache) SetMaxLoadFactor(f float64) {
	if f > 0 && f < 1 {
		c.cfg.maxLoadFactor = f
	}
}

// SetMinCapacity stages a new minimum capacity; it takes effect at the next
// Reconfigure.
func (c *Cache) SetMinCapacity(n int) { c.cfg.minCapacity = n }

// SetValueDestroyer replaces the flush-time value hook.
func (c *Cache) SetValueDestroyer(fn ValueDestroyer) { c.cfg.valueDestroyer = fn }

// SetCloseHook replaces the hook Close invokes.
func (c *Cache) SetCloseHook(fn func()) { c.cfg.closeHook = fn }

// SetNAValue replaces the NA bytes returned by GetFast when no value can be
// produced.  v is copied (value_size bytes); nil restores the all-zero
// default.  Effective immediately and preserved across Reconfigure.
func (c *Cache) SetNAValue(v []byte) {
	if v == nil {
		c.cfg.naValue = nil
	} else {
		c.cfg.naValue = append([]byte(nil), v[:min(len(v), c.cfg.valueSize)]...)
	}
	clear(c.na)
	copy(c.na, c.cfg.naValue)
}

/*
   ---------------- Internals ----------------
*/

// lookup runs one counted directory probe.
func (c *Cache) lookup(key []byte) (int32, bool) {
	c.stats.Lookups++
	c.met.incLookup()
	item, scans, ok := c.ix.Lookup(key)
	if ok {
		c.stats.Hits.bump(scans)
		c.met.incHit(scans)
	} else {
		c.stats.Misses.bump(scans)
		c.met.incMiss(scans)
	}
	return item, ok
}

// fillMissed invokes the filler into a fresh scratch buffer and inserts on
// success.  The buffer is per-call: a re-entrant filler must not clobber an
// outer invocation's scratch.
func (c *Cache) fillMissed(key []byte) (int32, error) {
	if c.cfg.filler == nil {
		return 0, ErrNoFiller
	}
	buf := make([]byte, c.cfg.valueSize)
	if err := c.cfg.filler(key, buf); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrFillerFailed, err)
	}
	return c.insert(key, buf), nil
}

// insert drives the allocation protocol and the associated accounting.
func (c *Cache) insert(key, value []byte) int32 {
	res := c.ix.AllocEntry(key)
	if res.Evicted {
		c.stats.Evictions.bump(res.EvictScans)
		c.met.incEvict(res.EvictScans)
	}
	if res.Updated {
		c.stats.Updates.bump(res.Scans)
		c.met.incUpdate(res.Scans)
	} else {
		c.stats.Adds.bump(res.Scans)
		c.met.incAdd(res.Scans)
	}
	c.ix.StoreItem(res.Item, key, value)
	c.met.setItems(c.ix.ItemCount())
	return res.Item
}
