package cache

// config.go defines the internal configuration object and the set of
// functional options that can be passed to New.
//
// Design notes
// ------------
// • All fields are initialised with sensible defaults in defaultConfig().
// • Options never allocate unless strictly necessary – they just capture
//   pointers to external objects (registry, logger …) or copy small buffers.
// • We hide the struct from public API: behaviour is influenced via Option
//   at construction and via the Set* methods afterwards (layout-affecting
//   setters take effect at the next Reconfigure).
//
// © 2025 iht-cache authors. MIT License.

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Voskan/iht-cache/internal/index"
)

// ValueDestroyer is invoked over each live value's bytes when the cache is
// flushed (RemoveAll, Reconfigure, Close).  It runs on the calling goroutine
// and must not re-enter the cache.
type ValueDestroyer func(value []byte)

// Option is a functional option passed to New.
type Option func(*config)

// config bundles every knob that influences cache behaviour.  Layout-derived
// values live in index.Layout, not here; Reconfigure recomputes them from
// this struct.
type config struct {
	minCapacity int
	keySize     int
	valueSize   int

	maxLoadFactor  float64
	initialAge     uint8
	filler         FillerFunc
	naValue        []byte // value_size prefix; nil means all-zero
	valueDestroyer ValueDestroyer
	closeHook      func()

	logger   *zap.Logger
	registry *prometheus.Registry
}

func defaultConfig(minCapacity, keySize, valueSize int) *config {
	return &config{
		minCapacity:   minCapacity,
		keySize:       keySize,
		valueSize:     valueSize,
		maxLoadFactor: index.DefaultLoadFactor,
		initialAge:    index.MinAge,
		logger:        zap.NewNop(),
		registry:      nil, // user must opt-in to metrics
	}
}

/*
   ---------------- Functional options exposed to users ----------------
*/

// WithFiller registers the producer invoked on miss by fetch-style
// operations.  Without one, Fetch and Get fail on miss and GetFast returns
// the NA value.
func WithFiller(fn FillerFunc) Option {
	return func(c *config) {
		c.filler = fn
	}
}

// WithLogger plugs an external zap.Logger.  The cache never logs on the hot
// path; only slow events (construction, reconfigure, flush) are emitted.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics enables Prometheus metrics collection for the cache instance.
// Passing nil disables metrics (default).
func WithMetrics(reg *prometheus.Registry) Option {
	return func(c *config) {
		c.registry = reg
	}
}

// WithMaxLoadFactor overrides the default 0.40 ceiling on
// item_count/max_entries.  Values outside (0, 1) are ignored.
func WithMaxLoadFactor(f float64) Option {
	return func(c *config) {
		if f > 0 && f < 1 {
			c.maxLoadFactor = f
		}
	}
}

// WithInitialAge sets the age tag written to freshly inserted slots.  Raising
// it above the minimum makes the policy behave more like true LRU (new items
// survive more eviction passes).  Clamped to the valid occupied range.
func WithInitialAge(age int) Option {
	return func(c *config) {
		switch {
		case age < int(index.MinAge):
			c.initialAge = index.MinAge
		case age > int(index.MaxAge):
			c.initialAge = index.MaxAge
		default:
			c.initialAge = uint8(age)
		}
	}
}

// WithNAValue sets the fallback bytes GetFast returns when no value can be
// produced.  The slice is copied; nil restores the all-zero default.
func WithNAValue(v []byte) Option {
	return func(c *config) {
		if v == nil {
			c.naValue = nil
			return
		}
		c.naValue = append([]byte(nil), v...)
	}
}

// WithValueDestroyer registers a hook over each live value at flush time.
func WithValueDestroyer(fn ValueDestroyer) Option {
	return func(c *config) {
		c.valueDestroyer = fn
	}
}

// WithCloseHook registers a function invoked exactly once by Close, after
// the final flush.  Use it to tear down state captured by the filler.
func WithCloseHook(fn func()) Option {
	return func(c *config) {
		c.closeHook = fn
	}
}

/*
   ---------------- Validation & error values ----------------
*/

func (c *config) validate() error {
	if c.keySize <= 0 {
		return errInvalidKeySize
	}
	if c.valueSize <= 0 {
		return errInvalidValueSize
	}
	if c.maxLoadFactor <= 0 || c.maxLoadFactor >= 1 {
		return errInvalidLoadFactor
	}
	return nil
}

var (
	errInvalidKeySize    = errors.New("iht-cache: key size must be > 0")
	errInvalidValueSize  = errors.New("iht-cache: value size must be > 0")
	errInvalidLoadFactor = errors.New("iht-cache: max load factor must be in (0, 1)")
)

// Operation errors.
var (
	// ErrKeySize is returned when the supplied key is not key_size bytes.
	ErrKeySize = errors.New("iht-cache: key length does not match key size")
	// ErrValueSize is returned when a value to store is not value_size bytes,
	// or when an output buffer is smaller than value_size.
	ErrValueSize = errors.New("iht-cache: value length does not fit value size")
	// ErrNoFiller is returned by fetch-style operations that miss on a cache
	// without a registered filler.
	ErrNoFiller = errors.New("iht-cache: miss and no filler registered")
	// ErrFillerFailed wraps the filler's error when it declines to produce a
	// value.  Nothing is inserted.
	ErrFillerFailed = errors.New("iht-cache: filler failed")
)
