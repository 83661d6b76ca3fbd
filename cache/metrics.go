package cache

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts cache activity.
type Metrics struct {
	Hits      prometheus.Counter
	Misses    prometheus.Counter
	Corrupt   prometheus.Counter
	Evictions prometheus.Counter
}

// NewMetrics creates the cache counters and registers them with reg when it
// is not nil. Counters already registered under the same name are reused,
// so several caches can share one registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Hits:      counter(reg, "rbjs_cache_hits_total", "Number of cache lookups that found an entry"),
		Misses:    counter(reg, "rbjs_cache_misses_total", "Number of cache lookups that found no usable entry"),
		Corrupt:   counter(reg, "rbjs_cache_corrupt_total", "Number of cache entries that could not be decoded"),
		Evictions: counter(reg, "rbjs_cache_evictions_total", "Number of cache entries removed to stay within budget"),
	}
}

func counter(reg prometheus.Registerer, name, help string) prometheus.Counter {
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help})
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		var exists prometheus.AlreadyRegisteredError
		if errors.As(err, &exists) {
			if existing, ok := exists.ExistingCollector.(prometheus.Counter); ok {
				return existing
			}
		}
	}
	return c
}
