// Package metrics provides Prometheus metrics for the guidance service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "fantasy_helper"
	subsystem = "guidance"
)

var (
	// ScheduleCacheHits counts season schedules served from the cache.
	ScheduleCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "schedule_cache_hits_total",
		Help:      "Number of season schedule lookups served from cache.",
	})

	// ScheduleCacheMisses counts season schedules that required a fetch.
	ScheduleCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "schedule_cache_misses_total",
		Help:      "Number of season schedule lookups that missed the cache.",
	})

	// SeasonFetches counts full-season fetches against the upstream schedule API.
	SeasonFetches = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "season_fetches_total",
		Help:      "Number of full-season schedule fetches from the upstream API.",
	})

	// SeasonFetchErrors counts failed full-season fetches.
	SeasonFetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "season_fetch_errors_total",
		Help:      "Number of failed full-season schedule fetches.",
	})

	// Runs counts guidance computations by outcome.
	Runs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "runs_total",
		Help:      "Number of guidance computations by outcome.",
	}, []string{"outcome"})

	// RewriteFallbacks counts rewrite calls that fell back to the original bullets.
	RewriteFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "rewrite_fallbacks_total",
		Help:      "Number of rewrite calls that returned the original bullets unchanged after a collaborator failure.",
	})
)
