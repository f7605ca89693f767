package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	graphHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nav",
		Subsystem: "graph_cache",
		Name:      "hits_total",
		Help:      "Graph reads served from the cache",
	})

	graphLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nav",
		Subsystem: "graph_cache",
		Name:      "loads_total",
		Help:      "Graph loads from the store",
	}, []string{"outcome"})

	graphInvalidations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nav",
		Subsystem: "graph_cache",
		Name:      "invalidations_total",
		Help:      "Graph cache invalidations after committed writes",
	})

	faviconLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nav",
		Subsystem: "favicon_cache",
		Name:      "lookups_total",
		Help:      "Favicon cache lookups by result",
	}, []string{"result"})
)
