package cache

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/starwishes/Nav/internal/models"
)

// GraphLoader reads the complete bookmark graph from storage.
type GraphLoader func(ctx context.Context) (*models.Graph, error)

// GraphCache keeps the raw bookmark graph in memory. The slot is filled
// on the first read after an invalidation; concurrent misses share one
// load. Callers must not modify the returned graph.
type GraphCache struct {
	load GraphLoader

	mu         sync.RWMutex
	graph      *models.Graph
	generation uint64

	flight singleflight.Group
}

// NewGraphCache returns an empty cache that fills itself with load.
func NewGraphCache(load GraphLoader) *GraphCache {
	return &GraphCache{load: load}
}

// Get returns the cached graph, loading it if the slot is empty.
func (c *GraphCache) Get(ctx context.Context) (*models.Graph, error) {
	c.mu.RLock()
	g, gen := c.graph, c.generation
	c.mu.RUnlock()
	if g != nil {
		graphHits.Inc()
		return g, nil
	}

	// Loads are keyed by generation so a reader arriving after an
	// invalidation never joins a load that started before it.
	v, err, _ := c.flight.Do(strconv.FormatUint(gen, 10), func() (any, error) {
		c.mu.RLock()
		g, cur := c.graph, c.generation
		c.mu.RUnlock()
		if g != nil && cur == gen {
			return g, nil
		}

		// The load is shared, so one caller's cancellation must not fail the rest.
		g, err := c.load(context.WithoutCancel(ctx))
		if err != nil {
			graphLoads.WithLabelValues("error").Inc()
			return nil, err
		}
		graphLoads.WithLabelValues("ok").Inc()

		c.mu.Lock()
		if c.generation == gen {
			c.graph = g
		} else {
			slog.Debug("graph cache load superseded", "generation", gen)
		}
		c.mu.Unlock()
		return g, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Graph), nil
}

// Invalidate drops the cached graph. Call it only after the write that
// changed the graph has committed.
func (c *GraphCache) Invalidate() {
	c.mu.Lock()
	c.graph = nil
	c.generation++
	c.mu.Unlock()
	graphInvalidations.Inc()
}

// Cached reports whether the slot currently holds a graph.
func (c *GraphCache) Cached() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.graph != nil
}
