package provider

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Registry owns the set of adapter instances. It never instantiates or
// configures them; that is the Service's job. Registration is expected during
// startup/configuration, but the map is lock-protected anyway since searches
// run on their own goroutines.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	order     []string
	log       *zap.SugaredLogger
}

// NewRegistry creates an empty registry.
func NewRegistry(log *zap.SugaredLogger) *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		log:       log,
	}
}

// Register inserts an adapter by its id. Re-registering the same id replaces
// the existing instance and logs a warning; last write wins.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := p.ID()
	if _, exists := r.providers[id]; exists {
		r.log.Warnw("Replacing already registered provider", zap.String("provider", id))
	} else {
		r.order = append(r.order, id)
	}
	r.providers[id] = p
}

// Unregister removes an adapter. Unknown ids are a no-op.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[id]; !exists {
		return
	}
	delete(r.providers, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Get returns the adapter registered under id, if any.
func (r *Registry) Get(id string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[id]
	return p, ok
}

// Has reports whether an adapter is registered under id.
func (r *Registry) Has(id string) bool {
	_, ok := r.Get(id)
	return ok
}

// GetAll returns every registered adapter in registration order.
func (r *Registry) GetAll() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]Provider, 0, len(r.order))
	for _, id := range r.order {
		all = append(all, r.providers[id])
	}
	return all
}

// GetConfigured returns the registered adapters that have a usable credential.
func (r *Registry) GetConfigured() []Provider {
	var configured []Provider
	for _, p := range r.GetAll() {
		if p.IsConfigured() {
			configured = append(configured, p)
		}
	}
	return configured
}

// SearchAll fans the search out to every configured adapter concurrently and
// joins on completion of all of them. A failing adapter is substituted with a
// synthetic empty response carrying its id and the requested paging; the
// failure is logged and never propagated, so sibling results are unaffected.
// With no configured adapter it returns an empty aggregate without any
// network call.
func (r *Registry) SearchAll(ctx context.Context, params SearchParams) *MultiSearchResponse {
	configured := r.GetConfigured()
	if len(configured) == 0 {
		return &MultiSearchResponse{Results: []SearchResponse{}}
	}

	// Results land in a pre-sized slice by index so registry order survives
	// the concurrent fan-out.
	results := make([]SearchResponse, len(configured))
	var wg sync.WaitGroup

	for i, p := range configured {
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()

			resp, err := p.SearchProjects(ctx, params)
			if err != nil || resp == nil {
				r.log.Warnw("Provider search failed, substituting empty result",
					zap.String("provider", p.ID()),
					zap.Error(err),
				)
				results[i] = *EmptySearchResponse(p.ID(), params)
				return
			}
			results[i] = *resp
		}(i, p)
	}

	wg.Wait()

	agg := &MultiSearchResponse{Results: results}
	for i := range results {
		agg.TotalAcrossProviders += results[i].Total
	}
	return agg
}
