package notebook

import (
	"context"
	"sync"

	"github.com/Latacz1/notatnik-treningowy/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
)

// Registry keeps one open notebook per signed in user.
type Registry struct {
	store          documentStore
	metricsManager *metrics.Manager
	opts           Options

	mu        sync.Mutex
	notebooks map[string]*Notebook
}

func NewRegistry(store documentStore, metricsManager *metrics.Manager, opts Options) *Registry {
	return &Registry{
		store:          store,
		metricsManager: metricsManager,
		opts:           opts,
		notebooks:      map[string]*Notebook{},
	}
}

// Get returns the user's notebook, opening it on first use.
func (r *Registry) Get(ctx context.Context, userID string) (*Notebook, error) {
	r.mu.Lock()
	if nb, ok := r.notebooks[userID]; ok {
		r.mu.Unlock()
		return nb, nil
	}
	r.mu.Unlock()

	// opened outside the lock, loading must not block other users
	nb := New(userID, r.store, r.metricsManager, r.opts)
	if err := nb.Open(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	if existing, ok := r.notebooks[userID]; ok {
		r.mu.Unlock()
		nb.Close()
		return existing, nil
	}
	r.notebooks[userID] = nb
	r.updateGaugeLocked()
	r.mu.Unlock()

	log.Debugf("notebook opened for %s", userID)
	return nb, nil
}

// Close closes the user's notebook, if open. Used on sign out.
func (r *Registry) Close(userID string) {
	r.mu.Lock()
	nb, ok := r.notebooks[userID]
	delete(r.notebooks, userID)
	r.updateGaugeLocked()
	r.mu.Unlock()

	if ok {
		nb.Close()
		log.Debugf("notebook closed for %s", userID)
	}
}

// CloseAll closes every open notebook, flushing unsaved changes.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	notebooks := r.notebooks
	r.notebooks = map[string]*Notebook{}
	r.updateGaugeLocked()
	r.mu.Unlock()

	var wg sync.WaitGroup
	for _, nb := range notebooks {
		wg.Add(1)
		go func(nb *Notebook) {
			defer wg.Done()
			nb.Close()
		}(nb)
	}
	wg.Wait()
	log.Debugf("closed %d notebooks", len(notebooks))
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notebooks)
}

func (r *Registry) updateGaugeLocked() {
	if r.metricsManager != nil {
		r.metricsManager.GaugeOpenNotebooks.Set(float64(len(r.notebooks)))
	}
}
