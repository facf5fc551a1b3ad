package index

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/navkit/internal/domain"
)

// ModelIndex holds the site model currently being served.
// A reload builds a whole new Site and swaps it in; readers never see a
// partially updated model.
type ModelIndex struct {
	mu         sync.RWMutex
	site       *domain.Site
	lastReload time.Time
	generation uint64
	hits       map[string]int64 // sidebar prefix -> resolutions since start
}

// NewModelIndex creates an empty index
func NewModelIndex() *ModelIndex {
	return &ModelIndex{
		hits: make(map[string]int64),
	}
}

// Current returns the served model, or nil before the first successful load
func (idx *ModelIndex) Current() *domain.Site {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.site
}

// Swap replaces the served model and returns the new generation number
func (idx *ModelIndex) Swap(site *domain.Site) uint64 {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.site = site
	idx.lastReload = time.Now()
	idx.generation++
	return idx.generation
}

// Ready reports whether a model has been loaded
func (idx *ModelIndex) Ready() bool {
	return idx.Current() != nil
}

// Checksum returns the checksum of the served model, empty when none
func (idx *ModelIndex) Checksum() string {
	if s := idx.Current(); s != nil {
		return s.Checksum
	}
	return ""
}

// LastReload returns the timestamp of the last swap
func (idx *ModelIndex) LastReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastReload
}

// Generation returns how many models have been swapped in
func (idx *ModelIndex) Generation() uint64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.generation
}

// ─────────────────────────────────────────────────────────────────
// Usage counters
// ─────────────────────────────────────────────────────────────────

// IncrementCounter records one resolution for a sidebar prefix.
// Unmatched paths are counted under the empty prefix.
func (idx *ModelIndex) IncrementCounter(prefix string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.hits[prefix]++
}

// DrainCounters returns the counters accumulated since the last drain and
// resets them.
func (idx *ModelIndex) DrainCounters() map[string]int64 {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	out := idx.hits
	idx.hits = make(map[string]int64, len(out))
	return out
}

// RestoreCounters adds counters back, used when a flush to Redis failed
func (idx *ModelIndex) RestoreCounters(counts map[string]int64) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for k, v := range counts {
		idx.hits[k] += v
	}
}
