package status

import (
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
)

// MetricMap is a thread-safe set of named metrics of type T
// Registration takes the lock, writers cache the returned pointer
type MetricMap[T any] struct {
	mu    sync.RWMutex
	items map[string]*T
}

// NewMetricMap creates an empty map
func NewMetricMap[T any]() *MetricMap[T] {
	return &MetricMap[T]{items: make(map[string]*T)}
}

// Get returns the metric for key, creating it on first use
func (m *MetricMap[T]) Get(key string) *T {
	m.mu.RLock()
	if ptr, ok := m.items[key]; ok {
		m.mu.RUnlock()
		return ptr
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if ptr, ok := m.items[key]; ok {
		return ptr
	}
	ptr := new(T)
	m.items[key] = ptr
	return ptr
}

// Range visits every metric in key order
func (m *MetricMap[T]) Range(fn func(key string, ptr *T)) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fn(k, m.items[k])
	}
}

// Count returns the number of registered metrics
func (m *MetricMap[T]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Registry holds the client's session metrics
// Observers write on the loop goroutine, readers may be anywhere
type Registry struct {
	Ints   *MetricMap[atomic.Int64]
	Floats *MetricMap[Float]
	Texts  *MetricMap[Text]
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		Ints:   NewMetricMap[atomic.Int64](),
		Floats: NewMetricMap[Float](),
		Texts:  NewMetricMap[Text](),
	}
}

// TotalCount returns the number of metrics across all kinds
func (r *Registry) TotalCount() int {
	return r.Ints.Count() + r.Floats.Count() + r.Texts.Count()
}

// Each visits every metric formatted as text, sorted by key across kinds
func (r *Registry) Each(fn func(key, value string)) {
	type kv struct{ k, v string }
	all := make([]kv, 0, r.TotalCount())

	r.Ints.Range(func(k string, p *atomic.Int64) {
		all = append(all, kv{k, strconv.FormatInt(p.Load(), 10)})
	})
	r.Floats.Range(func(k string, p *Float) {
		all = append(all, kv{k, strconv.FormatFloat(p.Get(), 'f', -1, 64)})
	})
	r.Texts.Range(func(k string, p *Text) {
		all = append(all, kv{k, p.Get()})
	})

	sort.SliceStable(all, func(i, j int) bool { return all[i].k < all[j].k })
	for _, e := range all {
		fn(e.k, e.v)
	}
}
