package observability

import (
	"context"
	"sync"
	"time"
)

// Stats is an in-process collector for all three hook kinds. `devflow serve`
// installs one and publishes its [Snapshot].
type Stats struct {
	mu      sync.Mutex
	started time.Time
	ops     map[string]*OpStats
	cache   CacheStats
	http    HTTPStats
}

// OpStats aggregates one service operation.
type OpStats struct {
	Calls   int64         `json:"calls"`
	Errors  int64         `json:"errors"`
	Results int64         `json:"results"`
	Total   time.Duration `json:"total_ns"`
}

// CacheStats counts registry cache traffic.
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
	Bytes  int64 `json:"bytes"`
}

// HTTPStats counts outgoing registry and search requests.
type HTTPStats struct {
	Requests int64         `json:"requests"`
	Errors   int64         `json:"errors"`
	ByStatus map[int]int64 `json:"by_status"`
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	Uptime     time.Duration      `json:"uptime_ns"`
	Operations map[string]OpStats `json:"operations"`
	Cache      CacheStats         `json:"cache"`
	HTTP       HTTPStats          `json:"http"`
}

// NewStats creates an empty collector.
func NewStats() *Stats {
	return &Stats{
		started: time.Now(),
		ops:     make(map[string]*OpStats),
		http:    HTTPStats{ByStatus: make(map[int]int64)},
	}
}

// Install registers s for resolver, cache and HTTP events.
func (s *Stats) Install() {
	SetResolverHooks(s)
	SetCacheHooks(s)
	SetHTTPHooks(s)
}

func (s *Stats) OnResolveStart(context.Context, string, string) {}

func (s *Stats) OnResolveComplete(_ context.Context, op, _ string, results int, d time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.ops[op]
	if o == nil {
		o = &OpStats{}
		s.ops[op] = o
	}
	o.Calls++
	o.Results += int64(results)
	o.Total += d
	if err != nil {
		o.Errors++
	}
}

func (s *Stats) OnCacheHit(context.Context, string) {
	s.mu.Lock()
	s.cache.Hits++
	s.mu.Unlock()
}

func (s *Stats) OnCacheMiss(context.Context, string) {
	s.mu.Lock()
	s.cache.Misses++
	s.mu.Unlock()
}

func (s *Stats) OnCacheSet(_ context.Context, _ string, size int) {
	s.mu.Lock()
	s.cache.Sets++
	s.cache.Bytes += int64(size)
	s.mu.Unlock()
}

func (s *Stats) OnRequest(context.Context, string, string, string) {
	s.mu.Lock()
	s.http.Requests++
	s.mu.Unlock()
}

func (s *Stats) OnResponse(_ context.Context, _, _, _ string, status int, _ time.Duration) {
	s.mu.Lock()
	s.http.ByStatus[status]++
	s.mu.Unlock()
}

func (s *Stats) OnError(context.Context, string, string, string, error) {
	s.mu.Lock()
	s.http.Errors++
	s.mu.Unlock()
}

// Snapshot copies the current counters.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := Snapshot{
		Uptime:     time.Since(s.started),
		Operations: make(map[string]OpStats, len(s.ops)),
		Cache:      s.cache,
		HTTP:       HTTPStats{Requests: s.http.Requests, Errors: s.http.Errors, ByStatus: make(map[int]int64, len(s.http.ByStatus))},
	}
	for k, v := range s.ops {
		out.Operations[k] = *v
	}
	for k, v := range s.http.ByStatus {
		out.HTTP.ByStatus[k] = v
	}
	return out
}
