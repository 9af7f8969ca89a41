package status

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

// Component states.
const (
	StateOperational = "operational"
	StateDegraded    = "degraded"
)

// Summary captures the health of the site's upstream dependencies.
type Summary struct {
	State      string      `json:"state"`
	UpdatedAt  time.Time   `json:"updated_at"`
	Components []Component `json:"components"`
}

// Component represents the status of an individual subsystem.
type Component struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency"`
}

// Probe checks one dependency.
type Probe func(ctx context.Context) error

// Checker probes dependencies and caches the summary for a short TTL so that
// frequent health polling does not hammer the CMS.
type Checker struct {
	probes  map[string]Probe
	timeout time.Duration
	ttl     time.Duration
	now     func() time.Time

	mu      sync.RWMutex
	cached  Summary
	expires time.Time
}

const (
	defaultTTL     = 30 * time.Second
	defaultTimeout = 3 * time.Second
)

// NewChecker builds a checker with no probes; add them with Register.
func NewChecker(ttl time.Duration) *Checker {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Checker{probes: map[string]Probe{}, timeout: defaultTimeout, ttl: ttl, now: time.Now}
}

// Register adds a named probe.
func (c *Checker) Register(name string, p Probe) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.probes[name] = p
	c.expires = time.Time{}
}

// FetchSummary returns the cached summary or runs every probe concurrently.
func (c *Checker) FetchSummary(ctx context.Context) Summary {
	now := c.now()
	c.mu.RLock()
	if now.Before(c.expires) {
		s := cloneSummary(c.cached)
		c.mu.RUnlock()
		return s
	}
	probes := make(map[string]Probe, len(c.probes))
	for k, v := range c.probes {
		probes[k] = v
	}
	c.mu.RUnlock()

	summary := Summary{State: StateOperational, UpdatedAt: now}
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for name, probe := range probes {
		wg.Add(1)
		go func(name string, probe Probe) {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()
			start := time.Now()
			err := probe(pctx)
			comp := Component{Name: name, Status: StateOperational, Latency: time.Since(start).Round(time.Millisecond).String()}
			if err != nil {
				comp.Status = StateDegraded
				comp.Error = err.Error()
			}
			mu.Lock()
			summary.Components = append(summary.Components, comp)
			mu.Unlock()
		}(name, probe)
	}
	wg.Wait()

	sort.Slice(summary.Components, func(i, j int) bool {
		return summary.Components[i].Name < summary.Components[j].Name
	})
	for _, comp := range summary.Components {
		if comp.Status != StateOperational {
			summary.State = StateDegraded
		}
	}

	c.mu.Lock()
	c.cached = cloneSummary(summary)
	c.expires = now.Add(c.ttl)
	c.mu.Unlock()
	return summary
}

// Handler serves the summary as JSON: 200 when operational, 503 otherwise.
func (c *Checker) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		summary := c.FetchSummary(r.Context())
		code := http.StatusOK
		if summary.State != StateOperational {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(summary)
	})
}

func cloneSummary(src Summary) Summary {
	cp := Summary{State: src.State, UpdatedAt: src.UpdatedAt}
	if len(src.Components) > 0 {
		cp.Components = make([]Component, len(src.Components))
		copy(cp.Components, src.Components)
	}
	return cp
}
