package ratelimit

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// RoutePolicy gives a route prefix its request budget: at most MaxRequests
// requests per client within any Window-sized interval.
type RoutePolicy struct {
	Prefix      string
	MaxRequests int
	Window      time.Duration
}

// PolicyTable resolves a request path to its rate policy by longest matching
// prefix. Paths with no matching prefix are not rate limited.
type PolicyTable struct {
	entries []RoutePolicy
}

// NewPolicyTable validates and orders the entries. Duplicate prefixes would
// make resolution order-dependent and are a configuration error.
func NewPolicyTable(entries []RoutePolicy) (*PolicyTable, error) {
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.Prefix == "" || !strings.HasPrefix(e.Prefix, "/") {
			return nil, fmt.Errorf("rate policy prefix %q must start with /", e.Prefix)
		}
		if seen[e.Prefix] {
			return nil, fmt.Errorf("duplicate rate policy prefix %q", e.Prefix)
		}
		seen[e.Prefix] = true
		if e.MaxRequests <= 0 {
			return nil, fmt.Errorf("rate policy %q: max requests must be positive", e.Prefix)
		}
		if e.Window <= 0 {
			return nil, fmt.Errorf("rate policy %q: window must be positive", e.Prefix)
		}
	}
	sorted := make([]RoutePolicy, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Prefix) > len(sorted[j].Prefix)
	})
	return &PolicyTable{entries: sorted}, nil
}

// Match returns the most specific policy for path, or nil when the path is
// unlimited.
func (t *PolicyTable) Match(path string) *RoutePolicy {
	for i := range t.entries {
		if strings.HasPrefix(path, t.entries[i].Prefix) {
			return &t.entries[i]
		}
	}
	return nil
}

// DefaultPolicies is the portal's rate table. Budgets scale inversely with
// how sensitive or expensive the route is.
func DefaultPolicies() []RoutePolicy {
	return []RoutePolicy{
		{Prefix: "/api/staff-users", MaxRequests: 5, Window: time.Minute},
		{Prefix: "/api/watermark", MaxRequests: 10, Window: time.Minute},
		{Prefix: "/api/members", MaxRequests: 30, Window: time.Minute},
		{Prefix: "/dashboard", MaxRequests: 20, Window: time.Minute},
		{Prefix: "/staffAccess", MaxRequests: 10, Window: time.Minute},
	}
}
