package auth

import (
	"fmt"
	"sort"
	"strings"
)

// Surface selects how an authorization denial is answered: pages get
// redirects, API routes get JSON errors.
type Surface int

const (
	SurfacePage Surface = iota
	SurfaceAPI
)

// RoutePolicy binds a route prefix to a minimum role tier. Redirect targets
// live on the policy so the enforcement middleware stays generic.
type RoutePolicy struct {
	Prefix  string
	Tier    Tier
	Surface Surface

	// Page-surface redirect targets. LoginURL receives unauthenticated
	// requests; DeniedURL receives authenticated but under-privileged ones.
	LoginURL  string
	DeniedURL string
}

// PolicyTable resolves a request path to its protection policy by longest
// matching prefix. Unmatched paths are implicitly public.
type PolicyTable struct {
	entries []RoutePolicy
}

// NewPolicyTable validates and orders the entries. Two entries with prefixes
// of equal length that both match some path would make resolution depend on
// declaration order, so duplicate prefixes are rejected outright.
func NewPolicyTable(entries []RoutePolicy) (*PolicyTable, error) {
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.Prefix == "" || !strings.HasPrefix(e.Prefix, "/") {
			return nil, fmt.Errorf("route policy prefix %q must start with /", e.Prefix)
		}
		if seen[e.Prefix] {
			return nil, fmt.Errorf("duplicate route policy prefix %q", e.Prefix)
		}
		seen[e.Prefix] = true
	}
	sorted := make([]RoutePolicy, len(entries))
	copy(sorted, entries)
	// Longest prefix first, so the first match is the most specific one.
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Prefix) > len(sorted[j].Prefix)
	})
	return &PolicyTable{entries: sorted}, nil
}

// Match returns the most specific policy for path, or nil when the path is
// unprotected.
func (t *PolicyTable) Match(path string) *RoutePolicy {
	for i := range t.entries {
		if strings.HasPrefix(path, t.entries[i].Prefix) {
			return &t.entries[i]
		}
	}
	return nil
}

// DenyReason is the generic category returned to clients. Internal error
// detail never travels with it.
type DenyReason string

const (
	DenyAuthRequired     DenyReason = "authentication_required"
	DenyInsufficientRole DenyReason = "insufficient_permissions"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

var allow = Decision{Allowed: true}

// Authorize compares the session's tier against the policy's requirement.
// A nil policy or a public tier always allows. A nil session on a protected
// route is always an authentication failure, never a permission one.
func Authorize(p *RoutePolicy, s *Session) Decision {
	if p == nil || p.Tier == TierPublic {
		return allow
	}
	if s == nil {
		return Decision{Reason: DenyAuthRequired}
	}
	if s.Tier() >= p.Tier {
		return allow
	}
	return Decision{Reason: DenyInsufficientRole}
}

// DefaultPolicies is the portal's protection table. Longest-prefix matching
// makes /dashboard/admin win over /dashboard for admin sub-pages.
func DefaultPolicies() []RoutePolicy {
	return []RoutePolicy{
		{Prefix: "/dashboard", Tier: TierStaff, Surface: SurfacePage, LoginURL: "/staffAccess", DeniedURL: "/staffAccess"},
		{Prefix: "/dashboard/admin", Tier: TierAdmin, Surface: SurfacePage, LoginURL: "/staffAccess", DeniedURL: "/dashboard/staff"},
		{Prefix: "/api/resources", Tier: TierStaff, Surface: SurfaceAPI},
		{Prefix: "/api/papers", Tier: TierStaff, Surface: SurfaceAPI},
		{Prefix: "/api/community-requests", Tier: TierStaff, Surface: SurfaceAPI},
		{Prefix: "/api/staff-users", Tier: TierAdmin, Surface: SurfaceAPI},
		{Prefix: "/api/watermark", Tier: TierStaff, Surface: SurfaceAPI},
	}
}
