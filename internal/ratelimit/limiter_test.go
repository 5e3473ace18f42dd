package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives MemoryStore's notion of now so window math is exact.
// Locked because the sweep goroutine reads it concurrently.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestLimiter(t *testing.T, policies []RoutePolicy) (*Limiter, *fakeClock) {
	t.Helper()
	table, err := NewPolicyTable(policies)
	require.NoError(t, err)
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(0, 0)
	store.now = clock.now
	t.Cleanup(func() { _ = store.Close() })
	return NewLimiter(table, store), clock
}

func checkN(t *testing.T, l *Limiter, ip, path string, n int) []Result {
	t.Helper()
	results := make([]Result, 0, n)
	for i := 0; i < n; i++ {
		res, err := l.Check(context.Background(), ip, path)
		require.NoError(t, err)
		results = append(results, res)
	}
	return results
}

func TestLimiter_DeniesOverBudget(t *testing.T) {
	l, _ := newTestLimiter(t, []RoutePolicy{{Prefix: "/api/members", MaxRequests: 30, Window: time.Minute}})

	for i, res := range checkN(t, l, "10.0.0.1", "/api/members", 30) {
		assert.True(t, res.Allowed, "request %d should fit the window", i+1)
	}
	res, err := l.Check(context.Background(), "10.0.0.1", "/api/members")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, "/api/members", res.Route)
	assert.Equal(t, time.Minute, res.RetryAfter)
}

func TestLimiter_WindowSlides(t *testing.T) {
	l, clock := newTestLimiter(t, []RoutePolicy{{Prefix: "/staffAccess", MaxRequests: 2, Window: time.Minute}})

	checkN(t, l, "10.0.0.1", "/staffAccess", 2)
	clock.advance(30 * time.Second)
	res, _ := l.Check(context.Background(), "10.0.0.1", "/staffAccess")
	assert.False(t, res.Allowed, "both slots still inside the window")

	// 31 more seconds puts the first hit outside the window.
	clock.advance(31 * time.Second)
	res, _ = l.Check(context.Background(), "10.0.0.1", "/staffAccess")
	assert.True(t, res.Allowed)
}

func TestLimiter_DeniedAttemptsConsumeNothing(t *testing.T) {
	l, clock := newTestLimiter(t, []RoutePolicy{{Prefix: "/staffAccess", MaxRequests: 2, Window: time.Minute}})

	checkN(t, l, "10.0.0.1", "/staffAccess", 2)
	// Hammer the full window. None of these may extend the lockout.
	for i := 0; i < 50; i++ {
		clock.advance(time.Second)
		res, _ := l.Check(context.Background(), "10.0.0.1", "/staffAccess")
		assert.False(t, res.Allowed)
	}
	// 50s of denials later, the first slot (age 61s) has expired.
	clock.advance(11 * time.Second)
	res, _ := l.Check(context.Background(), "10.0.0.1", "/staffAccess")
	assert.True(t, res.Allowed, "denied attempts must not push the window forward")
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(t, []RoutePolicy{
		{Prefix: "/staffAccess", MaxRequests: 1, Window: time.Minute},
		{Prefix: "/dashboard", MaxRequests: 1, Window: time.Minute},
	})

	res, _ := l.Check(context.Background(), "10.0.0.1", "/staffAccess")
	assert.True(t, res.Allowed)
	res, _ = l.Check(context.Background(), "10.0.0.1", "/staffAccess")
	assert.False(t, res.Allowed)

	// Different client, same route.
	res, _ = l.Check(context.Background(), "10.0.0.2", "/staffAccess")
	assert.True(t, res.Allowed)

	// Same client, different route.
	res, _ = l.Check(context.Background(), "10.0.0.1", "/dashboard")
	assert.True(t, res.Allowed)
}

func TestLimiter_LongestPrefixWins(t *testing.T) {
	l, _ := newTestLimiter(t, []RoutePolicy{
		{Prefix: "/api", MaxRequests: 100, Window: time.Minute},
		{Prefix: "/api/staff-users", MaxRequests: 1, Window: time.Minute},
	})

	res, _ := l.Check(context.Background(), "10.0.0.1", "/api/staff-users/abc")
	assert.True(t, res.Allowed)
	assert.Equal(t, "/api/staff-users", res.Route)
	res, _ = l.Check(context.Background(), "10.0.0.1", "/api/staff-users/abc")
	assert.False(t, res.Allowed, "the specific budget applies, not the broad one")
}

func TestLimiter_UnlistedPathUnlimited(t *testing.T) {
	l, _ := newTestLimiter(t, []RoutePolicy{{Prefix: "/staffAccess", MaxRequests: 1, Window: time.Minute}})
	for _, res := range checkN(t, l, "10.0.0.1", "/api/subjects", 200) {
		assert.True(t, res.Allowed)
		assert.Empty(t, res.Route)
	}
}

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int, time.Duration) (bool, error) {
	return false, errors.New("store unavailable")
}
func (failingStore) Close() error { return nil }

func TestLimiter_FailsOpenOnStoreError(t *testing.T) {
	table, err := NewPolicyTable([]RoutePolicy{{Prefix: "/dashboard", MaxRequests: 1, Window: time.Minute}})
	require.NoError(t, err)
	l := NewLimiter(table, failingStore{})

	res, err := l.Check(context.Background(), "10.0.0.1", "/dashboard")
	assert.Error(t, err)
	assert.True(t, res.Allowed, "a broken store degrades limiting, not availability")
}

func TestMemoryStore_LazyPrune(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(0, 0)
	store.now = clock.now
	defer store.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		allowed, err := store.Allow(ctx, "k", 3, time.Minute)
		require.NoError(t, err)
		require.True(t, allowed)
	}
	clock.advance(2 * time.Minute)
	allowed, err := store.Allow(ctx, "k", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Len(t, store.hits["k"], 1, "expired hits are pruned on access")
}

func TestMemoryStore_SweepDropsQuietKeys(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(0, 0)
	store.now = clock.now
	defer store.Close()
	go store.sweep(10*time.Millisecond, time.Minute)

	_, err := store.Allow(context.Background(), "one-off", 5, time.Minute)
	require.NoError(t, err)
	require.Equal(t, 1, store.keyCount())

	clock.advance(2 * time.Minute)
	assert.Eventually(t, func() bool { return store.keyCount() == 0 },
		time.Second, 10*time.Millisecond, "a client that stopped sending must not be retained")
}

func TestNewPolicyTable_Rejections(t *testing.T) {
	cases := []struct {
		name     string
		policies []RoutePolicy
	}{
		{"duplicate prefix", []RoutePolicy{
			{Prefix: "/a", MaxRequests: 1, Window: time.Minute},
			{Prefix: "/a", MaxRequests: 2, Window: time.Minute},
		}},
		{"relative prefix", []RoutePolicy{{Prefix: "a", MaxRequests: 1, Window: time.Minute}}},
		{"zero budget", []RoutePolicy{{Prefix: "/a", MaxRequests: 0, Window: time.Minute}}},
		{"zero window", []RoutePolicy{{Prefix: "/a", MaxRequests: 1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPolicyTable(tc.policies)
			assert.Error(t, err)
		})
	}
}

func TestDefaultPolicies_Valid(t *testing.T) {
	table, err := NewPolicyTable(DefaultPolicies())
	require.NoError(t, err)
	p := table.Match("/api/staff-users")
	require.NotNil(t, p)
	assert.Equal(t, 5, p.MaxRequests)
	assert.Nil(t, table.Match("/api/subjects"))
}
