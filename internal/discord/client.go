// Package discord fetches the community guild's member count for the public
// members endpoint.
package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/eduvance/eduvance-backend/internal/pkg/metrics"
)

const apiBase = "https://discord.com/api/v10"

// MemberCount is what the members endpoint serves.
type MemberCount struct {
	Approximate int       `json:"approximate_member_count"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Client calls the Discord guild API. Responses are cached and outbound
// calls are token-bucket limited, so a burst of page loads costs at most one
// Discord request per cache period.
type Client struct {
	token   string
	guildID string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	group   singleflight.Group

	mu       sync.Mutex
	cached   *MemberCount
	cacheTTL time.Duration
}

func New(botToken, guildID string, timeout time.Duration) *Client {
	return &Client{
		token:   botToken,
		guildID: guildID,
		baseURL: apiBase,
		http:    &http.Client{Timeout: timeout},
		// Discord allows ~50 req/s per bot; one per second with a small
		// burst is far under it and plenty for a cached counter.
		limiter:  rate.NewLimiter(rate.Every(time.Second), 3),
		cacheTTL: 5 * time.Minute,
	}
}

// GuildMemberCount returns the cached count, refreshing it from Discord when
// stale. Concurrent refreshes for the same expiry are collapsed into a single
// upstream call, and a stale cache is served as fallback if the refresh fails.
func (c *Client) GuildMemberCount(ctx context.Context) (*MemberCount, error) {
	c.mu.Lock()
	cached := c.cached
	c.mu.Unlock()

	if cached != nil && time.Since(cached.FetchedAt) < c.cacheTTL {
		return cached, nil
	}

	v, err, _ := c.group.Do("guild", func() (any, error) {
		fresh, err := c.fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.cached = fresh
		c.mu.Unlock()
		return fresh, nil
	})
	if err != nil {
		if cached != nil {
			return cached, nil
		}
		return nil, err
	}
	return v.(*MemberCount), nil
}

func (c *Client) fetch(ctx context.Context) (*MemberCount, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/guilds/%s?with_counts=true", c.baseURL, c.guildID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bot "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequestTotal.WithLabelValues("discord", "error").Inc()
		return nil, fmt.Errorf("discord: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequestTotal.WithLabelValues("discord", "error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("discord: guild fetch returned %d: %s", resp.StatusCode, body)
	}

	var payload struct {
		ApproximateMemberCount int `json:"approximate_member_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		metrics.UpstreamRequestTotal.WithLabelValues("discord", "error").Inc()
		return nil, fmt.Errorf("discord: decode guild response: %w", err)
	}

	metrics.UpstreamRequestTotal.WithLabelValues("discord", "ok").Inc()
	return &MemberCount{
		Approximate: payload.ApproximateMemberCount,
		FetchedAt:   time.Now(),
	}, nil
}
