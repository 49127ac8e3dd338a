package pageviews

import (
	"context"
	"log/slog"
	"time"

	"github.com/maypok86/otter/v2"
	"github.com/maypok86/otter/v2/stats"
	"github.com/sdkexamples/sdkexamples/pkg/common"
)

const (
	defaultCacheSize = 100
	cacheExpiryTTL   = 48 * time.Hour
)

type cachedTraffic struct {
	etag    string
	traffic *Traffic
}

// TrafficCache keeps the last response per repository so that unchanged
// traffic can be revalidated with a conditional request.
type TrafficCache struct {
	store   *otter.Cache[string, *cachedTraffic]
	counter *stats.Counter
}

func NewTrafficCache(maxSize int, expiryTTL time.Duration) (*TrafficCache, error) {
	counter := stats.NewCounter()
	store, err := otter.New(&otter.Options[string, *cachedTraffic]{
		MaximumSize:      maxSize,
		ExpiryCalculator: otter.ExpiryAccessing[string, *cachedTraffic](expiryTTL),
		StatsRecorder:    counter,
	})
	if err != nil {
		return nil, err
	}

	return &TrafficCache{store: store, counter: counter}, nil
}

func (c *TrafficCache) HitRatio() float64 {
	return c.counter.Snapshot().HitRatio()
}

func (c *TrafficCache) get(ctx context.Context, repo Repo) (*cachedTraffic, bool) {
	item, found := c.store.GetIfPresent(repo.String())
	if !found {
		slog.Log(ctx, common.LevelTrace, "Traffic not found in cache", "repo", repo.String())
		return nil, false
	}

	slog.Log(ctx, common.LevelTrace, "Found traffic in cache", "repo", repo.String(), "etag", item.etag)

	return item, true
}

func (c *TrafficCache) set(ctx context.Context, repo Repo, etag string, traffic *Traffic) {
	if len(etag) == 0 {
		return
	}

	c.store.Set(repo.String(), &cachedTraffic{etag: etag, traffic: traffic})
	slog.Log(ctx, common.LevelTrace, "Cached traffic", "repo", repo.String(), "etag", etag)
}
