package pageviews

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/sdkexamples/sdkexamples/pkg/common"
	"github.com/sdkexamples/sdkexamples/pkg/config"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

var errNoRepos = errors.New("no repositories configured")

type Collector struct {
	Fetcher     ViewsFetcher
	Store       common.PageViewStore
	Metrics     common.CollectorMetrics
	Repos       []Repo
	Sink        string
	Concurrency int
}

type hitRatioer interface {
	HitRatio() float64
}

func ParseRepos(values []string) ([]Repo, error) {
	repos := make([]Repo, 0, len(values))
	for _, v := range values {
		r, err := ParseRepo(v)
		if err != nil {
			return nil, err
		}
		repos = append(repos, r)
	}

	return repos, nil
}

func NewCollector(cfg common.ConfigStore, fetcher ViewsFetcher, store common.PageViewStore, metrics common.CollectorMetrics) (*Collector, error) {
	repos, err := ParseRepos(config.AsList(cfg.Get(common.PageViewReposKey)))
	if err != nil {
		slog.Error("Failed to parse repositories", common.ErrAttr(err))
		return nil, err
	}

	if len(repos) == 0 {
		return nil, errNoRepos
	}

	return &Collector{
		Fetcher:     fetcher,
		Store:       store,
		Metrics:     metrics,
		Repos:       repos,
		Sink:        config.AsString(cfg.Get(common.PageViewSinkKey), SinkDynamoDB),
		Concurrency: defaultConcurrency,
	}, nil
}

// Collect fetches views of every repository and stores them in one call.
// Repositories that failed to fetch are skipped.
func (c *Collector) Collect(ctx context.Context) (int, error) {
	var (
		mux      sync.Mutex
		records  []*common.PageViewRecord
		fetchErr error
	)

	g := &errgroup.Group{}
	g.SetLimit(max(c.Concurrency, 1))

	for _, repo := range c.Repos {
		g.Go(func() error {
			traffic, err := c.Fetcher.FetchViews(ctx, repo)
			c.Metrics.ObserveFetch(repo.String(), err == nil)

			mux.Lock()
			defer mux.Unlock()

			if err != nil {
				slog.WarnContext(ctx, "No data fetched", "repo", repo.String(), common.ErrAttr(err))
				if fetchErr == nil {
					fetchErr = err
				}
				return nil
			}

			records = append(records, Records(repo, traffic)...)
			return nil
		})
	}

	_ = g.Wait()

	if cache, ok := c.Fetcher.(hitRatioer); ok {
		c.Metrics.ObserveCacheHitRatio(cache.HitRatio())
	}

	if len(records) == 0 {
		slog.WarnContext(ctx, "No page views to store", "repos", len(c.Repos))
		return 0, fetchErr
	}

	err := c.Store.StoreViews(ctx, records)
	c.Metrics.ObserveStore(c.Sink, len(records), err)
	if err != nil {
		return 0, errors.Join(fetchErr, err)
	}

	return len(records), fetchErr
}
