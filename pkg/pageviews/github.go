package pageviews

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sdkexamples/sdkexamples/pkg/common"
	"github.com/sdkexamples/sdkexamples/pkg/config"
)

const (
	defaultGitHubAPIURL = "https://api.github.com"
	githubAttempts      = 3
	maxResponseBytes    = 1024 * 1024
	githubTimeout       = 30 * time.Second
)

var (
	ErrUnexpectedStatus = errors.New("unexpected response status")
	errInvalidRepo      = errors.New("repository must be in owner/name form")
)

type Repo struct {
	Owner string
	Name  string
}

func ParseRepo(s string) (Repo, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || len(owner) == 0 || len(name) == 0 || strings.Contains(name, "/") {
		return Repo{}, fmt.Errorf("%w: %q", errInvalidRepo, s)
	}

	return Repo{Owner: owner, Name: name}, nil
}

func (r Repo) String() string {
	return r.Owner + "/" + r.Name
}

type View struct {
	Timestamp time.Time `json:"timestamp"`
	Count     int       `json:"count"`
	Uniques   int       `json:"uniques"`
}

type Traffic struct {
	Count   int    `json:"count"`
	Uniques int    `json:"uniques"`
	Views   []View `json:"views"`
}

type ViewsFetcher interface {
	FetchViews(ctx context.Context, repo Repo) (*Traffic, error)
}

type GitHubClient struct {
	HTTPClient *http.Client
	BaseURL    string
	Token      common.ConfigItem
	Attempts   int
	MinBackoff time.Duration
	MaxBackoff time.Duration
	Cache      *TrafficCache
}

var _ ViewsFetcher = (*GitHubClient)(nil)

func NewGitHubClient(cfg common.ConfigStore) *GitHubClient {
	var cache *TrafficCache
	if size := config.AsInt(cfg.Get(common.GitHubCacheSizeKey), defaultCacheSize); size > 0 {
		var err error
		if cache, err = NewTrafficCache(size, cacheExpiryTTL); err != nil {
			slog.Error("Failed to create traffic cache", "size", size, common.ErrAttr(err))
		}
	}

	return &GitHubClient{
		HTTPClient: &http.Client{Timeout: githubTimeout},
		BaseURL:    config.AsString(cfg.Get(common.GitHubAPIBaseURLKey), defaultGitHubAPIURL),
		Token:      cfg.Get(common.GitHubTokenKey),
		Attempts:   githubAttempts,
		MinBackoff: 1 * time.Second,
		MaxBackoff: 10 * time.Second,
		Cache:      cache,
	}
}

func (c *GitHubClient) viewsURL(repo Repo) string {
	return strings.TrimSuffix(c.BaseURL, "/") + "/repos/" + url.PathEscape(repo.Owner) + "/" + url.PathEscape(repo.Name) + "/traffic/views"
}

func (c *GitHubClient) fetchOnce(ctx context.Context, repo Repo) (*Traffic, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.viewsURL(repo), nil)
	if err != nil {
		return nil, err
	}

	rid := xid.New().String()
	req.Header.Set(common.HeaderAuthorization, "Bearer "+c.Token.Value())
	req.Header.Set(common.HeaderGitHubAPIVersion, common.GitHubAPIVersion)
	req.Header.Set(common.HeaderAccept, common.ContentTypeGitHubJSON)
	req.Header.Set(common.HeaderRequestID, rid)

	var cached *cachedTraffic
	if c.Cache != nil {
		if item, ok := c.Cache.get(ctx, repo); ok {
			cached = item
			req.Header.Set(common.HeaderIfNoneMatch, item.etag)
		}
	}

	rlog := slog.With("requestID", rid, "repo", repo.String())
	rlog.DebugContext(ctx, "Fetching page views", "URL", req.URL.String())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, common.NewRetriableError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, common.NewRetriableError(err)
	}

	if (resp.StatusCode == http.StatusNotModified) && (cached != nil) {
		rlog.DebugContext(ctx, "Page views are not modified", "etag", cached.etag)
		return cached.traffic, nil
	}

	if common.IsRetriableStatus(resp.StatusCode) {
		rlog.WarnContext(ctx, "Failed to fetch page views", "code", resp.StatusCode, "response", string(data))
		return nil, common.NewRetriableError(fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode))
	}

	if resp.StatusCode != http.StatusOK {
		rlog.WarnContext(ctx, "Failed to fetch page views", "code", resp.StatusCode, "response", string(data))
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	traffic := &Traffic{}
	if err := json.Unmarshal(data, traffic); err != nil {
		rlog.ErrorContext(ctx, "Failed to parse page views", common.ErrAttr(err))
		return nil, err
	}

	rlog.DebugContext(ctx, "Fetched page views", "views", len(traffic.Views), "count", traffic.Count)

	if c.Cache != nil {
		c.Cache.set(ctx, repo, resp.Header.Get(common.HeaderETag), traffic)
	}

	return traffic, nil
}

func (c *GitHubClient) FetchViews(ctx context.Context, repo Repo) (*Traffic, error) {
	var traffic *Traffic

	b := common.NewBackoff(c.MinBackoff, c.MaxBackoff)
	err := common.Retry(ctx, c.Attempts, b, func(ctx context.Context, _ int) error {
		var ferr error
		traffic, ferr = c.fetchOnce(ctx, repo)
		return ferr
	})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to fetch data", "repo", repo.String(), common.ErrAttr(err))
		return nil, err
	}

	return traffic, nil
}

// Records converts fetched views into storable records.
func Records(repo Repo, traffic *Traffic) []*common.PageViewRecord {
	if traffic == nil {
		return nil
	}

	records := make([]*common.PageViewRecord, 0, len(traffic.Views))
	for _, v := range traffic.Views {
		records = append(records, common.NewPageViewRecord(repo.String(), v.Timestamp, v.Count, v.Uniques))
	}

	return records
}

func (c *GitHubClient) HitRatio() float64 {
	if c.Cache == nil {
		return 0
	}

	return c.Cache.HitRatio()
}
