package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/sdkexamples/sdkexamples/pkg/common"
)

var (
	errEmptyEnvVar  = errors.New("environment variable is empty")
	errEmptyEnvName = errors.New("environment variable name is empty")
)

type envConfigValue struct {
	key   common.ConfigKey
	value string
}

var _ common.ConfigItem = (*envConfigValue)(nil)

var (
	configKeyToEnvName []string
	configKeyStrMux    sync.Mutex
)

func init() {
	configKeyStrMux.Lock()
	defer configKeyStrMux.Unlock()

	if len(configKeyToEnvName) < int(common.COMMON_CONFIG_KEYS_COUNT) {
		configKeyToEnvName = make([]string, common.COMMON_CONFIG_KEYS_COUNT)
	}

	configKeyToEnvName[common.StageKey] = "STAGE"
	configKeyToEnvName[common.VerboseKey] = "SX_VERBOSE"
	configKeyToEnvName[common.AWSRegionKey] = "AWS_REGION"
	configKeyToEnvName[common.UseLiveBackendKey] = "SX_USE_LIVE_BACKEND"
	configKeyToEnvName[common.GitHubTokenKey] = "GITHUB_TOKEN"
	configKeyToEnvName[common.GitHubAPIBaseURLKey] = "SX_GITHUB_API_URL"
	configKeyToEnvName[common.PageViewReposKey] = "SX_PAGEVIEWS_REPOS"
	configKeyToEnvName[common.PageViewTableKey] = "TABLE_NAME"
	configKeyToEnvName[common.PageViewSinkKey] = "SX_PAGEVIEWS_SINK"
	configKeyToEnvName[common.CollectIntervalKey] = "SX_COLLECT_INTERVAL"
	configKeyToEnvName[common.ClickHouseHostKey] = "SX_CLICKHOUSE_HOST"
	configKeyToEnvName[common.ClickHouseDBKey] = "SX_CLICKHOUSE_DB"
	configKeyToEnvName[common.ClickHouseUserKey] = "SX_CLICKHOUSE_USER"
	configKeyToEnvName[common.ClickHousePasswordKey] = "SX_CLICKHOUSE_PASSWORD"
	configKeyToEnvName[common.SmtpEndpointKey] = "SMTP_ENDPOINT"
	configKeyToEnvName[common.SmtpUsernameKey] = "SMTP_USERNAME"
	configKeyToEnvName[common.SmtpPasswordKey] = "SMTP_PASSWORD"
	configKeyToEnvName[common.EmailTransportKey] = "SX_EMAIL_TRANSPORT"
	configKeyToEnvName[common.EmailFromKey] = "SX_EMAIL_FROM"
	configKeyToEnvName[common.MetricsAddressKey] = "SX_METRICS_ADDRESS"
	configKeyToEnvName[common.GitHubCacheSizeKey] = "SX_GITHUB_CACHE_SIZE"

	for i, v := range configKeyToEnvName {
		if len(v) == 0 {
			panic(fmt.Sprintf("found unconfigured value for key: %v", i))
		}
	}
}

func RegisterEnvNameForConfigKey(key common.ConfigKey, s string) error {
	if len(s) == 0 {
		return errEmptyEnvName
	}

	configKeyStrMux.Lock()
	defer configKeyStrMux.Unlock()

	if int(key) >= len(configKeyToEnvName) {
		newSlice := make([]string, int(key)+1)
		copy(newSlice, configKeyToEnvName)
		configKeyToEnvName = newSlice
	}

	if configKeyToEnvName[key] != "" {
		return fmt.Errorf("config: duplicate env name registration for config key %v", key)
	}

	configKeyToEnvName[key] = s
	return nil
}

func EnvName(key common.ConfigKey) string {
	configKeyStrMux.Lock()
	defer configKeyStrMux.Unlock()

	if int(key) < len(configKeyToEnvName) {
		return configKeyToEnvName[key]
	}

	return ""
}

func (v *envConfigValue) Key() common.ConfigKey {
	return v.key
}

func (v *envConfigValue) Value() string {
	return v.value
}

func (v *envConfigValue) Update(getenv func(string) string) error {
	name := EnvName(v.key)
	if len(name) == 0 {
		return errEmptyEnvName
	}

	value := getenv(name)
	v.value = value
	if len(value) == 0 {
		return errEmptyEnvVar
	}

	return nil
}

type envConfig struct {
	lock   sync.Mutex
	items  map[common.ConfigKey]*envConfigValue
	getenv func(string) string
}

var _ common.ConfigStore = (*envConfig)(nil)

func NewEnvConfig(getenv func(string) string) *envConfig {
	return &envConfig{
		items:  make(map[common.ConfigKey]*envConfigValue),
		getenv: getenv,
	}
}

func (c *envConfig) Get(key common.ConfigKey) common.ConfigItem {
	c.lock.Lock()
	defer c.lock.Unlock()

	item, ok := c.items[key]
	if ok {
		return item
	}

	item = &envConfigValue{
		key:   key,
		value: c.getenv(EnvName(key)),
	}
	c.items[key] = item

	return item
}

func (c *envConfig) Update(ctx context.Context) {
	c.lock.Lock()
	defer c.lock.Unlock()

	for key, cfg := range c.items {
		if err := cfg.Update(c.getenv); err != nil {
			slog.Log(ctx, common.LevelTrace, "Cannot update environment config", "key", EnvName(key), common.ErrAttr(err))
		}
	}
}

// StaticConfig is a fixed-value store for tests and command-line overrides.
type StaticConfig map[common.ConfigKey]string

var _ common.ConfigStore = StaticConfig(nil)

func (c StaticConfig) Get(key common.ConfigKey) common.ConfigItem {
	return &envConfigValue{key: key, value: c[key]}
}

func (c StaticConfig) Update(context.Context) {}

func AsBool(item common.ConfigItem) bool {
	return common.ParseBoolean(item.Value())
}

func AsInt(item common.ConfigItem, fallback int) int {
	if value := item.Value(); len(value) > 0 {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		slog.Warn("Failed to parse integer config value", "key", EnvName(item.Key()), "value", value)
	}

	return fallback
}

func AsDuration(item common.ConfigItem, fallback time.Duration) time.Duration {
	if value := item.Value(); len(value) > 0 {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		slog.Warn("Failed to parse duration config value", "key", EnvName(item.Key()), "value", value)
	}

	return fallback
}

func AsList(item common.ConfigItem) []string {
	return common.SplitList(item.Value())
}

func AsString(item common.ConfigItem, fallback string) string {
	if value := item.Value(); len(value) > 0 {
		return value
	}

	return fallback
}
