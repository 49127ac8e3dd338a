package common

type ConfigKey int

const (
	StageKey ConfigKey = iota
	VerboseKey
	AWSRegionKey
	UseLiveBackendKey
	GitHubTokenKey
	GitHubAPIBaseURLKey
	PageViewReposKey
	PageViewTableKey
	PageViewSinkKey
	CollectIntervalKey
	ClickHouseHostKey
	ClickHouseDBKey
	ClickHouseUserKey
	ClickHousePasswordKey
	SmtpEndpointKey
	SmtpUsernameKey
	SmtpPasswordKey
	EmailTransportKey
	EmailFromKey
	MetricsAddressKey
	GitHubCacheSizeKey
	// Add new fields _above_
	COMMON_CONFIG_KEYS_COUNT
)
