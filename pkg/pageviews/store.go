package pageviews

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/sdkexamples/sdkexamples/pkg/common"
	"github.com/sdkexamples/sdkexamples/pkg/config"
)

const (
	SinkDynamoDB   = "dynamodb"
	SinkClickHouse = "clickhouse"
)

var (
	errUnknownSink        = errors.New("unknown page views sink")
	errClickHouseNotSetUp = errors.New("clickhouse connection is not configured")
)

func NewStore(ctx context.Context, cfg common.ConfigStore, awsCfg aws.Config) (common.PageViewStore, error) {
	sink := strings.ToLower(config.AsString(cfg.Get(common.PageViewSinkKey), SinkDynamoDB))

	switch sink {
	case SinkDynamoDB:
		table := cfg.Get(common.PageViewTableKey).Value()
		if len(table) == 0 {
			slog.ErrorContext(ctx, "DynamoDB table is not configured", "env", config.EnvName(common.PageViewTableKey))
			return nil, errNoTable
		}
		return NewDynamoStoreFromConfig(awsCfg, table), nil
	case SinkClickHouse:
		opts := ClickHouseOptsFromConfig(cfg)
		if opts.Empty() {
			return nil, errClickHouseNotSetUp
		}
		opts.Verbose = config.AsBool(cfg.Get(common.VerboseKey))
		return &ClickHouseStore{DB: ConnectClickHouse(ctx, opts)}, nil
	default:
		slog.ErrorContext(ctx, "Unknown page views sink", "sink", sink)
		return nil, errUnknownSink
	}
}
