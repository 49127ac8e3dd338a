package cloud

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/sdkexamples/sdkexamples/pkg/common"
	"github.com/sdkexamples/sdkexamples/pkg/config"
	"github.com/sdkexamples/sdkexamples/pkg/stub"
)

// LoadConfig resolves SDK configuration from the default chain, with the
// region overridable from cfg, and installs backend into it. A nil backend
// means the live service.
func LoadConfig(ctx context.Context, cfg common.ConfigStore, backend stub.Backend) (aws.Config, error) {
	if backend == nil {
		backend = stub.LiveBackend{}
	}

	var opts []func(*awsconfig.LoadOptions) error

	region := cfg.Get(common.AWSRegionKey).Value()
	if len(region) > 0 {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load SDK config", "region", region, common.ErrAttr(err))
		return aws.Config{}, err
	}

	if len(awsCfg.Region) == 0 {
		awsCfg.Region = common.DefaultAWSRegion
	}

	stub.Apply(&awsCfg, backend)

	slog.DebugContext(ctx, "Loaded SDK config", "region", awsCfg.Region, "backend", backend.Name())

	return awsCfg, nil
}

// TestBackend picks the backend for tests: stubs over r unless the live
// backend was requested in the environment.
func TestBackend(cfg common.ConfigStore, r *stub.Registry) stub.Backend {
	return stub.Select(config.AsBool(cfg.Get(common.UseLiveBackendKey)), r)
}
