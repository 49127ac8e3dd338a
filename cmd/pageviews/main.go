package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/sdkexamples/sdkexamples/pkg/cloud"
	"github.com/sdkexamples/sdkexamples/pkg/common"
	"github.com/sdkexamples/sdkexamples/pkg/config"
	"github.com/sdkexamples/sdkexamples/pkg/monitoring"
	"github.com/sdkexamples/sdkexamples/pkg/pageviews"
	"github.com/sdkexamples/sdkexamples/pkg/stub"
)

const (
	modeLambda      = "lambda"
	modeOnce        = "once"
	modeDaemon      = "daemon"
	modeMigrate     = "migrate"
	modeRollback    = "rollback"
	defaultInterval = 24 * time.Hour
	_shutdownPeriod = 10 * time.Second
)

var (
	GitCommit   string
	flagMode    = flag.String("mode", "", strings.Join([]string{modeLambda, modeOnce, modeDaemon, modeMigrate, modeRollback}, " | "))
	envFileFlag = flag.String("env", "", "Path to .env file, 'stdin' or empty")
	versionFlag = flag.Bool("version", false, "Print version and exit")
	env         *common.EnvMap
)

var errNotClickHouse = errors.New("migrations are only supported for the clickhouse sink")

func newCollector(ctx context.Context, cfg common.ConfigStore, metrics common.CollectorMetrics) (*pageviews.Collector, error) {
	awsCfg, err := cloud.LoadConfig(ctx, cfg, stub.LiveBackend{})
	if err != nil {
		return nil, err
	}

	store, err := pageviews.NewStore(ctx, cfg, awsCfg)
	if err != nil {
		return nil, err
	}

	return pageviews.NewCollector(cfg, pageviews.NewGitHubClient(cfg), store, metrics)
}

func setupLogs(cfg common.ConfigStore) {
	stage := cfg.Get(common.StageKey).Value()
	verbose := config.AsBool(cfg.Get(common.VerboseKey))
	common.SetupLogs(stage, verbose)
	slog.Debug("Starting", "version", GitCommit, "stage", stage, "mode", *flagMode)
}

func runLambda(ctx context.Context, cfg common.ConfigStore) error {
	collector, err := newCollector(ctx, cfg, monitoring.NewStub())
	if err != nil {
		return err
	}

	h := &pageviews.Handler{Collector: collector}
	lambda.Start(h.Handle)

	return nil
}

func runOnce(ctx context.Context, cfg common.ConfigStore) error {
	collector, err := newCollector(ctx, cfg, monitoring.NewStub())
	if err != nil {
		return err
	}

	count, err := collector.Collect(ctx)
	slog.InfoContext(ctx, "Collection finished", "stored", count)

	return err
}

func serveMetrics(ctx context.Context, address string, metrics *monitoring.Service) {
	mux := http.NewServeMux()
	metrics.Setup(mux)

	server := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), _shutdownPeriod)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(ctx, "Failed to shutdown metrics server", common.ErrAttr(err))
		}
	}()

	slog.InfoContext(ctx, "Serving metrics", "address", address)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.ErrorContext(ctx, "Metrics server failed", common.ErrAttr(err))
	}
}

func runDaemon(ctx context.Context, cfg common.ConfigStore) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metrics common.CollectorMetrics = monitoring.NewStub()
	if address := cfg.Get(common.MetricsAddressKey).Value(); len(address) > 0 {
		service := monitoring.NewService()
		metrics = service
		go serveMetrics(context.WithValue(ctx, common.TraceIDContextKey, "metrics"), address, service)
	}

	collector, err := newCollector(ctx, cfg, metrics)
	if err != nil {
		return err
	}

	interval := config.AsDuration(cfg.Get(common.CollectIntervalKey), defaultInterval)
	job := pageviews.NewCollectJob(collector, interval)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGHUP)
	defer signal.Stop(signals)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-signals:
				slog.DebugContext(ctx, "Received SIGHUP")
				job.Force()
			}
		}
	}()

	slog.InfoContext(ctx, "Collecting page views periodically", "interval", interval.String(), "repos", len(collector.Repos))
	job.Force()
	common.RunPeriodicJob(ctx, job)

	return nil
}

func migrate(ctx context.Context, cfg common.ConfigStore, up bool) error {
	if sink := config.AsString(cfg.Get(common.PageViewSinkKey), pageviews.SinkDynamoDB); sink != pageviews.SinkClickHouse {
		return errNotClickHouse
	}

	opts := pageviews.ClickHouseOptsFromConfig(cfg)
	opts.Verbose = config.AsBool(cfg.Get(common.VerboseKey))

	db := pageviews.ConnectClickHouse(ctx, opts)
	defer db.Close()

	return pageviews.MigrateClickHouse(ctx, db, opts.Database, up)
}

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Print(GitCommit)
		return
	}

	var err error
	env, err = common.NewEnvMap(*envFileFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		env = &common.EnvMap{}
	}

	cfg := config.NewEnvConfig(env.Get)
	setupLogs(cfg)

	mode := *flagMode
	if len(mode) == 0 && len(lambdacontext.FunctionName) > 0 {
		mode = modeLambda
	}

	switch mode {
	case modeLambda:
		err = runLambda(context.Background(), cfg)
	case modeOnce:
		err = runOnce(common.TraceContext(context.Background(), "main"), cfg)
	case modeDaemon:
		err = runDaemon(common.TraceContext(context.Background(), "main"), cfg)
	case modeMigrate:
		err = migrate(common.TraceContext(context.Background(), "migration"), cfg, true /*up*/)
	case modeRollback:
		err = migrate(common.TraceContext(context.Background(), "migration"), cfg, false /*up*/)
	default:
		err = fmt.Errorf("unknown mode: '%s'", mode)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}
