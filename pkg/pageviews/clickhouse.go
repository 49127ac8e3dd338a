package pageviews

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/golang-migrate/migrate/v4"
	chmigrate "github.com/golang-migrate/migrate/v4/database/clickhouse"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sdkexamples/sdkexamples/pkg/common"
)

//go:embed migrations/clickhouse/*.sql
var clickhouseMigrationsFS embed.FS

const (
	pageViewsTable        = "page_views"
	clickhouseMigrations  = "page_views_migrations"
	defaultClickHousePort = 9000
)

type ClickHouseConnectOpts struct {
	Host     string
	Database string
	User     string
	Password string
	Port     int
	Verbose  bool
}

func (opts *ClickHouseConnectOpts) Empty() bool {
	return (len(opts.Host) == 0) &&
		(len(opts.Database) == 0) &&
		(len(opts.User) == 0) &&
		(len(opts.Password) == 0)
}

func ClickHouseOptsFromConfig(cfg common.ConfigStore) ClickHouseConnectOpts {
	return ClickHouseConnectOpts{
		Host:     cfg.Get(common.ClickHouseHostKey).Value(),
		Database: cfg.Get(common.ClickHouseDBKey).Value(),
		User:     cfg.Get(common.ClickHouseUserKey).Value(),
		Password: cfg.Get(common.ClickHousePasswordKey).Value(),
		Port:     defaultClickHousePort,
	}
}

func ConnectClickHouse(ctx context.Context, opts ClickHouseConnectOpts) *sql.DB {
	slog.DebugContext(ctx, "Connecting to ClickHouse", "host", opts.Host, "db", opts.Database, "user", opts.User)
	options := &clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%v", opts.Host, opts.Port)},
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.User,
			Password: opts.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		ReadTimeout: 15 * time.Second,
		DialTimeout: 30 * time.Second,
		Debug:       opts.Verbose,
		Debugf: func(format string, v ...any) {
			slog.Log(ctx, common.LevelTrace, fmt.Sprintf(format, v...), "source", "clickhouse")
		},
	}

	conn := clickhouse.OpenDB(options)
	conn.SetMaxIdleConns(2)
	conn.SetMaxOpenConns(4)
	conn.SetConnMaxLifetime(time.Hour)
	return conn
}

func MigrateClickHouse(ctx context.Context, db *sql.DB, dbName string, up bool) error {
	mlog := slog.With("up", up)

	d, err := iofs.New(clickhouseMigrationsFS, "migrations/clickhouse")
	if err != nil {
		mlog.ErrorContext(ctx, "Failed to read from ClickHouse migrations IOFS", common.ErrAttr(err))
		return err
	}

	config := &chmigrate.Config{
		MigrationsTable:       clickhouseMigrations,
		MigrationsTableEngine: chmigrate.DefaultMigrationsTableEngine,
		DatabaseName:          dbName,
		MultiStatementEnabled: true,
		MultiStatementMaxSize: chmigrate.DefaultMultiStatementMaxSize,
	}

	driver, err := chmigrate.WithInstance(db, config)
	if err != nil {
		mlog.ErrorContext(ctx, "Failed to connect to ClickHouse", common.ErrAttr(err))
		return err
	}

	m, err := migrate.NewWithInstance("iofs", d, "clickhouse", driver)
	if err != nil {
		mlog.ErrorContext(ctx, "Failed to create migration engine for ClickHouse", common.ErrAttr(err))
		return err
	}

	slog.DebugContext(ctx, "Running ClickHouse migrations...")
	if up {
		err = m.Up()
	} else {
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		mlog.ErrorContext(ctx, "Failed to apply migrations in ClickHouse", common.ErrAttr(err))
		return err
	}

	mlog.InfoContext(ctx, "ClickHouse migrated", "changes", !errors.Is(err, migrate.ErrNoChange))

	return nil
}

type ClickHouseStore struct {
	DB *sql.DB
}

var _ common.PageViewStore = (*ClickHouseStore)(nil)

func (s *ClickHouseStore) StoreViews(ctx context.Context, records []*common.PageViewRecord) error {
	if len(records) == 0 {
		slog.WarnContext(ctx, "Attempt to insert empty page views batch")
		return nil
	}

	scope, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to begin batch insert", common.ErrAttr(err))
		return err
	}
	defer func() { _ = scope.Rollback() }()

	batch, err := scope.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (repo, timestamp, count, uniques)", pageViewsTable))
	if err != nil {
		slog.ErrorContext(ctx, "Failed to prepare insert query", common.ErrAttr(err))
		return err
	}
	defer batch.Close()

	for i, r := range records {
		ts, err := r.Time()
		if err != nil {
			slog.ErrorContext(ctx, "Invalid page view timestamp", "index", i, "timestamp", r.Timestamp, common.ErrAttr(err))
			return err
		}

		if _, err = batch.ExecContext(ctx, r.Repo, ts, uint32(r.Count), uint32(r.Uniques)); err != nil {
			slog.ErrorContext(ctx, "Failed to exec insert for record", common.ErrAttr(err), "index", i)
			return err
		}
	}

	err = scope.Commit()
	if err == nil {
		slog.InfoContext(ctx, "Inserted batch of page views", "size", len(records))
	} else {
		slog.ErrorContext(ctx, "Failed to insert page views batch", common.ErrAttr(err))
	}

	return err
}
