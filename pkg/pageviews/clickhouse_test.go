package pageviews

import (
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/sdkexamples/sdkexamples/pkg/common"
	"github.com/sdkexamples/sdkexamples/pkg/config"
)

func TestClickHouseStoreEmptyBatch(t *testing.T) {
	s := &ClickHouseStore{}

	if err := s.StoreViews(t.Context(), nil); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestClickHouseOptsFromConfig(t *testing.T) {
	cfg := config.StaticConfig{
		common.ClickHouseHostKey: "localhost",
		common.ClickHouseDBKey:   "analytics",
	}

	opts := ClickHouseOptsFromConfig(cfg)
	if opts.Empty() || opts.Host != "localhost" || opts.Database != "analytics" || opts.Port != defaultClickHousePort {
		t.Errorf("Unexpected options: %+v", opts)
	}

	if empty := ClickHouseOptsFromConfig(config.StaticConfig{}); !empty.Empty() {
		t.Errorf("Options should be empty: %+v", empty)
	}
}

func testClickHouseDB(t *testing.T) *sql.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping ClickHouse test in short mode")
	}

	opts := ClickHouseOptsFromConfig(config.NewEnvConfig(os.Getenv))
	if opts.Empty() {
		t.Skip("ClickHouse is not configured")
	}

	db := ConnectClickHouse(t.Context(), opts)
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateClickHouse(t.Context(), db, opts.Database, true /*up*/); err != nil {
		t.Fatal(err)
	}

	return db
}

// Runs against the server configured with SX_CLICKHOUSE_* variables.
func TestClickHouseStoreViews(t *testing.T) {
	db := testClickHouseDB(t)

	repo := "test/" + time.Now().UTC().Format("20060102150405.000000000")
	ts := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	records := []*common.PageViewRecord{
		common.NewPageViewRecord(repo, ts, 10, 2),
		common.NewPageViewRecord(repo, ts.AddDate(0, 0, 1), 4, 1),
	}

	s := &ClickHouseStore{DB: db}
	for i := 0; i < 2; i++ {
		if err := s.StoreViews(t.Context(), records); err != nil {
			t.Fatal(err)
		}
	}

	var rows, views uint64
	err := db.QueryRowContext(t.Context(), "SELECT count(), sum(count) FROM page_views FINAL WHERE repo = ?", repo).Scan(&rows, &views)
	if err != nil {
		t.Fatal(err)
	}

	if rows != 2 || views != 14 {
		t.Errorf("Unexpected stored views: rows %v, views %v", rows, views)
	}
}

func TestClickHouseStoreInvalidTimestamp(t *testing.T) {
	db := testClickHouseDB(t)

	s := &ClickHouseStore{DB: db}
	records := []*common.PageViewRecord{{Repo: "test/invalid", Timestamp: "yesterday"}}

	if err := s.StoreViews(t.Context(), records); err == nil {
		t.Error("Invalid timestamp was stored")
	}
}
