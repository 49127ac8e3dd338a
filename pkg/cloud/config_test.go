package cloud

import (
	"testing"

	"github.com/sdkexamples/sdkexamples/pkg/common"
	"github.com/sdkexamples/sdkexamples/pkg/config"
	"github.com/sdkexamples/sdkexamples/pkg/stub"
)

func TestTestBackend(t *testing.T) {
	r := stub.NewRegistry()

	if b := TestBackend(config.StaticConfig{}, r); b.Name() != "stub" {
		t.Errorf("Unexpected default backend: %v", b.Name())
	}

	live := config.StaticConfig{common.UseLiveBackendKey: "true"}
	if b := TestBackend(live, r); b.Name() != "live" {
		t.Errorf("Unexpected backend: %v", b.Name())
	}
}

func TestLoadConfigRegion(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	t.Setenv("AWS_CONFIG_FILE", t.TempDir()+"/config")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", t.TempDir()+"/credentials")

	cfg := config.StaticConfig{common.AWSRegionKey: "eu-west-1"}
	r := stub.NewRegistry()

	awsCfg, err := LoadConfig(t.Context(), cfg, stub.NewStubBackend(r))
	if err != nil {
		t.Fatal(err)
	}

	if awsCfg.Region != "eu-west-1" {
		t.Errorf("Unexpected region: %v", awsCfg.Region)
	}

	if len(awsCfg.APIOptions) == 0 {
		t.Error("Backend was not installed")
	}
}

func TestLoadConfigNilBackend(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	t.Setenv("AWS_CONFIG_FILE", t.TempDir()+"/config")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", t.TempDir()+"/credentials")

	awsCfg, err := LoadConfig(t.Context(), config.StaticConfig{}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(awsCfg.Region) == 0 {
		t.Error("Region was not defaulted")
	}

	liveCfg, err := LoadConfig(t.Context(), config.StaticConfig{}, stub.LiveBackend{})
	if err != nil {
		t.Fatal(err)
	}

	if len(awsCfg.APIOptions) != len(liveCfg.APIOptions) {
		t.Errorf("Unexpected API options: %v (live %v)", len(awsCfg.APIOptions), len(liveCfg.APIOptions))
	}
}
