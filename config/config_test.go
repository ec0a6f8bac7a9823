package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

// writeTempConfig creates a minimal configuration file required for
// LoadConfig and returns its path.
func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp("", "cfg-*.yml")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close temp file: %v", err)
	}
	t.Cleanup(func() { os.Remove(f.Name()) })
	return f.Name()
}

const minimalYAML = `app:
  name: "TestApp"
  version: "1.0"
storage:
  s3:
    enabled: false
`

func TestLoadConfig(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	path := writeTempConfig(t, minimalYAML)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.App.Name != "TestApp" {
		t.Errorf("unexpected name: %s", cfg.App.Name)
	}
	if cfg.Snapshot.BandPercent != 25 {
		t.Errorf("unexpected default band percent: %v", cfg.Snapshot.BandPercent)
	}
	if cfg.Snapshot.ExpiryPolicy != "weekly_window" {
		t.Errorf("unexpected default expiry policy: %s", cfg.Snapshot.ExpiryPolicy)
	}
	if cfg.Snapshot.PriorLookback != 300 {
		t.Errorf("unexpected default prior lookback: %d", cfg.Snapshot.PriorLookback)
	}
	if cfg.Feed.Timeout != 30*time.Second {
		t.Errorf("unexpected default feed timeout: %v", cfg.Feed.Timeout)
	}
}

func TestLoadConfigMissingName(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	path := writeTempConfig(t, `app:
  version: "1.0"
`)
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for missing app.name")
	}
}

func TestLoadConfigInvalidPolicy(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	path := writeTempConfig(t, minimalYAML+`snapshot:
  expiry_policy: "monthly"
`)
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "expiry_policy") {
		t.Fatalf("expected expiry policy error, got %v", err)
	}
}

func TestLoadConfigInvalidBand(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	path := writeTempConfig(t, minimalYAML+`snapshot:
  band_percent: 0
`)
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for zero band percent")
	}
}

func TestLoadConfigProductionRequiresS3(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	path := writeTempConfig(t, minimalYAML)
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error when S3 disabled in production")
	}
}

func TestLoadConfigS3EnvOverride(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("AWS_ACCESS_KEY_ID", "env-key")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "env-secret")
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("S3_BUCKET", "env-bucket")

	path := writeTempConfig(t, `app:
  name: "TestApp"
  version: "1.0"
storage:
  s3:
    enabled: true
    bucket: "file-bucket"
    region: "us-east-1"
    access_key_id: "file-key"
    secret_access_key: "file-secret"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Storage.S3.Bucket != "env-bucket" {
		t.Errorf("bucket not overridden: %s", cfg.Storage.S3.Bucket)
	}
	if cfg.Storage.S3.Region != "eu-west-1" {
		t.Errorf("region not overridden: %s", cfg.Storage.S3.Region)
	}
	if cfg.Storage.S3.AccessKeyID != "env-key" {
		t.Errorf("access key not overridden: %s", cfg.Storage.S3.AccessKeyID)
	}
}

func TestIsValidS3Bucket(t *testing.T) {
	valid := []string{"eth-options-data", "abc", "my.bucket.01"}
	for _, name := range valid {
		if !isValidS3Bucket(name) {
			t.Errorf("expected %q to be valid", name)
		}
	}
	invalid := []string{"ab", "UPPER", ".leading", "trailing.", "double..dot", strings.Repeat("a", 64)}
	for _, name := range invalid {
		if isValidS3Bucket(name) {
			t.Errorf("expected %q to be invalid", name)
		}
	}
}
