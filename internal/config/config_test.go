package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "scheme-uploads", cfg.KafkaSourceTopic)
	assert.Equal(t, "compiled-schemes", cfg.KafkaSinkTopic)
	assert.Equal(t, "zip-dispatch", cfg.KafkaGroupID)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchFlushInterval)
	assert.Empty(t, cfg.SchemePath)
	assert.Empty(t, cfg.SitesPath)
	assert.Equal(t, 1000, cfg.LookupCacheSize)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SOURCE_TOPIC", "custom-source")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")
	t.Setenv("KAFKA_GROUP_ID", "custom-group")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("BATCH_SIZE", "10")
	t.Setenv("BATCH_FLUSH_INTERVAL", "1s")
	t.Setenv("SCHEME_PATH", "data/scheme.txt")
	t.Setenv("SITES_PATH", "data/sites.toml")
	t.Setenv("LOOKUP_CACHE_SIZE", "250")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-source", cfg.KafkaSourceTopic)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
	assert.Equal(t, "custom-group", cfg.KafkaGroupID)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, 1*time.Second, cfg.BatchFlushInterval)
	assert.Equal(t, "data/scheme.txt", cfg.SchemePath)
	assert.Equal(t, "data/sites.toml", cfg.SitesPath)
	assert.Equal(t, 250, cfg.LookupCacheSize)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidBatchSize(t *testing.T) {
	t.Setenv("BATCH_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_SIZE")
}

func TestLoad_InvalidBatchFlushInterval(t *testing.T) {
	t.Setenv("BATCH_FLUSH_INTERVAL", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_FLUSH_INTERVAL")
}

func TestLoad_InvalidLookupCacheSize(t *testing.T) {
	for _, v := range []string{"0", "-3", "lots"} {
		t.Setenv("LOOKUP_CACHE_SIZE", v)
		_, err := Load()
		require.Error(t, err, v)
		assert.Contains(t, err.Error(), "LOOKUP_CACHE_SIZE")
	}
}

func TestLoad_KafkaDisabledNeedsScheme(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "false")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCHEME_PATH")

	t.Setenv("SCHEME_PATH", "data/scheme.txt")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}

func TestLoadSiteTable_Defaults(t *testing.T) {
	table, err := LoadSiteTable("")
	require.NoError(t, err)
	assert.Equal(t, "ATL 19", table.Label("19"))
}

func TestLoadSiteTable_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sites.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[sites]]
code = "BHM"
low = 1
high = 9

[machines]
3 = "Line A"
`), 0o600))

	table, err := LoadSiteTable(path)
	require.NoError(t, err)
	assert.Equal(t, "BHM 3", table.Label("3"))
	assert.Equal(t, "BIN 19", table.Label("19"))

	m, ok := table.MachineLabel("3")
	require.True(t, ok)
	assert.Equal(t, "Line A", m)
	_, ok = table.MachineLabel("19")
	assert.False(t, ok)
}

func TestLoadSiteTable_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadSiteTable(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sites load failed")

	badRange := filepath.Join(dir, "range.toml")
	require.NoError(t, os.WriteFile(badRange, []byte("[[sites]]\ncode = \"X\"\nlow = 9\nhigh = 1\n"), 0o600))
	_, err = LoadSiteTable(badRange)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sites[0] invalid")

	badKey := filepath.Join(dir, "key.toml")
	require.NoError(t, os.WriteFile(badKey, []byte("[machines]\nnorth = \"Line A\"\n"), 0o600))
	_, err = LoadSiteTable(badKey)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "north")
}
