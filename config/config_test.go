package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	require.Equal(t, "sqlite://certhub.db", DBURL())
	require.Equal(t, 1000, BulkBatchSize())
	require.Equal(t, time.Second, AIATimeout())
	require.Equal(t, 10, AIAMaxDepth())
	require.Equal(t, 10, PageSize())
	require.Equal(t, 1000, MaxPageSize())
}

func TestEnv(t *testing.T) {
	t.Setenv("CERTHUB_BULK_BATCH_SIZE", "500")
	t.Setenv("CERTHUB_AIA_TIMEOUT", "500ms")
	t.Setenv("CERTHUB_WORKER_COUNT", "-1")

	require.Equal(t, 500, BulkBatchSize())
	require.Equal(t, 500*time.Millisecond, AIATimeout())
	require.Equal(t, 1, Workers())
}

func TestAIATimeout(t *testing.T) {
	tests := [...]struct {
		value string
		want  time.Duration
	}{
		{"200ms", 200 * time.Millisecond},
		{"1s", time.Second},
		{"2s", time.Second},
		{"0s", time.Second},
		{"-1s", time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("CERTHUB_AIA_TIMEOUT", tt.value)
			require.Equal(t, tt.want, AIATimeout())
		})
	}
}

func TestReadConfigFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "certhub.yaml")
	require.NoError(t, os.WriteFile(name, []byte("connector:\n  endpoint: http://connector:8080\n"), 0644))

	require.NoError(t, ReadConfigFile(name))
	t.Cleanup(func() { viper.Set(KeyConnectorEndpoint, "") })
	require.Equal(t, "http://connector:8080", ConnectorEndpoint())

	require.Error(t, ReadConfigFile(filepath.Join(t.TempDir(), "missing.yaml")))
}
