// Package config viper backed configuration. environment variables are prefixed with CERTHUB_
// and "." in keys is replaced with "_", ex) CERTHUB_BULK_BATCH_SIZE
package config

import (
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	KeyDBURL              = "db_url"
	KeyListen             = "listen"
	KeyDebug              = "debug"
	KeyBulkBatchSize      = "bulk.batch_size"
	KeyWorkers            = "worker.count"
	KeyQueueSize          = "worker.queue_size"
	KeyAIATimeout         = "aia.timeout"
	KeyAIAMaxDepth        = "aia.max_depth"
	KeyAIACacheTTL        = "aia.cache_ttl"
	KeyConnectorEndpoint  = "connector.endpoint"
	KeyConnectorTimeout   = "connector.timeout"
	KeyPageSize           = "page.default_size"
	KeyMaxPageSize        = "page.max_size"
	KeySweepInterval      = "sweep.interval"
	KeyServerEndpoint     = "endpoint"
	DefaultBulkBatchSize  = 1000
	DefaultPageSize       = 10
	DefaultMaxPageSize    = 1000
	DefaultAIATimeout     = time.Second
	DefaultAIAMaxDepth    = 10
	DefaultConnectTimeout = 5 * time.Second
)

var defaults = map[string]interface{}{
	KeyDBURL:             "sqlite://certhub.db",
	KeyListen:            "127.0.0.1:8000",
	KeyDebug:             false,
	KeyBulkBatchSize:     DefaultBulkBatchSize,
	KeyWorkers:           4,
	KeyQueueSize:         100,
	KeyAIATimeout:        DefaultAIATimeout,
	KeyAIAMaxDepth:       DefaultAIAMaxDepth,
	KeyAIACacheTTL:       10 * time.Minute,
	KeyConnectorEndpoint: "",
	KeyConnectorTimeout:  DefaultConnectTimeout,
	KeyPageSize:          DefaultPageSize,
	KeyMaxPageSize:       DefaultMaxPageSize,
	KeySweepInterval:     time.Hour,
	KeyServerEndpoint:    "http://127.0.0.1:8000",
}

func init() {
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}

	viper.SetEnvPrefix("certhub")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// ReadConfigFile read yaml config file. missing file is not an error
func ReadConfigFile(name string) error {
	if name != "" {
		viper.SetConfigFile(name)
	} else {
		viper.SetConfigName("certhub")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/certhub")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && name == "" {
			return nil
		}
		return err
	}

	return nil
}

// BindFlag bind command line flag to config key
func BindFlag(key string, flag *pflag.Flag) {
	if flag != nil {
		viper.BindPFlag(key, flag)
	}
}

func DBURL() string                   { return viper.GetString(KeyDBURL) }
func Listen() string                  { return viper.GetString(KeyListen) }
func Debug() bool                     { return viper.GetBool(KeyDebug) }
func Workers() int                    { return atLeast(viper.GetInt(KeyWorkers), 1) }
func QueueSize() int                  { return atLeast(viper.GetInt(KeyQueueSize), 1) }
func BulkBatchSize() int              { return atLeast(viper.GetInt(KeyBulkBatchSize), 1) }
func AIATimeout() time.Duration       { return clampTimeout(viper.GetDuration(KeyAIATimeout)) }
func AIAMaxDepth() int                { return atLeast(viper.GetInt(KeyAIAMaxDepth), 1) }
func AIACacheTTL() time.Duration      { return viper.GetDuration(KeyAIACacheTTL) }
func ConnectorEndpoint() string       { return viper.GetString(KeyConnectorEndpoint) }
func ConnectorTimeout() time.Duration { return viper.GetDuration(KeyConnectorTimeout) }
func PageSize() int                   { return atLeast(viper.GetInt(KeyPageSize), 1) }
func MaxPageSize() int                { return atLeast(viper.GetInt(KeyMaxPageSize), 1) }
func SweepInterval() time.Duration    { return viper.GetDuration(KeySweepInterval) }
func ServerEndpoint() string          { return viper.GetString(KeyServerEndpoint) }

// clampTimeout AIA fetch waits at most DefaultAIATimeout
func clampTimeout(d time.Duration) time.Duration {
	if d <= 0 || d > DefaultAIATimeout {
		return DefaultAIATimeout
	}
	return d
}

func atLeast(v, min int) int {
	if v < min {
		return min
	}
	return v
}
