package certhub

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"certhub/config"
)

func TestRunStopsSweeperOnError(t *testing.T) {
	viper.Set(config.KeyDBURL, "sqlite://"+t.TempDir()+"/certhub.db")
	viper.Set(config.KeyListen, "127.0.0.1:-1")
	viper.Set(config.KeySweepInterval, time.Millisecond)
	t.Cleanup(func() {
		viper.Set(config.KeyDBURL, "sqlite://certhub.db")
		viper.Set(config.KeyListen, "127.0.0.1:8000")
		viper.Set(config.KeySweepInterval, time.Hour)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// listen fails while ctx is still alive
	require.Error(t, Run(ctx))

	// ticks after return must not send on the closed sweeper channel
	time.Sleep(50 * time.Millisecond)
}

func TestTriggerSweep(t *testing.T) {
	sweeper := make(chan struct{}, 1)
	require.True(t, triggerSweep(sweeper))
	require.False(t, triggerSweep(sweeper), "pending sweep is not queued twice")
}
