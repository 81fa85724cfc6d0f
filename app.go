package certhub

import (
	"context"

	"github.com/pkg/errors"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/whitekid/goxp"
	"github.com/whitekid/goxp/log"

	"certhub/api/endpoints"
	v1 "certhub/api/v1"
	"certhub/certmanager"
	"certhub/config"
	_ "certhub/docs"
	"certhub/pkg/helper"
	"certhub/pkg/metrics"
)

// Run start api server and background workers until ctx is done
func Run(ctx context.Context) error {
	store, err := certmanager.SQLStore(config.DBURL())
	if err != nil {
		return errors.Wrap(err, "fail to open store")
	}
	defer store.Close()

	pool := certmanager.WorkerPool(ctx)
	defer pool.Close()

	fetcher := certmanager.ChainFetcher()
	repo := certmanager.New(store, pool, certmanager.HTTPConnector(), fetcher)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// sweeper is closed only after its sender has stopped
	sweeper := repo.IssuerSweeper()
	interval := config.SweepInterval()
	if interval <= 0 {
		defer close(sweeper)
	} else {
		go func() {
			defer close(sweeper)
			goxp.Every(ctx, interval, func() error {
				triggerSweep(sweeper)
				if err := fetcher.Cleanup(ctx); err != nil {
					log.Errorf("chain cache cleanup failed: %+v", err)
				}
				return nil
			}, nil)
		}()
	}

	e := newApp(repo, store)
	log.Infof("starting certhub at %s", config.Listen())
	return helper.StartEcho(ctx, e, config.Listen())
}

// triggerSweep request issuer sweep unless one is pending
func triggerSweep(sweeper chan<- struct{}) bool {
	select {
	case sweeper <- struct{}{}:
		return true
	default:
		log.Debugf("issuer sweep is running, skip")
		return false
	}
}

func newApp(repo certmanager.Interface, store certmanager.Store) *helper.Echo {
	e := helper.NewEcho(metrics.Middleware())
	e.Debug = config.Debug()
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/metrics", metrics.Handler(metrics.NewRegistry(store.DB())))
	endpoints.Route(e, v1.New(repo))
	return e
}
