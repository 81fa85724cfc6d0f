package certmanager

import (
	"context"

	"certhub/certmanager/bulk"
	"certhub/certmanager/chain"
	"certhub/certmanager/compliance"
	"certhub/certmanager/repository"
	"certhub/certmanager/store"
	"certhub/certmanager/types"
	"certhub/config"
	"certhub/pkg/helper/gormx"
	"certhub/pkg/worker"
)

type (
	Interface = repository.Interface
	Store     = store.Interface
	Connector = compliance.Connector
	Pool      = worker.Interface

	Certificate     = types.Certificate
	CertificatePage = types.CertificatePage
	Event           = types.Event
	Filter          = types.Filter
	SearchField     = types.SearchField
	Outcome         = types.Outcome
	RAProfile       = types.RAProfile
	Group           = types.Group
	ComplianceRule  = types.ComplianceRule
	Principal       = types.Principal
	Location        = types.CertificateLocation

	UpdateRequest          = repository.UpdateRequest
	PrincipalUpdateRequest = repository.PrincipalUpdateRequest
	BulkUpdateRequest      = bulk.UpdateRequest
	BulkDeleteRequest      = bulk.DeleteRequest

	CertificateListOpt = store.CertificateListOpt
)

var (
	ErrParse                  = types.ErrParse
	ErrUnsupportedType        = types.ErrUnsupportedType
	ErrAlreadyExists          = types.ErrAlreadyExists
	ErrNotFound               = types.ErrNotFound
	ErrValidation             = types.ErrValidation
	ErrConnector              = types.ErrConnector
	ErrChainFetch             = types.ErrChainFetch
	ErrUniqueConstraintFailed = gormx.ErrUniqueConstraintFailed
	ErrMultipleRecord         = store.ErrMultipleRecord
)

func New(store Store, pool Pool, connector Connector, fetcher *chain.Fetcher) Interface {
	return repository.New(store, pool, connector, fetcher)
}

func SQLStore(dburl string) (Store, error) { return store.NewSQL(dburl) }

// HTTPConnector compliance connector configured by config
func HTTPConnector() Connector {
	return compliance.NewHTTPConnector(config.ConnectorEndpoint(), config.ConnectorTimeout())
}

// ChainFetcher AIA fetcher configured by config
func ChainFetcher() *chain.Fetcher {
	return chain.NewFetcher(config.AIATimeout(), config.AIAMaxDepth(), config.AIACacheTTL())
}

// WorkerPool worker pool configured by config
func WorkerPool(ctx context.Context) *worker.Pool {
	return worker.New(ctx, config.Workers(), config.QueueSize())
}
