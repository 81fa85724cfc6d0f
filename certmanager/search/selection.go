package search

import (
	"context"

	"github.com/whitekid/goxp/log"

	"certhub/certmanager/store"
	"certhub/certmanager/types"
)

// Selection certificates selected by compiled filters
type Selection struct {
	store       store.Interface
	selectors   []store.SelectorFunc
	pageSize    int
	maxPageSize int
}

func (s *Selection) opts() store.CertificateListOpt {
	return store.CertificateListOpt{Selectors: s.selectors}
}

func (s *Selection) Count(ctx context.Context) (int64, error) {
	return s.store.CountCertificate(ctx, s.opts())
}

// Page returns page of selection ordered by id descending. page starts from 1
func (s *Selection) Page(ctx context.Context, page int, size int) (*types.CertificatePage, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = s.pageSize
	}
	if size > s.maxPageSize {
		size = s.maxPageSize
	}

	total, err := s.Count(ctx)
	if err != nil {
		return nil, err
	}

	opts := s.opts()
	opts.Offset = (page - 1) * size
	opts.Limit = size
	items, err := s.store.ListCertificate(ctx, opts)
	if err != nil {
		return nil, err
	}

	return &types.CertificatePage{
		Items:      items,
		Page:       page,
		Size:       size,
		TotalPages: int((total + int64(size) - 1) / int64(size)),
		TotalItems: total,
	}, nil
}

// BatchFunc process batch of selected certificates
type BatchFunc func(ctx context.Context, certs []*types.Certificate) error

// ForEachBatch call fn with batches of selection in descending id order.
// iteration is keyed by id, so fn may update or delete the certificates of the batch
func (s *Selection) ForEachBatch(ctx context.Context, batchSize int, fn BatchFunc) error {
	log.Debugf("ForEachBatch(): batchSize=%d", batchSize)

	if batchSize <= 0 {
		batchSize = s.maxPageSize
	}

	var before uint
	for {
		opts := s.opts()
		opts.Before = before
		opts.Limit = batchSize

		certs, err := s.store.ListCertificate(ctx, opts)
		if err != nil {
			return err
		}

		if len(certs) == 0 {
			return nil
		}

		if err := fn(ctx, certs); err != nil {
			return err
		}

		if len(certs) < batchSize {
			return nil
		}
		before = certs[len(certs)-1].ID
	}
}
