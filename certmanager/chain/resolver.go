package chain

import (
	"context"
	"crypto/x509"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/whitekid/goxp/log"

	"certhub/certmanager/history"
	"certhub/certmanager/parser"
	"certhub/certmanager/store"
	"certhub/certmanager/types"
	"certhub/pkg/metrics"
)

const defaultBatchSize = 1000

// Resolver link certificates to its issuer by signature verification
type Resolver struct {
	store     store.Interface
	sink      history.Sink
	batchSize int
}

func NewResolver(s store.Interface, sink history.Sink, batchSize int) *Resolver {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	return &Resolver{
		store:     s,
		sink:      sink,
		batchSize: batchSize,
	}
}

// ResolveIssuer find verifying issuer of cert and set its issuer serial number.
// returns false if cert is self signed, already linked or no issuer verifies
func (r *Resolver) ResolveIssuer(ctx context.Context, cert *types.Certificate) (bool, error) {
	log.Debugf("ResolveIssuer(): uuid=%s, issuer=%s", cert.UUID, cert.IssuerDN)

	if cert.SelfSigned() || cert.IssuerSerialNumber != nil {
		return false, nil
	}

	subject, err := parser.Decode(cert.Content)
	if err != nil {
		return false, errors.Wrapf(err, "fail to resolve issuer of %s", cert.UUID)
	}

	candidates, err := r.store.ListCertificate(ctx, store.CertificateListOpt{SubjectDN: cert.IssuerDN, Ascending: true})
	if err != nil {
		return false, errors.Wrapf(err, "fail to resolve issuer of %s", cert.UUID)
	}

	var failures error
	for _, candidate := range orderCandidates(candidates, cert) {
		if candidate.ID == cert.ID {
			continue
		}

		issuer, err := parser.Decode(candidate.Content)
		if err != nil {
			failures = multierror.Append(failures, errors.Wrapf(err, "candidate %s", candidate.UUID))
			continue
		}

		if err := verifySignature(subject, issuer); err != nil {
			failures = multierror.Append(failures, errors.Wrapf(err, "candidate %s", candidate.UUID))
			continue
		}

		serial := candidate.SerialNumber
		if err := r.store.UpdateCertificate(ctx, cert.ID, store.CertificateUpdate{IssuerSerialNumber: &serial}); err != nil {
			return false, errors.Wrapf(err, "fail to resolve issuer of %s", cert.UUID)
		}
		cert.IssuerSerialNumber = &serial

		log.Infof("certificate %s linked to issuer %s", cert.UUID, candidate.UUID)
		metrics.IssuerLinks.Inc()
		r.sink.Record(types.NewEvent(cert.UUID, types.EventUpdateIssuer, types.EventSuccess, types.ChangeMessage("", serial)))
		return true, nil
	}

	if failures != nil {
		log.Debugf("no verifying issuer for %s: %v", cert.UUID, failures)
	}

	return false, nil
}

// orderCandidates candidates whose validity covers the subject's notBefore first, enumeration order otherwise
func orderCandidates(candidates []*types.Certificate, subject *types.Certificate) []*types.Certificate {
	covers := func(c *types.Certificate) bool {
		return !subject.NotBefore.Before(c.NotBefore) && !subject.NotBefore.After(c.NotAfter)
	}

	sort.SliceStable(candidates, func(i, j int) bool { return covers(candidates[i]) && !covers(candidates[j]) })
	return candidates
}

// verifySignature check subject is signed by issuer.
// issuer without CA basic constraints, such as legacy root, is checked by raw signature
func verifySignature(subject, issuer *x509.Certificate) error {
	if err := subject.CheckSignatureFrom(issuer); err == nil {
		return nil
	}

	return issuer.CheckSignature(subject.SignatureAlgorithm, subject.RawTBSCertificate, subject.Signature)
}

// ResolveAllUnlinked resolve issuer of all certificates without issuer serial number.
// returns number of linked certificates
func (r *Resolver) ResolveAllUnlinked(ctx context.Context) (int, error) {
	log.Debugf("ResolveAllUnlinked()")

	linked := 0
	var result error
	var before uint

	for {
		certs, err := r.store.ListCertificate(ctx, store.CertificateListOpt{Unlinked: true, Before: before, Limit: r.batchSize})
		if err != nil {
			return linked, errors.Wrap(err, "fail to resolve unlinked certificates")
		}

		for _, cert := range certs {
			ok, err := r.ResolveIssuer(ctx, cert)
			if err != nil {
				result = multierror.Append(result, err)
				continue
			}
			if ok {
				linked++
			}
		}

		if len(certs) < r.batchSize {
			break
		}
		before = certs[len(certs)-1].ID
	}

	if result != nil {
		log.Errorf("issuer sweep: %v", result)
	}
	log.Infof("issuer sweep done: linked=%d", linked)

	return linked, result
}
