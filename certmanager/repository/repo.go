package repository

import (
	"context"

	"github.com/pkg/errors"
	"github.com/whitekid/goxp/fx"
	"github.com/whitekid/goxp/log"

	"certhub/certmanager/bulk"
	"certhub/certmanager/chain"
	"certhub/certmanager/compliance"
	"certhub/certmanager/history"
	"certhub/certmanager/parser"
	"certhub/certmanager/search"
	"certhub/certmanager/store"
	"certhub/certmanager/types"
	"certhub/config"
	"certhub/pkg/helper/gormx"
	"certhub/pkg/worker"
)

type Interface interface {
	// Ingest store certificate if not exists. returns the certificate and true if created
	Ingest(ctx context.Context, raw []byte) (*types.Certificate, bool, error)
	// Upload manual upload; fails if serial number already exists
	Upload(ctx context.Context, raw []byte, certType types.CertificateType, meta string) (*types.Certificate, error)
	Get(ctx context.Context, uuid string) (*types.Certificate, error)
	History(ctx context.Context, uuid string) ([]*types.Event, error)
	List(ctx context.Context, filters []*types.Filter, page int, size int) (*types.CertificatePage, error)
	SearchableFields(ctx context.Context) ([]types.SearchField, error)

	Update(ctx context.Context, uuid string, req *UpdateRequest) (*types.Certificate, error)
	UpdateRAProfile(ctx context.Context, uuid string, profileUUID string) (*types.Certificate, error)
	UpdateGroup(ctx context.Context, uuid string, groupUUID string) (*types.Certificate, error)
	UpdateOwner(ctx context.Context, uuid string, owner string) (*types.Certificate, error)
	Delete(ctx context.Context, uuid string) error
	Revoke(ctx context.Context, uuid string) (*types.Certificate, error)

	BulkUpdate(ctx context.Context, req *bulk.UpdateRequest) ([]types.Outcome, error)
	BulkDelete(ctx context.Context, req *bulk.DeleteRequest) ([]types.Outcome, error)
	BulkUpdateAsync(ctx context.Context, req *bulk.UpdateRequest) error
	BulkDeleteAsync(ctx context.Context, req *bulk.DeleteRequest) error

	CheckCompliance(ctx context.Context, uuids []string) []types.Outcome
	CheckProfileCompliance(ctx context.Context, profileUUID string) (int, error)
	DownloadChain(ctx context.Context, cert *types.Certificate) (int, error)
	SweepIssuers(ctx context.Context) (int, error)

	ListLocations(ctx context.Context, uuid string) ([]*types.CertificateLocation, error)
	AddLocation(ctx context.Context, uuid string, location string) (*types.CertificateLocation, error)
	RemoveLocation(ctx context.Context, uuid string, location string) error

	// CreatePrincipal create principal bound to certificate; empty certificateUUID creates unbound principal
	CreatePrincipal(ctx context.Context, principal *types.Principal, certificateUUID string) (*types.Principal, error)
	ListPrincipals(ctx context.Context) ([]*types.Principal, error)
	UpdatePrincipal(ctx context.Context, uuid string, req *PrincipalUpdateRequest) (*types.Principal, error)

	CreateRAProfile(ctx context.Context, profile *types.RAProfile, ruleUUIDs []string) (*types.RAProfile, error)
	ListRAProfile(ctx context.Context) ([]*types.RAProfile, error)
	CreateGroup(ctx context.Context, group *types.Group) (*types.Group, error)
	ListGroup(ctx context.Context) ([]*types.Group, error)
	CreateComplianceRule(ctx context.Context, rule *types.ComplianceRule) (*types.ComplianceRule, error)
	ListComplianceRule(ctx context.Context) ([]*types.ComplianceRule, error)

	// caller must close channel to stop sweeper
	IssuerSweeper() chan<- struct{}
}

// UpdateRequest update of single certificate. nil field is not changed, empty string clears the field
type UpdateRequest struct {
	RAProfileID *string `json:"raProfileUuid,omitempty"`
	GroupID     *string `json:"groupUuid,omitempty"`
	Owner       *string `json:"owner,omitempty"`
}

// PrincipalUpdateRequest nil field is not changed, empty CertificateUUID unbinds principal
type PrincipalUpdateRequest struct {
	CertificateUUID *string
	Enabled         *bool
}

// New create new repository. if pool is nil, async works run synchronously
func New(s store.Interface, pool worker.Interface, connector compliance.Connector, fetcher *chain.Fetcher) Interface {
	sink := history.New(s, pool)
	batchSize := config.BulkBatchSize()
	compiler := search.NewCompiler(search.DefaultCatalog(), s)

	return &repoImpl{
		store:     s,
		pool:      pool,
		sink:      sink,
		fetcher:   fetcher,
		compiler:  compiler,
		resolver:  chain.NewResolver(s, sink, batchSize),
		evaluator: compliance.NewEvaluator(s, connector, sink, batchSize),
		bulk:      bulk.New(s, compiler, sink, batchSize),
	}
}

type repoImpl struct {
	store     store.Interface
	pool      worker.Interface
	sink      history.Sink
	fetcher   *chain.Fetcher
	compiler  *search.Compiler
	resolver  *chain.Resolver
	evaluator *compliance.Evaluator
	bulk      *bulk.Orchestrator
}

var _ Interface = (*repoImpl)(nil)

// submit run task on worker pool, or in place if there is no pool
func (repo *repoImpl) submit(ctx context.Context, name string, task worker.Task) error {
	if repo.pool == nil {
		return task(ctx)
	}
	return repo.pool.Submit(name, task)
}

type ingestOpt struct {
	meta          string
	downloadChain bool
}

func (repo *repoImpl) Ingest(ctx context.Context, raw []byte) (*types.Certificate, bool, error) {
	log.Debugf("Ingest()")

	parsed, err := parser.Parse(raw)
	if err != nil {
		return nil, false, err
	}

	return repo.ingest(ctx, parsed, ingestOpt{downloadChain: true})
}

func (repo *repoImpl) ingest(ctx context.Context, parsed *types.ParsedCertificate, opt ingestOpt) (*types.Certificate, bool, error) {
	existing, err := repo.store.GetCertificateByFingerprint(ctx, parsed.Fingerprint)
	if err == nil {
		log.Debugf("certificate already exists: fingerprint=%s", parsed.Fingerprint)
		return existing, false, nil
	}
	if !errors.Is(err, types.ErrNotFound) {
		return nil, false, errors.Wrap(err, "fail to ingest certificate")
	}

	content, err := repo.store.StoreContent(ctx, parsed.Fingerprint, parsed.Content)
	if err != nil {
		return nil, false, errors.Wrap(err, "fail to ingest certificate")
	}

	record := parsed.Record
	record.ContentID = content.ID
	record.Meta = opt.meta

	cert, err := repo.store.CreateCertificate(ctx, record)
	if err != nil {
		if errors.Is(err, gormx.ErrUniqueConstraintFailed) {
			// created by concurrent ingestion
			existing, err := repo.store.GetCertificateByFingerprint(ctx, parsed.Fingerprint)
			if err != nil {
				return nil, false, errors.Wrap(err, "fail to ingest certificate")
			}
			return existing, false, nil
		}
		return nil, false, errors.Wrap(err, "fail to ingest certificate")
	}

	log.Infof("certificate created: uuid=%s, subject=%s", cert.UUID, cert.SubjectDN)
	repo.sink.Record(types.NewEvent(cert.UUID, types.EventUpload, types.EventSuccess, "certificate uploaded"))

	if opt.downloadChain && !cert.SelfSigned() {
		if err := repo.submit(ctx, "chain "+cert.UUID, func(ctx context.Context) error {
			_, err := repo.DownloadChain(ctx, cert)
			return err
		}); err != nil {
			log.Errorf("fail to submit chain download of %s: %v", cert.UUID, err)
		}
	}

	return cert, true, nil
}

func (repo *repoImpl) Upload(ctx context.Context, raw []byte, certType types.CertificateType, meta string) (*types.Certificate, error) {
	log.Debugf("Upload(): type=%s", certType)

	parsed, err := parser.ParseTyped(raw, certType)
	if err != nil {
		return nil, err
	}

	count, err := repo.store.CountCertificate(ctx, store.CertificateListOpt{SerialNumber: parsed.Record.SerialNumber})
	if err != nil {
		return nil, errors.Wrap(err, "fail to upload certificate")
	}
	if count > 0 {
		return nil, errors.Wrapf(types.ErrAlreadyExists, "certificate with serial number %s", parsed.Record.SerialNumber)
	}

	cert, _, err := repo.ingest(ctx, parsed, ingestOpt{meta: meta, downloadChain: true})
	return cert, err
}

func (repo *repoImpl) Get(ctx context.Context, uuid string) (*types.Certificate, error) {
	return repo.store.GetCertificate(ctx, uuid)
}

func (repo *repoImpl) History(ctx context.Context, uuid string) ([]*types.Event, error) {
	if _, err := repo.store.GetCertificate(ctx, uuid); err != nil {
		return nil, err
	}

	return repo.store.ListEvents(ctx, uuid)
}

func (repo *repoImpl) List(ctx context.Context, filters []*types.Filter, page int, size int) (*types.CertificatePage, error) {
	selection, err := repo.compiler.Compile(filters)
	if err != nil {
		return nil, err
	}

	return selection.Page(ctx, page, size)
}

// SearchableFields returns catalog with values filled from store
func (repo *repoImpl) SearchableFields(ctx context.Context) ([]types.SearchField, error) {
	values := map[string][]string{}

	for field, column := range map[string]string{
		"signatureAlgorithm": "signature_algorithm",
		"publicKeyAlgorithm": "public_key_algorithm",
		"owner":              "owner",
	} {
		v, err := repo.store.DistinctValues(ctx, column)
		if err != nil {
			return nil, errors.Wrap(err, "fail to get searchable fields")
		}
		values[field] = v
	}

	profiles, err := repo.store.ListRAProfile(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fail to get searchable fields")
	}
	values["raProfile"] = fx.Map(profiles, func(p *types.RAProfile) string { return p.Name })

	groups, err := repo.store.ListGroup(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fail to get searchable fields")
	}
	values["group"] = fx.Map(groups, func(g *types.Group) string { return g.Name })

	return search.DefaultCatalog().WithValues(values).Fields(), nil
}

func (repo *repoImpl) Update(ctx context.Context, uuid string, req *UpdateRequest) (*types.Certificate, error) {
	log.Debugf("Update(): uuid=%s", uuid)

	if _, err := repo.store.GetCertificate(ctx, uuid); err != nil {
		return nil, err
	}

	outcomes, err := repo.BulkUpdate(ctx, &bulk.UpdateRequest{
		Selector:    bulk.Selector{IDs: []string{uuid}},
		RAProfileID: req.RAProfileID,
		GroupID:     req.GroupID,
		Owner:       req.Owner,
	})
	if err != nil {
		return nil, err
	}

	if len(outcomes) != 1 || !outcomes[0].Success {
		return nil, errors.Errorf("fail to update certificate %s: %v", uuid, outcomes)
	}

	return repo.store.GetCertificate(ctx, uuid)
}

func (repo *repoImpl) UpdateRAProfile(ctx context.Context, uuid string, profileUUID string) (*types.Certificate, error) {
	return repo.Update(ctx, uuid, &UpdateRequest{RAProfileID: &profileUUID})
}

func (repo *repoImpl) UpdateGroup(ctx context.Context, uuid string, groupUUID string) (*types.Certificate, error) {
	return repo.Update(ctx, uuid, &UpdateRequest{GroupID: &groupUUID})
}

func (repo *repoImpl) UpdateOwner(ctx context.Context, uuid string, owner string) (*types.Certificate, error) {
	return repo.Update(ctx, uuid, &UpdateRequest{Owner: &owner})
}

func (repo *repoImpl) Delete(ctx context.Context, uuid string) error {
	log.Debugf("Delete(): uuid=%s", uuid)

	cert, err := repo.store.GetCertificate(ctx, uuid)
	if err != nil {
		return err
	}

	if err := bulk.DeleteCertificate(ctx, repo.store, cert); err != nil {
		repo.sink.Record(types.NewEvent(uuid, types.EventDelete, types.EventFailed, err.Error()))
		return err
	}

	repo.sink.Record(types.NewEvent(uuid, types.EventDelete, types.EventSuccess, "certificate deleted"))
	return nil
}

// Revoke mark certificate as revoked
func (repo *repoImpl) Revoke(ctx context.Context, uuid string) (*types.Certificate, error) {
	log.Debugf("Revoke(): uuid=%s", uuid)

	cert, err := repo.store.GetCertificate(ctx, uuid)
	if err != nil {
		return nil, err
	}

	if cert.Status == types.StatusRevoked {
		return nil, errors.Wrapf(types.ErrValidation, "certificate %s already revoked", uuid)
	}

	status := types.StatusRevoked
	if err := repo.store.UpdateCertificate(ctx, cert.ID, store.CertificateUpdate{Status: &status}); err != nil {
		return nil, errors.Wrap(err, "fail to revoke certificate")
	}

	repo.sink.Record(types.NewEvent(uuid, types.EventRevoke, types.EventSuccess, types.ChangeMessage(string(cert.Status), string(status))))
	return repo.store.GetCertificate(ctx, uuid)
}

// BulkUpdate update certificates. compliance of certificates with changed ra profile is evaluated in background
func (repo *repoImpl) BulkUpdate(ctx context.Context, req *bulk.UpdateRequest) ([]types.Outcome, error) {
	outcomes, err := repo.bulk.Update(ctx, req)
	if err != nil {
		return nil, err
	}

	if req.RAProfileID != nil {
		uuids := fx.Map(fx.Filter(outcomes, func(o types.Outcome) bool { return o.Success }), func(o types.Outcome) string { return o.ID })
		if len(uuids) > 0 {
			if err := repo.submit(ctx, "compliance", func(ctx context.Context) error {
				repo.evaluator.EvaluateAll(ctx, uuids)
				return nil
			}); err != nil {
				log.Errorf("fail to submit compliance check: %v", err)
			}
		}
	}

	return outcomes, nil
}

func (repo *repoImpl) BulkDelete(ctx context.Context, req *bulk.DeleteRequest) ([]types.Outcome, error) {
	return repo.bulk.Delete(ctx, req)
}

// BulkUpdateAsync validate request and run update in background
func (repo *repoImpl) BulkUpdateAsync(ctx context.Context, req *bulk.UpdateRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	return repo.submit(ctx, "bulk update", func(ctx context.Context) error {
		_, err := repo.BulkUpdate(ctx, req)
		return err
	})
}

// BulkDeleteAsync validate request and run delete in background
func (repo *repoImpl) BulkDeleteAsync(ctx context.Context, req *bulk.DeleteRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	return repo.submit(ctx, "bulk delete", func(ctx context.Context) error {
		_, err := repo.BulkDelete(ctx, req)
		return err
	})
}

func (repo *repoImpl) CheckCompliance(ctx context.Context, uuids []string) []types.Outcome {
	return repo.evaluator.EvaluateAll(ctx, uuids)
}

func (repo *repoImpl) CheckProfileCompliance(ctx context.Context, profileUUID string) (int, error) {
	return repo.evaluator.EvaluateProfile(ctx, profileUUID)
}

// DownloadChain fetch issuers of cert by AIA and ingest them. returns number of created certificates.
// when new certificate is created, issuers of all unlinked certificates are resolved again
func (repo *repoImpl) DownloadChain(ctx context.Context, cert *types.Certificate) (int, error) {
	log.Debugf("DownloadChain(): uuid=%s", cert.UUID)

	x509Cert, err := parser.Decode(cert.Content)
	if err != nil {
		return 0, errors.Wrapf(err, "fail to download chain of %s", cert.UUID)
	}

	ders, err := repo.fetcher.FetchChain(ctx, x509Cert)
	if err != nil {
		log.Errorf("chain of %s: %v", cert.UUID, err)
	}

	created := 0
	for _, der := range ders {
		parsed, err := parser.Parse(der)
		if err != nil {
			log.Errorf("skip chain member of %s: %v", cert.UUID, err)
			continue
		}

		if _, ok, err := repo.ingest(ctx, parsed, ingestOpt{}); err != nil {
			log.Errorf("skip chain member of %s: %v", cert.UUID, err)
		} else if ok {
			created++
		}
	}

	if created > 0 {
		if _, err := repo.resolver.ResolveAllUnlinked(ctx); err != nil {
			log.Errorf("issuer sweep after chain download: %v", err)
		}
	} else if _, err := repo.resolver.ResolveIssuer(ctx, cert); err != nil {
		log.Errorf("resolve issuer of %s: %v", cert.UUID, err)
	}

	return created, nil
}

func (repo *repoImpl) SweepIssuers(ctx context.Context) (int, error) {
	return repo.resolver.ResolveAllUnlinked(ctx)
}

func (repo *repoImpl) ListLocations(ctx context.Context, uuid string) ([]*types.CertificateLocation, error) {
	log.Debugf("ListLocations(): uuid=%s", uuid)

	cert, err := repo.store.GetCertificate(ctx, uuid)
	if err != nil {
		return nil, err
	}

	return repo.store.ListLocations(ctx, cert.ID)
}

func (repo *repoImpl) AddLocation(ctx context.Context, uuid string, location string) (*types.CertificateLocation, error) {
	log.Debugf("AddLocation(): uuid=%s, location=%s", uuid, location)

	cert, err := repo.store.GetCertificate(ctx, uuid)
	if err != nil {
		return nil, err
	}

	created, err := repo.store.AddLocation(ctx, cert.ID, location)
	if err != nil {
		return nil, errors.Wrapf(err, "fail to add location to %s", uuid)
	}
	log.Infof("certificate %s is installed at %s", uuid, location)

	return created, nil
}

func (repo *repoImpl) RemoveLocation(ctx context.Context, uuid string, location string) error {
	log.Debugf("RemoveLocation(): uuid=%s, location=%s", uuid, location)

	cert, err := repo.store.GetCertificate(ctx, uuid)
	if err != nil {
		return err
	}

	return repo.store.RemoveLocation(ctx, cert.ID, location)
}

// certificateRef resolve certificate uuid to reference update; empty uuid clears reference
func (repo *repoImpl) certificateRef(ctx context.Context, uuid string) (*store.RefUpdate, error) {
	if uuid == "" {
		return &store.RefUpdate{}, nil
	}

	cert, err := repo.store.GetCertificate(ctx, uuid)
	if err != nil {
		return nil, err
	}
	return &store.RefUpdate{ID: &cert.ID}, nil
}

func (repo *repoImpl) CreatePrincipal(ctx context.Context, principal *types.Principal, certificateUUID string) (*types.Principal, error) {
	log.Debugf("CreatePrincipal(): name=%s, certificate=%s", principal.Name, certificateUUID)

	ref, err := repo.certificateRef(ctx, certificateUUID)
	if err != nil {
		return nil, err
	}
	principal.CertificateID = ref.ID

	created, err := repo.store.CreatePrincipal(ctx, principal)
	if err != nil {
		return nil, errors.Wrap(err, "fail to create principal")
	}
	created.CertificateUUID = certificateUUID

	return created, nil
}

func (repo *repoImpl) ListPrincipals(ctx context.Context) ([]*types.Principal, error) {
	return repo.store.ListPrincipals(ctx)
}

// UpdatePrincipal bind, unbind, enable or disable principal.
// certificate bound to enabled principal can not be deleted
func (repo *repoImpl) UpdatePrincipal(ctx context.Context, uuid string, req *PrincipalUpdateRequest) (*types.Principal, error) {
	log.Debugf("UpdatePrincipal(): uuid=%s", uuid)

	principal, err := repo.store.GetPrincipal(ctx, uuid)
	if err != nil {
		return nil, err
	}

	update := store.PrincipalUpdate{Enabled: req.Enabled}
	if req.CertificateUUID != nil {
		if update.Certificate, err = repo.certificateRef(ctx, *req.CertificateUUID); err != nil {
			return nil, err
		}
	}

	if err := repo.store.UpdatePrincipal(ctx, principal.ID, update); err != nil {
		return nil, err
	}

	return repo.store.GetPrincipal(ctx, uuid)
}

func (repo *repoImpl) CreateRAProfile(ctx context.Context, profile *types.RAProfile, ruleUUIDs []string) (*types.RAProfile, error) {
	created, err := repo.store.CreateRAProfile(ctx, profile, ruleUUIDs)
	if err != nil {
		return nil, errors.Wrap(err, "fail to create ra profile")
	}
	return created, nil
}

func (repo *repoImpl) ListRAProfile(ctx context.Context) ([]*types.RAProfile, error) {
	return repo.store.ListRAProfile(ctx)
}

func (repo *repoImpl) CreateGroup(ctx context.Context, group *types.Group) (*types.Group, error) {
	created, err := repo.store.CreateGroup(ctx, group)
	if err != nil {
		return nil, errors.Wrap(err, "fail to create group")
	}
	return created, nil
}

func (repo *repoImpl) ListGroup(ctx context.Context) ([]*types.Group, error) {
	return repo.store.ListGroup(ctx)
}

func (repo *repoImpl) CreateComplianceRule(ctx context.Context, rule *types.ComplianceRule) (*types.ComplianceRule, error) {
	created, err := repo.store.CreateComplianceRule(ctx, rule)
	if err != nil {
		return nil, errors.Wrap(err, "fail to create compliance rule")
	}
	return created, nil
}

func (repo *repoImpl) ListComplianceRule(ctx context.Context) ([]*types.ComplianceRule, error) {
	return repo.store.ListComplianceRule(ctx)
}

func (repo *repoImpl) IssuerSweeper() chan<- struct{} {
	ch := make(chan struct{})

	go func() {
		for range ch {
			ctx := context.Background()
			if linked, err := repo.SweepIssuers(ctx); err != nil {
				log.Errorf("issuer sweep failed: %v", err)
			} else {
				log.Debugf("issuer sweep: linked=%d", linked)
			}
		}
	}()

	return ch
}
