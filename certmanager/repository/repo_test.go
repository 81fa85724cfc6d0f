package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/whitekid/goxp/fx"

	"certhub/certmanager/bulk"
	"certhub/certmanager/chain"
	"certhub/certmanager/compliance"
	"certhub/certmanager/parser"
	"certhub/certmanager/store"
	"certhub/certmanager/types"
	"certhub/pkg/testutils"
	"certhub/pkg/worker"
)

func newTestRepo(ctx context.Context, t *testing.T, dburl string, pool worker.Interface) (Interface, store.Interface) {
	s := testutils.Must1(store.NewSQL(dburl))
	t.Cleanup(func() { s.Close() })

	repo := New(s, pool, compliance.NewHTTPConnector("", time.Second), chain.NewFetcher(time.Second, 10, time.Minute))
	return repo, s
}

func serialOf(t *testing.T, c *testutils.Cert) string {
	parsed, err := parser.Parse(c.DER)
	require.NoError(t, err)
	return parsed.Record.SerialNumber
}

func eventTypes(events []*types.Event) []types.EventType {
	return fx.Map(events, func(e *types.Event) types.EventType { return e.Event })
}

func TestIngestDownloadsChain(t *testing.T) {
	testutils.ForEachSQLDriver(t, func(t *testing.T, dburl string, reset func()) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		server := testutils.NewAIAServer(ctx)
		pki := testutils.NewPKI(t, server.URL)
		server.Put("/intermediate.crt", pki.Intermediate.DER)
		server.Put("/root.crt", pki.Root.DER)

		pool := worker.New(ctx, 2, 10)
		defer pool.Close()

		repo, s := newTestRepo(ctx, t, dburl, pool)

		leaf, created, err := repo.Ingest(ctx, pki.Leaf.PEM())
		require.NoError(t, err)
		require.True(t, created)
		pool.Wait()

		count, err := s.CountCertificate(ctx, store.CertificateListOpt{})
		require.NoError(t, err)
		require.Equal(t, int64(3), count)

		leaf, err = repo.Get(ctx, leaf.UUID)
		require.NoError(t, err)
		require.NotNil(t, leaf.IssuerSerialNumber)
		require.Equal(t, serialOf(t, pki.Intermediate), *leaf.IssuerSerialNumber)

		intermediates, err := s.ListCertificate(ctx, store.CertificateListOpt{SerialNumber: serialOf(t, pki.Intermediate)})
		require.NoError(t, err)
		require.Len(t, intermediates, 1)
		require.NotNil(t, intermediates[0].IssuerSerialNumber)
		require.Equal(t, serialOf(t, pki.Root), *intermediates[0].IssuerSerialNumber)

		events, err := repo.History(ctx, leaf.UUID)
		require.NoError(t, err)
		require.ElementsMatch(t, []types.EventType{types.EventUpload, types.EventUpdateIssuer}, eventTypes(events))

		// same content is not stored again
		again, created, err := repo.Ingest(ctx, pki.Leaf.DER)
		require.NoError(t, err)
		require.False(t, created)
		require.Equal(t, leaf.UUID, again.UUID)
		pool.Wait()

		count, err = s.CountCertificate(ctx, store.CertificateListOpt{})
		require.NoError(t, err)
		require.Equal(t, int64(3), count)
	})
}

func TestSweepIssuers(t *testing.T) {
	testutils.ForEachSQLDriver(t, func(t *testing.T, dburl string, reset func()) {
		ctx := context.Background()
		repo, s := newTestRepo(ctx, t, dburl, nil)
		pki := testutils.NewPKI(t, "")

		// leaf arrives before its issuers
		for _, c := range []*testutils.Cert{pki.Leaf, pki.Root, pki.Intermediate} {
			_, created, err := repo.Ingest(ctx, c.DER)
			require.NoError(t, err)
			require.True(t, created)
		}

		unlinked, err := s.CountCertificate(ctx, store.CertificateListOpt{Unlinked: true})
		require.NoError(t, err)
		require.Equal(t, int64(1), unlinked, "intermediate is linked when ingested, leaf is not")

		linked, err := repo.SweepIssuers(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, linked)

		unlinked, err = s.CountCertificate(ctx, store.CertificateListOpt{Unlinked: true})
		require.NoError(t, err)
		require.Equal(t, int64(0), unlinked)
	})
}

func TestUpload(t *testing.T) {
	testutils.ForEachSQLDriver(t, func(t *testing.T, dburl string, reset func()) {
		ctx := context.Background()
		repo, _ := newTestRepo(ctx, t, dburl, nil)
		pki := testutils.NewPKI(t, "")

		cert, err := repo.Upload(ctx, pki.Root.PEM(), types.CertificateTypeX509, `{"source":"manual"}`)
		require.NoError(t, err)
		require.Equal(t, `{"source":"manual"}`, cert.Meta)

		_, err = repo.Upload(ctx, pki.Root.DER, "", "")
		require.ErrorIs(t, err, types.ErrAlreadyExists)

		_, err = repo.Upload(ctx, pki.Leaf.DER, "SSH", "")
		require.ErrorIs(t, err, types.ErrUnsupportedType)

		_, err = repo.Upload(ctx, []byte("not a certificate"), "", "")
		require.Error(t, err)
	})
}

func TestUpdate(t *testing.T) {
	testutils.ForEachSQLDriver(t, func(t *testing.T, dburl string, reset func()) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		pool := worker.New(ctx, 2, 10)
		defer pool.Close()

		repo, _ := newTestRepo(ctx, t, dburl, pool)
		pki := testutils.NewPKI(t, "")

		cert, _, err := repo.Ingest(ctx, pki.Root.DER)
		require.NoError(t, err)
		require.Equal(t, types.ComplianceNA, cert.ComplianceStatus)

		profile, err := repo.CreateRAProfile(ctx, &types.RAProfile{Name: "web", Enabled: true}, nil)
		require.NoError(t, err)
		group, err := repo.CreateGroup(ctx, &types.Group{Name: "ops"})
		require.NoError(t, err)

		updated, err := repo.UpdateRAProfile(ctx, cert.UUID, profile.UUID)
		require.NoError(t, err)
		require.Equal(t, "web", updated.RAProfile.Name)

		updated, err = repo.UpdateGroup(ctx, cert.UUID, group.UUID)
		require.NoError(t, err)
		require.Equal(t, "ops", updated.Group.Name)

		updated, err = repo.UpdateOwner(ctx, cert.UUID, "alice")
		require.NoError(t, err)
		require.Equal(t, "alice", *updated.Owner)

		empty := ""
		updated, err = repo.Update(ctx, cert.UUID, &UpdateRequest{GroupID: &empty, Owner: &empty})
		require.NoError(t, err)
		require.Nil(t, updated.Group)
		require.Nil(t, updated.Owner)
		require.Equal(t, "web", updated.RAProfile.Name)

		_, err = repo.UpdateOwner(ctx, "not-exists", "bob")
		require.ErrorIs(t, err, types.ErrNotFound)

		missing := "not-exists"
		_, err = repo.Update(ctx, cert.UUID, &UpdateRequest{RAProfileID: &missing})
		require.ErrorIs(t, err, types.ErrNotFound)

		pool.Wait()
		events, err := repo.History(ctx, cert.UUID)
		require.NoError(t, err)
		require.ElementsMatch(t, []types.EventType{
			types.EventUpload,
			types.EventUpdateRAProfile,
			types.EventUpdateGroup,
			types.EventUpdateOwner,
			types.EventUpdate,
			types.EventComplianceCheck,
		}, eventTypes(events))
	})
}

func TestRevokeAndDelete(t *testing.T) {
	testutils.ForEachSQLDriver(t, func(t *testing.T, dburl string, reset func()) {
		ctx := context.Background()
		repo, s := newTestRepo(ctx, t, dburl, nil)
		pki := testutils.NewPKI(t, "")

		cert, _, err := repo.Ingest(ctx, pki.Root.DER)
		require.NoError(t, err)

		revoked, err := repo.Revoke(ctx, cert.UUID)
		require.NoError(t, err)
		require.Equal(t, types.StatusRevoked, revoked.Status)

		_, err = repo.Revoke(ctx, cert.UUID)
		require.ErrorIs(t, err, types.ErrValidation)

		principalCert, _, err := repo.Ingest(ctx, pki.Intermediate.DER)
		require.NoError(t, err)
		_, err = s.CreatePrincipal(ctx, &types.Principal{Name: "admin", Kind: types.PrincipalAdmin, CertificateID: &principalCert.ID, Enabled: true})
		require.NoError(t, err)

		require.ErrorIs(t, repo.Delete(ctx, principalCert.UUID), types.ErrValidation)
		require.NoError(t, repo.Delete(ctx, cert.UUID))
		require.ErrorIs(t, repo.Delete(ctx, cert.UUID), types.ErrNotFound)

		_, err = repo.History(ctx, cert.UUID)
		require.ErrorIs(t, err, types.ErrNotFound)

		events, err := repo.History(ctx, principalCert.UUID)
		require.NoError(t, err)
		require.Contains(t, eventTypes(events), types.EventDelete)
	})
}

func TestBulkAsync(t *testing.T) {
	testutils.ForOneSQLDriver(t, "sqlite", func(t *testing.T, dburl string, reset func()) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		pool := worker.New(ctx, 2, 10)
		defer pool.Close()

		repo, s := newTestRepo(ctx, t, dburl, pool)
		pki := testutils.NewPKI(t, "")

		for _, c := range []*testutils.Cert{pki.Root, pki.Intermediate, pki.Leaf} {
			_, _, err := repo.Ingest(ctx, c.DER)
			require.NoError(t, err)
		}
		pool.Wait()

		require.ErrorIs(t, repo.BulkUpdateAsync(ctx, &bulk.UpdateRequest{}), types.ErrValidation)
		require.ErrorIs(t, repo.BulkDeleteAsync(ctx, &bulk.DeleteRequest{}), types.ErrValidation)

		owner := "alice"
		require.NoError(t, repo.BulkUpdateAsync(ctx, &bulk.UpdateRequest{
			Selector: bulk.Selector{Filters: []*types.Filter{}},
			Owner:    &owner,
		}))
		pool.Wait()

		page, err := repo.List(ctx, []*types.Filter{{Field: "owner", Condition: types.OpEquals, Value: "alice"}}, 1, 10)
		require.NoError(t, err)
		require.Equal(t, int64(3), page.TotalItems)

		require.NoError(t, repo.BulkDeleteAsync(ctx, &bulk.DeleteRequest{
			Selector: bulk.Selector{Filters: []*types.Filter{{Field: "commonName", Condition: types.OpEquals, Value: "leaf.example.com"}}},
		}))
		pool.Wait()

		count, err := s.CountCertificate(ctx, store.CertificateListOpt{})
		require.NoError(t, err)
		require.Equal(t, int64(2), count)
	})
}

func TestSearchableFields(t *testing.T) {
	testutils.ForEachSQLDriver(t, func(t *testing.T, dburl string, reset func()) {
		ctx := context.Background()
		repo, _ := newTestRepo(ctx, t, dburl, nil)
		pki := testutils.NewPKI(t, "")

		_, _, err := repo.Ingest(ctx, pki.Root.DER)
		require.NoError(t, err)
		_, err = repo.CreateRAProfile(ctx, &types.RAProfile{Name: "web", Enabled: true}, nil)
		require.NoError(t, err)

		fields, err := repo.SearchableFields(ctx)
		require.NoError(t, err)

		byName := map[string]types.SearchField{}
		fx.ForEach(fields, func(_ int, f types.SearchField) { byName[f.Field] = f })

		require.Equal(t, []string{"web"}, byName["raProfile"].Values)
		require.NotEmpty(t, byName["signatureAlgorithm"].Values)
		require.Contains(t, byName, "status")
	})
}

func TestPrincipalsAndLocations(t *testing.T) {
	testutils.ForEachSQLDriver(t, func(t *testing.T, dburl string, reset func()) {
		ctx := context.Background()
		repo, _ := newTestRepo(ctx, t, dburl, nil)
		pki := testutils.NewPKI(t, "")

		cert, _, err := repo.Ingest(ctx, pki.Leaf.DER)
		require.NoError(t, err)

		// locations
		_, err = repo.AddLocation(ctx, cert.UUID, "web-01")
		require.NoError(t, err)
		_, err = repo.AddLocation(ctx, cert.UUID, "web-02")
		require.NoError(t, err)
		_, err = repo.AddLocation(ctx, "missing", "web-01")
		require.ErrorIs(t, err, types.ErrNotFound)

		require.NoError(t, repo.RemoveLocation(ctx, cert.UUID, "web-02"))
		require.ErrorIs(t, repo.RemoveLocation(ctx, cert.UUID, "web-02"), types.ErrNotFound)

		locations, err := repo.ListLocations(ctx, cert.UUID)
		require.NoError(t, err)
		require.Equal(t, []string{"web-01"}, fx.Map(locations, func(l *types.CertificateLocation) string { return l.Location }))

		// principals
		_, err = repo.CreatePrincipal(ctx, &types.Principal{Name: "admin", Kind: types.PrincipalAdmin, Enabled: true}, "missing")
		require.ErrorIs(t, err, types.ErrNotFound)

		principal, err := repo.CreatePrincipal(ctx, &types.Principal{Name: "admin", Kind: types.PrincipalAdmin, Enabled: true}, cert.UUID)
		require.NoError(t, err)
		require.Equal(t, cert.UUID, principal.CertificateUUID)

		require.ErrorIs(t, repo.Delete(ctx, cert.UUID), types.ErrValidation, "bound to enabled principal")

		empty := ""
		principal, err = repo.UpdatePrincipal(ctx, principal.UUID, &PrincipalUpdateRequest{CertificateUUID: &empty})
		require.NoError(t, err)
		require.Empty(t, principal.CertificateUUID)

		_, err = repo.UpdatePrincipal(ctx, "missing", &PrincipalUpdateRequest{CertificateUUID: &empty})
		require.ErrorIs(t, err, types.ErrNotFound)

		principals, err := repo.ListPrincipals(ctx)
		require.NoError(t, err)
		require.Len(t, principals, 1)

		require.NoError(t, repo.Delete(ctx, cert.UUID))
	})
}
