package bulk

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/whitekid/goxp/fx"

	"certhub/certmanager/search"
	"certhub/certmanager/store"
	"certhub/certmanager/types"
	"certhub/pkg/metrics"
	"certhub/pkg/testutils"
)

// memorySink records events in memory
type memorySink struct {
	mu     sync.Mutex
	calls  int
	events []*types.Event
}

func (s *memorySink) Record(events ...*types.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.events = append(s.events, events...)
}

type fixture struct {
	store        store.Interface
	sink         *memorySink
	orchestrator *Orchestrator
}

func newFixture(t *testing.T, dburl string, batchSize int) *fixture {
	s := testutils.Must1(store.NewSQL(dburl))
	t.Cleanup(func() { s.Close() })

	sink := &memorySink{}
	return &fixture{
		store:        s,
		sink:         sink,
		orchestrator: New(s, search.NewCompiler(search.DefaultCatalog(), s), sink, batchSize),
	}
}

func newCertificate(ctx context.Context, t *testing.T, s store.Interface, n int, mutate func(cert *types.Certificate)) *types.Certificate {
	fingerprint := fmt.Sprintf("%064x", n)
	content := testutils.Must1(s.StoreContent(ctx, fingerprint, fmt.Sprintf("content-%d", n)))

	cert := &types.Certificate{
		CommonName:   fmt.Sprintf("cert-%d.example.com", n),
		SubjectDN:    fmt.Sprintf("CN=cert-%d.example.com", n),
		IssuerDN:     "CN=Test CA",
		SerialNumber: fmt.Sprintf("%x", 0x100+n),
		NotBefore:    time.Now().Add(-time.Hour).UTC(),
		NotAfter:     time.Now().AddDate(1, 0, 0).UTC(),
		Status:       types.StatusActive,
		Fingerprint:  fingerprint,
		ContentID:    content.ID,
	}
	if mutate != nil {
		mutate(cert)
	}

	return testutils.Must1(s.CreateCertificate(ctx, cert))
}

func strPtr(s string) *string { return &s }

func TestRequestValidation(t *testing.T) {
	tests := [...]struct {
		name string
		req  *UpdateRequest
	}{
		{"neither", &UpdateRequest{Owner: strPtr("alice")}},
		{"both", &UpdateRequest{Selector: Selector{IDs: []string{"a"}, Filters: []*types.Filter{}}, Owner: strPtr("alice")}},
		{"nothing to update", &UpdateRequest{Selector: Selector{IDs: []string{"a"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "sqlite://"+t.TempDir()+"/bulk.db", 0)

			_, err := f.orchestrator.Update(context.Background(), tt.req)
			require.ErrorIs(t, err, types.ErrValidation)

			_, err = f.orchestrator.Delete(context.Background(), &DeleteRequest{Selector: tt.req.Selector})
			if tt.name != "nothing to update" {
				require.ErrorIs(t, err, types.ErrValidation)
			}
		})
	}
}

func TestUpdateByIDs(t *testing.T) {
	testutils.ForEachSQLDriver(t, func(t *testing.T, dburl string, reset func()) {
		ctx := context.Background()
		f := newFixture(t, dburl, 2)

		web := testutils.Must1(f.store.CreateRAProfile(ctx, &types.RAProfile{Name: "web", Enabled: true}, nil))
		certs := []*types.Certificate{
			newCertificate(ctx, t, f.store, 1, nil),
			newCertificate(ctx, t, f.store, 2, nil),
			newCertificate(ctx, t, f.store, 3, nil),
		}
		ids := append(fx.Map(certs, func(c *types.Certificate) string { return c.UUID }), "missing")

		before := testutil.ToFloat64(metrics.BulkBatches.WithLabelValues("update"))
		outcomes, err := f.orchestrator.Update(ctx, &UpdateRequest{Selector: Selector{IDs: ids}, RAProfileID: &web.UUID})
		require.NoError(t, err)
		require.Equal(t, before+2, testutil.ToFloat64(metrics.BulkBatches.WithLabelValues("update")))

		require.Len(t, outcomes, 4)
		failed := fx.Filter(outcomes, func(o types.Outcome) bool { return !o.Success })
		require.Len(t, failed, 1)
		require.Equal(t, "missing", failed[0].ID)

		for _, cert := range certs {
			got, err := f.store.GetCertificate(ctx, cert.UUID)
			require.NoError(t, err)
			require.Equal(t, "web", got.RAProfile.Name)
		}

		require.Equal(t, 1, f.sink.calls, "events are recorded once")
		require.Len(t, f.sink.events, 3)
		for _, e := range f.sink.events {
			require.Equal(t, types.EventUpdateRAProfile, e.Event)
			require.Equal(t, "undefined -> web", e.Message)
		}

		// clear
		outcomes, err = f.orchestrator.Update(ctx, &UpdateRequest{Selector: Selector{IDs: ids[:1]}, RAProfileID: strPtr("")})
		require.NoError(t, err)
		require.True(t, outcomes[0].Success)
		require.Equal(t, "web -> undefined", f.sink.events[3].Message)

		got, err := f.store.GetCertificate(ctx, certs[0].UUID)
		require.NoError(t, err)
		require.Nil(t, got.RAProfile)
	})
}

func TestUpdateTargetNotFound(t *testing.T) {
	testutils.ForEachSQLDriver(t, func(t *testing.T, dburl string, reset func()) {
		ctx := context.Background()
		f := newFixture(t, dburl, 0)
		cert := newCertificate(ctx, t, f.store, 1, nil)

		_, err := f.orchestrator.Update(ctx, &UpdateRequest{Selector: Selector{IDs: []string{cert.UUID}}, GroupID: strPtr("missing")})
		require.ErrorIs(t, err, types.ErrNotFound)

		_, err = f.orchestrator.Update(ctx, &UpdateRequest{Selector: Selector{Filters: []*types.Filter{}}, RAProfileID: strPtr("missing")})
		require.ErrorIs(t, err, types.ErrNotFound)
		require.Empty(t, f.sink.events)
	})
}

func TestUpdateByFilter(t *testing.T) {
	testutils.ForEachSQLDriver(t, func(t *testing.T, dburl string, reset func()) {
		ctx := context.Background()
		f := newFixture(t, dburl, 2)

		ops := testutils.Must1(f.store.CreateGroup(ctx, &types.Group{Name: "ops"}))
		for i := 0; i < 5; i++ {
			newCertificate(ctx, t, f.store, i, func(c *types.Certificate) {
				c.Status = fx.Ternary(i%2 == 0, types.StatusActive, types.StatusRevoked)
			})
		}

		filters := []*types.Filter{{Field: "status", Condition: types.OpEquals, Value: "active"}}
		outcomes, err := f.orchestrator.Update(ctx, &UpdateRequest{
			Selector: Selector{Filters: filters},
			GroupID:  &ops.UUID,
			Owner:    strPtr("alice"),
		})
		require.NoError(t, err)
		require.Len(t, outcomes, 3)
		require.Len(t, f.sink.events, 3, "one event for each certificate")
		for _, e := range f.sink.events {
			require.Equal(t, types.EventUpdate, e.Event)
			require.Equal(t, "group: undefined -> ops; owner: undefined -> alice", e.Message)
		}

		selection, err := search.NewCompiler(search.DefaultCatalog(), f.store).Compile([]*types.Filter{
			{Field: "group", Condition: types.OpEquals, Value: "ops"},
			{Field: "owner", Condition: types.OpEquals, Value: "alice"},
		})
		require.NoError(t, err)
		count, err := selection.Count(ctx)
		require.NoError(t, err)
		require.Equal(t, int64(3), count)

		_, err = f.orchestrator.Update(ctx, &UpdateRequest{
			Selector: Selector{Filters: []*types.Filter{{Field: "unknownField", Condition: types.OpEquals, Value: "x"}}},
			Owner:    strPtr("bob"),
		})
		require.ErrorIs(t, err, types.ErrValidation)
	})
}

func TestDeletePrincipalGuard(t *testing.T) {
	testutils.ForEachSQLDriver(t, func(t *testing.T, dburl string, reset func()) {
		ctx := context.Background()
		f := newFixture(t, dburl, 0)

		bound := newCertificate(ctx, t, f.store, 1, nil)
		disabled := newCertificate(ctx, t, f.store, 2, nil)
		free := newCertificate(ctx, t, f.store, 3, nil)

		_, err := f.store.CreatePrincipal(ctx, &types.Principal{Name: "admin", Kind: types.PrincipalAdmin, CertificateID: &bound.ID, Enabled: true})
		require.NoError(t, err)
		_, err = f.store.CreatePrincipal(ctx, &types.Principal{Name: "client", Kind: types.PrincipalClient, CertificateID: &disabled.ID, Enabled: false})
		require.NoError(t, err)

		_, err = f.store.AddLocation(ctx, free.ID, "web-01")
		require.NoError(t, err)
		_, err = f.store.CreateDiscoveryCertificate(ctx, &types.DiscoveryCertificate{DiscoveryName: "scan", Fingerprint: free.Fingerprint})
		require.NoError(t, err)

		outcomes, err := f.orchestrator.Delete(ctx, &DeleteRequest{Selector: Selector{IDs: []string{bound.UUID, disabled.UUID, free.UUID}}})
		require.NoError(t, err)
		require.Len(t, outcomes, 3)

		require.False(t, outcomes[0].Success)
		require.True(t, outcomes[1].Success)
		require.True(t, outcomes[2].Success)

		_, err = f.store.GetCertificate(ctx, bound.UUID)
		require.NoError(t, err, "bound certificate is kept")

		_, err = f.store.GetCertificate(ctx, free.UUID)
		require.ErrorIs(t, err, types.ErrNotFound)

		_, err = f.store.GetContent(ctx, free.Fingerprint)
		require.NoError(t, err, "content referred by discovery is kept")

		_, err = f.store.GetContent(ctx, disabled.Fingerprint)
		require.ErrorIs(t, err, types.ErrNotFound)

		require.Len(t, f.sink.events, 3)
		require.Equal(t, types.EventFailed, f.sink.events[0].Status)
		require.Equal(t, types.EventDelete, f.sink.events[0].Event)
		require.Equal(t, types.EventSuccess, f.sink.events[1].Status)
	})
}

func TestDeleteByFilterInBatches(t *testing.T) {
	testutils.ForOneSQLDriver(t, "sqlite", func(t *testing.T, dburl string, reset func()) {
		ctx := context.Background()
		f := newFixture(t, dburl, 1000)

		const total = 2500
		for i := 0; i < total; i++ {
			newCertificate(ctx, t, f.store, i, func(c *types.Certificate) { c.Status = types.StatusExpired })
		}
		newCertificate(ctx, t, f.store, total, nil)

		before := testutil.ToFloat64(metrics.BulkBatches.WithLabelValues("delete"))
		outcomes, err := f.orchestrator.Delete(ctx, &DeleteRequest{Selector: Selector{
			Filters: []*types.Filter{{Field: "status", Condition: types.OpEquals, Value: "expired"}},
		}})
		require.NoError(t, err)

		require.Equal(t, before+3, testutil.ToFloat64(metrics.BulkBatches.WithLabelValues("delete")))
		require.Len(t, outcomes, total)
		require.Empty(t, fx.Filter(outcomes, func(o types.Outcome) bool { return !o.Success }))
		require.Equal(t, 1, f.sink.calls)
		require.Len(t, f.sink.events, total)

		remains, err := f.store.CountCertificate(ctx, store.CertificateListOpt{})
		require.NoError(t, err)
		require.Equal(t, int64(1), remains)
	})
}

func TestDuplicateIDs(t *testing.T) {
	testutils.ForEachSQLDriver(t, func(t *testing.T, dburl string, reset func()) {
		ctx := context.Background()
		f := newFixture(t, dburl, 0)

		cert := newCertificate(ctx, t, f.store, 1, nil)
		other := newCertificate(ctx, t, f.store, 2, nil)
		ids := []string{cert.UUID, other.UUID, cert.UUID}

		outcomes, err := f.orchestrator.Update(ctx, &UpdateRequest{Selector: Selector{IDs: ids}, Owner: strPtr("bob")})
		require.NoError(t, err)
		require.Equal(t, []string{cert.UUID, other.UUID}, fx.Map(outcomes, func(o types.Outcome) string { return o.ID }))
		require.Len(t, f.sink.events, 2)
		require.Equal(t, types.EventUpdateOwner, f.sink.events[0].Event)
		require.Equal(t, "undefined -> bob", f.sink.events[0].Message)

		outcomes, err = f.orchestrator.Delete(ctx, &DeleteRequest{Selector: Selector{IDs: ids}})
		require.NoError(t, err)
		require.Len(t, outcomes, 2)
		require.Empty(t, fx.Filter(outcomes, func(o types.Outcome) bool { return !o.Success }))
	})
}
