package chain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"certhub/certmanager/history"
	"certhub/certmanager/parser"
	"certhub/certmanager/store"
	"certhub/certmanager/types"
	"certhub/pkg/helper/x509x"
	"certhub/pkg/testutils"
)

func newStore(t *testing.T, dburl string) store.Interface {
	s := testutils.Must1(store.NewSQL(dburl))
	t.Cleanup(func() { s.Close() })
	return s
}

func ingest(ctx context.Context, t *testing.T, s store.Interface, raw []byte) *types.Certificate {
	parsed, err := parser.Parse(raw)
	require.NoError(t, err)

	content, err := s.StoreContent(ctx, parsed.Fingerprint, parsed.Content)
	require.NoError(t, err)

	record := parsed.Record
	record.ContentID = content.ID
	cert, err := s.CreateCertificate(ctx, record)
	require.NoError(t, err)
	return cert
}

func TestFetchChain(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := testutils.NewAIAServer(ctx)
	pki := testutils.NewPKI(t, server.URL)
	server.Put("/intermediate.crt", pki.Intermediate.DER)
	server.Put("/root.crt", pki.Root.PEM())

	fetcher := NewFetcher(time.Second, 10, time.Minute)
	chain, err := fetcher.FetchChain(ctx, pki.Leaf.Cert)
	require.NoError(t, err)
	require.Equal(t, [][]byte{pki.Intermediate.DER, pki.Root.DER}, chain)
	require.Equal(t, 2, server.Hits())

	// second walk is served from cache
	_, err = fetcher.FetchChain(ctx, pki.Leaf.Cert)
	require.NoError(t, err)
	require.Equal(t, 2, server.Hits())
}

func TestFetchChainStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := testutils.NewAIAServer(ctx)

	// a -> b -> a
	a := testutils.NewCert(t, &x509x.CreateRequest{CommonName: "A", IsCA: true, IssuingCertificate: []string{server.URL + "/b.crt"}}, nil)
	b := testutils.NewCert(t, &x509x.CreateRequest{CommonName: "B", IsCA: true, IssuingCertificate: []string{server.URL + "/a.crt"}}, nil)
	c := testutils.NewCert(t, &x509x.CreateRequest{CommonName: "C", IssuingCertificate: []string{server.URL + "/a.crt"}}, a)
	server.Put("/a.crt", a.DER)
	server.Put("/b.crt", b.DER)

	type args struct {
		cert     *testutils.Cert
		maxDepth int
	}
	tests := [...]struct {
		name      string
		args      args
		wantChain [][]byte
		wantErr   bool
	}{
		{"cycle", args{c, 10}, [][]byte{a.DER, b.DER}, false},
		{"max depth", args{c, 1}, [][]byte{a.DER}, false},
		{"zero depth uses default", args{c, 0}, [][]byte{a.DER, b.DER}, false},
		{"no aia", args{testutils.NewCert(t, &x509x.CreateRequest{CommonName: "D"}, nil), 10}, [][]byte{}, false},
		{"not found", args{testutils.NewCert(t, &x509x.CreateRequest{CommonName: "E", IssuingCertificate: []string{server.URL + "/missing.crt"}}, nil), 10}, [][]byte{}, true},
		{"unreachable", args{testutils.NewCert(t, &x509x.CreateRequest{CommonName: "F", IssuingCertificate: []string{"http://127.0.0.1:1/f.crt"}}, nil), 10}, [][]byte{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain, err := NewFetcher(time.Second, tt.args.maxDepth, 0).FetchChain(ctx, tt.args.cert.Cert)
			require.Truef(t, (err != nil) == tt.wantErr, `FetchChain() failed: error = %+v, wantErr = %v`, err, tt.wantErr)
			if tt.wantErr {
				require.ErrorIs(t, err, types.ErrChainFetch)
			}
			require.Equal(t, tt.wantChain, chain)
		})
	}
}

func TestNewFetcherLimits(t *testing.T) {
	tests := [...]struct {
		name        string
		timeout     time.Duration
		maxDepth    int
		wantTimeout time.Duration
		wantDepth   int
	}{
		{"within limits", 500 * time.Millisecond, 3, 500 * time.Millisecond, 3},
		{"timeout capped", 5 * time.Second, 3, time.Second, 3},
		{"zero timeout", 0, 3, time.Second, 3},
		{"zero depth", time.Second, 0, time.Second, 10},
		{"negative depth", time.Second, -1, time.Second, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFetcher(tt.timeout, tt.maxDepth, 0)
			require.Equal(t, tt.wantTimeout, f.timeout)
			require.Equal(t, tt.wantDepth, f.maxDepth)
		})
	}
}

func TestResolveAllUnlinked(t *testing.T) {
	testutils.ForEachSQLDriver(t, func(t *testing.T, dburl string, reset func()) {
		ctx := context.Background()
		s := newStore(t, dburl)
		resolver := NewResolver(s, history.New(s, nil), 2)

		pki := testutils.NewPKI(t, "")

		// same subject dn with the intermediate but signed by other root; enumerated first
		otherRoot := testutils.NewCert(t, &x509x.CreateRequest{CommonName: "Other Root CA", IsCA: true}, nil)
		impostor := testutils.NewCert(t, &x509x.CreateRequest{CommonName: "Test Intermediate CA", Organization: []string{"certhub"}, IsCA: true}, otherRoot)
		ingest(ctx, t, s, impostor.DER)

		leaf := ingest(ctx, t, s, pki.Leaf.PEM())

		linked, err := resolver.ResolveAllUnlinked(ctx)
		require.NoError(t, err)
		require.Equal(t, 0, linked, "no verifying issuer yet")

		intermediate := ingest(ctx, t, s, pki.Intermediate.DER)
		root := ingest(ctx, t, s, pki.Root.DER)

		linked, err = resolver.ResolveAllUnlinked(ctx)
		require.NoError(t, err)
		require.Equal(t, 2, linked)

		got, err := s.GetCertificate(ctx, leaf.UUID)
		require.NoError(t, err)
		require.NotNil(t, got.IssuerSerialNumber)
		require.Equal(t, intermediate.SerialNumber, *got.IssuerSerialNumber)

		got, err = s.GetCertificate(ctx, intermediate.UUID)
		require.NoError(t, err)
		require.Equal(t, root.SerialNumber, *got.IssuerSerialNumber)

		got, err = s.GetCertificate(ctx, root.UUID)
		require.NoError(t, err)
		require.Nil(t, got.IssuerSerialNumber, "self signed is terminal")

		events, err := s.ListEvents(ctx, leaf.UUID)
		require.NoError(t, err)
		require.Len(t, events, 1)
		require.Equal(t, types.EventUpdateIssuer, events[0].Event)

		linked, err = resolver.ResolveAllUnlinked(ctx)
		require.NoError(t, err)
		require.Equal(t, 0, linked)
	})
}

func TestResolveIssuerLegacyRoot(t *testing.T) {
	testutils.ForOneSQLDriver(t, "sqlite", func(t *testing.T, dburl string, reset func()) {
		ctx := context.Background()
		s := newStore(t, dburl)
		resolver := NewResolver(s, history.New(s, nil), 0)

		legacy := testutils.NewCert(t, &x509x.CreateRequest{CommonName: "Legacy Root"}, nil)
		leaf := testutils.NewCert(t, &x509x.CreateRequest{CommonName: "legacy.example.com"}, legacy)

		root := ingest(ctx, t, s, legacy.DER)
		cert := ingest(ctx, t, s, leaf.DER)

		ok, err := resolver.ResolveIssuer(ctx, cert)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, root.SerialNumber, *cert.IssuerSerialNumber)
	})
}

func TestOrderCandidates(t *testing.T) {
	now := time.Now()
	subject := &types.Certificate{NotBefore: now}
	expired := &types.Certificate{ID: 1, NotBefore: now.AddDate(-2, 0, 0), NotAfter: now.AddDate(-1, 0, 0)}
	current := &types.Certificate{ID: 2, NotBefore: now.AddDate(-1, 0, 0), NotAfter: now.AddDate(1, 0, 0)}
	renewed := &types.Certificate{ID: 3, NotBefore: now.AddDate(0, 0, -1), NotAfter: now.AddDate(2, 0, 0)}

	got := orderCandidates([]*types.Certificate{expired, current, renewed}, subject)
	require.Equal(t, []uint{2, 3, 1}, []uint{got[0].ID, got[1].ID, got[2].ID})
}
