package compliance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"certhub/certmanager/history"
	"certhub/certmanager/parser"
	"certhub/certmanager/store"
	"certhub/certmanager/types"
	"certhub/pkg/testutils"
)

// newConnectorServer returns compliance provider which answers rule status by verdicts
func newConnectorServer(t *testing.T, verdicts map[string]RuleStatus) *httptest.Server {
	e := echo.New()
	e.POST("/v1/complianceProvider/:kind/compliance", func(c echo.Context) error {
		var req Request
		if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if !strings.HasPrefix(req.Certificate, "-----BEGIN CERTIFICATE-----") {
			return echo.NewHTTPError(http.StatusBadRequest, "certificate should be PEM")
		}

		resp := &Response{Status: RuleOK}
		for _, r := range req.Rules {
			status, ok := verdicts[r.UUID]
			if !ok {
				status = RuleOK
			}
			resp.Rules = append(resp.Rules, &ResponseRule{UUID: r.UUID, Name: r.Name, Status: status})
		}
		resp.Rules = append(resp.Rules, &ResponseRule{UUID: "unknown-rule", Status: RuleNotOK})

		return c.JSON(http.StatusOK, resp)
	})

	server := httptest.NewServer(e)
	t.Cleanup(server.Close)
	return server
}

type fixture struct {
	store   store.Interface
	rules   map[string]*types.ComplianceRule
	profile *types.RAProfile
	cert    *types.Certificate
}

func newFixture(ctx context.Context, t *testing.T, dburl string) *fixture {
	s := testutils.Must1(store.NewSQL(dburl))
	t.Cleanup(func() { s.Close() })

	rules := map[string]*types.ComplianceRule{}
	for _, id := range []string{"rule-key-size", "rule-validity", "rule-san"} {
		rules[id] = testutils.Must1(s.CreateComplianceRule(ctx, &types.ComplianceRule{ConnectorRuleID: id, Name: id, Kind: "x509"}))
	}

	profile := testutils.Must1(s.CreateRAProfile(ctx, &types.RAProfile{Name: "web", Enabled: true, ComplianceKind: "x509"},
		[]string{rules["rule-key-size"].UUID, rules["rule-validity"].UUID, rules["rule-san"].UUID}))

	pki := testutils.NewPKI(t, "")
	parsed := testutils.Must1(parser.Parse(pki.Leaf.DER))
	content := testutils.Must1(s.StoreContent(ctx, parsed.Fingerprint, parsed.Content))
	record := parsed.Record
	record.ContentID = content.ID
	record.RAProfile = profile
	cert := testutils.Must1(s.CreateCertificate(ctx, record))

	return &fixture{store: s, rules: rules, profile: profile, cert: cert}
}

func TestEvaluate(t *testing.T) {
	type args struct {
		verdicts    map[string]RuleStatus
		withProfile bool
	}
	tests := [...]struct {
		name       string
		args       args
		wantStatus types.ComplianceStatus
		wantNotOK  []string
		wantNA     []string
	}{
		{"all ok", args{map[string]RuleStatus{}, true}, types.ComplianceOK, nil, nil},
		{"not ok", args{map[string]RuleStatus{"rule-key-size": RuleNotOK}, true}, types.ComplianceNOK, []string{"rule-key-size"}, nil},
		{"not applicable", args{map[string]RuleStatus{"rule-san": RuleNotApplicable}, true}, types.ComplianceOK, nil, []string{"rule-san"}},
		{"mixed", args{map[string]RuleStatus{"rule-validity": RuleNotOK, "rule-san": RuleNotApplicable}, true}, types.ComplianceNOK, []string{"rule-validity"}, []string{"rule-san"}},
		{"no profile", args{map[string]RuleStatus{}, false}, types.ComplianceNA, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutils.ForEachSQLDriver(t, func(t *testing.T, dburl string, reset func()) {
				ctx := context.Background()
				f := newFixture(ctx, t, dburl)

				server := newConnectorServer(t, tt.args.verdicts)
				evaluator := NewEvaluator(f.store, NewHTTPConnector(server.URL, time.Second), history.New(f.store, nil), 0)

				cert := f.cert
				if !tt.args.withProfile {
					cert.RAProfile = nil
				}

				result, err := evaluator.Evaluate(ctx, cert)
				require.NoError(t, err)
				require.Equal(t, tt.wantStatus, cert.ComplianceStatus)

				got, err := f.store.GetCertificate(ctx, cert.UUID)
				require.NoError(t, err)
				require.Equal(t, tt.wantStatus, got.ComplianceStatus)

				if tt.wantStatus == types.ComplianceNA {
					require.Nil(t, result)
					require.Nil(t, got.ComplianceResult)
					return
				}

				require.NotNil(t, got.ComplianceResult)
				require.Equal(t, ruleUUIDs(f, tt.wantNotOK), got.ComplianceResult.NotOK)
				require.Equal(t, ruleUUIDs(f, tt.wantNA), got.ComplianceResult.NotApplicable)
			})
		})
	}
}

func ruleUUIDs(f *fixture, ids []string) []string {
	if len(ids) == 0 {
		return nil
	}

	uuids := make([]string, 0, len(ids))
	for _, id := range ids {
		uuids = append(uuids, f.rules[id].UUID)
	}
	return uuids
}

func TestEvaluateUnreachableConnector(t *testing.T) {
	testutils.ForEachSQLDriver(t, func(t *testing.T, dburl string, reset func()) {
		ctx := context.Background()
		f := newFixture(ctx, t, dburl)

		okServer := newConnectorServer(t, map[string]RuleStatus{"rule-key-size": RuleNotOK})
		sink := history.New(f.store, nil)
		_, err := NewEvaluator(f.store, NewHTTPConnector(okServer.URL, time.Second), sink, 0).Evaluate(ctx, f.cert)
		require.NoError(t, err)

		evaluator := NewEvaluator(f.store, NewHTTPConnector("http://127.0.0.1:1", time.Second), sink, 0)
		outcomes := evaluator.EvaluateAll(ctx, []string{f.cert.UUID, "missing"})
		require.Len(t, outcomes, 2)
		require.False(t, outcomes[0].Success)
		require.Contains(t, outcomes[0].Error, types.ErrConnector.Error())
		require.False(t, outcomes[1].Success)

		got, err := f.store.GetCertificate(ctx, f.cert.UUID)
		require.NoError(t, err)
		require.Equal(t, types.ComplianceNOK, got.ComplianceStatus, "prior status unchanged")

		events, err := f.store.ListEvents(ctx, f.cert.UUID)
		require.NoError(t, err)
		require.Len(t, events, 2)
		require.Equal(t, types.EventFailed, events[1].Status)
	})
}

func TestEvaluateProfile(t *testing.T) {
	testutils.ForEachSQLDriver(t, func(t *testing.T, dburl string, reset func()) {
		ctx := context.Background()
		f := newFixture(ctx, t, dburl)

		server := newConnectorServer(t, map[string]RuleStatus{})
		evaluator := NewEvaluator(f.store, NewHTTPConnector(server.URL, time.Second), history.New(f.store, nil), 1)

		evaluated, err := evaluator.EvaluateProfile(ctx, f.profile.UUID)
		require.NoError(t, err)
		require.Equal(t, 1, evaluated)

		got, err := f.store.GetCertificate(ctx, f.cert.UUID)
		require.NoError(t, err)
		require.Equal(t, types.ComplianceOK, got.ComplianceStatus)

		_, err = evaluator.EvaluateProfile(ctx, "missing")
		require.ErrorIs(t, err, types.ErrNotFound)
	})
}
