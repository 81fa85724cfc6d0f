package testutils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDBName(t *testing.T) {
	tests := [...]struct {
		name string
		want string
	}{
		{"TestSweepIssuers/sqlite", "testsweepissuers_sqlite"},
		{"TestEvaluate/not applicable/pgsql", "testevaluate_not_applicable_pgsql"},
		{"TestSelection/issuer-dn#01/mysql", "testselection_issuer_dn_01_mysql"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, DBName(tt.name))
		})
	}
}

func TestMust(t *testing.T) {
	require.Equal(t, 1, Must1(1, nil))
	require.Panics(t, func() { Must1(0, errors.New("failed")) })
	require.NotPanics(t, func() { Must(nil) })
}
