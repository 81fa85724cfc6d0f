package helper

import (
	"encoding/hex"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestSHA256Sum(t *testing.T) {
	tests := [...]struct {
		name string
		data []byte
		want string
	}{
		{"valid", []byte(`hello world`), `b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9`},
		{"empty", []byte{}, `e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, hex.EncodeToString(SHA256Sum(tt.data)))
		})
	}
}

func TestAtoiDef(t *testing.T) {
	require.Equal(t, 10, AtoiDef("10", 1))
	require.Equal(t, uint(1), AtoiDef("ten", uint(1)))
}

func TestParseBoolDef(t *testing.T) {
	require.True(t, ParseBoolDef("true", false))
	require.True(t, ParseBoolDef("yes?", true))
	require.False(t, ParseBoolDef("0", true))
}

func TestIsValidationError(t *testing.T) {
	type item struct {
		Name string `validate:"required"`
	}

	err := ValidateStruct(&item{})
	require.Error(t, err)
	require.True(t, IsValidationError(err))
	require.True(t, IsValidationError(errors.Wrap(err, "wrapped")))
	require.False(t, IsValidationError(errors.New("other")))
	require.NoError(t, ValidateStruct(&item{Name: "leaf"}))
}
