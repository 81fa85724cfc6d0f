package helper

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	type item struct {
		Name    string `json:"name" yaml:"name"`
		Created bool   `json:"created" yaml:"created"`
	}

	tests := [...]struct {
		name    string
		format  Format
		want    string
		wantErr bool
	}{
		{"default", "", "- name: leaf\n  created: true\n", false},
		{"yaml", FormatYAML, "- name: leaf\n  created: true\n", false},
		{"json", FormatJSON, "[\n  {\n    \"name\": \"leaf\",\n    \"created\": true\n  }\n]\n", false},
		{"unknown", Format("xml"), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := Write(&buf, tt.format, []item{{Name: "leaf", Created: true}})
			require.Truef(t, (err != nil) == tt.wantErr, `Write() failed: error = %+v, wantErr = %v`, err, tt.wantErr)
			require.Equal(t, tt.want, buf.String())
		})
	}
}
