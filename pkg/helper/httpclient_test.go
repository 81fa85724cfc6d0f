package helper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadFileOrURL(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	name := filepath.Join(t.TempDir(), "hello.txt")
	require.NoError(t, os.WriteFile(name, []byte("hello world"), 0644))

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/hello" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("hello world"))
	}))
	defer ts.Close()

	type args struct {
		url string
	}
	tests := [...]struct {
		name    string
		args    args
		wantErr bool
		want    []byte
	}{
		{`valid: file`, args{"file://" + name}, false, []byte("hello world")},
		{`valid: plain file`, args{name}, false, []byte("hello world")},
		{`valid: url`, args{ts.URL + "/hello"}, false, []byte("hello world")},
		{`invalid: not found`, args{ts.URL + "/not-found"}, true, nil},
		{`invalid: scheme`, args{"ftp://example.com/hello"}, true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadFileOrURL(ctx, tt.args.url)
			require.Truef(t, (err != nil) == tt.wantErr, `ReadFileOrURL() failed: error = %v, wantErr = %v`, err, tt.wantErr)
			if tt.wantErr {
				return
			}

			require.EqualValues(t, tt.want, got)
		})
	}
}
