package gormx

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	type args struct {
		dburl string
	}
	tests := [...]struct {
		name    string
		args    args
		wantErr bool
	}{
		{`sqlite`, args{dburl: "sqlite://" + filepath.Join(dir, "test.db")}, false},
		{`sqlite3`, args{dburl: "sqlite3://" + filepath.Join(dir, "test3.db")}, false},
		{`unsupported scheme`, args{dburl: "oracle://localhost/db"}, true},
		{`invalid url`, args{dburl: "://"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := Open(tt.args.dburl)
			require.Truef(t, (err != nil) == tt.wantErr, `Open() failed: error = %v, wantErr = %v`, err, tt.wantErr)
			if tt.wantErr {
				return
			}

			require.NotEmpty(t, db)
			require.NoError(t, db.Exec("SELECT 1").Error)
		})
	}
}
