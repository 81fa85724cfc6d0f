package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"certhub/pkg/helper/gormx"
	"certhub/pkg/testutils"
)

func newFixture(t *testing.T, dbURL string) *fixture {
	db := testutils.Must1(gormx.Open(dbURL, &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix: "certhub_",
		},
	}))
	require.NoError(t, Migrate(db))

	content := &CertificateContent{Fingerprint: "00ff", Content: "AAAA"}
	require.NoError(t, db.Create(content).Error)

	return &fixture{
		DB:      db,
		content: content,
	}
}

type fixture struct {
	*gorm.DB
	content *CertificateContent
}

func (f *fixture) newCertificate(t *testing.T, fingerprint string) *Certificate {
	cert := &Certificate{
		CommonName:       "example.com",
		SerialNumber:     "01",
		NotBefore:        time.Now(),
		NotAfter:         time.Now().AddDate(1, 0, 0),
		KeyUsage:         gormx.Strings{"digitalSignature"},
		Status:           "active",
		ComplianceStatus: "na",
		Fingerprint:      fingerprint,
		ContentID:        f.content.ID,
	}
	require.NoError(t, f.Create(cert).Error)
	return cert
}

func TestCertificate(t *testing.T) {
	testutils.ForEachSQLDriver(t, func(t *testing.T, dbURL string, reset func()) {
		fixture := newFixture(t, dbURL)

		cert := fixture.newCertificate(t, "fp1")
		require.NotEmpty(t, cert.UUID)

		var got Certificate
		require.NoError(t, fixture.Preload("Content").First(&got, "uuid = ?", cert.UUID).Error)
		require.Equal(t, fixture.content.Fingerprint, got.Content.Fingerprint)
		require.Equal(t, gormx.Strings{"digitalSignature"}, got.KeyUsage)

		dup := &Certificate{SerialNumber: "02", Status: "active", ComplianceStatus: "na", Fingerprint: "fp1", ContentID: fixture.content.ID}
		require.ErrorIs(t, gormx.ConvertSQLError(fixture.Create(dup).Error), gormx.ErrUniqueConstraintFailed)
	})
}

func TestCertificateContentFingerprintUnique(t *testing.T) {
	testutils.ForEachSQLDriver(t, func(t *testing.T, dbURL string, reset func()) {
		fixture := newFixture(t, dbURL)

		err := fixture.Create(&CertificateContent{Fingerprint: fixture.content.Fingerprint, Content: "BBBB"}).Error
		require.ErrorIs(t, gormx.ConvertSQLError(err), gormx.ErrUniqueConstraintFailed)
	})
}

func TestLocationCascade(t *testing.T) {
	testutils.ForEachSQLDriver(t, func(t *testing.T, dbURL string, reset func()) {
		fixture := newFixture(t, dbURL)
		cert := fixture.newCertificate(t, "fp2")

		require.NoError(t, fixture.Create(&CertificateLocation{CertificateID: cert.ID, Location: "web-01"}).Error)

		err := fixture.Create(&CertificateLocation{CertificateID: 9999, Location: "web-02"}).Error
		require.ErrorIs(t, gormx.ConvertSQLError(err), gormx.ErrForeignKeyConstraintFailed)
	})
}

func TestPrincipalValidation(t *testing.T) {
	testutils.ForEachSQLDriver(t, func(t *testing.T, dbURL string, reset func()) {
		fixture := newFixture(t, dbURL)

		require.Error(t, fixture.Create(&Principal{Name: "admin", Kind: "operator"}).Error)
		require.NoError(t, fixture.Create(&Principal{Name: "admin", Kind: "admin", Enabled: true}).Error)
	})
}
