package testutils

import (
	"crypto/x509"
	"testing"

	"github.com/stretchr/testify/require"

	"certhub/pkg/helper/x509x"
)

// Cert generated test certificate
type Cert struct {
	Cert *x509.Certificate
	Key  x509x.PrivateKey
	DER  []byte
}

// PEM returns PEM encoded certificate
func (c *Cert) PEM() []byte { return x509x.EncodeCertificateToPEM(c.DER) }

// NewCert create certificate, self signed when issuer is nil
func NewCert(t *testing.T, req *x509x.CreateRequest, issuer *Cert) *Cert {
	var signer *x509.Certificate
	var signerKey x509x.PrivateKey
	if issuer != nil {
		signer, signerKey = issuer.Cert, issuer.Key
	}

	der, key, err := x509x.CreateCertificate(req, signer, signerKey)
	require.NoError(t, err)

	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	return &Cert{Cert: cert, Key: key, DER: der}
}

// PKI three level test pki
type PKI struct {
	Root         *Cert
	Intermediate *Cert
	Leaf         *Cert
}

// NewPKI create root, intermediate and leaf certificate.
// aiaBase, if not empty, is used to fill AIA CA issuers as {aiaBase}/root.crt and {aiaBase}/intermediate.crt
func NewPKI(t *testing.T, aiaBase string) *PKI {
	var rootAIA, intermediateAIA []string
	if aiaBase != "" {
		rootAIA = []string{aiaBase + "/root.crt"}
		intermediateAIA = []string{aiaBase + "/intermediate.crt"}
	}

	root := NewCert(t, &x509x.CreateRequest{CommonName: "Test Root CA", Organization: []string{"certhub"}, IsCA: true}, nil)
	intermediate := NewCert(t, &x509x.CreateRequest{
		CommonName:         "Test Intermediate CA",
		Organization:       []string{"certhub"},
		IsCA:               true,
		IssuingCertificate: rootAIA,
	}, root)
	leaf := NewCert(t, &x509x.CreateRequest{
		CommonName:         "leaf.example.com",
		Hosts:              []string{"leaf.example.com"},
		KeyUsage:           x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:        []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		IssuingCertificate: intermediateAIA,
	}, intermediate)

	return &PKI{Root: root, Intermediate: intermediate, Leaf: leaf}
}
