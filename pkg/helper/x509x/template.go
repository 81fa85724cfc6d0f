package x509x

import (
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"github.com/whitekid/goxp/fx"
)

// CreateRequest certificate create request
type CreateRequest struct {
	SerialNumber       *big.Int
	CommonName         string
	Organization       []string
	Hosts              []string // DNSNames, IPAddress, Email
	KeyAlgorithm       x509.SignatureAlgorithm
	IsCA               bool
	KeyUsage           x509.KeyUsage
	ExtKeyUsage        []x509.ExtKeyUsage
	IssuingCertificate []string // AIA CA issuers
	NotBefore          time.Time
	NotAfter           time.Time
}

// Template convert to x509 certificate template
func (req *CreateRequest) Template() (*x509.Certificate, error) {
	if req.CommonName == "" {
		return nil, errors.New("common name required")
	}

	notBefore := fx.Ternary(req.NotBefore.IsZero(), time.Now().Add(-time.Minute), req.NotBefore)
	notAfter := fx.Ternary(req.NotAfter.IsZero(), notBefore.AddDate(1, 0, 0), req.NotAfter)

	template := &x509.Certificate{
		SerialNumber: fx.Ternary(req.SerialNumber == nil, RandomSerial(), req.SerialNumber),
		Subject: pkix.Name{
			CommonName:   req.CommonName,
			Organization: req.Organization,
		},
		IsCA:                  req.IsCA,
		BasicConstraintsValid: true,
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              req.KeyUsage,
		ExtKeyUsage:           req.ExtKeyUsage,
		IssuingCertificateURL: req.IssuingCertificate,
	}

	if req.IsCA && template.KeyUsage == 0 {
		template.KeyUsage = x509.KeyUsageCertSign | x509.KeyUsageCRLSign | x509.KeyUsageDigitalSignature
	}

	for _, host := range req.Hosts {
		if ip := net.ParseIP(host); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		} else if email, err := mail.ParseAddress(host); err == nil {
			template.EmailAddresses = append(template.EmailAddresses, email.Address)
		} else {
			template.DNSNames = append(template.DNSNames, host)
		}
	}

	return template, nil
}

// CreateCertificate create certificate signed by signer and returns DER encoded certificate and its private key
// signer: if nil, create self signed certificate
func CreateCertificate(req *CreateRequest, signer *x509.Certificate, signerKey PrivateKey) ([]byte, PrivateKey, error) {
	algorithm := fx.Ternary(req.KeyAlgorithm == x509.UnknownSignatureAlgorithm, x509.ECDSAWithSHA256, req.KeyAlgorithm)
	privateKey, err := GenerateKey(algorithm)
	if err != nil {
		return nil, nil, errors.Wrap(err, "fail to create certificate")
	}

	template, err := req.Template()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "fail to create template")
	}

	if signer == nil {
		signer = template
		signerKey = privateKey
	}

	derBytes, err := x509.CreateCertificate(randReader, template, signer, privateKey.Public(), signerKey)
	if err != nil {
		return nil, nil, errors.Wrap(err, "fail to create certificate")
	}

	return derBytes, privateKey, nil
}
