// Package parser normalizes certificate bytes and extracts record fields
package parser

import (
	"bytes"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/whitekid/goxp/fx"

	"certhub/certmanager/types"
	"certhub/pkg/helper"
	"certhub/pkg/helper/x509x"
)

var whitespaceRemover = strings.NewReplacer("\r", "", "\n", "", " ", "", "\t", "")

// Normalize decode PEM, bare base64 or DER bytes and returns DER bytes
func Normalize(raw []byte) ([]byte, error) {
	// DER starts with SEQUENCE tag
	if len(raw) > 0 && raw[0] == 0x30 {
		return raw, nil
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.Wrap(types.ErrParse, "empty content")
	}

	if x509x.IsPEM(trimmed) {
		if p, _ := pem.Decode(trimmed); p != nil {
			return p.Bytes, nil
		}

		// malformed framing; strip header and footer manually
		body := string(trimmed)
		body = strings.ReplaceAll(body, "-----BEGIN CERTIFICATE-----", "")
		body = strings.ReplaceAll(body, "-----END CERTIFICATE-----", "")
		return decodeBase64(body)
	}

	return decodeBase64(string(trimmed))
}

func decodeBase64(s string) ([]byte, error) {
	der, err := base64.StdEncoding.DecodeString(whitespaceRemover.Replace(s))
	if err != nil {
		return nil, errors.Wrapf(types.ErrParse, "invalid base64: %s", err)
	}
	return der, nil
}

// Fingerprint lower case hex sha256 of DER bytes
func Fingerprint(der []byte) string { return hex.EncodeToString(helper.SHA256Sum(der)) }

// Parse parse X.509 certificate
func Parse(raw []byte) (*types.ParsedCertificate, error) {
	return ParseTyped(raw, types.CertificateTypeX509)
}

// ParseTyped parse certificate of given type. empty type means X.509
func ParseTyped(raw []byte, certType types.CertificateType) (*types.ParsedCertificate, error) {
	if certType != "" && certType != types.CertificateTypeX509 {
		return nil, errors.Wrapf(types.ErrUnsupportedType, "%s", certType)
	}

	der, err := Normalize(raw)
	if err != nil {
		return nil, err
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, errors.Wrapf(types.ErrParse, "%s", err)
	}

	fingerprint := Fingerprint(der)

	return &types.ParsedCertificate{
		Cert:        cert,
		DER:         der,
		Content:     base64.StdEncoding.EncodeToString(der),
		Fingerprint: fingerprint,
		Record:      newRecord(cert, fingerprint),
		IssuingURLs: fx.Filter(cert.IssuingCertificateURL, func(u string) bool { return strings.TrimSpace(u) != "" }),
	}, nil
}

func newRecord(cert *x509.Certificate, fingerprint string) *types.Certificate {
	return &types.Certificate{
		CommonName:              cert.Subject.CommonName,
		SubjectDN:               cert.Subject.String(),
		IssuerDN:                cert.Issuer.String(),
		IssuerCommonName:        cert.Issuer.CommonName,
		SerialNumber:            x509x.SerialToHex(cert.SerialNumber),
		NotBefore:               cert.NotBefore.UTC(),
		NotAfter:                cert.NotAfter.UTC(),
		KeySize:                 x509x.KeySize(cert.PublicKey),
		PublicKeyAlgorithm:      cert.PublicKeyAlgorithm.String(),
		SignatureAlgorithm:      cert.SignatureAlgorithm.String(),
		KeyUsage:                x509x.KeyUsageToStr(cert.KeyUsage),
		ExtendedKeyUsage:        x509x.ExtKeyUsageToStr(cert),
		SubjectAlternativeNames: x509x.SubjectAlternativeNames(cert),
		BasicConstraints:        x509x.BasicConstraints(cert),
		Status:                  Status(cert, time.Now()),
		ComplianceStatus:        types.ComplianceNA,
		Fingerprint:             fingerprint,
	}
}

// Status validity status at now
func Status(cert *x509.Certificate, now time.Time) types.CertificateStatus {
	switch {
	case now.After(cert.NotAfter):
		return types.StatusExpired
	case now.Before(cert.NotBefore):
		return types.StatusUnknown
	default:
		return types.StatusActive
	}
}

// Decode returns x509 certificate from stored content
func Decode(content string) (*x509.Certificate, error) {
	der, err := decodeBase64(content)
	if err != nil {
		return nil, err
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, errors.Wrapf(types.ErrParse, "%s", err)
	}
	return cert, nil
}

// EncodePEM returns PEM of stored content
func EncodePEM(content string) ([]byte, error) {
	der, err := decodeBase64(content)
	if err != nil {
		return nil, err
	}
	return x509x.EncodeCertificateToPEM(der), nil
}
