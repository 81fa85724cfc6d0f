package x509x

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/whitekid/goxp/fx"
)

const (
	CertificatePEMBlockType     = "CERTIFICATE"
	RsaPrivateKeyPEMBlockType   = "RSA PRIVATE KEY"
	EcdsaPrivateKeyPEMBlockType = "EC PRIVATE KEY"
	Pkcs8PrivateKeyPEMBlockType = "PRIVATE KEY"

	pemPrefix = "-----BEGIN "
)

var pemPrefixCertificate = []byte(pemPrefix + CertificatePEMBlockType)

var randReader = rand.Reader

// IsPEM returns true if data starts with certificate PEM header
func IsPEM(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimSpace(data), pemPrefixCertificate)
}

// ParseCertificate parse x509 certificate PEM block or DER bytes
func ParseCertificate(certBytes []byte) (*x509.Certificate, error) {
	if IsPEM(certBytes) {
		p, _ := pem.Decode(bytes.TrimSpace(certBytes))
		if p == nil {
			return nil, errors.New("invalid PEM")
		}

		certBytes = p.Bytes
	}

	return x509.ParseCertificate(certBytes)
}

// ParseCertificateChain parse concatenated PEM certificates
func ParseCertificateChain(pemBytes []byte) ([]*x509.Certificate, error) {
	certs := make([]*x509.Certificate, 0)
	for {
		p, rest := pem.Decode(pemBytes)
		if p == nil {
			return certs, nil
		}

		if p.Type != CertificatePEMBlockType {
			pemBytes = rest
			continue
		}

		cert, err := x509.ParseCertificate(p.Bytes)
		if err != nil {
			return nil, errors.Wrap(err, "certificate parse failed")
		}
		certs = append(certs, cert)
		pemBytes = rest
	}
}

// PublicKey  PrivateKey and Signer interfaces
type PrivateKey interface {
	crypto.PrivateKey
	crypto.Signer
}

// GenerateKey generate private and public key pair
func GenerateKey(algorithm x509.SignatureAlgorithm) (privateKey PrivateKey, err error) {
	switch algorithm {
	case x509.ECDSAWithSHA256:
		privateKey, err = ecdsa.GenerateKey(elliptic.P256(), randReader)
	case x509.ECDSAWithSHA384:
		privateKey, err = ecdsa.GenerateKey(elliptic.P384(), randReader)
	case x509.ECDSAWithSHA512:
		privateKey, err = ecdsa.GenerateKey(elliptic.P521(), randReader)
	case x509.PureEd25519:
		_, privateKey, err = ed25519.GenerateKey(randReader)
	case x509.SHA256WithRSA:
		privateKey, err = rsa.GenerateKey(randReader, 256*8)
	case x509.SHA384WithRSA:
		privateKey, err = rsa.GenerateKey(randReader, 384*8)
	case x509.SHA512WithRSA:
		privateKey, err = rsa.GenerateKey(randReader, 512*8)
	default:
		return nil, errors.Errorf("unknown algorithm: %s", algorithm)
	}

	if err != nil {
		return nil, err
	}

	return
}

func EncodeCertificateToPEM(derBytes []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{
		Type:    CertificatePEMBlockType,
		Headers: nil,
		Bytes:   derBytes,
	})
}

func EncodePrivateKeyToPEM(privateKey PrivateKey) ([]byte, error) {
	var pemType string
	var keyBytes []byte

	switch key := privateKey.(type) {
	case *rsa.PrivateKey:
		pemType = RsaPrivateKeyPEMBlockType
		keyBytes = x509.MarshalPKCS1PrivateKey(key)
	case *ecdsa.PrivateKey:
		pemType = EcdsaPrivateKeyPEMBlockType
		derBytes, err := x509.MarshalECPrivateKey(key)
		if err != nil {
			return nil, errors.Wrap(err, "fail to encode private key")
		}
		keyBytes = derBytes
	case ed25519.PrivateKey:
		pemType = Pkcs8PrivateKeyPEMBlockType
		derBytes, err := x509.MarshalPKCS8PrivateKey(key)
		if err != nil {
			return nil, errors.Wrap(err, "fail to encode private key")
		}
		keyBytes = derBytes
	default:
		return nil, errors.Errorf("unsupported private key: %T", privateKey)
	}

	return pem.EncodeToMemory(&pem.Block{
		Type:  pemType,
		Bytes: keyBytes,
	}), nil
}

var (
	keyUsageToStr = map[x509.KeyUsage]string{
		x509.KeyUsageDigitalSignature:  "digitalSignature",
		x509.KeyUsageContentCommitment: "nonRepudiation",
		x509.KeyUsageKeyEncipherment:   "keyEncipherment",
		x509.KeyUsageDataEncipherment:  "dataEncipherment",
		x509.KeyUsageKeyAgreement:      "keyAgreement",
		x509.KeyUsageCertSign:          "keyCertSign",
		x509.KeyUsageCRLSign:           "cRLSign",
		x509.KeyUsageEncipherOnly:      "encipherOnly",
		x509.KeyUsageDecipherOnly:      "decipherOnly",
	}
	extKeyUsageToStr = map[x509.ExtKeyUsage]string{
		x509.ExtKeyUsageAny:                            "anyExtendedKeyUsage",
		x509.ExtKeyUsageServerAuth:                     "serverAuth",
		x509.ExtKeyUsageClientAuth:                     "clientAuth",
		x509.ExtKeyUsageCodeSigning:                    "codeSigning",
		x509.ExtKeyUsageEmailProtection:                "emailProtection",
		x509.ExtKeyUsageIPSECEndSystem:                 "ipsecEndSystem",
		x509.ExtKeyUsageIPSECTunnel:                    "ipsecTunnel",
		x509.ExtKeyUsageIPSECUser:                      "ipsecUser",
		x509.ExtKeyUsageTimeStamping:                   "timeStamping",
		x509.ExtKeyUsageOCSPSigning:                    "OCSPSigning",
		x509.ExtKeyUsageMicrosoftServerGatedCrypto:     "msSGC",
		x509.ExtKeyUsageNetscapeServerGatedCrypto:      "nsSGC",
		x509.ExtKeyUsageMicrosoftCommercialCodeSigning: "msCodeCom",
		x509.ExtKeyUsageMicrosoftKernelCodeSigning:     "msKernelCodeSigning",
	}

	keyUsages []x509.KeyUsage
)

func init() {
	keyUsages = fx.Keys(keyUsageToStr)
	sort.Slice(keyUsages, func(i, j int) bool { return int(keyUsages[i]) < int(keyUsages[j]) })
}

// KeyUsages returns all known key usage names ordered by bit position
func KeyUsages() []string {
	return fx.Map(keyUsages, func(u x509.KeyUsage) string { return keyUsageToStr[u] })
}

// ExtKeyUsages returns all known extended key usage names
func ExtKeyUsages() []string {
	usages := fx.Values(extKeyUsageToStr)
	sort.Strings(usages)
	return usages
}

// KeyUsageToStr returns key usage names ordered by bit position
func KeyUsageToStr(keyUsage x509.KeyUsage) []string {
	usages := []string{}
	for _, u := range keyUsages {
		if keyUsage&u > 0 {
			usages = append(usages, keyUsageToStr[u])
		}
	}
	return usages
}

// ExtKeyUsageToStr returns extended key usage names in certificate order
func ExtKeyUsageToStr(cert *x509.Certificate) []string {
	usages := []string{}
	for _, u := range cert.ExtKeyUsage {
		if s, ok := extKeyUsageToStr[u]; ok {
			usages = append(usages, s)
		}
	}
	for _, oid := range cert.UnknownExtKeyUsage {
		usages = append(usages, oid.String())
	}
	return usages
}

// KeySize returns public key size in bits
func KeySize(pub crypto.PublicKey) int {
	switch key := pub.(type) {
	case *rsa.PublicKey:
		return key.N.BitLen()
	case *ecdsa.PublicKey:
		return key.Curve.Params().BitSize
	case ed25519.PublicKey:
		return 256
	default:
		return 0
	}
}

// SerialToHex lower case hex form of serial number
func SerialToHex(serial *big.Int) string {
	if serial == nil {
		return ""
	}
	return strings.ToLower(serial.Text(16))
}

// SubjectAlternativeNames returns SANs as "type:value"
func SubjectAlternativeNames(cert *x509.Certificate) []string {
	sans := []string{}
	sans = append(sans, fx.Map(cert.DNSNames, func(s string) string { return "dNSName:" + s })...)
	sans = append(sans, fx.Map(cert.IPAddresses, func(ip net.IP) string { return "iPAddress:" + ip.String() })...)
	sans = append(sans, fx.Map(cert.EmailAddresses, func(s string) string { return "rfc822Name:" + s })...)
	for _, u := range cert.URIs {
		sans = append(sans, "uniformResourceIdentifier:"+u.String())
	}
	return sans
}

// BasicConstraints returns basic constraints in human readable form
func BasicConstraints(cert *x509.Certificate) string {
	if !cert.BasicConstraintsValid || !cert.IsCA {
		return "Subject Type=End Entity"
	}

	if cert.MaxPathLen > 0 || cert.MaxPathLenZero {
		return fmt.Sprintf("Subject Type=CA, Path Length Constraint=%d", cert.MaxPathLen)
	}
	return "Subject Type=CA, Path Length Constraint=Unlimited"
}

func RandomSerial() *big.Int {
	s, _ := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	return s
}
