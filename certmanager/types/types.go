package types

import (
	"crypto/x509"
	"time"
)

// CertificateType only x509 is supported
type CertificateType string

const (
	CertificateTypeX509 CertificateType = "X.509"
)

// CertificateStatus certificate validity status
type CertificateStatus string

const (
	StatusUnknown CertificateStatus = "unknown"
	StatusActive  CertificateStatus = "active"
	StatusRevoked CertificateStatus = "revoked"
	StatusExpired CertificateStatus = "expired"
)

var CertificateStatuses = []CertificateStatus{StatusUnknown, StatusActive, StatusRevoked, StatusExpired}

// ComplianceStatus aggregated compliance status
type ComplianceStatus string

const (
	ComplianceOK  ComplianceStatus = "ok"
	ComplianceNOK ComplianceStatus = "nok"
	ComplianceNA  ComplianceStatus = "na"
)

var ComplianceStatuses = []ComplianceStatus{ComplianceOK, ComplianceNOK, ComplianceNA}

// ComplianceResult rule ids partitioned by not ok and not applicable.
// rules not mentioned are ok
type ComplianceResult struct {
	NotOK         []string `json:"nok,omitempty"`
	NotApplicable []string `json:"na,omitempty"`
}

// DeriveComplianceStatus aggregate status of compliance result
func DeriveComplianceStatus(hasProfile bool, result *ComplianceResult) ComplianceStatus {
	switch {
	case !hasProfile || result == nil:
		return ComplianceNA
	case len(result.NotOK) > 0:
		return ComplianceNOK
	default:
		return ComplianceOK
	}
}

// CertificateContent deduplicated certificate content
type CertificateContent struct {
	ID          uint
	Fingerprint string // lower case hex sha256 of DER
	Content     string // base64 encoded DER
}

// Certificate certificate record
type Certificate struct {
	ID   uint   `json:"-"`
	UUID string `json:"uuid"`

	CommonName              string            `json:"commonName"`
	SubjectDN               string            `json:"subjectDn"`
	IssuerDN                string            `json:"issuerDn"`
	IssuerCommonName        string            `json:"issuerCommonName"`
	SerialNumber            string            `json:"serialNumber"`
	IssuerSerialNumber      *string           `json:"issuerSerialNumber,omitempty"`
	NotBefore               time.Time         `json:"notBefore"`
	NotAfter                time.Time         `json:"notAfter"`
	KeySize                 int               `json:"keySize"`
	PublicKeyAlgorithm      string            `json:"publicKeyAlgorithm"`
	SignatureAlgorithm      string            `json:"signatureAlgorithm"`
	KeyUsage                []string          `json:"keyUsage"`
	ExtendedKeyUsage        []string          `json:"extendedKeyUsage"`
	SubjectAlternativeNames []string          `json:"subjectAlternativeNames"`
	BasicConstraints        string            `json:"basicConstraints"`
	Status                  CertificateStatus `json:"status"`
	ComplianceStatus        ComplianceStatus  `json:"complianceStatus"`
	ComplianceResult        *ComplianceResult `json:"complianceResult,omitempty"`
	RAProfile               *RAProfile        `json:"raProfile,omitempty"`
	Group                   *Group            `json:"group,omitempty"`
	Owner                   *string           `json:"owner,omitempty"`
	Meta                    string            `json:"meta,omitempty"`
	Fingerprint             string            `json:"fingerprint"`
	ContentID               uint              `json:"-"`
	Content                 string            `json:"certificateContent,omitempty"` // base64 encoded DER
	Created                 time.Time         `json:"created"`
	Updated                 time.Time         `json:"updated"`
}

// SelfSigned returns true if issuer and subject are the same
func (c *Certificate) SelfSigned() bool { return c.IssuerDN == c.SubjectDN }

// ParsedCertificate parsed and normalized certificate
type ParsedCertificate struct {
	Cert        *x509.Certificate
	DER         []byte
	Content     string // base64 encoded DER
	Fingerprint string
	Record      *Certificate // record fields extracted from the certificate
	IssuingURLs []string     // AIA CA issuers
}

// RAProfile registration authority profile
type RAProfile struct {
	ID             uint              `json:"-"`
	UUID           string            `json:"uuid"`
	Name           string            `json:"name"`
	Enabled        bool              `json:"enabled"`
	ComplianceKind string            `json:"complianceKind,omitempty"`
	Rules          []*ComplianceRule `json:"rules,omitempty"`
}

// Group administrative group
type Group struct {
	ID          uint   `json:"-"`
	UUID        string `json:"uuid"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ComplianceRule local rule entity mapped from connector rule id
type ComplianceRule struct {
	ID              uint   `json:"-"`
	UUID            string `json:"uuid"`
	ConnectorRuleID string `json:"connectorRuleId"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	Kind            string `json:"kind,omitempty"`
}

// PrincipalKind kind of principal bound to certificate
type PrincipalKind string

const (
	PrincipalAdmin  PrincipalKind = "admin"
	PrincipalClient PrincipalKind = "client"
)

// Principal administrative or client identity bound to certificate
type Principal struct {
	ID              uint          `json:"-"`
	UUID            string        `json:"uuid"`
	Name            string        `json:"name"`
	Kind            PrincipalKind `json:"kind"`
	CertificateID   *uint         `json:"-"`
	CertificateUUID string        `json:"certificateUuid,omitempty"`
	Enabled         bool          `json:"enabled"`
}

// CertificateLocation location where certificate is installed
type CertificateLocation struct {
	ID            uint   `json:"-"`
	CertificateID uint   `json:"-"`
	Location      string `json:"location"`
}

// DiscoveryCertificate certificate found by discovery, refers content by fingerprint
type DiscoveryCertificate struct {
	ID            uint
	UUID          string
	DiscoveryName string
	CommonName    string
	Fingerprint   string
}

// Outcome per item result of bulk operation
type Outcome struct {
	ID      string `json:"uuid"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func SuccessOutcome(id string) Outcome { return Outcome{ID: id, Success: true} }
func FailedOutcome(id string, err error) Outcome {
	return Outcome{ID: id, Success: false, Error: err.Error()}
}

// CertificatePage paged certificate list
type CertificatePage struct {
	Items      []*Certificate `json:"certificates"`
	Page       int            `json:"pageNumber"`
	Size       int            `json:"itemsPerPage"`
	TotalPages int            `json:"totalPages"`
	TotalItems int64          `json:"totalItems"`
}
