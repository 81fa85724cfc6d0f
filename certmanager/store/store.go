package store

import (
	"context"

	"gorm.io/gorm"

	"certhub/certmanager/types"
)

// SelectorFunc narrows certificate query
type SelectorFunc func(tx *gorm.DB) *gorm.DB

// Interface storage interface
type Interface interface {
	// content; deduplicated by fingerprint
	StoreContent(ctx context.Context, fingerprint string, content string) (*types.CertificateContent, error)
	GetContent(ctx context.Context, fingerprint string) (*types.CertificateContent, error)
	CountContentReferences(ctx context.Context, fingerprint string) (records int64, discovery int64, err error)

	// certificates
	CreateCertificate(ctx context.Context, cert *types.Certificate) (*types.Certificate, error)
	GetCertificate(ctx context.Context, uuid string) (*types.Certificate, error)
	GetCertificateByFingerprint(ctx context.Context, fingerprint string) (*types.Certificate, error)
	ListCertificate(ctx context.Context, opts CertificateListOpt) ([]*types.Certificate, error)
	CountCertificate(ctx context.Context, opts CertificateListOpt) (int64, error)
	UpdateCertificate(ctx context.Context, id uint, update CertificateUpdate) error
	UpdateCertificates(ctx context.Context, ids []uint, update CertificateUpdate) error
	// DeleteCertificate delete certificate, its locations and its content if no one refers it
	DeleteCertificate(ctx context.Context, id uint) (contentDeleted bool, err error)
	DistinctValues(ctx context.Context, column string) ([]string, error)

	// principals, locations and discovery certificates
	CreatePrincipal(ctx context.Context, principal *types.Principal) (*types.Principal, error)
	GetPrincipal(ctx context.Context, uuid string) (*types.Principal, error)
	ListPrincipals(ctx context.Context) ([]*types.Principal, error)
	UpdatePrincipal(ctx context.Context, id uint, update PrincipalUpdate) error
	CountActivePrincipals(ctx context.Context, certificateID uint) (int64, error)
	AddLocation(ctx context.Context, certificateID uint, location string) (*types.CertificateLocation, error)
	ListLocations(ctx context.Context, certificateID uint) ([]*types.CertificateLocation, error)
	RemoveLocation(ctx context.Context, certificateID uint, location string) error
	CreateDiscoveryCertificate(ctx context.Context, discovery *types.DiscoveryCertificate) (*types.DiscoveryCertificate, error)

	// ra profiles, groups and compliance rules
	CreateRAProfile(ctx context.Context, profile *types.RAProfile, ruleIDs []string) (*types.RAProfile, error)
	GetRAProfile(ctx context.Context, uuid string) (*types.RAProfile, error)
	ListRAProfile(ctx context.Context) ([]*types.RAProfile, error)
	CreateGroup(ctx context.Context, group *types.Group) (*types.Group, error)
	GetGroup(ctx context.Context, uuid string) (*types.Group, error)
	ListGroup(ctx context.Context) ([]*types.Group, error)
	CreateComplianceRule(ctx context.Context, rule *types.ComplianceRule) (*types.ComplianceRule, error)
	ListComplianceRule(ctx context.Context, connectorRuleIDs ...string) ([]*types.ComplianceRule, error)

	// history
	CreateEvents(ctx context.Context, events ...*types.Event) error
	ListEvents(ctx context.Context, certificateUUID string) ([]*types.Event, error)

	// DB returns underlying database for metrics collectors
	DB() *gorm.DB
	Close() error
}

// CertificateListOpt certificate list options
type CertificateListOpt struct {
	UUIDs        []string
	SerialNumber string // case insensitive
	SubjectDN    string
	RAProfileID  *uint
	Unlinked     bool // issuer serial number is not set and not self signed
	Before       uint // id < Before, for keyset iteration
	Selectors    []SelectorFunc
	Ascending    bool // order by id; default descending
	Offset       int
	Limit        int
}

// CertificateUpdate mutable certificate fields; nil field is not updated
type CertificateUpdate struct {
	IssuerSerialNumber *string
	Status             *types.CertificateStatus
	Compliance         *ComplianceUpdate
	RAProfile          *RefUpdate
	Group              *RefUpdate
	Owner              *OwnerUpdate
	Meta               *string
}

// RefUpdate set reference to ID, nil ID clears the reference
type RefUpdate struct {
	ID *uint
}

// OwnerUpdate set owner, nil clears owner
type OwnerUpdate struct {
	Owner *string
}

// PrincipalUpdate mutable principal fields; nil field is not updated
type PrincipalUpdate struct {
	Certificate *RefUpdate
	Enabled     *bool
}

func (u *PrincipalUpdate) values() map[string]interface{} {
	values := map[string]interface{}{}
	if u.Certificate != nil {
		values["certificate_id"] = u.Certificate.ID
	}
	if u.Enabled != nil {
		values["enabled"] = *u.Enabled
	}
	return values
}

type ComplianceUpdate struct {
	Status types.ComplianceStatus
	Result *types.ComplianceResult
}
