package models

import (
	"time"

	"gorm.io/gorm"

	"certhub/pkg/helper/gormx"
)

// CertificateContent deduplicated certificate content, one row per fingerprint
type CertificateContent struct {
	ID          uint   `gorm:"primaryKey"`
	Fingerprint string `gorm:"uniqueIndex;size:64;not null"`
	Content     string `gorm:"type:text;not null"`
	CreatedAt   time.Time
}

type Certificate struct {
	ID   uint   `gorm:"primaryKey"`
	UUID string `gorm:"uniqueIndex;size:40;not null"`

	CommonName              string  `gorm:"size:255;index"`
	SubjectDN               string  `gorm:"size:512;index"`
	IssuerDN                string  `gorm:"size:512;index"`
	IssuerCommonName        string  `gorm:"size:255"`
	SerialNumber            string  `gorm:"size:128;index;not null"`
	IssuerSerialNumber      *string `gorm:"size:128;index"`
	NotBefore               time.Time
	NotAfter                time.Time
	KeySize                 int
	PublicKeyAlgorithm      string        `gorm:"size:32"`
	SignatureAlgorithm      string        `gorm:"size:64"`
	KeyUsage                gormx.Strings `gorm:"type:text"`
	ExtendedKeyUsage        gormx.Strings `gorm:"type:text"`
	SubjectAlternativeNames gormx.Strings `gorm:"type:text"`
	BasicConstraints        string        `gorm:"size:128"`
	Status                  string        `gorm:"size:16;index;not null"`
	ComplianceStatus        string        `gorm:"size:8;index;not null"`
	ComplianceResult        *string       `gorm:"type:text"` // json encoded types.ComplianceResult
	RAProfileID             *uint         `gorm:"index"`
	RAProfile               *RAProfile    `gorm:"constraint:OnDelete:SET NULL"`
	GroupID                 *uint         `gorm:"index"`
	Group                   *Group        `gorm:"constraint:OnDelete:SET NULL"`
	Owner                   *string       `gorm:"size:255;index"`
	Meta                    string        `gorm:"type:text"`
	Fingerprint             string        `gorm:"uniqueIndex;size:64;not null"`
	ContentID               uint          `gorm:"index;not null"`
	Content                 *CertificateContent

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Certificate) BeforeCreate(tx *gorm.DB) error { return gormx.GenerateID(&c.UUID) }

type RAProfile struct {
	ID             uint   `gorm:"primaryKey"`
	UUID           string `gorm:"uniqueIndex;size:40;not null"`
	Name           string `gorm:"uniqueIndex;size:255;not null" validate:"required"`
	Enabled        bool
	ComplianceKind string            `gorm:"size:128"`
	Rules          []*ComplianceRule `gorm:"many2many:ra_profile_rules"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *RAProfile) BeforeCreate(tx *gorm.DB) error { return gormx.GenerateID(&p.UUID) }

type Group struct {
	ID          uint   `gorm:"primaryKey"`
	UUID        string `gorm:"uniqueIndex;size:40;not null"`
	Name        string `gorm:"uniqueIndex;size:255;not null" validate:"required"`
	Description string `gorm:"size:1024"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (g *Group) BeforeCreate(tx *gorm.DB) error { return gormx.GenerateID(&g.UUID) }

type ComplianceRule struct {
	ID              uint   `gorm:"primaryKey"`
	UUID            string `gorm:"uniqueIndex;size:40;not null"`
	ConnectorRuleID string `gorm:"uniqueIndex;size:64;not null" validate:"required"`
	Name            string `gorm:"size:255"`
	Description     string `gorm:"size:1024"`
	Kind            string `gorm:"size:128"`

	CreatedAt time.Time
}

func (r *ComplianceRule) BeforeCreate(tx *gorm.DB) error { return gormx.GenerateID(&r.UUID) }

// Principal admin or client bound to certificate
type Principal struct {
	ID            uint         `gorm:"primaryKey"`
	UUID          string       `gorm:"uniqueIndex;size:40;not null"`
	Name          string       `gorm:"size:255;not null" validate:"required"`
	Kind          string       `gorm:"size:16;not null" validate:"oneof=admin client"`
	CertificateID *uint        `gorm:"index"`
	Certificate   *Certificate `gorm:"constraint:OnDelete:SET NULL"`
	Enabled       bool

	CreatedAt time.Time
}

func (p *Principal) BeforeCreate(tx *gorm.DB) error { return gormx.GenerateID(&p.UUID) }

type CertificateLocation struct {
	ID            uint         `gorm:"primaryKey"`
	CertificateID uint         `gorm:"uniqueIndex:idx_certificate_location;not null"`
	Certificate   *Certificate `gorm:"constraint:OnDelete:CASCADE"`
	Location      string       `gorm:"uniqueIndex:idx_certificate_location;size:255;not null" validate:"required"`

	CreatedAt time.Time
}

// DiscoveryCertificate discovered certificate, refers content by fingerprint
type DiscoveryCertificate struct {
	ID            uint   `gorm:"primaryKey"`
	UUID          string `gorm:"uniqueIndex;size:40;not null"`
	DiscoveryName string `gorm:"size:255;not null" validate:"required"`
	CommonName    string `gorm:"size:255"`
	Fingerprint   string `gorm:"size:64;index;not null"`

	CreatedAt time.Time
}

func (d *DiscoveryCertificate) BeforeCreate(tx *gorm.DB) error { return gormx.GenerateID(&d.UUID) }

// EventHistory certificate history. kept after certificate is deleted
type EventHistory struct {
	ID             uint   `gorm:"primaryKey"`
	CertificateID  string `gorm:"size:40;index;not null"`
	Event          string `gorm:"size:32;not null"`
	Status         string `gorm:"size:16;not null"`
	Message        string `gorm:"type:text"`
	AdditionalInfo string `gorm:"type:text"`

	CreatedAt time.Time
}
