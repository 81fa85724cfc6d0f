package v1

import (
	"certhub/certmanager/types"
)

type (
	Certificate     = types.Certificate
	CertificatePage = types.CertificatePage
	Event           = types.Event
	Filter          = types.Filter
	SearchField     = types.SearchField
	Outcome         = types.Outcome
	RAProfile       = types.RAProfile
	Group           = types.Group
	ComplianceRule  = types.ComplianceRule
	Principal       = types.Principal
	Location        = types.CertificateLocation
)

// UploadRequest certificate in PEM or base64 encoded DER
type UploadRequest struct {
	Certificate string                `json:"certificate" validate:"required"`
	Type        types.CertificateType `json:"certificateType,omitempty"`
	Meta        string                `json:"meta,omitempty"`
}

type ImportRequest struct {
	Certificate string `json:"certificate" validate:"required"`
}

type ImportResponse struct {
	Certificate *Certificate `json:"certificate"`
	Created     bool         `json:"created"`
}

// ListRequest filters are joined by AND; page starts from 1
type ListRequest struct {
	Filters []*Filter `json:"filters" validate:"dive"`
	Page    int       `json:"pageNumber" validate:"gte=0"`
	Size    int       `json:"itemsPerPage" validate:"gte=0"`
}

// UpdateRequest nil field is not changed, empty string clears the field
type UpdateRequest struct {
	RAProfileUUID *string `json:"raProfileUuid,omitempty"`
	GroupUUID     *string `json:"groupUuid,omitempty"`
	Owner         *string `json:"owner,omitempty"`
}

// BulkUpdateRequest select certificates by uuids or by filters. empty filters select all certificates
type BulkUpdateRequest struct {
	UUIDs   []string  `json:"uuids,omitempty"`
	Filters []*Filter `json:"filters" validate:"dive"`
	UpdateRequest
}

type BulkDeleteRequest struct {
	UUIDs   []string  `json:"uuids,omitempty"`
	Filters []*Filter `json:"filters" validate:"dive"`
}

type BulkResponse struct {
	Outcomes []Outcome `json:"outcomes"`
}

// ComplianceRequest check certificates by uuids or all certificates of ra profile
type ComplianceRequest struct {
	UUIDs         []string `json:"uuids,omitempty" validate:"required_without=RAProfileUUID"`
	RAProfileUUID string   `json:"raProfileUuid,omitempty"`
}

type ComplianceResponse struct {
	Outcomes  []Outcome `json:"outcomes,omitempty"`
	Evaluated int       `json:"evaluated"`
}

type ChainResponse struct {
	Created int `json:"created"`
}

type SweepResponse struct {
	Linked int `json:"linked"`
}

type RAProfileRequest struct {
	Name           string   `json:"name" validate:"required"`
	Enabled        bool     `json:"enabled"`
	ComplianceKind string   `json:"complianceKind,omitempty"`
	RuleUUIDs      []string `json:"ruleUuids,omitempty"`
}

type GroupRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
}

type ComplianceRuleRequest struct {
	ConnectorRuleID string `json:"connectorRuleId" validate:"required"`
	Name            string `json:"name" validate:"required"`
	Description     string `json:"description,omitempty"`
	Kind            string `json:"kind,omitempty"`
}

type LocationRequest struct {
	Location string `json:"location" validate:"required,max=255"`
}

// PrincipalRequest empty CertificateUUID creates unbound principal
type PrincipalRequest struct {
	Name            string              `json:"name" validate:"required"`
	Kind            types.PrincipalKind `json:"kind" validate:"required,oneof=admin client"`
	CertificateUUID string              `json:"certificateUuid,omitempty"`
	Enabled         bool                `json:"enabled"`
}

// PrincipalUpdateRequest nil field is not changed, empty CertificateUUID unbinds principal
type PrincipalUpdateRequest struct {
	CertificateUUID *string `json:"certificateUuid,omitempty"`
	Enabled         *bool   `json:"enabled,omitempty"`
}
