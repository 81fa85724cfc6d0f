// Package search compiles certificate filters into store selection
package search

import (
	"github.com/whitekid/goxp/fx"

	"certhub/certmanager/types"
	"certhub/pkg/helper/x509x"
)

var (
	stringOps    = []types.Operator{types.OpEquals, types.OpNotEquals, types.OpContains, types.OpNotContains, types.OpStartsWith, types.OpEndsWith}
	nullableOps  = append(append([]types.Operator{}, stringOps...), types.OpEmpty, types.OpNotEmpty)
	enumOps      = []types.Operator{types.OpEquals, types.OpNotEquals}
	referenceOps = []types.Operator{types.OpEquals, types.OpNotEquals, types.OpEmpty, types.OpNotEmpty}
	dateOps      = []types.Operator{types.OpGreater, types.OpLesser, types.OpGreaterOrEqual, types.OpLesserOrEqual}
	numberOps    = []types.Operator{types.OpEquals, types.OpNotEquals, types.OpGreater, types.OpLesser, types.OpGreaterOrEqual, types.OpLesserOrEqual}
	listOps      = []types.Operator{types.OpIn}
	textOps      = []types.Operator{types.OpContains, types.OpNotContains}
)

// Field searchable field and its column
type Field struct {
	types.SearchField

	column    string
	reference referenceKind // table of reference field
	lower     bool          // values are stored in lower case
	strict    bool          // value must be one of Values
}

type referenceKind int

const (
	referenceNone referenceKind = iota
	referenceRAProfile
	referenceGroup
)

func newField(name, label string, fieldType types.FieldType, ops []types.Operator, column string) *Field {
	return &Field{
		SearchField: types.SearchField{Field: name, Label: label, Type: fieldType, Operators: ops},
		column:      column,
	}
}

// Catalog immutable set of searchable fields
type Catalog struct {
	fields []*Field
	index  map[string]*Field
}

func newCatalog(fields ...*Field) *Catalog {
	c := &Catalog{
		fields: fields,
		index:  make(map[string]*Field, len(fields)),
	}
	fx.ForEach(fields, func(_ int, f *Field) { c.index[f.Field] = f })
	return c
}

var defaultCatalog = func() *Catalog {
	status := newField("status", "Status", types.FieldEnum, enumOps, "status")
	status.Values = fx.Map(types.CertificateStatuses, func(s types.CertificateStatus) string { return string(s) })
	status.lower, status.strict = true, true

	compliance := newField("complianceStatus", "Compliance Status", types.FieldEnum, enumOps, "compliance_status")
	compliance.Values = fx.Map(types.ComplianceStatuses, func(s types.ComplianceStatus) string { return string(s) })
	compliance.lower, compliance.strict = true, true

	raProfile := newField("raProfile", "RA Profile", types.FieldReference, referenceOps, "ra_profile_id")
	raProfile.reference = referenceRAProfile

	group := newField("group", "Group", types.FieldReference, referenceOps, "group_id")
	group.reference = referenceGroup

	keyUsage := newField("keyUsage", "Key Usage", types.FieldList, listOps, "key_usage")
	keyUsage.Values = x509x.KeyUsages()

	extKeyUsage := newField("extendedKeyUsage", "Extended Key Usage", types.FieldList, listOps, "extended_key_usage")
	extKeyUsage.Values = x509x.ExtKeyUsages()

	// hex values are stored in lower case
	serial := newField("serialNumber", "Serial Number", types.FieldString, stringOps, "serial_number")
	serial.lower = true
	issuerSerial := newField("issuerSerialNumber", "Issuer Serial Number", types.FieldString, nullableOps, "issuer_serial_number")
	issuerSerial.lower = true
	fingerprint := newField("fingerprint", "Fingerprint", types.FieldString, stringOps, "fingerprint")
	fingerprint.lower = true

	return newCatalog(
		newField("commonName", "Common Name", types.FieldString, stringOps, "common_name"),
		serial,
		issuerSerial,
		raProfile,
		group,
		newField("owner", "Owner", types.FieldString, nullableOps, "owner"),
		status,
		compliance,
		newField("issuerCommonName", "Issuer Common Name", types.FieldString, stringOps, "issuer_common_name"),
		fingerprint,
		newField("signatureAlgorithm", "Signature Algorithm", types.FieldEnum, enumOps, "signature_algorithm"),
		newField("notAfter", "Expires At", types.FieldDate, dateOps, "not_after"),
		newField("notBefore", "Valid From", types.FieldDate, dateOps, "not_before"),
		newField("subjectDn", "Subject DN", types.FieldString, stringOps, "subject_dn"),
		newField("issuerDn", "Issuer DN", types.FieldString, stringOps, "issuer_dn"),
		newField("meta", "Metadata", types.FieldString, nullableOps, "meta"),
		newField("subjectAlternativeNames", "Subject Alternative Name", types.FieldString, textOps, "subject_alternative_names"),
		newField("publicKeyAlgorithm", "Public Key Algorithm", types.FieldEnum, enumOps, "public_key_algorithm"),
		newField("keySize", "Key Size", types.FieldNumber, numberOps, "key_size"),
		keyUsage,
		extKeyUsage,
	)
}()

// DefaultCatalog returns searchable fields of certificate
func DefaultCatalog() *Catalog { return defaultCatalog }

// WithValues returns copy of catalog with value sets replaced by values of field name
func (c *Catalog) WithValues(values map[string][]string) *Catalog {
	fields := fx.Map(c.fields, func(f *Field) *Field {
		copied := *f
		copied.Operators = append([]types.Operator{}, f.Operators...)
		copied.Values = append([]string(nil), f.Values...)
		if v, ok := values[f.Field]; ok && !f.strict {
			copied.Values = append([]string(nil), v...)
		}
		return &copied
	})

	return newCatalog(fields...)
}

// Lookup returns field by name
func (c *Catalog) Lookup(name string) (*Field, bool) {
	f, ok := c.index[name]
	return f, ok
}

// Fields returns searchable fields in catalog order
func (c *Catalog) Fields() []types.SearchField {
	return fx.Map(c.fields, func(f *Field) types.SearchField {
		sf := f.SearchField
		sf.Operators = append([]types.Operator{}, f.Operators...)
		sf.Values = append([]string(nil), f.Values...)
		return sf
	})
}

func (f *Field) allows(op types.Operator) bool { return fx.Contains(f.Operators, op) }
