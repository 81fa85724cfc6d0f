package store

import (
	"encoding/json"

	"github.com/whitekid/goxp/fx"
	"github.com/whitekid/goxp/log"

	"certhub/certmanager/store/models"
	"certhub/certmanager/types"
	"certhub/pkg/helper/gormx"
)

func toCertificate(m *models.Certificate) *types.Certificate {
	cert := &types.Certificate{
		ID:                      m.ID,
		UUID:                    m.UUID,
		CommonName:              m.CommonName,
		SubjectDN:               m.SubjectDN,
		IssuerDN:                m.IssuerDN,
		IssuerCommonName:        m.IssuerCommonName,
		SerialNumber:            m.SerialNumber,
		IssuerSerialNumber:      m.IssuerSerialNumber,
		NotBefore:               m.NotBefore,
		NotAfter:                m.NotAfter,
		KeySize:                 m.KeySize,
		PublicKeyAlgorithm:      m.PublicKeyAlgorithm,
		SignatureAlgorithm:      m.SignatureAlgorithm,
		KeyUsage:                fx.Ternary(m.KeyUsage == nil, []string{}, []string(m.KeyUsage)),
		ExtendedKeyUsage:        fx.Ternary(m.ExtendedKeyUsage == nil, []string{}, []string(m.ExtendedKeyUsage)),
		SubjectAlternativeNames: fx.Ternary(m.SubjectAlternativeNames == nil, []string{}, []string(m.SubjectAlternativeNames)),
		BasicConstraints:        m.BasicConstraints,
		Status:                  types.CertificateStatus(m.Status),
		ComplianceStatus:        types.ComplianceStatus(m.ComplianceStatus),
		Owner:                   m.Owner,
		Meta:                    m.Meta,
		Fingerprint:             m.Fingerprint,
		ContentID:               m.ContentID,
		Created:                 m.CreatedAt,
		Updated:                 m.UpdatedAt,
	}

	if m.ComplianceResult != nil && *m.ComplianceResult != "" {
		var result types.ComplianceResult
		if err := json.Unmarshal([]byte(*m.ComplianceResult), &result); err != nil {
			log.Errorf("invalid compliance result: certificate=%s, err=%v", m.UUID, err)
		} else {
			cert.ComplianceResult = &result
		}
	}

	if m.Content != nil {
		cert.Content = m.Content.Content
	}
	if m.RAProfile != nil {
		cert.RAProfile = toRAProfile(m.RAProfile)
	}
	if m.Group != nil {
		cert.Group = toGroup(m.Group)
	}

	return cert
}

func fromCertificate(cert *types.Certificate) *models.Certificate {
	m := &models.Certificate{
		UUID:                    cert.UUID,
		CommonName:              cert.CommonName,
		SubjectDN:               cert.SubjectDN,
		IssuerDN:                cert.IssuerDN,
		IssuerCommonName:        cert.IssuerCommonName,
		SerialNumber:            cert.SerialNumber,
		IssuerSerialNumber:      cert.IssuerSerialNumber,
		NotBefore:               cert.NotBefore,
		NotAfter:                cert.NotAfter,
		KeySize:                 cert.KeySize,
		PublicKeyAlgorithm:      cert.PublicKeyAlgorithm,
		SignatureAlgorithm:      cert.SignatureAlgorithm,
		KeyUsage:                gormx.Strings(cert.KeyUsage),
		ExtendedKeyUsage:        gormx.Strings(cert.ExtendedKeyUsage),
		SubjectAlternativeNames: gormx.Strings(cert.SubjectAlternativeNames),
		BasicConstraints:        cert.BasicConstraints,
		Status:                  string(fx.Ternary(cert.Status == "", types.StatusUnknown, cert.Status)),
		ComplianceStatus:        string(fx.Ternary(cert.ComplianceStatus == "", types.ComplianceNA, cert.ComplianceStatus)),
		ComplianceResult:        encodeComplianceResult(cert.ComplianceResult),
		Owner:                   cert.Owner,
		Meta:                    cert.Meta,
		Fingerprint:             cert.Fingerprint,
		ContentID:               cert.ContentID,
	}

	if cert.RAProfile != nil {
		m.RAProfileID = &cert.RAProfile.ID
	}
	if cert.Group != nil {
		m.GroupID = &cert.Group.ID
	}

	return m
}

func encodeComplianceResult(result *types.ComplianceResult) *string {
	if result == nil {
		return nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return nil
	}
	s := string(data)
	return &s
}

func toRAProfile(m *models.RAProfile) *types.RAProfile {
	return &types.RAProfile{
		ID:             m.ID,
		UUID:           m.UUID,
		Name:           m.Name,
		Enabled:        m.Enabled,
		ComplianceKind: m.ComplianceKind,
		Rules:          fx.Map(m.Rules, toComplianceRule),
	}
}

func toGroup(m *models.Group) *types.Group {
	return &types.Group{
		ID:          m.ID,
		UUID:        m.UUID,
		Name:        m.Name,
		Description: m.Description,
	}
}

func toComplianceRule(m *models.ComplianceRule) *types.ComplianceRule {
	return &types.ComplianceRule{
		ID:              m.ID,
		UUID:            m.UUID,
		ConnectorRuleID: m.ConnectorRuleID,
		Name:            m.Name,
		Description:     m.Description,
		Kind:            m.Kind,
	}
}

func toPrincipal(m *models.Principal) *types.Principal {
	p := &types.Principal{
		ID:            m.ID,
		UUID:          m.UUID,
		Name:          m.Name,
		Kind:          types.PrincipalKind(m.Kind),
		CertificateID: m.CertificateID,
		Enabled:       m.Enabled,
	}
	if m.Certificate != nil {
		p.CertificateUUID = m.Certificate.UUID
	}
	return p
}

func toLocation(m *models.CertificateLocation) *types.CertificateLocation {
	return &types.CertificateLocation{
		ID:            m.ID,
		CertificateID: m.CertificateID,
		Location:      m.Location,
	}
}

func toEvent(m *models.EventHistory) *types.Event {
	return &types.Event{
		ID:             m.ID,
		CertificateID:  m.CertificateID,
		Event:          types.EventType(m.Event),
		Status:         types.EventStatus(m.Status),
		Message:        m.Message,
		AdditionalInfo: m.AdditionalInfo,
		Created:        m.CreatedAt,
	}
}

func fromEvent(e *types.Event) *models.EventHistory {
	return &models.EventHistory{
		CertificateID:  e.CertificateID,
		Event:          string(e.Event),
		Status:         string(e.Status),
		Message:        e.Message,
		AdditionalInfo: e.AdditionalInfo,
		CreatedAt:      e.Created,
	}
}
