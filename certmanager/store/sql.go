package store

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/whitekid/goxp"
	"github.com/whitekid/goxp/fx"
	"github.com/whitekid/goxp/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"certhub/certmanager/store/models"
	"certhub/certmanager/types"
	"certhub/pkg/helper/gormx"
)

var (
	ErrMultipleRecord = errors.New("multiple record found")
)

// batch size for bulk insert
const createBatchSize = 1000

// sqlStoreImpl store to SQL Server
type sqlStoreImpl struct {
	db *gorm.DB
}

var _ Interface = (*sqlStoreImpl)(nil)

// NewSQL create new SQL store and migrate schema
func NewSQL(dburl string) (Interface, error) {
	db, err := gormx.Open(dburl, &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix: "certhub_",
		},
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := models.Migrate(db); err != nil {
		return nil, err
	}

	return &sqlStoreImpl{
		db: db,
	}, nil
}

// DB returns underlying database
func (s *sqlStoreImpl) DB() *gorm.DB { return s.db }

func (s *sqlStoreImpl) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *sqlStoreImpl) StoreContent(ctx context.Context, fingerprint string, content string) (*types.CertificateContent, error) {
	log.Debugf("StoreContent(): fingerprint=%s", fingerprint)

	existing, err := s.GetContent(ctx, fingerprint)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, types.ErrNotFound) {
		return nil, err
	}

	m := &models.CertificateContent{Fingerprint: fingerprint, Content: content}
	if tx := s.db.WithContext(ctx).Create(m); tx.Error != nil {
		err := gormx.ConvertSQLError(tx.Error)
		if errors.Is(err, gormx.ErrUniqueConstraintFailed) {
			// stored by concurrent ingestion
			return s.GetContent(ctx, fingerprint)
		}
		return nil, errors.Wrap(err, "fail to store content")
	}

	return &types.CertificateContent{ID: m.ID, Fingerprint: m.Fingerprint, Content: m.Content}, nil
}

func (s *sqlStoreImpl) GetContent(ctx context.Context, fingerprint string) (*types.CertificateContent, error) {
	var results []*models.CertificateContent
	if tx := s.db.WithContext(ctx).Where("fingerprint = ?", fingerprint).Limit(2).Find(&results); tx.Error != nil {
		return nil, errors.Wrap(gormx.ConvertSQLError(tx.Error), "GetContent() failed")
	}

	switch len(results) {
	case 0:
		return nil, errors.Wrapf(types.ErrNotFound, "content %s", fingerprint)
	case 1:
		return &types.CertificateContent{ID: results[0].ID, Fingerprint: results[0].Fingerprint, Content: results[0].Content}, nil
	default:
		return nil, ErrMultipleRecord
	}
}

func (s *sqlStoreImpl) CountContentReferences(ctx context.Context, fingerprint string) (int64, int64, error) {
	log.Debugf("CountContentReferences(): fingerprint=%s", fingerprint)

	return countContentReferences(s.db.WithContext(ctx), fingerprint)
}

func countContentReferences(tx *gorm.DB, fingerprint string) (int64, int64, error) {
	records, err := gormx.Count(tx.Model(&models.Certificate{}).Where("fingerprint = ?", fingerprint))
	if err != nil {
		return 0, 0, errors.Wrap(err, "fail to count content references")
	}

	discovery, err := gormx.Count(tx.Model(&models.DiscoveryCertificate{}).Where("fingerprint = ?", fingerprint))
	if err != nil {
		return 0, 0, errors.Wrap(err, "fail to count content references")
	}

	return records, discovery, nil
}

func (s *sqlStoreImpl) CreateCertificate(ctx context.Context, cert *types.Certificate) (*types.Certificate, error) {
	log.Debugf("CreateCertificate(): cn=%s, fingerprint=%s", cert.CommonName, cert.Fingerprint)

	m := fromCertificate(cert)
	if tx := s.db.WithContext(ctx).Omit("Content", "RAProfile", "Group").Create(m); tx.Error != nil {
		return nil, errors.Wrap(gormx.ConvertSQLError(tx.Error), "fail to create certificate")
	}

	return s.GetCertificate(ctx, m.UUID)
}

func (s *sqlStoreImpl) GetCertificate(ctx context.Context, uuid string) (*types.Certificate, error) {
	log.Debugf("GetCertificate(): uuid=%s", uuid)

	return s.getCertificate(ctx, CertificateListOpt{UUIDs: []string{uuid}}, uuid)
}

func (s *sqlStoreImpl) GetCertificateByFingerprint(ctx context.Context, fingerprint string) (*types.Certificate, error) {
	log.Debugf("GetCertificateByFingerprint(): fingerprint=%s", fingerprint)

	selector := func(tx *gorm.DB) *gorm.DB { return tx.Where("fingerprint = ?", fingerprint) }
	return s.getCertificate(ctx, CertificateListOpt{Selectors: []SelectorFunc{selector}}, fingerprint)
}

func (s *sqlStoreImpl) getCertificate(ctx context.Context, opts CertificateListOpt, key string) (*types.Certificate, error) {
	opts.Limit = 2
	results, err := s.ListCertificate(ctx, opts)
	if err != nil {
		return nil, err
	}

	switch len(results) {
	case 0:
		return nil, errors.Wrapf(types.ErrNotFound, "certificate %s", key)
	case 1:
		return results[0], nil
	default:
		return nil, ErrMultipleRecord
	}
}

func (s *sqlStoreImpl) certificateQuery(ctx context.Context, opts CertificateListOpt) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(&models.Certificate{})

	goxp.IfThen(len(opts.UUIDs) > 0, func() { tx = tx.Where("uuid IN ?", opts.UUIDs) })
	goxp.IfThen(opts.SerialNumber != "", func() { tx = tx.Where("LOWER(serial_number) = ?", strings.ToLower(opts.SerialNumber)) })
	goxp.IfThen(opts.SubjectDN != "", func() { tx = tx.Where("subject_dn = ?", opts.SubjectDN) })
	goxp.IfThen(opts.RAProfileID != nil, func() { tx = tx.Where("ra_profile_id = ?", *opts.RAProfileID) })
	goxp.IfThen(opts.Unlinked, func() { tx = tx.Where("issuer_serial_number IS NULL AND issuer_dn <> subject_dn") })
	goxp.IfThen(opts.Before > 0, func() { tx = tx.Where("id < ?", opts.Before) })

	for _, selector := range opts.Selectors {
		tx = selector(tx)
	}

	return tx
}

func (s *sqlStoreImpl) ListCertificate(ctx context.Context, opts CertificateListOpt) ([]*types.Certificate, error) {
	log.Debugf("ListCertificate(): opts=%+v", opts)

	tx := s.certificateQuery(ctx, opts).
		Preload("Content").Preload("RAProfile").Preload("Group").
		Order(fx.Ternary(opts.Ascending, "id", "id DESC"))

	goxp.IfThen(opts.Offset > 0, func() { tx = tx.Offset(opts.Offset) })
	goxp.IfThen(opts.Limit > 0, func() { tx = tx.Limit(opts.Limit) })

	var results []*models.Certificate
	if tx := tx.Find(&results); tx.Error != nil {
		return nil, errors.Wrap(gormx.ConvertSQLError(tx.Error), "ListCertificate() failed")
	}

	return fx.Map(results, toCertificate), nil
}

func (s *sqlStoreImpl) CountCertificate(ctx context.Context, opts CertificateListOpt) (int64, error) {
	log.Debugf("CountCertificate(): opts=%+v", opts)

	c, err := gormx.Count(s.certificateQuery(ctx, opts))
	if err != nil {
		return 0, errors.Wrap(err, "CountCertificate() failed")
	}
	return c, nil
}

func (u *CertificateUpdate) values() map[string]interface{} {
	values := map[string]interface{}{}

	goxp.IfThen(u.IssuerSerialNumber != nil, func() { values["issuer_serial_number"] = u.IssuerSerialNumber })
	goxp.IfThen(u.Status != nil, func() { values["status"] = string(*u.Status) })
	goxp.IfThen(u.Meta != nil, func() { values["meta"] = *u.Meta })

	if u.Compliance != nil {
		values["compliance_status"] = string(u.Compliance.Status)
		values["compliance_result"] = encodeComplianceResult(u.Compliance.Result)
	}
	goxp.IfThen(u.RAProfile != nil, func() { values["ra_profile_id"] = u.RAProfile.ID })
	goxp.IfThen(u.Group != nil, func() { values["group_id"] = u.Group.ID })
	goxp.IfThen(u.Owner != nil, func() { values["owner"] = u.Owner.Owner })

	return values
}

func (s *sqlStoreImpl) UpdateCertificate(ctx context.Context, id uint, update CertificateUpdate) error {
	log.Debugf("UpdateCertificate(): id=%d", id)

	return s.UpdateCertificates(ctx, []uint{id}, update)
}

func (s *sqlStoreImpl) UpdateCertificates(ctx context.Context, ids []uint, update CertificateUpdate) error {
	log.Debugf("UpdateCertificates(): count=%d", len(ids))

	values := update.values()
	if len(ids) == 0 || len(values) == 0 {
		return nil
	}

	if tx := s.db.WithContext(ctx).Model(&models.Certificate{}).Where("id IN ?", ids).Updates(values); tx.Error != nil {
		return errors.Wrap(gormx.ConvertSQLError(tx.Error), "fail to update certificate")
	}

	return nil
}

func (s *sqlStoreImpl) DeleteCertificate(ctx context.Context, id uint) (bool, error) {
	log.Debugf("DeleteCertificate(): id=%d", id)

	contentDeleted := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var results []*models.Certificate
		if r := tx.Where("id = ?", id).Limit(1).Find(&results); r.Error != nil {
			return gormx.ConvertSQLError(r.Error)
		}
		if len(results) == 0 {
			return errors.Wrapf(types.ErrNotFound, "certificate %d", id)
		}
		cert := results[0]

		if r := tx.Where("certificate_id = ?", id).Delete(&models.CertificateLocation{}); r.Error != nil {
			return gormx.ConvertSQLError(r.Error)
		}

		if r := tx.Delete(&models.Certificate{}, id); r.Error != nil {
			return gormx.ConvertSQLError(r.Error)
		}

		records, discovery, err := countContentReferences(tx, cert.Fingerprint)
		if err != nil {
			return err
		}

		if records == 0 && discovery == 0 {
			if r := tx.Delete(&models.CertificateContent{}, cert.ContentID); r.Error != nil {
				return gormx.ConvertSQLError(r.Error)
			}
			contentDeleted = true
		}

		return nil
	})
	if err != nil {
		return false, errors.Wrap(err, "fail to delete certificate")
	}

	return contentDeleted, nil
}

// columns which allows distinct value enumeration
var distinctColumns = []string{"signature_algorithm", "public_key_algorithm", "owner"}

func (s *sqlStoreImpl) DistinctValues(ctx context.Context, column string) ([]string, error) {
	log.Debugf("DistinctValues(): column=%s", column)

	if !fx.Contains(distinctColumns, column) {
		return nil, errors.Wrapf(types.ErrValidation, "column %s not allowed", column)
	}

	var values []string
	if tx := s.db.WithContext(ctx).Model(&models.Certificate{}).
		Where(column+" IS NOT NULL AND "+column+" <> ''").
		Distinct(column).Order(column).Pluck(column, &values); tx.Error != nil {
		return nil, errors.Wrap(gormx.ConvertSQLError(tx.Error), "DistinctValues() failed")
	}

	return values, nil
}

func (s *sqlStoreImpl) CreatePrincipal(ctx context.Context, principal *types.Principal) (*types.Principal, error) {
	log.Debugf("CreatePrincipal(): name=%s, kind=%s", principal.Name, principal.Kind)

	m := &models.Principal{
		Name:          principal.Name,
		Kind:          string(principal.Kind),
		CertificateID: principal.CertificateID,
		Enabled:       principal.Enabled,
	}
	if tx := s.db.WithContext(ctx).Omit("Certificate").Create(m); tx.Error != nil {
		return nil, errors.Wrap(gormx.ConvertSQLError(tx.Error), "fail to create principal")
	}

	return toPrincipal(m), nil
}

func (s *sqlStoreImpl) GetPrincipal(ctx context.Context, uuid string) (*types.Principal, error) {
	log.Debugf("GetPrincipal(): uuid=%s", uuid)

	var results []*models.Principal
	if tx := s.db.WithContext(ctx).Preload("Certificate").Where("uuid = ?", uuid).Limit(1).Find(&results); tx.Error != nil {
		return nil, errors.Wrap(gormx.ConvertSQLError(tx.Error), "GetPrincipal() failed")
	}

	if len(results) == 0 {
		return nil, errors.Wrapf(types.ErrNotFound, "principal %s", uuid)
	}

	return toPrincipal(results[0]), nil
}

func (s *sqlStoreImpl) ListPrincipals(ctx context.Context) ([]*types.Principal, error) {
	var results []*models.Principal
	if tx := s.db.WithContext(ctx).Preload("Certificate").Order("name").Find(&results); tx.Error != nil {
		return nil, errors.Wrap(gormx.ConvertSQLError(tx.Error), "ListPrincipals() failed")
	}

	return fx.Map(results, toPrincipal), nil
}

func (s *sqlStoreImpl) UpdatePrincipal(ctx context.Context, id uint, update PrincipalUpdate) error {
	log.Debugf("UpdatePrincipal(): id=%d", id)

	values := update.values()
	if len(values) == 0 {
		return nil
	}

	if tx := s.db.WithContext(ctx).Model(&models.Principal{}).Where("id = ?", id).Updates(values); tx.Error != nil {
		return errors.Wrap(gormx.ConvertSQLError(tx.Error), "fail to update principal")
	}

	return nil
}

func (s *sqlStoreImpl) CountActivePrincipals(ctx context.Context, certificateID uint) (int64, error) {
	log.Debugf("CountActivePrincipals(): certificate=%d", certificateID)

	return gormx.Count(s.db.WithContext(ctx).Model(&models.Principal{}).Where("certificate_id = ? AND enabled = ?", certificateID, true))
}

func (s *sqlStoreImpl) AddLocation(ctx context.Context, certificateID uint, location string) (*types.CertificateLocation, error) {
	log.Debugf("AddLocation(): certificate=%d, location=%s", certificateID, location)

	m := &models.CertificateLocation{CertificateID: certificateID, Location: location}
	if tx := s.db.WithContext(ctx).Omit("Certificate").Create(m); tx.Error != nil {
		return nil, errors.Wrap(gormx.ConvertSQLError(tx.Error), "fail to add location")
	}

	return toLocation(m), nil
}

func (s *sqlStoreImpl) ListLocations(ctx context.Context, certificateID uint) ([]*types.CertificateLocation, error) {
	var results []*models.CertificateLocation
	if tx := s.db.WithContext(ctx).Where("certificate_id = ?", certificateID).Order("id").Find(&results); tx.Error != nil {
		return nil, errors.Wrap(gormx.ConvertSQLError(tx.Error), "ListLocations() failed")
	}

	return fx.Map(results, toLocation), nil
}

func (s *sqlStoreImpl) RemoveLocation(ctx context.Context, certificateID uint, location string) error {
	log.Debugf("RemoveLocation(): certificate=%d, location=%s", certificateID, location)

	tx := s.db.WithContext(ctx).Where("certificate_id = ? AND location = ?", certificateID, location).Delete(&models.CertificateLocation{})
	if tx.Error != nil {
		return errors.Wrap(gormx.ConvertSQLError(tx.Error), "fail to remove location")
	}

	if tx.RowsAffected == 0 {
		return errors.Wrapf(types.ErrNotFound, "location %s", location)
	}

	return nil
}

func (s *sqlStoreImpl) CreateDiscoveryCertificate(ctx context.Context, discovery *types.DiscoveryCertificate) (*types.DiscoveryCertificate, error) {
	log.Debugf("CreateDiscoveryCertificate(): discovery=%s, fingerprint=%s", discovery.DiscoveryName, discovery.Fingerprint)

	m := &models.DiscoveryCertificate{
		DiscoveryName: discovery.DiscoveryName,
		CommonName:    discovery.CommonName,
		Fingerprint:   discovery.Fingerprint,
	}
	if tx := s.db.WithContext(ctx).Create(m); tx.Error != nil {
		return nil, errors.Wrap(gormx.ConvertSQLError(tx.Error), "fail to create discovery certificate")
	}

	return &types.DiscoveryCertificate{
		ID:            m.ID,
		UUID:          m.UUID,
		DiscoveryName: m.DiscoveryName,
		CommonName:    m.CommonName,
		Fingerprint:   m.Fingerprint,
	}, nil
}

func (s *sqlStoreImpl) CreateRAProfile(ctx context.Context, profile *types.RAProfile, ruleIDs []string) (*types.RAProfile, error) {
	log.Debugf("CreateRAProfile(): name=%s, rules=%v", profile.Name, ruleIDs)

	var rules []*models.ComplianceRule
	if len(ruleIDs) > 0 {
		if tx := s.db.WithContext(ctx).Where("uuid IN ?", ruleIDs).Find(&rules); tx.Error != nil {
			return nil, errors.Wrap(gormx.ConvertSQLError(tx.Error), "fail to create ra profile")
		}

		if len(rules) != len(ruleIDs) {
			return nil, errors.Wrapf(types.ErrNotFound, "compliance rules %v", ruleIDs)
		}
	}

	m := &models.RAProfile{
		Name:           profile.Name,
		Enabled:        profile.Enabled,
		ComplianceKind: profile.ComplianceKind,
		Rules:          rules,
	}
	if tx := s.db.WithContext(ctx).Create(m); tx.Error != nil {
		return nil, errors.Wrap(gormx.ConvertSQLError(tx.Error), "fail to create ra profile")
	}

	return s.GetRAProfile(ctx, m.UUID)
}

func (s *sqlStoreImpl) GetRAProfile(ctx context.Context, uuid string) (*types.RAProfile, error) {
	log.Debugf("GetRAProfile(): uuid=%s", uuid)

	var results []*models.RAProfile
	if tx := s.db.WithContext(ctx).Preload("Rules").Where("uuid = ?", uuid).Limit(1).Find(&results); tx.Error != nil {
		return nil, errors.Wrap(gormx.ConvertSQLError(tx.Error), "GetRAProfile() failed")
	}

	if len(results) == 0 {
		return nil, errors.Wrapf(types.ErrNotFound, "ra profile %s", uuid)
	}

	return toRAProfile(results[0]), nil
}

func (s *sqlStoreImpl) ListRAProfile(ctx context.Context) ([]*types.RAProfile, error) {
	var results []*models.RAProfile
	if tx := s.db.WithContext(ctx).Preload("Rules").Order("name").Find(&results); tx.Error != nil {
		return nil, errors.Wrap(gormx.ConvertSQLError(tx.Error), "ListRAProfile() failed")
	}

	return fx.Map(results, toRAProfile), nil
}

func (s *sqlStoreImpl) CreateGroup(ctx context.Context, group *types.Group) (*types.Group, error) {
	log.Debugf("CreateGroup(): name=%s", group.Name)

	m := &models.Group{Name: group.Name, Description: group.Description}
	if tx := s.db.WithContext(ctx).Create(m); tx.Error != nil {
		return nil, errors.Wrap(gormx.ConvertSQLError(tx.Error), "fail to create group")
	}

	return toGroup(m), nil
}

func (s *sqlStoreImpl) GetGroup(ctx context.Context, uuid string) (*types.Group, error) {
	log.Debugf("GetGroup(): uuid=%s", uuid)

	var results []*models.Group
	if tx := s.db.WithContext(ctx).Where("uuid = ?", uuid).Limit(1).Find(&results); tx.Error != nil {
		return nil, errors.Wrap(gormx.ConvertSQLError(tx.Error), "GetGroup() failed")
	}

	if len(results) == 0 {
		return nil, errors.Wrapf(types.ErrNotFound, "group %s", uuid)
	}

	return toGroup(results[0]), nil
}

func (s *sqlStoreImpl) ListGroup(ctx context.Context) ([]*types.Group, error) {
	var results []*models.Group
	if tx := s.db.WithContext(ctx).Order("name").Find(&results); tx.Error != nil {
		return nil, errors.Wrap(gormx.ConvertSQLError(tx.Error), "ListGroup() failed")
	}

	return fx.Map(results, toGroup), nil
}

func (s *sqlStoreImpl) CreateComplianceRule(ctx context.Context, rule *types.ComplianceRule) (*types.ComplianceRule, error) {
	log.Debugf("CreateComplianceRule(): connectorRuleID=%s", rule.ConnectorRuleID)

	m := &models.ComplianceRule{
		ConnectorRuleID: rule.ConnectorRuleID,
		Name:            rule.Name,
		Description:     rule.Description,
		Kind:            rule.Kind,
	}
	if tx := s.db.WithContext(ctx).Create(m); tx.Error != nil {
		return nil, errors.Wrap(gormx.ConvertSQLError(tx.Error), "fail to create compliance rule")
	}

	return toComplianceRule(m), nil
}

func (s *sqlStoreImpl) ListComplianceRule(ctx context.Context, connectorRuleIDs ...string) ([]*types.ComplianceRule, error) {
	tx := s.db.WithContext(ctx).Order("id")
	goxp.IfThen(len(connectorRuleIDs) > 0, func() { tx = tx.Where("connector_rule_id IN ?", connectorRuleIDs) })

	var results []*models.ComplianceRule
	if tx := tx.Find(&results); tx.Error != nil {
		return nil, errors.Wrap(gormx.ConvertSQLError(tx.Error), "ListComplianceRule() failed")
	}

	return fx.Map(results, toComplianceRule), nil
}

func (s *sqlStoreImpl) CreateEvents(ctx context.Context, events ...*types.Event) error {
	log.Debugf("CreateEvents(): count=%d", len(events))

	if len(events) == 0 {
		return nil
	}

	ms := fx.Map(events, fromEvent)
	if tx := s.db.WithContext(ctx).CreateInBatches(ms, createBatchSize); tx.Error != nil {
		return errors.Wrap(gormx.ConvertSQLError(tx.Error), "fail to create events")
	}

	return nil
}

func (s *sqlStoreImpl) ListEvents(ctx context.Context, certificateUUID string) ([]*types.Event, error) {
	log.Debugf("ListEvents(): certificate=%s", certificateUUID)

	var results []*models.EventHistory
	if tx := s.db.WithContext(ctx).Where("certificate_id = ?", certificateUUID).Order("id").Find(&results); tx.Error != nil {
		return nil, errors.Wrap(gormx.ConvertSQLError(tx.Error), "ListEvents() failed")
	}

	return fx.Map(results, toEvent), nil
}
