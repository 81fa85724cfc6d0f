package models

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	models := [][]interface{}{
		{&CertificateContent{}, &ComplianceRule{}, &RAProfile{}, &Group{}},
		{&Certificate{}},
		{&Principal{}, &CertificateLocation{}, &DiscoveryCertificate{}, &EventHistory{}},
	}

	for _, m := range models {
		if err := autoMigrate(db, m...); err != nil {
			return err
		}
	}

	return nil
}

func autoMigrate(db *gorm.DB, m ...any) error {
	if err := db.AutoMigrate(m...); err != nil {
		return errors.Wrap(err, "automigrate failed")
	}
	return nil
}
