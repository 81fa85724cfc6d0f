package gormx

import (
	"reflect"

	"gorm.io/gorm"

	"certhub/pkg/helper"
)

type validationImpl struct{}

func NewValidationPlugin() gorm.Plugin { return &validationImpl{} }

func (v *validationImpl) Name() string { return "validation" }
func (v *validationImpl) Initialize(db *gorm.DB) error {
	callback := db.Callback()
	if callback.Create().Get("validations:validate") == nil {
		callback.Create().Before("gorm:before_create").Register("validations:validate", v.validate)
	}

	if callback.Update().Get("validations:validate") == nil {
		callback.Update().Before("gorm:before_update").Register("validations:validate", v.validate)
	}

	return nil
}

// validate runs struct validation on the statement destination.
// map based updates and slices are skipped.
func (v *validationImpl) validate(db *gorm.DB) {
	if db.Statement.Dest == nil {
		return
	}

	rv := reflect.ValueOf(db.Statement.Dest)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return
		}
		rv = rv.Elem()
	}

	if rv.Kind() != reflect.Struct {
		return
	}

	if err := helper.ValidateStruct(rv.Interface()); err != nil {
		db.AddError(err)
	}
}
