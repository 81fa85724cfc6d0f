package search

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/whitekid/goxp/fx"
	"gorm.io/gorm"

	"certhub/certmanager/store"
	"certhub/certmanager/store/models"
	"certhub/certmanager/types"
	"certhub/config"
	"certhub/pkg/helper/gormx"
)

// Compiler compile filters against catalog
type Compiler struct {
	catalog     *Catalog
	store       store.Interface
	pageSize    int
	maxPageSize int
}

func NewCompiler(catalog *Catalog, s store.Interface) *Compiler {
	return &Compiler{
		catalog:     catalog,
		store:       s,
		pageSize:    config.PageSize(),
		maxPageSize: config.MaxPageSize(),
	}
}

// Compile returns selection of certificates matching all filters.
// unknown field, not allowed condition and invalid value returns ErrValidation
func (c *Compiler) Compile(filters []*types.Filter) (*Selection, error) {
	selectors := make([]store.SelectorFunc, 0, len(filters))
	for _, f := range filters {
		selector, err := c.compile(f)
		if err != nil {
			return nil, err
		}
		selectors = append(selectors, selector)
	}

	return &Selection{
		store:       c.store,
		selectors:   selectors,
		pageSize:    c.pageSize,
		maxPageSize: c.maxPageSize,
	}, nil
}

func (c *Compiler) compile(f *types.Filter) (store.SelectorFunc, error) {
	if f == nil {
		return nil, errors.Wrap(types.ErrValidation, "empty filter")
	}

	field, ok := c.catalog.Lookup(f.Field)
	if !ok {
		return nil, errors.Wrapf(types.ErrValidation, "unknown field: %s", f.Field)
	}

	if !field.allows(f.Condition) {
		return nil, errors.Wrapf(types.ErrValidation, "condition %s is not allowed for %s", f.Condition, f.Field)
	}

	invalid := func() error {
		return errors.Wrapf(types.ErrValidation, "invalid value for %s: %v", f.Field, f.Value)
	}

	if f.Condition == types.OpEmpty || f.Condition == types.OpNotEmpty {
		return emptySelector(field, f.Condition), nil
	}

	switch field.Type {
	case types.FieldString:
		value, ok := stringValue(f.Value)
		if !ok {
			return nil, invalid()
		}
		return stringSelector(field, f.Condition, fx.Ternary(field.lower, strings.ToLower(value), value)), nil

	case types.FieldEnum:
		values, ok := stringValues(f.Value)
		if !ok {
			return nil, invalid()
		}
		if field.lower {
			values = fx.Map(values, strings.ToLower)
		}
		if field.strict {
			for _, v := range values {
				if !fx.Contains(field.Values, v) {
					return nil, invalid()
				}
			}
		}
		return enumSelector(field, f.Condition, values), nil

	case types.FieldReference:
		values, ok := stringValues(f.Value)
		if !ok {
			return nil, invalid()
		}
		return referenceSelector(field, f.Condition, values), nil

	case types.FieldDate:
		value, ok := dateValue(f.Value)
		if !ok {
			return nil, invalid()
		}
		return compareSelector(field, f.Condition, value), nil

	case types.FieldNumber:
		value, ok := numberValue(f.Value)
		if !ok {
			return nil, invalid()
		}
		return compareSelector(field, f.Condition, value), nil

	case types.FieldList:
		values, ok := stringValues(f.Value)
		if !ok {
			return nil, invalid()
		}
		return listSelector(field, values), nil
	}

	return nil, errors.Wrapf(types.ErrValidation, "unsupported field type %s", field.Type)
}

func where(expr string, args ...interface{}) store.SelectorFunc {
	return func(tx *gorm.DB) *gorm.DB { return tx.Where("("+expr+")", args...) }
}

func emptySelector(field *Field, op types.Operator) store.SelectorFunc {
	col := field.column
	if field.Type == types.FieldReference {
		return where(col + fx.Ternary(op == types.OpEmpty, " IS NULL", " IS NOT NULL"))
	}

	if op == types.OpEmpty {
		return where(col + " IS NULL OR " + col + " = ''")
	}
	return where(col + " IS NOT NULL AND " + col + " <> ''")
}

func stringSelector(field *Field, op types.Operator, value string) store.SelectorFunc {
	col := field.column
	lowered := gormx.LikeEscape(strings.ToLower(value))

	switch op {
	case types.OpEquals:
		return where(col+" = ?", value)
	case types.OpNotEquals:
		return where(col+" <> ? OR "+col+" IS NULL", value)
	case types.OpContains:
		return where("LOWER("+col+") LIKE ? ESCAPE '!'", "%"+lowered+"%")
	case types.OpNotContains:
		return where("LOWER("+col+") NOT LIKE ? ESCAPE '!' OR "+col+" IS NULL", "%"+lowered+"%")
	case types.OpStartsWith:
		return where("LOWER("+col+") LIKE ? ESCAPE '!'", lowered+"%")
	default: // types.OpEndsWith
		return where("LOWER("+col+") LIKE ? ESCAPE '!'", "%"+lowered)
	}
}

func enumSelector(field *Field, op types.Operator, values []string) store.SelectorFunc {
	col := field.column
	if op == types.OpEquals {
		return where(col+" IN ?", values)
	}
	return where(col+" NOT IN ? OR "+col+" IS NULL", values)
}

// referenceSelector match reference by name
func referenceSelector(field *Field, op types.Operator, names []string) store.SelectorFunc {
	col := field.column
	return func(tx *gorm.DB) *gorm.DB {
		var model interface{} = &models.RAProfile{}
		if field.reference == referenceGroup {
			model = &models.Group{}
		}
		sub := tx.Session(&gorm.Session{NewDB: true}).Model(model).Select("id").Where("name IN ?", names)

		if op == types.OpEquals {
			return tx.Where(col+" IN (?)", sub)
		}
		return tx.Where("("+col+" NOT IN (?) OR "+col+" IS NULL)", sub)
	}
}

func compareSelector(field *Field, op types.Operator, value interface{}) store.SelectorFunc {
	operator := map[types.Operator]string{
		types.OpEquals:         "=",
		types.OpNotEquals:      "<>",
		types.OpGreater:        ">",
		types.OpLesser:         "<",
		types.OpGreaterOrEqual: ">=",
		types.OpLesserOrEqual:  "<=",
	}[op]

	return where(field.column+" "+operator+" ?", value)
}

// listSelector match any of values in json encoded list column
func listSelector(field *Field, values []string) store.SelectorFunc {
	exprs := make([]string, 0, len(values))
	args := make([]interface{}, 0, len(values))
	for _, v := range values {
		exprs = append(exprs, field.column+" LIKE ? ESCAPE '!'")
		args = append(args, gormx.ElementPattern(v))
	}

	return where(strings.Join(exprs, " OR "), args...)
}

func stringValue(v interface{}) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	default:
		return "", false
	}
}

// stringValues accepts single value or list. empty list is not valid
func stringValues(v interface{}) ([]string, bool) {
	var values []string
	switch x := v.(type) {
	case []string:
		values = x
	case []interface{}:
		for _, e := range x {
			s, ok := stringValue(e)
			if !ok {
				return nil, false
			}
			values = append(values, s)
		}
	default:
		s, ok := stringValue(v)
		if !ok {
			return nil, false
		}
		values = []string{s}
	}

	values = fx.Filter(values, func(s string) bool { return s != "" })
	return values, len(values) > 0
}

func numberValue(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case float64:
		if x != math.Trunc(x) {
			return 0, false
		}
		return int64(x), true
	case int:
		return int64(x), true
	case int64:
		return x, true
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func dateValue(v interface{}) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), true
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, x); err == nil {
				return t.UTC(), true
			}
		}
	}
	return time.Time{}, false
}
