package gormx

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Strings string list stored as json array in text column. empty list is stored as empty string
type Strings []string

func (s *Strings) GormDataType() string                                   { return "strings" }
func (s *Strings) GormDBDataType(db *gorm.DB, field *schema.Field) string { return "text" }

func (s *Strings) Scan(in interface{}) error {
	var data []byte

	switch v := in.(type) {
	case nil:
		*s = nil
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return errors.Errorf("fail to scan Strings from %T", in)
	}

	if len(data) == 0 {
		*s = nil
		return nil
	}

	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return errors.Wrap(err, "fail to scan Strings")
	}
	*s = values

	return nil
}

func (s Strings) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "", nil
	}

	data, err := encodeJSON([]string(s))
	if err != nil {
		return nil, errors.Wrap(err, "fail to encode Strings")
	}

	return data, nil
}

// encodeJSON encode v without html escaping so LIKE patterns match raw & < >
func encodeJSON(v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}

	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// LikeEscapeChar escape character for LIKE patterns made by this package
const LikeEscapeChar = "!"

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// LikeEscape escape LIKE wildcards with LikeEscapeChar
func LikeEscape(s string) string { return likeEscaper.Replace(s) }

// ElementPattern LIKE pattern which matches a Strings column containing value
func ElementPattern(value string) string {
	encoded, err := encodeJSON(value)
	if err != nil {
		encoded = `"` + value + `"`
	}
	return "%" + LikeEscape(encoded) + "%"
}
