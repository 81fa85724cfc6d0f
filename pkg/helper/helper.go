package helper

import (
	"crypto/sha256"
	"strconv"

	"github.com/whitekid/goxp/fx"
)

// AtoiDef returns def if s is not a number
func AtoiDef[T fx.Int](s string, def T) T {
	value, err := strconv.Atoi(s)
	if err != nil {
		return def
	}

	return T(value)
}

// ParseBoolDef returns def if s is not a boolean
func ParseBoolDef(s string, def bool) bool {
	if v, err := strconv.ParseBool(s); err == nil {
		return v
	}
	return def
}

func SHA256Sum(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}
