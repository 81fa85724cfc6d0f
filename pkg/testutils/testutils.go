package testutils

import (
	"fmt"
)

// Must panics if fixture setup failed
func Must(err error) {
	if err != nil {
		panic(fmt.Sprintf("fixture failed: %+v", err))
	}
}

// Must1 returns v or panics if fixture setup failed
func Must1[T any](v T, err error) T {
	Must(err)
	return v
}
