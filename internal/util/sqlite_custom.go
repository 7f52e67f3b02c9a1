package util

import (
	"database/sql/driver"
	"fmt"
	"sync"

	"golang.org/x/text/cases"
	"modernc.org/sqlite"
)

var registerOnce sync.Once

// RegisterFunctions makes the custom SQL functions available to every
// connection opened afterwards. It is safe to call more than once.
func RegisterFunctions() {
	registerOnce.Do(func() {
		sqlite.MustRegisterDeterministicScalarFunction("casefold", 1, casefoldFunc)
	})
}

// Casefold folds s for caseless matching. Unlike sqlite's LIKE it also
// handles non-ASCII letters, so "HYPÉRION" matches "hypérion".
func Casefold(s string) string {
	// A Caser keeps state, so one is created per call.
	return cases.Fold().String(s)
}

func casefoldFunc(ctx *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return Casefold(v), nil
	case []byte:
		return Casefold(string(v)), nil
	default:
		return nil, fmt.Errorf("casefold: invalid type: %T", v)
	}
}
