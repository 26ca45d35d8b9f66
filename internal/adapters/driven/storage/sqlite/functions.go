package sqlite

import (
	"database/sql/driver"
	"strings"

	msqlite "modernc.org/sqlite" // SQLite driver
)

// foldCaseFunc lowercases text with Unicode rules. SQLite's built-in lower()
// only folds ASCII, so "ÉTÉ" would never match a search for "été".
const foldCaseFunc = "fold_case"

func init() {
	msqlite.MustRegisterDeterministicScalarFunction(foldCaseFunc, 1, foldCase)
}

func foldCase(_ *msqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}
