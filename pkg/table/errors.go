package table

import "fmt"

// MissingKeyError reports a merge key absent from one side of a join.
type MissingKeyError struct {
	Key  string
	Side string // "left" or "right"
}

func (e MissingKeyError) Error() string {
	return fmt.Sprintf("table: merge key %q missing from %s table", e.Key, e.Side)
}

// TypeMismatchError reports an operation that received a non-table value.
type TypeMismatchError struct {
	Op string
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("table: %s requires a table value", e.Op)
}
