package profile

import (
	"fmt"
	"strings"
)

// ValidationError reports user-correctable input problems, naming every
// missing or malformed field.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Fields, ", "))
}

// IndexOutOfRangeError reports a stale or invalid address index.
type IndexOutOfRangeError struct {
	Index int
	Size  int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("address index %d out of range (have %d)", e.Index, e.Size)
}
