package enums

import (
	"fmt"
	"slices"
)

// parse matches raw exactly against the allowed values of a string enum.
// Case is significant; "pending" is not a status.
func parse[T ~string](kind, raw string, allowed []T) (T, error) {
	if v := T(raw); slices.Contains(allowed, v) {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q", kind, raw)
}
