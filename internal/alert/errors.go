package alert

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an id names no live entry.
var ErrNotFound = errors.New("alert entry not found")

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}
