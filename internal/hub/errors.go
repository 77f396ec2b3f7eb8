package hub

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRecordExists signals an attempt to overwrite an immutable run record.
// Recoverable only by choosing a new run ID.
var ErrRecordExists = errors.New("run record already exists; records are immutable once written")

// ValidationError reports every contract violation found in a record. It is
// raised before any persistence attempt.
type ValidationError struct {
	RunID  string
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid run record %q: %s", e.RunID, strings.Join(e.Issues, "; "))
}
