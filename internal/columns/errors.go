package columns

import (
	"fmt"
	"strings"
)

// MissingColumnError indicates no header qualifies for a required field.
type MissingColumnError struct {
	Field  Field
	Header []string
	// Requested is set when an explicit column name was not found.
	Requested string
}

func (e *MissingColumnError) Error() string {
	if e.Requested != "" {
		return fmt.Sprintf("no column named %q for %s (columns: %s)", e.Requested, e.Field.Label(), strings.Join(e.Header, ", "))
	}
	return fmt.Sprintf("no %s column found (looked for %s)", e.Field.Label(), strings.Join(Keywords[e.Field], ", "))
}

// AmbiguousColumnError indicates several candidates and nobody to choose.
type AmbiguousColumnError struct {
	Field      Field
	Candidates []Column
}

func (e *AmbiguousColumnError) Error() string {
	return fmt.Sprintf("several %s columns match: %s", e.Field.Label(), strings.Join(e.Names(), ", "))
}

// Names lists the candidate headers.
func (e *AmbiguousColumnError) Names() []string {
	names := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		names[i] = c.Name
	}
	return names
}
