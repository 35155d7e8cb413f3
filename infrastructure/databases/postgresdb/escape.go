package postgresdb

import (
	"fmt"
	"regexp"
	"strings"
)

var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// QuoteIdentifier validates and double-quotes an SQL identifier. A single
// schema qualifier ("schema.table") is allowed; each segment is quoted on its
// own. Anything else is rejected rather than escaped.
func QuoteIdentifier(name string) (string, error) {
	segments := strings.Split(name, ".")
	if len(segments) > 2 {
		return "", fmt.Errorf("invalid identifier format (too many segments): %q", name)
	}

	quoted := make([]string, len(segments))
	for i, segment := range segments {
		if !identifierPattern.MatchString(segment) {
			return "", fmt.Errorf("invalid identifier segment at position %d: %q", i, segment)
		}
		quoted[i] = `"` + segment + `"`
	}
	return strings.Join(quoted, "."), nil
}

// MustQuoteIdentifier is QuoteIdentifier for compiled-in names.
func MustQuoteIdentifier(name string) string {
	q, err := QuoteIdentifier(name)
	if err != nil {
		panic(err)
	}
	return q
}
