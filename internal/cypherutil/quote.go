// Package cypherutil provides Cypher utility functions for biograph.
package cypherutil

import (
	"regexp"
	"strings"
)

// QuoteIdentifier quotes a Cypher identifier (label, relationship type,
// property name) with backticks. It escapes any existing backticks by
// doubling them.
// Example: "Gene" -> "`Gene`"
// Example: "my`label" -> "`my``label`"
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// validIdentifierRegex matches valid Cypher identifier characters.
// Labels and property names coming from parsers are restricted to
// alphanumeric and underscore only as a defense-in-depth measure
// against query injection.
var validIdentifierRegex = regexp.MustCompile("^[a-zA-Z0-9_]+$")

// IsValidIdentifier checks if a name is a safe Cypher identifier.
func IsValidIdentifier(name string) bool {
	return validIdentifierRegex.MatchString(name)
}

// QuoteIdentifierSafe quotes a Cypher identifier after validating it.
// Returns an error if the identifier contains invalid characters.
// Use this when identifiers might come from untrusted sources.
func QuoteIdentifierSafe(name string) (string, error) {
	if !IsValidIdentifier(name) {
		return "", &InvalidIdentifierError{Name: name}
	}
	return QuoteIdentifier(name), nil
}

// InvalidIdentifierError is returned when an identifier contains invalid characters.
type InvalidIdentifierError struct {
	Name string
}

func (e *InvalidIdentifierError) Error() string {
	return "invalid identifier: " + e.Name + " (must contain only alphanumeric characters and underscores)"
}
