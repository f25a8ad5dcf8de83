package assistant

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	tablePrefix = "attendance_"
	// confirmMarker must appear in a statement before a destructive
	// operation is allowed through.
	confirmMarker = "--CONFIRMED"
)

var (
	ErrEmptyStatement    = errors.New("empty SQL statement")
	ErrTableNotAllowed   = errors.New("statement touches a table outside the attendance_ namespace")
	ErrNeedsConfirmation = errors.New("destructive statement requires the --CONFIRMED marker")
)

var (
	destructiveRe = regexp.MustCompile(`(?is)\b(drop\s+table|truncate)\b`)
	// identifiers that follow a table-position keyword
	tableRefRe = regexp.MustCompile("(?is)\\b(?:from|join|into|update|table)\\s+[`\"]?([a-zA-Z_][a-zA-Z0-9_]*)")
	// TRUNCATE names its table without FROM, with TABLE optional
	truncateRefRe = regexp.MustCompile("(?is)\\btruncate\\s+(?:table\\s+)?[`\"]?([a-zA-Z_][a-zA-Z0-9_]*)")
)

// GuardStatement decides whether the assistant may run a statement. Only
// tables in the attendance_ namespace are reachable, and DROP TABLE or
// TRUNCATE must carry the confirmation marker the operator types in
// deliberately.
func GuardStatement(stmt string) error {
	trimmed := strings.TrimSpace(stmt)
	if trimmed == "" {
		return ErrEmptyStatement
	}

	if destructiveRe.MatchString(trimmed) && !strings.Contains(trimmed, confirmMarker) {
		return ErrNeedsConfirmation
	}

	refs := tableRefRe.FindAllStringSubmatch(trimmed, -1)
	refs = append(refs, truncateRefRe.FindAllStringSubmatch(trimmed, -1)...)
	for _, match := range refs {
		name := strings.ToLower(match[1])
		if isSQLKeyword(name) {
			continue
		}
		if !strings.HasPrefix(name, tablePrefix) {
			return fmt.Errorf("%w: %s", ErrTableNotAllowed, name)
		}
	}
	return nil
}

// GuardTableName validates a bare table name passed to a schema tool.
func GuardTableName(name string) error {
	trimmed := strings.ToLower(strings.TrimSpace(name))
	if trimmed == "" {
		return ErrEmptyStatement
	}
	if !regexp.MustCompile(`^[a-z_][a-z0-9_]*$`).MatchString(trimmed) {
		return fmt.Errorf("invalid table name %q", name)
	}
	if !strings.HasPrefix(trimmed, tablePrefix) {
		return fmt.Errorf("%w: %s", ErrTableNotAllowed, trimmed)
	}
	return nil
}

// isSQLKeyword filters false positives like "FROM (SELECT ...)" subquery
// openers that the regex can surface.
func isSQLKeyword(word string) bool {
	switch word {
	case "select", "dual", "if", "exists", "not":
		return true
	default:
		return false
	}
}
