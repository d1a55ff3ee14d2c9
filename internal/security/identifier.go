package security

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrUnsafeIdentifier = errors.New("unsafe identifier")

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

// systemSchemas may not be read through model sources.
var systemSchemas = []string{
	"information_schema", "mysql", "performance_schema", "sys", "pg_catalog", "sqlite_master", "sqlite_schema",
}

// ValidateIdentifier accepts a table, column or collection name, optionally
// qualified as schema.name. Each part must be a plain identifier and system
// schemas are refused, so the name can be quoted into SQL safely.
func ValidateIdentifier(name string) error {
	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return fmt.Errorf("%w: %q", ErrUnsafeIdentifier, name)
	}
	for _, p := range parts {
		if !identifierPattern.MatchString(p) {
			return fmt.Errorf("%w: %q", ErrUnsafeIdentifier, name)
		}
		for _, sys := range systemSchemas {
			if strings.EqualFold(p, sys) {
				return fmt.Errorf("%w: access to system table %q blocked", ErrUnsafeIdentifier, name)
			}
		}
	}
	return nil
}
