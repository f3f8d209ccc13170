package secret

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// LookupFunc looks up an environment variable. os.LookupEnv is the
// default.
type LookupFunc func(key string) (string, bool)

// ExpandEnvStrict expands ${VAR} references in s from the process
// environment. See Expand.
func ExpandEnvStrict(s string) (string, error) {
	return Expand(s, os.LookupEnv)
}

// Expand replaces every ${VAR} in s using lookup. Every referenced
// variable must exist; the error names all missing ones. $$ yields a
// literal $. Bare $VAR is left untouched so passwords containing a dollar
// sign survive.
func Expand(s string, lookup LookupFunc) (string, error) {
	parts := strings.Split(s, "$$")

	var missing []string
	seen := make(map[string]bool)
	for i, part := range parts {
		parts[i] = envVarPattern.ReplaceAllStringFunc(part, func(m string) string {
			key := m[2 : len(m)-1]
			v, ok := lookup(key)
			if !ok && !seen[key] {
				seen[key] = true
				missing = append(missing, key)
			}
			return v
		})
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(missing, ", "))
	}
	return strings.Join(parts, "$"), nil
}
