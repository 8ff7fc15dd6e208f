package service

import (
	"sort"
	"strings"
)

// ValidationError reports rule-violating input, keyed by the offending
// field. Multiple violations are reported together.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// violations accumulates field errors before turning them into a
// ValidationError.
type violations map[string]string

func (v violations) add(field, msg string) {
	if _, ok := v[field]; !ok {
		v[field] = msg
	}
}

func (v violations) err() error {
	if len(v) == 0 {
		return nil
	}
	return &ValidationError{Fields: v}
}

// isValidEmail does a basic structural check (no external deps).
func isValidEmail(email string) bool {
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return false
	}
	return local != "" && strings.Contains(domain, ".")
}
