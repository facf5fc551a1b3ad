package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigError describes one malformed entry of the site declaration.
//
// Path locates the entry inside the declaration (ex: navbar[2].children[0],
// sidebar["/docs/go/"]). Line is the 1-based line in the source file, 0 when unknown.
type ConfigError struct {
	Path    string
	Line    int
	Message string
	Value   string // offending value, if any
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString(e.Path)
	if e.Line > 0 {
		fmt.Fprintf(&b, " (line %d)", e.Line)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Value != "" {
		fmt.Fprintf(&b, " %q", e.Value)
	}
	return b.String()
}

// ConfigErrors aggregates every ConfigError found during one build.
// Builders report all problems at once instead of stopping at the first one.
type ConfigErrors []*ConfigError

func (es ConfigErrors) Error() string {
	switch len(es) {
	case 0:
		return "no configuration errors"
	case 1:
		return es[0].Error()
	}
	lines := make([]string, 0, len(es)+1)
	lines = append(lines, fmt.Sprintf("%d configuration errors:", len(es)))
	for _, e := range es {
		lines = append(lines, "  - "+e.Error())
	}
	return strings.Join(lines, "\n")
}

// Unwrap exposes the individual errors to errors.Is / errors.As.
func (es ConfigErrors) Unwrap() []error {
	out := make([]error, len(es))
	for i, e := range es {
		out[i] = e
	}
	return out
}

// ErrOrNil returns nil for an empty list so callers can `return errs.ErrOrNil()`.
func (es ConfigErrors) ErrOrNil() error {
	if len(es) == 0 {
		return nil
	}
	return es
}

func (es *ConfigErrors) add(path string, line int, msg, value string) {
	*es = append(*es, &ConfigError{Path: path, Line: line, Message: msg, Value: value})
}

// Merge appends the ConfigErrors carried by err. Any other non-nil error is
// recorded under the given path.
func (es *ConfigErrors) Merge(path string, err error) {
	if err == nil {
		return
	}
	var many ConfigErrors
	if errors.As(err, &many) {
		*es = append(*es, many...)
		return
	}
	var one *ConfigError
	if errors.As(err, &one) {
		*es = append(*es, one)
		return
	}
	es.add(path, 0, err.Error(), "")
}

// Add records a single error. It is exported for the source mappers, which
// detect shape problems before the builders run.
func (es *ConfigErrors) Add(path string, line int, msg, value string) {
	es.add(path, line, msg, value)
}
