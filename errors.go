package propschema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidArgument marks structural misuse of the builder API, such as
// attaching properties to a non-object Property.
var ErrInvalidArgument = errors.New("propschema: invalid argument")

// invalidArgument panics with an error wrapping ErrInvalidArgument.
func invalidArgument(format string, a ...any) {
	panic(fmt.Errorf("%w: "+format, append([]any{ErrInvalidArgument}, a...)...))
}

// Issue codes produced by the rule engine. Rule tokens double as codes, so
// only the ones the engine reports itself are listed.
const (
	CodeRequired   = "required"
	CodeProhibited = "prohibited"
	CodeInvalid    = "invalid"
)

// Issue represents a single validation entry.
type Issue struct {
	Path    string // JSON Pointer (for example: /email).
	Code    string // Rule name that failed, e.g. "required" or "email".
	Message string
	// Params carries the rule parameters (e.g., {"min":"3"}) for i18n and
	// observability.
	Params map[string]any
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// PointerFor renders a field name (dot separated for nested fields) as a
// JSON Pointer.
func PointerFor(field string) string {
	if field == "" {
		return "/"
	}
	r := strings.NewReplacer("~", "~0", "/", "~1")
	parts := strings.Split(field, ".")
	for i, p := range parts {
		parts[i] = r.Replace(p)
	}
	return "/" + strings.Join(parts, "/")
}
