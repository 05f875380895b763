package kubeopenapi

import "fmt"

// Options controls import behavior for Kubernetes OpenAPI v3 schemas.
type Options struct {
	// Strict turns unsupported keywords, unknown types and unresolved $refs
	// into errors instead of warnings.
	Strict bool
}

// Diag carries non-fatal warnings produced during import.
type Diag interface {
	HasWarnings() bool
	Warnings() []string
}

type simpleDiag struct {
	strict bool
	ws     []string
}

func (d *simpleDiag) HasWarnings() bool        { return len(d.ws) > 0 }
func (d *simpleDiag) Warnings() []string       { return append([]string(nil), d.ws...) }
func (d *simpleDiag) warnf(f string, a ...any) { d.ws = append(d.ws, fmt.Sprintf(f, a...)) }

// unsupported records a warning, or returns it as an error in strict mode.
func (d *simpleDiag) unsupported(f string, a ...any) error {
	if d.strict {
		return fmt.Errorf("kubeopenapi: "+f, a...)
	}
	d.warnf(f, a...)
	return nil
}
