package source

import "fmt"

// Severity is the level of a Diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// Diagnostic is a single error, warning, or note with a stable code and a
// primary source span. See codes.go for the fixed set of codes.
type Diagnostic struct {
	Code      string
	Severity  Severity
	Message   string
	Primary   Span
	Secondary []Span
	Help      string // empty if there is no help text
}

func (d Diagnostic) dedupeKey() string {
	return fmt.Sprintf("%s|%d:%d:%d|%s", d.Code, d.Primary.File, d.Primary.Start, d.Primary.End, d.Message)
}

// Bag collects diagnostics emitted by any compiler stage. Emission is
// idempotent per (code, primary span, message); a second emit of an
// identical diagnostic is dropped rather than duplicated.
type Bag struct {
	diags []Diagnostic
	seen  map[string]bool
}

// NewBag returns an empty diagnostic bag.
func NewBag() *Bag {
	return &Bag{seen: make(map[string]bool)}
}

// Emit appends d to the bag unless an identical diagnostic was already
// emitted.
func (b *Bag) Emit(d Diagnostic) {
	key := d.dedupeKey()
	if b.seen[key] {
		return
	}
	b.seen[key] = true
	b.diags = append(b.diags, d)
}

// Errorf emits an error-severity diagnostic with the given code and
// formatted message.
func (b *Bag) Errorf(code string, span Span, format string, args ...interface{}) {
	b.Emit(Diagnostic{Code: code, Severity: SeverityError, Message: fmt.Sprintf(format, args...), Primary: span})
}

// Warnf emits a warning-severity diagnostic.
func (b *Bag) Warnf(code string, span Span, format string, args ...interface{}) {
	b.Emit(Diagnostic{Code: code, Severity: SeverityWarning, Message: fmt.Sprintf(format, args...), Primary: span})
}

// HadErrors reports whether any error-severity diagnostic was emitted.
func (b *Bag) HadErrors() bool {
	for _, d := range b.diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Drain returns all collected diagnostics, ordered by emission order (which
// callers are expected to have produced in source order), and clears the bag.
func (b *Bag) Drain() []Diagnostic {
	out := b.diags
	b.diags = nil
	b.seen = make(map[string]bool)
	return out
}

// All returns the collected diagnostics without clearing the bag.
func (b *Bag) All() []Diagnostic {
	return b.diags
}
