package diag

import (
	"fmt"

	"remedy/internal/source"
)

// Descriptor declares a diagnostic identifier a rule can produce.
type Descriptor struct {
	ID       string
	Title    string
	Severity Severity
}

type Note struct {
	Span source.Span
	Msg  string
}

// TextEdit replaces the bytes covered by Span with NewText.
// OldText, when set, guards the edit: it is applied only if the covered bytes
// still equal OldText.
type TextEdit struct {
	Span    source.Span
	NewText string
	OldText string
}

// Diagnostic is a finding reported by a rule. Values are never mutated once
// reported; every analysis pass produces fresh ones.
type Diagnostic struct {
	ID       string
	Severity Severity
	Message  string
	Primary  source.Span
	Notes    []Note
}

// New builds a diagnostic.
func New(id string, sev Severity, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		ID:       id,
		Severity: sev,
		Message:  msg,
		Primary:  primary,
	}
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	notes := make([]Note, 0, len(d.Notes)+1)
	notes = append(notes, d.Notes...)
	d.Notes = append(notes, Note{Span: sp, Msg: msg})
	return d
}

// Fingerprint identifies a diagnostic instance independently of file versions:
// identifier, path, byte range and message.
type Fingerprint struct {
	ID      string
	Path    string
	Start   uint32
	End     uint32
	Message string
}

func (f Fingerprint) String() string {
	return fmt.Sprintf("%s@%s:%d-%d", f.ID, f.Path, f.Start, f.End)
}

// Fingerprint computes the fingerprint of d. fs resolves the file path; a nil
// fs or unknown file leaves Path empty.
func (d Diagnostic) Fingerprint(fs *source.FileSet) Fingerprint {
	fp := Fingerprint{
		ID:      d.ID,
		Start:   d.Primary.Start,
		End:     d.Primary.End,
		Message: d.Message,
	}
	if fs != nil {
		if f := fs.Get(d.Primary.File); f != nil {
			fp.Path = f.Path
		}
	}
	return fp
}
