package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"remedy/internal/diag"
	"remedy/internal/fix"
	"remedy/internal/source"
)

// PrettyOpts configures human-readable output.
type PrettyOpts struct {
	Color bool
	// Unresolved limits output to findings no provider could fix.
	Unresolved bool
}

type palette struct {
	path, caret, note *color.Color
	sev               map[diag.Severity]*color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		path:  color.New(color.Bold),
		caret: color.New(color.FgGreen, color.Bold),
		note:  color.New(color.FgCyan),
		sev: map[diag.Severity]*color.Color{
			diag.SevInfo:    color.New(color.FgBlue, color.Bold),
			diag.SevWarning: color.New(color.FgYellow, color.Bold),
			diag.SevError:   color.New(color.FgRed, color.Bold),
		},
	}
	all := []*color.Color{p.path, p.caret, p.note}
	for _, c := range p.sev {
		all = append(all, c)
	}
	for _, c := range all {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Pretty prints the findings left in each unit:
//
//	<path>:<line>:<col>: <severity> <ID>: <message>
//	    <source line>
//	    ^~~~
func Pretty(w io.Writer, results []*fix.Result, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	for _, res := range results {
		if res == nil || res.Snapshot == nil {
			continue
		}
		items := res.Outstanding
		if opts.Unresolved {
			items = res.Unresolved
		}
		fs := res.Snapshot.FileSet()
		for _, d := range items {
			if err := prettyOne(w, fs, d, p); err != nil {
				return err
			}
		}
	}
	return nil
}

func prettyOne(w io.Writer, fs *source.FileSet, d diag.Diagnostic, p palette) error {
	f := fs.Get(d.Primary.File)
	if f == nil {
		_, err := fmt.Fprintf(w, "%s %s: %s\n", p.severity(d.Severity), d.ID, d.Message)
		return err
	}
	start, end := fs.Resolve(d.Primary)
	path := f.FormatPath("relative", fs.BaseDir())
	if _, err := fmt.Fprintf(w, "%s: %s %s: %s\n",
		p.path.Sprintf("%s:%d:%d", path, start.Line, start.Col),
		p.severity(d.Severity), d.ID, d.Message); err != nil {
		return err
	}

	line := f.GetLine(start.Line)
	endCol := uint32(len(line)) + 1
	if end.Line == start.Line && end.Col <= endCol {
		endCol = end.Col
	}
	if _, err := fmt.Fprintf(w, "    %s\n    %s\n", line, p.caret.Sprint(caret(line, start.Col, endCol))); err != nil {
		return err
	}
	for _, n := range d.Notes {
		if _, err := fmt.Fprintf(w, "    %s %s\n", p.note.Sprint("note:"), n.Msg); err != nil {
			return err
		}
	}
	return nil
}

func (p palette) severity(s diag.Severity) string {
	if c, ok := p.sev[s]; ok {
		return c.Sprint(s.String())
	}
	return s.String()
}

// caret underlines the byte columns [startCol, endCol) of line, measured in
// display cells so wide runes and tabs keep the marker aligned.
func caret(line string, startCol, endCol uint32) string {
	if startCol == 0 {
		startCol = 1
	}
	lo := min(int(startCol-1), len(line))
	hi := min(max(int(endCol-1), lo), len(line))

	var b strings.Builder
	for _, r := range line[:lo] {
		if r == '\t' {
			b.WriteByte('\t')
			continue
		}
		b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	width := runewidth.StringWidth(line[lo:hi])
	b.WriteByte('^')
	if width > 1 {
		b.WriteString(strings.Repeat("~", width-1))
	}
	return b.String()
}
