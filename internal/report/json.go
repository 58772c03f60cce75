package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"remedy/internal/diag"
	"remedy/internal/fix"
	"remedy/internal/source"
)

// Meta identifies the run.
type Meta struct {
	RunID   string
	Version string
}

// LocationJSON is a position in a file.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// FindingJSON is a diagnostic left in the unit.
type FindingJSON struct {
	Severity string       `json:"severity"`
	ID       string       `json:"id"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// FixJSON is one applied edit.
type FixJSON struct {
	ID        string `json:"id"`
	Strategy  string `json:"strategy"`
	Provider  string `json:"provider"`
	Title     string `json:"title"`
	Instances int    `json:"instances"`
	Version   uint64 `json:"version"`
}

// UnitJSON is the outcome for one unit.
type UnitJSON struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Status      string         `json:"status"`
	Error       string         `json:"error,omitempty"`
	Iterations  int            `json:"iterations"`
	FixedBulk   map[string]int `json:"fixed_bulk"`
	FixedSingle map[string]int `json:"fixed_single"`
	Applied     []FixJSON      `json:"applied"`
	Unresolved  []FindingJSON  `json:"unresolved,omitempty"`
	Outstanding []FindingJSON  `json:"outstanding,omitempty"`
}

// Report is the root of the JSON output.
type Report struct {
	RunID   string     `json:"run_id"`
	Version string     `json:"version,omitempty"`
	Status  string     `json:"status"`
	Units   []UnitJSON `json:"units"`
	Count   int        `json:"count"`
	Fixed   int        `json:"fixed"`
}

// Build assembles the report. Results are kept in order; nil results are skipped.
func Build(meta Meta, results []*fix.Result) Report {
	out := Report{
		RunID:   meta.RunID,
		Version: meta.Version,
		Status:  fix.StatusSuccess.String(),
		Units:   make([]UnitJSON, 0, len(results)),
	}
	for _, res := range results {
		if res == nil {
			continue
		}
		unit := buildUnit(res)
		if !res.Succeeded() {
			out.Status = fix.StatusFailure.String()
		}
		if res.Ledger != nil {
			out.Fixed += res.Ledger.Total()
		}
		out.Units = append(out.Units, unit)
	}
	out.Count = len(out.Units)
	return out
}

func buildUnit(res *fix.Result) UnitJSON {
	unit := UnitJSON{
		ID:          string(res.Unit),
		Name:        unitName(res),
		Status:      res.Status.String(),
		Iterations:  res.Iterations,
		FixedBulk:   map[string]int{},
		FixedSingle: map[string]int{},
		Applied:     make([]FixJSON, 0, len(res.Applied)),
	}
	if res.Err != nil {
		unit.Error = res.Err.Error()
	}
	if res.Ledger != nil {
		unit.FixedBulk = res.Ledger.Bulk()
		unit.FixedSingle = res.Ledger.Single()
	}
	for _, a := range res.Applied {
		unit.Applied = append(unit.Applied, FixJSON(a))
	}
	var fs *source.FileSet
	if res.Snapshot != nil {
		fs = res.Snapshot.FileSet()
	}
	unit.Unresolved = findings(res.Unresolved, fs)
	unit.Outstanding = findings(res.Outstanding, fs)
	return unit
}

func unitName(res *fix.Result) string {
	if res.Snapshot == nil {
		return string(res.Unit)
	}
	if u, ok := res.Snapshot.Unit(res.Unit); ok {
		return u.Name
	}
	return string(res.Unit)
}

func findings(ds []diag.Diagnostic, fs *source.FileSet) []FindingJSON {
	if len(ds) == 0 {
		return nil
	}
	out := make([]FindingJSON, 0, len(ds))
	for _, d := range ds {
		out = append(out, FindingJSON{
			Severity: d.Severity.String(),
			ID:       d.ID,
			Message:  d.Message,
			Location: makeLocation(d.Primary, fs),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Location.File != out[j].Location.File {
			return out[i].Location.File < out[j].Location.File
		}
		return out[i].Location.StartByte < out[j].Location.StartByte
	})
	return out
}

func makeLocation(span source.Span, fs *source.FileSet) LocationJSON {
	loc := LocationJSON{StartByte: span.Start, EndByte: span.End}
	if fs == nil {
		return loc
	}
	f := fs.Get(span.File)
	if f == nil {
		return loc
	}
	loc.File = f.FormatPath("relative", fs.BaseDir())
	start, end := fs.Resolve(span)
	loc.StartLine, loc.StartCol = start.Line, start.Col
	loc.EndLine, loc.EndCol = end.Line, end.Col
	return loc
}

// JSON writes the report as indented JSON.
func JSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteFile writes the report to path, creating parent directories.
func WriteFile(path string, r Report) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := JSON(f, r); err != nil {
		_ = f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}
