package fix

import (
	"fortio.org/safecast"

	"remedy/internal/diag"
	"remedy/internal/source"
)

// exclusions holds the fingerprints of findings no provider could fix. They are
// kept in step with committed edits so a skipped instance is still recognized
// after text before it moved.
type exclusions map[diag.Fingerprint]struct{}

func (ex exclusions) add(fp diag.Fingerprint) {
	ex[fp] = struct{}{}
}

// shift moves every fingerprint through batches of edits, in order. Each batch
// holds edits against one snapshot. A fingerprint whose range an edit touches
// is dropped: the instance it named no longer exists as such.
func (ex exclusions) shift(fs *source.FileSet, batches [][]diag.TextEdit) {
	for _, batch := range batches {
		if len(ex) == 0 || len(batch) == 0 {
			return
		}
		moved := make(map[diag.Fingerprint]struct{}, len(ex))
		for fp := range ex {
			if next, ok := shiftFingerprint(fs, fp, batch); ok {
				moved[next] = struct{}{}
			}
		}
		clear(ex)
		for fp := range moved {
			ex[fp] = struct{}{}
		}
	}
}

func shiftFingerprint(fs *source.FileSet, fp diag.Fingerprint, batch []diag.TextEdit) (diag.Fingerprint, bool) {
	var delta int64
	for _, te := range batch {
		f := fs.Get(te.Span.File)
		if f == nil || f.Path != fp.Path {
			continue
		}
		if te.Span.Start < fp.End && te.Span.End > fp.Start {
			return fp, false
		}
		if te.Span.End <= fp.Start {
			delta += int64(len(te.NewText)) - int64(te.Span.End-te.Span.Start)
		}
	}
	start, err := safecast.Conv[uint32](int64(fp.Start) + delta)
	if err != nil {
		return fp, false
	}
	end, err := safecast.Conv[uint32](int64(fp.End) + delta)
	if err != nil {
		return fp, false
	}
	fp.Start, fp.End = start, end
	return fp, true
}
