package text

import (
	"bytes"
	"go/scanner"
	"go/token"
)

// byteRange is a half-open range of byte offsets.
type byteRange struct{ start, end int }

func (r byteRange) contains(start, end int) bool {
	return start >= r.start && end <= r.end
}

// verbatimRanges returns the ranges of file content that must be kept byte for
// byte in units of language. For Go these are raw string literals, whose
// trailing blanks are part of the program.
func verbatimRanges(language string, content []byte) []byteRange {
	if language != "go" {
		return nil
	}
	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(content))
	var s scanner.Scanner
	s.Init(file, content, nil, 0)

	var out []byteRange
	for {
		pos, tok, lit := s.Scan()
		if tok == token.EOF {
			return out
		}
		if tok != token.STRING || len(lit) == 0 || lit[0] != '`' {
			continue
		}
		start := file.Offset(pos)
		// lit has carriage returns removed; measure the literal in content.
		closing := bytes.IndexByte(content[start+1:], '`')
		if closing < 0 {
			out = append(out, byteRange{start: start, end: len(content)})
			return out
		}
		out = append(out, byteRange{start: start, end: start + closing + 2})
	}
}

func insideAny(ranges []byteRange, start, end int) bool {
	for _, r := range ranges {
		if r.contains(start, end) {
			return true
		}
	}
	return false
}
