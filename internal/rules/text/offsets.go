package text

import (
	"fortio.org/safecast"

	"remedy/internal/source"
)

func spanOf(file *source.File, start, end int) (source.Span, error) {
	s, err := safecast.Conv[uint32](start)
	if err != nil {
		return source.Span{}, err
	}
	e, err := safecast.Conv[uint32](end)
	if err != nil {
		return source.Span{}, err
	}
	return source.Span{File: file.ID, Start: s, End: e}, nil
}

// lineEnding returns "\r\n" when content already uses CRLF line endings.
func lineEnding(content []byte) string {
	for i, b := range content {
		if b == '\n' {
			if i > 0 && content[i-1] == '\r' {
				return "\r\n"
			}
			return "\n"
		}
	}
	return "\n"
}
