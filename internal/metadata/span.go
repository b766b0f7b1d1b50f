package metadata

// Span is a half-open byte interval [Start, End) into a text buffer.
type Span struct {
	Start int
	End   int
}

// DeleteSpans removes every span from s. Offsets refer to the original s and
// spans must be sorted by Start and must not overlap.
func DeleteSpans(s string, spans []Span) string {
	removed := 0
	for _, sp := range spans {
		start, end := sp.Start-removed, sp.End-removed
		s = s[:start] + s[end:]
		removed += sp.End - sp.Start
	}
	return s
}
