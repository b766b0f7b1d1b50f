package metadata

import (
	"fmt"
	"regexp"
	"strings"
)

const keyClass = `[A-Za-z][A-Za-z0-9_ -]*`

var (
	// inlineRe matches a live "key:: values" annotation. beg is whatever
	// precedes the key on the line.
	inlineRe = regexp.MustCompile(`(?P<beg>.*?)(?P<key>` + keyClass + `)::(?P<values>.*)`)
	// inlineLineRe is inlineRe plus the line break, so deleting a match
	// removes the whole line.
	inlineLineRe = regexp.MustCompile(inlineRe.String() + `\n?`)
	// enclosedRe matches "[key:: value]" or "(key:: value)". A line that
	// matches it is never treated as a field.
	enclosedRe = regexp.MustCompile(`(?P<beg>.*?)(?P<open>[(\[])(?P<key>.*?)::(?P<values>.*?)(?P<close>[)\]])(?P<end>.*)`)
	// calloutArtefact is a callout header left behind once its fields are gone.
	calloutArtefact = regexp.MustCompile(regexp.QuoteMeta(calloutHeader) + `(\n\n|$)`)

	inlineKeyIdx    = inlineRe.SubexpIndex("key")
	inlineValuesIdx = inlineRe.SubexpIndex("values")
	inlineBegIdx    = inlineRe.SubexpIndex("beg")
)

const calloutHeader = "> [!info]- metadata"

// Inline holds the "key:: value" fields of a note body.
type Inline struct {
	*Container
}

// Template renders inline fields as text.
type Template func(*Fields) string

// TemplateStandard renders one "key:: v1, v2" line per field.
func TemplateStandard(f *Fields) string {
	lines := make([]string, 0, f.Len())
	f.Each(func(key string, values []string) {
		lines = append(lines, fieldLine(key, values))
	})
	return strings.Join(lines, "\n")
}

// TemplateCallout renders the fields inside a folded "info" callout.
func TemplateCallout(f *Fields) string {
	lines := make([]string, 0, f.Len()+1)
	lines = append(lines, calloutHeader)
	f.Each(func(key string, values []string) {
		lines = append(lines, "> "+fieldLine(key, values))
	})
	return strings.Join(lines, "\n")
}

// ParseTemplate returns the built-in template called name ("standard" or
// "callout"). The empty name selects standard.
func ParseTemplate(name string) (Template, error) {
	switch name {
	case "", "standard":
		return TemplateStandard, nil
	case "callout":
		return TemplateCallout, nil
	}
	return nil, &ArgTypeError{Name: "template", Given: fmt.Sprintf("%q", name), Expected: `"standard" or "callout"`}
}

func fieldLine(key string, values []string) string {
	return key + ":: " + strings.Join(values, ", ")
}

func isLiveLine(line string) bool {
	return inlineRe.MatchString(line) && !enclosedRe.MatchString(line)
}

// ParseInline collects the live inline fields of text. Repeated keys
// accumulate their values; key order follows first occurrence.
func ParseInline(text string, policy *Policy) *Fields {
	joined := NewFields()
	for _, line := range strings.Split(text, "\n") {
		if !isLiveLine(line) {
			continue
		}
		m := inlineRe.FindStringSubmatch(line)
		key := strings.TrimSpace(m[inlineKeyIdx])
		prev, _ := joined.Get(key)
		joined.Set(key, append(prev, m[inlineValuesIdx]))
	}

	fields := NewFields()
	joined.Each(func(key string, raw []string) {
		fields.Set(key, splitTrim(strings.Join(raw, ","), ","))
	})
	policy.applySeparators(fields, KindInline)
	return fields
}

// EraseInline drops every line holding a live field, along with a dangling
// callout header.
func EraseInline(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if isLiveLine(line) {
			continue
		}
		kept = append(kept, line)
	}
	return calloutArtefact.ReplaceAllString(strings.Join(kept, "\n"), "")
}

// InlineExists reports whether text holds at least one live inline field.
func InlineExists(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if isLiveLine(line) {
			return true
		}
	}
	return false
}

// Render renders the fields with tmpl, leaving out the ignored keys. Nothing
// left to render gives the empty string. A nil tmpl means TemplateStandard.
func (in *Inline) Render(tmpl Template, ignore ...string) string {
	if tmpl == nil {
		tmpl = TemplateStandard
	}
	f := in.fields.Clone()
	for _, key := range ignore {
		f.Delete(key)
	}
	if f.Len() == 0 {
		return ""
	}
	return tmpl(f)
}

// String renders every field with the standard template.
func (in *Inline) String() string {
	return in.Render(TemplateStandard)
}

// UpdateContent writes the fields back into text. In place, existing
// annotations are rewritten where they stand and only new fields are placed
// at position; otherwise every annotation is erased and all fields are placed
// at position. The result is trimmed.
func (in *Inline) UpdateContent(text string, position Position, inplace bool, tmpl Template) (string, error) {
	if position != Top && position != Bottom {
		return "", &ArgTypeError{Name: "position", Given: fmt.Sprintf("Position(%q)", string(position)), Expected: "metadata.Top or metadata.Bottom"}
	}
	var touched []string
	if inplace {
		text, touched = in.updateInPlace(text)
	} else {
		text = EraseInline(text)
	}

	rendered := in.Render(tmpl, touched...)
	sep := separator(text, position)
	var out string
	if position == Top {
		out = rendered + sep + text
	} else {
		out = text + sep + rendered
	}
	return strings.TrimSpace(out), nil
}

// updateInPlace deletes annotations of removed keys and repeated keys, then
// rewrites the remaining ones with the current values. It returns the new
// text and the keys it rewrote.
func (in *Inline) updateInPlace(text string) (string, []string) {
	var removed []Span
	for _, m := range liveMatches(text) {
		if !in.fields.Has(m.key) {
			removed = append(removed, m.span)
		}
	}
	text = DeleteSpans(text, removed)

	var redundant []Span
	seen := make(map[string]struct{})
	for _, m := range liveMatches(text) {
		if _, dup := seen[m.key]; dup {
			redundant = append(redundant, m.span)
			continue
		}
		seen[m.key] = struct{}{}
	}
	text = DeleteSpans(text, redundant)

	var (
		b         strings.Builder
		last      int
		touched   []string
		rewritten = make(map[string]bool)
	)
	for _, loc := range inlineRe.FindAllStringSubmatchIndex(text, -1) {
		line := text[loc[0]:loc[1]]
		if enclosedRe.MatchString(line) {
			continue
		}
		key := strings.TrimSpace(text[loc[2*inlineKeyIdx]:loc[2*inlineKeyIdx+1]])
		values, ok := in.fields.Get(key)
		if !ok {
			continue
		}
		beg := text[loc[2*inlineBegIdx]:loc[2*inlineBegIdx+1]]
		b.WriteString(text[last:loc[0]])
		b.WriteString(beg + fieldLine(key, values))
		if strings.HasSuffix(line, "\r") {
			b.WriteByte('\r')
		}
		last = loc[1]
		if !rewritten[key] {
			rewritten[key] = true
			touched = append(touched, key)
		}
	}
	b.WriteString(text[last:])
	return b.String(), touched
}

type liveMatch struct {
	key  string
	span Span
}

// liveMatches lists, in document order, the line-consuming matches that are
// not vetoed by the enclosed form.
func liveMatches(text string) []liveMatch {
	var out []liveMatch
	for _, loc := range inlineLineRe.FindAllStringSubmatchIndex(text, -1) {
		if enclosedRe.MatchString(text[loc[0]:loc[1]]) {
			continue
		}
		out = append(out, liveMatch{
			key:  strings.TrimSpace(text[loc[2*inlineKeyIdx]:loc[2*inlineKeyIdx+1]]),
			span: Span{Start: loc[0], End: loc[1]},
		})
	}
	return out
}

// separator returns the newlines needed between body and a block placed at
// position so that exactly one blank line separates them.
func separator(body string, position Position) string {
	if position == Top {
		switch {
		case body != "" && body[0] != '\n':
			return "\n\n"
		case body != "" && !strings.HasPrefix(body, "\n\n"):
			return "\n"
		}
		return ""
	}
	switch {
	case body != "" && body[len(body)-1] != '\n':
		return "\n\n"
	case len(body) >= 2 && !strings.HasSuffix(body, "\n\n"):
		return "\n"
	}
	return ""
}
