package metadata

import (
	"errors"
	"strconv"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

const fmDelim = "---"

// Frontmatter is the YAML block at the top of a note.
type Frontmatter struct {
	*Container
}

// splitFrontmatter locates the "---" block that opens text at its first
// byte. It returns the raw block content, the text that follows the closing
// delimiter, and whether a block was found. Decoding is left to the caller.
func splitFrontmatter(text string) (raw []byte, body string, found bool) {
	if !strings.HasPrefix(text, fmDelim) {
		return nil, text, false
	}
	var captured bool
	format := frontmatter.NewFormat(fmDelim, fmDelim, func(data []byte, _ interface{}) error {
		raw = append([]byte(nil), data...)
		captured = true
		return nil
	})
	rest, err := frontmatter.Parse(strings.NewReader(text), nil, format)
	if err != nil {
		return nil, text, false
	}
	body = string(rest)
	if !captured && body == text {
		return nil, text, false
	}
	return raw, body, true
}

// ParseFrontmatter decodes the frontmatter block of text. It returns the
// fields and the text with the block removed. A note without a block yields
// empty fields and the original text.
func ParseFrontmatter(text string, policy *Policy) (*Fields, string, error) {
	raw, body, found := splitFrontmatter(text)
	if !found {
		return NewFields(), text, nil
	}
	fields, err := decodeFrontmatter(raw)
	if err != nil {
		return nil, text, &InvalidFrontmatterError{Err: err}
	}
	policy.applySeparators(fields, KindFrontmatter)
	return fields, body, nil
}

// EraseFrontmatter returns text without its frontmatter block.
func EraseFrontmatter(text string) string {
	_, body, _ := splitFrontmatter(text)
	return body
}

// FrontmatterExists reports whether text carries a frontmatter block that
// decodes to at least one field. Decoding failures count as absent.
func FrontmatterExists(text string, policy *Policy) bool {
	fields, _, err := ParseFrontmatter(text, policy)
	return err == nil && fields.Len() > 0
}

// String renders the block, including both delimiters and a trailing newline.
// Empty frontmatter renders as the empty string.
func (f *Frontmatter) String() string {
	if f.fields.Len() == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmDelim + "\n")
	f.fields.Each(func(key string, values []string) {
		b.WriteString(yamlKey(key))
		b.WriteString(": ")
		if len(values) == 1 {
			b.WriteString(yamlValue(values[0], false))
		} else {
			items := make([]string, len(values))
			for i, v := range values {
				items[i] = yamlValue(v, true)
			}
			b.WriteString("[ " + strings.Join(items, ", ") + " ]")
		}
		b.WriteByte('\n')
	})
	b.WriteString(fmDelim + "\n")
	return b.String()
}

// scalarNode builds an untagged scalar so the encoder keeps v plain whenever
// YAML reads it back as the same text. Values that would read back as null,
// or that span lines, are double quoted.
func scalarNode(v string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Value: v}
	switch {
	case v == "", v == "~", strings.EqualFold(v, "null"):
		n.Style = yaml.DoubleQuotedStyle
	case strings.ContainsAny(v, "\r\n"):
		n.Style = yaml.DoubleQuotedStyle
	}
	return n
}

// encodeFragment marshals doc and returns the text between prefix and
// suffix, or fallback when the encoder produced another shape.
func encodeFragment(doc *yaml.Node, prefix, suffix, fallback string) string {
	out, err := yaml.Marshal(doc)
	if err != nil {
		return fallback
	}
	s := strings.TrimSuffix(string(out), "\n")
	if len(s) < len(prefix)+len(suffix) || !strings.HasPrefix(s, prefix) || !strings.HasSuffix(s, suffix) {
		return fallback
	}
	return s[len(prefix) : len(s)-len(suffix)]
}

func yamlKey(key string) string {
	doc := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
		scalarNode(key),
		{Kind: yaml.ScalarNode, Value: "v"},
	}}
	return encodeFragment(doc, "", ": v", strconv.Quote(key))
}

// yamlValue renders one value. flow selects the stricter rules that apply
// to an item of a "[ ... ]" list.
func yamlValue(v string, flow bool) string {
	if flow {
		doc := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle, Content: []*yaml.Node{scalarNode(v)}}
		return encodeFragment(doc, "[", "]", strconv.Quote(v))
	}
	doc := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
		{Kind: yaml.ScalarNode, Value: "k"},
		scalarNode(v),
	}}
	return encodeFragment(doc, "k: ", "", strconv.Quote(v))
}

// UpdateContent replaces the frontmatter block of text with the rendered
// fields, placing it at the top.
func (f *Frontmatter) UpdateContent(text string) string {
	return f.String() + EraseFrontmatter(text)
}

func decodeFrontmatter(raw []byte) (*Fields, error) {
	fields := NewFields()
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return fields, nil
	}
	root := resolve(doc.Content[0])
	switch {
	case root.Kind == yaml.MappingNode:
	case isNull(root):
		return fields, nil
	default:
		return nil, errors.New("frontmatter is not a mapping")
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := scalarText(resolve(root.Content[i]))
		fields.Set(key, nodeValues(resolve(root.Content[i+1])))
	}
	return fields, nil
}

// nodeValues normalizes a YAML value the same way ToValues normalizes Go
// values: null is empty, scalars keep their literal text, sequences give one
// value per item, and anything nested is kept as a single flow-style value.
func nodeValues(n *yaml.Node) []string {
	switch n.Kind {
	case yaml.ScalarNode:
		if isNull(n) {
			return []string{}
		}
		return []string{n.Value}
	case yaml.SequenceNode:
		out := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			item = resolve(item)
			if isNull(item) {
				continue
			}
			out = append(out, scalarText(item))
		}
		return out
	}
	return []string{flowText(n)}
}

func scalarText(n *yaml.Node) string {
	if n.Kind == yaml.ScalarNode {
		return n.Value
	}
	return flowText(n)
}

func flowText(n *yaml.Node) string {
	cp := *n
	cp.Style |= yaml.FlowStyle
	out, err := yaml.Marshal(&cp)
	if err != nil {
		return n.Value
	}
	return strings.TrimSpace(string(out))
}

func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}
