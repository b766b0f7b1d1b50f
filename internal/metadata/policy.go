package metadata

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// GlobalOptions applies to every field without its own default location.
type GlobalOptions struct {
	DefaultMeta string `yaml:"default_meta" toml:"default_meta"`
}

// FieldOptions holds the per-field settings.
type FieldOptions struct {
	FrontmatterSeparators []string `yaml:"frontmatter_separators" toml:"frontmatter_separators"`
	InlineSeparators      []string `yaml:"inline_separators" toml:"inline_separators"`
	DefaultMeta           string   `yaml:"default_meta" toml:"default_meta"`
}

// Validate implements validation.Validatable.
func (o FieldOptions) Validate() error {
	sep := validation.Each(validation.Required, validation.RuneLength(1, 1))
	return validation.ValidateStruct(&o,
		validation.Field(&o.FrontmatterSeparators, sep),
		validation.Field(&o.InlineSeparators, sep),
		validation.Field(&o.DefaultMeta, validation.In("frontmatter", "inline")),
	)
}

// Policy is the per-field lookup table consulted while parsing (separators)
// and while editing (default location). Keys are matched exactly.
// A nil *Policy behaves like an empty one.
type Policy struct {
	Global GlobalOptions           `yaml:"global" toml:"global"`
	Fields map[string]FieldOptions `yaml:"fields" toml:"fields"`
}

// DefaultPolicy stores new fields in frontmatter and splits tags on commas.
func DefaultPolicy() *Policy {
	return &Policy{
		Global: GlobalOptions{DefaultMeta: "frontmatter"},
		Fields: map[string]FieldOptions{
			"tags": {
				FrontmatterSeparators: []string{","},
				InlineSeparators:      []string{","},
			},
		},
	}
}

// Validate checks the vocabulary of every default location and that each
// separator is a single character.
func (p *Policy) Validate() error {
	if err := validation.ValidateStruct(&p.Global,
		validation.Field(&p.Global.DefaultMeta, validation.In("frontmatter", "inline", "notemeta")),
	); err != nil {
		return err
	}
	return validation.Validate(p.Fields)
}

// Separators returns the separators configured for key in the given kind.
func (p *Policy) Separators(key string, kind Kind) []string {
	if p == nil {
		return nil
	}
	opts, ok := p.Fields[key]
	if !ok {
		return nil
	}
	switch kind {
	case KindFrontmatter:
		return opts.FrontmatterSeparators
	case KindInline:
		return opts.InlineSeparators
	}
	return nil
}

// DefaultKind resolves where key lives by default: the field's own
// default_meta, else the global one, else frontmatter.
func (p *Policy) DefaultKind(key string) (Kind, error) {
	if p == nil {
		return KindFrontmatter, nil
	}
	if opts, ok := p.Fields[key]; ok && opts.DefaultMeta != "" {
		return ParseKind(opts.DefaultMeta)
	}
	if p.Global.DefaultMeta != "" {
		return ParseKind(p.Global.DefaultMeta)
	}
	return KindFrontmatter, nil
}

// applySeparators re-splits every configured key: values are joined with the
// separator, split on it again, trimmed, and empty tokens dropped. Multiple
// separators run in sequence.
func (p *Policy) applySeparators(fields *Fields, kind Kind) {
	if p == nil {
		return
	}
	fields.Each(func(key string, values []string) {
		seps := p.Separators(key, kind)
		if len(seps) == 0 {
			return
		}
		for _, sep := range seps {
			values = splitTrim(strings.Join(values, sep), sep)
		}
		fields.Set(key, values)
	})
}

func splitTrim(s, sep string) []string {
	out := []string{}
	for _, tok := range strings.Split(s, sep) {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}
