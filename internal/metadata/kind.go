// Package metadata extracts, edits and re-serializes the metadata embedded in
// Markdown notes: a YAML frontmatter block at the top of the note and
// dataview-style "key:: value" inline fields in the body.
package metadata

import "fmt"

// Kind selects which metadata location an operation targets.
type Kind int

const (
	// KindAll targets both locations. It is the zero value, so an omitted
	// kind means "frontmatter and inline".
	KindAll Kind = iota
	// KindFrontmatter targets the YAML block at the top of the note.
	KindFrontmatter
	// KindInline targets "key:: value" fields in the note body.
	KindInline
	// KindDefault resolves per field through the Policy.
	KindDefault
)

// String returns the configuration vocabulary for k.
func (k Kind) String() string {
	switch k {
	case KindAll:
		return "notemeta"
	case KindFrontmatter:
		return "frontmatter"
	case KindInline:
		return "inline"
	case KindDefault:
		return "default"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind converts a configuration string into a Kind. The empty string
// maps to KindAll.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "notemeta":
		return KindAll, nil
	case "frontmatter":
		return KindFrontmatter, nil
	case "inline":
		return KindInline, nil
	case "default":
		return KindDefault, nil
	}
	return 0, &ArgTypeError{Name: "kind", Given: fmt.Sprintf("%q", s), Expected: `"frontmatter", "inline", "notemeta" or "default"`}
}

// Order is the direction used when sorting keys or values.
type Order string

const (
	// OrderNone skips a sorting step in Container.Order.
	OrderNone Order = ""
	Asc       Order = "asc"
	Desc      Order = "desc"
)

// ParseOrder converts "asc", "desc" or "none" into an Order.
func ParseOrder(s string) (Order, error) {
	switch s {
	case "asc":
		return Asc, nil
	case "desc":
		return Desc, nil
	case "none", "":
		return OrderNone, nil
	}
	return OrderNone, &ArgTypeError{Name: "how", Given: fmt.Sprintf("%q", s), Expected: `"asc", "desc" or "none"`}
}

func checkOrder(how Order) error {
	if how != Asc && how != Desc {
		return &ArgTypeError{Name: "how", Given: fmt.Sprintf("Order(%q)", string(how)), Expected: "metadata.Asc or metadata.Desc"}
	}
	return nil
}

// Position is where newly rendered inline fields are placed in the body.
type Position string

const (
	Bottom Position = "bottom"
	Top    Position = "top"
)

// ParsePosition converts "top" or "bottom" into a Position.
func ParsePosition(s string) (Position, error) {
	switch Position(s) {
	case Bottom, Top:
		return Position(s), nil
	case "":
		return Bottom, nil
	}
	return "", &ArgTypeError{Name: "position", Given: fmt.Sprintf("%q", s), Expected: `"top" or "bottom"`}
}
