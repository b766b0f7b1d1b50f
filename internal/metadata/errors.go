package metadata

import "fmt"

// InvalidFrontmatterError reports a frontmatter block that exists but does not
// decode as a YAML mapping.
type InvalidFrontmatterError struct {
	Err error
}

func (e *InvalidFrontmatterError) Error() string {
	return fmt.Sprintf("invalid frontmatter: %v", e.Err)
}

func (e *InvalidFrontmatterError) Unwrap() error { return e.Err }

// ArgTypeError reports an argument whose value is not one the operation accepts.
type ArgTypeError struct {
	Name     string
	Given    string
	Expected string
}

func (e *ArgTypeError) Error() string {
	return fmt.Sprintf("argument %q is not valid: got %s, expected %s", e.Name, e.Given, e.Expected)
}

// UnsupportedKindError reports a Kind an operation cannot dispatch on.
type UnsupportedKindError struct {
	Op   string
	Kind Kind
}

func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("%s: unsupported metadata kind %s", e.Op, e.Kind)
}
