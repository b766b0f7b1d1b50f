package noteservice

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notemeta/internal/metadata"
)

// Edit operations.
const (
	OpAdd            = "add"
	OpRemove         = "remove"
	OpMove           = "move"
	OpMoveToDefaults = "move_to_defaults"
	OpRemoveEmpty    = "remove_empty"
	OpDedupe         = "dedupe"
	OpOrder          = "order"
)

var (
	kindNames     = []any{"frontmatter", "inline", "notemeta", "default"}
	concreteKinds = []any{"frontmatter", "inline"}
	orderNames    = []any{"asc", "desc", "none"}
)

// Edit is one metadata change applied to a note.
//
// Kind defaults to "default" for add and to "notemeta" (both kinds) for
// every other operation. For move, Kind is the source and To the target.
type Edit struct {
	Op              string   `json:"op"`
	Key             string   `json:"key,omitempty"`
	Keys            []string `json:"keys,omitempty"`
	Values          []string `json:"values,omitempty"`
	Kind            string   `json:"kind,omitempty"`
	To              string   `json:"to,omitempty"`
	Overwrite       bool     `json:"overwrite,omitempty"`
	AllowDuplicates bool     `json:"allow_duplicates,omitempty"`
	OrderKeys       string   `json:"order_keys,omitempty"`
	OrderValues     string   `json:"order_values,omitempty"`
}

// Validate implements validation.Validatable.
func (e Edit) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Op, validation.Required,
			validation.In(OpAdd, OpRemove, OpMove, OpMoveToDefaults, OpRemoveEmpty, OpDedupe, OpOrder)),
		validation.Field(&e.Key, validation.When(e.Op == OpAdd || e.Op == OpRemove, validation.Required)),
		validation.Field(&e.Kind, validation.In(kindNames...),
			validation.When(e.Op == OpMove, validation.Required, validation.In(concreteKinds...))),
		validation.Field(&e.To, validation.When(e.Op == OpMove, validation.Required, validation.In(concreteKinds...))),
		validation.Field(&e.OrderKeys, validation.In(orderNames...)),
		validation.Field(&e.OrderValues, validation.In(orderNames...)),
	)
}

func (e Edit) keys() []string {
	if e.Key == "" {
		return e.Keys
	}
	return append([]string{e.Key}, e.Keys...)
}

// values keeps an absent list distinct from an empty one: remove deletes
// the whole key only when no values are given.
func (e Edit) values() any {
	if len(e.Values) == 0 {
		return nil
	}
	return e.Values
}

func (e Edit) kind(fallback metadata.Kind) (metadata.Kind, error) {
	if e.Kind == "" {
		return fallback, nil
	}
	return metadata.ParseKind(e.Kind)
}

// Apply runs the edit against m.
func (e Edit) Apply(m *metadata.NoteMetadata) error {
	if err := e.Validate(); err != nil {
		return err
	}
	fallback := metadata.KindAll
	if e.Op == OpAdd {
		fallback = metadata.KindDefault
	}
	kind, err := e.kind(fallback)
	if err != nil {
		return err
	}

	switch e.Op {
	case OpAdd:
		var opts []metadata.AddOption
		if e.Overwrite {
			opts = append(opts, metadata.WithOverwrite())
		}
		if e.AllowDuplicates {
			opts = append(opts, metadata.WithDuplicates())
		}
		return m.Add(e.Key, e.values(), kind, opts...)
	case OpRemove:
		return m.Remove(e.Key, e.values(), kind)
	case OpMove:
		to, err := metadata.ParseKind(e.To)
		if err != nil {
			return err
		}
		return m.Move(kind, to, e.keys()...)
	case OpMoveToDefaults:
		return m.MoveToDefaults()
	case OpRemoveEmpty:
		return m.RemoveEmpty(kind)
	case OpDedupe:
		return m.RemoveDuplicateValues(kind, e.keys()...)
	case OpOrder:
		orderKeys, err := metadata.ParseOrder(e.OrderKeys)
		if err != nil {
			return err
		}
		orderValues, err := metadata.ParseOrder(e.OrderValues)
		if err != nil {
			return err
		}
		return m.Order(kind, orderKeys, orderValues, e.keys()...)
	}
	return fmt.Errorf("unknown op %q", e.Op)
}
