package form

import (
	"maps"
	"slices"
)

// Node is either a *Field or a FieldGroup.
type Node interface {
	isNode()
}

// Field is a leaf of the tree.
type Field struct {
	Value     any       `json:"value"`
	Validator Validator `json:"-"`
	// Touched is set once the field has been validated.
	Touched bool `json:"touched"`
	// Pristine stays true until the value or validator is updated. Hydrate
	// and Reset restore it.
	Pristine bool `json:"pristine"`
	Valid    bool `json:"valid"`
}

func (*Field) isNode() {}

// NewField returns a pristine, untouched and valid field.
func NewField(value any, rules ...Rule) *Field {
	f := &Field{Value: value, Pristine: true, Valid: true}
	if len(rules) > 0 {
		f.Validator = Rules(rules...)
	}
	return f
}

// FieldGroup is an ordered list of sub-trees, one per repeated entry.
type FieldGroup []Tree

func (FieldGroup) isNode() {}

// Tree maps field names to fields or groups.
type Tree map[string]Node

// Field returns the leaf stored under name.
func (t Tree) Field(name string) (*Field, bool) {
	f, ok := t[name].(*Field)
	return f, ok && f != nil
}

// Group returns the group stored under name.
func (t Tree) Group(name string) (FieldGroup, bool) {
	g, ok := t[name].(FieldGroup)
	return g, ok
}

// Keys returns the tree keys in lexical order.
func (t Tree) Keys() []string {
	return slices.Sorted(maps.Keys(t))
}

// GroupRef directs an update to the element at Index of a group.
type GroupRef struct {
	Index  int
	Fields Entity
}

// Group packages an element position and the partial update to apply to it.
func Group(index int, fields Entity) GroupRef {
	return GroupRef{Index: index, Fields: fields}
}

// Entity is a bulk update payload keyed by field name. Values are a
// GroupRef, a Patch, nil or the new raw field value.
type Entity map[string]any

// Patch replaces a field validator and optionally its value.
type Patch struct {
	Validator Validator
	Value     any
	HasValue  bool
}

// SetValidator returns a Patch replacing the validator with rules.
func SetValidator(rules ...Rule) Patch {
	return Patch{Validator: Rules(rules...)}
}

// WithValue returns a copy of p that also sets the field value.
func (p Patch) WithValue(value any) Patch {
	p.Value = value
	p.HasValue = true
	return p
}

// Values extracts the plain values of a tree: fields become their value
// and groups a slice of maps.
func Values(tree Tree) map[string]any {
	out := make(map[string]any, len(tree))
	for key, node := range tree {
		switch n := node.(type) {
		case *Field:
			if n != nil {
				out[key] = n.Value
			}
		case FieldGroup:
			items := make([]map[string]any, 0, len(n))
			for _, element := range n {
				items = append(items, Values(element))
			}
			out[key] = items
		}
	}
	return out
}

// CloneShape returns a new tree with the structure and validators of tree
// but fresh fields: nil values, pristine, untouched and valid. Validators
// are shared, not copied.
func CloneShape(tree Tree) Tree {
	out := make(Tree, len(tree))
	for key, node := range tree {
		switch n := node.(type) {
		case *Field:
			if n == nil {
				continue
			}
			f := NewField(nil)
			f.Validator = n.Validator
			out[key] = f
		case FieldGroup:
			clone := make(FieldGroup, 0, len(n))
			for _, element := range n {
				clone = append(clone, CloneShape(element))
			}
			out[key] = clone
		}
	}
	return out
}
