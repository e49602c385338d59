package form

import "slices"

// EvaluateField marks the field touched and runs its validator. When acc
// is non-nil and the field has a validator, the field validity is appended
// to it.
func EvaluateField(tree Tree, name string, acc []bool) (Tree, []bool, error) {
	f, err := lookupField(tree, "validate", name)
	if err != nil {
		return tree, acc, err
	}

	f.Touched = true
	if f.Validator == nil {
		f.Valid = true
		return tree, acc, nil
	}

	valid := true
	for _, rule := range f.Validator {
		ok, err := check(name, rule, f.Value)
		if err != nil {
			return tree, acc, err
		}
		if !ok {
			valid = false
		}
	}
	f.Valid = valid
	if acc != nil {
		acc = append(acc, valid)
	}
	return tree, acc, nil
}

// EvaluateForm validates every field of tree, descending into groups. The
// result is false when any field or group element is invalid.
func EvaluateForm(tree Tree, acc []bool) (Tree, bool, error) {
	if acc == nil {
		acc = []bool{}
	}
	acc, err := evaluateTree(tree, acc)
	if err != nil {
		return tree, false, err
	}
	return tree, !slices.Contains(acc, false), nil
}

func evaluateTree(tree Tree, acc []bool) ([]bool, error) {
	for _, key := range tree.Keys() {
		switch node := tree[key].(type) {
		case FieldGroup:
			for _, element := range node {
				_, valid, err := EvaluateForm(element, nil)
				if err != nil {
					return acc, err
				}
				acc = append(acc, valid)
			}
		default:
			var err error
			if _, acc, err = EvaluateField(tree, key, acc); err != nil {
				return acc, err
			}
		}
	}
	return acc, nil
}

// Validate runs EvaluateField and discards the accumulator.
func Validate(tree Tree, name string) (Tree, error) {
	tree, _, err := EvaluateField(tree, name, nil)
	return tree, err
}

// UpdateValidator replaces the validator of name, clears Pristine and
// validates the field.
func UpdateValidator(tree Tree, name string, validator Validator) (Tree, error) {
	f, err := lookupField(tree, "update validator", name)
	if err != nil {
		return tree, err
	}
	f.Validator = validator
	f.Pristine = false
	return Validate(tree, name)
}

// Update sets the value of name. A GroupRef value applies its fields to
// the referenced group element instead. The field is validated afterwards.
func Update(tree Tree, name string, value any) (Tree, error) {
	node, ok := tree[name]
	if !ok {
		return tree, fieldError("update", name, ErrFieldNotFound)
	}

	if ref, ok := asGroupRef(value); ok {
		return tree, updateElement(tree, name, node, ref)
	}

	f, ok := node.(*Field)
	if !ok || f == nil {
		return tree, fieldError("update", name, ErrNotField)
	}
	f.Value = value
	f.Pristine = false
	return Validate(tree, name)
}

// UpdateAll applies entity to tree. Keys missing from tree are ignored.
func UpdateAll(tree Tree, entity Entity) (Tree, error) {
	for _, key := range sortedEntityKeys(entity) {
		if _, ok := tree[key]; !ok {
			continue
		}

		var err error
		switch body := entity[key].(type) {
		case Patch:
			err = applyPatch(tree, key, body)
		case *Patch:
			if body == nil {
				_, err = Update(tree, key, nil)
			} else {
				err = applyPatch(tree, key, *body)
			}
		default:
			_, err = Update(tree, key, body)
		}
		if err != nil {
			return tree, err
		}
	}
	return tree, nil
}

func applyPatch(tree Tree, key string, patch Patch) error {
	if _, err := UpdateValidator(tree, key, patch.Validator); err != nil {
		return err
	}
	if patch.HasValue {
		if _, err := Update(tree, key, patch.Value); err != nil {
			return err
		}
	}
	return nil
}

func updateElement(tree Tree, name string, node Node, ref GroupRef) error {
	if ref.Fields == nil {
		return nil
	}
	group, ok := node.(FieldGroup)
	if !ok {
		return fieldError("update", name, ErrNotGroup)
	}
	if ref.Index < 0 || ref.Index >= len(group) {
		return fieldError("update", name, ErrIndexOutOfRange)
	}
	if group[ref.Index] == nil {
		return nil
	}
	_, err := UpdateAll(group[ref.Index], ref.Fields)
	return err
}

// AddField appends a group element when name holds a group and entity is a
// Tree (or a FieldGroup, whose elements are all appended). A Tree stored
// under a new or non-group key starts a one element group. A *Field or
// FieldGroup otherwise replaces whatever name held. Nothing is validated.
func AddField(tree Tree, name string, entity any) (Tree, error) {
	existing, isGroup := tree[name].(FieldGroup)

	switch e := entity.(type) {
	case Tree:
		if isGroup {
			tree[name] = append(existing, e)
		} else {
			tree[name] = FieldGroup{e}
		}
	case FieldGroup:
		if isGroup {
			tree[name] = append(existing, e...)
		} else {
			tree[name] = e
		}
	case *Field:
		if e == nil {
			return tree, fieldError("add field", name, ErrInvalidNode)
		}
		tree[name] = e
	default:
		return tree, fieldError("add field", name, ErrInvalidNode)
	}
	return tree, nil
}

// RemoveField deletes name. When name holds a group and an index is given,
// only that element is removed; an index outside the group is a no-op.
// Only the first index is used.
func RemoveField(tree Tree, name string, index ...int) Tree {
	group, isGroup := tree[name].(FieldGroup)
	if isGroup && len(index) > 0 {
		i := index[0]
		if i >= 0 && i < len(group) {
			tree[name] = slices.Delete(group, i, i+1)
		}
		return tree
	}
	delete(tree, name)
	return tree
}

// Reset clears the value of name and restores the pristine, untouched and
// valid state.
func Reset(tree Tree, name string) (Tree, error) {
	f, err := lookupField(tree, "reset", name)
	if err != nil {
		return tree, err
	}
	resetField(f)
	return tree, nil
}

func resetField(f *Field) {
	f.Value = ""
	f.Pristine = true
	f.Touched = false
	f.Valid = true
}

// ResetAll resets every field of tree, group elements included.
func ResetAll(tree Tree) Tree {
	for _, node := range tree {
		switch n := node.(type) {
		case FieldGroup:
			for i, element := range n {
				n[i] = ResetAll(element)
			}
		case *Field:
			if n != nil {
				resetField(n)
			}
		}
	}
	return tree
}

// Hydrate copies values and validators from entity onto the fields of
// tree without marking them touched or re-validating. Fields stay
// pristine. For keys holding a group on both sides, the incoming element
// at each index is adopted at that position, appended when the existing
// group is shorter. Keys missing from tree and shape mismatches are
// ignored.
func Hydrate(tree Tree, entity Tree) Tree {
	for key, incoming := range entity {
		current, ok := tree[key]
		if !ok {
			continue
		}

		switch cur := current.(type) {
		case FieldGroup:
			in, ok := incoming.(FieldGroup)
			if !ok {
				continue
			}
			for i, element := range in {
				if i < len(cur) {
					cur[i] = element
				} else {
					cur = append(cur, element)
				}
			}
			tree[key] = cur
		case *Field:
			in, ok := incoming.(*Field)
			if !ok || in == nil || cur == nil {
				continue
			}
			cur.Value = in.Value
			cur.Validator = in.Validator
			cur.Pristine = true
		}
	}
	return tree
}

func lookupField(tree Tree, op, name string) (*Field, error) {
	node, ok := tree[name]
	if !ok {
		return nil, fieldError(op, name, ErrFieldNotFound)
	}
	f, ok := node.(*Field)
	if !ok || f == nil {
		return nil, fieldError(op, name, ErrNotField)
	}
	return f, nil
}

func asGroupRef(value any) (GroupRef, bool) {
	switch ref := value.(type) {
	case GroupRef:
		return ref, true
	case *GroupRef:
		if ref == nil {
			return GroupRef{}, false
		}
		return *ref, true
	default:
		return GroupRef{}, false
	}
}

func sortedEntityKeys(entity Entity) []string {
	keys := make([]string, 0, len(entity))
	for key := range entity {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
