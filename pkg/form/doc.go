// Package form owns a mutable tree of form fields and validates it.
//
// A Tree maps field names to either a *Field (a leaf carrying a value, an
// optional Validator and the touched/pristine/valid flags) or a FieldGroup (an
// ordered list of sub-trees used for repeatable structures such as a list
// of users). Validators are closed sets of rules: Required, Email, Pattern
// and Predicate.
//
// Every operation exists twice. Engine methods act on the tree the engine
// owns; the package level functions take the tree explicitly so callers
// can work on sub-trees (a single group element, for example). Both forms
// mutate the tree in place and never copy it.
//
//	engine := form.New(form.Tree{
//		"email": form.NewField(nil, form.Email{}),
//	})
//	engine.Update("email", "johndoe@gmail.com")
//	_, valid, err := engine.Value()
//
// Neither the Engine nor the free functions are safe for concurrent use.
package form
