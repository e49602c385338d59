package formdoc

import (
	"encoding/json"

	"github.com/goliatone/go-formstate/pkg/form"
)

// Snapshot converts a tree into plain maps suitable for JSON or YAML
// output. Fields carry their value, flags and rule names; Decode accepts
// the result except for predicate rules.
func Snapshot(tree form.Tree) map[string]any {
	out := make(map[string]any, len(tree))
	for key, node := range tree {
		switch n := node.(type) {
		case *form.Field:
			if n == nil {
				continue
			}
			entry := map[string]any{
				"value":    n.Value,
				"touched":  n.Touched,
				"pristine": n.Pristine,
				"valid":    n.Valid,
			}
			if names := n.Validator.Names(); len(names) > 0 {
				entry["validator"] = names
			}
			out[key] = entry
		case form.FieldGroup:
			items := make([]map[string]any, 0, len(n))
			for _, element := range n {
				items = append(items, Snapshot(element))
			}
			out[key] = items
		}
	}
	return out
}

// Report is the serialisable result of validating a form.
type Report struct {
	Valid  bool           `json:"valid"`
	Fields map[string]any `json:"fields"`
	Values map[string]any `json:"values"`
}

// NewReport snapshots tree together with its validity.
func NewReport(tree form.Tree, valid bool) Report {
	return Report{
		Valid:  valid,
		Fields: Snapshot(tree),
		Values: form.Values(tree),
	}
}

// MarshalReport renders an indented JSON report.
func MarshalReport(tree form.Tree, valid bool) ([]byte, error) {
	return json.MarshalIndent(NewReport(tree, valid), "", "  ")
}
