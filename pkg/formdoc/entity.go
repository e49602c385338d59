package formdoc

import (
	"fmt"
	"math"
	"os"

	"github.com/goliatone/go-formstate/pkg/form"
)

// LoadEntityFile reads and decodes an update payload from disk.
func LoadEntityFile(path string, options ...Option) (form.Entity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("formdoc: read %s: %w", path, err)
	}
	return DecodeEntity(data, path, options...)
}

// DecodeEntity parses an update payload for Engine.UpdateAll. Objects with
// `index` and `fields` become group references, objects with a `validator`
// become validator patches, and everything else is a raw value.
func DecodeEntity(data []byte, source string, options ...Option) (form.Entity, error) {
	raw, err := parseDocument(data, source)
	if err != nil {
		return nil, err
	}
	return newDecoder(source, options).entity(raw, "")
}

func (d *decoder) entity(raw map[string]any, prefix string) (form.Entity, error) {
	out := make(form.Entity, len(raw))
	for key, value := range raw {
		entry, err := d.entry(value, joinPath(prefix, key))
		if err != nil {
			return nil, err
		}
		out[key] = entry
	}
	return out, nil
}

func (d *decoder) entry(value any, path string) (any, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return value, nil
	}

	if rawIndex, hasIndex := obj["index"]; hasIndex {
		if rawFields, hasFields := obj["fields"]; hasFields {
			index, err := d.index(rawIndex, path)
			if err != nil {
				return nil, err
			}
			ref := form.GroupRef{Index: index}
			if rawFields != nil {
				fields, ok := rawFields.(map[string]any)
				if !ok {
					return nil, d.errorf("%s.fields: expected a mapping", path)
				}
				if ref.Fields, err = d.entity(fields, path); err != nil {
					return nil, err
				}
			}
			return ref, nil
		}
	}

	if spec, ok := obj["validator"]; ok {
		validator, err := d.validator(spec, path)
		if err != nil {
			return nil, err
		}
		patch := form.Patch{Validator: validator}
		if v, ok := obj["value"]; ok {
			patch = patch.WithValue(v)
		}
		return patch, nil
	}

	return value, nil
}

func (d *decoder) index(value any, path string) (int, error) {
	switch n := value.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, d.errorf("%s.index: %v is not an integer", path, n)
		}
		return int(n), nil
	default:
		return 0, d.errorf("%s.index: expected an integer, got %T", path, value)
	}
}
