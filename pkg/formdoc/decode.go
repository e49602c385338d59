package formdoc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formstate/pkg/form"
)

// Option configures decoding.
type Option func(*decoder)

// WithPredicate registers a named predicate that documents can reference
// with `{predicate: name}`.
func WithPredicate(name string, fn form.Predicate) Option {
	return func(d *decoder) {
		name = strings.TrimSpace(name)
		if name == "" || fn == nil {
			return
		}
		d.predicates[name] = fn
	}
}

type decoder struct {
	source     string
	predicates map[string]form.Predicate
}

func newDecoder(source string, options []Option) *decoder {
	d := &decoder{source: source, predicates: make(map[string]form.Predicate)}
	for _, opt := range options {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// LoadFile reads and decodes a form document from disk.
func LoadFile(path string, options ...Option) (form.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("formdoc: read %s: %w", path, err)
	}
	return Decode(data, path, options...)
}

// LoadFS reads and decodes a form document from fsys.
func LoadFS(fsys fs.FS, name string, options ...Option) (form.Tree, error) {
	if fsys == nil {
		return nil, errors.New("formdoc: filesystem is nil")
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("formdoc: read %s: %w", name, err)
	}
	return Decode(data, name, options...)
}

// Decode parses a JSON or YAML form document. Mappings describe fields
// (value, validator) and lists of mappings describe groups.
func Decode(data []byte, source string, options ...Option) (form.Tree, error) {
	raw, err := parseDocument(data, source)
	if err != nil {
		return nil, err
	}
	return newDecoder(source, options).tree(raw, "")
}

func parseDocument(data []byte, source string) (map[string]any, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("formdoc: file %s is empty", source)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	doc = nil
	if err := yaml.Unmarshal(data, &doc); err == nil && doc != nil {
		return doc, nil
	}

	return nil, fmt.Errorf("formdoc: parse %s: invalid JSON or YAML", source)
}

func (d *decoder) tree(raw map[string]any, prefix string) (form.Tree, error) {
	tree := make(form.Tree, len(raw))
	for key, value := range raw {
		path := joinPath(prefix, key)
		switch node := value.(type) {
		case map[string]any:
			field, err := d.field(node, path)
			if err != nil {
				return nil, err
			}
			tree[key] = field
		case []any:
			group := make(form.FieldGroup, 0, len(node))
			for idx, item := range node {
				element, ok := item.(map[string]any)
				if !ok {
					return nil, d.errorf("%s[%d]: group elements must be mappings", path, idx)
				}
				sub, err := d.tree(element, fmt.Sprintf("%s[%d]", path, idx))
				if err != nil {
					return nil, err
				}
				group = append(group, sub)
			}
			tree[key] = group
		default:
			return nil, d.errorf("%s: expected a field mapping or a list of group elements", path)
		}
	}
	return tree, nil
}

func (d *decoder) field(raw map[string]any, path string) (*form.Field, error) {
	field := form.NewField(raw["value"])

	if spec, ok := raw["validator"]; ok {
		validator, err := d.validator(spec, path)
		if err != nil {
			return nil, err
		}
		field.Validator = validator
	}

	for key, target := range map[string]*bool{
		"touched":  &field.Touched,
		"pristine": &field.Pristine,
		"valid":    &field.Valid,
	} {
		value, ok := raw[key]
		if !ok {
			continue
		}
		flag, ok := value.(bool)
		if !ok {
			return nil, d.errorf("%s: %s must be a boolean", path, key)
		}
		*target = flag
	}
	return field, nil
}

// validator accepts nil, a single rule or a list of rules.
func (d *decoder) validator(spec any, path string) (form.Validator, error) {
	switch value := spec.(type) {
	case nil:
		return nil, nil
	case []any:
		rules := make([]form.Rule, 0, len(value))
		for idx, item := range value {
			rule, err := d.rule(item, fmt.Sprintf("%s.validator[%d]", path, idx))
			if err != nil {
				return nil, err
			}
			rules = append(rules, rule)
		}
		return form.Rules(rules...), nil
	default:
		rule, err := d.rule(value, path+".validator")
		if err != nil {
			return nil, err
		}
		return form.Rules(rule), nil
	}
}

const patternPrefix = "pattern:"

func (d *decoder) rule(spec any, path string) (form.Rule, error) {
	switch value := spec.(type) {
	case string:
		keyword := strings.TrimSpace(value)
		if expr, ok := strings.CutPrefix(keyword, patternPrefix); ok {
			return d.pattern(expr, path)
		}
		return form.Tag(keyword), nil
	case map[string]any:
		if expr, ok := value["pattern"].(string); ok {
			return d.pattern(expr, path)
		}
		if name, ok := value["predicate"].(string); ok {
			fn, found := d.predicates[strings.TrimSpace(name)]
			if !found {
				return nil, d.errorf("%s: predicate %q is not registered", path, name)
			}
			return fn, nil
		}
		return nil, d.errorf("%s: rule objects need a pattern or predicate key", path)
	default:
		return nil, d.errorf("%s: unsupported rule %v", path, spec)
	}
}

func (d *decoder) pattern(expr, path string) (form.Rule, error) {
	pattern, err := form.CompilePattern(expr)
	if err != nil {
		return nil, d.errorf("%s: %v", path, err)
	}
	return pattern, nil
}

func (d *decoder) errorf(format string, args ...any) error {
	return fmt.Errorf("formdoc: %s: %s", d.source, fmt.Sprintf(format, args...))
}

func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}
