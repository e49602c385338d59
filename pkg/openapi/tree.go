package openapi

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/goliatone/go-formstate/pkg/form"
)

// BuildOption configures BuildTree.
type BuildOption func(*buildConfig)

type buildConfig struct {
	seed int
}

// WithGroupSeed sets how many elements a new group starts with when the
// schema does not ask for more through minItems. Defaults to 1.
func WithGroupSeed(n int) BuildOption {
	return func(cfg *buildConfig) {
		if n >= 0 {
			cfg.seed = n
		}
	}
}

// BuildTree converts an object schema into a form tree.
//
// Scalar properties become fields seeded with their default value. Arrays of
// objects become groups; nested objects are flattened into dotted keys
// ("address.city"). Rules are derived in this order: required, email
// format, pattern, minLength, maxLength and enum.
func BuildTree(schema Schema, options ...BuildOption) (form.Tree, error) {
	cfg := buildConfig{seed: 1}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if !schema.IsObject() {
		return nil, errors.New("openapi: form schema must be an object")
	}
	tree := make(form.Tree, len(schema.Properties))
	if err := cfg.build(tree, schema, ""); err != nil {
		return nil, err
	}
	return tree, nil
}

func (cfg buildConfig) build(tree form.Tree, schema Schema, prefix string) error {
	for name, property := range schema.Properties {
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}

		switch {
		case property.Type == "array" && property.Items != nil && property.Items.IsObject():
			count := max(cfg.seed, property.MinItems)
			group := make(form.FieldGroup, 0, count)
			for range count {
				element, err := BuildTree(*property.Items, WithGroupSeed(cfg.seed))
				if err != nil {
					return fmt.Errorf("openapi: build group %q: %w", key, err)
				}
				group = append(group, element)
			}
			tree[key] = group
		case property.IsObject():
			if err := cfg.build(tree, property, key); err != nil {
				return err
			}
		default:
			rules, err := fieldRules(property, schema.requires(name))
			if err != nil {
				return fmt.Errorf("openapi: field %q: %w", key, err)
			}
			tree[key] = form.NewField(property.Default, rules...)
		}
	}
	return nil
}

func fieldRules(schema Schema, required bool) ([]form.Rule, error) {
	var rules []form.Rule
	if required {
		rules = append(rules, form.Tag(form.TagRequired))
	}
	if schema.Format == "email" {
		rules = append(rules, form.Email{})
	}
	if schema.Pattern != "" {
		pattern, err := form.CompilePattern(schema.Pattern)
		if err != nil {
			return nil, err
		}
		rules = append(rules, pattern)
	}
	if schema.MinLength > 0 {
		rules = append(rules, minLength(schema.MinLength))
	}
	if schema.MaxLength != nil {
		rules = append(rules, maxLength(*schema.MaxLength))
	}
	if len(schema.Enum) > 0 {
		rules = append(rules, oneOf(schema.Enum))
	}
	return rules, nil
}

// Length checks only apply to strings; presence is the job of required.
func minLength(n int) form.Predicate {
	return func(value any) bool {
		s, ok := value.(string)
		return !ok || utf8.RuneCountInString(s) >= n
	}
}

func maxLength(n int) form.Predicate {
	return func(value any) bool {
		s, ok := value.(string)
		return !ok || utf8.RuneCountInString(s) <= n
	}
}

func oneOf(options []any) form.Predicate {
	allowed := make(map[string]struct{}, len(options))
	for _, option := range options {
		allowed[fmt.Sprint(option)] = struct{}{}
	}
	return func(value any) bool {
		if !form.IsDefined(value) {
			return true
		}
		_, ok := allowed[fmt.Sprint(value)]
		return ok
	}
}
