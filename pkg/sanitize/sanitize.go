// Package sanitize strips markup from user supplied form values before
// they reach a tree.
package sanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formstate/pkg/form"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}

// maxPasses bounds the decode/sanitize loop in Text.
const maxPasses = 8

// Text removes every HTML element from raw and returns the remaining plain
// text, trimmed. Entity encoded markup is decoded and stripped as well, so
// the result never holds an element the policy would remove. When the
// value does not settle within maxPasses the escaped policy output is
// returned.
func Text(raw string) string {
	current := strings.TrimSpace(raw)
	if current == "" {
		return ""
	}
	policy := textSanitizer()
	for range maxPasses {
		next := strings.TrimSpace(html.UnescapeString(policy.Sanitize(current)))
		if next == current {
			return next
		}
		current = next
	}
	return strings.TrimSpace(policy.Sanitize(current))
}

// Value sanitizes strings and descends into entities, group references and
// patches. Pointers are replaced by sanitized copies. Other values are
// returned unchanged.
func Value(value any) any {
	switch v := value.(type) {
	case string:
		return Text(v)
	case form.Entity:
		return Entity(v)
	case form.GroupRef:
		return form.Group(v.Index, Entity(v.Fields))
	case *form.GroupRef:
		if v == nil {
			return v
		}
		return form.Group(v.Index, Entity(v.Fields))
	case form.Patch:
		if v.HasValue {
			v.Value = Value(v.Value)
		}
		return v
	case *form.Patch:
		if v == nil {
			return v
		}
		patch := *v
		if patch.HasValue {
			patch.Value = Value(patch.Value)
		}
		return &patch
	default:
		return value
	}
}

// Entity returns a sanitized copy of entity. A nil entity stays nil.
func Entity(entity form.Entity) form.Entity {
	if entity == nil {
		return nil
	}
	out := make(form.Entity, len(entity))
	for key, value := range entity {
		out[key] = Value(value)
	}
	return out
}
