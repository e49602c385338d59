package openapi

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/form"
)

func intPtr(n int) *int { return &n }

func signupSchema() Schema {
	return Schema{
		Type:     "object",
		Required: []string{"email", "plan"},
		Properties: map[string]Schema{
			"email":    {Type: "string", Format: "email"},
			"nickname": {Type: "string", MinLength: 2, MaxLength: intPtr(4)},
			"plan":     {Type: "string", Enum: []any{"free", "pro"}, Default: "free"},
			"address": {
				Type:     "object",
				Required: []string{"city"},
				Properties: map[string]Schema{
					"city": {Type: "string"},
					"zip":  {Type: "string", Pattern: `^\d{5}$`},
				},
			},
			"users": {
				Type:     "array",
				MinItems: 2,
				Items: &Schema{
					Type:       "object",
					Required:   []string{"name"},
					Properties: map[string]Schema{"name": {Type: "string"}},
				},
			},
		},
	}
}

func TestBuildTree_Shape(t *testing.T) {
	tree, err := BuildTree(signupSchema())
	if err != nil {
		t.Fatalf("build tree: %v", err)
	}

	if diff := cmp.Diff([]string{"address.city", "address.zip", "email", "nickname", "plan", "users"}, tree.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}

	names := map[string][]string{}
	for _, key := range tree.Keys() {
		if f, ok := tree.Field(key); ok {
			names[key] = f.Validator.Names()
		}
	}
	want := map[string][]string{
		"address.city": {"required"},
		"address.zip":  {`pattern:^\d{5}$`},
		"email":        {"required", "email"},
		"nickname":     {"predicate", "predicate"},
		"plan":         {"required", "predicate"},
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("rules mismatch (-want +got):\n%s", diff)
	}

	plan, _ := tree.Field("plan")
	if plan.Value != "free" || !plan.Pristine || plan.Touched || !plan.Valid {
		t.Fatalf("expected seeded pristine plan field, got %#v", plan)
	}

	users, ok := tree.Group("users")
	if !ok || len(users) != 2 {
		t.Fatalf("expected minItems to seed two elements, got %#v", tree["users"])
	}
	if users[0]["name"] == users[1]["name"] {
		t.Fatalf("group elements must not share fields")
	}
}

func TestBuildTree_GroupSeed(t *testing.T) {
	schema := Schema{
		Properties: map[string]Schema{
			"tags": {Type: "array", Items: &Schema{Properties: map[string]Schema{"label": {Type: "string"}}}},
		},
	}

	tree, err := BuildTree(schema, WithGroupSeed(0))
	if err != nil {
		t.Fatalf("build tree: %v", err)
	}
	if group, ok := tree.Group("tags"); !ok || len(group) != 0 {
		t.Fatalf("expected empty group, got %#v", tree["tags"])
	}

	tree, err = BuildTree(schema, WithGroupSeed(3))
	if err != nil {
		t.Fatalf("build tree: %v", err)
	}
	if group, _ := tree.Group("tags"); len(group) != 3 {
		t.Fatalf("expected three elements, got %d", len(group))
	}
}

func TestBuildTree_DerivedRules(t *testing.T) {
	tree, err := BuildTree(signupSchema())
	if err != nil {
		t.Fatalf("build tree: %v", err)
	}

	cases := []struct {
		field string
		value any
		want  bool
	}{
		{"nickname", nil, true},
		{"nickname", "a", false},
		{"nickname", "abcd", true},
		{"nickname", "abcde", false},
		{"plan", "pro", true},
		{"plan", "gold", false},
		{"plan", "", false},
		{"email", "someone@example.com", true},
		{"email", "someone", false},
		{"address.zip", "12345", true},
		{"address.zip", "1234", false},
	}

	for _, tc := range cases {
		if _, err := form.Update(tree, tc.field, tc.value); err != nil {
			t.Fatalf("update %s: %v", tc.field, err)
		}
		f, _ := tree.Field(tc.field)
		if f.Valid != tc.want {
			t.Errorf("%s=%v: valid=%v, want %v", tc.field, tc.value, f.Valid, tc.want)
		}
	}
}

func TestBuildTree_Errors(t *testing.T) {
	if _, err := BuildTree(Schema{Type: "string"}); err == nil {
		t.Fatalf("expected error for non-object schema")
	}
	bad := Schema{Properties: map[string]Schema{"code": {Type: "string", Pattern: "("}}}
	if _, err := BuildTree(bad); err == nil {
		t.Fatalf("expected error for invalid pattern")
	}
}
