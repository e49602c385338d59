package form_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/form"
)

func newSignupTree() form.Tree {
	return form.Tree{
		"email": form.NewField(nil, form.Tag("email")),
		"emailConfirmation": form.NewField(nil, form.Predicate(func(v any) bool {
			return v == "johndoe@gmail.com"
		})),
	}
}

func userElement(name, email any) form.Tree {
	return form.Tree{
		"name":  form.NewField(name),
		"email": form.NewField(email, form.Email{}),
	}
}

func mustField(t *testing.T, tree form.Tree, name string) *form.Field {
	t.Helper()
	f, ok := tree.Field(name)
	if !ok {
		t.Fatalf("field %q missing", name)
	}
	return f
}

func mustGroup(t *testing.T, tree form.Tree, name string) form.FieldGroup {
	t.Helper()
	g, ok := tree.Group(name)
	if !ok {
		t.Fatalf("group %q missing", name)
	}
	return g
}

func mustValue(t *testing.T, engine *form.Engine) (form.Tree, bool) {
	t.Helper()
	tree, valid, err := engine.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	return tree, valid
}

func TestEngine_Lifecycle(t *testing.T) {
	engine := form.New(newSignupTree())

	t.Run("invalid fields", func(t *testing.T) {
		if _, err := engine.UpdateAll(form.Entity{
			"email":             "johndoegmail.com",
			"emailConfirmation": nil,
		}); err != nil {
			t.Fatalf("update all: %v", err)
		}
		tree, valid := mustValue(t, engine)
		if valid {
			t.Fatalf("expected form to be invalid")
		}
		email := mustField(t, tree, "email")
		if email.Valid || !email.Touched {
			t.Fatalf("expected touched invalid email, got %+v", email)
		}
		if mustField(t, tree, "emailConfirmation").Valid {
			t.Fatalf("expected confirmation to be invalid")
		}
	})

	t.Run("valid fields", func(t *testing.T) {
		if _, err := engine.Update("email", "johndoe@gmail.com"); err != nil {
			t.Fatalf("update: %v", err)
		}
		if _, err := engine.Update("emailConfirmation", "johndoe@gmail.com"); err != nil {
			t.Fatalf("update: %v", err)
		}
		tree, valid := mustValue(t, engine)
		if !valid {
			t.Fatalf("expected form to be valid")
		}
		if mustField(t, tree, "email").Pristine {
			t.Fatalf("expected email to be dirty")
		}
	})

	t.Run("add form group", func(t *testing.T) {
		if _, err := engine.AddField("users", form.FieldGroup{userElement(nil, nil)}); err != nil {
			t.Fatalf("add field: %v", err)
		}
		tree, _ := mustValue(t, engine)
		name := mustField(t, mustGroup(t, tree, "users")[0], "name")
		if name.Value != nil || !name.Valid {
			t.Fatalf("unexpected name field %+v", name)
		}
	})

	t.Run("add element to group", func(t *testing.T) {
		element := form.Tree{
			"name":  form.NewField(nil, form.MustPattern(`^[a-zA-Z'-]+$`)),
			"email": form.NewField("invalid email", form.Email{}),
		}
		if _, err := engine.AddField("users", element); err != nil {
			t.Fatalf("add field: %v", err)
		}
		tree, _ := mustValue(t, engine)
		users := mustGroup(t, tree, "users")
		if len(users) != 2 {
			t.Fatalf("expected 2 users, got %d", len(users))
		}
		if got := mustField(t, users[1], "email").Value; got != "invalid email" {
			t.Fatalf("unexpected email value %v", got)
		}
	})

	t.Run("update group validator", func(t *testing.T) {
		if _, err := engine.UpdateAll(form.Entity{
			"users": form.Group(0, form.Entity{"name": form.SetValidator(form.Tag("required")).WithValue("")}),
		}); err != nil {
			t.Fatalf("update all: %v", err)
		}
		tree, _ := mustValue(t, engine)
		if mustField(t, mustGroup(t, tree, "users")[0], "name").Valid {
			t.Fatalf("expected required name to be invalid")
		}
	})

	t.Run("update group elements", func(t *testing.T) {
		if _, err := engine.Update("users", form.Group(0, form.Entity{"name": "John Doe", "email": "john@mail.com"})); err != nil {
			t.Fatalf("update: %v", err)
		}
		if _, err := engine.Update("users", form.Group(1, form.Entity{"name": "Jane", "email": "jane@mail.com"})); err != nil {
			t.Fatalf("update: %v", err)
		}
		tree, _ := mustValue(t, engine)
		got := form.Values(tree)["users"]
		want := []map[string]any{
			{"name": "John Doe", "email": "john@mail.com"},
			{"name": "Jane", "email": "jane@mail.com"},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("users mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("remove fields", func(t *testing.T) {
		engine.RemoveField("emailConfirmation")
		engine.RemoveField("users", 1)
		tree, valid := mustValue(t, engine)
		if _, ok := tree["emailConfirmation"]; ok {
			t.Fatalf("expected emailConfirmation to be removed")
		}
		if users := mustGroup(t, tree, "users"); len(users) != 1 {
			t.Fatalf("expected 1 user, got %d", len(users))
		}
		if !valid {
			t.Fatalf("expected form to be valid")
		}
	})

	t.Run("reset all", func(t *testing.T) {
		engine.ResetAll()
		tree, valid := mustValue(t, engine)
		if valid {
			t.Fatalf("expected reset form to be invalid")
		}
		if got := mustField(t, tree, "email").Value; got != "" {
			t.Fatalf("expected empty email, got %v", got)
		}
	})

	t.Run("hydrate", func(t *testing.T) {
		engine.Hydrate(form.Tree{
			"email": form.NewField("invalidemail", form.Email{}),
			"users": form.FieldGroup{
				{
					"name":  form.NewField("Jake", form.Tag("required")),
					"email": form.NewField("jake@mail.com", form.Email{}),
				},
				{
					"name":  form.NewField("Matthew", form.Tag("required")),
					"email": form.NewField("matthew@mail.com", form.Email{}),
				},
			},
		})
		tree, valid := mustValue(t, engine)
		if valid {
			t.Fatalf("expected hydrated form to be invalid")
		}
		if got := mustField(t, tree, "email").Value; got != "invalidemail" {
			t.Fatalf("unexpected email %v", got)
		}
		users := mustGroup(t, tree, "users")
		if got := mustField(t, users[0], "email").Value; got != "jake@mail.com" {
			t.Fatalf("unexpected user email %v", got)
		}
		if got := mustField(t, users[1], "name").Value; got != "Matthew" {
			t.Fatalf("unexpected user name %v", got)
		}
	})
}

func TestEngine_EndToEnd(t *testing.T) {
	engine := form.New(form.Tree{"email": form.NewField(nil, form.Tag("email"))})

	if _, err := engine.Update("email", "johndoegmail.com"); err != nil {
		t.Fatalf("update: %v", err)
	}
	tree, valid := mustValue(t, engine)
	if valid {
		t.Fatalf("expected invalid form")
	}
	if got := mustField(t, tree, "email").Value; got != "johndoegmail.com" {
		t.Fatalf("unexpected value %v", got)
	}

	if _, err := engine.Update("email", "johndoe@gmail.com"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, valid := mustValue(t, engine); !valid {
		t.Fatalf("expected valid form")
	}
}

func TestEngine_ValueIsIdempotent(t *testing.T) {
	engine := form.New(form.Tree{
		"email": form.NewField("bad", form.Email{}),
		"users": form.FieldGroup{userElement("Ann", "ann@mail.com"), userElement("Bob", "nope")},
	})

	first, firstValid := mustValue(t, engine)
	snapshot := flags(first)
	second, secondValid := mustValue(t, engine)

	if firstValid != secondValid {
		t.Fatalf("validity changed between calls: %v vs %v", firstValid, secondValid)
	}
	if diff := cmp.Diff(snapshot, flags(second)); diff != "" {
		t.Fatalf("tree changed between calls (-first +second):\n%s", diff)
	}
}

func TestEngine_ValidityIsConjunctionOfLeaves(t *testing.T) {
	cases := []struct {
		name string
		tree form.Tree
	}{
		{name: "empty", tree: form.Tree{}},
		{name: "all valid", tree: form.Tree{"a": form.NewField("x", form.Tag("required")), "b": form.NewField(nil)}},
		{name: "one invalid leaf", tree: form.Tree{"a": form.NewField("", form.Tag("required")), "b": form.NewField("y")}},
		{name: "invalid nested", tree: form.Tree{
			"users": form.FieldGroup{userElement("a", "a@mail.com"), {
				"pets": form.NewField(nil),
				"tags": form.FieldGroup{{"tag": form.NewField(nil, form.Tag("required"))}},
			}},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tree, valid, err := form.New(tc.tree).Value()
			if err != nil {
				t.Fatalf("value: %v", err)
			}
			if want := allLeavesValid(tree); valid != want {
				t.Fatalf("valid = %v, conjunction of leaves = %v", valid, want)
			}
		})
	}
}

func TestEngine_UpdateMarksDirtyAndTouched(t *testing.T) {
	engine := form.New(form.Tree{"email": form.NewField(nil, form.Email{})})
	tree, err := engine.Update("email", "x@y.com")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	f := mustField(t, tree, "email")
	if f.Pristine || !f.Touched || !f.Valid {
		t.Fatalf("unexpected flags %+v", f)
	}
}

func TestEngine_ResetRoundTrip(t *testing.T) {
	engine := form.New(form.Tree{"email": form.NewField(nil, form.Email{})})
	if _, err := engine.Update("email", "broken"); err != nil {
		t.Fatalf("update: %v", err)
	}

	tree, err := engine.Reset("email")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	want := form.Field{Value: "", Pristine: true, Touched: false, Valid: true}
	got := *mustField(t, tree, "email")
	got.Validator = nil
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("reset mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_MissingField(t *testing.T) {
	engine := form.New(nil)

	checks := map[string]func() error{
		"validate": func() error { _, err := engine.Validate("ghost"); return err },
		"update":   func() error { _, err := engine.Update("ghost", "x"); return err },
		"reset":    func() error { _, err := engine.Reset("ghost"); return err },
		"validator": func() error {
			_, err := engine.UpdateValidator("ghost", form.Rules(form.Email{}))
			return err
		},
	}
	for op, run := range checks {
		err := run()
		if !errors.Is(err, form.ErrFieldNotFound) {
			t.Fatalf("%s: expected ErrFieldNotFound, got %v", op, err)
		}
		var fieldErr *form.FieldError
		if !errors.As(err, &fieldErr) || fieldErr.Name != "ghost" {
			t.Fatalf("%s: expected FieldError naming ghost, got %v", op, err)
		}
	}
}

func TestEngine_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	engine := form.New(form.Tree{"name": form.NewField(nil)}, form.WithLogger(logger))

	if _, err := engine.Update("name", "Ann"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if !strings.Contains(buf.String(), "field=name") {
		t.Fatalf("expected debug record for update, got %q", buf.String())
	}
}

type leafFlags struct {
	Touched  bool
	Pristine bool
	Valid    bool
}

func flags(tree form.Tree) map[string]any {
	out := make(map[string]any, len(tree))
	for key, node := range tree {
		switch n := node.(type) {
		case *form.Field:
			out[key] = leafFlags{Touched: n.Touched, Pristine: n.Pristine, Valid: n.Valid}
		case form.FieldGroup:
			items := make([]map[string]any, 0, len(n))
			for _, element := range n {
				items = append(items, flags(element))
			}
			out[key] = items
		}
	}
	return out
}

func allLeavesValid(tree form.Tree) bool {
	for _, node := range tree {
		switch n := node.(type) {
		case *form.Field:
			if !n.Valid {
				return false
			}
		case form.FieldGroup:
			for _, element := range n {
				if !allLeavesValid(element) {
					return false
				}
			}
		}
	}
	return true
}
