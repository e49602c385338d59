// Package prompt fills a form interactively, one field at a time, using the
// field rules to reject answers before they are stored.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/sanitize"
)

// Option configures a Filler.
type Option func(*Filler)

// WithDriver swaps the terminal driver.
func WithDriver(driver Driver) Option {
	return func(f *Filler) {
		if driver != nil {
			f.driver = driver
		}
	}
}

// WithLogger attaches a logger. Nil loggers are ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Filler) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithSanitizer replaces the function applied to every answer. Passing nil
// stores answers verbatim.
func WithSanitizer(fn func(string) string) Option {
	return func(f *Filler) {
		f.clean = fn
	}
}

// WithMaxElements caps how many elements a group can grow to while
// filling. Zero disables adding elements.
func WithMaxElements(n int) Option {
	return func(f *Filler) {
		if n >= 0 {
			f.maxElements = n
		}
	}
}

// Filler walks an engine tree in key order and prompts for every field.
type Filler struct {
	driver      Driver
	logger      *slog.Logger
	clean       func(string) string
	maxElements int
}

// NewFiller builds a Filler that defaults to the survey driver and the
// strict sanitizer.
func NewFiller(options ...Option) *Filler {
	f := &Filler{
		driver:      NewSurveyDriver(nil),
		logger:      slog.New(slog.DiscardHandler),
		clean:       sanitize.Text,
		maxElements: 10,
	}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// level is one tree being filled: the engine root or a group element
// reached through it.
type level struct {
	tree   form.Tree
	path   string
	update func(form.Entity) error
	add    func(name string, element form.Tree) error
}

// Fill prompts for every field of engine and returns the resulting form
// validity.
func (f *Filler) Fill(ctx context.Context, engine *form.Engine) (bool, error) {
	if engine == nil {
		return false, errors.New("prompt: engine is nil")
	}
	root := level{
		tree: engine.Tree(),
		update: func(entity form.Entity) error {
			_, err := engine.UpdateAll(entity)
			return err
		},
		add: func(name string, element form.Tree) error {
			_, err := engine.AddField(name, element)
			return err
		},
	}
	if err := f.fillLevel(ctx, root); err != nil {
		return false, err
	}
	_, valid, err := engine.Value()
	return valid, err
}

func (f *Filler) fillLevel(ctx context.Context, lvl level) error {
	for _, key := range lvl.tree.Keys() {
		switch node := lvl.tree[key].(type) {
		case *form.Field:
			if node == nil {
				continue
			}
			if err := f.fillField(ctx, lvl, key, node); err != nil {
				return err
			}
		case form.FieldGroup:
			if err := f.fillGroup(ctx, lvl, key); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *Filler) fillField(ctx context.Context, lvl level, key string, field *form.Field) error {
	path := joinPath(lvl.path, key)
	f.logger.Debug("prompt field", slog.String("field", path))

	if current, ok := field.Value.(bool); ok {
		answer, err := f.driver.Confirm(ctx, ConfirmConfig{
			Message: path,
			Default: current,
			Help:    strings.Join(field.Validator.Names(), ", "),
		})
		if err != nil {
			return err
		}
		return lvl.update(form.Entity{key: answer})
	}

	answer, err := f.driver.Input(ctx, InputConfig{
		Message:   path,
		Default:   defaultAnswer(field.Value),
		Help:      strings.Join(field.Validator.Names(), ", "),
		Validator: f.ruleCheck(key, field.Validator),
	})
	if err != nil {
		return err
	}
	return lvl.update(form.Entity{key: f.sanitized(answer)})
}

func (f *Filler) fillGroup(ctx context.Context, lvl level, key string) error {
	path := joinPath(lvl.path, key)
	for idx := 0; ; idx++ {
		group, _ := lvl.tree.Group(key)
		if idx >= len(group) {
			grown, err := f.grow(ctx, lvl, key, path, group)
			if err != nil || !grown {
				return err
			}
			group, _ = lvl.tree.Group(key)
		}

		if err := f.driver.Info(ctx, fmt.Sprintf("%s[%d]", path, idx)); err != nil {
			return err
		}
		index := idx
		element := level{
			tree: group[index],
			path: fmt.Sprintf("%s[%d]", path, index),
			update: func(entity form.Entity) error {
				return lvl.update(form.Entity{key: form.Group(index, entity)})
			},
			add: func(name string, sub form.Tree) error {
				_, err := form.AddField(group[index], name, sub)
				return err
			},
		}
		if err := f.fillLevel(ctx, element); err != nil {
			return err
		}
	}
}

// grow asks whether to append another element shaped like the first one.
func (f *Filler) grow(ctx context.Context, lvl level, key, path string, group form.FieldGroup) (bool, error) {
	if len(group) == 0 || len(group) >= f.maxElements {
		return false, nil
	}
	more, err := f.driver.Confirm(ctx, ConfirmConfig{Message: fmt.Sprintf("Add another %s entry?", path)})
	if err != nil || !more {
		return false, err
	}
	f.logger.Debug("prompt add element", slog.String("group", path), slog.Int("index", len(group)))
	if err := lvl.add(key, form.CloneShape(group[0])); err != nil {
		return false, err
	}
	return true, nil
}

// ruleCheck validates a candidate answer against rules on a scratch field
// so a rejected answer never touches the form. Validator faults are let
// through and surface from the form update instead.
func (f *Filler) ruleCheck(key string, rules form.Validator) func(string) error {
	if len(rules) == 0 {
		return nil
	}
	return func(answer string) error {
		scratch := form.Tree{key: form.NewField(f.sanitized(answer), rules...)}
		if _, err := form.Validate(scratch, key); errors.Is(err, form.ErrValidatorFault) {
			return nil
		}
		if field, _ := scratch.Field(key); !field.Valid {
			return fmt.Errorf("%s: value does not satisfy %s", key, strings.Join(rules.Names(), ", "))
		}
		return nil
	}
}

func (f *Filler) sanitized(answer string) string {
	if f.clean == nil {
		return answer
	}
	return f.clean(answer)
}

func defaultAnswer(value any) string {
	if !form.IsDefined(value) {
		return ""
	}
	return fmt.Sprint(value)
}

func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}
