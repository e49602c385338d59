package form

import (
	"log/slog"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger attaches a logger that receives debug records for every
// mutation. Nil loggers are ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Engine owns a Tree and exposes the package operations against it. The
// tree passed to New is mutated in place.
type Engine struct {
	tree   Tree
	logger *slog.Logger
}

// New takes ownership of tree. A nil tree starts an empty form.
func New(tree Tree, options ...Option) *Engine {
	if tree == nil {
		tree = make(Tree)
	}
	e := &Engine{
		tree:   tree,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Tree returns the owned tree (not a copy).
func (e *Engine) Tree() Tree {
	return e.tree
}

// Value validates the whole tree from scratch and reports whether every
// field passed.
func (e *Engine) Value() (Tree, bool, error) {
	tree, valid, err := EvaluateForm(e.tree, []bool{})
	if err != nil {
		e.logger.Debug("form value failed", slog.Any("error", err))
		return tree, false, err
	}
	return tree, valid, nil
}

// Validate runs the validator of a single field.
func (e *Engine) Validate(name string) (Tree, error) {
	return Validate(e.tree, name)
}

// Update sets a field value or, given a GroupRef, updates a group element.
func (e *Engine) Update(name string, value any) (Tree, error) {
	e.logger.Debug("form update", slog.String("field", name))
	return Update(e.tree, name, value)
}

// UpdateAll applies a bulk update.
func (e *Engine) UpdateAll(entity Entity) (Tree, error) {
	e.logger.Debug("form update all", slog.Int("keys", len(entity)))
	return UpdateAll(e.tree, entity)
}

// UpdateValidator replaces the validator of a field.
func (e *Engine) UpdateValidator(name string, validator Validator) (Tree, error) {
	e.logger.Debug("form update validator", slog.String("field", name), slog.Any("rules", validator.Names()))
	return UpdateValidator(e.tree, name, validator)
}

// AddField adds a field, a group or a group element.
func (e *Engine) AddField(name string, entity any) (Tree, error) {
	e.logger.Debug("form add field", slog.String("field", name))
	return AddField(e.tree, name, entity)
}

// RemoveField removes a field, or a single group element when an index is
// supplied.
func (e *Engine) RemoveField(name string, index ...int) Tree {
	e.logger.Debug("form remove field", slog.String("field", name), slog.Any("index", index))
	return RemoveField(e.tree, name, index...)
}

// Reset restores a single field.
func (e *Engine) Reset(name string) (Tree, error) {
	e.logger.Debug("form reset", slog.String("field", name))
	return Reset(e.tree, name)
}

// ResetAll restores every field.
func (e *Engine) ResetAll() Tree {
	e.logger.Debug("form reset all")
	return ResetAll(e.tree)
}

// Hydrate loads values and validators without leaving the pristine state.
func (e *Engine) Hydrate(entity Tree) Tree {
	e.logger.Debug("form hydrate", slog.Int("keys", len(entity)))
	return Hydrate(e.tree, entity)
}
