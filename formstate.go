package formstate

import (
	"context"
	"errors"
	"fmt"

	internalloader "github.com/goliatone/go-formstate/internal/openapi/loader"
	internalparser "github.com/goliatone/go-formstate/internal/openapi/parser"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/formdoc"
	pkgopenapi "github.com/goliatone/go-formstate/pkg/openapi"
)

// Aliases so callers can work from the top-level module.
type (
	Tree       = form.Tree
	Field      = form.Field
	FieldGroup = form.FieldGroup
	Engine     = form.Engine
	Entity     = form.Entity
	GroupRef   = form.GroupRef
	Patch      = form.Patch
	Rule       = form.Rule
	Validator  = form.Validator
)

// New constructs an Engine that owns tree.
func New(tree Tree, options ...form.Option) *Engine {
	return form.New(tree, options...)
}

// Group builds a GroupRef for Engine.Update and Engine.UpdateAll.
func Group(index int, fields Entity) GroupRef {
	return form.Group(index, fields)
}

// LoadFile decodes a JSON or YAML form document into a new Engine.
func LoadFile(path string, decode []formdoc.Option, options ...form.Option) (*Engine, error) {
	tree, err := formdoc.LoadFile(path, decode...)
	if err != nil {
		return nil, err
	}
	return form.New(tree, options...), nil
}

// NewLoader constructs the OpenAPI loader.
func NewLoader(options ...pkgopenapi.LoaderOption) pkgopenapi.Loader {
	return internalloader.New(pkgopenapi.NewLoaderOptions(options...))
}

// NewParser constructs the kin-openapi backed parser.
func NewParser(options ...pkgopenapi.ParserOption) pkgopenapi.Parser {
	return internalparser.New(pkgopenapi.NewParserOptions(options...))
}

// OpenAPIRequest selects the operation whose request body becomes a form.
// Either Source or Document must be set; Loader and Parser default to the
// built-in implementations.
type OpenAPIRequest struct {
	Source      pkgopenapi.Source
	Document    *pkgopenapi.Document
	OperationID string
	Loader      pkgopenapi.Loader
	Parser      pkgopenapi.Parser
	Build       []pkgopenapi.BuildOption
}

// TreeFromOpenAPI loads an OpenAPI document and builds a form tree from the
// request body of one operation.
func TreeFromOpenAPI(ctx context.Context, req OpenAPIRequest) (Tree, error) {
	if ctx == nil {
		return nil, errors.New("formstate: context is required")
	}
	if req.OperationID == "" {
		return nil, errors.New("formstate: operation id is required")
	}

	doc, err := resolveDocument(ctx, req)
	if err != nil {
		return nil, err
	}

	parser := req.Parser
	if parser == nil {
		parser = NewParser()
	}
	operations, err := parser.Operations(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("formstate: parse operations: %w", err)
	}
	op, ok := operations[req.OperationID]
	if !ok {
		return nil, fmt.Errorf("formstate: operation %q not found", req.OperationID)
	}

	tree, err := pkgopenapi.BuildTree(op.RequestBody, req.Build...)
	if err != nil {
		return nil, fmt.Errorf("formstate: build form for %q: %w", req.OperationID, err)
	}
	return tree, nil
}

func resolveDocument(ctx context.Context, req OpenAPIRequest) (pkgopenapi.Document, error) {
	if req.Document != nil {
		return *req.Document, nil
	}
	if req.Source == nil {
		return pkgopenapi.Document{}, errors.New("formstate: source or document is required")
	}
	loader := req.Loader
	if loader == nil {
		loader = NewLoader()
	}
	doc, err := loader.Load(ctx, req.Source)
	if err != nil {
		return pkgopenapi.Document{}, fmt.Errorf("formstate: load document: %w", err)
	}
	return doc, nil
}
