package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	pkgopenapi "github.com/goliatone/go-formstate/pkg/openapi"
)

// Parser implements pkgopenapi.Parser using kin-openapi.
type Parser struct {
	options pkgopenapi.ParserOptions
}

var _ pkgopenapi.Parser = (*Parser)(nil)

// New constructs a Parser.
func New(options pkgopenapi.ParserOptions) *Parser {
	return &Parser{options: options}
}

// Operations returns every operation of doc keyed by operation id.
// Operations without an id are keyed as "<method>:<path>".
func (p *Parser) Operations(ctx context.Context, doc pkgopenapi.Document) (map[string]pkgopenapi.Operation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, errors.New("openapi parser: document payload is empty")
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx

	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi parser: load document: %w", err)
	}
	if p.options.ResolveReferences {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi parser: validate: %w", err)
		}
	}

	operations := make(map[string]pkgopenapi.Operation)
	if spec.Paths == nil {
		return operations, nil
	}
	for path, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for method, operation := range item.Operations() {
			collectOperation(operations, method, path, operation)
		}
	}
	return operations, nil
}

func collectOperation(target map[string]pkgopenapi.Operation, method, path string, operation *openapi3.Operation) {
	if operation == nil {
		return
	}
	id := operation.OperationID
	if id == "" {
		id = strings.ToLower(method) + ":" + path
	}
	target[id] = pkgopenapi.Operation{
		ID:          id,
		Method:      strings.ToUpper(method),
		Path:        path,
		Summary:     operation.Summary,
		RequestBody: requestSchema(operation.RequestBody),
	}
}

var mediaTypes = []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"}

func requestSchema(body *openapi3.RequestBodyRef) pkgopenapi.Schema {
	if body == nil {
		return pkgopenapi.Schema{}
	}
	if body.Value == nil {
		return pkgopenapi.Schema{Ref: body.Ref}
	}
	content := body.Value.Content
	for _, mediaType := range mediaTypes {
		if mt, ok := content[mediaType]; ok && mt != nil {
			return convertSchema(mt.Schema, map[*openapi3.Schema]bool{})
		}
	}
	for _, mt := range content {
		if mt != nil {
			return convertSchema(mt.Schema, map[*openapi3.Schema]bool{})
		}
	}
	return pkgopenapi.Schema{}
}

// convertSchema copies the keywords forms care about. Recursive references
// stop at the first repeat and keep only the $ref.
func convertSchema(ref *openapi3.SchemaRef, active map[*openapi3.Schema]bool) pkgopenapi.Schema {
	if ref == nil {
		return pkgopenapi.Schema{}
	}
	src := ref.Value
	if src == nil || active[src] {
		return pkgopenapi.Schema{Ref: ref.Ref}
	}
	active[src] = true
	defer delete(active, src)

	schema := pkgopenapi.Schema{
		Ref:       ref.Ref,
		Type:      firstType(src.Type),
		Format:    src.Format,
		Default:   src.Default,
		Pattern:   src.Pattern,
		MinLength: int(src.MinLength),
		MinItems:  int(src.MinItems),
	}
	if src.MaxLength != nil {
		n := int(*src.MaxLength)
		schema.MaxLength = &n
	}
	if len(src.Required) > 0 {
		schema.Required = append([]string(nil), src.Required...)
	}
	if len(src.Enum) > 0 {
		schema.Enum = append([]any(nil), src.Enum...)
	}
	if len(src.Properties) > 0 {
		schema.Properties = make(map[string]pkgopenapi.Schema, len(src.Properties))
		for name, property := range src.Properties {
			schema.Properties[name] = convertSchema(property, active)
		}
	}
	if src.Items != nil {
		items := convertSchema(src.Items, active)
		schema.Items = &items
	}
	return schema
}

func firstType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
