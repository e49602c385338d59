package openapi

import "context"

// Parser extracts operations keyed by operation id.
type Parser interface {
	Operations(ctx context.Context, doc Document) (map[string]Operation, error)
}

// ParserOptions configures a Parser.
type ParserOptions struct {
	// ResolveReferences validates the document (and with it every $ref)
	// before operations are extracted.
	ResolveReferences bool
}

// ParserOption mutates ParserOptions.
type ParserOption func(*ParserOptions)

// WithReferenceResolution toggles document validation.
func WithReferenceResolution(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.ResolveReferences = enabled
	}
}

// NewParserOptions applies options over the defaults.
func NewParserOptions(options ...ParserOption) ParserOptions {
	cfg := ParserOptions{ResolveReferences: true}
	for _, opt := range options {
		opt(&cfg)
	}
	return cfg
}
