// Package formstate is the top-level entry point for go-formstate, a
// form-state and validation engine.
//
// The engine itself lives in pkg/form. This package re-exports its core
// types and wires the supporting pieces together: JSON/YAML form documents
// (pkg/formdoc) and trees imported from OpenAPI request bodies
// (pkg/openapi).
//
//	tree, err := formstate.TreeFromOpenAPI(ctx, formstate.OpenAPIRequest{
//		Source:      openapi.SourceFromFile("api.yaml"),
//		OperationID: "createSignup",
//	})
//	engine := formstate.New(tree)
//	engine.Update("email", "john@mail.com")
//	_, valid, err := engine.Value()
package formstate
