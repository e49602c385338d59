// Package openapi exposes the contracts for importing form trees from
// OpenAPI documents. A Loader fetches the raw document, a Parser extracts
// operations and their request body schemas, and BuildTree turns a schema
// into a form.Tree with validators derived from required, format, pattern,
// length and enum constraints. Implementations live under internal/openapi
// so kin-openapi types never leak into the public API.
package openapi
