// Package formdoc reads form trees and update payloads from JSON or YAML
// documents and writes validation snapshots back out.
//
// A document maps field names to either a field mapping or a list of group
// elements:
//
//	email:
//	  value: null
//	  validator: [email]
//	users:
//	  - name: {value: null, validator: required}
//	    email: {value: null, validator: [email]}
//
// Validators are a keyword ("email", or any other keyword for a presence
// check), a "pattern:<expr>" string, a {pattern: expr} object, a
// {predicate: name} object resolved through WithPredicate, or a list of
// those.
package formdoc
