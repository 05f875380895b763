// Package propschema provides:
//
// - A tree-structured Property model for declaring typed fields with defaults,
//   constraints, nesting and conditional rules
// - PropertyBuilder, an ordered and named collection of Properties
// - A serializable document form (ToArray) and its reverse (FromArray)
// - The rule table and engine contracts consumed by the compiler package
//
// Design policy:
// - Keep the data model and the contracts in the root package; put the
//   compiler under compiler/, the default rule engine under rules/, codecs
//   under codec/ and the CLI under cmd/propschema.
// - Structural misuse (properties on a string, items on an object) panics
//   with an error wrapping ErrInvalidArgument. Invalid input never panics.
//
// Typical usage:
//
//	b := propschema.NewBuilder()
//	b.Add(propschema.String("email").Rules("required", "email"))
//	b.Add(propschema.String("tax_id").RequiredWith("is_business"))
//
//	s := compiler.New().AddBuilder(b)
//	res, err := s.Validate(record)
package propschema
