// Package schema validates JSON values against declarative schemas.
//
// A Schema is built once, either with Object/ArrayOf/OfType or by loading a
// JSON Schema document, and is immutable afterwards. Construction checks the
// definition eagerly and reports problems as *DefinitionError. Validation
// never fails: every non-conformance is collected as a Violation so a single
// call surfaces every defect at once.
//
// Supported constraints:
//   - Required fields (MissingRequiredField)
//   - Field types: string, number, integer, boolean, object, array, null (TypeMismatch)
//   - additionalProperties: false (UnexpectedField)
//   - Nested object schemas and array item schemas, with paths such as items[2].name
package schema
