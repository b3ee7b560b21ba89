// Package flash implements the recursive flash-block/flash-rule evaluator:
// it compiles a mapping-language AST rooted at a FHIR type into a
// well-formed FHIR JSON value, delegating every ordinary expression back to
// a host.Evaluator and consulting a resolved definitions.Dictionary for
// element shape, cardinality, and slicing.
//
// Evaluator is the package's entry point. A single unexported recursive
// function, evaluateFlash, implements the whole procedure (context
// initialization, sub-expression processing, child projection, primitive
// normalization, and post-processing). Flash-rule and flash-block
// sub-expressions are evaluated by evaluateFlash itself; only the other
// sub-expressions go to the host.Evaluator.
package flash
