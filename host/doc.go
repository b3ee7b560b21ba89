// Package host's Evaluator is the seam where a real expression engine
// plugs in (e.g. a FHIRPath-like implementation of the mapping language's
// expression surface). Nothing in this module evaluates an expression
// itself; the flash package calls Evaluator.Evaluate for every
// sub-expression that is not a flash rule or flash block and classifies the
// result with Classify. Tests use hosttest.Stub instead of a real engine.
package host
