// Package flashonata implements the FLASH evaluator: it compiles a
// declarative, FHIR-aware mapping-language AST into well-formed FHIR JSON
// resources.
//
// This package is designed from the ground up to leverage Go's strengths:
// sync.Pool for memory efficiency, generics for type-safe caches, and small
// composable interfaces at every seam where an external collaborator plugs
// in (the AST parser, the generic expression evaluator, the FHIR definitions
// loader).
//
// # Quick Start
//
//	import (
//	    fo "github.com/mechanik-daniel/flashonata"
//	    "github.com/mechanik-daniel/flashonata/flash"
//	)
//
//	evaluator := flash.NewEvaluator(hostEvaluator, dictionary, fo.WithVerboseLogger(logger))
//
//	result, err := evaluator.Evaluate(ctx, rootNode, nil)
//	if err != nil {
//	    var evalErr *fo.EvalError
//	    if errors.As(err, &evalErr) {
//	        fmt.Println(evalErr.Code, evalErr.Message)
//	    }
//	}
//
// # Performance Features
//
//   - sync.Pool: environment frames are pooled to reduce allocation in
//     deeply recursive evaluations
//   - Generic Cache: a type-safe LRU cache backs the compiled-regex cache
//     without interface{} overhead
//   - BatchEvaluator: independent flash blocks can be evaluated concurrently
//     (EvaluateBatch) when the caller has more than one root to assemble
//
// # Functional Options
//
//	evaluator := flash.NewEvaluator(hostEvaluator, dictionary,
//	    fo.WithMaxRecursionDepth(500),
//	    fo.WithStrictDateTruncation(true),
//	    fo.WithRegexCacheSize(256),
//	)
//
// # Evaluation Stages
//
// Evaluation is a single recursive procedure over the AST, composed of
// small, named stages mirroring the spec's component design:
//
//   - Context: element/type lookup, fixed-value short-circuit
//   - Sub-expression: host-evaluator invocation and result classification
//   - Children: child projection, polymorphism, virtual-rule synthesis
//   - Primitives: regex/numeric/date normalization
//   - Assembly: assignment, primitive-extension splitting, slice flattening,
//     meta.profile injection, mandatory-child validation
//
// # Architecture
//
//   - Small interfaces (1-2 methods each) for composability
//   - Explicit, parent-linked environment instead of ambient/global state
//   - Context-based cancellation threaded through every recursive call
package flashonata
