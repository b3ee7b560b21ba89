// Package context provides the SpecContext which manages FHIR version-specific
// resources for flash evaluation.
//
// SpecContext downloads StructureDefinitions, and optionally CodeSystems and
// ValueSets, from the FHIR package registry for the selected FHIR version,
// then resolves them into the *definitions.Dictionary a flash.Evaluator reads.
//
// Usage:
//
//	ctx := context.Background()
//	specCtx, err := fhircontext.New(ctx, fv.R4, fhircontext.Options{
//	    LoadTerminology: true,
//	})
//	if err != nil {
//	    return err
//	}
//
//	dict, err := specCtx.Dictionary()
//	if err != nil {
//	    return err
//	}
//	e := flash.NewEvaluator(host, dict)
package context
