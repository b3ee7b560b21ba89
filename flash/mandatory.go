package flash

import (
	"strings"

	fo "github.com/mechanik-daniel/flashonata"
	"github.com/mechanik-daniel/flashonata/ast"
	"github.com/mechanik-daniel/flashonata/definitions"
	"github.com/mechanik-daniel/flashonata/env"
)

// validateMandatory implements spec §4.5's "Mandatory children validation":
// every child with min >= 1 must have a candidate name present in result
// (and, when min > 1, an array of length >= min). A missing mandatory
// slice is deferred to the owning flash block's boundary via
// scope.AppendSliceError rather than failing immediately (spec §7
// "Mandatory slice presence is validated at the flash-block level only").
func validateMandatory(scope *env.Env, node *ast.Node, children []*definitions.ElementDefinition, result *Result, virtualErrs map[string]*fo.EvalError) *fo.EvalError {
	for _, ed := range children {
		if ed.MinCount < 1 {
			continue
		}

		present := false
		var val any
		for _, n := range candidateNames(ed) {
			if v, ok := result.Get(baseKeyOf(n)); ok {
				present, val = true, v
				break
			}
		}

		satisfied := present
		if present && ed.MinCount > 1 {
			arr, ok := val.([]any)
			satisfied = ok && len(arr) >= ed.MinCount
		}
		if satisfied {
			continue
		}

		var mErr *fo.EvalError
		if verr, ok := virtualErrs[ed.FlashPathRefKey]; ok {
			mErr = verr
		} else {
			mErr = fo.NewErr(fo.ErrMandatoryMissing).
				Position(node.Position, node.Start, node.Line).
				At(ed.Path, ed.FromDefinition, node.Instanceof).
				Message("mandatory element %q is missing", ed.Path).
				Build()
		}

		if ed.SliceName != "" {
			scope.AppendSliceError(mErr)
			continue
		}
		return mErr
	}
	return nil
}

// deferMandatoryCheck implements spec §4.5/§7's deferral rule: a non-
// virtual flash rule targeting a non-array (max = "1") element defers its
// own mandatory-children check to let an enclosing merge supply missing
// children later. Flash blocks and virtual rules never defer.
func deferMandatoryCheck(node *ast.Node, ctx *blockContext) bool {
	if !node.IsFlashRule || node.IsVirtualRule {
		return false
	}
	return ctx.ed != nil && !ctx.ed.IsArray
}

// filterSliceErrors implements spec §7's slice-error filtering at the
// flash-block boundary: a collected slice error is discarded if the path
// it names is actually present in the final result, resolved structurally
// rather than via the source's URL-matching heuristic (spec §9 open
// question).
func filterSliceErrors(scope *env.Env, result *Result) *fo.EvalError {
	acc := scope.CollectedSliceErrors()
	for _, err := range *acc {
		if err.FhirElement != "" && pathPresentInResult(err.FhirElement, result) {
			if l := scope.Logger(); l != nil {
				l.Warn("slice error discarded", "element", err.FhirElement, "code", err.Code)
			}
			continue
		}
		return err
	}
	return nil
}

func lastPathSegment(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}
	return path
}

func pathPresentInResult(path string, result *Result) bool {
	seg := baseKeyOf(lastPathSegment(path))
	v, ok := result.Get(seg)
	if !ok {
		return false
	}
	switch t := v.(type) {
	case []any:
		return len(t) > 0
	case nil:
		return false
	default:
		return true
	}
}
