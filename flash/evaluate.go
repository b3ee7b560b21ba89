package flash

import (
	"context"
	"time"

	fo "github.com/mechanik-daniel/flashonata"
	"github.com/mechanik-daniel/flashonata/ast"
	"github.com/mechanik-daniel/flashonata/definitions"
	"github.com/mechanik-daniel/flashonata/env"
	"github.com/mechanik-daniel/flashonata/host"
)

// Evaluator is the exported entry point compiling a flash AST node into
// FHIR JSON (spec §1-§2): it wraps the injected host expression evaluator
// and a resolved FHIR definitions dictionary around the recursive
// evaluate_flash procedure.
type Evaluator struct {
	host    host.Evaluator
	dict    *definitions.Dictionary
	opts    *fo.Options
	metrics *fo.Metrics
}

// NewEvaluator constructs an Evaluator bound to a host expression evaluator
// and a resolved definitions dictionary, applying any functional options
// over fo.DefaultOptions().
func NewEvaluator(h host.Evaluator, dict *definitions.Dictionary, opts ...fo.Option) *Evaluator {
	o := fo.DefaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Evaluator{host: h, dict: dict, opts: o, metrics: fo.NewMetrics()}
}

// Metrics returns the evaluator's running counters (spec SPEC_FULL.md
// ambient-stack addition).
func (e *Evaluator) Metrics() *fo.Metrics { return e.metrics }

// Evaluate compiles one flash AST node (a flash block or flash rule) into
// its FHIR JSON value, or an error describing which invariant failed.
func (e *Evaluator) Evaluate(ctx context.Context, node *ast.Node, input any) (any, error) {
	start := time.Now()
	scope := env.New(e.dict, e.opts.RegexCacheSize)
	defer scope.Release()

	if e.opts.Logger != nil {
		scope.BindLogger(e.opts.Logger)
	}
	if e.opts.DisableReordering {
		scope.Bind(env.KeyDisableReordering, true)
	}

	result, err := evaluateFlash(ctx, e.host, node, input, scope, e.opts)

	e.metrics.RecordEvaluate(time.Since(start), err == nil)
	if err != nil {
		e.metrics.RecordError()
	}
	return result, err
}

// groupingKeyFor resolves the FRR grouping key for the ED a flash rule
// targets (spec §4.5 "Flash-rule finalization"). An unnarrowed polymorphic
// ED dispatches on the supplied value's Go type (spec §8 S3: "a number
// produces valueInteger") rather than always taking its first declared
// type's name.
func groupingKeyFor(ed *definitions.ElementDefinition, value any) string {
	if key, ok := polymorphicGroupingKey(ed, value); ok {
		return key
	}
	names := candidateNames(ed)
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

func finalizeRule(node *ast.Node, ctxBlock *blockContext, value any) *host.FlashRuleResult {
	return &host.FlashRuleResult{Key: groupingKeyFor(ctxBlock.ed, value), Kind: string(ctxBlock.kind), Value: value}
}

// flashDispatch sends flash-rule and flash-block sub-expressions back into
// evaluateFlash and every other expression to the host evaluator.
type flashDispatch struct {
	host host.Evaluator
	opts *fo.Options
}

func (d flashDispatch) Evaluate(ctx context.Context, node *ast.Node, input any, scope *env.Env) (any, error) {
	if node.IsFlashRule || node.IsFlashBlock {
		return evaluateFlash(ctx, d.host, node, input, scope, d.opts)
	}
	return d.host.Evaluate(ctx, node, input, scope)
}

// evaluateFlash is the recursive procedure spec §2 describes: context
// initializer -> sub-expression processor -> child projector -> primitive
// normalizer -> post-processor. It is unexported and takes the options as an
// extra argument, so it is not itself a host.Evaluator; flash-rule and
// flash-block sub-expressions reach it through flashDispatch.
func evaluateFlash(ctx context.Context, he host.Evaluator, node *ast.Node, input any, scope *env.Env, opts *fo.Options) (any, error) {
	select {
	case <-ctx.Done():
		return nil, fo.NewErr(fo.ErrCanceled).
			Position(node.Position, node.Start, node.Line).
			Wrap(ctx.Err()).
			Message("evaluation canceled: %v", ctx.Err()).
			Build()
	default:
	}

	init, ierr := initContext(node, scope)
	if ierr != nil {
		return nil, ierr
	}
	ctxBlock := init.ctx

	if init.short {
		if node.IsFlashRule {
			return finalizeRule(node, ctxBlock, init.shortVal), nil
		}
		return init.shortVal, nil
	}

	if node.IsFlashBlock {
		// Force the slice-error accumulator to bind on this scope so every
		// descendant rule (same scope or a virtual rule's child scope)
		// shares it; filtered once, here, at the block boundary.
		scope.CollectedSliceErrors()
	}

	sub, serr := processSubExpressions(ctx, flashDispatch{host: he, opts: opts}, node, input, scope)
	if serr != nil {
		return nil, serr
	}
	var inline any
	if sub.hasInline {
		inline = sub.inlineResult
	}

	if node.IsFlashRule && ctxBlock.ed != nil && ctxBlock.ed.IsUnnarrowedPolymorphic() {
		ctxBlock = resolvePolymorphicBlock(scope.Dictionary(), ctxBlock, inline)
	}

	switch ctxBlock.kind {
	case definitions.KindSystem:
		normalized, nerr := normalizeScalar(scope, ctxBlock.ed, inline, opts)
		if nerr != nil {
			return nil, nerr
		}
		return finalizeRule(node, ctxBlock, normalized), nil

	case definitions.KindPrimitiveType:
		assembled, aerr := assembleObjectResult(ctx, he, node, ctxBlock, inline, sub, scope, opts)
		if aerr != nil {
			return nil, aerr
		}
		if node.IsFlashBlock {
			if assembled.Len() == 0 {
				return nil, nil
			}
			return assembled, nil
		}
		normalizedScalar, nerr := normalizeScalar(scope, ctxBlock.ed, inline, opts)
		if nerr != nil {
			return nil, nerr
		}
		extFlat := flattenPrimitives(assembled)
		extMap, _ := extFlat.(map[string]any)
		wrapped := wrapPrimitive(normalizedScalar, extMap)
		if wrapped == nil {
			return nil, nil
		}
		return finalizeRule(node, ctxBlock, wrapped), nil

	case definitions.KindComplexType, definitions.KindResource:
		if node.IsFlashRule && ctxBlock.kind == definitions.KindResource {
			if arr, ok := inline.([]any); ok {
				list := make([]*host.FlashRuleResult, 0, len(arr))
				for _, item := range arr {
					assembled, aerr := assembleObjectResult(ctx, he, node, ctxBlock, item, sub, scope, opts)
					if aerr != nil {
						return nil, aerr
					}
					list = append(list, finalizeRule(node, ctxBlock, assembled))
				}
				return list, nil
			}
		}

		assembled, aerr := assembleObjectResult(ctx, he, node, ctxBlock, inline, sub, scope, opts)
		if aerr != nil {
			return nil, aerr
		}

		if node.IsFlashBlock {
			if assembled.Len() == 0 || (assembled.Len() == 1 && assembled.Has("resourceType")) {
				return nil, nil
			}
			return assembled, nil
		}
		return finalizeRule(node, ctxBlock, assembled), nil

	default:
		return nil, fo.NewErr(fo.ErrMissingKind).
			Position(node.Position, node.Start, node.Line).
			At("", "", node.Instanceof).
			Message("unrecognized kind %q", ctxBlock.kind).
			Build()
	}
}

// assembleObjectResult runs the shared object-assembly pipeline (spec
// §4.5): child projection, assignment, slice flattening, optional meta
// injection, mandatory-children validation (deferred per §4.5/§7's rule),
// and key reordering.
func assembleObjectResult(ctx context.Context, he host.Evaluator, node *ast.Node, ctxBlock *blockContext, inline any, sub *subExprOutcome, scope *env.Env, opts *fo.Options) (*Result, error) {
	projections, virtualErrs, perr := projectChildren(ctx, he, node, ctxBlock.children, inline, sub, scope, opts)
	if perr != nil {
		return nil, perr
	}

	assembled, aerr := buildResult(ctxBlock, node, inline, projections)
	if aerr != nil {
		return nil, aerr
	}

	flattenSlices(assembled)

	if ctxBlock.profileURL != "" {
		scope.SnapshotKeysBeforeAutoInjection(keySet(assembled.Keys()))
		injectMetaProfile(assembled, ctxBlock.profileURL)
	}

	if !deferMandatoryCheck(node, ctxBlock) {
		if merr := validateMandatory(scope, node, ctxBlock.children, assembled, virtualErrs); merr != nil {
			return nil, merr
		}
		if node.IsFlashBlock {
			if serr := filterSliceErrors(scope, assembled); serr != nil {
				return nil, serr
			}
		}
	}

	reorderKeys(assembled, ctxBlock.resourceType, ctxBlock.children, scope)
	return assembled, nil
}
