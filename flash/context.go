package flash

import (
	fo "github.com/mechanik-daniel/flashonata"
	"github.com/mechanik-daniel/flashonata/ast"
	"github.com/mechanik-daniel/flashonata/definitions"
	"github.com/mechanik-daniel/flashonata/env"
)

// blockContext is the output of context initialization (spec §4.1): the
// structural kind of the node, its ordered children, and (for a resource
// node) the resourceType/profileUrl the post-processor needs.
type blockContext struct {
	kind         definitions.Kind
	children     []*definitions.ElementDefinition
	resourceType string
	profileURL   string
	ed           *definitions.ElementDefinition // nil for flash blocks
}

// initResult carries either a live blockContext to keep processing, or a
// short-circuit value for a fixed-value ED (spec §4.1 "may short-circuit
// with a fixed-value FRR").
type initResult struct {
	ctx      *blockContext
	short    bool
	shortVal any
}

// initContext implements spec §4.1: resolve a flash-rule or flash-block
// node to its structural kind and children, or short-circuit with a
// fixed value.
func initContext(node *ast.Node, scope *env.Env) (*initResult, *fo.EvalError) {
	dict := scope.Dictionary()

	if node.IsFlashRule {
		if node.FlashPathRefKey == "" {
			return nil, fo.NewErr(fo.ErrMissingRefKey).
				Position(node.Position, node.Start, node.Line).
				At("", "", node.Instanceof).
				Message("flash rule node is missing flashPathRefKey").
				Build()
		}

		ed, ok := dict.LookupElement(node.FlashPathRefKey)
		if !ok {
			return nil, fo.NewErr(fo.ErrElementLookupFailed).
				Position(node.Position, node.Start, node.Line).
				At(node.FlashPathRefKey, "", node.Instanceof).
				Message("no element definition found for %q", node.FlashPathRefKey).
				Build()
		}

		if len(ed.Names) == 0 || (!ed.IsUnnarrowedPolymorphic() && len(ed.Names) != 1) {
			return nil, fo.NewErr(fo.ErrMissingName).
				Position(node.Position, node.Start, node.Line).
				At(ed.Path, ed.FromDefinition, node.Instanceof).
				Message("element %q has %d resolved names, want exactly one (or more than one only for an unnarrowed polymorphic element)", ed.Path, len(ed.Names)).
				Build()
		}

		if ed.Max == "0" {
			return nil, fo.NewErr(fo.ErrForbiddenElement).
				Position(node.Position, node.Start, node.Line).
				At(ed.Path, ed.FromDefinition, node.Instanceof).
				Message("element %q is forbidden (max = 0)", ed.Path).
				Build()
		}

		if ed.Kind == "" {
			return nil, fo.NewErr(fo.ErrMissingKind).
				Position(node.Position, node.Start, node.Line).
				At(ed.Path, ed.FromDefinition, node.Instanceof).
				Message("element %q has no resolved kind", ed.Path).
				Build()
		}

		if ed.FixedValue != nil {
			return &initResult{ctx: &blockContext{kind: ed.Kind, ed: ed}, short: true, shortVal: ed.FixedValue}, nil
		}

		ctx := &blockContext{kind: ed.Kind, ed: ed}
		if ed.Kind != definitions.KindSystem {
			ctx.children = dict.ChildrenOfElement(node.FlashPathRefKey)
		}
		return &initResult{ctx: ctx}, nil
	}

	// Flash block: instanceof names a FHIR type directly.
	tm, ok := dict.LookupType(node.Instanceof)
	if !ok {
		return nil, fo.NewErr(fo.ErrElementLookupFailed).
			Position(node.Position, node.Start, node.Line).
			At("", "", node.Instanceof).
			Message("no type metadata found for %q", node.Instanceof).
			Build()
	}

	ctx := &blockContext{
		kind:     tm.Kind,
		children: dict.ChildrenOfType(node.Instanceof),
	}
	if tm.Kind == definitions.KindResource {
		ctx.resourceType = tm.Type
		if tm.Derivation == definitions.DerivationConstraint {
			ctx.profileURL = tm.URL
		}
	}
	return &initResult{ctx: ctx}, nil
}
