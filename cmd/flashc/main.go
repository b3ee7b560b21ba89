// Package main implements the flashc CLI tool.
// It runs a precompiled flash AST against a FHIR definitions dictionary and
// prints the resulting resource JSON, the way gofhir-validator's CLI runs a
// resource through the validator and prints its issues.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/mechanik-daniel/flashonata/ast"
	"github.com/mechanik-daniel/flashonata/definitions"
	"github.com/mechanik-daniel/flashonata/env"
	"github.com/mechanik-daniel/flashonata/flash"
)

const (
	version = "0.1.0"
	usage   = `flashc - FLASH template evaluator

Usage:
  flashc [options] -ast <node.json> -dict <dictionary.json>

A mapping-language parser and a full expression engine are external
collaborators this tool does not embed; -ast must already be the compiled
node tree the evaluator consumes (ast.Node, field names verbatim), and its
literal sub-expressions must be encoded as {"Type":"literal","Value":"<json>"}
nodes. Anything else (path navigation, function calls, variable binds)
requires wiring in a real host.Evaluator in place of flashc's literal-only
stand-in.

Options:
`
)

type config struct {
	astPath  string
	dictPath string
	showVer  bool
	help     bool
}

func main() {
	cfg := parseFlags()

	if cfg.showVer {
		fmt.Printf("flashc v%s\n", version)
		os.Exit(0)
	}
	if cfg.help || cfg.astPath == "" || cfg.dictPath == "" {
		flag.Usage()
		os.Exit(0)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() *config {
	cfg := &config{}
	flag.StringVar(&cfg.astPath, "ast", "", "path to the compiled AST node JSON")
	flag.StringVar(&cfg.dictPath, "dict", "", "path to the definitions.Dictionary JSON")
	flag.BoolVar(&cfg.showVer, "v", false, "show version")
	flag.BoolVar(&cfg.help, "help", false, "show help")

	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	return cfg
}

func run(cfg *config) error {
	node, err := loadAST(cfg.astPath)
	if err != nil {
		return fmt.Errorf("loading AST: %w", err)
	}
	dict, err := loadDictionary(cfg.dictPath)
	if err != nil {
		return fmt.Errorf("loading dictionary: %w", err)
	}

	e := flash.NewEvaluator(literalHost{}, dict)
	out, err := e.Evaluate(context.Background(), node, nil)
	if err != nil {
		return fmt.Errorf("evaluating: %w", err)
	}

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Println(string(encoded))
	return nil
}

func loadAST(path string) (*ast.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var node ast.Node
	if err := json.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	return &node, nil
}

func loadDictionary(path string) (*definitions.Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var dict definitions.Dictionary
	if err := json.Unmarshal(data, &dict); err != nil {
		return nil, err
	}
	return &dict, nil
}

// literalHost is a stand-in host.Evaluator that only knows how to evaluate
// literal nodes (Type == "literal", Value holding the JSON-encoded literal).
// A real mapping-language interpreter plugs into flash.NewEvaluator in its
// place; flashc ships this so the CLI is runnable standalone against ASTs
// that only assign literal values.
type literalHost struct{}

func (literalHost) Evaluate(_ context.Context, node *ast.Node, _ any, _ *env.Env) (any, error) {
	if node.Type != "literal" {
		return nil, fmt.Errorf("flashc's literal-only host cannot evaluate node type %q; wire in a real host.Evaluator for anything beyond literal values", node.Type)
	}
	if node.Value == "" {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal([]byte(node.Value), &v); err != nil {
		return nil, fmt.Errorf("decoding literal value %q: %w", node.Value, err)
	}
	return v, nil
}
