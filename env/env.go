// Package env implements the flash evaluator's environment: a nested,
// parent-linked scope chain carrying the read-only FHIR definitions
// dictionary, the compiled-regex cache, an optional verbose logger, and the
// transient per-scope accumulators spec §3/§6 describe.
package env

import (
	"log/slog"
	"regexp"
	"sync"

	fo "github.com/mechanik-daniel/flashonata"
	"github.com/mechanik-daniel/flashonata/cache"
	"github.com/mechanik-daniel/flashonata/definitions"
)

// Key names an environment-scoped binding slot (spec §6 "Environment
// lookup keys").
type Key string

// Well-known environment keys (spec §6).
const (
	KeyDictionary              Key = "dictionary"
	KeyRegexCache              Key = "compiledFhirRegexCache"
	KeyVerboseLogger           Key = "__verbose_logger"
	KeyDisableReordering       Key = "__disable_reordering"
	KeyCollectedSliceErrors    Key = "__collectedSliceErrors"
	KeyKeysBeforeAutoInjection Key = "__keys_before_auto_injection"
)

// Env is a single scope frame. Lookups walk up Parent; binds always apply
// to the frame they're called on (spec §3 "Environment").
type Env struct {
	parent   *Env
	bindings map[Key]any
	vars     map[string]any
}

var envPool = sync.Pool{
	New: func() any { return &Env{} },
}

// New creates a root environment bound to a resolved dictionary and a
// regex cache of the given capacity (spec §6's process-wide symbols).
func New(dict *definitions.Dictionary, regexCacheSize int) *Env {
	e := acquire()
	e.bindings[KeyDictionary] = dict
	e.bindings[KeyRegexCache] = cache.New[string, *regexp.Regexp](regexCacheSize)
	return e
}

func acquire() *Env {
	e := envPool.Get().(*Env)
	e.parent = nil
	e.bindings = make(map[Key]any, 4)
	e.vars = make(map[string]any, 4)
	return e
}

// Child pushes a new child scope onto this environment (spec §3 "nested
// scope chain").
func (e *Env) Child() *Env {
	c := acquire()
	c.parent = e
	return c
}

// Release returns this single frame to the pool. It does not release
// ancestors (they may still be referenced by sibling scopes) and must only
// be called once this frame and its descendants are no longer reachable.
func (e *Env) Release() {
	e.parent = nil
	clear(e.bindings)
	clear(e.vars)
	envPool.Put(e)
}

// Get walks the scope chain for an environment-level binding.
func (e *Env) Get(key Key) (any, bool) {
	for s := e; s != nil; s = s.parent {
		if v, ok := s.bindings[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// Bind sets an environment-level binding on this scope.
func (e *Env) Bind(key Key, value any) {
	e.bindings[key] = value
}

// GetVar walks the scope chain for a mapping-language variable (the host
// evaluator's own namespace, distinct from the environment keys above).
func (e *Env) GetVar(name string) (any, bool) {
	for s := e; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// BindVar sets a mapping-language variable on this scope. Host-evaluator
// "bind" nodes call this directly (spec §4.2).
func (e *Env) BindVar(name string, value any) {
	e.vars[name] = value
}

// Dictionary returns the resolved FHIR definitions dictionary.
func (e *Env) Dictionary() *definitions.Dictionary {
	v, ok := e.Get(KeyDictionary)
	if !ok {
		return nil
	}
	return v.(*definitions.Dictionary)
}

// regexCache returns the shared compiled-regex cache.
func (e *Env) regexCache() *cache.Cache[string, *regexp.Regexp] {
	v, ok := e.Get(KeyRegexCache)
	if !ok {
		return nil
	}
	return v.(*cache.Cache[string, *regexp.Regexp])
}

// GetCompiledRegex implements the GET half of spec §4.4's "compiled-regex
// cache with GET/SET entries": returns a cached compiled pattern, or false
// on a miss.
func (e *Env) GetCompiledRegex(pattern string) (*regexp.Regexp, bool) {
	c := e.regexCache()
	if c == nil {
		return nil, false
	}
	return c.Get(pattern)
}

// SetCompiledRegex implements the SET half: caches a freshly compiled
// pattern and returns it, letting the caller chain compile-on-miss.
func (e *Env) SetCompiledRegex(pattern string, re *regexp.Regexp) *regexp.Regexp {
	if c := e.regexCache(); c != nil {
		c.Set(pattern, re)
	}
	return re
}

// Logger returns the bound verbose logger, or nil if none is bound.
func (e *Env) Logger() *slog.Logger {
	v, ok := e.Get(KeyVerboseLogger)
	if !ok {
		return nil
	}
	return v.(*slog.Logger)
}

// BindLogger binds a verbose logger on this scope.
func (e *Env) BindLogger(logger *slog.Logger) {
	e.Bind(KeyVerboseLogger, logger)
}

// DisableReordering reports whether __disable_reordering is bound true
// anywhere up the chain.
func (e *Env) DisableReordering() bool {
	v, ok := e.Get(KeyDisableReordering)
	return ok && v == true
}

// CollectedSliceErrors returns the accumulator bound at or above this
// scope, creating one on this scope if none exists yet. Errors appended
// through AppendSliceError are scope-local (spec §3 "die with the scope").
func (e *Env) CollectedSliceErrors() *[]*fo.EvalError {
	if v, ok := e.Get(KeyCollectedSliceErrors); ok {
		return v.(*[]*fo.EvalError)
	}
	acc := new([]*fo.EvalError)
	e.Bind(KeyCollectedSliceErrors, acc)
	return acc
}

// AppendSliceError records a deferred slice-validation error (spec §7
// "Slice-validation errors are accumulated in __collectedSliceErrors").
func (e *Env) AppendSliceError(err *fo.EvalError) {
	acc := e.CollectedSliceErrors()
	*acc = append(*acc, err)
}

// KeysBeforeAutoInjection returns the pre-injection key snapshot bound on
// this scope, if any (spec §4.5 reordering-skip optimization).
func (e *Env) KeysBeforeAutoInjection() (map[string]bool, bool) {
	v, ok := e.Get(KeyKeysBeforeAutoInjection)
	if !ok {
		return nil, false
	}
	return v.(map[string]bool), true
}

// SnapshotKeysBeforeAutoInjection records the current result keys on this
// scope for the later cheap equality check.
func (e *Env) SnapshotKeysBeforeAutoInjection(keys map[string]bool) {
	e.Bind(KeyKeysBeforeAutoInjection, keys)
}
