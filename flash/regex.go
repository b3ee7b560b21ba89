package flash

import (
	"regexp"

	"github.com/mechanik-daniel/flashonata/env"
)

// compiledRegex resolves a pattern through the environment's compiled-regex
// cache, compiling and storing it on a miss (spec §4.4/§6's GET/SET pair).
func compiledRegex(scope *env.Env, pattern string) (*regexp.Regexp, error) {
	if re, ok := scope.GetCompiledRegex(pattern); ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return scope.SetCompiledRegex(pattern, re), nil
}
