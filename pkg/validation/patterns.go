package validation

import (
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"
)

// patternCache memoises compiled descriptor patterns. Expressions that fail to
// compile are cached as nil so they are skipped without recompiling.
type patternCache struct {
	cache *lru.Cache[string, *regexp.Regexp]
}

func newPatternCache(size int) *patternCache {
	c, err := lru.New[string, *regexp.Regexp](size)
	if err != nil {
		// lru only rejects non-positive sizes.
		c, _ = lru.New[string, *regexp.Regexp](DefaultPatternCacheSize)
	}
	return &patternCache{cache: c}
}

func (p *patternCache) get(expr string) *regexp.Regexp {
	if re, ok := p.cache.Get(expr); ok {
		return re
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		re = nil
	}
	p.cache.Add(expr, re)
	return re
}

// CompilePattern reports whether expr is usable as a field pattern.
func CompilePattern(expr string) error {
	_, err := regexp.Compile(expr)
	return err
}
