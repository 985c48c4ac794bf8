package path

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// parseCacheSize bounds the number of memoized path expressions. Definitions
// reuse a small set of paths across every node of a conversion, so the cache
// stays warm even for large trees.
const parseCacheSize = 512

// parseCache memoizes parsed path expressions keyed by their literal text.
// Parsing is pure and deterministic, so the cache is purely additive and
// safe to share across conversions.
//
//nolint:gochecknoglobals // Process-wide memoization of a pure function.
var parseCache = mustNewCache()

func mustNewCache() *lru.Cache[string, []Step] {
	cache, err := lru.New[string, []Step](parseCacheSize)
	if err != nil {
		// lru.New only fails for a non-positive size.
		panic(err)
	}

	return cache
}
