package selectors

import (
	"net/url"
	"strings"
)

// rule maps a URL path substring to a pattern name.
type rule struct {
	contains string
	pattern  string
}

// rules are evaluated in order and the first match wins. Patterns overlap
// (every "sabores" URL also contains "/beneficios"), so more specific rules
// must stay ahead of broader ones; new rules go where they do not shadow an
// existing match.
var rules = []rule{
	{contains: "/beneficios/sabores", pattern: PatternBancoChileSabores},
	{contains: "/beneficios", pattern: PatternBancoChileBenefits},
	{contains: "/promociones", pattern: PatternPromoGrid},
	{contains: "/promos", pattern: PatternPromoGrid},
}

// Resolve returns the selector pattern for a listing URL. It never fails: an
// unrecognized URL gets the default pattern and recognized is false, which
// callers should surface as a warning.
func Resolve(sourceURL string) (pattern Pattern, recognized bool) {
	path := strings.ToLower(urlPath(sourceURL))
	for _, r := range rules {
		if strings.Contains(path, r.contains) {
			return patterns[r.pattern], true
		}
	}
	return Default(), false
}

func urlPath(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Path == "" {
		return raw
	}
	return parsed.Path
}
