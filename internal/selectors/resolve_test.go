package selectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve_KnownPatterns(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://sitiospublicos.bancochile.cl/personas/beneficios/sabores", PatternBancoChileSabores},
		{"https://sitiospublicos.bancochile.cl/personas/beneficios/sabores/santiago", PatternBancoChileSabores},
		{"https://sitiospublicos.bancochile.cl/personas/beneficios/viajes", PatternBancoChileBenefits},
		{"https://sitiospublicos.bancochile.cl/personas/BENEFICIOS", PatternBancoChileBenefits},
		{"https://www.example-bank.cl/promociones/verano", PatternPromoGrid},
		{"https://www.example-bank.cl/tarjetas/promos", PatternPromoGrid},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			pattern, recognized := Resolve(tt.url)
			assert.True(t, recognized)
			assert.Equal(t, tt.expected, pattern.Name)
		})
	}
}

func TestResolve_UnrecognizedReturnsDefault(t *testing.T) {
	for _, raw := range []string{
		"https://www.example.com/ofertas",
		"",
		"::not a url::",
	} {
		pattern, recognized := Resolve(raw)
		assert.False(t, recognized, raw)
		assert.Equal(t, Default(), pattern, raw)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	url := "https://sitiospublicos.bancochile.cl/personas/beneficios/sabores"
	first, _ := Resolve(url)
	for i := 0; i < 10; i++ {
		again, _ := Resolve(url)
		assert.Equal(t, first, again)
	}
}

func TestResolve_QueryAndHostDoNotMatch(t *testing.T) {
	// Only the path is matched, so a query string mentioning a rule is ignored.
	pattern, recognized := Resolve("https://beneficios.example.com/home?next=/beneficios")
	assert.False(t, recognized)
	assert.Equal(t, PatternGenericCard, pattern.Name)
}

func TestPatterns_Complete(t *testing.T) {
	for name, p := range patterns {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, name, p.Name)
			assert.NotEmpty(t, p.Card)
			assert.NotEmpty(t, p.LinkAttr)
			assert.NotEmpty(t, p.DetailTitle)
			assert.NotEmpty(t, p.DetailRuleItem)
			if p.TextItems == "" {
				assert.NotEmpty(t, p.Title, "pattern needs TextItems or a title selector")
			}
		})
	}
}

func TestRules_ReferenceKnownPatterns(t *testing.T) {
	for _, r := range rules {
		_, ok := Lookup(r.pattern)
		assert.True(t, ok, r.pattern)
	}
}
