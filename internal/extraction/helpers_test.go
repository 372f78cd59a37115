package extraction

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cerebro/internal/selectors"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func mustPattern(t *testing.T, name string) selectors.Pattern {
	t.Helper()
	p, ok := selectors.Lookup(name)
	require.True(t, ok, name)
	return p
}
