package extraction

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cerebro/internal/logger"
	"github.com/jonathan/cerebro/internal/selectors"
	"github.com/jonathan/cerebro/internal/types"
)

func newTestDetailExtractor() *DetailExtractor {
	d := NewDetailExtractor(logger.NewNop())
	d.Delay = 0
	d.Timeout = time.Second
	return d
}

func saboresPattern(t *testing.T) selectors.Pattern {
	t.Helper()
	p, ok := selectors.Lookup(selectors.PatternBancoChileSabores)
	require.True(t, ok)
	return p
}

func TestDetailExtractor_AllFields(t *testing.T) {
	url := "https://sitiospublicos.bancochile.cl/personas/beneficios/sabores/detalle/1"
	fetcher := &fakeFetcher{pages: map[string]string{url: saboresDetail1}}

	result := newTestDetailExtractor().Extract(context.Background(), url, saboresPattern(t), fetcher)
	require.NoError(t, result.Reason)

	data := result.Data
	require.NotNil(t, data.Title)
	assert.Equal(t, "Restaurante Uno Providencia", *data.Title)
	require.NotNil(t, data.ValidityText)
	assert.Equal(t, "Válido hasta el 31/12/2024", *data.ValidityText)
	assert.Equal(t, []string{
		"Pago con tarjeta de crédito",
		"No acumulable con otras promociones",
	}, data.Rules)
	assert.Equal(t, []types.Location{
		{Address: "Av. Providencia 1234, Providencia"},
		{Address: "Alonso de Córdova 5678"},
		{Address: "Las Condes"},
	}, data.Locations)
	for _, loc := range data.Locations {
		assert.Nil(t, loc.Latitude)
		assert.Nil(t, loc.Longitude)
	}
	assert.Equal(t, []string{url}, fetcher.calls)
}

func TestDetailExtractor_FieldsAreIndependent(t *testing.T) {
	url := "https://x/detail/2"
	html := `<html><body><ul class="condiciones"><li>Solo rules here</li></ul></body></html>`
	fetcher := &fakeFetcher{pages: map[string]string{url: html}}

	result := newTestDetailExtractor().Extract(context.Background(), url, saboresPattern(t), fetcher)
	require.NoError(t, result.Reason)
	assert.Nil(t, result.Data.Title)
	assert.Nil(t, result.Data.ValidityText)
	assert.Equal(t, []string{"Solo rules here"}, result.Data.Rules)
	assert.Empty(t, result.Data.Locations)
}

func TestDetailExtractor_FetchFailureYieldsEmptyShell(t *testing.T) {
	tests := []struct {
		name    string
		fetcher *fakeFetcher
	}{
		{name: "network error", fetcher: &fakeFetcher{errs: map[string]error{"https://x/d": errNetwork}}},
		{name: "non-success status", fetcher: &fakeFetcher{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := newTestDetailExtractor().Extract(context.Background(), "https://x/d", saboresPattern(t), tt.fetcher)
			require.Error(t, result.Reason)
			var fetchErr *DetailFetchError
			assert.ErrorAs(t, result.Reason, &fetchErr)
			assert.True(t, result.Data.IsEmpty())
		})
	}
}

func TestDetailExtractor_DelayHonorsContext(t *testing.T) {
	d := newTestDetailExtractor()
	d.Delay = time.Hour
	fetcher := &fakeFetcher{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := d.Extract(ctx, "https://x/d", saboresPattern(t), fetcher)
	assert.ErrorIs(t, result.Reason, context.Canceled)
	assert.Empty(t, fetcher.calls)
}

func TestParseDetail_EmptySelectorsAreSkipped(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(saboresDetail1))
	require.NoError(t, err)

	data := ParseDetail(doc.Selection, selectors.Pattern{DetailTitle: "h1"}, logger.NewNop())
	require.NotNil(t, data.Title)
	assert.Nil(t, data.ValidityText)
	assert.Nil(t, data.Rules)
	assert.Nil(t, data.Locations)
}

func TestParseDetail_RulesAreDirectChildren(t *testing.T) {
	doc := mustDoc(t, `<ul class="condiciones">
  <li>Solo socios <ul> <li>titulares</li> <li>adicionales</li> </ul></li>
  <li>Máximo &lt;2&gt; por mesa</li>
</ul>`)

	data := ParseDetail(doc.Selection, saboresPattern(t), logger.NewNop())
	assert.Equal(t, []string{
		"Solo socios titulares adicionales",
		"Máximo <2> por mesa",
	}, data.Rules)
}

func TestAttempt_RecoversPanic(t *testing.T) {
	ran := false
	assert.NotPanics(t, func() {
		attempt(logger.NewNop(), "title", func() { panic("bad selector") })
		attempt(logger.NewNop(), "rules", func() { ran = true })
	})
	assert.True(t, ran)
}
