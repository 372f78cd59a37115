package extraction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	noop := ExtractorFunc(func(context.Context, Request) ListResult { return ListResult{} })

	require.NoError(t, r.Register("strategy_b", noop))
	require.NoError(t, r.Register("strategy_a", noop))

	assert.Error(t, r.Register("strategy_a", noop), "duplicate names are rejected")
	assert.Error(t, r.Register("", noop))
	assert.Error(t, r.Register("strategy_c", nil))

	assert.Equal(t, []string{"strategy_a", "strategy_b"}, r.Names())

	e, err := r.Lookup("strategy_a")
	require.NoError(t, err)
	assert.NotNil(t, e)

	_, err = r.Lookup("nonexistent")
	var unknown *UnknownStrategyError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "nonexistent", unknown.Strategy)
	assert.Contains(t, err.Error(), `"nonexistent"`)
}

func TestExtractorFunc(t *testing.T) {
	var got Request
	f := ExtractorFunc(func(_ context.Context, req Request) ListResult {
		got = req
		return ListResult{CardsFound: 3}
	})

	result := f.ExtractList(context.Background(), Request{IssuerID: "bank_x"})
	assert.Equal(t, 3, result.CardsFound)
	assert.Equal(t, "bank_x", got.IssuerID)
}
