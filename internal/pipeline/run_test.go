package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jonathan/cerebro/internal/extraction"
	"github.com/jonathan/cerebro/internal/logger"
	"github.com/jonathan/cerebro/internal/types"
)

// memoryStore records every Save call.
type memoryStore struct {
	saved map[string][]types.BenefitRecord
	order []string
	err   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{saved: make(map[string][]types.BenefitRecord)}
}

func (s *memoryStore) Save(_ context.Context, issuerID string, records []types.BenefitRecord) error {
	if s.err != nil {
		return s.err
	}
	s.order = append(s.order, issuerID)
	s.saved[issuerID] = records
	return nil
}

// stubExtractor returns fixed records per URL and remembers every request.
type stubExtractor struct {
	byURL    map[string][]string
	reasons  map[string]error
	panicURL string
	requests []extraction.Request
}

func (s *stubExtractor) ExtractList(_ context.Context, req extraction.Request) extraction.ListResult {
	s.requests = append(s.requests, req)
	if req.SourceURL == s.panicURL {
		panic("strategy bug")
	}
	var result extraction.ListResult
	for _, title := range s.byURL[req.SourceURL] {
		result.Records = append(result.Records, types.BenefitRecord{
			IssuerID:     req.IssuerID,
			BenefitUID:   req.IssuerID + "-" + title,
			Title:        title,
			CategoryHint: req.CategoryHint,
		})
	}
	result.CardsFound = len(result.Records)
	result.Reason = s.reasons[req.SourceURL]
	return result
}

func newOrchestrator(t *testing.T, stub extraction.Extractor, store Store, log logger.Logger) *Orchestrator {
	t.Helper()
	registry := extraction.NewRegistry()
	require.NoError(t, registry.Register("strategy_a", stub))
	return New(registry, Options{Store: store, SourceDelay: 0, Logger: log})
}

func TestRun_EndToEnd(t *testing.T) {
	stub := &stubExtractor{byURL: map[string][]string{"https://x/list": {"uno", "dos"}}}
	store := newMemoryStore()
	core, logs := observer.New(zapcore.InfoLevel)

	o := newOrchestrator(t, stub, store, logger.FromZap(zap.New(core)))
	summary, err := o.Run(context.Background(), []types.Target{{
		IssuerID:       "bank_x",
		ParserStrategy: "strategy_a",
		Sources:        []types.Source{{SourceID: "s1", URL: "https://x/list", CategoryHint: "food"}},
	}})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Total)
	require.Len(t, store.saved["bank_x"], 2)
	for _, rec := range store.saved["bank_x"] {
		assert.Equal(t, "bank_x", rec.IssuerID)
		assert.Equal(t, "food", rec.CategoryHint)
	}
	assert.Equal(t, "uno", store.saved["bank_x"][0].Title)
	assert.Equal(t, "dos", store.saved["bank_x"][1].Title)

	require.Len(t, summary.Targets, 1)
	assert.Equal(t, StateSaved, summary.Targets[0].State)
	assert.Equal(t, 2, summary.Targets[0].Records)
	require.Len(t, summary.Targets[0].Sources, 1)
	assert.Equal(t, SourceExtracted, summary.Targets[0].Sources[0].State)

	finished := logs.FilterMessage("run finished").All()
	require.Len(t, finished, 1)
	assert.EqualValues(t, 2, finished[0].ContextMap()["total_records"])
}

func TestRun_InvalidTargetsAreSkipped(t *testing.T) {
	stub := &stubExtractor{byURL: map[string][]string{"https://x/list": {"uno"}}}
	store := newMemoryStore()
	o := newOrchestrator(t, stub, store, nil)

	source := []types.Source{{SourceID: "s1", URL: "https://x/list"}}
	summary, err := o.Run(context.Background(), []types.Target{
		{IssuerID: "", ParserStrategy: "strategy_a", Sources: source},
		{IssuerID: "bank_y", ParserStrategy: "", Sources: source},
		{IssuerID: "bank_z", ParserStrategy: "nonexistent", Sources: source},
		{IssuerID: "bank_x", ParserStrategy: "strategy_a", Sources: source},
	})
	require.NoError(t, err)

	require.Len(t, summary.Targets, 4)
	assert.Equal(t, StateSkippedInvalid, summary.Targets[0].State)
	assert.Equal(t, StateSkippedInvalid, summary.Targets[1].State)
	assert.Equal(t, StateSkippedUnknownStrategy, summary.Targets[2].State)
	assert.Contains(t, summary.Targets[2].Reason, "nonexistent")
	assert.Equal(t, StateSaved, summary.Targets[3].State)

	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, []string{"bank_x"}, store.order)
	assert.Len(t, stub.requests, 1, "skipped targets never reach the extractor")
}

func TestRun_InvalidSourceDoesNotStopTarget(t *testing.T) {
	stub := &stubExtractor{byURL: map[string][]string{
		"https://x/a": {"a1"},
		"https://x/c": {"c1", "c2"},
	}}
	store := newMemoryStore()
	o := newOrchestrator(t, stub, store, nil)

	summary, err := o.Run(context.Background(), []types.Target{{
		IssuerID:       "bank_x",
		ParserStrategy: "strategy_a",
		Sources: []types.Source{
			{SourceID: "a", URL: "https://x/a"},
			{SourceID: "", URL: "https://x/b"},
			{SourceID: "no-url"},
			{SourceID: "c", URL: "https://x/c"},
		},
	}})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	sources := summary.Targets[0].Sources
	require.Len(t, sources, 4)
	assert.Equal(t, SourceExtracted, sources[0].State)
	assert.Equal(t, SourceFailed, sources[1].State)
	assert.Equal(t, SourceFailed, sources[2].State)
	assert.Equal(t, SourceExtracted, sources[3].State)

	titles := []string{}
	for _, rec := range store.saved["bank_x"] {
		titles = append(titles, rec.Title)
	}
	assert.Equal(t, []string{"a1", "c1", "c2"}, titles, "catalog order is preserved")
}

func TestRun_SourceFailuresAreContained(t *testing.T) {
	stub := &stubExtractor{
		byURL:    map[string][]string{"https://x/ok": {"ok"}},
		reasons:  map[string]error{"https://x/timeout": errors.New("no cards")},
		panicURL: "https://x/panic",
	}
	store := newMemoryStore()
	o := newOrchestrator(t, stub, store, nil)

	summary, err := o.Run(context.Background(), []types.Target{{
		IssuerID:       "bank_x",
		ParserStrategy: "strategy_a",
		Sources: []types.Source{
			{SourceID: "panic", URL: "https://x/panic"},
			{SourceID: "timeout", URL: "https://x/timeout"},
			{SourceID: "ok", URL: "https://x/ok"},
		},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Total)

	sources := summary.Targets[0].Sources
	assert.Equal(t, SourceFailed, sources[0].State)
	assert.Contains(t, sources[0].Reason, "strategy bug")
	assert.Equal(t, SourceFailed, sources[1].State)
	assert.Equal(t, "no cards", sources[1].Reason)
	assert.Equal(t, SourceExtracted, sources[2].State)
}

func TestRun_EmptyTargetIsNotSaved(t *testing.T) {
	stub := &stubExtractor{}
	store := newMemoryStore()
	o := newOrchestrator(t, stub, store, nil)

	summary, err := o.Run(context.Background(), []types.Target{{
		IssuerID:       "bank_x",
		ParserStrategy: "strategy_a",
		Sources:        []types.Source{{SourceID: "s1", URL: "https://x/list"}},
	}})
	require.NoError(t, err)
	assert.Equal(t, StateSkippedEmpty, summary.Targets[0].State)
	assert.True(t, summary.Targets[0].IsSkipped())
	assert.Empty(t, store.order)
	assert.Zero(t, summary.Total)
}

func TestRun_SaveFailureDoesNotAbortRun(t *testing.T) {
	stub := &stubExtractor{byURL: map[string][]string{"https://x/list": {"uno"}}}
	store := newMemoryStore()
	store.err = errors.New("disk full")
	o := newOrchestrator(t, stub, store, nil)

	source := []types.Source{{SourceID: "s1", URL: "https://x/list"}}
	summary, err := o.Run(context.Background(), []types.Target{
		{IssuerID: "bank_x", ParserStrategy: "strategy_a", Sources: source},
		{IssuerID: "bank_y", ParserStrategy: "strategy_a", Sources: source},
	})
	require.NoError(t, err)
	require.Len(t, summary.Targets, 2)
	assert.Equal(t, StateSaveFailed, summary.Targets[0].State)
	assert.Equal(t, StateSaveFailed, summary.Targets[1].State)
	assert.Equal(t, "disk full", summary.Targets[0].Reason)
}

func TestRun_NilStoreStillReturnsRecords(t *testing.T) {
	stub := &stubExtractor{byURL: map[string][]string{"https://x/list": {"uno", "dos"}}}
	o := newOrchestrator(t, stub, nil, nil)

	summary, err := o.Run(context.Background(), []types.Target{{
		IssuerID:       "bank_x",
		ParserStrategy: "strategy_a",
		Sources:        []types.Source{{SourceID: "s1", URL: "https://x/list"}},
	}})
	require.NoError(t, err)
	assert.Len(t, summary.Records, 2)
	assert.Equal(t, StateSaved, summary.Targets[0].State)
}

func TestRun_ProgressEvents(t *testing.T) {
	stub := &stubExtractor{byURL: map[string][]string{"https://x/list": {"uno"}}}
	registry := extraction.NewRegistry()
	require.NoError(t, registry.Register("strategy_a", stub))

	var events []ProgressEvent
	o := New(registry, Options{OnProgress: func(e ProgressEvent) { events = append(events, e) }})

	summary, err := o.Run(context.Background(), []types.Target{{
		IssuerID:       "bank_x",
		ParserStrategy: "strategy_a",
		Sources:        []types.Source{{SourceID: "s1", URL: "https://x/list"}},
	}})
	require.NoError(t, err)

	var states []string
	for _, e := range events {
		assert.Equal(t, summary.RunID.String(), e.RunID)
		assert.Equal(t, "bank_x", e.IssuerID)
		states = append(states, e.State)
	}
	assert.Equal(t, []string{
		"PENDING", "VALIDATED", "STRATEGY_RESOLVED",
		"PENDING", "FETCHED", "EXTRACTED",
		"SOURCES_PROCESSED", "SAVED",
	}, states)
	assert.True(t, TargetState(states[len(states)-1]).Terminal())
}

func TestRun_CancelledContext(t *testing.T) {
	stub := &stubExtractor{byURL: map[string][]string{"https://x/list": {"uno"}}}
	o := newOrchestrator(t, stub, newMemoryStore(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := o.Run(ctx, []types.Target{{
		IssuerID:       "bank_x",
		ParserStrategy: "strategy_a",
		Sources:        []types.Source{{SourceID: "s1", URL: "https://x/list"}},
	}})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, summary)
	assert.Empty(t, stub.requests)
}

func TestRun_DefaultCategoryHint(t *testing.T) {
	stub := &stubExtractor{byURL: map[string][]string{"https://x/list": {"uno"}}}
	o := newOrchestrator(t, stub, nil, nil)

	_, err := o.Run(context.Background(), []types.Target{{
		IssuerID:       "bank_x",
		ParserStrategy: "strategy_a",
		Sources:        []types.Source{{SourceID: "s1", URL: "https://x/list"}},
	}})
	require.NoError(t, err)
	require.Len(t, stub.requests, 1)
	assert.Equal(t, types.DefaultCategoryHint, stub.requests[0].CategoryHint)
	assert.Equal(t, "bank_x", stub.requests[0].IssuerID)
	assert.Equal(t, "s1", stub.requests[0].SourceID)
}

func TestRun_UsesProvidedRunID(t *testing.T) {
	runID := uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2")
	o := New(extraction.NewRegistry(), Options{RunID: runID})

	summary, err := o.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, runID, summary.RunID)
	assert.Zero(t, summary.Total)
	assert.Empty(t, summary.Targets)
}
