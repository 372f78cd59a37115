package extraction

import (
	"context"
	"fmt"
	"sort"
)

// Request identifies one listing page to extract.
type Request struct {
	IssuerID     string
	SourceID     string
	SourceURL    string
	CategoryHint string
}

// Extractor turns one listing page into benefit records. Implementations
// report failures through ListResult and do not panic on bad pages.
type Extractor interface {
	ExtractList(ctx context.Context, req Request) ListResult
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, req Request) ListResult

// ExtractList calls f.
func (f ExtractorFunc) ExtractList(ctx context.Context, req Request) ListResult {
	return f(ctx, req)
}

// Registry maps parser strategy names to extractors.
type Registry struct {
	extractors map[string]Extractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{extractors: make(map[string]Extractor)}
}

// Register adds an extractor under name. Names are unique.
func (r *Registry) Register(name string, e Extractor) error {
	if name == "" {
		return fmt.Errorf("strategy name is empty")
	}
	if e == nil {
		return fmt.Errorf("strategy %q: extractor is nil", name)
	}
	if _, exists := r.extractors[name]; exists {
		return fmt.Errorf("strategy %q already registered", name)
	}
	r.extractors[name] = e
	return nil
}

// Lookup returns the extractor for name or an *UnknownStrategyError.
func (r *Registry) Lookup(name string) (Extractor, error) {
	e, ok := r.extractors[name]
	if !ok {
		return nil, &UnknownStrategyError{Strategy: name}
	}
	return e, nil
}

// Names returns the registered strategy names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.extractors))
	for name := range r.extractors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
