// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/cerebro/internal/pipeline"
	"github.com/jonathan/cerebro/internal/selectors"
	"github.com/jonathan/cerebro/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRunSummary outputs per-target outcomes and the record total of a run.
func (p *Printer) PrintRunSummary(summary *pipeline.Summary) {
	if summary == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:      %s\n", summary.RunID))
	sb.WriteString(fmt.Sprintf("Duration: %s\n", summary.Duration.Round(time.Millisecond)))
	sb.WriteString(fmt.Sprintf("Targets:  %d\n", len(summary.Targets)))
	sb.WriteString(fmt.Sprintf("Records:  %d\n", summary.Total))

	for _, target := range summary.Targets {
		sb.WriteString("\n")
		icon := "✓"
		if target.State != pipeline.StateSaved {
			icon = "⚠"
		}
		sb.WriteString(fmt.Sprintf("%s %s [%s] %d records\n", icon, displayID(target.IssuerID), target.State, target.Records))
		if target.Reason != "" {
			sb.WriteString(fmt.Sprintf("    %s\n", target.Reason))
		}
		for _, source := range target.Sources {
			sb.WriteString(fmt.Sprintf("    • %s %s: %d/%d cards\n", source.SourceID, source.State, source.Records, source.CardsFound))
		}
	}

	p.printBox("EXTRACTION RUN SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCatalogCheck outputs the pre-flight verdict of every catalog entry.
func (p *Printer) PrintCatalogCheck(checks []pipeline.TargetCheck) {
	runnable := 0
	for _, c := range checks {
		if c.Runnable() {
			runnable++
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Entries: %d (runnable: %d)\n", len(checks), runnable))

	for _, c := range checks {
		sb.WriteString("\n")
		if c.Runnable() {
			sb.WriteString(fmt.Sprintf("✓ #%d %s (%s), %d sources\n", c.Index, displayID(c.IssuerID), c.Strategy, c.Sources))
		} else {
			sb.WriteString(fmt.Sprintf("✗ #%d %s [%s]\n", c.Index, displayID(c.IssuerID), c.State))
			sb.WriteString(fmt.Sprintf("    %s\n", c.Reason))
		}
		count := min(len(c.InvalidSources), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("    ⚠ %s\n", c.InvalidSources[i]))
		}
		if len(c.InvalidSources) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("    ... and %d more\n", len(c.InvalidSources)-maxItemsToShow))
		}
	}

	p.printBox("CATALOG CHECK", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintPattern outputs the selector pattern a URL resolves to.
func (p *Printer) PrintPattern(url string, pattern selectors.Pattern, recognized bool) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("URL:      %s\n", url))
	sb.WriteString(fmt.Sprintf("Pattern:  %s\n", pattern.Name))
	if !recognized {
		sb.WriteString("          (unrecognized URL, default pattern)\n")
	}
	sb.WriteString("\n")

	fields := []struct{ name, value string }{
		{"card", pattern.Card},
		{"texts", pattern.TextItems},
		{"title", pattern.Title},
		{"discount", pattern.Discount},
		{"link", pattern.Link},
		{"detail title", pattern.DetailTitle},
		{"validity", pattern.DetailValidity},
		{"rules", joinSelectors(pattern.DetailRulesContainer, pattern.DetailRuleItem)},
		{"locations", pattern.DetailLocationCard},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("%-13s %s\n", f.name+":", f.value))
	}

	p.printBox("SELECTOR PATTERN", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRecords outputs the first few records of one issuer.
func (p *Printer) PrintRecords(issuerID string, records []types.BenefitRecord) {
	if len(records) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total records: %d\n\n", len(records)))

	count := min(len(records), maxItemsToShow)
	for i := 0; i < count; i++ {
		rec := records[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, rec.Title))
		if rec.Discount.Value != "" {
			sb.WriteString(fmt.Sprintf("    Discount: %s\n", rec.Discount.Value))
		}
		sb.WriteString(fmt.Sprintf("    Scope: %s (%d locations)\n", rec.GeoScope, len(rec.Locations)))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}
	if len(records) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more\n", len(records)-maxItemsToShow))
	}

	p.printBox(fmt.Sprintf("RECORDS: %s", strings.ToUpper(issuerID)), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRunRecords outputs a records box for every target whose records reached the store.
func (p *Printer) PrintRunRecords(summary *pipeline.Summary) {
	if summary == nil {
		return
	}
	byIssuer := make(map[string][]types.BenefitRecord)
	for _, rec := range summary.Records {
		byIssuer[rec.IssuerID] = append(byIssuer[rec.IssuerID], rec)
	}
	for _, target := range summary.Targets {
		if target.IsSkipped() {
			continue
		}
		p.PrintRecords(target.IssuerID, byIssuer[target.IssuerID])
	}
}

func displayID(id string) string {
	if id == "" {
		return "(no issuer_id)"
	}
	return id
}

func joinSelectors(container, item string) string {
	if container == "" || item == "" {
		return ""
	}
	return container + " " + item
}
