// Package types provides type definitions for the catalog inputs and benefit records used throughout cerebro.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Target is one issuer's extraction configuration as read from the catalog.
type Target struct {
	IssuerID       string   `json:"issuer_id" validate:"required"`
	ParserStrategy string   `json:"parser_strategy" validate:"required"`
	Segment        string   `json:"segment,omitempty"`
	Sources        []Source `json:"sources"`
}

// Source is one listing page belonging to a target.
type Source struct {
	SourceID     string `json:"source_id" validate:"required"`
	URL          string `json:"url" validate:"required,url"`
	CategoryHint string `json:"category_hint,omitempty"`
}

// UnknownSegment is used in logs when a target does not declare a segment.
const UnknownSegment = "unknown"

// DefaultCategoryHint is used when a source does not declare a category hint.
const DefaultCategoryHint = "N/A"

// SegmentOrDefault returns the target segment, or UnknownSegment when empty.
func (t *Target) SegmentOrDefault() string {
	if t.Segment == "" {
		return UnknownSegment
	}
	return t.Segment
}

// Validate checks the target-level invariants. Sources are validated one by one
// by the caller so that a single malformed source does not discard the target.
func (t *Target) Validate() error {
	validate := validator.New()
	if err := validate.Struct(t); err != nil {
		return &InvalidTargetError{
			IssuerID: t.IssuerID,
			Message:  describeValidation(err),
			Cause:    err,
		}
	}
	return nil
}

// HintOrDefault returns the category hint, or DefaultCategoryHint when empty.
func (s *Source) HintOrDefault() string {
	if s.CategoryHint == "" {
		return DefaultCategoryHint
	}
	return s.CategoryHint
}

// Validate checks that the source has an id and an absolute URL.
func (s *Source) Validate() error {
	validate := validator.New()
	if err := validate.Struct(s); err != nil {
		return &InvalidSourceError{
			SourceID: s.SourceID,
			URL:      s.URL,
			Message:  describeValidation(err),
			Cause:    err,
		}
	}
	return nil
}

// describeValidation turns validator field errors into a short "field: tag" list.
func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fe.Field()+" failed "+fe.Tag())
	}
	return strings.Join(parts, ", ")
}
