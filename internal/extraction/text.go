package extraction

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// strict strips every element from rendered markup and keeps its text escaped.
// A bluemonday policy is safe for concurrent use.
var strict = bluemonday.StrictPolicy()

// cleanText turns an HTML fragment into plain text: tags are dropped, entities
// decoded once and whitespace runs collapsed to single spaces.
func cleanText(markup string) string {
	if markup == "" {
		return ""
	}
	text := html.UnescapeString(strict.Sanitize(markup))
	return strings.Join(strings.Fields(text), " ")
}

// nodeText returns the cleaned text of the first element in s.
func nodeText(s *goquery.Selection) string {
	markup, err := s.Html()
	if err != nil {
		return strings.Join(strings.Fields(s.Text()), " ")
	}
	return cleanText(markup)
}

// selectionText returns the cleaned text of s, or nil when it is empty.
func selectionText(s *goquery.Selection) *string {
	if s == nil || s.Length() == 0 {
		return nil
	}
	return optional(nodeText(s))
}

// firstText returns the cleaned text of the first element under root matching selector.
func firstText(root *goquery.Selection, selector string) *string {
	if selector == "" {
		return nil
	}
	return selectionText(root.Find(selector).First())
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
