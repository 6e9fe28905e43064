// Package extract pulls named fields out of fetched HTML pages using
// declarative selector rules.
package extract

import (
	"fmt"
	"io"
	"strings"
	"ulascansenturk/kayak-pipeline/internal/failure"

	"github.com/PuerkitoBio/goquery"
)

// Rule selects the first element matching Selector. An empty Attr means the
// trimmed inner text, otherwise the value of that attribute.
type Rule struct {
	Selector string
	Attr     string
}

// PairRule selects a variable number of (label, value) pairs. Label and Value
// are evaluated inside each Container match.
type PairRule struct {
	Container string
	Label     Rule
	Value     Rule
}

type Pair struct {
	Label string
	Value string
}

type Page struct {
	doc *goquery.Document
}

func Parse(r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %v: %w", err, failure.ErrExtraction)
	}

	body := doc.Find("body")
	if body.Children().Length() == 0 && strings.TrimSpace(body.Text()) == "" {
		return nil, fmt.Errorf("page has no content: %w", failure.ErrExtraction)
	}

	return &Page{doc: doc}, nil
}

// Fields evaluates every rule. Absent fields map to nil.
func (p *Page) Fields(rules map[string]Rule) map[string]*string {
	out := make(map[string]*string, len(rules))
	for name, rule := range rules {
		if value, ok := evaluate(p.doc.Selection, rule); ok {
			v := value
			out[name] = &v
		} else {
			out[name] = nil
		}
	}
	return out
}

// Links returns every value the rule matches, in document order.
func (p *Page) Links(rule Rule) []string {
	var links []string
	p.doc.Find(rule.Selector).Each(func(_ int, s *goquery.Selection) {
		if value, ok := valueOf(s, rule.Attr); ok && value != "" {
			links = append(links, value)
		}
	})
	return links
}

// Pairs returns the label/value pairs found in each container. Containers
// without a label are skipped.
func (p *Page) Pairs(rule PairRule) []Pair {
	var pairs []Pair
	p.doc.Find(rule.Container).Each(func(_ int, s *goquery.Selection) {
		label, ok := evaluate(s, rule.Label)
		if !ok || label == "" {
			return
		}
		value, _ := evaluate(s, rule.Value)
		pairs = append(pairs, Pair{Label: label, Value: value})
	})
	return pairs
}

func evaluate(root *goquery.Selection, rule Rule) (string, bool) {
	sel := root
	if rule.Selector != "" {
		sel = root.Find(rule.Selector)
	}
	if sel.Length() == 0 {
		return "", false
	}
	return valueOf(sel.First(), rule.Attr)
}

func valueOf(s *goquery.Selection, attr string) (string, bool) {
	if attr == "" {
		return strings.TrimSpace(s.Text()), true
	}
	value, ok := s.Attr(attr)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(value), true
}
