package crawler

import (
	"fmt"
	"regexp"
)

// Pattern selects URLs. A URL matches when every Require expression
// matches it and no Exclude expression does.
type Pattern struct {
	Require []*regexp.Regexp
	Exclude []*regexp.Regexp
}

// CompilePattern compiles require and exclude expressions into a Pattern
func CompilePattern(require, exclude []string) (*Pattern, error) {
	p := &Pattern{}

	for _, expr := range require {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid require pattern %q: %w", expr, err)
		}
		p.Require = append(p.Require, re)
	}

	for _, expr := range exclude {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", expr, err)
		}
		p.Exclude = append(p.Exclude, re)
	}

	return p, nil
}

// Match reports whether urlStr satisfies the pattern. A nil pattern matches everything.
func (p *Pattern) Match(urlStr string) bool {
	if p == nil {
		return true
	}

	for _, re := range p.Require {
		if !re.MatchString(urlStr) {
			return false
		}
	}

	for _, re := range p.Exclude {
		if re.MatchString(urlStr) {
			return false
		}
	}

	return true
}

// Filter returns the links matching pattern, in their original order.
// Duplicates are preserved; deduplication happens later.
func Filter(links []string, pattern *Pattern) []string {
	kept := make([]string, 0, len(links))
	for _, link := range links {
		if pattern.Match(link) {
			kept = append(kept, link)
		}
	}
	return kept
}
