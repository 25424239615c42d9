// Package parser turns fetched markup into queryable pages.
// It builds the document tree and exposes the anchors found on a page.
package parser

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Page is a parsed document together with the URL it was served from
type Page struct {
	URL string            // Final URL after redirects
	Doc *goquery.Document // Parsed markup
}

// Parse parses raw markup into a Page.
// The document tree is built with x/net/html and wrapped for selector queries.
func Parse(pageURL string, body []byte) (*Page, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return &Page{
		URL: pageURL,
		Doc: goquery.NewDocumentFromNode(root),
	}, nil
}

// Title returns the trimmed <title> text, or an empty string
func (p *Page) Title() string {
	return strings.TrimSpace(p.Doc.Find("title").First().Text())
}

// Links returns the href of every anchor element in document order.
// Values are returned exactly as written in the markup: duplicates,
// relative references and fragments are all kept.
func (p *Page) Links() []string {
	links := []string{}
	p.Doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			links = append(links, href)
		}
	})
	return links
}

// ResolveLinks converts links to absolute URLs against base.
// Links that cannot be parsed are kept unchanged so that position and
// count are preserved.
func ResolveLinks(base string, links []string) ([]string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	resolved := make([]string, 0, len(links))
	for _, link := range links {
		ref, err := url.Parse(strings.TrimSpace(link))
		if err != nil {
			resolved = append(resolved, link)
			continue
		}
		resolved = append(resolved, baseURL.ResolveReference(ref).String())
	}

	return resolved, nil
}
