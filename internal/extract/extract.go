package extract

import (
	"log/slog"
	"strings"

	"github.com/masahif/listharvest/internal/parser"
)

// Extract applies every field in spec to page and returns one record.
// It never fails: a field whose selector matches nothing, whose attribute
// is absent, or whose text does not coerce is recorded as Missing.
func Extract(page *parser.Page, spec *Spec) Record {
	rec := newRecord(page.URL, spec)

	for i, f := range spec.fields {
		sel := page.Doc.FindMatcher(f.matcher).First()
		if sel.Length() == 0 {
			slog.Debug("Selector matched nothing", "url", page.URL, "field", f.Name, "selector", f.Selector)
			continue
		}

		var text string
		if f.Attr != "" {
			val, ok := sel.Attr(f.Attr)
			if !ok {
				slog.Debug("Attribute not present", "url", page.URL, "field", f.Name, "attr", f.Attr)
				continue
			}
			text = strings.TrimSpace(val)
		} else {
			text = strings.TrimSpace(sel.Text())
		}

		value, ok := coerce(f.Coerce, text)
		if !ok {
			slog.Debug("Coercion failed", "url", page.URL, "field", f.Name, "coerce", f.Coerce, "text", text)
			continue
		}
		rec.Values[i] = value
	}

	return rec
}
