package crawler

import (
	"context"

	"github.com/masahif/listharvest/internal/extract"
	"github.com/masahif/listharvest/internal/parser"
)

// PageFetcher retrieves and parses a single page.
// Implementations never sleep between calls and never retry.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*parser.Page, error)
}

// DelayPolicy blocks before each leaf fetch
type DelayPolicy interface {
	Wait(ctx context.Context) error
}

// Observer is notified of every record appended to the result table
type Observer interface {
	OnRecord(position int, rec extract.Record) error
}
