package crawler

import (
	"math/rand/v2"
	"time"

	"github.com/masahif/listharvest/internal/extract"
)

// State is a pipeline stage. Stages only ever move forward.
type State int

const (
	StateSeeding State = iota
	StateIndexDiscovery
	StateLeafDiscovery
	StateLeafFetching
	StateDone
)

func (s State) String() string {
	switch s {
	case StateSeeding:
		return "seeding"
	case StateIndexDiscovery:
		return "index_discovery"
	case StateLeafDiscovery:
		return "leaf_discovery"
	case StateLeafFetching:
		return "leaf_fetching"
	default:
		return "done"
	}
}

// Options configures one crawl
type Options struct {
	SeedURL      string        // Page the crawl starts from
	IndexPattern *Pattern      // Selects index/listing pages on the seed page (nil keeps all)
	LeafPattern  *Pattern      // Selects leaf/detail pages on index pages (nil keeps all)
	Fields       *extract.Spec // Fields extracted from every leaf page
	MaxLeafPages int           // Upper bound on leaf pages fetched
	Delay        DelayPolicy   // Wait before each leaf fetch (nil means no delay)
	ResolveLinks bool          // Resolve links against the page URL before filtering
	Rand         *rand.Rand    // Source for worklist shuffling (nil uses a random seed)
	Observer     Observer      // Optional record sink
}

// Stats summarises a crawl
type Stats struct {
	IndexPages      int           // Index pages selected from the seed
	IndexFailures   int           // Index pages skipped because the fetch failed
	WorklistSize    int           // Unique leaf URLs discovered
	LeavesAttempted int           // Leaf URLs fetched (bounded by MaxLeafPages)
	LeafFailures    int           // Leaf fetches that produced an all-missing record
	StartTime       time.Time     // When Run started
	Duration        time.Duration // Total run time
}
