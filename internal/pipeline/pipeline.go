package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/deetlist/internal/dom"
	"github.com/pfrederiksen/deetlist/internal/dragon"
	"github.com/pfrederiksen/deetlist/internal/logger"
	"github.com/pfrederiksen/deetlist/internal/race"
	"github.com/pfrederiksen/deetlist/internal/scraper"
)

var (
	// ErrUnknownKind is returned for an entry kind with no parser.
	ErrUnknownKind = errors.New("unknown entry kind")

	// ErrAbandoned is returned for a unit that did not finish within its timeout.
	ErrAbandoned = errors.New("extraction abandoned")
)

// Kind says which parser handles a page.
type Kind string

const (
	KindHeroicRace  Kind = "heroic-race"
	KindNewDragons  Kind = "new-dragons"
	KindDragonIndex Kind = "dragon-index"
	KindDragon      Kind = "dragon"
)

// Kinds lists every supported kind.
var Kinds = []Kind{KindHeroicRace, KindNewDragons, KindDragonIndex, KindDragon}

// ParseKind converts a kind name into a Kind.
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Entry identifies a page to extract.
type Entry struct {
	Kind Kind   `json:"kind"`
	URL  string `json:"url"`
}

// Record is an extracted page: *race.Event, *dragon.Dragon, *dragon.Listing
// or *dragon.Index.
type Record interface{}

type parseFunc func(*dom.Document) (Record, error)

var parsers = map[Kind]parseFunc{
	KindHeroicRace: func(doc *dom.Document) (Record, error) {
		return race.ParseEvent(doc)
	},
	KindNewDragons: func(doc *dom.Document) (Record, error) {
		return dragon.ParseListing(doc)
	},
	KindDragonIndex: func(doc *dom.Document) (Record, error) {
		return dragon.ParseIndex(doc)
	},
	KindDragon: func(doc *dom.Document) (Record, error) {
		return dragon.ParsePage(doc)
	},
}

// Options tune a Driver.
type Options struct {
	// Concurrency bounds both the number of units in flight and the number
	// of simultaneous fetches. Defaults to 4.
	Concurrency int
	// UnitTimeout bounds each fetch+parse unit. Zero means no timeout.
	UnitTimeout time.Duration
	// ResolveDragons makes heroic race extraction also fetch every
	// referenced dragon page.
	ResolveDragons bool

	Logger  *logger.Logger
	Metrics *logger.Metrics
}

// Driver runs extractions.
type Driver struct {
	fetcher scraper.Fetcher
	opts    Options
	sem     chan struct{}
	log     *logger.Logger
	metrics *logger.Metrics
}

// New creates a Driver that reads pages through fetcher.
func New(fetcher scraper.Fetcher, opts Options) *Driver {
	if opts.Concurrency < 1 {
		opts.Concurrency = 4
	}
	if opts.Logger == nil {
		opts.Logger = logger.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = logger.DefaultMetrics()
	}
	return &Driver{
		fetcher: fetcher,
		opts:    opts,
		sem:     make(chan struct{}, opts.Concurrency),
		log:     opts.Logger,
		metrics: opts.Metrics,
	}
}

// Extract fetches and parses one entry.
func (d *Driver) Extract(ctx context.Context, e Entry) (Record, error) {
	parse, ok := parsers[e.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
	}

	start := time.Now()
	log := d.log.With(logger.Fields{"kind": string(e.Kind), "url": e.URL})
	log.Debug("extracting page", nil)

	doc, err := d.load(ctx, e.URL)
	if err != nil {
		return nil, err
	}

	rec, err := parse(doc)
	if err != nil {
		d.metrics.IncrCounter("extract.parse_errors")
		return nil, fmt.Errorf("parsing %s page %s: %w", e.Kind, e.URL, err)
	}

	if ev, ok := rec.(*race.Event); ok && d.opts.ResolveDragons {
		d.attachDragons(ctx, ev)
	}

	d.metrics.IncrCounter("extract." + string(e.Kind))
	d.metrics.Since("extract."+string(e.Kind)+".duration", start)
	log.Debug("extracted page", logger.Fields{"elapsed": time.Since(start).String()})
	return rec, nil
}

// load fetches a page, holding a fetch slot while the request is in flight.
func (d *Driver) load(ctx context.Context, url string) (*dom.Document, error) {
	select {
	case d.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, &scraper.FetchError{URL: url, Err: ctx.Err()}
	}
	html, err := d.fetcher.Fetch(ctx, url)
	<-d.sem
	if err != nil {
		return nil, err
	}

	doc, err := dom.Parse(url, html)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	return doc, nil
}

// attachDragons resolves the event's dragon references in place.
func (d *Driver) attachDragons(ctx context.Context, ev *race.Event) {
	dragons, failures := d.ResolveDragons(ctx, ev.DragonRefs)
	ev.Dragons = dragons
	for _, f := range failures {
		ev.Unresolved = append(ev.Unresolved, race.UnresolvedRef{
			Ref:   dom.PageRef(f.Entry.URL),
			Error: f.Err.Error(),
		})
	}
}

// ResolveDragons extracts the dragon page behind every ref. Dragons are
// returned in ref order; refs that failed are reported as failures, with
// Index pointing into refs.
func (d *Driver) ResolveDragons(ctx context.Context, refs []dom.PageRef) ([]*dragon.Dragon, []Failure) {
	entries := make([]Entry, len(refs))
	for i, ref := range refs {
		entries[i] = Entry{Kind: KindDragon, URL: ref.String()}
	}

	batch := d.ExtractAll(ctx, entries)

	dragons := make([]*dragon.Dragon, 0, len(batch.Results))
	for _, r := range batch.Results {
		dragons = append(dragons, r.Record.(*dragon.Dragon))
	}
	return dragons, batch.Failures
}
