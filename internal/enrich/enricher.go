// Package enrich completes parsed records with data scraped from the
// publisher's article and venue pages.
package enrich

import (
	"context"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/matsen/infostats/internal/record"
)

const (
	DefaultArticleURL = "http://ieeexplore.ieee.org/xpl/articleDetails.jsp?arnumber=%s"
	DefaultVenueURL   = "http://ieeexplore.ieee.org/xpl/RecentIssue.jsp?punumber=%s"

	DefaultConcurrency = 2
	DefaultCacheSize   = 256

	// progressEvery is how often Run logs progress, in records.
	progressEvery = 100
)

// Options configures an Enricher. Zero values take the defaults.
type Options struct {
	ArticleURL  string // fmt format taking the record ID
	VenueURL    string // fmt format taking the venue ID
	Concurrency int
	CacheSize   int
}

// Summary reports the outcome of Run.
type Summary struct {
	Total    int `json:"total"`
	Enriched int `json:"enriched"`
	Failed   int `json:"failed"`
}

// Enricher fills enrichment fields of records from fetched pages.
type Enricher struct {
	fetcher Fetcher
	opts    Options
	venues  *lru.Cache[string, VenueMetrics]
	logger  *zap.Logger
}

// New creates an Enricher. A nil logger disables logging.
func New(fetcher Fetcher, opts Options, logger *zap.Logger) (*Enricher, error) {
	if opts.ArticleURL == "" {
		opts.ArticleURL = DefaultArticleURL
	}
	if opts.VenueURL == "" {
		opts.VenueURL = DefaultVenueURL
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cache, err := lru.New[string, VenueMetrics](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating venue cache: %w", err)
	}

	return &Enricher{
		fetcher: fetcher,
		opts:    opts,
		venues:  cache,
		logger:  logger,
	}, nil
}

// EnrichRecord fetches the article page for r and, when it names a venue,
// the venue page. r is only modified if every fetch succeeds.
func (e *Enricher) EnrichRecord(ctx context.Context, r *record.Record) error {
	if r.ID == "" {
		return ErrEmptyID
	}

	page, err := e.fetcher.Fetch(ctx, fmt.Sprintf(e.opts.ArticleURL, r.ID))
	if err != nil {
		return fmt.Errorf("article %s: %w", r.ID, err)
	}
	info, err := ParseArticle(page)
	if err != nil {
		return fmt.Errorf("article %s: %w", r.ID, err)
	}

	out := *r
	out.Country = info.Country
	out.CitationCount = info.CitationCount
	out.Visualizations = info.Visualizations

	if info.VenueID != "" {
		out.VenueID = info.VenueID
		m, err := e.venueMetrics(ctx, info.VenueID)
		if err != nil {
			return fmt.Errorf("venue %s of article %s: %w", info.VenueID, r.ID, err)
		}
		out.ImpactFactor = m.ImpactFactor
		out.Eigenfactor = m.Eigenfactor
		out.InfluenceScore = m.InfluenceScore
	}

	*r = out
	return nil
}

// venueMetrics returns cached metrics or fetches the venue page.
// Concurrent misses for the same venue may fetch it twice.
func (e *Enricher) venueMetrics(ctx context.Context, venueID string) (VenueMetrics, error) {
	if m, ok := e.venues.Get(venueID); ok {
		return m, nil
	}

	page, err := e.fetcher.Fetch(ctx, fmt.Sprintf(e.opts.VenueURL, venueID))
	if err != nil {
		return VenueMetrics{}, err
	}
	m, err := ParseVenue(page)
	if err != nil {
		return VenueMetrics{}, err
	}

	e.venues.Add(venueID, m)
	return m, nil
}

// Run enriches recs in place with bounded concurrency. A failing record is
// logged and left as it was; the rest continue. Only cancellation of ctx
// makes Run return an error.
func (e *Enricher) Run(ctx context.Context, recs []record.Record) (Summary, error) {
	total := len(recs)
	var done, enriched, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)

	for i := range recs {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := e.EnrichRecord(gctx, &recs[i]); err != nil {
				failed.Add(1)
				e.logger.Warn("enrichment failed",
					zap.String("id", recs[i].ID),
					zap.String("venue", recs[i].Venue()),
					zap.Error(err))
			} else {
				enriched.Add(1)
			}

			if n := done.Add(1); n%progressEvery == 0 {
				e.logger.Info("enrichment progress",
					zap.Int64("done", n),
					zap.Int("total", total),
					zap.Float64("percent", 100*float64(n)/float64(total)))
			}
			return nil
		})
	}

	_ = g.Wait()

	summary := Summary{
		Total:    total,
		Enriched: int(enriched.Load()),
		Failed:   int(failed.Load()),
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}
