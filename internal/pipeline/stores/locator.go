// Package stores finds second-hand and sustainable clothing stores near the
// caller through a swappable place-search provider.
package stores

import (
	"context"
	"fmt"
	"time"

	"ecoscan-relay/internal/common/logger"
	"ecoscan-relay/internal/common/metrics"
	"ecoscan-relay/internal/models"
)

const DefaultTimeout = 10 * time.Second

// Searcher is one place-search provider.
type Searcher interface {
	Name() string
	Search(ctx context.Context, q Query) ([]Candidate, error)
}

// Locator wraps a Searcher with query construction, normalisation and the
// degrade-to-empty failure policy.
type Locator struct {
	searcher Searcher
	opts     Options
	timeout  time.Duration
	logger   logger.Logger
}

func NewLocator(searcher Searcher, opts Options, timeout time.Duration, log logger.Logger) *Locator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Locator{
		searcher: searcher,
		opts:     opts.withDefaults(),
		timeout:  timeout,
		logger:   logger.Component(log, "stores").WithFields(map[string]interface{}{"provider": searcher.Name()}),
	}
}

func (l *Locator) Provider() string {
	return l.searcher.Name()
}

// Locate never fails and never returns nil: upstream problems are logged
// and yield an empty list.
func (l *Locator) Locate(ctx context.Context, description string, loc models.Location) []models.Place {
	q := BuildQuery(description, loc, l.opts)

	start := time.Now()
	candidates, err := l.search(ctx, q)
	metrics.StoreLookupDuration.WithLabelValues(l.searcher.Name()).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.StoreLookupsTotal.WithLabelValues(l.searcher.Name(), "error").Inc()
		l.logger.Warn("store lookup failed, returning no stores", map[string]interface{}{
			"keyword": q.Keyword,
			"lat":     loc.Lat,
			"lng":     loc.Lng,
			"error":   err,
		})
		return []models.Place{}
	}

	places := make([]models.Place, 0, len(candidates))
	for _, c := range candidates {
		if len(places) == q.MaxResults {
			break
		}
		places = append(places, ToPlace(c))
	}

	outcome := "ok"
	if len(places) == 0 {
		outcome = "empty"
	}
	metrics.StoreLookupsTotal.WithLabelValues(l.searcher.Name(), outcome).Inc()
	l.logger.Info("store lookup completed", map[string]interface{}{
		"keyword":    q.Keyword,
		"found":      len(places),
		"durationMs": time.Since(start).Milliseconds(),
	})
	return places
}

func (l *Locator) search(ctx context.Context, q Query) (candidates []Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			candidates, err = nil, fmt.Errorf("searcher panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	return l.searcher.Search(ctx, q)
}
