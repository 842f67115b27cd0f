package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/zip-dispatch/internal/domain"
	"github.com/couchcryptid/zip-dispatch/internal/observability"
)

// Result is a resolved record decorated with its site labels.
type Result struct {
	Record       domain.IntervalRecord
	Site         string
	SiteClass    string
	MachineLabel string
}

// snapshot is everything readers need for one installed scheme.
type snapshot struct {
	scheme domain.CompiledScheme
	index  *domain.Index
	cache  *resultCache
}

// Service answers ZIP lookups against the most recently installed scheme.
// Installs swap the whole snapshot at once, so readers never lock and never
// observe a half-built index.
type Service struct {
	current   atomic.Pointer[snapshot]
	cacheSize int
	sites     domain.SiteTable
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewService creates a Service with no scheme installed.
func NewService(cacheSize int, sites domain.SiteTable, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		cacheSize: cacheSize,
		sites:     sites,
		logger:    logger,
		metrics:   metrics,
	}
}

// Install builds an index for scheme and makes it live. An empty scheme is
// rejected and the previous one stays in place.
func (s *Service) Install(scheme domain.CompiledScheme) error {
	if len(scheme.Records) == 0 {
		return fmt.Errorf("install scheme %q: %w", scheme.Name, domain.ErrNoRecords)
	}

	next := &snapshot{
		scheme: scheme,
		index:  domain.NewIndex(scheme.Records),
		cache:  newResultCache(s.cacheSize),
	}
	s.current.Store(next)

	s.metrics.SchemesInstalled.Inc()
	s.metrics.IndexRecords.Set(float64(next.index.Len()))
	s.logger.Info("scheme installed",
		"name", scheme.Name,
		"rows", scheme.Manifest.Rows,
		"built", scheme.Manifest.Built,
	)
	return nil
}

// LoadBatch installs the newest scheme of a pipeline batch. Earlier entries
// would be replaced immediately, so they are skipped.
func (s *Service) LoadBatch(_ context.Context, schemes []domain.CompiledScheme) error {
	if len(schemes) == 0 {
		return nil
	}
	if len(schemes) > 1 {
		s.logger.Debug("superseded schemes skipped", "count", len(schemes)-1)
	}
	return s.Install(schemes[len(schemes)-1])
}

// Lookup resolves query against the live index. Malformed queries and lookups
// before the first install report no match.
func (s *Service) Lookup(query string) (Result, bool) {
	start := time.Now()
	defer func() { s.metrics.LookupDuration.Observe(time.Since(start).Seconds()) }()

	rec, found := s.resolve(query)
	if !found {
		s.metrics.Lookups.WithLabelValues("no_match").Inc()
		return Result{}, false
	}
	s.metrics.Lookups.WithLabelValues("match").Inc()

	machine, _ := s.sites.MachineLabel(rec.Bin)
	return Result{
		Record:       rec,
		Site:         s.sites.Label(rec.Bin),
		SiteClass:    s.sites.Class(rec.Bin),
		MachineLabel: machine,
	}, true
}

func (s *Service) resolve(query string) (domain.IntervalRecord, bool) {
	q, ok := domain.NormalizeQuery(query)
	if !ok {
		return domain.IntervalRecord{}, false
	}
	snap := s.current.Load()
	if snap == nil {
		return domain.IntervalRecord{}, false
	}

	if hit, ok := snap.cache.get(q.Digits); ok {
		s.metrics.LookupCache.WithLabelValues("hit").Inc()
		return hit.record, hit.found
	}
	s.metrics.LookupCache.WithLabelValues("miss").Inc()

	rec, found := snap.index.Resolve(q.Digits)
	snap.cache.put(q.Digits, cachedResult{record: rec, found: found})
	return rec, found
}

// BinRanges maps input to a bin and lists every record of that bin in
// canonical order. ok is false only when input carries no digits; an unknown
// bin yields ok with no rows.
func (s *Service) BinRanges(input string) (bin string, rows []domain.IntervalRecord, ok bool) {
	snap := s.current.Load()
	if snap == nil {
		bin = domain.ExtractDigits(input)
		return bin, nil, bin != ""
	}

	bin, ok = snap.index.BinFor(input)
	if !ok {
		return "", nil, false
	}
	return bin, domain.RangesForBin(snap.scheme.Records, bin), true
}

// Sites returns the label table used to decorate results.
func (s *Service) Sites() domain.SiteTable {
	return s.sites
}

// Current returns the installed scheme.
func (s *Service) Current() (domain.CompiledScheme, bool) {
	snap := s.current.Load()
	if snap == nil {
		return domain.CompiledScheme{}, false
	}
	return snap.scheme, true
}

// CheckReadiness returns nil once a scheme has been installed.
func (s *Service) CheckReadiness(_ context.Context) error {
	if s.current.Load() == nil {
		return errors.New("no scheme installed yet")
	}
	return nil
}
