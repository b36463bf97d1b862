// Package fetcher holds the session-scoped browse state for the CRM
// collections and loads pages into it.
//
// One Fetcher exists per authenticated session (see Registry). It owns, per
// collection, the held records, the server-side total and a has-more flag,
// plus one shared page number, loading flag and error slot. All access goes
// through the mutex; FetchData releases it while store calls are in flight so
// Snapshot stays responsive.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"confcrm/internal/crm/models"
	"confcrm/internal/crm/query"
	"confcrm/internal/crm/store"
	"confcrm/internal/platform/metrics"
)

// ErrAuthRequired is the fixed message surfaced when no session is active.
const ErrAuthRequired = "authentication required"

const (
	defaultPageSize = 50
	defaultDebounce = 300 * time.Millisecond
)

// SessionChecker reports whether the calling session is still active.
type SessionChecker interface {
	ActiveSession(ctx context.Context) bool
}

// Options selects what FetchData loads.
//
// Collection empty means all three collections. ListID scopes the attendee
// fetch to a list's membership; the scoped count deliberately ignores filter
// clauses while the page query applies them.
type Options struct {
	Page       int
	PageSize   int
	Search     string
	Clauses    []models.FilterClause
	Collection models.Collection
	ListID     *uuid.UUID
}

// Snapshot is a point-in-time copy of the held state.
type Snapshot struct {
	Attendees     []models.Attendee
	HealthSystems []models.HealthSystem
	Conferences   []models.Conference
	Totals        map[models.Collection]int
	HasMore       map[models.Collection]bool
	Page          int
	Loading       bool
	Err           string
}

// Fetcher loads and holds collection pages for one session.
type Fetcher struct {
	stores  store.Stores
	session SessionChecker
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer

	now      func() time.Time
	debounce time.Duration
	pageSize int

	mu            sync.Mutex
	lastFetch     time.Time
	seq           uint64
	attendees     []models.Attendee
	healthSystems []models.HealthSystem
	conferences   []models.Conference
	totals        map[models.Collection]int
	hasMore       map[models.Collection]bool
	page          int
	loading       bool
	errMsg        string
}

// Option customizes a Fetcher.
type Option func(*Fetcher)

// WithClock injects the time source used by the debounce guard.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) { f.now = now }
}

// WithDebounce overrides the fetch cooldown window.
func WithDebounce(d time.Duration) Option {
	return func(f *Fetcher) { f.debounce = d }
}

// WithPageSize overrides the default page size used when Options omit one.
func WithPageSize(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.pageSize = n
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = logger }
}

// WithMetrics attaches the Prometheus instruments.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Fetcher) { f.metrics = m }
}

// WithTracer attaches an otel tracer for fetch spans.
func WithTracer(t trace.Tracer) Option {
	return func(f *Fetcher) { f.tracer = t }
}

// New creates a Fetcher over the given stores and session checker.
func New(stores store.Stores, session SessionChecker, opts ...Option) *Fetcher {
	f := &Fetcher{
		stores:   stores,
		session:  session,
		logger:   slog.Default(),
		now:      time.Now,
		debounce: defaultDebounce,
		pageSize: defaultPageSize,
		totals:   map[models.Collection]int{},
		hasMore:  map[models.Collection]bool{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// collectionResult carries one collection's fetch outcome from the errgroup
// back to the merge step.
type collectionResult struct {
	total         int
	attendees     []models.Attendee
	healthSystems []models.HealthSystem
	conferences   []models.Conference
}

// FetchData loads the targeted collections for the given page and merges the
// results into the held state.
//
// Calls arriving within the debounce window of the previous accepted call
// return immediately without touching state. When no session is active, all
// collections are cleared, the error slot is set and no store call is issued.
// A fetch that is superseded by a newer call before it completes does not
// write its results.
func (f *Fetcher) FetchData(ctx context.Context, opts Options) error {
	if f.tracer != nil {
		var span trace.Span
		ctx, span = f.tracer.Start(ctx, "fetcher.FetchData")
		defer span.End()
	}
	start := time.Now()

	f.mu.Lock()
	now := f.now()
	if !f.lastFetch.IsZero() && now.Sub(f.lastFetch) < f.debounce {
		f.mu.Unlock()
		if f.metrics != nil {
			f.metrics.FetchDebounced.Inc()
		}
		return nil
	}
	f.lastFetch = now

	if !f.session.ActiveSession(ctx) {
		f.attendees = nil
		f.healthSystems = nil
		f.conferences = nil
		f.totals = map[models.Collection]int{}
		f.hasMore = map[models.Collection]bool{}
		f.loading = false
		f.errMsg = ErrAuthRequired
		f.mu.Unlock()
		return errors.New(ErrAuthRequired)
	}

	f.seq++
	seq := f.seq
	f.loading = true
	f.errMsg = ""
	f.mu.Unlock()

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = f.pageSize
	}
	page := opts.Page
	if page < 0 {
		page = 0
	}
	from := page * pageSize
	to := from + pageSize - 1
	filter := query.Filter{Clauses: opts.Clauses, Search: opts.Search}

	targets := models.Collections()
	if opts.Collection != "" {
		targets = []models.Collection{opts.Collection}
	}

	results := make(map[models.Collection]*collectionResult, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	for _, col := range targets {
		res := &collectionResult{}
		results[col] = res
		g.Go(f.fetchCollection(gctx, col, filter, opts.ListID, from, to, res))
	}
	err := g.Wait()

	f.mu.Lock()
	defer f.mu.Unlock()
	if seq != f.seq {
		// A newer fetch superseded this one; its results are stale.
		return nil
	}
	f.loading = false
	if f.metrics != nil {
		f.metrics.FetchLatency.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		f.errMsg = "failed to load records"
		if f.metrics != nil {
			f.metrics.FetchErrors.Inc()
		}
		f.logger.ErrorContext(ctx, "fetch failed", "error", err, "page", page)
		return err
	}

	f.page = page
	for col, res := range results {
		switch col {
		case models.CollectionAttendees:
			f.attendees = mergePage(f.attendees, res.attendees, page)
			f.totals[col] = res.total
			f.hasMore[col] = len(f.attendees) < res.total
		case models.CollectionHealthSystems:
			f.healthSystems = mergePage(f.healthSystems, res.healthSystems, page)
			f.totals[col] = res.total
			f.hasMore[col] = len(f.healthSystems) < res.total
		case models.CollectionConferences:
			f.conferences = mergePage(f.conferences, res.conferences, page)
			f.totals[col] = res.total
			f.hasMore[col] = len(f.conferences) < res.total
		}
		if f.metrics != nil {
			f.metrics.Fetches.WithLabelValues(string(col)).Inc()
		}
	}
	return nil
}

// fetchCollection returns the errgroup task loading one collection: count
// first, then the inclusive page range.
func (f *Fetcher) fetchCollection(ctx context.Context, col models.Collection, filter query.Filter, listID *uuid.UUID, from, to int, res *collectionResult) func() error {
	return func() error {
		switch col {
		case models.CollectionAttendees:
			if listID != nil {
				total, err := f.stores.Attendees.CountListMembers(ctx, *listID)
				if err != nil {
					return fmt.Errorf("count list members: %w", err)
				}
				page, err := f.stores.Attendees.PageListMembers(ctx, *listID, filter, from, to)
				if err != nil {
					return fmt.Errorf("page list members: %w", err)
				}
				res.total, res.attendees = total, page
				return nil
			}
			total, err := f.stores.Attendees.Count(ctx, filter)
			if err != nil {
				return fmt.Errorf("count attendees: %w", err)
			}
			page, err := f.stores.Attendees.Page(ctx, filter, from, to)
			if err != nil {
				return fmt.Errorf("page attendees: %w", err)
			}
			res.total, res.attendees = total, page
		case models.CollectionHealthSystems:
			total, err := f.stores.HealthSystems.Count(ctx, filter)
			if err != nil {
				return fmt.Errorf("count health systems: %w", err)
			}
			page, err := f.stores.HealthSystems.Page(ctx, filter, from, to)
			if err != nil {
				return fmt.Errorf("page health systems: %w", err)
			}
			res.total, res.healthSystems = total, page
		case models.CollectionConferences:
			total, err := f.stores.Conferences.Count(ctx, filter)
			if err != nil {
				return fmt.Errorf("count conferences: %w", err)
			}
			page, err := f.stores.Conferences.Page(ctx, filter, from, to)
			if err != nil {
				return fmt.Errorf("page conferences: %w", err)
			}
			res.total, res.conferences = total, page
		}
		return nil
	}
}

// mergePage implements the replace/append contract: page zero replaces held
// records, later pages append then dedupe by id keeping the first-seen record.
func mergePage[T models.Record](held, incoming []T, page int) []T {
	if page == 0 {
		return incoming
	}
	merged := make([]T, 0, len(held)+len(incoming))
	seen := make(map[uuid.UUID]struct{}, len(held)+len(incoming))
	for _, r := range held {
		if _, ok := seen[r.RecordID()]; ok {
			continue
		}
		seen[r.RecordID()] = struct{}{}
		merged = append(merged, r)
	}
	for _, r := range incoming {
		if _, ok := seen[r.RecordID()]; ok {
			continue
		}
		seen[r.RecordID()] = struct{}{}
		merged = append(merged, r)
	}
	return merged
}

// Snapshot returns a copy of the held state.
func (f *Fetcher) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap := Snapshot{
		Attendees:     append([]models.Attendee(nil), f.attendees...),
		HealthSystems: append([]models.HealthSystem(nil), f.healthSystems...),
		Conferences:   append([]models.Conference(nil), f.conferences...),
		Totals:        make(map[models.Collection]int, len(f.totals)),
		HasMore:       make(map[models.Collection]bool, len(f.hasMore)),
		Page:          f.page,
		Loading:       f.loading,
		Err:           f.errMsg,
	}
	for k, v := range f.totals {
		snap.Totals[k] = v
	}
	for k, v := range f.hasMore {
		snap.HasMore[k] = v
	}
	return snap
}

// HasMoreAny reports whether any collection has more records than currently
// held; this is the global has-more when no single collection is targeted.
func (s Snapshot) HasMoreAny() bool {
	for _, more := range s.HasMore {
		if more {
			return true
		}
	}
	return false
}

// SetAttendees replaces the held attendees; collaborators reconcile state
// through the setters after mutations.
func (f *Fetcher) SetAttendees(attendees []models.Attendee) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attendees = attendees
	f.hasMore[models.CollectionAttendees] = len(attendees) < f.totals[models.CollectionAttendees]
}

// SetHealthSystems replaces the held health systems.
func (f *Fetcher) SetHealthSystems(systems []models.HealthSystem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.healthSystems = systems
	f.hasMore[models.CollectionHealthSystems] = len(systems) < f.totals[models.CollectionHealthSystems]
}

// SetConferences replaces the held conferences.
func (f *Fetcher) SetConferences(conferences []models.Conference) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conferences = conferences
	f.hasMore[models.CollectionConferences] = len(conferences) < f.totals[models.CollectionConferences]
}
