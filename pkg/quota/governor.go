package quota

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	apierrors "github.com/snyk-tech-services/snyk-sync/pkg/errors"
	"github.com/snyk-tech-services/snyk-sync/pkg/httputil"
	"github.com/snyk-tech-services/snyk-sync/pkg/observability"
)

// Category names an independently limited bucket of remote calls.
type Category string

const (
	Core   Category = "core"
	Search Category = "search"
)

// DefaultCategories are tracked unless WithCategories says otherwise.
var DefaultCategories = []Category{Core, Search}

// DefaultPageSize is the number of items one remote call is assumed to
// return when projecting planned work into requests.
const DefaultPageSize = 100

// Rate is the remote platform's view of one category.
type Rate struct {
	Limit     int
	Remaining int
	Reset     time.Time
}

// Source reports the current rate limits. Implementations must not cache:
// the governor relies on each call reflecting the live counter.
type Source interface {
	RateLimits(ctx context.Context) (map[Category]Rate, error)
}

// Snapshot is the governor's record for one category.
//
// Tare is the number of calls already spent in the current window when
// the governor started observing. Calls holds cumulative consumption at
// each checkpoint, starting with 0; it never decreases.
type Snapshot struct {
	Category Category
	Limit    int
	Tare     int
	Calls    []int
	Reset    time.Time

	// carry is consumption attributed to earlier windows.
	carry int
}

// Last returns the most recent cumulative consumption.
func (s *Snapshot) Last() int { return s.Calls[len(s.Calls)-1] }

// Governor tracks consumption of a remote quota against a tare baseline
// and blocks before a planned burst would exceed what remains.
//
// A Governor is not safe for concurrent use. Use one per sync session.
type Governor struct {
	src      Source
	cats     []Category
	snaps    map[Category]*Snapshot
	pageSize int
	planned  int

	clock  func() time.Time
	sleep  func(context.Context, time.Duration) error
	logger *log.Logger
}

// Option configures a Governor.
type Option func(*Governor)

// WithClock sets the time source used to compute waits until reset.
func WithClock(clock func() time.Time) Option {
	return func(g *Governor) {
		if clock != nil {
			g.clock = clock
		}
	}
}

// WithSleep replaces the blocking wait used when the quota is short.
func WithSleep(fn func(context.Context, time.Duration) error) Option {
	return func(g *Governor) {
		if fn != nil {
			g.sleep = fn
		}
	}
}

// WithLogger sets the logger for checkpoints and throttling.
func WithLogger(l *log.Logger) Option {
	return func(g *Governor) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithPageSize sets the page size used by CheckPlanned.
func WithPageSize(n int) Option {
	return func(g *Governor) {
		if n > 0 {
			g.pageSize = n
		}
	}
}

// WithCategories sets the categories to track.
func WithCategories(cats ...Category) Option {
	return func(g *Governor) {
		if len(cats) > 0 {
			g.cats = slices.Clone(cats)
		}
	}
}

// New queries src once and records the tare of every tracked category.
func New(ctx context.Context, src Source, opts ...Option) (*Governor, error) {
	g := &Governor{
		src:      src,
		cats:     slices.Clone(DefaultCategories),
		pageSize: DefaultPageSize,
		clock:    time.Now,
		sleep:    httputil.Sleep,
		logger:   log.Default(),
	}
	for _, o := range opts {
		o(g)
	}

	rates, err := g.query(ctx)
	if err != nil {
		return nil, err
	}

	g.snaps = make(map[Category]*Snapshot, len(g.cats))
	for _, cat := range g.cats {
		r, err := rateFor(rates, cat)
		if err != nil {
			return nil, err
		}
		g.snaps[cat] = &Snapshot{
			Category: cat,
			Limit:    r.Limit,
			Tare:     tare(r),
			Calls:    []int{0},
			Reset:    r.Reset,
		}
		g.logger.Debug("quota baseline", "category", cat, "limit", r.Limit, "remaining", r.Remaining, "tare", g.snaps[cat].Tare)
	}
	return g, nil
}

// Update re-queries the source and appends the consumption since the tare
// to every category. With display set, the delta since the previous
// checkpoint is logged.
func (g *Governor) Update(ctx context.Context, display bool) error {
	rates, err := g.query(ctx)
	if err != nil {
		return err
	}

	hooks := observability.Quota()
	for _, cat := range g.cats {
		r, err := rateFor(rates, cat)
		if err != nil {
			return err
		}
		s := g.snaps[cat]
		g.observe(s, r)

		consumed := max(s.carry+s.Limit-s.Tare-r.Remaining, s.Last())
		delta := consumed - s.Last()
		s.Calls = append(s.Calls, consumed)

		hooks.OnCheckpoint(ctx, string(cat), consumed, delta)
		if display {
			g.logger.Info("GitHub rate limit", "category", cat, "calls", delta)
		}
	}
	return nil
}

// AddCalls records the number of items the caller is about to process.
// CheckPlanned projects it into requests.
func (g *Governor) AddCalls(n int) {
	g.planned = max(n, 0)
}

// CheckPlanned is Check with the volume from AddCalls and the governor's
// page size.
func (g *Governor) CheckPlanned(ctx context.Context, cat Category) (time.Duration, error) {
	return g.Check(ctx, cat, g.planned, g.pageSize)
}

// Check projects planned items into planned/pageSize+1 requests and
// compares that against the live remaining count for cat. When it does
// not fit, Check sleeps until the window resets and returns the time
// slept; otherwise it returns 0 at once. A non-positive pageSize uses the
// governor's page size.
func (g *Governor) Check(ctx context.Context, cat Category, planned, pageSize int) (time.Duration, error) {
	s, ok := g.snaps[cat]
	if !ok {
		return 0, apierrors.New(apierrors.ErrCodeInvalidInput, "quota category %q is not tracked", cat)
	}
	if pageSize <= 0 {
		pageSize = g.pageSize
	}

	rates, err := g.query(ctx)
	if err != nil {
		return 0, err
	}
	r, err := rateFor(rates, cat)
	if err != nil {
		return 0, err
	}
	g.observe(s, r)

	needed := max(planned, 0)/pageSize + 1
	if needed <= r.Remaining {
		return 0, nil
	}

	wait := untilReset(r.Reset, g.clock())
	g.logger.Warn("quota too low for planned calls, sleeping until reset",
		"category", cat, "needed", needed, "remaining", r.Remaining, "wait", wait)
	observability.Quota().OnThrottle(ctx, string(cat), needed, r.Remaining, wait)

	if err := g.sleep(ctx, wait); err != nil {
		return 0, err
	}
	return wait, nil
}

// Total logs and returns the final cumulative consumption per category.
func (g *Governor) Total() map[Category]int {
	out := make(map[Category]int, len(g.cats))
	for _, cat := range g.cats {
		out[cat] = g.snaps[cat].Last()
		g.logger.Info("GitHub rate limit total", "category", cat, "calls", out[cat])
	}
	return out
}

// Snapshot returns a copy of the record for cat.
func (g *Governor) Snapshot(cat Category) (Snapshot, bool) {
	s, ok := g.snaps[cat]
	if !ok {
		return Snapshot{}, false
	}
	cp := *s
	cp.Calls = slices.Clone(s.Calls)
	return cp, true
}

// Snapshots returns copies of all records in category order.
func (g *Governor) Snapshots() []Snapshot {
	out := make([]Snapshot, 0, len(g.cats))
	for _, cat := range g.cats {
		s, _ := g.Snapshot(cat)
		out = append(out, s)
	}
	return out
}

// Categories returns the tracked categories.
func (g *Governor) Categories() []Category {
	return slices.Clone(g.cats)
}

func (g *Governor) query(ctx context.Context) (map[Category]Rate, error) {
	rates, err := g.src.RateLimits(ctx)
	if err != nil {
		return nil, fmt.Errorf("query rate limits: %w", err)
	}
	return rates, nil
}

// observe handles a window rollover: consumption so far is carried over
// and the new window starts with no tare.
func (g *Governor) observe(s *Snapshot, r Rate) {
	if s.Reset.IsZero() || r.Reset.IsZero() || !r.Reset.After(s.Reset) {
		return
	}
	g.logger.Debug("quota window rolled over", "category", s.Category, "previous_reset", s.Reset, "reset", r.Reset)
	s.carry = s.Last()
	s.Limit = r.Limit
	s.Tare = 0
	s.Reset = r.Reset
}

func rateFor(rates map[Category]Rate, cat Category) (Rate, error) {
	r, ok := rates[cat]
	if !ok {
		return Rate{}, apierrors.New(apierrors.ErrCodeInvalidInput, "quota category %q not reported by source", cat)
	}
	return r, nil
}

func tare(r Rate) int {
	return min(max(r.Limit-r.Remaining, 0), r.Limit)
}

// untilReset returns the time left until reset, rounded up to whole seconds.
func untilReset(reset, now time.Time) time.Duration {
	d := reset.Sub(now)
	if d <= 0 {
		return 0
	}
	if rem := d % time.Second; rem != 0 {
		d += time.Second - rem
	}
	return d
}
