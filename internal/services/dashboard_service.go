package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/metrics"
	"fintrack/internal/report"
)

// maxFetchConcurrency bounds the parallel month queries of one dashboard.
const maxFetchConcurrency = 4

// DashboardService reads an owner's rows and runs the report computations
// over them. Dashboards are cached per owner, month and window.
type DashboardService struct {
	reader ledger.Reader
	cache  cache.Cache[report.Dashboard]
	opts   report.Options
	window int
	logger *slog.Logger
}

// NewDashboardService wires the service. cache may be nil; window <= 0
// selects report.DefaultWindow.
func NewDashboardService(reader ledger.Reader, c cache.Cache[report.Dashboard], opts report.Options, window int, logger *slog.Logger) *DashboardService {
	if window <= 0 {
		window = report.DefaultWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{reader: reader, cache: c, opts: opts, window: window, logger: logger}
}

// Options returns the report options the service computes with.
func (s *DashboardService) Options() report.Options {
	return s.opts
}

// Window is the default series length.
func (s *DashboardService) Window() int {
	return s.window
}

// CacheKey names one cached dashboard.
func CacheKey(ownerID string, month core.Month, months int) string {
	return fmt.Sprintf("%s%s:%d", ownerPrefix(ownerID), month, months)
}

func ownerPrefix(ownerID string) string {
	return "dashboard:" + url.QueryEscape(ownerID) + ":"
}

// Build returns the dashboard for the month of now. months <= 0 selects the
// service window.
func (s *DashboardService) Build(ctx context.Context, ownerID string, now time.Time, months int) (report.Dashboard, error) {
	if months <= 0 {
		months = s.window
	}
	key := CacheKey(ownerID, core.MonthOf(now, s.opts.Location), months)
	if s.cache != nil {
		if d, ok := s.cache.Get(ctx, key); ok {
			metrics.CacheHit()
			return d, nil
		}
		metrics.CacheMiss()
	}

	d, err := s.compute(ctx, ownerID, now, months)
	if err != nil {
		return report.Dashboard{}, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, key, d)
	}
	return d, nil
}

// Refresh recomputes the dashboard, bypassing and then repopulating the cache.
func (s *DashboardService) Refresh(ctx context.Context, ownerID string, now time.Time, months int) (report.Dashboard, error) {
	if months <= 0 {
		months = s.window
	}
	d, err := s.compute(ctx, ownerID, now, months)
	if err != nil {
		return report.Dashboard{}, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, CacheKey(ownerID, d.Month, months), d)
	}
	return d, nil
}

// Invalidate drops every cached dashboard of the owner.
func (s *DashboardService) Invalidate(ctx context.Context, ownerID string) int {
	if s.cache == nil {
		return 0
	}
	n := s.cache.DeletePrefix(ctx, ownerPrefix(ownerID))
	s.logger.DebugContext(ctx, "Dashboard cache invalidated", "owner", ownerID, "entries", n)
	return n
}

func (s *DashboardService) compute(ctx context.Context, ownerID string, now time.Time, months int) (report.Dashboard, error) {
	start := time.Now()
	in, err := s.fetch(ctx, ownerID, now, months)
	var d report.Dashboard
	if err == nil {
		d, err = report.BuildDashboard(in, now, months, s.opts)
	}
	s.observe(ctx, "dashboard", ownerID, start, err)
	return d, err
}

// fetch loads the window's transactions with one query per month, plus the
// accounts and assets, all in parallel.
func (s *DashboardService) fetch(ctx context.Context, ownerID string, now time.Time, months int) (report.Inputs, error) {
	window, err := report.Window(months, now, s.opts.Location)
	if err != nil {
		return report.Inputs{}, err
	}

	var (
		perMonth = make([][]core.Transaction, len(window))
		in       report.Inputs
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxFetchConcurrency)
	for i, m := range window {
		g.Go(func() error {
			rows, err := s.reader.ListTransactions(gctx, ownerID, ledger.MonthFilter(m))
			if err != nil {
				return fmt.Errorf("list transactions for %s: %w", m, err)
			}
			perMonth[i] = rows
			return nil
		})
	}
	g.Go(func() error {
		rows, err := s.reader.ListAccounts(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("list accounts: %w", err)
		}
		in.Accounts = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.reader.ListAssets(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("list assets: %w", err)
		}
		in.Assets = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return report.Inputs{}, err
	}

	for _, rows := range perMonth {
		in.Transactions = append(in.Transactions, rows...)
	}
	if err := checkOwner(ownerID, in); err != nil {
		return report.Inputs{}, err
	}
	return in, nil
}

// MonthlyTotals returns income and expense for the month of now.
func (s *DashboardService) MonthlyTotals(ctx context.Context, ownerID string, now time.Time) (report.Totals, error) {
	start := time.Now()
	rows, err := s.monthRows(ctx, ownerID, now)
	var totals report.Totals
	if err == nil {
		totals, err = report.MonthlyTotals(rows, now, s.opts)
	}
	s.observe(ctx, "monthly_totals", ownerID, start, err)
	return totals, err
}

// Breakdown returns the expense breakdown for the month of now.
func (s *DashboardService) Breakdown(ctx context.Context, ownerID string, now time.Time) ([]report.Slice, error) {
	start := time.Now()
	rows, err := s.monthRows(ctx, ownerID, now)
	var slices []report.Slice
	if err == nil {
		slices, err = report.CategoryBreakdown(rows, now, s.opts)
	}
	s.observe(ctx, "breakdown", ownerID, start, err)
	return slices, err
}

// Series returns the trailing series ending with the month of now.
func (s *DashboardService) Series(ctx context.Context, ownerID string, now time.Time, months int) ([]report.SeriesPoint, error) {
	if months <= 0 {
		months = s.window
	}
	start := time.Now()
	window, err := report.Window(months, now, s.opts.Location)
	var points []report.SeriesPoint
	if err == nil {
		var rows []core.Transaction
		f := ledger.Filter{From: window[0].Start(), To: window[len(window)-1].End()}
		rows, err = s.reader.ListTransactions(ctx, ownerID, f)
		if err == nil {
			err = checkOwner(ownerID, report.Inputs{Transactions: rows})
		}
		if err == nil {
			points, err = report.TrailingSeries(rows, months, now, s.opts)
		}
	}
	s.observe(ctx, "series", ownerID, start, err)
	return points, err
}

// Snapshot returns the point-in-time bank and asset totals.
func (s *DashboardService) Snapshot(ctx context.Context, ownerID string) (report.Snapshot, error) {
	start := time.Now()
	var (
		snap report.Snapshot
		in   report.Inputs
		err  error
	)
	in.Accounts, err = s.reader.ListAccounts(ctx, ownerID)
	if err == nil {
		in.Assets, err = s.reader.ListAssets(ctx, ownerID)
	}
	if err == nil {
		err = checkOwner(ownerID, in)
	}
	if err == nil {
		snap, err = report.PointInTimeTotals(in.Accounts, in.Assets)
	}
	s.observe(ctx, "snapshot", ownerID, start, err)
	return snap, err
}

func (s *DashboardService) monthRows(ctx context.Context, ownerID string, now time.Time) ([]core.Transaction, error) {
	month := core.MonthOf(now, s.opts.Location)
	rows, err := s.reader.ListTransactions(ctx, ownerID, ledger.MonthFilter(month))
	if err != nil {
		return nil, fmt.Errorf("list transactions for %s: %w", month, err)
	}
	if err := checkOwner(ownerID, report.Inputs{Transactions: rows}); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *DashboardService) observe(ctx context.Context, op, ownerID string, start time.Time, err error) {
	result := metrics.ResultSuccess
	switch {
	case err == nil:
	case errors.Is(err, core.ErrDataIntegrity):
		result = metrics.ResultIntegrity
		s.logger.ErrorContext(ctx, "Ledger data failed integrity checks",
			"operation", op, "owner", ownerID, "error", err)
	default:
		result = metrics.ResultError
	}
	metrics.ObserveReport(op, result, time.Since(start))
}

// checkOwner rejects rows a store returned for another owner.
func checkOwner(ownerID string, in report.Inputs) error {
	foreign := func(entity, id string) error {
		return fmt.Errorf("%w: %s %q: %w", core.ErrDataIntegrity, entity, id, core.ErrForeignOwner)
	}
	for _, t := range in.Transactions {
		if t.OwnerID != ownerID {
			return foreign("transaction", t.ID)
		}
	}
	for _, a := range in.Accounts {
		if a.OwnerID != ownerID {
			return foreign("bank account", a.ID)
		}
	}
	for _, a := range in.Assets {
		if a.OwnerID != ownerID {
			return foreign("asset", a.ID)
		}
	}
	return nil
}
