// Package worker holds the background consumers of ledger-changed messages.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/report"
	"fintrack/internal/sheets"
)

// DashboardRefresher is the part of the dashboard service the worker drives.
type DashboardRefresher interface {
	Invalidate(ctx context.Context, ownerID string) int
	Refresh(ctx context.Context, ownerID string, now time.Time, months int) (report.Dashboard, error)
	Options() report.Options
}

// ReportWorker keeps cached dashboards warm after ledger writes and mirrors
// them to the report sheet when one is configured.
type ReportWorker struct {
	dashboards DashboardRefresher
	publisher  sheets.ReportPublisher
	now        func() time.Time
	logger     *slog.Logger
}

// NewReportWorker wires the worker. publisher may be nil.
func NewReportWorker(dashboards DashboardRefresher, publisher sheets.ReportPublisher, logger *slog.Logger) *ReportWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportWorker{dashboards: dashboards, publisher: publisher, now: time.Now, logger: logger}
}

// HandleLedgerChanged invalidates the owner's dashboards and rebuilds the one
// for the affected month (the current month when the message has none).
//
// Rows failing integrity checks are logged and the message is acknowledged;
// retrying cannot fix stored data. Other errors are returned so the message
// is requeued.
func (w *ReportWorker) HandleLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	opts := w.dashboards.Options()
	removed := w.dashboards.Invalidate(ctx, msg.OwnerID)

	month := core.MonthOf(w.now(), opts.Location)
	if msg.Month != nil {
		month = *msg.Month
	}

	d, err := w.dashboards.Refresh(ctx, msg.OwnerID, opts.ReferenceTime(month), 0)
	if errors.Is(err, core.ErrDataIntegrity) {
		w.logger.ErrorContext(ctx, "Skipping dashboard rebuild for inconsistent ledger",
			"owner", msg.OwnerID, "month", month.String(), "error", err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("refresh dashboard: %w", err)
	}

	w.logger.InfoContext(ctx, "Dashboard rebuilt",
		"owner", msg.OwnerID,
		"month", month.String(),
		"entity", msg.Entity,
		"action", msg.Action,
		"invalidated", removed)

	if w.publisher == nil {
		return nil
	}
	if err := w.publisher.PublishDashboard(ctx, msg.OwnerID, d); err != nil {
		return fmt.Errorf("publish dashboard: %w", err)
	}
	return nil
}
