package sheets

import (
	"context"

	"fintrack/internal/report"
)

// ReportPublisher mirrors computed dashboards to an external spreadsheet.
type ReportPublisher interface {
	PublishDashboard(ctx context.Context, ownerID string, d report.Dashboard) error
}
