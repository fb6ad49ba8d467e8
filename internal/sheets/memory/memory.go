// Package memory is a ReportPublisher that keeps the last dashboard per
// owner in process, for tests and deployments without a spreadsheet.
package memory

import (
	"context"
	"sync"

	"fintrack/internal/report"
	ports "fintrack/internal/sheets"
)

type Publisher struct {
	mu        sync.Mutex
	published map[string]report.Dashboard
	count     int
}

var _ ports.ReportPublisher = (*Publisher)(nil)

func New() *Publisher {
	return &Publisher{published: map[string]report.Dashboard{}}
}

// PublishDashboard records d as the owner's latest dashboard.
func (p *Publisher) PublishDashboard(_ context.Context, ownerID string, d report.Dashboard) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published[ownerID] = d
	p.count++
	return nil
}

// Last returns the most recent dashboard published for ownerID.
func (p *Publisher) Last(ownerID string) (report.Dashboard, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	d, ok := p.published[ownerID]
	return d, ok
}

// Count is the number of publishes so far.
func (p *Publisher) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}
