package memory

import (
	"context"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

func TestPublisherKeepsLatestPerOwner(t *testing.T) {
	p := New()
	ctx := context.Background()

	if _, ok := p.Last("alice"); ok {
		t.Fatal("expected nothing published yet")
	}
	p.PublishDashboard(ctx, "alice", report.Dashboard{Month: core.Month{Year: 2024, Month: 4}})
	p.PublishDashboard(ctx, "alice", report.Dashboard{Month: core.Month{Year: 2024, Month: 5}})
	p.PublishDashboard(ctx, "bob", report.Dashboard{Month: core.Month{Year: 2023, Month: 1}})

	d, ok := p.Last("alice")
	if !ok || d.Month.String() != "2024-05" {
		t.Fatalf("unexpected latest dashboard: %v %v", d.Month, ok)
	}
	if p.Count() != 3 {
		t.Fatalf("count = %d, want 3", p.Count())
	}
}
