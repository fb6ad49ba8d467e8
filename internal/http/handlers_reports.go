package http

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"

	"fintrack/internal/core"
	"fintrack/internal/export"
	applog "fintrack/internal/log"
	"fintrack/internal/metrics"
	"fintrack/internal/report"
)

// GET /api/dashboard?month=YYYY-MM&months=N
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, ok := s.dashboard(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) (report.Dashboard, bool) {
	owner, ok := s.owner(w, r)
	if !ok {
		return report.Dashboard{}, false
	}
	now, err := s.referenceTime(r)
	if err != nil {
		s.writeError(w, r, err)
		return report.Dashboard{}, false
	}
	months, err := parseMonths(r)
	if err != nil {
		s.writeError(w, r, err)
		return report.Dashboard{}, false
	}
	d, err := s.dashboards.Build(r.Context(), owner, now, months)
	if err != nil {
		s.writeError(w, r, err)
		return report.Dashboard{}, false
	}
	return d, true
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	now, err := s.referenceTime(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	totals, err := s.dashboards.MonthlyTotals(r.Context(), owner, now)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"month":   s.monthOf(now),
		"income":  totals.Income,
		"expense": totals.Expense,
		"net":     totals.Net(),
	})
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	now, err := s.referenceTime(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	months, err := parseMonths(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	series, err := s.dashboards.Series(r.Context(), owner, now, months)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"series": series})
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	now, err := s.referenceTime(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	slices, err := s.dashboards.Breakdown(r.Context(), owner, now)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"month": s.monthOf(now), "breakdown": slices})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	snap, err := s.dashboards.Snapshot(r.Context(), owner)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, "xlsx", export.ContentTypeXLSX, export.BuildXLSX)
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, "pdf", export.ContentTypePDF, export.BuildPDF)
}

func (s *Server) export(w http.ResponseWriter, r *http.Request, ext, contentType string, build func(report.Dashboard, export.Formatter) ([]byte, error)) {
	d, ok := s.dashboard(w, r)
	if !ok {
		return
	}
	body, err := build(d, export.NewFormatter(s.exportLanguage(r)))
	if err != nil {
		metrics.IncExport(ext, metrics.ResultError)
		s.writeError(w, r, err)
		return
	}
	metrics.IncExport(ext, metrics.ResultSuccess)
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Dashboard exported",
		applog.FieldFormat, ext, applog.FieldMonth, d.Month.String(), "bytes", len(body))

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(d.Month, ext)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// exportLanguage prefers ?lang=, then the server default.
func (s *Server) exportLanguage(r *http.Request) language.Tag {
	if v := strings.TrimSpace(r.URL.Query().Get("lang")); v != "" {
		if tag, err := language.Parse(v); err == nil {
			return tag
		}
	}
	if s.language == language.Und {
		return language.English
	}
	return s.language
}

func (s *Server) monthOf(now time.Time) core.Month {
	return core.MonthOf(now, s.dashboards.Options().Location)
}
