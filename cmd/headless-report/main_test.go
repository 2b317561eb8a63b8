package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Garsondee/Radar-Sense/internal/scenario"
	"github.com/Garsondee/Radar-Sense/internal/sim"
)

func TestFirstTick(t *testing.T) {
	entries := []sim.SimLogEntry{
		{Tick: 3, Category: "radar", Key: "contact_lost"},
		{Tick: 5, Category: "radar", Key: "classified", Value: "Frigate"},
		{Tick: 9, Category: "radar", Key: "classified", Value: "Target"},
	}
	if got := firstTick(entries, "radar", "classified", ""); got != 5 {
		t.Fatalf("expected first classified at 5, got %d", got)
	}
	if got := firstTick(entries, "radar", "classified", "Target"); got != 9 {
		t.Fatalf("expected first Target classification at 9, got %d", got)
	}
	if got := firstTick(entries, "radar", "contact_new", ""); got != -1 {
		t.Fatalf("expected -1 for missing key, got %d", got)
	}
}

func TestRunScenario_DuelAcquiresOnFirstTick(t *testing.T) {
	f, err := scenario.Builtin("duel")
	if err != nil {
		t.Fatal(err)
	}
	rs, err := runScenario(f, 1, 0, 60, false)
	if err != nil {
		t.Fatal(err)
	}
	if rs.firstContactTick != 0 {
		t.Fatalf("expected contact on tick 0, got %d", rs.firstContactTick)
	}
	if rs.report.TotalAcquisitions() != 1 {
		t.Fatalf("expected one acquisition, got %d", rs.report.TotalAcquisitions())
	}
	if rs.report.ToTick != 59 {
		t.Fatalf("expected report to end on tick 59, got %d", rs.report.ToTick)
	}
}

func TestRunScenario_SameStartTickIsIdentical(t *testing.T) {
	f, err := scenario.Builtin("furball")
	if err != nil {
		t.Fatal(err)
	}
	a, err := runScenario(f, 1, 100, 300, false)
	if err != nil {
		t.Fatal(err)
	}
	b, err := runScenario(f, 2, 100, 300, false)
	if err != nil {
		t.Fatal(err)
	}
	if a.report.String() != b.report.String() {
		t.Fatalf("runs from the same start tick diverged:\n%s\nvs\n%s", a.report, b.report)
	}
}

func TestRun_RejectsBadFlags(t *testing.T) {
	if err := run(options{scenario: "duel", runs: 0}); err == nil {
		t.Fatal("expected error for zero runs")
	}
	if err := run(options{scenario: "nope", runs: 1}); err == nil {
		t.Fatal("expected error for unknown scenario")
	}
}

func TestPlotRanges_WritesPNG(t *testing.T) {
	f, err := scenario.Builtin("duel")
	if err != nil {
		t.Fatal(err)
	}
	rs, err := runScenario(f, 1, 0, 120, false)
	if err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "ranges.png")
	if err := plotRanges(rs.report, "duel", out); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(out)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Fatal("expected a non-empty PNG")
	}
}

func TestPlotRanges_NoContacts(t *testing.T) {
	if err := plotRanges(sim.Report{}, "empty", filepath.Join(t.TempDir(), "x.png")); err == nil {
		t.Fatal("expected error when no radar has range samples")
	}
}

func TestEventLog_OnlyWhenVerbose(t *testing.T) {
	f, err := scenario.Builtin("duel")
	if err != nil {
		t.Fatal(err)
	}
	quiet, err := runScenario(f, 1, 0, 30, false)
	if err != nil {
		t.Fatal(err)
	}
	if got := eventLog(quiet); got != "" {
		t.Fatalf("expected no event log without -verbose, got:\n%s", got)
	}

	loud, err := runScenario(f, 1, 0, 30, true)
	if err != nil {
		t.Fatal(err)
	}
	got := eventLog(loud)
	if !strings.Contains(got, "== fighter#0 events=") {
		t.Fatalf("expected a per-radar heading, got:\n%s", got)
	}
	if n := strings.Count(got, "rssi"); n != 30 {
		t.Fatalf("expected 30 per-tick rssi lines for fighter#0, got %d:\n%s", n, got)
	}
}
