package render

import (
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Jawbreaker1/agentpool/internal/supervisor"
)

var testStart = time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)

func sampleReport() supervisor.OutputReport {
	return supervisor.OutputReport{
		TaskID:    "task-ab12cd34",
		Status:    supervisor.StatusFailed,
		StartedAt: testStart,
		Result:    "partial result",
		Stderr:    "boom",
		Timeline: []supervisor.ProgressEntry{
			{TS: testStart.Add(3 * time.Second), Category: "narration", Summary: "Starting work"},
			{TS: testStart.Add(65 * time.Second), Category: "command", Summary: "running: make test"},
		},
	}
}

func TestTimeline_ElapsedPerEntry(t *testing.T) {
	t.Parallel()

	out := Timeline(testStart, sampleReport().Timeline)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), out)
	}
	if lines[0] != "+0:03 [narration] Starting work" {
		t.Fatalf("line 0 = %q", lines[0])
	}
	if lines[1] != "+1:05 [command] running: make test" {
		t.Fatalf("line 1 = %q", lines[1])
	}
}

func TestTimeline_Empty(t *testing.T) {
	t.Parallel()

	if out := Timeline(testStart, nil); out != "no progress recorded\n" {
		t.Fatalf("empty timeline = %q", out)
	}
}

func TestSummaries(t *testing.T) {
	t.Parallel()

	code := 1
	done := testStart.Add(90 * time.Second)
	out := Summaries([]supervisor.TaskView{
		{
			ID:          "task-ab12cd34",
			Status:      supervisor.StatusFailed,
			Description: strings.Repeat("d", 80),
			StartedAt:   testStart,
			CompletedAt: &done,
			ExitCode:    &code,
		},
	})
	if !strings.Contains(out, "task-ab12cd34") || !strings.Contains(out, "failed") {
		t.Fatalf("summary missing id/status: %q", out)
	}
	if !strings.Contains(out, "1:30") {
		t.Fatalf("summary missing elapsed: %q", out)
	}
	if !strings.Contains(out, "(exit 1)") {
		t.Fatalf("summary missing exit code: %q", out)
	}
	if !strings.Contains(out, strings.Repeat("d", 60)+"...") {
		t.Fatalf("description not shortened: %q", out)
	}
}

func TestOutputReport_Sections(t *testing.T) {
	t.Parallel()

	out := OutputReport(sampleReport())
	for _, want := range []string{"task task-ab12cd34 (failed)", "--- result ---", "partial result", "--- stderr ---", "boom", "--- timeline ---"} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}

func TestSummariesJSON(t *testing.T) {
	t.Parallel()

	code := 0
	doc := SummariesJSON([]supervisor.TaskView{
		{ID: "task-1", Status: supervisor.StatusCompleted, Description: "demo", Dir: "/tmp", StartedAt: testStart, ExitCode: &code},
		{ID: "task-2", Status: supervisor.StatusRunning, Description: "other", Dir: "/tmp", StartedAt: testStart},
	})
	if !gjson.Valid(doc) {
		t.Fatalf("invalid json: %s", doc)
	}
	if n := gjson.Get(doc, "#").Int(); n != 2 {
		t.Fatalf("expected 2 elements, got %d", n)
	}
	if got := gjson.Get(doc, "0.id").String(); got != "task-1" {
		t.Fatalf("0.id = %q", got)
	}
	if got := gjson.Get(doc, "0.exit_code").Int(); got != 0 {
		t.Fatalf("0.exit_code = %d", got)
	}
	if gjson.Get(doc, "1.exit_code").Exists() {
		t.Fatalf("running task should have no exit_code: %s", doc)
	}
}

func TestOutputReportJSON(t *testing.T) {
	t.Parallel()

	doc := OutputReportJSON(sampleReport())
	if !gjson.Valid(doc) {
		t.Fatalf("invalid json: %s", doc)
	}
	if got := gjson.Get(doc, "timeline.#").Int(); got != 2 {
		t.Fatalf("timeline length = %d", got)
	}
	if got := gjson.Get(doc, "timeline.1.elapsed").String(); got != "1m5s" {
		t.Fatalf("timeline.1.elapsed = %q", got)
	}
	if got := gjson.Get(doc, "status").String(); got != "failed" {
		t.Fatalf("status = %q", got)
	}
}
