// Package render formats task records and progress timelines for
// operator consumption, as plain text or JSON.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/Jawbreaker1/agentpool/internal/supervisor"
)

const descriptionMaxLen = 60

// Summaries renders one line per task: id, status, elapsed or exit
// code, directory, and a shortened description.
func Summaries(tasks []supervisor.TaskView) string {
	if len(tasks) == 0 {
		return "no tasks\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-14s %-10s %-8s %s\n", "TASK", "STATUS", "ELAPSED", "DESCRIPTION")
	for _, task := range tasks {
		end := time.Now()
		if task.CompletedAt != nil {
			end = *task.CompletedAt
		}
		extra := ""
		if task.ExitCode != nil && *task.ExitCode != 0 {
			extra = fmt.Sprintf(" (exit %d)", *task.ExitCode)
		}
		fmt.Fprintf(&b, "%-14s %-10s %-8s %s%s\n",
			task.ID, task.Status, elapsed(end.Sub(task.StartedAt)),
			shorten(task.Description, descriptionMaxLen), extra)
	}
	return b.String()
}

// Timeline renders progress entries with per-entry elapsed time since
// the task started.
func Timeline(startedAt time.Time, entries []supervisor.ProgressEntry) string {
	if len(entries) == 0 {
		return "no progress recorded\n"
	}
	var b strings.Builder
	for _, entry := range entries {
		fmt.Fprintf(&b, "+%s [%s] %s\n", elapsed(entry.TS.Sub(startedAt)), entry.Category, entry.Summary)
	}
	return b.String()
}

// OutputReport renders the full observable output of one task.
func OutputReport(report supervisor.OutputReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "task %s (%s)\n", report.TaskID, report.Status)
	if report.Result != "" {
		b.WriteString("\n--- result ---\n")
		b.WriteString(report.Result)
		if !strings.HasSuffix(report.Result, "\n") {
			b.WriteByte('\n')
		}
	}
	if report.Stderr != "" {
		b.WriteString("\n--- stderr ---\n")
		b.WriteString(report.Stderr)
		if !strings.HasSuffix(report.Stderr, "\n") {
			b.WriteByte('\n')
		}
	}
	b.WriteString("\n--- timeline ---\n")
	b.WriteString(Timeline(report.StartedAt, report.Timeline))
	return b.String()
}

func elapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func shorten(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
