package render

import (
	"time"

	"github.com/tidwall/sjson"

	"github.com/Jawbreaker1/agentpool/internal/supervisor"
)

// SummariesJSON renders the task list as a JSON array.
func SummariesJSON(tasks []supervisor.TaskView) string {
	doc := "[]"
	for _, task := range tasks {
		elem := "{}"
		elem, _ = sjson.Set(elem, "id", task.ID)
		elem, _ = sjson.Set(elem, "status", string(task.Status))
		elem, _ = sjson.Set(elem, "description", task.Description)
		elem, _ = sjson.Set(elem, "dir", task.Dir)
		elem, _ = sjson.Set(elem, "started_at", task.StartedAt.Format(time.RFC3339))
		if task.Model != "" {
			elem, _ = sjson.Set(elem, "model", task.Model)
		}
		if task.PermissionMode != "" {
			elem, _ = sjson.Set(elem, "permission_mode", task.PermissionMode)
		}
		if task.CompletedAt != nil {
			elem, _ = sjson.Set(elem, "completed_at", task.CompletedAt.Format(time.RFC3339))
		}
		if task.ExitCode != nil {
			elem, _ = sjson.Set(elem, "exit_code", *task.ExitCode)
		}
		doc, _ = sjson.SetRaw(doc, "-1", elem)
	}
	return doc
}

// OutputReportJSON renders one task's output report as a JSON object.
func OutputReportJSON(report supervisor.OutputReport) string {
	doc := "{}"
	doc, _ = sjson.Set(doc, "task_id", report.TaskID)
	doc, _ = sjson.Set(doc, "status", string(report.Status))
	doc, _ = sjson.Set(doc, "started_at", report.StartedAt.Format(time.RFC3339))
	doc, _ = sjson.Set(doc, "result", report.Result)
	doc, _ = sjson.Set(doc, "stderr", report.Stderr)
	doc, _ = sjson.Set(doc, "timeline", []any{})
	for _, entry := range report.Timeline {
		elem := "{}"
		elem, _ = sjson.Set(elem, "ts", entry.TS.Format(time.RFC3339))
		elem, _ = sjson.Set(elem, "elapsed", entry.TS.Sub(report.StartedAt).Round(time.Second).String())
		elem, _ = sjson.Set(elem, "category", entry.Category)
		elem, _ = sjson.Set(elem, "summary", entry.Summary)
		doc, _ = sjson.SetRaw(doc, "timeline.-1", elem)
	}
	return doc
}
