package supervisor

import (
	"os/exec"
	"sync"
	"time"

	"github.com/Jawbreaker1/agentpool/internal/stream"
)

const (
	progressHistoryMax = 50

	outputMaxBytes       = 2 * 1024 * 1024
	outputTruncationNote = "\n...[output truncated]...\n"
)

// CategoryFailure marks the diagnostic entry the engine synthesizes
// when a worker fails; all other categories come from the stream parser.
const CategoryFailure = "failure"

// ProgressEntry is one timestamped item in a task's progress history.
type ProgressEntry struct {
	TS       time.Time
	Category string
	Summary  string
}

// Task is one supervised worker execution. The descriptive fields are
// immutable after creation; everything under mu is mutated by the
// engine and by callbacks from this task's own process handle, never
// by another task's.
type Task struct {
	ID             string
	Description    string
	Dir            string
	Model          string
	PermissionMode string

	mu          sync.Mutex
	status      Status
	exitCode    *int
	startedAt   time.Time
	completedAt *time.Time
	resultText  string
	rawOutput   string
	stderr      string
	progress    []ProgressEntry
	asm         stream.Assembler

	// cmd is held only for signalling; the waiter goroutine owns the
	// process lifetime. killTimer is the pending forced-termination
	// escalation, stopped if the process exits first.
	cmd       *exec.Cmd
	killTimer *time.Timer
}

// TaskView is a read-only snapshot of a Task.
type TaskView struct {
	ID             string
	Description    string
	Dir            string
	Model          string
	PermissionMode string
	Status         Status
	ExitCode       *int
	StartedAt      time.Time
	CompletedAt    *time.Time
	Progress       []ProgressEntry
}

func (t *Task) view() TaskView {
	t.mu.Lock()
	defer t.mu.Unlock()
	v := TaskView{
		ID:             t.ID,
		Description:    t.Description,
		Dir:            t.Dir,
		Model:          t.Model,
		PermissionMode: t.PermissionMode,
		Status:         t.status,
		StartedAt:      t.startedAt,
		Progress:       append([]ProgressEntry(nil), t.progress...),
	}
	if t.exitCode != nil {
		code := *t.exitCode
		v.ExitCode = &code
	}
	if t.completedAt != nil {
		at := *t.completedAt
		v.CompletedAt = &at
	}
	return v
}

func (t *Task) statusSnapshot() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// transitionLocked moves the task to next and stamps CompletedAt when
// next is terminal. Callers hold t.mu.
func (t *Task) transitionLocked(next Status, now time.Time) error {
	if err := ValidateTransition(t.status, next); err != nil {
		return err
	}
	t.status = next
	if next.Terminal() {
		at := now
		t.completedAt = &at
	}
	return nil
}

// appendProgressLocked adds one entry, evicting the oldest once the
// history holds progressHistoryMax entries. Callers hold t.mu.
func (t *Task) appendProgressLocked(entry ProgressEntry) {
	t.progress = append(t.progress, entry)
	if len(t.progress) > progressHistoryMax {
		t.progress = t.progress[len(t.progress)-progressHistoryMax:]
	}
}

// applyDeltaLocked folds one assembler delta into the record. Callers
// hold t.mu.
func (t *Task) applyDeltaLocked(delta stream.Delta, now time.Time) {
	if delta.RawText != "" {
		t.rawOutput = appendCapped(t.rawOutput, delta.RawText)
	}
	if delta.ResultText != "" {
		t.resultText = appendCapped(t.resultText, delta.ResultText)
	}
	for _, event := range delta.Events {
		t.appendProgressLocked(ProgressEntry{TS: now, Category: event.Category, Summary: event.Summary})
	}
}

// appendCapped bounds accumulated output on long-running tasks. Once
// the cap is reached a truncation note is added and further appends
// are dropped.
func appendCapped(dst, add string) string {
	if add == "" || len(dst) >= outputMaxBytes {
		return dst
	}
	room := outputMaxBytes - len(dst)
	if len(add) <= room {
		return dst + add
	}
	return dst + add[:room] + outputTruncationNote
}
