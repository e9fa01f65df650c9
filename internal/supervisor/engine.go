package supervisor

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Jawbreaker1/agentpool/internal/config"
)

// Options are the optional per-task launch parameters.
type Options struct {
	Model          string
	PermissionMode string
}

// Engine is the single owner of the task registry and of every worker
// process. Dispatch, List, FetchOutput, Cancel, and Purge are all
// non-blocking with respect to worker execution.
type Engine struct {
	cfg config.Config
	log *slog.Logger
	now func() time.Time

	mu    sync.RWMutex
	tasks map[string]*Task
}

func NewEngine(cfg config.Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		cfg:   cfg,
		log:   logger,
		now:   func() time.Time { return time.Now().UTC() },
		tasks: map[string]*Task{},
	}
}

// Dispatch admits, registers, and launches one task, returning its
// identifier. It does not wait for the worker: launch failures are
// recorded on the task and observed through later queries.
func (e *Engine) Dispatch(description, dir string, opts Options) (string, error) {
	if strings.TrimSpace(description) == "" {
		return "", fmt.Errorf("%w: task description is required", ErrInvalidRequest)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s does not exist or is not a directory", ErrInvalidTarget, dir)
	}

	e.mu.Lock()
	if running := e.runningCountLocked(); running >= e.cfg.MaxRunning {
		e.mu.Unlock()
		return "", fmt.Errorf("%w: %d of %d workers already running; wait for one to finish or cancel a task",
			ErrCapacityExceeded, running, e.cfg.MaxRunning)
	}
	id := newTaskID()
	for {
		if _, taken := e.tasks[id]; !taken {
			break
		}
		id = newTaskID()
	}
	task := &Task{
		ID:             id,
		Description:    description,
		Dir:            dir,
		Model:          opts.Model,
		PermissionMode: opts.PermissionMode,
		status:         StatusStarting,
		startedAt:      e.now(),
	}
	e.tasks[id] = task
	e.mu.Unlock()

	e.launch(task)
	return id, nil
}

// runningCountLocked counts tasks currently in running status. The
// ceiling is an advisory gate checked at dispatch time, not a queue.
func (e *Engine) runningCountLocked() int {
	count := 0
	for _, task := range e.tasks {
		if task.statusSnapshot() == StatusRunning {
			count++
		}
	}
	return count
}

func (e *Engine) launch(t *Task) {
	args := []string{"-p", t.Description, "--output-format", "stream-json", "--verbose"}
	if t.Model != "" {
		args = append(args, "--model", t.Model)
	}
	if t.PermissionMode != "" {
		args = append(args, "--permission-mode", t.PermissionMode)
	}
	cmd := exec.Command(e.cfg.WorkerBin, args...)
	cmd.Dir = t.Dir
	cmd.Env = os.Environ()
	configureProcess(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		e.failLaunch(t, err)
		return
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		e.failLaunch(t, err)
		return
	}
	if err := cmd.Start(); err != nil {
		e.failLaunch(t, err)
		return
	}

	now := e.now()
	t.mu.Lock()
	t.cmd = cmd
	transitionErr := t.transitionLocked(StatusRunning, now)
	t.mu.Unlock()
	if transitionErr != nil {
		// Cancelled between registration and start; reap immediately.
		terminateForced(cmd)
	}
	e.log.Info("worker started", "task", t.ID, "pid", cmd.Process.Pid, "dir", t.Dir)

	var readers sync.WaitGroup
	readers.Add(2)
	go func() {
		defer readers.Done()
		e.pumpStdout(t, stdout)
	}()
	go func() {
		defer readers.Done()
		e.pumpStderr(t, stderr)
	}()
	go func() {
		// Both readers drain before Wait, so finalization observes
		// every output callback and runs the last buffer flush.
		readers.Wait()
		e.finalize(t, cmd.Wait())
	}()
}

func (e *Engine) failLaunch(t *Task, err error) {
	failure := classifyLaunchError(e.cfg.WorkerBin, err)
	now := e.now()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stderr = appendCapped(t.stderr, failure.Error()+"\n")
	code := -1
	t.exitCode = &code
	if err := t.transitionLocked(StatusFailed, now); err != nil {
		return
	}
	t.appendProgressLocked(ProgressEntry{TS: now, Category: CategoryFailure, Summary: failure.Error()})
	e.log.Error("worker launch failed", "task", t.ID, "cause", string(failure.Cause), "err", err)
}

func (e *Engine) pumpStdout(t *Task, r io.Reader) {
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			now := e.now()
			t.mu.Lock()
			delta := t.asm.Feed(string(buf[:n]))
			t.applyDeltaLocked(delta, now)
			t.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

func (e *Engine) pumpStderr(t *Task, r io.Reader) {
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			t.mu.Lock()
			t.stderr = appendCapped(t.stderr, string(buf[:n]))
			t.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// finalize runs once per launched task, after all output callbacks.
func (e *Engine) finalize(t *Task, waitErr error) {
	now := e.now()
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.killTimer != nil {
		t.killTimer.Stop()
		t.killTimer = nil
	}
	t.applyDeltaLocked(t.asm.Flush(), now)

	code := 0
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			code = exitErr.ExitCode()
		} else {
			code = -1
		}
	}
	t.exitCode = &code

	if t.status.Terminal() {
		// Cancelled earlier; the optimistic terminal state stands.
		e.log.Info("worker reaped after cancel", "task", t.ID, "exit", code)
		return
	}
	if code == 0 {
		_ = t.transitionLocked(StatusCompleted, now)
		e.log.Info("worker completed", "task", t.ID)
		return
	}
	_ = t.transitionLocked(StatusFailed, now)
	summary := failureSummary(code, t.progress, t.stderr)
	t.appendProgressLocked(ProgressEntry{TS: now, Category: CategoryFailure, Summary: summary})
	e.log.Warn("worker failed", "task", t.ID, "exit", code)
}

// List returns a snapshot of registered tasks, optionally filtered by
// status, ordered by start time.
func (e *Engine) List(filter Status) []TaskView {
	e.mu.RLock()
	tasks := make([]*Task, 0, len(e.tasks))
	for _, task := range e.tasks {
		tasks = append(tasks, task)
	}
	e.mu.RUnlock()

	views := make([]TaskView, 0, len(tasks))
	for _, task := range tasks {
		v := task.view()
		if filter != "" && v.Status != filter {
			continue
		}
		views = append(views, v)
	}
	sort.Slice(views, func(i, j int) bool {
		if !views[i].StartedAt.Equal(views[j].StartedAt) {
			return views[i].StartedAt.Before(views[j].StartedAt)
		}
		return views[i].ID < views[j].ID
	})
	return views
}

// OutputReport is the observable output of one task: assembled result
// text (or raw fallback), diagnostic stderr, and the progress timeline.
type OutputReport struct {
	TaskID    string
	Status    Status
	StartedAt time.Time
	Result    string
	Stderr    string
	Timeline  []ProgressEntry
}

func (e *Engine) FetchOutput(id string, tailLines int) (OutputReport, error) {
	t, ok := e.get(id)
	if !ok {
		return OutputReport{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	result := t.resultText
	if result == "" {
		result = t.rawOutput
	}
	if tailLines > 0 {
		result = lastLines(result, tailLines)
	}
	return OutputReport{
		TaskID:    t.ID,
		Status:    t.status,
		StartedAt: t.startedAt,
		Result:    result,
		Stderr:    t.stderr,
		Timeline:  append([]ProgressEntry(nil), t.progress...),
	}, nil
}

// Cancel requests termination of a starting or running task. The
// status flips to cancelled immediately; the process may still be
// shutting down, and is force-killed after the grace period unless it
// exits first.
func (e *Engine) Cancel(id string) error {
	t, ok := e.get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	now := e.now()
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != StatusStarting && t.status != StatusRunning {
		return fmt.Errorf("%w: task %s is %s", ErrAlreadyTerminal, id, t.status)
	}
	cmd := t.cmd
	terminateGraceful(cmd)
	t.killTimer = time.AfterFunc(e.cfg.Grace, func() {
		terminateForced(cmd)
	})
	_ = t.transitionLocked(StatusCancelled, now)
	e.log.Info("task cancelled", "task", id, "grace", e.cfg.Grace)
	return nil
}

// Purge removes terminal tasks from the registry; with includeRunning
// it also kills and removes live ones. Returns the count removed.
func (e *Engine) Purge(includeRunning bool) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	removed := 0
	for id, task := range e.tasks {
		task.mu.Lock()
		terminal := task.status.Terminal()
		cmd := task.cmd
		if task.killTimer != nil {
			task.killTimer.Stop()
			task.killTimer = nil
		}
		task.mu.Unlock()
		if !terminal {
			if !includeRunning {
				continue
			}
			// The record is being dropped, so no one is left to run
			// the graceful-then-forced escalation; kill outright.
			terminateForced(cmd)
		}
		delete(e.tasks, id)
		removed++
	}
	e.log.Info("registry purged", "removed", removed, "include_running", includeRunning)
	return removed
}

func (e *Engine) get(id string) (*Task, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	t, ok := e.tasks[id]
	return t, ok
}

// failureSummary gives an operator enough context without rereading
// full output: exit code, the most recent progress, and the stderr tail.
func failureSummary(code int, progress []ProgressEntry, stderr string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "worker exited with code %d", code)
	recent := progress
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	if len(recent) > 0 {
		summaries := make([]string, 0, len(recent))
		for _, entry := range recent {
			summaries = append(summaries, entry.Summary)
		}
		b.WriteString("; recent: ")
		b.WriteString(strings.Join(summaries, " | "))
	}
	if tail := lastLines(stderr, 10); tail != "" {
		b.WriteString("; stderr: ")
		b.WriteString(strings.ReplaceAll(tail, "\n", " / "))
	}
	return b.String()
}

// lastLines returns the trailing n lines of s, newline-joined.
func lastLines(s string, n int) string {
	s = strings.TrimRight(s, "\n")
	if s == "" || n <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
