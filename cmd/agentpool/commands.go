package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Jawbreaker1/agentpool/internal/render"
	"github.com/Jawbreaker1/agentpool/internal/supervisor"
)

type repl struct {
	engine  *supervisor.Engine
	out     io.Writer
	jsonOut bool
}

func (r *repl) run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		if err := r.execLine(line); err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
		}
	}
	r.engine.Purge(true)
	return scanner.Err()
}

func (r *repl) execLine(line string) error {
	fields := strings.Fields(line)
	command, args := fields[0], fields[1:]
	switch command {
	case "help":
		fmt.Fprint(r.out, helpText)
		return nil
	case "dispatch":
		return r.dispatch(args)
	case "list":
		return r.list(args)
	case "output":
		return r.output(args)
	case "cancel":
		if len(args) != 1 {
			return fmt.Errorf("usage: cancel <task-id>")
		}
		if err := r.engine.Cancel(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "cancellation requested for %s\n", args[0])
		return nil
	case "purge":
		includeRunning := len(args) == 1 && args[0] == "all"
		removed := r.engine.Purge(includeRunning)
		fmt.Fprintf(r.out, "removed %d tasks\n", removed)
		return nil
	default:
		return fmt.Errorf("unknown command %q; type help", command)
	}
}

func (r *repl) dispatch(args []string) error {
	dir, opts, description, err := parseDispatchArgs(args)
	if err != nil {
		return err
	}
	id, err := r.engine.Dispatch(description, dir, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "dispatched %s\n", id)
	return nil
}

// parseDispatchArgs splits "dispatch <dir> [model=<m>] [mode=<pm>]
// <description...>". Option tokens are only recognized before the
// description starts.
func parseDispatchArgs(args []string) (dir string, opts supervisor.Options, description string, err error) {
	if len(args) < 2 {
		return "", supervisor.Options{}, "", fmt.Errorf("usage: dispatch <dir> [model=<m>] [mode=<pm>] <description>")
	}
	dir = args[0]
	rest := args[1:]
	for len(rest) > 0 {
		switch {
		case strings.HasPrefix(rest[0], "model="):
			opts.Model = strings.TrimPrefix(rest[0], "model=")
		case strings.HasPrefix(rest[0], "mode="):
			opts.PermissionMode = strings.TrimPrefix(rest[0], "mode=")
		default:
			description = strings.Join(rest, " ")
			return dir, opts, description, nil
		}
		rest = rest[1:]
	}
	return "", supervisor.Options{}, "", fmt.Errorf("task description is required")
}

func (r *repl) list(args []string) error {
	var filter supervisor.Status
	if len(args) > 0 {
		filter = supervisor.Status(args[0])
		if err := supervisor.ValidateStatus(filter); err != nil {
			return err
		}
	}
	tasks := r.engine.List(filter)
	if r.jsonOut {
		fmt.Fprintln(r.out, render.SummariesJSON(tasks))
		return nil
	}
	fmt.Fprint(r.out, render.Summaries(tasks))
	return nil
}

func (r *repl) output(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: output <task-id> [tail-lines]")
	}
	tailLines := 0
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			return fmt.Errorf("tail-lines must be a positive integer")
		}
		tailLines = n
	}
	report, err := r.engine.FetchOutput(args[0], tailLines)
	if err != nil {
		return err
	}
	if r.jsonOut {
		fmt.Fprintln(r.out, render.OutputReportJSON(report))
		return nil
	}
	fmt.Fprint(r.out, render.OutputReport(report))
	return nil
}

const helpText = `commands:
  dispatch <dir> [model=<m>] [mode=<pm>] <description>   start a worker
  list [status]                                          show tasks
  output <task-id> [tail-lines]                          show output + timeline
  cancel <task-id>                                       request termination
  purge [all]                                            drop finished (or all) tasks
  quit                                                   exit
`
