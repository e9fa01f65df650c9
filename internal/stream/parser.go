package stream

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Event is one human-readable progress item derived from a single
// worker output record.
type Event struct {
	Category string
	Summary  string
}

// Event categories. Narration covers assistant prose, the rest map
// tool invocations to what the worker is doing with them.
const (
	CategoryNarration = "narration"
	CategoryRead      = "read"
	CategoryChange    = "change"
	CategoryCommand   = "command"
	CategorySearch    = "search"
	CategorySubtask   = "subtask"
	CategoryTool      = "tool"
	CategoryDone      = "done"
)

const (
	narrationMaxLen = 120
	commandMaxLen   = 80
	argMaxLen       = 80
)

// ParseRecord maps one decoded record to zero or more events. A single
// message record can carry several content segments and therefore
// yield several events, in segment order. Malformed or unrecognized
// records yield no events; this function never fails, so one bad
// record cannot stall processing of the rest of the stream.
func ParseRecord(line string) []Event {
	record := gjson.Parse(line)
	if !record.IsObject() {
		return nil
	}
	switch record.Get("type").String() {
	case "assistant":
		return parseMessage(record.Get("message.content"))
	case "tool_use":
		return []Event{classifyTool(record.Get("name").String(), record.Get("input"))}
	case "result":
		return []Event{{Category: CategoryDone, Summary: "agent finished"}}
	default:
		return nil
	}
}

func parseMessage(content gjson.Result) []Event {
	var events []Event
	content.ForEach(func(_, segment gjson.Result) bool {
		switch segment.Get("type").String() {
		case "text":
			text := strings.TrimSpace(segment.Get("text").String())
			if text == "" {
				return true
			}
			events = append(events, Event{
				Category: CategoryNarration,
				Summary:  truncate(firstLine(text), narrationMaxLen),
			})
		case "tool_use":
			events = append(events, classifyTool(segment.Get("name").String(), segment.Get("input")))
		}
		return true
	})
	return events
}

// classifyTool renders a one-line summary for a tool invocation.
// Unrecognized tool names still produce a generic event; classification
// never drops an invocation.
func classifyTool(name string, input gjson.Result) Event {
	switch name {
	case "Read":
		return Event{Category: CategoryRead, Summary: "reading " + input.Get("file_path").String()}
	case "Write":
		return Event{Category: CategoryChange, Summary: "writing " + input.Get("file_path").String()}
	case "Edit", "MultiEdit":
		return Event{Category: CategoryChange, Summary: "editing " + input.Get("file_path").String()}
	case "NotebookEdit":
		return Event{Category: CategoryChange, Summary: "editing " + input.Get("notebook_path").String()}
	case "Bash":
		return Event{Category: CategoryCommand, Summary: "running: " + truncate(firstLine(input.Get("command").String()), commandMaxLen)}
	case "Glob":
		return Event{Category: CategorySearch, Summary: "globbing " + truncate(input.Get("pattern").String(), argMaxLen)}
	case "Grep":
		return Event{Category: CategorySearch, Summary: "searching for " + truncate(input.Get("pattern").String(), argMaxLen)}
	case "LS":
		return Event{Category: CategorySearch, Summary: "listing " + truncate(input.Get("path").String(), argMaxLen)}
	case "Task":
		return Event{Category: CategorySubtask, Summary: "delegating: " + truncate(firstLine(input.Get("description").String()), argMaxLen)}
	default:
		if name == "" {
			name = "unnamed tool"
		}
		return Event{Category: CategoryTool, Summary: "using " + name}
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}

// truncate keeps the result within max runes, ellipsis included.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
