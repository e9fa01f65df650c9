package stream

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Delta carries the task mutations produced by one Feed or Flush call:
// new progress events, text to append to the assembled result, and
// undecodable output to append to the raw fallback.
type Delta struct {
	Events     []Event
	ResultText string
	RawText    string
}

// Assembler reassembles newline-delimited records from a chunked
// stream. A chunk may split a record at any byte; the unterminated
// tail is carried in the buffer until the next delivery. At most one
// incomplete fragment is held between deliveries.
type Assembler struct {
	buf string

	// sawText records whether any message text has been accumulated,
	// so a terminal result payload only seeds the assembled text when
	// incremental narration never produced any.
	sawText bool
}

// Feed appends newly arrived bytes to the buffer, consumes every
// complete record, and retains the trailing fragment. Feeding a stream
// byte by byte or in one chunk produces identical deltas overall.
func (a *Assembler) Feed(chunk string) Delta {
	var delta Delta
	data := a.buf + chunk
	for {
		line, rest, found := strings.Cut(data, "\n")
		if !found {
			break
		}
		a.consume(line, &delta)
		data = rest
	}
	a.buf = data
	return delta
}

// Flush runs any residual buffer through the same decode path exactly
// once. Called on final process termination, after the last Feed.
func (a *Assembler) Flush() Delta {
	var delta Delta
	if a.buf != "" {
		a.consume(a.buf, &delta)
		a.buf = ""
	}
	return delta
}

func (a *Assembler) consume(line string, delta *Delta) {
	if line == "" {
		return
	}
	record := gjson.Parse(line)
	if !gjson.Valid(line) || !record.IsObject() {
		// Not a structured record: keep it verbatim, separator restored.
		delta.RawText += line + "\n"
		return
	}
	delta.Events = append(delta.Events, ParseRecord(line)...)

	switch record.Get("type").String() {
	case "assistant":
		record.Get("message.content").ForEach(func(_, segment gjson.Result) bool {
			if segment.Get("type").String() != "text" {
				return true
			}
			if text := segment.Get("text").String(); text != "" {
				delta.ResultText += text
				a.sawText = true
			}
			return true
		})
	case "result":
		if a.sawText {
			return
		}
		if payload := record.Get("result").String(); payload != "" {
			delta.ResultText += payload
			a.sawText = true
		}
	}
}
