// Package stream turns the worker's chunked stream-json output into
// discrete progress events and accumulated result text.
//
// The worker emits newline-delimited JSON records on stdout. Chunks
// arrive with no alignment to record boundaries, so Assembler buffers
// the unterminated tail between deliveries and hands every complete
// record to ParseRecord. Parsing is total: a record that cannot be
// decoded is preserved as raw fallback text instead of failing the
// pipeline.
package stream
