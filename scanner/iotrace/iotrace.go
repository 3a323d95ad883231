// Package iotrace implements the I/O-channel tracer (C10): it locates every
// occurrence of a textual channel pattern (e.g. "process.stdout.write"),
// classifies the transport each writer uses from a context window, finds
// readers by a fixed pattern table, and flags protocol mismatches between
// the two.
package iotrace

import (
	"strings"

	"github.com/wellofspirit/bundlescope/errs"
	"github.com/wellofspirit/bundlescope/model"
	"github.com/wellofspirit/bundlescope/scanner/funcscan"
)

const contextWindow = 768

// Transport is a writer's heuristically classified framing.
type Transport string

const (
	TransportBinary  Transport = "BINARY (UInt32 length-prefixed)"
	TransportJSONNL  Transport = "JSON+NL"
	TransportJSON    Transport = "JSON"
	TransportText    Transport = "TEXT"
	TransportUnknown Transport = "UNKNOWN"
)

// ReaderKind is a reader site's consumption style, from the fixed table.
type ReaderKind string

const (
	ReaderLineBased ReaderKind = "line-based"
	ReaderRawStream ReaderKind = "raw-stream"
	ReaderBinary    ReaderKind = "binary"
	ReaderLineEvent ReaderKind = "line-event"
)

// WriterSite is one occurrence of the channel pattern used as a writer.
type WriterSite struct {
	Offset            int
	Transport         Transport
	EnclosingFunction string
}

// ReaderSite is one occurrence of a reader pattern from the fixed table.
type ReaderSite struct {
	Offset int
	Kind   ReaderKind
}

// Trace is the full result of tracing one channel pattern.
type Trace struct {
	Writers  []WriterSite
	Readers  []ReaderSite
	Warnings []model.Warning
}

var readerTable = []struct {
	pattern string
	kind    ReaderKind
}{
	{"createInterface", ReaderLineBased},
	{"on('data'", ReaderRawStream},
	{`on("data"`, ReaderRawStream},
	{"readUInt32LE", ReaderBinary},
	{"readUInt32BE", ReaderBinary},
	{"on('line'", ReaderLineEvent},
	{`on("line"`, ReaderLineEvent},
}

// Run traces channelPattern across buf.
func Run(buf []byte, channelPattern string) (Trace, error) {
	var t Trace

	for _, off := range literalOccurrences(buf, channelPattern) {
		start := off - contextWindow
		if start < 0 {
			start = 0
		}
		end := off + len(channelPattern) + contextWindow
		if end > len(buf) {
			end = len(buf)
		}
		t.Writers = append(t.Writers, WriterSite{
			Offset:            off,
			Transport:         classifyTransport(string(buf[start:end]), string(buf[off:end])),
			EnclosingFunction: enclosingFunctionName(buf, off),
		})
	}

	for _, rt := range readerTable {
		for _, off := range literalOccurrences(buf, rt.pattern) {
			t.Readers = append(t.Readers, ReaderSite{Offset: off, Kind: rt.kind})
		}
	}

	if hasBinaryWriter(t.Writers) && hasLineReader(t.Readers) {
		t.Warnings = append(t.Warnings, model.Warning{
			Kind:    string(errs.ProtocolMismatch),
			Message: "a binary length-prefixed writer coexists with a line-based reader on this channel",
		})
	}

	return t, nil
}

func hasBinaryWriter(writers []WriterSite) bool {
	for _, w := range writers {
		if w.Transport == TransportBinary {
			return true
		}
	}
	return false
}

func hasLineReader(readers []ReaderSite) bool {
	for _, r := range readers {
		if r.Kind == ReaderLineBased || r.Kind == ReaderLineEvent {
			return true
		}
	}
	return false
}

// classifyTransport reads the framing markers from window (the bytes on both
// sides of the occurrence) and the string-argument check from call (the bytes
// starting at the occurrence).
func classifyTransport(window, call string) Transport {
	hasBinary := strings.Contains(window, "Buffer.alloc") ||
		strings.Contains(window, "writeUInt32LE") ||
		strings.Contains(window, "writeUInt32BE")
	hasJSON := strings.Contains(window, "JSON.stringify")
	hasNewline := strings.Contains(window, `\n`)

	switch {
	case hasBinary:
		return TransportBinary
	case hasJSON && hasNewline:
		return TransportJSONNL
	case hasJSON:
		return TransportJSON
	case hasStringLiteralArgument(call):
		return TransportText
	default:
		return TransportUnknown
	}
}

// hasStringLiteralArgument is a shallow check that the call immediately
// following the channel pattern takes a quoted string as its first
// argument, without a full parse.
func hasStringLiteralArgument(window string) bool {
	lookahead := window
	if len(lookahead) > 50 {
		lookahead = lookahead[:50]
	}
	idx := strings.IndexByte(lookahead, '(')
	if idx < 0 {
		return false
	}
	rest := strings.TrimLeft(lookahead[idx+1:], " \t")
	return len(rest) > 0 && (rest[0] == '"' || rest[0] == '\'' || rest[0] == '`')
}

func enclosingFunctionName(buf []byte, offset int) string {
	spans, err := funcscan.FindEnclosing(buf, offset)
	if err != nil || len(spans) == 0 {
		return model.AnonymousName
	}
	return spans[0].SignatureText
}

func literalOccurrences(buf []byte, pattern string) []int {
	if pattern == "" {
		return nil
	}
	var offsets []int
	s := string(buf)
	idx := 0
	for {
		found := strings.Index(s[idx:], pattern)
		if found < 0 {
			break
		}
		offset := idx + found
		offsets = append(offsets, offset)
		idx = offset + len(pattern)
	}
	return offsets
}
