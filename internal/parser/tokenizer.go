// Package parser tokenizes GStreamer debug log output.
//
// Line format:
//
//	H:MM:SS.fffffffff PID THREAD LEVEL category file.c:line:function:<object> message
//
// Fields are separated by runs of spaces; the location segment has its own
// colon-delimited sub-grammar with an optional bracketed object.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gstlog-visualizer/backend/internal/models"
)

// ansiEscape matches SGR color sequences some gst builds emit even when
// piped to a file. Stripped before tokenizing so they cannot corrupt field
// boundaries.
var ansiEscape = regexp.MustCompile("\x1b\\[[0-9;]*m")

// Tokenize converts one raw log line into an Entry or a classified failure.
// It is a pure function and never panics.
func Tokenize(line string) (*models.Entry, *ParseFailure) {
	if strings.Contains(line, "\x1b") {
		line = ansiEscape.ReplaceAllString(line, "")
	}

	// Split on single spaces; runs of padding produce empty tokens that are
	// skipped between structured fields.
	tokens := strings.Split(line, " ")
	pos := 0
	next := func() (string, bool) {
		for pos < len(tokens) {
			t := tokens[pos]
			pos++
			if t != "" {
				return t, true
			}
		}
		return "", false
	}

	tsTok, ok := next()
	if !ok {
		return nil, missingToken("timestamp")
	}
	ts, fail := parseClockTime(tsTok)
	if fail != nil {
		return nil, fail
	}

	pidTok, ok := next()
	if !ok {
		return nil, missingToken("pid")
	}
	pid, err := strconv.ParseUint(pidTok, 10, 32)
	if err != nil {
		return nil, &ParseFailure{Kind: FailureInvalidPid, Field: "pid", Raw: pidTok}
	}

	thread, ok := next()
	if !ok {
		return nil, missingToken("thread")
	}

	levelTok, ok := next()
	if !ok {
		return nil, missingToken("level")
	}
	level, ok := models.ParseLevel(levelTok)
	if !ok {
		return nil, &ParseFailure{Kind: FailureInvalidDebugLevel, Field: "level", Raw: levelTok}
	}

	category, ok := next()
	if !ok {
		return nil, missingToken("category")
	}

	locTok, ok := next()
	if !ok {
		return nil, missingToken("location")
	}
	file, lineNo, function, object, fail := parseLocation(locTok)
	if fail != nil {
		return nil, fail
	}

	// Everything left is the message; inter-token spacing collapses to
	// single spaces (accepted lossy behavior).
	var msgParts []string
	for {
		t, ok := next()
		if !ok {
			break
		}
		msgParts = append(msgParts, t)
	}

	return &models.Entry{
		Timestamp: ts,
		PID:       uint32(pid),
		Thread:    thread,
		Level:     level,
		Category:  category,
		File:      file,
		Line:      lineNo,
		Function:  function,
		Object:    object,
		Message:   strings.Join(msgParts, " "),
	}, nil
}

// parseClockTime parses "H:MM:SS.fffffffff" into nanoseconds.
func parseClockTime(tok string) (uint64, *ParseFailure) {
	fail := func(sub string) (uint64, *ParseFailure) {
		return 0, &ParseFailure{Kind: FailureInvalidTimestamp, Field: sub, Raw: tok}
	}

	parts := strings.SplitN(tok, ":", 3)
	if len(parts) != 3 {
		return fail("timestamp")
	}

	hours, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return fail("hours")
	}
	minutes, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return fail("minutes")
	}

	secParts := strings.SplitN(parts[2], ".", 2)
	if len(secParts) != 2 {
		return fail("seconds")
	}
	seconds, err := strconv.ParseUint(secParts[0], 10, 64)
	if err != nil {
		return fail("seconds")
	}
	// The subsecond field is nine digits and is taken directly as nanoseconds.
	nanos, err := strconv.ParseUint(secParts[1], 10, 64)
	if err != nil {
		return fail("subseconds")
	}

	return (hours*3600+minutes*60+seconds)*1_000_000_000 + nanos, nil
}

// parseLocation parses "file:line:function:<object>". The object segment is
// optional but its leading colon must be present even when empty.
func parseLocation(tok string) (file string, lineNo uint32, function string, object *string, fail *ParseFailure) {
	parts := strings.SplitN(tok, ":", 4)
	if len(parts) < 4 {
		return "", 0, "", nil, &ParseFailure{Kind: FailureMissingLocation, Field: "location", Raw: tok}
	}

	file = parts[0]
	if file == "" {
		return "", 0, "", nil, missingToken("file")
	}

	n, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return "", 0, "", nil, &ParseFailure{Kind: FailureInvalidLineNumber, Field: "line", Raw: parts[1]}
	}
	lineNo = uint32(n)

	function = parts[2]
	if function == "" {
		return "", 0, "", nil, missingToken("function")
	}

	if seg := parts[3]; seg != "" {
		name := strings.TrimSuffix(strings.TrimPrefix(seg, "<"), ">")
		object = &name
	}

	return file, lineNo, function, object, nil
}
