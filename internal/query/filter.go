// Package query implements the filter, pagination and timeline engine that
// runs over a session's parsed entries.
package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gstlog-visualizer/backend/internal/models"
)

// Filter is a conjunctive predicate: every present criterion must hold,
// absent criteria are vacuously true.
type Filter struct {
	Level         string
	Categories    []string
	MessageRegex  string
	FunctionRegex string
	PID           *uint32
	Thread        *string
	Object        *string
	MinTimestamp  *uint64
	MaxTimestamp  *uint64
	// UseMicroseconds selects the unit the timestamp bounds are expressed
	// in: microseconds when true, milliseconds otherwise.
	UseMicroseconds bool
}

// CompiledFilter is a Filter with its regex criteria compiled once per
// query invocation rather than once per entry.
type CompiledFilter struct {
	filter     Filter
	categories []string // trimmed accepted category names
	messageRe  *regexp.Regexp
	functionRe *regexp.Regexp
}

// Compile prepares the filter for evaluation. An uncompilable regex
// criterion degrades to "no restriction" and is reported as a warning; the
// query itself is not rejected.
func (f Filter) Compile() (*CompiledFilter, []string) {
	cf := &CompiledFilter{filter: f}
	var warnings []string

	for _, cat := range f.Categories {
		cf.categories = append(cf.categories, strings.TrimSpace(cat))
	}

	if f.MessageRegex != "" {
		re, err := regexp.Compile(f.MessageRegex)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("invalid message_regex %q: criterion not applied", f.MessageRegex))
		} else {
			cf.messageRe = re
		}
	}
	if f.FunctionRegex != "" {
		re, err := regexp.Compile(f.FunctionRegex)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("invalid function_regex %q: criterion not applied", f.FunctionRegex))
		} else {
			cf.functionRe = re
		}
	}

	return cf, warnings
}

// Match reports whether a single entry satisfies every present criterion.
// Short-circuits on the first failing criterion.
func (cf *CompiledFilter) Match(e *models.Entry) bool {
	f := &cf.filter

	if f.Level != "" && string(e.Level) != f.Level {
		return false
	}

	if len(cf.categories) > 0 {
		entryCat := strings.TrimSpace(e.Category)
		found := false
		for _, cat := range cf.categories {
			if cat == entryCat {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if cf.messageRe != nil && !cf.messageRe.MatchString(e.Message) {
		return false
	}

	if f.PID != nil && e.PID != *f.PID {
		return false
	}

	if f.Thread != nil && e.Thread != *f.Thread {
		return false
	}

	if f.Object != nil {
		// An entry with no object never matches an object criterion.
		if e.Object == nil || *e.Object != *f.Object {
			return false
		}
	}

	if cf.functionRe != nil && !cf.functionRe.MatchString(e.Function) {
		return false
	}

	// Timestamp stage is skipped entirely when no bound is present.
	if f.MinTimestamp != nil || f.MaxTimestamp != nil {
		var ts uint64
		if f.UseMicroseconds {
			ts = e.TimestampMicros()
		} else {
			ts = e.TimestampMillis()
		}
		if f.MinTimestamp != nil && ts < *f.MinTimestamp {
			return false
		}
		if f.MaxTimestamp != nil && ts > *f.MaxTimestamp {
			return false
		}
	}

	return true
}

// Apply returns the ordered subsequence of entries matching the filter.
// The returned pointers reference the stored sequence; nothing is copied
// until a result is materialized for a response.
func (cf *CompiledFilter) Apply(entries []models.Entry) []*models.Entry {
	matched := make([]*models.Entry, 0)
	for i := range entries {
		if cf.Match(&entries[i]) {
			matched = append(matched, &entries[i])
		}
	}
	return matched
}
