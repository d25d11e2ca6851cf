// Package api implements the HTTP surface over the session and query layers.
package api

import (
	"fmt"
	"strconv"

	"github.com/gstlog-visualizer/backend/internal/query"
	"github.com/gstlog-visualizer/backend/internal/session"
	"github.com/gstlog-visualizer/backend/internal/storage"
	"github.com/labstack/echo/v4"
)

// Handler bundles the dependencies of all API endpoints.
type Handler struct {
	store    storage.Store
	sessions *session.Manager
	version  string
}

// NewHandler creates the API handler.
func NewHandler(store storage.Store, sessions *session.Manager, version string) *Handler {
	return &Handler{
		store:    store,
		sessions: sessions,
		version:  version,
	}
}

// buildFilter extracts the filter criteria common to the logs and timeline
// endpoints. Structurally wrong values (non-numeric pid or bounds) reject
// the request; everything else is optional.
func buildFilter(c echo.Context) (query.Filter, error) {
	f := query.Filter{
		Level:           c.QueryParam("level"),
		Categories:      c.QueryParams()["categories"],
		MessageRegex:    c.QueryParam("message_regex"),
		FunctionRegex:   c.QueryParam("function_regex"),
		UseMicroseconds: c.QueryParam("use_microseconds") == "true",
	}

	if v := c.QueryParam("pid"); v != "" {
		pid, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return f, NewBadRequestError(fmt.Sprintf("invalid pid: %s", v), err)
		}
		p := uint32(pid)
		f.PID = &p
	}

	if vals, ok := c.QueryParams()["thread"]; ok && len(vals) > 0 {
		f.Thread = &vals[0]
	}
	if vals, ok := c.QueryParams()["object"]; ok && len(vals) > 0 {
		f.Object = &vals[0]
	}

	if v := c.QueryParam("min_timestamp"); v != "" {
		ts, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return f, NewBadRequestError(fmt.Sprintf("invalid min_timestamp: %s", v), err)
		}
		f.MinTimestamp = &ts
	}
	if v := c.QueryParam("max_timestamp"); v != "" {
		ts, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return f, NewBadRequestError(fmt.Sprintf("invalid max_timestamp: %s", v), err)
		}
		f.MaxTimestamp = &ts
	}

	return f, nil
}

// logWarnings prints skipped-criterion diagnostics in the server log.
func logWarnings(sessionID string, warnings []string) {
	for _, w := range warnings {
		fmt.Printf("[Query %s] WARNING: %s\n", shortID(sessionID), w)
	}
}

// shortID truncates ids for log tags; session ids are client-supplied here
// and not guaranteed to be UUID-length.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
