// handlers_query.go - Filtered/paginated log query handlers
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gstlog-visualizer/backend/internal/models"
	"github.com/gstlog-visualizer/backend/internal/query"
	"github.com/gstlog-visualizer/backend/internal/session"
	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// LogResponse is the shape of a filtered/paginated query result.
type LogResponse struct {
	Entries    []models.SerializableEntry `json:"entries"`
	Total      int                        `json:"total"`
	Page       int                        `json:"page"`
	TotalPages int                        `json:"total_pages"`
	Warnings   []string                   `json:"warnings,omitempty"`
}

// HandleGetLogs returns one page of filtered entries for a session.
func (h *Handler) HandleGetLogs(c echo.Context) error {
	resp, err := h.queryLogs(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// HandleGetLogsMsgpack returns the same page MessagePack-encoded, for
// clients pulling large pages where JSON overhead matters.
func (h *Handler) HandleGetLogsMsgpack(c echo.Context) error {
	resp, err := h.queryLogs(c)
	if err != nil {
		return err
	}

	data, err := msgpack.Marshal(resp)
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}

	return c.Blob(http.StatusOK, "application/msgpack", data)
}

func (h *Handler) queryLogs(c echo.Context) (*LogResponse, error) {
	sessionID := c.QueryParam("session_id")
	if sessionID == "" {
		return nil, NewValidationError("session_id")
	}

	f, err := buildFilter(c)
	if err != nil {
		return nil, err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))

	h.sessions.TouchSession(sessionID)

	result, warnings, err := h.sessions.QueryEntries(sessionID, f, page, perPage)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, NewNotFoundError("session", sessionID)
		}
		return nil, NewInternalError("query failed", err)
	}
	logWarnings(sessionID, warnings)

	entries := make([]models.SerializableEntry, 0, len(result.Entries))
	for _, e := range result.Entries {
		entries = append(entries, models.NewSerializableEntry(e))
	}

	return &LogResponse{
		Entries:    entries,
		Total:      result.Total,
		Page:       result.Number,
		TotalPages: result.TotalPages,
		Warnings:   warnings,
	}, nil
}

// HandleGetFilterOptions returns the distinct filterable values of a session.
func (h *Handler) HandleGetFilterOptions(c echo.Context) error {
	sessionID := c.QueryParam("session_id")
	if sessionID == "" {
		return NewValidationError("session_id")
	}

	h.sessions.TouchSession(sessionID)

	opts, err := h.sessions.FilterOptions(sessionID)
	if err != nil {
		return NewNotFoundError("session", sessionID)
	}

	return c.JSON(http.StatusOK, opts)
}

// HandleGetTimeline returns time-bucketed counts of filtered entries.
func (h *Handler) HandleGetTimeline(c echo.Context) error {
	sessionID := c.QueryParam("session_id")
	if sessionID == "" {
		return NewValidationError("session_id")
	}

	f, err := buildFilter(c)
	if err != nil {
		return err
	}

	interval := c.QueryParam("interval")
	if interval == "" {
		interval = "1s"
	}

	h.sessions.TouchSession(sessionID)

	tl, warnings, err := h.sessions.Timeline(sessionID, f, interval)
	if err != nil {
		switch {
		case errors.Is(err, query.ErrInvalidInterval):
			return NewInvalidIntervalError(interval)
		case errors.Is(err, session.ErrSessionNotFound):
			return NewNotFoundError("session", sessionID)
		default:
			return NewInternalError("timeline query failed", err)
		}
	}
	logWarnings(sessionID, warnings)

	return c.JSON(http.StatusOK, tl)
}
