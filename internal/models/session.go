package models

// SessionStatus represents the status of a parse session.
type SessionStatus string

const (
	SessionStatusPending  SessionStatus = "pending"
	SessionStatusParsing  SessionStatus = "parsing"
	SessionStatusComplete SessionStatus = "complete"
	SessionStatusError    SessionStatus = "error"
)

// ParseSession represents one uploaded artifact's ingestion lifecycle.
// Entries for the session live in the session manager; this struct only
// carries metadata safe to hand to API clients.
type ParseSession struct {
	ID               string        `json:"id"`
	FileID           string        `json:"fileId"`
	Status           SessionStatus `json:"status"`
	EntryCount       int           `json:"entryCount"`
	DroppedLines     int           `json:"droppedLines"` // lines that failed tokenizing
	ProcessingTimeMs int64         `json:"processingTimeMs,omitempty"`
	StartTime        uint64        `json:"startTime,omitempty"` // first entry ts, ms
	EndTime          uint64        `json:"endTime,omitempty"`   // last entry ts, ms
	Error            string        `json:"error,omitempty"`
}

// NewParseSession creates a new ParseSession in pending status.
func NewParseSession(id, fileID string) *ParseSession {
	return &ParseSession{
		ID:     id,
		FileID: fileID,
		Status: SessionStatusPending,
	}
}
