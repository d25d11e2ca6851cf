package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gstlog-visualizer/backend/internal/models"
	"github.com/gstlog-visualizer/backend/internal/query"
	"github.com/gstlog-visualizer/backend/internal/session"
	"github.com/gstlog-visualizer/backend/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

const sampleLog = `0:00:00.123456789 1234 0x55d5c3a1b6e0 DEBUG videodecoder gstvideodecoder.c:1200:gst_video_decoder_finish_frame:<dec0> finishing frame
garbage line that does not tokenize
0:00:00.400000000 1234 0x55d5c3a1b6e0 ERROR videodecoder gstvideodecoder.c:1300:gst_video_decoder_drain: decode error
0:00:00.900000000 99 0x7f0000000000 DEBUG basesink gstbasesink.c:10:gst_base_sink_render:<sink0> rendering
`

func setupTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	RegisterRoutes(e, NewHandler(store, session.NewManager(), "test"))
	return e
}

func doRequest(e *echo.Echo, method, target string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, body)
		req.Header.Set(echo.HeaderContentType, contentType)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// uploadSample uploads the sample log and waits for its session to complete.
func uploadSample(t *testing.T, e *echo.Echo) string {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "sample.log")
	require.NoError(t, err)
	_, err = fw.Write([]byte(sampleLog))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	rec := doRequest(e, http.MethodPost, "/api/upload", &buf, mw.FormDataContentType())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	sessionID := resp["session_id"]
	require.NotEmpty(t, sessionID)
	require.NotEmpty(t, resp["file_id"])

	// Poll for parse completion
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		rec := doRequest(e, http.MethodGet, "/api/sessions/"+sessionID+"/status", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var sess models.ParseSession
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
		if sess.Status == models.SessionStatusComplete {
			assert.Equal(t, 3, sess.EntryCount)
			assert.Equal(t, 1, sess.DroppedLines)
			return sessionID
		}
		require.NotEqual(t, models.SessionStatusError, sess.Status, "parse failed: %s", sess.Error)
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("session did not complete in time")
	return ""
}

func TestUploadAndQueryLogs(t *testing.T) {
	e := setupTestServer(t)
	sessionID := uploadSample(t, e)

	rec := doRequest(e, http.MethodGet, "/api/logs?session_id="+sessionID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp LogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 1, resp.TotalPages)
	require.Len(t, resp.Entries, 3)
	assert.Equal(t, "0:00:00.123456789", resp.Entries[0].TS)
	assert.Equal(t, "dec0", *resp.Entries[0].Object)
	assert.Nil(t, resp.Entries[1].Object)
}

func TestQueryLogsFiltered(t *testing.T) {
	e := setupTestServer(t)
	sessionID := uploadSample(t, e)

	rec := doRequest(e, http.MethodGet, "/api/logs?session_id="+sessionID+"&level=DEBUG&pid=1234", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp LogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, "gst_video_decoder_finish_frame", resp.Entries[0].Function)
}

func TestQueryLogsInvalidRegexWarns(t *testing.T) {
	e := setupTestServer(t)
	sessionID := uploadSample(t, e)

	rec := doRequest(e, http.MethodGet, "/api/logs?session_id="+sessionID+"&message_regex=%28unclosed", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp LogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	// Bad regex degrades to no restriction instead of rejecting the query
	assert.Equal(t, 3, resp.Total)
	assert.Len(t, resp.Warnings, 1)
}

func TestQueryLogsMsgpack(t *testing.T) {
	e := setupTestServer(t)
	sessionID := uploadSample(t, e)

	rec := doRequest(e, http.MethodGet, "/api/logs/msgpack?session_id="+sessionID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/msgpack", rec.Header().Get(echo.HeaderContentType))

	var resp LogResponse
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Total)
}

func TestTimeline(t *testing.T) {
	e := setupTestServer(t)
	sessionID := uploadSample(t, e)

	rec := doRequest(e, http.MethodGet, "/api/timeline?session_id="+sessionID+"&interval=500ms", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var tl query.Timeline
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tl))
	require.Len(t, tl.Buckets, 2)
	assert.Equal(t, 2, tl.Buckets[0].Count)
	assert.Equal(t, 1, tl.Buckets[1].Count)
	assert.Equal(t, uint64(123), tl.MinTimestamp)
	assert.Equal(t, uint64(900), tl.MaxTimestamp)
}

func TestFilterOptions(t *testing.T) {
	e := setupTestServer(t)
	sessionID := uploadSample(t, e)

	rec := doRequest(e, http.MethodGet, "/api/filter-options?session_id="+sessionID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var opts query.Options
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opts))
	assert.Equal(t, []string{"basesink", "videodecoder"}, opts.Categories)
	assert.Equal(t, []string{"DEBUG", "ERROR"}, opts.Levels)
	assert.Equal(t, []uint32{99, 1234}, opts.PIDs)
	assert.Equal(t, []string{"dec0", "sink0"}, opts.Objects)
}

func TestErrorResponses(t *testing.T) {
	e := setupTestServer(t)
	sessionID := uploadSample(t, e)

	decodeErr := func(rec *httptest.ResponseRecorder) APIError {
		var apiErr APIError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
		return apiErr
	}

	// Unknown session
	rec := doRequest(e, http.MethodGet, "/api/logs?session_id=no-such-session", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeErr(rec).Code)

	// Missing session_id
	rec = doRequest(e, http.MethodGet, "/api/logs", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeErr(rec).Code)

	// Malformed pid
	rec = doRequest(e, http.MethodGet, "/api/logs?session_id="+sessionID+"&pid=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", decodeErr(rec).Code)

	// Malformed interval
	rec = doRequest(e, http.MethodGet, "/api/timeline?session_id="+sessionID+"&interval=1h", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INTERVAL", decodeErr(rec).Code)

	// Upload without a file part
	var empty bytes.Buffer
	mw := multipart.NewWriter(&empty)
	mw.Close()
	rec = doRequest(e, http.MethodPost, "/api/upload", &empty, mw.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFileEndpoints(t *testing.T) {
	e := setupTestServer(t)
	uploadSample(t, e)

	rec := doRequest(e, http.MethodGet, "/api/files/recent", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var files []models.FileInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &files))
	require.Len(t, files, 1)
	assert.Equal(t, "sample.log", files[0].Name)

	rec = doRequest(e, http.MethodGet, "/api/files/"+files[0].ID, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(e, http.MethodDelete, "/api/files/"+files[0].ID, nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(e, http.MethodGet, "/api/files/"+files[0].ID, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionKeepAlive(t *testing.T) {
	e := setupTestServer(t)
	sessionID := uploadSample(t, e)

	rec := doRequest(e, http.MethodPost, "/api/sessions/"+sessionID+"/keepalive", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(e, http.MethodPost, "/api/sessions/no-such-session/keepalive", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	e := setupTestServer(t)

	rec := doRequest(e, http.MethodGet, "/api/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}
