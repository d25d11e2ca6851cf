// handlers_upload.go - Artifact upload and file metadata handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HandleUploadLog accepts a multipart log upload, stores the artifact and
// dispatches the parse in the background. The response carries the session
// id immediately; clients poll queries until data appears.
func (h *Handler) HandleUploadLog(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return NewBadRequestError("no file provided", err)
	}

	src, err := file.Open()
	if err != nil {
		return NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	info, err := h.store.Save(file.Filename, src)
	if err != nil {
		return NewInternalError("failed to save file", err)
	}

	path, err := h.store.GetFilePath(info.ID)
	if err != nil {
		return NewInternalError("failed to resolve file path", err)
	}

	sess := h.sessions.StartSession(info.ID, path)

	return c.JSON(http.StatusOK, map[string]string{
		"session_id": sess.ID,
		"file_id":    info.ID,
	})
}

// HandleRecentFiles returns a list of recently uploaded log artifacts.
func (h *Handler) HandleRecentFiles(c echo.Context) error {
	files, err := h.store.List(20)
	if err != nil {
		return NewInternalError("failed to list files", err)
	}

	return c.JSON(http.StatusOK, files)
}

// HandleGetFile returns metadata for a specific artifact.
func (h *Handler) HandleGetFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	info, err := h.store.Get(id)
	if err != nil {
		return NewNotFoundError("file", id)
	}

	return c.JSON(http.StatusOK, info)
}

// HandleDeleteFile removes an uploaded artifact.
func (h *Handler) HandleDeleteFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	if err := h.store.Delete(id); err != nil {
		return NewNotFoundError("file", id)
	}

	return c.NoContent(http.StatusNoContent)
}
