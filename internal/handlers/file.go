package handlers

import (
	"net/http"

	"github.com/cloudyhq/cloudy-server/internal/pkg/xerr"
	"github.com/cloudyhq/cloudy-server/internal/services/files"
	"github.com/gin-gonic/gin"
)

type FinalizeUploadRequest struct {
	ObjectKey   string `json:"object_key" binding:"required"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	SizeInBytes uint64 `json:"size_in_bytes"`
}

type RenameFileRequest struct {
	NewName string `json:"new_name" binding:"required"`
}

type FileHandler struct {
	fileService files.FileService
}

func NewFileHandler(fileService files.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// @Summary Declare an upload and get a presigned PUT URL
// @Tags files
// @Accept json
// @Produce json
// @Param data body files.UploadIntentRequest true "upload intent"
// @Success 200 {object} xerr.Response
// @Failure 400 {object} xerr.Response
// @Failure 409 {object} xerr.Response "quota exceeded"
// @Security BearerAuth
// @Router /api/v1/files/intent [post]
func (h *FileHandler) CreateUploadIntent(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req files.UploadIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.CodeInvalidParams, err.Error())
		return
	}

	intent, err := h.fileService.CreateUploadIntent(c.Request.Context(), ownerID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	xerr.Success(c, http.StatusOK, "Upload intent created", intent)
}

// @Summary Finalize an upload, promoting the reservation to an active file
// @Tags files
// @Accept json
// @Produce json
// @Param data body FinalizeUploadRequest true "finalize info"
// @Success 200 {object} xerr.Response
// @Failure 404 {object} xerr.Response "no reservation for the object key"
// @Security BearerAuth
// @Router /api/v1/files/finalize [post]
func (h *FileHandler) FinalizeUpload(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req FinalizeUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.CodeInvalidParams, err.Error())
		return
	}

	file, err := h.fileService.FinalizeUpload(c.Request.Context(), ownerID, req.ObjectKey, files.FinalizeRequest{
		FileName:    req.FileName,
		ContentType: req.ContentType,
		SizeInBytes: req.SizeInBytes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	xerr.Success(c, http.StatusOK, "Upload finalized", file)
}

// @Summary List the caller's visible files, trash included
// @Tags files
// @Produce json
// @Success 200 {object} xerr.Response
// @Security BearerAuth
// @Router /api/v1/files [get]
func (h *FileHandler) ListFiles(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	list, err := h.fileService.ListFiles(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, err)
		return
	}
	xerr.Success(c, http.StatusOK, "Files retrieved", list)
}

// @Summary List files pending deletion
// @Tags files
// @Produce json
// @Success 200 {object} xerr.Response
// @Security BearerAuth
// @Router /api/v1/files/trash [get]
func (h *FileHandler) ListTrash(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	list, err := h.fileService.ListTrash(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, err)
		return
	}
	xerr.Success(c, http.StatusOK, "Trash retrieved", list)
}

// @Summary Search the caller's files by name
// @Tags files
// @Produce json
// @Param q query string true "name query"
// @Success 200 {object} xerr.Response
// @Security BearerAuth
// @Router /api/v1/files/search [get]
func (h *FileHandler) SearchFiles(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	query := c.Query("q")
	if query == "" {
		xerr.Error(c, http.StatusBadRequest, xerr.CodeInvalidParams, "query parameter q is required")
		return
	}

	list, err := h.fileService.SearchFiles(c.Request.Context(), ownerID, query)
	if err != nil {
		respondError(c, err)
		return
	}
	xerr.Success(c, http.StatusOK, "Search results", list)
}

// @Summary Report the caller's storage usage against the quota
// @Tags files
// @Produce json
// @Success 200 {object} xerr.Response
// @Security BearerAuth
// @Router /api/v1/files/storage-usage [get]
func (h *FileHandler) GetStorageUsage(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	usage, err := h.fileService.GetStorageUsage(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, err)
		return
	}
	xerr.Success(c, http.StatusOK, "Storage usage", usage)
}

// @Summary Get one file's metadata
// @Tags files
// @Produce json
// @Param id path int true "file id"
// @Success 200 {object} xerr.Response
// @Failure 404 {object} xerr.Response
// @Security BearerAuth
// @Router /api/v1/files/{id} [get]
func (h *FileHandler) GetFile(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}
	fileID, ok := pathID(c)
	if !ok {
		return
	}

	file, err := h.fileService.GetFile(c.Request.Context(), ownerID, fileID)
	if err != nil {
		respondError(c, err)
		return
	}
	xerr.Success(c, http.StatusOK, "File retrieved", file)
}

// @Summary Get a presigned download URL for an active file
// @Tags files
// @Produce json
// @Param id path int true "file id"
// @Success 200 {object} xerr.Response
// @Failure 404 {object} xerr.Response
// @Security BearerAuth
// @Router /api/v1/files/{id}/download-url [get]
func (h *FileHandler) GetDownloadURL(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}
	fileID, ok := pathID(c)
	if !ok {
		return
	}

	url, err := h.fileService.GetDownloadURL(c.Request.Context(), ownerID, fileID)
	if err != nil {
		respondError(c, err)
		return
	}
	xerr.Success(c, http.StatusOK, "Download URL created", gin.H{"download_url": url})
}

// @Summary Rename a file
// @Tags files
// @Accept json
// @Param id path int true "file id"
// @Param data body RenameFileRequest true "new name"
// @Success 204
// @Failure 404 {object} xerr.Response
// @Security BearerAuth
// @Router /api/v1/files/{id}/rename [patch]
func (h *FileHandler) RenameFile(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}
	fileID, ok := pathID(c)
	if !ok {
		return
	}

	var req RenameFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.CodeInvalidParams, err.Error())
		return
	}

	if _, err := h.fileService.RenameFile(c.Request.Context(), ownerID, fileID, req.NewName); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Move a file to the trash
// @Tags files
// @Param id path int true "file id"
// @Success 204
// @Failure 404 {object} xerr.Response
// @Security BearerAuth
// @Router /api/v1/files/{id}/trash [put]
func (h *FileHandler) MarkPendingDeletion(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}
	fileID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.fileService.MarkPendingDeletion(c.Request.Context(), ownerID, fileID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Restore a file from the trash
// @Tags files
// @Param id path int true "file id"
// @Success 204
// @Failure 404 {object} xerr.Response
// @Security BearerAuth
// @Router /api/v1/files/{id}/restore [put]
func (h *FileHandler) RestorePendingDeletion(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}
	fileID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.fileService.RestorePendingDeletion(c.Request.Context(), ownerID, fileID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Permanently delete a file
// @Description Removes the blob first; the metadata row is tombstoned only
// @Description after the blob is gone.
// @Tags files
// @Param id path int true "file id"
// @Success 204
// @Failure 404 {object} xerr.Response
// @Failure 500 {object} xerr.Response "blob removal failed, file kept"
// @Security BearerAuth
// @Router /api/v1/files/{id} [delete]
func (h *FileHandler) DeleteFile(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}
	fileID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.fileService.DeleteFile(c.Request.Context(), ownerID, fileID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
