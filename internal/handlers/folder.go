package handlers

import (
	"net/http"
	"strconv"

	"github.com/cloudyhq/cloudy-server/internal/pkg/xerr"
	"github.com/cloudyhq/cloudy-server/internal/services/folders"
	"github.com/gin-gonic/gin"
)

type CreateFolderRequest struct {
	Name           string  `json:"name" binding:"required"`
	ParentFolderID *uint64 `json:"parent_folder_id"`
}

type RenameFolderRequest struct {
	NewName string `json:"new_name" binding:"required"`
}

type FolderHandler struct {
	folderService folders.FolderService
}

func NewFolderHandler(folderService folders.FolderService) *FolderHandler {
	return &FolderHandler{folderService: folderService}
}

// @Summary Create a folder
// @Tags folders
// @Accept json
// @Produce json
// @Param data body CreateFolderRequest true "folder info"
// @Success 201 {object} xerr.Response
// @Failure 404 {object} xerr.Response "parent folder not found"
// @Security BearerAuth
// @Router /api/v1/folders [post]
func (h *FolderHandler) CreateFolder(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.CodeInvalidParams, err.Error())
		return
	}

	folder, err := h.folderService.CreateFolder(c.Request.Context(), ownerID, req.Name, req.ParentFolderID)
	if err != nil {
		respondError(c, err)
		return
	}
	xerr.Success(c, http.StatusCreated, "Folder created", folder)
}

// @Summary List folders under a parent
// @Tags folders
// @Produce json
// @Param parent_id query int false "parent folder id, omitted for root"
// @Success 200 {object} xerr.Response
// @Security BearerAuth
// @Router /api/v1/folders [get]
func (h *FolderHandler) ListFolders(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var parentID *uint64
	if raw := c.Query("parent_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			xerr.Error(c, http.StatusBadRequest, xerr.CodeInvalidParams, "invalid parent_id parameter")
			return
		}
		parentID = &id
	}

	list, err := h.folderService.ListFolders(c.Request.Context(), ownerID, parentID)
	if err != nil {
		respondError(c, err)
		return
	}
	xerr.Success(c, http.StatusOK, "Folders retrieved", list)
}

// @Summary Get one folder
// @Tags folders
// @Produce json
// @Param id path int true "folder id"
// @Success 200 {object} xerr.Response
// @Failure 404 {object} xerr.Response
// @Security BearerAuth
// @Router /api/v1/folders/{id} [get]
func (h *FolderHandler) GetFolder(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}
	folderID, ok := pathID(c)
	if !ok {
		return
	}

	folder, err := h.folderService.GetFolder(c.Request.Context(), ownerID, folderID)
	if err != nil {
		respondError(c, err)
		return
	}
	xerr.Success(c, http.StatusOK, "Folder retrieved", folder)
}

// @Summary Rename a folder
// @Tags folders
// @Accept json
// @Param id path int true "folder id"
// @Param data body RenameFolderRequest true "new name"
// @Success 204
// @Failure 404 {object} xerr.Response
// @Security BearerAuth
// @Router /api/v1/folders/{id}/rename [patch]
func (h *FolderHandler) RenameFolder(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}
	folderID, ok := pathID(c)
	if !ok {
		return
	}

	var req RenameFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.CodeInvalidParams, err.Error())
		return
	}

	if _, err := h.folderService.RenameFolder(c.Request.Context(), ownerID, folderID, req.NewName); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Delete an empty folder
// @Tags folders
// @Param id path int true "folder id"
// @Success 204
// @Failure 404 {object} xerr.Response
// @Failure 409 {object} xerr.Response "folder not empty"
// @Security BearerAuth
// @Router /api/v1/folders/{id} [delete]
func (h *FolderHandler) DeleteFolder(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}
	folderID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.folderService.DeleteFolder(c.Request.Context(), ownerID, folderID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
