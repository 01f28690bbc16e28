package handlers

import (
	"net/http"
	"strconv"

	"github.com/cloudyhq/cloudy-server/internal/pkg/xerr"
	"github.com/gin-gonic/gin"
)

// ContextUserIDKey is set by the auth middleware.
const ContextUserIDKey = "userID"

// currentUserID pulls the authenticated user out of the gin context, writing
// a 401 when it is missing.
func currentUserID(c *gin.Context) (uint64, bool) {
	v, exists := c.Get(ContextUserIDKey)
	if !exists {
		xerr.AbortWithError(c, http.StatusUnauthorized, xerr.CodeUnauthorized, "authentication required")
		return 0, false
	}
	id, ok := v.(uint64)
	if !ok || id == 0 {
		xerr.AbortWithError(c, http.StatusUnauthorized, xerr.CodeUnauthorized, "authentication required")
		return 0, false
	}
	return id, true
}

// pathID parses the :id path parameter, writing a 400 on garbage.
func pathID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		xerr.Error(c, http.StatusBadRequest, xerr.CodeInvalidParams, "invalid id parameter")
		return 0, false
	}
	return id, true
}
