package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"slotswap-backend/internal/apperr"
)

var statusByKind = map[apperr.Kind]int{
	apperr.KindInvalid:   http.StatusBadRequest,
	apperr.KindNotFound:  http.StatusNotFound,
	apperr.KindForbidden: http.StatusForbidden,
	apperr.KindConflict:  http.StatusConflict,
	apperr.KindInternal:  http.StatusInternalServerError,
}

// fail writes err as {message, success:false}. Internal details are logged
// and never sent.
func (h *Handler) fail(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		h.logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(statusByKind[kind], gin.H{
		"message": apperr.MessageOf(err),
		"success": false,
	})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"message": message,
		"success": false,
	})
}
