package http

import (
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/PhoneOS/internal/shared/utils"
)

// writeJSON encodes with the same codec the snapshot and stream use, so
// every surface renders state identically. Successful reads carry an ETag
// so pollers can skip unchanged state.
func writeJSON(c *gin.Context, status int, v interface{}) {
	data, err := sonic.ConfigStd.Marshal(v)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode response"})
		return
	}

	if status == http.StatusOK && c.Request.Method == http.MethodGet {
		etag := utils.ETag(data)
		c.Header("ETag", etag)
		if c.GetHeader("If-None-Match") == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}
	c.Data(status, "application/json; charset=utf-8", data)
}
