package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// pathID parses a numeric path parameter; ok is false after an error
// response has already been written.
func pathID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(422, gin.H{"detail": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}
