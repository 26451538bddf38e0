// Package response writes the wire contract's plain JSON bodies. Success
// responses are the payload itself; failures are {"detail": "..."} with
// the HTTP status carrying the error class.
package response

import "github.com/gin-gonic/gin"

func OK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

func Error(c *gin.Context, status int, detail string) {
	c.JSON(status, gin.H{"detail": detail})
}
