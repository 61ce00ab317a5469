package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Ping is a public liveness probe for clients.
// GET /v1/ping
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
