package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// queryInt reads an integer query parameter, falling back on bad input.
func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
