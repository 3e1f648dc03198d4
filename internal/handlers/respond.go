package handlers

import "github.com/gin-gonic/gin"

// respondMessage — единый формат ошибок API: {"message": "..."} + статус.
func respondMessage(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}
